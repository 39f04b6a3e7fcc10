package inputs

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoRowImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	img.Set(0, 0, red)
	img.Set(1, 0, red)
	img.Set(0, 1, blue)
	img.Set(1, 1, blue)
	return img
}

func TestVflip(t *testing.T) {
	flipped := vflip(twoRowImage())
	assert.Equal(t, color.RGBA{B: 255, A: 255}, flipped.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, flipped.RGBAAt(1, 1))
}

func TestToRGBANormalizesOrigin(t *testing.T) {
	src := twoRowImage().SubImage(image.Rect(0, 1, 2, 2))
	rgba := toRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 2, 1), rgba.Bounds())
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgba.RGBAAt(0, 0))
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plane.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, twoRowImage()))
	require.NoError(t, f.Close())

	img, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
}

func TestLoadImageErrors(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))
	_, err = LoadImage(path)
	assert.Error(t, err)
}
