// inputs/image.go
package inputs

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageTexture is a static image uploaded as a 2D texture.
type ImageTexture struct {
	textureID  uint32
	resolution [2]float32
}

// LoadImage decodes the image file at path.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	b := img.Bounds()
	log.Printf("Loaded %s image %s (%dx%d)", format, path, b.Dx(), b.Dy())
	return img, nil
}

// toRGBA converts img to RGBA with the origin at the bottom-left row, the
// order OpenGL expects texel rows in.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return vflip(rgba)
}

// vflip vertically flips the provided RGBA image.
func vflip(src *image.RGBA) *image.RGBA {
	bounds := src.Bounds()
	flipped := image.NewRGBA(bounds)
	height := bounds.Dy()

	rowSize := bounds.Dx() * 4
	for y := 0; y < height; y++ {
		srcRow := src.Pix[((height-1)-y)*src.Stride:]
		dstRow := flipped.Pix[y*flipped.Stride:]
		copy(dstRow, srcRow[:rowSize])
	}
	return flipped
}

// NewImageTexture uploads img as a linear-filtered, edge-clamped texture.
func NewImageTexture(img image.Image) (*ImageTexture, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("input image is empty")
	}

	rgba := toRGBA(img)
	width := int32(rgba.Rect.Size().X)
	height := int32(rgba.Rect.Size().Y)

	var textureID uint32
	gl.GenTextures(1, &textureID)
	gl.BindTexture(gl.TEXTURE_2D, textureID)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA8,
		width,
		height,
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(rgba.Pix),
	)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return &ImageTexture{
		textureID:  textureID,
		resolution: [2]float32{float32(width), float32(height)},
	}, nil
}

func (t *ImageTexture) GetTextureID() uint32 {
	return t.textureID
}

// Resolution returns the texture size in texels.
func (t *ImageTexture) Resolution() [2]float32 {
	return t.resolution
}

func (t *ImageTexture) Destroy() {
	gl.DeleteTextures(1, &t.textureID)
}
