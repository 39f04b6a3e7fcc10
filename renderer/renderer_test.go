package renderer

import (
	"flag"
	"io"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frustak/disto/options"
	"github.com/frustak/disto/planer"
)

func testOptions(t *testing.T, args ...string) *options.PlaneOptions {
	t.Helper()
	fs := flag.NewFlagSet("disto", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := options.RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return opts
}

func TestCoverMatrix(t *testing.T) {
	apply := func(m mgl32.Mat4, u, v float32) mgl32.Vec2 {
		return m.Mul4x1(mgl32.Vec4{u, v, 0, 1}).Vec2()
	}

	same := coverMatrix(200, 100, 400, 200)
	assert.True(t, same.ApproxEqual(mgl32.Ident4()))

	// wide plane, square image: full width, cropped height
	wide := coverMatrix(200, 100, 100, 100)
	assert.True(t, apply(wide, 0, 0).ApproxEqual(mgl32.Vec2{0, 0.25}))
	assert.True(t, apply(wide, 1, 1).ApproxEqual(mgl32.Vec2{1, 0.75}))

	// tall plane, square image: full height, cropped width
	tall := coverMatrix(100, 200, 100, 100)
	assert.True(t, apply(tall, 0, 0).ApproxEqual(mgl32.Vec2{0.25, 0}))
	assert.True(t, apply(tall, 1, 1).ApproxEqual(mgl32.Vec2{0.75, 1}))

	assert.True(t, coverMatrix(0, 100, 100, 100).ApproxEqual(mgl32.Ident4()))
}

func TestPlaneMatricesCoverViewport(t *testing.T) {
	mv, proj := planeMatrices()
	clip := proj.Mul4(mv)
	for i := 0; i < len(quadVertices); i += 5 {
		pos := mgl32.Vec4{quadVertices[i], quadVertices[i+1], quadVertices[i+2], 1}
		out := clip.Mul4x1(pos)
		assert.InDelta(t, pos[0], out[0], 1e-6)
		assert.InDelta(t, pos[1], out[1], 1e-6)
	}
}

func TestPlaneTickRunsCallbacksInOrder(t *testing.T) {
	u := &planer.Uniform{Name: planer.TimeUniformName, Type: planer.FloatUniform}
	p := &Plane{uniforms: map[string]*planer.Uniform{planer.TimeUniformKey: u}}

	var order []int
	p.OnRender(func() { order = append(order, 1) })
	p.OnRender(func() { p.Uniform(planer.TimeUniformKey).Value++ })
	p.OnRender(func() { order = append(order, 3) })

	p.tick()
	p.tick()
	assert.Equal(t, []int{1, 3, 1, 3}, order)
	assert.Equal(t, 2.0, u.Value)
	assert.Nil(t, p.Uniform("missing"))
}

func TestTrackUntrack(t *testing.T) {
	r := &Renderer{}
	a, b, c := &Plane{id: 1}, &Plane{id: 2}, &Plane{id: 3}
	r.track(a)
	r.track(b)
	r.track(c)

	snapshot := r.livePlanes()
	r.untrack(b)
	assert.Equal(t, []*Plane{a, c}, r.planes)
	assert.Len(t, snapshot, 3)

	r.untrack(b)
	assert.Equal(t, []*Plane{a, c}, r.planes)
}

func TestGetArgs(t *testing.T) {
	in, out := getArgs(testOptions(t, "-width", "640", "-height", "360", "-fps", "30"), "linux")
	assert.Equal(t, "rawvideo", in["f"])
	assert.Equal(t, "rgba", in["pix_fmt"])
	assert.Equal(t, "640x360", in["s"])
	assert.Equal(t, 30, in["framerate"])

	assert.Equal(t, "vflip", out["vf"])
	assert.Equal(t, "libx264", out["c:v"])
	assert.NotContains(t, out, "tag:v")
}

func TestGetArgsHEVC(t *testing.T) {
	_, out := getArgs(testOptions(t, "-codec", "hevc", "-output", "clip.mp4"), "linux")
	assert.Equal(t, "libx265", out["c:v"])
	assert.Equal(t, "hvc1", out["tag:v"])

	_, out = getArgs(testOptions(t, "-codec", "hevc", "-output", "clip.mkv"), "darwin")
	assert.Equal(t, "hevc_videotoolbox", out["c:v"])
	assert.NotContains(t, out, "tag:v")
}
