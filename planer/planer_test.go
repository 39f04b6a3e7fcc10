package planer

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frustak/disto/shader"
)

type fakePlane struct {
	id       int
	engine   *fakeEngine
	params   Params
	element  image.Image
	onRender []func()
	removed  bool
}

func (p *fakePlane) OnRender(fn func()) { p.onRender = append(p.onRender, fn) }

func (p *fakePlane) Uniform(key string) *Uniform { return p.params.Uniforms[key] }

func (p *fakePlane) Remove() {
	p.removed = true
	p.engine.events = append(p.engine.events, fmt.Sprintf("remove %d", p.id))
}

func (p *fakePlane) render() {
	for _, fn := range p.onRender {
		fn()
	}
}

type fakeEngine struct {
	planes []*fakePlane
	events []string
	err    error
}

func (e *fakeEngine) NewPlane(element image.Image, params Params) (Plane, error) {
	if e.err != nil {
		return nil, e.err
	}
	p := &fakePlane{
		id:      len(e.planes) + 1,
		engine:  e,
		params:  params,
		element: element,
	}
	e.planes = append(e.planes, p)
	e.events = append(e.events, fmt.Sprintf("new %d", p.id))
	return p, nil
}

func (e *fakeEngine) live() []*fakePlane {
	var out []*fakePlane
	for _, p := range e.planes {
		if !p.removed {
			out = append(out, p)
		}
	}
	return out
}

func testDisplacement() shader.Displacement {
	return shader.Displacement{
		Interval:    2,
		YMultiplier: 3,
		XMultiplier: 4,
		Div:         5,
		Axis:        shader.AxisXY,
	}
}

func TestNewBuildsPlane(t *testing.T) {
	engine := &fakeEngine{}
	element := image.NewRGBA(image.Rect(0, 0, 4, 2))

	p, err := New(engine, element, testDisplacement())
	require.NoError(t, err)
	require.Len(t, engine.planes, 1)

	plane := engine.planes[0]
	assert.Same(t, plane, p.Plane())
	assert.Same(t, element, plane.element)

	src := shader.Generate(testDisplacement(), nil)
	assert.Equal(t, src.Vertex, plane.params.VertexShader)
	assert.Equal(t, src.Fragment, plane.params.FragmentShader)

	require.Len(t, plane.params.Uniforms, 1)
	assert.Equal(t, &Uniform{Name: "uTime", Type: "1f", Value: 0}, plane.params.Uniforms[TimeUniformKey])
}

func TestFrameCallbackIncrementsTime(t *testing.T) {
	engine := &fakeEngine{}
	p, err := New(engine, nil, testDisplacement())
	require.NoError(t, err)

	plane := engine.planes[0]
	require.Len(t, plane.onRender, 1)
	for i := 0; i < 3; i++ {
		plane.render()
	}
	assert.Equal(t, 3.0, p.Plane().Uniform(TimeUniformKey).Value)
}

func TestRefreshReleasesBeforeCreate(t *testing.T) {
	engine := &fakeEngine{}
	p, err := New(engine, nil, testDisplacement())
	require.NoError(t, err)

	d := testDisplacement()
	d.Div = 7
	require.NoError(t, p.Refresh(d))
	d.Div = 9
	require.NoError(t, p.Refresh(d))

	assert.Equal(t, []string{"new 1", "remove 1", "new 2", "remove 2", "new 3"}, engine.events)

	live := engine.live()
	require.Len(t, live, 1)
	assert.Same(t, live[0], p.Plane())
	assert.Contains(t, live[0].params.FragmentShader, "/ 9.00000000000000000000;")
	assert.NotContains(t, live[0].params.FragmentShader, "/ 7.00000000000000000000;")
}

func TestRefreshStartsTimeOver(t *testing.T) {
	engine := &fakeEngine{}
	p, err := New(engine, nil, testDisplacement())
	require.NoError(t, err)

	engine.planes[0].render()
	engine.planes[0].render()
	require.NoError(t, p.Refresh(testDisplacement()))

	assert.Equal(t, 2.0, engine.planes[0].Uniform(TimeUniformKey).Value)
	assert.Equal(t, 0.0, p.Plane().Uniform(TimeUniformKey).Value)
}

func TestEngineErrorIsWrapped(t *testing.T) {
	errCompile := errors.New("compile failed")
	engine := &fakeEngine{err: errCompile}

	_, err := New(engine, nil, testDisplacement())
	require.Error(t, err)
	assert.ErrorIs(t, err, errCompile)
}

func TestRefreshFailureLeavesNoPlane(t *testing.T) {
	engine := &fakeEngine{}
	p, err := New(engine, nil, testDisplacement())
	require.NoError(t, err)

	engine.err = errors.New("link failed")
	require.Error(t, p.Refresh(testDisplacement()))
	assert.Nil(t, p.Plane())
	assert.Empty(t, engine.live())

	engine.err = nil
	require.NoError(t, p.Refresh(testDisplacement()))
	assert.Len(t, engine.live(), 1)
}

func TestWithChooserRandomizesOperators(t *testing.T) {
	d := testDisplacement()
	d.RandomOp = true

	build := func() string {
		engine := &fakeEngine{}
		_, err := New(engine, nil, d, WithChooser(rand.New(rand.NewPCG(3, 5))))
		require.NoError(t, err)
		return engine.planes[0].params.FragmentShader
	}

	a, b := build(), build()
	assert.Equal(t, a, b)
	assert.Equal(t, 1, strings.Count(a, "textureCoord.x +="))
	assert.Equal(t, 1, strings.Count(a, "textureCoord.y +="))
}
