// Package planer builds the displacement effect plane: it formats the
// shader pair for a configuration, hands it to a rendering engine and keeps
// the plane's time uniform ticking once per rendered frame.
package planer

import (
	"fmt"
	"image"

	"github.com/frustak/disto/shader"
)

const (
	// TimeUniformKey is the key of the time uniform in Params.Uniforms.
	TimeUniformKey = "time"
	// TimeUniformName is the GLSL name of the time uniform.
	TimeUniformName = "uTime"
	// FloatUniform is the type tag of a single float uniform.
	FloatUniform = "1f"
)

// Uniform is a named, typed value the engine uploads to the shaders before
// each draw.
type Uniform struct {
	Name  string
	Type  string
	Value float64
}

// Params is everything the engine needs to build a plane.
type Params struct {
	VertexShader   string
	FragmentShader string
	Uniforms       map[string]*Uniform
}

// Plane is a render object owned by an Engine.
type Plane interface {
	// OnRender registers fn to be called once per rendered frame, before
	// the plane is drawn.
	OnRender(fn func())
	// Uniform returns the uniform registered under key, or nil.
	Uniform(key string) *Uniform
	// Remove releases the plane's resources. The plane is not drawn again.
	Remove()
}

// Engine compiles shaders, sets up geometry and textures and drives the
// frame loop.
type Engine interface {
	NewPlane(element image.Image, params Params) (Plane, error)
}

// Planer owns the single live plane of one effect.
type Planer struct {
	engine  Engine
	element image.Image
	chooser shader.Chooser
	plane   Plane
}

type Option func(*Planer)

// WithChooser sets the random source used when a configuration asks for
// random operators.
func WithChooser(c shader.Chooser) Option {
	return func(p *Planer) {
		p.chooser = c
	}
}

// New creates a Planer and builds its first plane from d.
func New(engine Engine, element image.Image, d shader.Displacement, opts ...Option) (*Planer, error) {
	p := &Planer{
		engine:  engine,
		element: element,
	}
	for _, opt := range opts {
		opt(p)
	}

	plane, err := p.Create(d)
	if err != nil {
		return nil, err
	}
	p.plane = plane
	return p, nil
}

// Create builds a new plane for d. It does not replace the current plane;
// use Refresh for that.
func (p *Planer) Create(d shader.Displacement) (Plane, error) {
	src := shader.Generate(d, p.chooser)
	params := Params{
		VertexShader:   src.Vertex,
		FragmentShader: src.Fragment,
		Uniforms: map[string]*Uniform{
			TimeUniformKey: {
				Name:  TimeUniformName,
				Type:  FloatUniform,
				Value: 0,
			},
		},
	}

	plane, err := p.engine.NewPlane(p.element, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create plane: %w", err)
	}

	plane.OnRender(func() {
		if u := plane.Uniform(TimeUniformKey); u != nil {
			u.Value++
		}
	})
	return plane, nil
}

// Refresh removes the current plane and replaces it with one built from d.
// The old plane is released before the new one is constructed. If the
// engine fails, the Planer is left without a plane.
//
// Refresh must not be called from inside a frame callback of the plane
// being replaced.
func (p *Planer) Refresh(d shader.Displacement) error {
	if p.plane != nil {
		p.plane.Remove()
		p.plane = nil
	}

	plane, err := p.Create(d)
	if err != nil {
		return err
	}
	p.plane = plane
	return nil
}

// Plane returns the current plane, or nil after a failed Refresh.
func (p *Planer) Plane() Plane {
	return p.plane
}
