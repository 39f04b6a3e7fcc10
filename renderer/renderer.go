package renderer

import (
	"errors"
	"fmt"
	"image"
	"log"
	"strings"
	"sync"

	"github.com/frustak/disto/graphics"
	"github.com/frustak/disto/inputs"
	"github.com/frustak/disto/planer"
	"github.com/frustak/disto/translator"
	"github.com/go-gl/gl/v4.1-core/gl"
)

var glInitOnce sync.Once

// ErrUnsupportedUniform is returned when a plane declares a uniform type
// the renderer cannot upload.
var ErrUnsupportedUniform = errors.New("unsupported uniform type")

var (
	_ planer.Engine = (*Renderer)(nil)
	_ planer.Plane  = (*Plane)(nil)
)

// Renderer draws planes with OpenGL. It implements planer.Engine.
type Renderer struct {
	context    graphics.Context
	planes     []*Plane
	nextID     int
	offscreen  *OffscreenRenderer
	frameCount int64
}

func NewRenderer(ctx graphics.Context) (*Renderer, error) {
	r := &Renderer{
		context: ctx,
	}

	// Make the context current BEFORE initializing OpenGL.
	r.context.MakeCurrent()

	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	log.Printf("OpenGL version: %s", gl.GoStr(gl.GetString(gl.VERSION)))

	return r, nil
}

// NewPlane translates and links the plane's shaders, uploads element as
// uSampler0 and starts drawing the plane on every frame.
func (r *Renderer) NewPlane(element image.Image, params planer.Params) (planer.Plane, error) {
	for key, u := range params.Uniforms {
		if u.Type != planer.FloatUniform {
			return nil, fmt.Errorf("uniform %q (%s): %w", key, u.Type, ErrUnsupportedUniform)
		}
	}

	vs, err := translator.Translate(params.VertexShader, "vertex")
	if err != nil {
		return nil, err
	}
	fs, err := translator.Translate(params.FragmentShader, "fragment")
	if err != nil {
		return nil, err
	}

	program, err := newProgram(vs.Code, fs.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	texture, err := inputs.NewImageTexture(element)
	if err != nil {
		gl.DeleteProgram(program)
		return nil, fmt.Errorf("failed to create plane texture: %w", err)
	}

	r.nextID++
	p := &Plane{
		id:          r.nextID,
		renderer:    r,
		program:     program,
		texture:     texture,
		uniforms:    params.Uniforms,
		uniformLocs: make(map[string]int32, len(params.Uniforms)),
	}
	p.vao, p.vbo = newQuad(
		gl.GetAttribLocation(program, glString(vs.MappedName("aVertexPosition"))),
		gl.GetAttribLocation(program, glString(vs.MappedName("aTextureCoord"))),
	)

	gl.UseProgram(program)
	p.mvLoc = uniformLocation(program, vs, "uMVMatrix")
	p.pLoc = uniformLocation(program, vs, "uPMatrix")
	p.textureMatrixLoc = uniformLocation(program, vs, "uTextureMatrix0")
	p.samplerLoc = uniformLocation(program, fs, "uSampler0")
	for key, u := range params.Uniforms {
		loc := uniformLocation(program, fs, u.Name)
		if loc < 0 {
			loc = uniformLocation(program, vs, u.Name)
		}
		if loc < 0 {
			log.Printf("Plane %d: uniform %s is not used by the shaders", p.id, u.Name)
		}
		p.uniformLocs[key] = loc
	}
	gl.UseProgram(0)

	r.track(p)
	log.Printf("Created plane %d", p.id)
	return p, nil
}

func (r *Renderer) track(p *Plane) {
	r.planes = append(r.planes, p)
}

func (r *Renderer) untrack(p *Plane) {
	for i, q := range r.planes {
		if q == p {
			r.planes = append(r.planes[:i], r.planes[i+1:]...)
			return
		}
	}
}

// livePlanes returns a snapshot of the tracked planes in creation order.
func (r *Renderer) livePlanes() []*Plane {
	return append([]*Plane(nil), r.planes...)
}

// RenderFrame draws every plane into the currently bound framebuffer. Each
// plane's frame callbacks run right before it is drawn.
func (r *Renderer) RenderFrame(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	for _, p := range r.livePlanes() {
		if p.removed {
			continue
		}
		p.tick()
		p.draw(width, height)
	}
	r.frameCount++
}

// Run renders to the window until it is closed.
func (r *Renderer) Run() {
	for !r.context.ShouldClose() {
		fbWidth, fbHeight := r.context.GetFramebufferSize()
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		r.RenderFrame(fbWidth, fbHeight)
		r.context.EndFrame()
	}
	log.Printf("Rendered %d frames", r.frameCount)
}

// Shutdown releases every plane and offscreen resource. The context itself
// is shut down by its owner.
func (r *Renderer) Shutdown() {
	for _, p := range r.livePlanes() {
		p.Remove()
	}
	if r.offscreen != nil {
		r.offscreen.Destroy()
		r.offscreen = nil
	}
}

func glString(s string) *uint8 {
	return gl.Str(s + "\x00")
}

func uniformLocation(program uint32, sh *translator.Shader, name string) int32 {
	return gl.GetUniformLocation(program, glString(sh.MappedName(name)))
}

func newProgram(vertexShaderSource, fragmentShaderSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %v", logText)
	}

	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %v", logText)
	}
	return shader, nil
}
