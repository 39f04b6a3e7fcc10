package renderer

import (
	"log"

	"github.com/frustak/disto/inputs"
	"github.com/frustak/disto/planer"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Plane is a textured quad covering the viewport, drawn with the shaders
// it was created from.
type Plane struct {
	id       int
	renderer *Renderer
	program  uint32
	vao      uint32
	vbo      uint32
	texture  *inputs.ImageTexture

	uniforms    map[string]*planer.Uniform
	uniformLocs map[string]int32

	mvLoc            int32
	pLoc             int32
	textureMatrixLoc int32
	samplerLoc       int32

	onRender []func()
	removed  bool
}

// position (x, y, z) followed by texture coordinate (u, v)
var quadVertices = []float32{
	-1.0, 1.0, 0.0, 0.0, 1.0,
	-1.0, -1.0, 0.0, 0.0, 0.0,
	1.0, -1.0, 0.0, 1.0, 0.0,

	-1.0, 1.0, 0.0, 0.0, 1.0,
	1.0, -1.0, 0.0, 1.0, 0.0,
	1.0, 1.0, 0.0, 1.0, 1.0,
}

const quadStride = 5 * 4

func newQuad(positionLoc, texCoordLoc int32) (vao, vbo uint32) {
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)
	if positionLoc >= 0 {
		gl.EnableVertexAttribArray(uint32(positionLoc))
		gl.VertexAttribPointer(uint32(positionLoc), 3, gl.FLOAT, false, quadStride, gl.PtrOffset(0))
	}
	if texCoordLoc >= 0 {
		gl.EnableVertexAttribArray(uint32(texCoordLoc))
		gl.VertexAttribPointer(uint32(texCoordLoc), 2, gl.FLOAT, false, quadStride, gl.PtrOffset(3*4))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return vao, vbo
}

func (p *Plane) OnRender(fn func()) {
	p.onRender = append(p.onRender, fn)
}

func (p *Plane) Uniform(key string) *planer.Uniform {
	return p.uniforms[key]
}

// Remove deletes the plane's GL objects immediately. Removing twice is a
// no-op.
func (p *Plane) Remove() {
	if p.removed {
		return
	}
	p.removed = true
	p.renderer.untrack(p)

	gl.DeleteProgram(p.program)
	gl.DeleteBuffers(1, &p.vbo)
	gl.DeleteVertexArrays(1, &p.vao)
	p.texture.Destroy()
	log.Printf("Removed plane %d", p.id)
}

func (p *Plane) tick() {
	for _, fn := range p.onRender {
		fn()
	}
}

func (p *Plane) draw(width, height int) {
	gl.UseProgram(p.program)

	mv, proj := planeMatrices()
	res := p.texture.Resolution()
	cover := coverMatrix(float32(width), float32(height), res[0], res[1])
	if p.mvLoc != -1 {
		gl.UniformMatrix4fv(p.mvLoc, 1, false, &mv[0])
	}
	if p.pLoc != -1 {
		gl.UniformMatrix4fv(p.pLoc, 1, false, &proj[0])
	}
	if p.textureMatrixLoc != -1 {
		gl.UniformMatrix4fv(p.textureMatrixLoc, 1, false, &cover[0])
	}

	for key, u := range p.uniforms {
		if loc := p.uniformLocs[key]; loc != -1 {
			gl.Uniform1f(loc, float32(u.Value))
		}
	}

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, p.texture.GetTextureID())
	if p.samplerLoc != -1 {
		gl.Uniform1i(p.samplerLoc, 0)
	}

	gl.BindVertexArray(p.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// planeMatrices returns the model-view and projection matrices that place
// the quad over the whole viewport.
func planeMatrices() (mv, proj mgl32.Mat4) {
	return mgl32.Ident4(), mgl32.Ortho(-1, 1, -1, 1, -1, 1)
}

// coverMatrix scales texture coordinates around the center so an image of
// size texW x texH covers a plane of size planeW x planeH without
// distortion, cropping the overflowing axis.
func coverMatrix(planeW, planeH, texW, texH float32) mgl32.Mat4 {
	if planeW <= 0 || planeH <= 0 || texW <= 0 || texH <= 0 {
		return mgl32.Ident4()
	}
	planeRatio := planeW / planeH
	texRatio := texW / texH

	sx, sy := float32(1), float32(1)
	if planeRatio > texRatio {
		sy = texRatio / planeRatio
	} else {
		sx = planeRatio / texRatio
	}

	return mgl32.Translate3D(0.5, 0.5, 0).
		Mul4(mgl32.Scale3D(sx, sy, 1)).
		Mul4(mgl32.Translate3D(-0.5, -0.5, 0))
}
