package shader

import (
	"fmt"
)

// ─────────────────────────────── Plane shaders ────────────────────────────────
//
// Both sources are written in the WebGL (ESSL 1.00) dialect. The renderer
// translates them to the desktop profile before compiling.

const vertexShaderSource = `
precision mediump float;

attribute vec3 aVertexPosition;
attribute vec2 aTextureCoord;

uniform mat4 uMVMatrix;
uniform mat4 uPMatrix;

// maps plane coordinates onto the image so it covers the plane
uniform mat4 uTextureMatrix0;

varying vec3 vVertexPosition;
varying vec2 vTextureCoord;

void main() {
    vec3 vertexPosition = aVertexPosition;

    gl_Position = uPMatrix * uMVMatrix * vec4(vertexPosition, 1.0);

    vTextureCoord = (uTextureMatrix0 * vec4(aTextureCoord, 0.0, 1.0)).xy;
    vVertexPosition = vertexPosition;
}
`

const fragmentShaderTemplate = `
precision mediump float;

varying vec3 vVertexPosition;
varying vec2 vTextureCoord;

uniform float uTime;

uniform sampler2D uSampler0;

void main() {
    vec2 textureCoord = vTextureCoord;

    // texture coordinates range from 0.0 to 1.0 on both axes
    %s
    %s

    gl_FragColor = texture2D(uSampler0, textureCoord);
}
`

// Source is a vertex/fragment shader pair.
type Source struct {
	Vertex   string
	Fragment string
}

// ────────────────────────────────── Public API ─────────────────────────────────

func GenerateVertexShader() string {
	return vertexShaderSource
}

// GenerateFragmentShader embeds the displacement statements for d. The x
// statement draws its operators from c before the y statement does.
func GenerateFragmentShader(d Displacement, c Chooser) string {
	x := XStatement(d, c)
	y := YStatement(d, c)
	return fmt.Sprintf(fragmentShaderTemplate, x, y)
}

// Generate builds the full shader pair for d.
func Generate(d Displacement, c Chooser) Source {
	return Source{
		Vertex:   GenerateVertexShader(),
		Fragment: GenerateFragmentShader(d, c),
	}
}
