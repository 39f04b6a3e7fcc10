package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	translator     *gst.ShaderTranslator
	translatorErr  error
	translatorOnce sync.Once
)

// GetTranslator returns the shared translator, creating it on first use.
func GetTranslator() (*gst.ShaderTranslator, error) {
	translatorOnce.Do(func() {
		translator, translatorErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, translatorErr
}

// Shader is a translated shader stage.
type Shader struct {
	Code  string
	names map[string]string
}

// MappedName returns the name the translator gave to a declared variable.
// Names the translator did not report are returned unchanged.
func (s *Shader) MappedName(name string) string {
	if mapped, ok := s.names[name]; ok && mapped != "" {
		return mapped
	}
	return name
}

// Translate converts WebGL dialect source for the given stage ("vertex" or
// "fragment") into desktop GLSL 4.10.
func Translate(source, stage string) (*Shader, error) {
	t, err := GetTranslator()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader translator: %w", err)
	}
	out, err := t.TranslateShader(source, stage, gst.ShaderSpecWebGL2, gst.OutputFormatGLSL410)
	if err != nil {
		return nil, fmt.Errorf("%s shader translation failed: %w", stage, err)
	}

	s := &Shader{
		Code:  out.Code,
		names: make(map[string]string, len(out.Variables)),
	}
	for name, v := range out.Variables {
		s.names[name] = v.MappedName
	}
	return s, nil
}
