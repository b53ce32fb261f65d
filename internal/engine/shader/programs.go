package shader

import (
	_ "embed"
	"fmt"
)

// Vertex inputs shared by every program.
const (
	AttribPosition = 0
	AttribNormal   = 1
	AttribTexCoord = 2
)

// Uniform names set by the renderer.
const (
	UniformModel         = "uModel"
	UniformView          = "uView"
	UniformProjection    = "uProjection"
	UniformNormalMatrix  = "uNormalMatrix"
	UniformBaseColor     = "uBaseColor"
	UniformBaseTexture   = "uBaseTexture"
	UniformHasTexture    = "uHasTexture"
	UniformLightPosition = "uLightPosition"
	UniformFaceLightMap  = "uFaceLightMap"
)

// Varyings written by the vertex stage.
const (
	VaryingWorldNormal = "vWorldNormal"
	VaryingUV          = "vUv"
)

//go:embed glsl/toon.vert
var toonVertex string

//go:embed glsl/basic.frag
var basicFragment string

//go:embed glsl/face.frag
var faceFragment string

//go:embed glsl/rim.frag
var rimFragment string

var vertexUniforms = []string{UniformModel, UniformView, UniformProjection, UniformNormalMatrix}

var surfaceUniforms = []string{UniformBaseColor, UniformBaseTexture, UniformHasTexture}

// Source is a vertex/fragment pair plus the interface the renderer expects
// from it.
type Source struct {
	Name     string
	Vertex   string
	Fragment string

	// Uniforms the fragment stage must declare.
	Uniforms []string
}

// The three programs a scene draws with.
var (
	Basic = Source{
		Name:     "basic",
		Vertex:   toonVertex,
		Fragment: basicFragment,
		Uniforms: surfaceUniforms,
	}
	Face = Source{
		Name:     "face",
		Vertex:   toonVertex,
		Fragment: faceFragment,
		Uniforms: append([]string{UniformFaceLightMap}, surfaceUniforms...),
	}
	Rim = Source{
		Name:     "rim",
		Vertex:   toonVertex,
		Fragment: rimFragment,
		Uniforms: append([]string{UniformLightPosition}, surfaceUniforms...),
	}
)

// Check verifies the sources against the shared contract without a GL
// context.
func (s Source) Check() error {
	vert := Contract{
		Uniforms: vertexUniforms,
		Inputs:   []string{"aPosition", "aNormal", "aTexCoord"},
		Outputs:  []string{VaryingWorldNormal, VaryingUV},
	}
	if err := CheckContract(s.Vertex, vert); err != nil {
		return fmt.Errorf("%s vertex: %w", s.Name, err)
	}
	if err := CheckContract(s.Fragment, Contract{Uniforms: s.Uniforms}); err != nil {
		return fmt.Errorf("%s fragment: %w", s.Name, err)
	}
	if err := CheckLinkage(s.Vertex, s.Fragment); err != nil {
		return fmt.Errorf("%s: %w", s.Name, err)
	}
	return nil
}

// Compile checks and then compiles the program.
func (s Source) Compile() (uint32, error) {
	if err := s.Check(); err != nil {
		return 0, err
	}
	program, err := CompileProgram(s.Vertex, s.Fragment)
	if err != nil {
		return 0, fmt.Errorf("%s shader: %w", s.Name, err)
	}
	return program, nil
}
