// Package material defines the materials a character mesh can carry: the
// as-imported original and the two stylized shading variants that replace it.
package material

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/faceshadow/internal/engine/texture"
)

// Material is implemented by every material a mesh can carry.
// The set of implementations is closed to this package.
type Material interface {
	// MaterialName returns the authoring-time material name.
	MaterialName() string

	material()
}

// Original is a material as produced by the model importer.
type Original struct {
	Name      string
	BaseColor mgl32.Vec4
	// Map is the base colour texture, nil when the material is untextured.
	Map *texture.Texture
}

// Unsupported is an imported material whose representation the binder does
// not understand. Meshes carrying one keep it after binding.
type Unsupported struct {
	Name   string
	Reason string
}

// FaceShaded draws the face mesh from the precomputed face lightmap.
type FaceShaded struct {
	Name        string
	BaseTexture *texture.Texture
	Lighting    *SharedLighting
}

// RimShaded darkens the base colour where the surface faces away from the
// light reference point.
type RimShaded struct {
	Name        string
	BaseColor   mgl32.Vec4
	BaseTexture *texture.Texture
	Lighting    *SharedLighting
	Transparent bool
}

func (m *Original) MaterialName() string    { return m.Name }
func (m *Unsupported) MaterialName() string { return m.Name }
func (m *FaceShaded) MaterialName() string  { return m.Name }
func (m *RimShaded) MaterialName() string   { return m.Name }

func (*Original) material()    {}
func (*Unsupported) material() {}
func (*FaceShaded) material()  {}
func (*RimShaded) material()   {}

// IsShadingVariant reports whether m is one of the stylized variants.
func IsShadingVariant(m Material) bool {
	switch m.(type) {
	case *FaceShaded, *RimShaded:
		return true
	default:
		return false
	}
}

// SharedLighting is the per-scene uniform state read by every bound material.
// The frame updater is its only writer.
type SharedLighting struct {
	LightPosition mgl32.Vec3
	Lightmap      *texture.Texture
}

// NewSharedLighting creates the shared state with the light at the origin.
func NewSharedLighting(lightmap *texture.Texture) *SharedLighting {
	return &SharedLighting{Lightmap: lightmap}
}
