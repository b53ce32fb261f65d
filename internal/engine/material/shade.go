package material

import (
	"github.com/go-gl/mathgl/mgl32"
)

// RimShadowFactor scales the RGB of fragments facing away from the light.
const RimShadowFactor = 0.8

// FaceLitThreshold is the lightmap red-channel level at or above which a
// face fragment is lit.
const FaceLitThreshold = 0.5

// NewFaceShaded builds the face variant from an imported material.
func NewFaceShaded(orig *Original, lighting *SharedLighting) *FaceShaded {
	return &FaceShaded{
		Name:        orig.Name,
		BaseTexture: orig.Map,
		Lighting:    lighting,
	}
}

// NewRimShaded builds the rim-threshold variant from an imported material.
func NewRimShaded(orig *Original, lighting *SharedLighting) *RimShaded {
	return &RimShaded{
		Name:        orig.Name,
		BaseColor:   orig.BaseColor,
		BaseTexture: orig.Map,
		Lighting:    lighting,
		Transparent: true,
	}
}

// Lit reports whether a fragment with the given world normal is on the lit
// side of the light position, treated as a direction. The step is inclusive:
// a perpendicular normal is lit.
func Lit(worldNormal, lightPosition mgl32.Vec3) bool {
	n := worldNormal
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	return n.Dot(lightPosition) >= 0
}

// ShadeRim applies the rim-threshold rule to a diffuse colour. Alpha is
// passed through.
func ShadeRim(diffuse mgl32.Vec4, worldNormal, lightPosition mgl32.Vec3) mgl32.Vec4 {
	if Lit(worldNormal, lightPosition) {
		return diffuse
	}
	return darken(diffuse)
}

// ShadeFace applies the face rule: the lightmap texel decides light or
// shadow, the light position is not consulted.
func ShadeFace(diffuse mgl32.Vec4, lightmapTexel mgl32.Vec4) mgl32.Vec4 {
	if lightmapTexel[0] >= FaceLitThreshold {
		return diffuse
	}
	return darken(diffuse)
}

// Shade evaluates the rim rule for one fragment against the current shared
// light position. texel is the base texture sample, or white when untextured.
func (m *RimShaded) Shade(texel mgl32.Vec4, worldNormal mgl32.Vec3) mgl32.Vec4 {
	diffuse := mgl32.Vec4{
		m.BaseColor[0] * texel[0],
		m.BaseColor[1] * texel[1],
		m.BaseColor[2] * texel[2],
		m.BaseColor[3] * texel[3],
	}
	return ShadeRim(diffuse, worldNormal, m.Lighting.LightPosition)
}

// Shade evaluates the face rule for one fragment at texture coordinate uv.
func (m *FaceShaded) Shade(texel mgl32.Vec4, uv mgl32.Vec2) mgl32.Vec4 {
	lm := mgl32.Vec4{1, 1, 1, 1}
	if m.Lighting != nil && m.Lighting.Lightmap != nil {
		c := m.Lighting.Lightmap.Sample(uv[0], uv[1])
		lm = mgl32.Vec4{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
	}
	return ShadeFace(texel, lm)
}

func darken(c mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{
		c[0] * RimShadowFactor,
		c[1] * RimShadowFactor,
		c[2] * RimShadowFactor,
		c[3],
	}
}
