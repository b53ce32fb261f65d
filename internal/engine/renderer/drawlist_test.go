package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/faceshadow/internal/engine/material"
	"github.com/Faultbox/faceshadow/internal/engine/scene"
)

func tri() *scene.Geometry {
	return &scene.Geometry{Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}}
}

func names(list []DrawItem) []string {
	out := make([]string, len(list))
	for i, it := range list {
		out[i] = it.Mesh.Name
	}
	return out
}

func TestVariantOf(t *testing.T) {
	lighting := material.NewSharedLighting(nil)

	v, transparent := VariantOf(&material.Original{Name: "x"})
	assert.Equal(t, VariantBasic, v)
	assert.False(t, transparent)

	v, transparent = VariantOf(material.NewFaceShaded(&material.Original{Name: "face"}, lighting))
	assert.Equal(t, VariantFace, v)
	assert.False(t, transparent)

	v, transparent = VariantOf(material.NewRimShaded(&material.Original{Name: "body"}, lighting))
	assert.Equal(t, VariantRim, v)
	assert.True(t, transparent)

	v, _ = VariantOf(&material.Unsupported{Name: "gloss"})
	assert.Equal(t, VariantBasic, v)

	assert.Equal(t, "rim", VariantRim.String())
}

func TestBuildDrawListOrdering(t *testing.T) {
	lighting := material.NewSharedLighting(nil)
	root := scene.NewGroup("root")

	near := scene.NewMesh("near", tri(), material.NewRimShaded(&material.Original{Name: "a"}, lighting))
	near.SetPosition(mgl32.Vec3{0, 0, -1})
	far := scene.NewMesh("far", tri(), material.NewRimShaded(&material.Original{Name: "b"}, lighting))
	far.SetPosition(mgl32.Vec3{0, 0, -5})
	face := scene.NewMesh("face", tri(), material.NewFaceShaded(&material.Original{Name: "face"}, lighting))
	orig := scene.NewMesh("orig", tri(), &material.Original{Name: "c"})

	scene.Add(root, near)
	scene.Add(root, face)
	scene.Add(root, far)
	scene.Add(root, orig)

	list := BuildDrawList(root, mgl32.Ident4(), nil)
	require.Len(t, list, 4)
	// Opaque in traversal order, then transparent farthest first.
	assert.Equal(t, []string{"face", "orig", "far", "near"}, names(list))
	assert.InDelta(t, 5, list[2].Depth, 1e-5)
}

func TestBuildDrawListSkipsHiddenAndEmpty(t *testing.T) {
	root := scene.NewGroup("root")
	hidden := scene.NewGroup("hidden")
	hidden.Visible = false
	scene.Add(root, hidden)
	scene.Add(hidden, scene.NewMesh("marker", tri(), &material.Original{}))
	scene.Add(root, scene.NewMesh("empty", &scene.Geometry{}, &material.Original{}))
	scene.Add(root, scene.NewMesh("shown", tri(), &material.Original{}))

	list := BuildDrawList(root, mgl32.Ident4(), nil)
	assert.Equal(t, []string{"shown"}, names(list))

	hidden.Visible = true
	list = BuildDrawList(root, mgl32.Ident4(), list)
	assert.Equal(t, []string{"marker", "shown"}, names(list))
}
