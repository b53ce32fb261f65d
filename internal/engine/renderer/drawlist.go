package renderer

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/faceshadow/internal/engine/material"
	"github.com/Faultbox/faceshadow/internal/engine/scene"
)

// Variant selects the program a mesh is drawn with.
type Variant int

const (
	VariantBasic Variant = iota
	VariantFace
	VariantRim
)

func (v Variant) String() string {
	switch v {
	case VariantFace:
		return "face"
	case VariantRim:
		return "rim"
	default:
		return "basic"
	}
}

// unsupportedColor is drawn for surfaces whose imported model cannot be shown.
var unsupportedColor = mgl32.Vec4{0.8, 0.8, 0.8, 1}

// DrawItem is one mesh ready to draw.
type DrawItem struct {
	Mesh        *scene.MeshNode
	Variant     Variant
	Transparent bool
	Depth       float32 // view-space distance, larger is farther
}

// VariantOf returns the program variant and blending for a material.
func VariantOf(m material.Material) (Variant, bool) {
	switch mat := m.(type) {
	case *material.FaceShaded:
		return VariantFace, false
	case *material.RimShaded:
		return VariantRim, mat.Transparent
	default:
		return VariantBasic, false
	}
}

// BuildDrawList collects the effectively visible meshes under root. Opaque
// items come first in traversal order, then transparent items back to front.
func BuildDrawList(root scene.Node, view mgl32.Mat4, list []DrawItem) []DrawItem {
	list = list[:0]

	var pos mgl32.Vec3
	var walk func(n scene.Node)
	walk = func(n scene.Node) {
		if !n.Base().Visible {
			return
		}
		if mesh, ok := n.(*scene.MeshNode); ok && mesh.Geometry != nil && mesh.Geometry.VertexCount() > 0 {
			variant, transparent := VariantOf(mesh.Material)
			mesh.WorldPosition(&pos)
			depth := -view.Mul4x1(pos.Vec4(1))[2]
			list = append(list, DrawItem{
				Mesh:        mesh,
				Variant:     variant,
				Transparent: transparent,
				Depth:       depth,
			})
		}
		for _, c := range n.Base().Children() {
			walk(c)
		}
	}
	walk(root)

	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Transparent != b.Transparent {
			return !a.Transparent
		}
		if a.Transparent {
			return a.Depth > b.Depth
		}
		return false
	})
	return list
}
