package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is the number of float32s per interleaved vertex:
// position (3), normal (3), texture coordinate (2).
const VertexStride = 8

// Geometry holds indexed triangle data in model space.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// IndexCount returns the number of indices, or the vertex count when the
// geometry is not indexed.
func (g *Geometry) IndexCount() int {
	if len(g.Indices) > 0 {
		return len(g.Indices)
	}
	return len(g.Positions)
}

// triangle returns the vertex indices of triangle i.
func (g *Geometry) triangle(i int) (a, b, c uint32) {
	if len(g.Indices) > 0 {
		return g.Indices[i*3], g.Indices[i*3+1], g.Indices[i*3+2]
	}
	base := uint32(i * 3)
	return base, base + 1, base + 2
}

// ComputeNormals fills Normals with area-weighted smooth vertex normals.
// Existing normals are kept when there is one per vertex.
func (g *Geometry) ComputeNormals() {
	if len(g.Normals) == len(g.Positions) {
		return
	}

	normals := make([]mgl32.Vec3, len(g.Positions))
	for i := 0; i < g.IndexCount()/3; i++ {
		a, b, c := g.triangle(i)
		if int(a) >= len(normals) || int(b) >= len(normals) || int(c) >= len(normals) {
			continue
		}
		e1 := g.Positions[b].Sub(g.Positions[a])
		e2 := g.Positions[c].Sub(g.Positions[a])
		n := e1.Cross(e2)
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}

	for i, n := range normals {
		if l := n.Len(); l > 1e-6 {
			normals[i] = n.Mul(1 / l)
		} else {
			normals[i] = mgl32.Vec3{0, 1, 0}
		}
	}
	g.Normals = normals
}

// Bounds returns the axis-aligned bounding box of the positions.
func (g *Geometry) Bounds() (min, max mgl32.Vec3) {
	if len(g.Positions) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	min, max = g.Positions[0], g.Positions[0]
	for _, p := range g.Positions[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return min, max
}

// WorldBounds returns the world-space bounding box of every visible mesh
// under root. ok is false when there is nothing to bound.
func WorldBounds(root Node) (min, max mgl32.Vec3, ok bool) {
	for _, m := range Meshes(root) {
		if m.Geometry == nil || len(m.Geometry.Positions) == 0 || !EffectiveVisible(m) {
			continue
		}
		world := m.WorldMatrix()
		for _, p := range m.Geometry.Positions {
			w := world.Mul4x1(p.Vec4(1)).Vec3()
			if !ok {
				min, max, ok = w, w, true
				continue
			}
			for i := 0; i < 3; i++ {
				min[i] = float32(math.Min(float64(min[i]), float64(w[i])))
				max[i] = float32(math.Max(float64(max[i]), float64(w[i])))
			}
		}
	}
	return min, max, ok
}

// Interleave packs the vertex attributes for GPU upload using VertexStride.
// Missing normals or UVs are written as zero.
func (g *Geometry) Interleave() []float32 {
	out := make([]float32, 0, len(g.Positions)*VertexStride)
	for i, p := range g.Positions {
		var n mgl32.Vec3
		if i < len(g.Normals) {
			n = g.Normals[i]
		}
		var uv mgl32.Vec2
		if i < len(g.UVs) {
			uv = g.UVs[i]
		}
		out = append(out, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
	}
	return out
}

// NewSphere builds a UV sphere of the given radius centered on the origin.
// Segment counts below 3 (width) or 2 (height) are raised to those minimums.
func NewSphere(radius float32, widthSegments, heightSegments int) *Geometry {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}

	g := &Geometry{}
	for y := 0; y <= heightSegments; y++ {
		v := float32(y) / float32(heightSegments)
		theta := float64(v) * math.Pi
		for x := 0; x <= widthSegments; x++ {
			u := float32(x) / float32(widthSegments)
			phi := float64(u) * 2 * math.Pi

			n := mgl32.Vec3{
				float32(-math.Cos(phi) * math.Sin(theta)),
				float32(math.Cos(theta)),
				float32(math.Sin(phi) * math.Sin(theta)),
			}
			g.Positions = append(g.Positions, n.Mul(radius))
			g.Normals = append(g.Normals, n)
			g.UVs = append(g.UVs, mgl32.Vec2{u, 1 - v})
		}
	}

	row := uint32(widthSegments + 1)
	for y := 0; y < heightSegments; y++ {
		for x := 0; x < widthSegments; x++ {
			a := uint32(y)*row + uint32(x) + 1
			b := uint32(y)*row + uint32(x)
			c := uint32(y+1)*row + uint32(x)
			d := uint32(y+1)*row + uint32(x) + 1
			if y != 0 {
				g.Indices = append(g.Indices, a, b, d)
			}
			if y != heightSegments-1 {
				g.Indices = append(g.Indices, b, c, d)
			}
		}
	}
	return g
}
