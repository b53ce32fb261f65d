package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a node's local translation, rotation and scale.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// IdentityTransform returns a transform that leaves points unchanged.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix returns T * R * S.
func (t Transform) Matrix() mgl32.Mat4 {
	m := mgl32.Translate3D(t.Position[0], t.Position[1], t.Position[2])
	m = m.Mul4(t.Rotation.Mat4())
	return m.Mul4(mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// DecomposeMatrix splits an affine matrix without shear into translation,
// rotation and scale.
func DecomposeMatrix(m mgl32.Mat4) Transform {
	pos := m.Col(3).Vec3()
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	if m.Mat3().Det() < 0 {
		sx = -sx
	}

	rot := m
	if sx != 0 {
		rot.SetCol(0, m.Col(0).Mul(1/sx))
	}
	if sy != 0 {
		rot.SetCol(1, m.Col(1).Mul(1/sy))
	}
	if sz != 0 {
		rot.SetCol(2, m.Col(2).Mul(1/sz))
	}
	rot.SetCol(3, mgl32.Vec4{0, 0, 0, 1})

	return Transform{
		Position: pos,
		Rotation: mgl32.Mat4ToQuat(rot).Normalize(),
		Scale:    mgl32.Vec3{sx, sy, sz},
	}
}

// Transform returns the node's local transform.
func (n *NodeBase) Transform() Transform {
	return n.transform
}

// SetTransform replaces the local transform.
func (n *NodeBase) SetTransform(t Transform) {
	n.transform = t
	n.markDirty()
}

// SetPosition sets the local translation.
func (n *NodeBase) SetPosition(p mgl32.Vec3) {
	n.transform.Position = p
	n.markDirty()
}

// SetRotation sets the local rotation.
func (n *NodeBase) SetRotation(q mgl32.Quat) {
	n.transform.Rotation = q
	n.markDirty()
}

// SetScale sets the local scale.
func (n *NodeBase) SetScale(s mgl32.Vec3) {
	n.transform.Scale = s
	n.markDirty()
}

// WorldMatrix returns the node's local transform composed with all of its
// ancestors'. The result is cached until the node or an ancestor changes.
func (n *NodeBase) WorldMatrix() mgl32.Mat4 {
	if n.worldDirty {
		local := n.transform.Matrix()
		if n.parent != nil {
			n.worldMatrix = n.parent.Base().WorldMatrix().Mul4(local)
		} else {
			n.worldMatrix = local
		}
		n.worldDirty = false
	}
	return n.worldMatrix
}

// WorldPosition writes the node's world-space origin into dst.
func (n *NodeBase) WorldPosition(dst *mgl32.Vec3) {
	m := n.WorldMatrix()
	dst[0] = m[12]
	dst[1] = m[13]
	dst[2] = m[14]
}

// NormalMatrix returns the inverse-transpose of the world matrix's upper 3x3.
func (n *NodeBase) NormalMatrix() mgl32.Mat3 {
	return n.WorldMatrix().Mat3().Inv().Transpose()
}

func (n *NodeBase) markDirty() {
	n.worldDirty = true
	for _, c := range n.children {
		c.Base().markDirty()
	}
}

func markDirty(n Node) {
	n.Base().markDirty()
}
