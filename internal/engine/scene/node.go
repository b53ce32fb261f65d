// Package scene provides the node graph a loaded model is represented as.
//
// A Node is one of *GroupNode, *MeshNode or *OtherNode. Traversal code
// dispatches on the concrete type with a type switch; the set is closed.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/faceshadow/internal/engine/material"
)

// Node is an element of the scene graph.
type Node interface {
	Base() *NodeBase
	node()
}

// NodeBase holds the state every node kind shares: name, local transform,
// visibility and hierarchy links.
type NodeBase struct {
	Name    string
	Visible bool

	transform Transform
	parent    Node
	children  []Node

	worldDirty  bool
	worldMatrix mgl32.Mat4
}

// GroupNode is an empty transform node used to organise children.
type GroupNode struct {
	NodeBase
}

// MeshNode carries renderable geometry and exactly one material.
type MeshNode struct {
	NodeBase
	Geometry *Geometry
	Material material.Material
}

// OtherNode is any imported node kind this system does not render
// (cameras, lights, bones).
type OtherNode struct {
	NodeBase
	Kind string
}

func (n *NodeBase) Base() *NodeBase { return n }

func (*GroupNode) node() {}
func (*MeshNode) node()  {}
func (*OtherNode) node() {}

func newBase(name string) NodeBase {
	return NodeBase{
		Name:       name,
		Visible:    true,
		transform:  IdentityTransform(),
		worldDirty: true,
	}
}

// NewGroup creates an empty group node.
func NewGroup(name string) *GroupNode {
	return &GroupNode{NodeBase: newBase(name)}
}

// NewMesh creates a mesh node with the given geometry and material.
func NewMesh(name string, geom *Geometry, mat material.Material) *MeshNode {
	return &MeshNode{NodeBase: newBase(name), Geometry: geom, Material: mat}
}

// NewOther creates a non-renderable node of the given imported kind.
func NewOther(name, kind string) *OtherNode {
	return &OtherNode{NodeBase: newBase(name), Kind: kind}
}

// Parent returns the node's parent, or nil for a root.
func (n *NodeBase) Parent() Node {
	return n.parent
}

// Children returns the node's children in insertion order.
func (n *NodeBase) Children() []Node {
	return n.children
}

// Add attaches child to parent, detaching it from any previous parent.
func Add(parent, child Node) {
	cb := child.Base()
	if cb.parent != nil {
		Remove(cb.parent, child)
	}
	cb.parent = parent
	pb := parent.Base()
	pb.children = append(pb.children, child)
	markDirty(child)
}

// Remove detaches child from parent. It is a no-op if child is not attached.
func Remove(parent, child Node) {
	pb := parent.Base()
	for i, c := range pb.children {
		if c == child {
			pb.children = append(pb.children[:i], pb.children[i+1:]...)
			child.Base().parent = nil
			markDirty(child)
			return
		}
	}
}

// Walk visits root and all its descendants depth-first, parents before
// children, in child insertion order.
func Walk(root Node, fn func(Node)) {
	fn(root)
	for _, c := range root.Base().children {
		Walk(c, fn)
	}
}

// Meshes returns every mesh node under root in traversal order.
func Meshes(root Node) []*MeshNode {
	var out []*MeshNode
	Walk(root, func(n Node) {
		if m, ok := n.(*MeshNode); ok {
			out = append(out, m)
		}
	})
	return out
}

// EffectiveVisible reports whether n and all its ancestors are visible.
func EffectiveVisible(n Node) bool {
	for cur := n; cur != nil; cur = cur.Base().parent {
		if !cur.Base().Visible {
			return false
		}
	}
	return true
}
