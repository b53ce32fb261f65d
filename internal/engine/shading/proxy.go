package shading

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/faceshadow/internal/engine/material"
	"github.com/Faultbox/faceshadow/internal/engine/scene"
)

// ErrNoTrackedChild is returned when a light proxy node does not have exactly
// one child to track.
var ErrNoTrackedChild = errors.New("shading: light proxy needs exactly one child")

// Rotation limits of the light proxy, in radians.
const (
	RotationStep = math.Pi / 100
	RotationMax  = 2 * math.Pi
)

// wrapEpsilon absorbs float32 residue left by wrapping values near 2π.
const wrapEpsilon = 1e-6

// Proxy defaults.
var (
	DefaultMarkerOffset = mgl32.Vec3{0, 0, 1}
	DefaultMarkerScale  = float32(0.2)
	markerColor         = mgl32.Vec4{1, 0.412, 0.706, 1}
)

// LightProxy is an invisible node rotated about the world up axis. Its only
// child sits off-axis, so rotating the proxy sweeps the child's world
// position around the model; that position drives the shared light.
type LightProxy struct {
	node     scene.Node
	tracked  scene.Node
	rotation float32
}

// NewLightProxy builds a hidden proxy with a small sphere marker as its
// tracked child, placed at offset in the proxy's local space.
func NewLightProxy(offset mgl32.Vec3, markerScale float32) *LightProxy {
	root := scene.NewGroup("light-proxy")
	root.Visible = false

	marker := scene.NewMesh("light-marker",
		scene.NewSphere(1, 16, 12),
		&material.Original{Name: "light-marker", BaseColor: markerColor},
	)
	marker.SetPosition(offset)
	marker.SetScale(mgl32.Vec3{markerScale, markerScale, markerScale})
	scene.Add(root, marker)

	p, err := LightProxyFromNode(root)
	if err != nil {
		panic(err) // root has exactly the marker as child
	}
	return p
}

// LightProxyFromNode adopts an existing node as a light proxy. The node must
// have exactly one child, which becomes the tracked child.
func LightProxyFromNode(n scene.Node) (*LightProxy, error) {
	children := n.Base().Children()
	if len(children) != 1 {
		return nil, ErrNoTrackedChild
	}
	p := &LightProxy{node: n, tracked: children[0]}
	p.SetRotation(0)
	return p, nil
}

// Node returns the proxy's own node, for attaching it to the world.
func (p *LightProxy) Node() scene.Node {
	return p.node
}

// Tracked returns the child whose world position becomes the light position.
func (p *LightProxy) Tracked() scene.Node {
	return p.tracked
}

// Rotation returns the current rotation about the up axis, in [0, 2π).
func (p *LightProxy) Rotation() float32 {
	return p.rotation
}

// SetRotation sets the rotation about the world up axis. Any value is
// accepted and wrapped into [0, 2π), so 0 and 2π give the same pose.
// Only the proxy subtree is affected.
func (p *LightProxy) SetRotation(theta float32) {
	p.rotation = WrapRotation(theta)
	p.node.Base().SetRotation(mgl32.QuatRotate(p.rotation, mgl32.Vec3{0, 1, 0}))
}

// Step rotates the proxy by n increments of RotationStep.
func (p *LightProxy) Step(n int) {
	p.SetRotation(p.rotation + float32(n)*RotationStep)
}

// WrapRotation maps theta into [0, 2π).
func WrapRotation(theta float32) float32 {
	t := math.Mod(float64(theta), RotationMax)
	if t < 0 {
		t += RotationMax
	}
	if t < wrapEpsilon || RotationMax-t < wrapEpsilon {
		return 0
	}
	return float32(t)
}

// QuantizeRotation snaps theta to the nearest multiple of RotationStep within
// [0, 2π]. The upper bound is kept so a slider can rest on its maximum.
func QuantizeRotation(theta float32) float32 {
	steps := math.Round(float64(theta) / RotationStep)
	max := math.Round(RotationMax / RotationStep)
	steps = math.Max(0, math.Min(steps, max))
	return float32(steps * RotationStep)
}
