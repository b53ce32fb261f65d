package shading

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/faceshadow/internal/engine/material"
)

// FrameUpdater copies the tracked child's world position into the shared
// lighting once per frame. It runs from the first frame, before the model is
// bound, so the position is already current when the variants appear.
type FrameUpdater struct {
	proxy    *LightProxy
	lighting *material.SharedLighting

	scratch mgl32.Vec3
	frames  uint64
}

// NewFrameUpdater creates an updater feeding lighting from proxy.
func NewFrameUpdater(proxy *LightProxy, lighting *material.SharedLighting) *FrameUpdater {
	return &FrameUpdater{proxy: proxy, lighting: lighting}
}

// Update recomputes the light position. It reuses a scratch vector and
// does not allocate.
func (u *FrameUpdater) Update() {
	u.proxy.Tracked().Base().WorldPosition(&u.scratch)
	u.lighting.LightPosition = u.scratch
	u.frames++
}

// Frames returns how many times Update has run.
func (u *FrameUpdater) Frames() uint64 {
	return u.frames
}
