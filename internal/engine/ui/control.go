package ui

import (
	"github.com/Faultbox/faceshadow/internal/engine/shading"
)

// LightControl is the state behind the light rotation slider. It holds the
// value shown to the user, which may rest on 2π while the proxy itself is
// wrapped back to 0.
type LightControl struct {
	proxy *shading.LightProxy
	ready func() bool
	value float32
}

// NewLightControl creates a control for proxy, shown once ready reports true.
func NewLightControl(proxy *shading.LightProxy, ready func() bool) *LightControl {
	return &LightControl{
		proxy: proxy,
		ready: ready,
		value: proxy.Rotation(),
	}
}

// Visible reports whether the control should be drawn.
func (c *LightControl) Visible() bool {
	return c.ready()
}

// Value returns the slider value in [0, 2π].
func (c *LightControl) Value() float32 {
	return c.value
}

// Set snaps v to the rotation step, clamps it to [0, 2π] and applies it to
// the proxy.
func (c *LightControl) Set(v float32) {
	c.value = shading.QuantizeRotation(v)
	c.proxy.SetRotation(c.value)
}

// Nudge moves the value by n steps, clamped to the slider range.
func (c *LightControl) Nudge(n int) {
	c.Set(c.value + float32(n)*shading.RotationStep)
}
