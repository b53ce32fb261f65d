// Package shading binds the stylized face/rim materials to a loaded character
// model and keeps the shared light uniform in step with the light proxy.
package shading

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/faceshadow/internal/engine/material"
	"github.com/Faultbox/faceshadow/internal/engine/texture"
	"github.com/Faultbox/faceshadow/internal/logger"
)

// Context is the session-scoped state shared by the binder, the frame
// updater and anything that waits for the scene to become ready.
// Create it before binding; it lives for the whole session.
type Context struct {
	ID       uuid.UUID
	Lighting *material.SharedLighting

	ready   bool
	onReady []func()
}

// NewContext creates a context whose shared lighting samples lightmap.
func NewContext(lightmap *texture.Texture) *Context {
	return &Context{
		ID:       uuid.New(),
		Lighting: material.NewSharedLighting(lightmap),
	}
}

// Ready reports whether the model has been bound. Once true it stays true.
func (c *Context) Ready() bool {
	return c.ready
}

// OnReady registers fn to run when the context becomes ready. If it already
// is, fn runs immediately.
func (c *Context) OnReady(fn func()) {
	if c.ready {
		fn()
		return
	}
	c.onReady = append(c.onReady, fn)
}

// markReady latches the ready flag and notifies waiters exactly once.
func (c *Context) markReady() {
	if c.ready {
		return
	}
	c.ready = true
	logger.Info("scene ready", zap.String("session", c.ID.String()))

	waiters := c.onReady
	c.onReady = nil
	for _, fn := range waiters {
		fn()
	}
}
