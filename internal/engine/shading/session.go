package shading

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/faceshadow/internal/engine/scene"
	"github.com/Faultbox/faceshadow/internal/engine/texture"
)

// Session assembles the world graph for one viewing session: the light
// proxy is present from the start, the model joins it when loading finishes.
type Session struct {
	Ctx     *Context
	World   *scene.GroupNode
	Proxy   *LightProxy
	Updater *FrameUpdater

	binder *Binder
	model  scene.Node
}

// NewSession creates the context, the proxy and the updater, and attaches
// the proxy to a fresh world root.
func NewSession(lightmap *texture.Texture, markerOffset mgl32.Vec3, markerScale float32) *Session {
	ctx := NewContext(lightmap)
	proxy := NewLightProxy(markerOffset, markerScale)

	world := scene.NewGroup("world")
	scene.Add(world, proxy.Node())

	return &Session{
		Ctx:     ctx,
		World:   world,
		Proxy:   proxy,
		Updater: NewFrameUpdater(proxy, ctx.Lighting),
		binder:  NewBinder(ctx),
	}
}

// Frame runs the per-frame light update. Call it once per frame before the
// scene is drawn.
func (s *Session) Frame() {
	s.Updater.Update()
}

// Attach adds a loaded model to the world and binds its materials.
// Only one model may be attached per session.
func (s *Session) Attach(model scene.Node) (BindStats, error) {
	if s.model != nil || s.Ctx.Ready() {
		return BindStats{}, ErrAlreadyBound
	}
	scene.Add(s.World, model)
	s.model = model
	return s.binder.Bind(model)
}

// Model returns the attached model, or nil while it is still loading.
func (s *Session) Model() scene.Node {
	return s.model
}
