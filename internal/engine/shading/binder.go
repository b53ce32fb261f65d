package shading

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/faceshadow/internal/engine/material"
	"github.com/Faultbox/faceshadow/internal/engine/scene"
	"github.com/Faultbox/faceshadow/internal/logger"
)

// ErrAlreadyBound is returned when a model is bound a second time in the
// same session. Re-binding would wrap the replacement materials instead of
// the originals.
var ErrAlreadyBound = errors.New("shading: model already bound")

// BindStats counts what a binding pass did.
type BindStats struct {
	Face    int // meshes given the lightmap-driven variant
	Rim     int // meshes given the rim-threshold variant
	Variant int // meshes already carrying a shading variant, left as is
	Skipped int // meshes whose material is unsupported
	NonMesh int // group and other nodes, left untouched
}

// Binder replaces every imported mesh material of a model with the shading
// variant its name selects.
type Binder struct {
	ctx *Context
}

// NewBinder creates a binder that wires variants to ctx's shared lighting.
func NewBinder(ctx *Context) *Binder {
	return &Binder{ctx: ctx}
}

// Bind walks root depth-first, replaces mesh materials and then marks the
// context ready. It must run on the render thread after the model has
// finished loading. A second call returns ErrAlreadyBound and changes nothing.
func (b *Binder) Bind(root scene.Node) (BindStats, error) {
	var stats BindStats
	if b.ctx.Ready() {
		return stats, ErrAlreadyBound
	}

	log := logger.With(
		zap.String("session", b.ctx.ID.String()),
		zap.String("model", root.Base().Name),
	)

	start := time.Now()
	scene.Walk(root, func(n scene.Node) {
		switch node := n.(type) {
		case *scene.MeshNode:
			b.bindMesh(log, node, &stats)
		case *scene.GroupNode, *scene.OtherNode:
			stats.NonMesh++
		}
	})

	b.ctx.markReady()

	log.Info("materials bound",
		zap.Int("face", stats.Face),
		zap.Int("rim", stats.Rim),
		zap.Int("variant", stats.Variant),
		zap.Int("skipped", stats.Skipped),
		zap.Int("non_mesh", stats.NonMesh),
		zap.Duration("took", time.Since(start)),
	)
	return stats, nil
}

func (b *Binder) bindMesh(log *zap.Logger, node *scene.MeshNode, stats *BindStats) {
	if material.IsShadingVariant(node.Material) {
		stats.Variant++
		return
	}
	orig, ok := node.Material.(*material.Original)
	if !ok {
		log.Warn("material skipped",
			zap.String("mesh", node.Name),
			zap.String("type", fmt.Sprintf("%T", node.Material)),
		)
		stats.Skipped++
		return
	}

	kind := material.Classify(orig.Name)
	switch kind {
	case material.KindFace:
		node.Material = material.NewFaceShaded(orig, b.ctx.Lighting)
		stats.Face++
	default:
		node.Material = material.NewRimShaded(orig, b.ctx.Lighting)
		stats.Rim++
	}

	log.Debug("material replaced",
		zap.String("mesh", node.Name),
		zap.String("material", orig.Name),
		zap.Stringer("variant", kind),
	)
}
