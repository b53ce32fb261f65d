// Package renderer draws the scene graph with the program each material
// variant requires.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/faceshadow/internal/engine/camera"
	"github.com/Faultbox/faceshadow/internal/engine/framebuffer"
	"github.com/Faultbox/faceshadow/internal/engine/material"
	"github.com/Faultbox/faceshadow/internal/engine/scene"
	"github.com/Faultbox/faceshadow/internal/engine/shader"
	"github.com/Faultbox/faceshadow/internal/engine/texture"
	"github.com/Faultbox/faceshadow/internal/logger"
)

// Texture units.
const (
	unitBase     = 0
	unitLightmap = 1
)

// Config holds renderer configuration.
type Config struct {
	Width       int
	Height      int
	Background  mgl32.Vec3
	MSAASamples int
}

// Stats describes the last rendered frame.
type Stats struct {
	DrawCalls   int
	Transparent int
	Triangles   int
}

type program struct {
	id uint32

	locModel         int32
	locView          int32
	locProjection    int32
	locNormalMatrix  int32
	locBaseColor     int32
	locBaseTexture   int32
	locHasTexture    int32
	locLightPosition int32
	locFaceLightMap  int32
}

type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
	indexed       bool
}

// Renderer handles all OpenGL rendering into an offscreen target.
type Renderer struct {
	config Config

	programs [3]*program
	meshes   map[*scene.MeshNode]*gpuMesh
	failed   map[*scene.MeshNode]bool
	fb       *framebuffer.Framebuffer

	list  []DrawItem
	stats Stats
}

// Init loads the OpenGL function pointers and logs the driver.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return nil
}

// New compiles the programs and creates the offscreen target.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		meshes: make(map[*scene.MeshNode]*gpuMesh),
		failed: make(map[*scene.MeshNode]bool),
	}

	for v, src := range map[Variant]shader.Source{
		VariantBasic: shader.Basic,
		VariantFace:  shader.Face,
		VariantRim:   shader.Rim,
	} {
		p, err := newProgram(src)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.programs[v] = p
	}

	fb, err := framebuffer.New(int32(cfg.Width), int32(cfg.Height), int32(cfg.MSAASamples))
	if err != nil {
		r.Close()
		return nil, err
	}
	r.fb = fb

	logger.Info("renderer ready",
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int32("msaa", fb.Samples()),
	)
	return r, nil
}

func newProgram(src shader.Source) (*program, error) {
	id, err := src.Compile()
	if err != nil {
		return nil, err
	}
	p := &program{
		id:               id,
		locModel:         shader.GetUniform(id, shader.UniformModel),
		locView:          shader.GetUniform(id, shader.UniformView),
		locProjection:    shader.GetUniform(id, shader.UniformProjection),
		locNormalMatrix:  shader.GetUniform(id, shader.UniformNormalMatrix),
		locBaseColor:     shader.GetUniform(id, shader.UniformBaseColor),
		locBaseTexture:   shader.GetUniform(id, shader.UniformBaseTexture),
		locHasTexture:    shader.GetUniform(id, shader.UniformHasTexture),
		locLightPosition: shader.GetUniform(id, shader.UniformLightPosition),
		locFaceLightMap:  shader.GetUniform(id, shader.UniformFaceLightMap),
	}
	logger.Debug("shader program created", zap.String("name", src.Name), zap.Uint32("program", id))
	return p, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for _, m := range r.meshes {
		m.delete()
	}
	r.meshes = map[*scene.MeshNode]*gpuMesh{}
	for i, p := range r.programs {
		if p != nil {
			gl.DeleteProgram(p.id)
			r.programs[i] = nil
		}
	}
	if r.fb != nil {
		r.fb.Destroy()
		r.fb = nil
	}
}

// Resize changes the offscreen target size.
func (r *Renderer) Resize(width, height int) error {
	width, height = max(width, 1), max(height, 1)
	if width == r.config.Width && height == r.config.Height {
		return nil
	}
	r.config.Width = width
	r.config.Height = height
	logger.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
	return r.fb.Resize(int32(width), int32(height))
}

// Size returns the offscreen target size.
func (r *Renderer) Size() (width, height int) {
	return r.config.Width, r.config.Height
}

// Texture returns the GL texture holding the last rendered frame.
func (r *Renderer) Texture() uint32 {
	return r.fb.ColorTexture()
}

// Framebuffer returns the offscreen target.
func (r *Renderer) Framebuffer() *framebuffer.Framebuffer {
	return r.fb
}

// Stats returns counters for the last frame.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Render draws everything visible under root as seen from cam.
func (r *Renderer) Render(root scene.Node, cam *camera.OrbitCamera) {
	restore := r.fb.BindWithViewport()
	defer restore()

	bg := r.config.Background
	r.fb.Clear(bg[0], bg[1], bg[2], 1)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Disable(gl.CULL_FACE)

	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix(float32(r.config.Width) / float32(r.config.Height))

	r.list = BuildDrawList(root, view, r.list)
	r.stats = Stats{}

	blending := false
	for i := range r.list {
		item := &r.list[i]
		if item.Transparent != blending {
			blending = item.Transparent
			if blending {
				gl.Enable(gl.BLEND)
				gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
			} else {
				gl.Disable(gl.BLEND)
			}
		}
		r.draw(item, view, proj)
	}
	if blending {
		gl.Disable(gl.BLEND)
	}
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

func (r *Renderer) draw(item *DrawItem, view, proj mgl32.Mat4) {
	gm := r.upload(item.Mesh)
	if gm == nil {
		return
	}

	p := r.programs[item.Variant]
	gl.UseProgram(p.id)

	model := item.Mesh.WorldMatrix()
	normal := item.Mesh.NormalMatrix()
	gl.UniformMatrix4fv(p.locModel, 1, false, &model[0])
	gl.UniformMatrix4fv(p.locView, 1, false, &view[0])
	gl.UniformMatrix4fv(p.locProjection, 1, false, &proj[0])
	gl.UniformMatrix3fv(p.locNormalMatrix, 1, false, &normal[0])

	switch mat := item.Mesh.Material.(type) {
	case *material.FaceShaded:
		r.bindSurface(p, mgl32.Vec4{1, 1, 1, 1}, mat.BaseTexture)
		if mat.Lighting != nil {
			bindTexture(unitLightmap, mat.Lighting.Lightmap)
		}
		gl.Uniform1i(p.locFaceLightMap, unitLightmap)
	case *material.RimShaded:
		r.bindSurface(p, mat.BaseColor, mat.BaseTexture)
		if mat.Lighting != nil {
			lp := mat.Lighting.LightPosition
			gl.Uniform3f(p.locLightPosition, lp[0], lp[1], lp[2])
		}
	case *material.Original:
		r.bindSurface(p, mat.BaseColor, mat.Map)
	default:
		r.bindSurface(p, unsupportedColor, nil)
	}

	gl.BindVertexArray(gm.vao)
	if gm.indexed {
		gl.DrawElements(gl.TRIANGLES, gm.count, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, gm.count)
	}

	r.stats.DrawCalls++
	r.stats.Triangles += int(gm.count) / 3
	if item.Transparent {
		r.stats.Transparent++
	}
}

func (r *Renderer) bindSurface(p *program, color mgl32.Vec4, tex *texture.Texture) {
	gl.Uniform4f(p.locBaseColor, color[0], color[1], color[2], color[3])
	has := bindTexture(unitBase, tex)
	gl.Uniform1i(p.locBaseTexture, unitBase)
	if has {
		gl.Uniform1i(p.locHasTexture, 1)
	} else {
		gl.Uniform1i(p.locHasTexture, 0)
	}
}

// bindTexture uploads tex on first use and binds it to unit. It reports
// whether a texture is bound.
func bindTexture(unit uint32, tex *texture.Texture) bool {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	if tex == nil {
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return false
	}
	id, err := tex.Upload()
	if err != nil {
		logger.Warn("texture upload failed", zap.String("texture", tex.Name), zap.Error(err))
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return false
	}
	gl.BindTexture(gl.TEXTURE_2D, id)
	return true
}

// upload creates the vertex arrays for a mesh on first use.
func (r *Renderer) upload(mesh *scene.MeshNode) *gpuMesh {
	if gm, ok := r.meshes[mesh]; ok {
		return gm
	}
	if r.failed[mesh] {
		return nil
	}

	geom := mesh.Geometry
	geom.ComputeNormals()
	vertices := geom.Interleave()
	if len(vertices) == 0 {
		r.failed[mesh] = true
		logger.Warn("mesh has no vertices", zap.String("mesh", mesh.Name))
		return nil
	}

	gm := &gpuMesh{}
	gl.GenVertexArrays(1, &gm.vao)
	gl.BindVertexArray(gm.vao)

	gl.GenBuffers(1, &gm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	stride := int32(scene.VertexStride * 4)
	gl.VertexAttribPointerWithOffset(shader.AttribPosition, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(shader.AttribPosition)
	gl.VertexAttribPointerWithOffset(shader.AttribNormal, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(shader.AttribNormal)
	gl.VertexAttribPointerWithOffset(shader.AttribTexCoord, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(shader.AttribTexCoord)

	if len(geom.Indices) > 0 {
		gl.GenBuffers(1, &gm.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(geom.Indices)*4, unsafe.Pointer(&geom.Indices[0]), gl.STATIC_DRAW)
		gm.indexed = true
		gm.count = int32(len(geom.Indices))
	} else {
		gm.count = int32(geom.VertexCount())
	}

	gl.BindVertexArray(0)
	r.meshes[mesh] = gm

	logger.Debug("mesh uploaded",
		zap.String("mesh", mesh.Name),
		zap.Int("vertices", geom.VertexCount()),
		zap.Int32("indices", gm.count),
	)
	return gm
}

func (m *gpuMesh) delete() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
}
