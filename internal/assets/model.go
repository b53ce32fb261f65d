package assets

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/faceshadow/internal/engine/material"
	"github.com/Faultbox/faceshadow/internal/engine/scene"
	"github.com/Faultbox/faceshadow/internal/engine/texture"
	"github.com/Faultbox/faceshadow/internal/logger"
)

// ErrNoScene is returned for a document with nothing to instantiate.
var ErrNoScene = errors.New("assets: model has no scene")

// Extensions that change how a material must be drawn and that this loader
// cannot reproduce.
const (
	extSpecularGlossiness = "KHR_materials_pbrSpecularGlossiness"
	extLightsPunctual     = "KHR_lights_punctual"
)

// Model is a loaded character model.
type Model struct {
	ID     uuid.UUID
	Path   string
	Root   *scene.GroupNode
	Nodes  int
	Meshes int
	Took   time.Duration
}

// ModelLoader turns glTF/GLB documents into scene graphs.
type ModelLoader struct {
	assets *Manager
}

// NewModelLoader creates a loader resolving paths through m.
func NewModelLoader(m *Manager) *ModelLoader {
	return &ModelLoader{assets: m}
}

// Load reads and converts the model at path. Only CPU-side data is built,
// so it is safe to call off the render thread.
func (l *ModelLoader) Load(path string) (*Model, error) {
	start := time.Now()

	full, err := l.assets.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}

	doc, err := gltf.Open(full)
	if err != nil {
		return nil, fmt.Errorf("opening model %s: %w", full, err)
	}

	m, err := l.FromDocument(doc, filepath.Dir(full), filepath.Base(full))
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", full, err)
	}
	m.Path = full
	m.Took = time.Since(start)

	logger.Info("model loaded",
		zap.String("path", full),
		zap.String("id", m.ID.String()),
		zap.Int("nodes", m.Nodes),
		zap.Int("meshes", m.Meshes),
		zap.Duration("took", m.Took),
	)
	for _, part := range scene.Flatten(m.Root) {
		logger.Debug("model part", zap.Stringer("part", part))
	}
	return m, nil
}

// FromDocument converts an already decoded document. baseDir resolves
// external image URIs.
func (l *ModelLoader) FromDocument(doc *gltf.Document, baseDir, name string) (*Model, error) {
	for _, ext := range doc.ExtensionsRequired {
		logger.Warn("required glTF extension not supported", zap.String("extension", ext))
	}

	roots, err := sceneRoots(doc)
	if err != nil {
		return nil, err
	}

	b := &builder{
		doc:       doc,
		baseDir:   baseDir,
		assets:    l.assets,
		materials: make(map[int]material.Material),
		textures:  make(map[int]*texture.Texture),
		joints:    jointSet(doc),
	}

	root := scene.NewGroup(name)
	for _, idx := range roots {
		n, err := b.node(idx, 0)
		if err != nil {
			return nil, err
		}
		scene.Add(root, n)
	}

	return &Model{
		ID:     uuid.New(),
		Root:   root,
		Nodes:  b.nodes,
		Meshes: b.meshes,
	}, nil
}

// sceneRoots returns the root node indices of the default scene. Documents
// without scenes fall back to every node that is nobody's child.
func sceneRoots(doc *gltf.Document) ([]int, error) {
	if len(doc.Scenes) > 0 {
		si := 0
		if doc.Scene != nil {
			si = int(*doc.Scene)
		}
		if si < 0 || si >= len(doc.Scenes) {
			return nil, fmt.Errorf("%w: default scene %d out of range", ErrNoScene, si)
		}
		var roots []int
		for _, n := range doc.Scenes[si].Nodes {
			roots = append(roots, int(n))
		}
		if len(roots) == 0 {
			return nil, ErrNoScene
		}
		return roots, nil
	}

	if len(doc.Nodes) == 0 {
		return nil, ErrNoScene
	}
	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(isChild) {
				isChild[int(c)] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots, nil
}

func jointSet(doc *gltf.Document) map[int]bool {
	joints := make(map[int]bool)
	for _, skin := range doc.Skins {
		for _, j := range skin.Joints {
			joints[int(j)] = true
		}
	}
	return joints
}

// maxDepth guards against cyclic node references.
const maxDepth = 256

type builder struct {
	doc     *gltf.Document
	baseDir string
	assets  *Manager

	materials map[int]material.Material
	textures  map[int]*texture.Texture
	joints    map[int]bool

	nodes  int
	meshes int
}

func (b *builder) node(idx, depth int) (scene.Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("node hierarchy deeper than %d (cycle?)", maxDepth)
	}
	if idx < 0 || idx >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	src := b.doc.Nodes[idx]
	name := src.Name
	if name == "" {
		name = "node_" + strconv.Itoa(idx)
	}

	var n scene.Node
	switch {
	case src.Mesh != nil:
		mn, err := b.mesh(int(*src.Mesh), name)
		if err != nil {
			return nil, err
		}
		n = mn
	case src.Camera != nil:
		n = scene.NewOther(name, "camera")
	case src.Extensions[extLightsPunctual] != nil:
		n = scene.NewOther(name, "light")
	case b.joints[idx]:
		n = scene.NewOther(name, "joint")
	default:
		n = scene.NewGroup(name)
	}
	n.Base().SetTransform(nodeTransform(src))
	b.nodes++

	for _, c := range src.Children {
		child, err := b.node(int(c), depth+1)
		if err != nil {
			return nil, err
		}
		scene.Add(n, child)
	}
	return n, nil
}

func nodeTransform(n *gltf.Node) scene.Transform {
	m := n.MatrixOrDefault()
	if m != gltf.DefaultMatrix {
		var mm mgl32.Mat4
		for i, v := range m {
			mm[i] = float32(v)
		}
		return scene.DecomposeMatrix(mm)
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return scene.Transform{
		Position: mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])},
		Rotation: mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}},
		Scale:    mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])},
	}
}

// mesh builds a mesh node. A mesh with several primitives becomes a group
// holding one mesh node per primitive.
func (b *builder) mesh(idx int, name string) (scene.Node, error) {
	if idx < 0 || idx >= len(b.doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", idx)
	}
	src := b.doc.Meshes[idx]

	var parts []*scene.MeshNode
	for i, prim := range src.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			logger.Warn("skipping non-triangle primitive",
				zap.String("mesh", name), zap.Int("primitive", i))
			continue
		}
		geom, err := b.geometry(prim)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", name, i, err)
		}
		mat := b.material(prim.Material)
		parts = append(parts, scene.NewMesh(name, geom, mat))
	}
	b.meshes += len(parts)

	if len(parts) == 1 {
		return parts[0], nil
	}
	group := scene.NewGroup(name)
	for i, p := range parts {
		p.Name = name + "_" + strconv.Itoa(i)
		scene.Add(group, p)
	}
	return group, nil
}

func (b *builder) geometry(prim *gltf.Primitive) (*scene.Geometry, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.New("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(b.doc, b.doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	g := &scene.Geometry{Positions: make([]mgl32.Vec3, len(positions))}
	for i, p := range positions {
		g.Positions[i] = p
	}

	if normalIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(b.doc, b.doc.Accessors[normalIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		g.Normals = make([]mgl32.Vec3, len(normals))
		for i, n := range normals {
			g.Normals[i] = n
		}
	}

	if texIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(b.doc, b.doc.Accessors[texIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("read texcoords: %w", err)
		}
		g.UVs = make([]mgl32.Vec2, len(uvs))
		for i, uv := range uvs {
			g.UVs[i] = uv
		}
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(b.doc, b.doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		g.Indices = indices
	}

	g.ComputeNormals()
	return g, nil
}

// material returns the imported material for a primitive. Primitives sharing
// a glTF material share the returned value.
func (b *builder) material(ref *uint32) material.Material {
	idx := -1
	if ref != nil {
		idx = int(*ref)
	}
	if m, ok := b.materials[idx]; ok {
		return m
	}

	var m material.Material
	switch {
	case idx < 0 || idx >= len(b.doc.Materials):
		m = &material.Original{BaseColor: mgl32.Vec4{1, 1, 1, 1}}
	case b.doc.Materials[idx].Extensions[extSpecularGlossiness] != nil:
		src := b.doc.Materials[idx]
		m = &material.Unsupported{Name: src.Name, Reason: extSpecularGlossiness}
		logger.Warn("material not supported", zap.String("material", src.Name), zap.String("reason", extSpecularGlossiness))
	default:
		m = b.original(b.doc.Materials[idx])
	}
	b.materials[idx] = m
	return m
}

func (b *builder) original(src *gltf.Material) *material.Original {
	m := &material.Original{Name: src.Name, BaseColor: mgl32.Vec4{1, 1, 1, 1}}
	pbr := src.PBRMetallicRoughness
	if pbr == nil {
		return m
	}

	c := pbr.BaseColorFactorOrDefault()
	m.BaseColor = mgl32.Vec4{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}

	if pbr.BaseColorTexture != nil {
		tex, err := b.texture(int(pbr.BaseColorTexture.Index))
		if err != nil {
			logger.Warn("base color texture not loaded",
				zap.String("material", src.Name), zap.Error(err))
		} else {
			m.Map = tex
		}
	}
	return m
}

func (b *builder) texture(idx int) (*texture.Texture, error) {
	if tex, ok := b.textures[idx]; ok {
		return tex, nil
	}
	if idx < 0 || idx >= len(b.doc.Textures) {
		return nil, fmt.Errorf("texture index %d out of range", idx)
	}
	src := b.doc.Textures[idx]
	if src.Source == nil {
		return nil, fmt.Errorf("texture %d has no image source", idx)
	}
	imgIdx := int(*src.Source)
	if imgIdx < 0 || imgIdx >= len(b.doc.Images) {
		return nil, fmt.Errorf("image index %d out of range", imgIdx)
	}
	img := b.doc.Images[imgIdx]

	data, err := b.imageData(img)
	if err != nil {
		return nil, err
	}

	opts := texture.DefaultOptions()
	if src.Sampler != nil && int(*src.Sampler) < len(b.doc.Samplers) {
		s := b.doc.Samplers[int(*src.Sampler)]
		opts.WrapS = wrapMode(s.WrapS)
		opts.WrapT = wrapMode(s.WrapT)
	}

	name := img.Name
	if name == "" {
		name = "image_" + strconv.Itoa(imgIdx)
	}
	tex, err := texture.Decode(name, data, opts)
	if err != nil {
		return nil, err
	}
	b.textures[idx] = tex
	return tex, nil
}

func (b *builder) imageData(img *gltf.Image) ([]byte, error) {
	switch {
	case img.BufferView != nil:
		bv := int(*img.BufferView)
		if bv < 0 || bv >= len(b.doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", bv)
		}
		return modeler.ReadBufferView(b.doc, b.doc.BufferViews[bv])
	case img.IsEmbeddedResource():
		return img.MarshalData()
	case img.URI != "":
		uri, err := url.PathUnescape(img.URI)
		if err != nil {
			uri = img.URI
		}
		return b.assets.Load(filepath.Join(b.baseDir, filepath.FromSlash(uri)))
	default:
		return nil, errors.New("image has no data")
	}
}

func wrapMode(m gltf.WrappingMode) texture.Wrap {
	switch m {
	case gltf.WrapClampToEdge:
		return texture.WrapClampToEdge
	case gltf.WrapMirroredRepeat:
		return texture.WrapMirroredRepeat
	default:
		return texture.WrapRepeat
	}
}
