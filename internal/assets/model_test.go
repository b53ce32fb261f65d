package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/faceshadow/internal/engine/material"
	"github.com/Faultbox/faceshadow/internal/engine/scene"
	"github.com/Faultbox/faceshadow/internal/engine/texture"
)

// characterDoc builds a small character:
//
//	Root -> Body (mesh: body) -> Face (mesh: face, textured)
//	     -> Cam (camera)
//	     -> Hips (skin joint)
//	     -> Gloss (mesh: specular-glossiness)
//	     -> Split (mesh with two primitives sharing the body material)
func characterDoc(t *testing.T) *gltf.Document {
	t.Helper()
	doc := gltf.NewDocument()

	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	nrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	uv := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{200, 100, 50, 255})
	imgIdx, err := modeler.WriteImage(doc, "face_base", "image/png", bytes.NewReader(pngBytes(t, img)))
	require.NoError(t, err)

	doc.Samplers = []*gltf.Sampler{{WrapS: gltf.WrapClampToEdge, WrapT: gltf.WrapMirroredRepeat}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(imgIdx), Sampler: gltf.Index(0)}}
	doc.Materials = []*gltf.Material{
		{
			Name: "body",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{1, 0, 0, 0.5},
			},
		},
		{
			Name: "face",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorTexture: &gltf.TextureInfo{Index: 0},
			},
		},
		{
			Name: "gloss",
			Extensions: gltf.Extensions{
				"KHR_materials_pbrSpecularGlossiness": map[string]any{"glossinessFactor": 0.5},
			},
		},
	}

	prim := func(mat uint32) *gltf.Primitive {
		return &gltf.Primitive{
			Attributes: gltf.Attribute{
				gltf.POSITION:   pos,
				gltf.NORMAL:     nrm,
				gltf.TEXCOORD_0: uv,
			},
			Indices:  gltf.Index(idx),
			Material: gltf.Index(mat),
		}
	}
	doc.Meshes = []*gltf.Mesh{
		{Name: "body", Primitives: []*gltf.Primitive{prim(0)}},
		{Name: "face", Primitives: []*gltf.Primitive{prim(1)}},
		{Name: "gloss", Primitives: []*gltf.Primitive{prim(2)}},
		{Name: "split", Primitives: []*gltf.Primitive{prim(0), prim(0)}},
	}
	doc.Cameras = []*gltf.Camera{{Perspective: &gltf.Perspective{Yfov: 0.8, Znear: 0.1}}}

	doc.Nodes = []*gltf.Node{
		{Name: "Root", Children: []uint32{1, 3, 4, 5, 6}},
		{Name: "Body", Mesh: gltf.Index(0), Children: []uint32{2}, Translation: [3]float64{0, 1, 0}},
		{Name: "Face", Mesh: gltf.Index(1)},
		{Name: "Cam", Camera: gltf.Index(0)},
		{Name: "Hips"},
		{Name: "Gloss", Mesh: gltf.Index(2)},
		{Name: "Split", Mesh: gltf.Index(3)},
	}
	doc.Skins = []*gltf.Skin{{Joints: []uint32{4}}}
	doc.Scenes[0].Nodes = []uint32{0}
	return doc
}

func loadCharacter(t *testing.T) *Model {
	t.Helper()
	m, err := NewModelLoader(NewManager()).FromDocument(characterDoc(t), t.TempDir(), "character.glb")
	require.NoError(t, err)
	return m
}

// findByName returns the first node in traversal order with the given name.
func findByName(root scene.Node, name string) scene.Node {
	var found scene.Node
	scene.Walk(root, func(n scene.Node) {
		if found == nil && n.Base().Name == name {
			found = n
		}
	})
	return found
}

func meshByName(t *testing.T, root scene.Node, name string) *scene.MeshNode {
	t.Helper()
	n := findByName(root, name)
	require.NotNil(t, n, "node %q not found", name)
	mesh, ok := n.(*scene.MeshNode)
	require.True(t, ok, "%q is %T, not a mesh", name, n)
	return mesh
}

func TestFromDocumentHierarchy(t *testing.T) {
	m := loadCharacter(t)

	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.Equal(t, "character.glb", m.Root.Name)
	require.Len(t, m.Root.Children(), 1)

	root := m.Root.Children()[0]
	assert.IsType(t, &scene.GroupNode{}, root)
	assert.Equal(t, 7, m.Nodes)
	assert.Equal(t, 5, m.Meshes)

	cam, ok := findByName(m.Root, "Cam").(*scene.OtherNode)
	require.True(t, ok)
	assert.Equal(t, "camera", cam.Kind)

	hips, ok := findByName(m.Root, "Hips").(*scene.OtherNode)
	require.True(t, ok)
	assert.Equal(t, "joint", hips.Kind)

	face := meshByName(t, m.Root, "Face")
	assert.Equal(t, "Body", face.Parent().Base().Name)

	var pos mgl32.Vec3
	face.WorldPosition(&pos)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, pos)
}

func TestFromDocumentGeometry(t *testing.T) {
	body := meshByName(t, loadCharacter(t).Root, "Body")
	g := body.Geometry

	assert.Equal(t, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, g.Positions)
	assert.Equal(t, []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}}, g.UVs)
	assert.Equal(t, []uint32{0, 1, 2}, g.Indices)
	require.Len(t, g.Normals, 3)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, g.Normals[0])
}

func TestFromDocumentMaterials(t *testing.T) {
	m := loadCharacter(t)

	body, ok := meshByName(t, m.Root, "Body").Material.(*material.Original)
	require.True(t, ok)
	assert.Equal(t, "body", body.Name)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 0.5}, body.BaseColor)
	assert.Nil(t, body.Map)

	face, ok := meshByName(t, m.Root, "Face").Material.(*material.Original)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, face.BaseColor)
	require.NotNil(t, face.Map)
	assert.Equal(t, texture.WrapClampToEdge, face.Map.Options.WrapS)
	assert.Equal(t, texture.WrapMirroredRepeat, face.Map.Options.WrapT)
	assert.Equal(t, uint8(200), face.Map.Image.NRGBAAt(0, 0).R)

	gloss, ok := meshByName(t, m.Root, "Gloss").Material.(*material.Unsupported)
	require.True(t, ok)
	assert.Equal(t, "gloss", gloss.Name)
}

func TestFromDocumentMultiPrimitive(t *testing.T) {
	m := loadCharacter(t)

	split, ok := findByName(m.Root, "Split").(*scene.GroupNode)
	require.True(t, ok, "multi-primitive mesh becomes a group")
	require.Len(t, split.Children(), 2)

	a := meshByName(t, split, "Split_0")
	b := meshByName(t, split, "Split_1")
	assert.Same(t, a.Material, b.Material, "primitives share the imported material")

	body := meshByName(t, m.Root, "Body")
	assert.Same(t, body.Material, a.Material)
}

func TestFromDocumentDefaultMaterial(t *testing.T) {
	doc := characterDoc(t)
	doc.Meshes[0].Primitives[0].Material = nil

	m, err := NewModelLoader(NewManager()).FromDocument(doc, "", "x")
	require.NoError(t, err)

	mat, ok := meshByName(t, m.Root, "Body").Material.(*material.Original)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, mat.BaseColor)
	assert.Empty(t, mat.Name)
}

func TestFromDocumentMaterialIndexOutOfRange(t *testing.T) {
	doc := characterDoc(t)
	doc.Meshes[0].Primitives[0].Material = gltf.Index(uint32(len(doc.Materials) + 5))

	m, err := NewModelLoader(NewManager()).FromDocument(doc, "", "x")
	require.NoError(t, err)

	mat, ok := meshByName(t, m.Root, "Body").Material.(*material.Original)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, mat.BaseColor)
	assert.Empty(t, mat.Name)
}

func TestFromDocumentSkipsNonTriangles(t *testing.T) {
	doc := characterDoc(t)
	doc.Meshes[0].Primitives[0].Mode = gltf.PrimitiveLines

	m, err := NewModelLoader(NewManager()).FromDocument(doc, "", "x")
	require.NoError(t, err)

	body, ok := findByName(m.Root, "Body").(*scene.GroupNode)
	require.True(t, ok, "mesh with no drawable primitives is an empty group")
	// Face is still attached as a child of the emptied body.
	assert.Len(t, body.Children(), 1)
}

func TestFromDocumentMatrixTransform(t *testing.T) {
	doc := characterDoc(t)
	doc.Nodes[1].Translation = [3]float64{}
	doc.Nodes[1].Matrix = [16]float64{
		2, 0, 0, 0,
		0, 2, 0, 0,
		0, 0, 2, 0,
		1, 2, 3, 1,
	}

	m, err := NewModelLoader(NewManager()).FromDocument(doc, "", "x")
	require.NoError(t, err)

	tr := meshByName(t, m.Root, "Body").Transform()
	assert.True(t, mgl32.Vec3{1, 2, 3}.ApproxEqual(tr.Position))
	assert.True(t, mgl32.Vec3{2, 2, 2}.ApproxEqual(tr.Scale))
}

func TestFromDocumentNoScene(t *testing.T) {
	doc := &gltf.Document{}
	_, err := NewModelLoader(NewManager()).FromDocument(doc, "", "empty")
	assert.ErrorIs(t, err, ErrNoScene)
}

func TestFromDocumentSceneless(t *testing.T) {
	doc := characterDoc(t)
	doc.Scenes = nil
	doc.Scene = nil

	m, err := NewModelLoader(NewManager()).FromDocument(doc, "", "x")
	require.NoError(t, err)
	require.Len(t, m.Root.Children(), 1)
	assert.Equal(t, "Root", m.Root.Children()[0].Base().Name)
}

func TestLoadBinaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, gltf.SaveBinary(characterDoc(t), filepath.Join(dir, "character.glb")))

	mgr := NewManager()
	require.NoError(t, mgr.AddDir(dir))

	m, err := NewModelLoader(mgr).Load("character.glb")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "character.glb"), m.Path)
	assert.Equal(t, 5, m.Meshes)

	face := meshByName(t, m.Root, "Face")
	orig, ok := face.Material.(*material.Original)
	require.True(t, ok)
	assert.NotNil(t, orig.Map)

	_, ok = meshByName(t, m.Root, "Gloss").Material.(*material.Unsupported)
	assert.True(t, ok)
}

func TestLoadExternalImage(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{0, 255, 0, 255})
	writeFile(t, dir, "textures/face base.png", pngBytes(t, img))

	doc := characterDoc(t)
	doc.Images[0] = &gltf.Image{URI: "textures/face%20base.png"}

	m, err := NewModelLoader(NewManager()).FromDocument(doc, dir, "x")
	require.NoError(t, err)

	face := meshByName(t, m.Root, "Face").Material.(*material.Original)
	require.NotNil(t, face.Map)
	assert.Equal(t, uint8(255), face.Map.Image.NRGBAAt(0, 0).G)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewModelLoader(NewManager()).Load(filepath.Join(t.TempDir(), "none.glb"))
	assert.Error(t, err)
}

func TestLoadAsync(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "character.glb")
	require.NoError(t, gltf.SaveBinary(characterDoc(t), path))

	ch := NewModelLoader(NewManager()).LoadAsync(context.Background(), path)
	select {
	case r, ok := <-ch:
		require.True(t, ok)
		require.NoError(t, r.Err)
		assert.NotNil(t, r.Model)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for model")
	}

	_, open := <-ch
	assert.False(t, open, "channel is closed after the result")
}

func TestLoadAsyncError(t *testing.T) {
	ch := NewModelLoader(NewManager()).LoadAsync(context.Background(), "missing.glb")
	r := <-ch
	assert.Error(t, r.Err)
	assert.Nil(t, r.Model)
}

func TestLoadAsyncCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := <-NewModelLoader(NewManager()).LoadAsync(ctx, "missing.glb")
	assert.Error(t, r.Err)
}
