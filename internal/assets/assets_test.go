package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/faceshadow/internal/engine/texture"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestManagerAddDir(t *testing.T) {
	m := NewManager()
	assert.NoError(t, m.AddDir(t.TempDir()))
	assert.Error(t, m.AddDir(filepath.Join(t.TempDir(), "missing")))

	file := writeFile(t, t.TempDir(), "a.txt", []byte("x"))
	assert.Error(t, m.AddDir(file))
}

func TestManagerResolvePriority(t *testing.T) {
	low := t.TempDir()
	high := t.TempDir()
	writeFile(t, low, "shared.txt", []byte("low"))
	writeFile(t, high, "shared.txt", []byte("high"))
	writeFile(t, low, "only-low.txt", []byte("low"))

	m := NewManager()
	require.NoError(t, m.AddDir(low))
	require.NoError(t, m.AddDir(high))

	got, err := m.Resolve("shared.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(high, "shared.txt"), got)

	got, err = m.Resolve("only-low.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(low, "only-low.txt"), got)

	_, err = m.Resolve("nope.txt")
	assert.Error(t, err)
}

func TestManagerResolveAbsolute(t *testing.T) {
	path := writeFile(t, t.TempDir(), "abs.bin", []byte{1})
	m := NewManager()

	got, err := m.Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = m.Resolve(path + ".missing")
	assert.Error(t, err)
}

func TestManagerLoadCaches(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.bin", []byte("payload"))

	m := NewManager()
	require.NoError(t, m.AddDir(dir))

	data, err := m.Load("data.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	// Served from memory even after the file changes on disk.
	require.NoError(t, os.WriteFile(path, []byte("changed"), 0o644))
	data, err = m.Load("data.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	hits, misses := m.Cache().Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	m.Close()
	hits, misses = m.Cache().Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache()
	c.Set("k", []byte("v"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Get("k")
				c.Get("missing")
			}
		}()
	}
	wg.Wait()

	hits, misses := c.Stats()
	assert.Equal(t, 1600, hits)
	assert.Equal(t, 1600, misses)
}

func TestLoadLightmap(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 255, 255, 255})
	img.SetNRGBA(1, 1, color.NRGBA{10, 10, 10, 255})
	dir := t.TempDir()
	writeFile(t, dir, "face_lightmap.png", pngBytes(t, img))

	m := NewManager()
	require.NoError(t, m.AddDir(dir))

	tex, err := m.LoadLightmap("face_lightmap.png")
	require.NoError(t, err)
	assert.Equal(t, "face_lightmap.png", tex.Name)
	assert.Equal(t, texture.LightmapOptions(), tex.Options)

	// Not flipped: row 0 is still the white texel.
	assert.Equal(t, uint8(255), tex.Image.NRGBAAt(0, 0).R)
}

func TestLoadLightmapErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.png", []byte("not a png"))

	m := NewManager()
	require.NoError(t, m.AddDir(dir))

	_, err := m.LoadLightmap("missing.png")
	assert.Error(t, err)

	_, err = m.LoadLightmap("broken.png")
	assert.Error(t, err)
}
