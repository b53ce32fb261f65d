package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradient builds a 2x2 image with a distinct colour per texel.
func gradient() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLightmapOptions(t *testing.T) {
	opts := LightmapOptions()
	assert.Equal(t, WrapRepeat, opts.WrapS)
	assert.Equal(t, WrapRepeat, opts.WrapT)
	assert.False(t, opts.GenerateMipmaps)
	assert.False(t, opts.FlipY)
}

func TestDecodePNG(t *testing.T) {
	tex, err := Decode("grad.png", encodePNG(t, gradient()), LightmapOptions())
	require.NoError(t, err)

	w, h := tex.Size()
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, tex.Image.NRGBAAt(0, 0))
	assert.Zero(t, tex.ID())
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode("junk", []byte("not an image"), DefaultOptions())
	require.Error(t, err)
}

func TestNewEmptyImage(t *testing.T) {
	_, err := New("empty", image.NewNRGBA(image.Rect(0, 0, 0, 0)), DefaultOptions())
	require.ErrorIs(t, err, ErrEmptyImage)
}

func TestFlipY(t *testing.T) {
	opts := LightmapOptions()
	opts.FlipY = true
	tex, err := New("flipped", gradient(), opts)
	require.NoError(t, err)

	assert.Equal(t, color.NRGBA{B: 255, A: 255}, tex.Image.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, tex.Image.NRGBAAt(0, 1))
}

func TestSampleWrap(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	green := color.NRGBA{G: 255, A: 255}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	tests := []struct {
		name string
		wrap Wrap
		u, v float32
		want color.NRGBA
	}{
		{"inside", WrapRepeat, 0.25, 0.25, red},
		{"repeat past one", WrapRepeat, 1.75, 0.25, green},
		{"repeat negative", WrapRepeat, -0.25, 0.25, green},
		{"clamp past one", WrapClampToEdge, 3, 3, white},
		{"clamp negative", WrapClampToEdge, -3, -3, red},
		{"mirror", WrapMirroredRepeat, 1.25, 0.25, green},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := New("grad", gradient(), Options{WrapS: tt.wrap, WrapT: tt.wrap})
			require.NoError(t, err)
			assert.Equal(t, tt.want, tex.Sample(tt.u, tt.v))
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faceLightmap.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, gradient()), 0644))

	tex, err := Load(path, LightmapOptions())
	require.NoError(t, err)
	assert.Equal(t, path, tex.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"), LightmapOptions())
	require.Error(t, err)
}
