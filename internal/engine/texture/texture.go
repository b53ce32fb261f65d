// Package texture provides CPU-side texture images with sampler options and GPU upload.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ErrEmptyImage is returned when a decoded image has no pixels.
var ErrEmptyImage = errors.New("texture: empty image")

// Wrap selects how texture coordinates outside [0, 1] are resolved.
type Wrap int

const (
	WrapClampToEdge Wrap = iota
	WrapRepeat
	WrapMirroredRepeat
)

// String returns the wrap mode name.
func (w Wrap) String() string {
	switch w {
	case WrapClampToEdge:
		return "clamp"
	case WrapRepeat:
		return "repeat"
	case WrapMirroredRepeat:
		return "mirrored-repeat"
	default:
		return "unknown"
	}
}

// Options holds sampler and upload settings for a texture.
type Options struct {
	WrapS           Wrap
	WrapT           Wrap
	GenerateMipmaps bool
	// FlipY flips rows at load time so that v=0 addresses the bottom row.
	FlipY bool
}

// DefaultOptions returns the settings used for model base-colour maps.
// glTF textures are authored top-row-first, so they are never flipped.
func DefaultOptions() Options {
	return Options{
		WrapS:           WrapRepeat,
		WrapT:           WrapRepeat,
		GenerateMipmaps: true,
	}
}

// LightmapOptions returns the settings the face lightmap must be loaded with:
// repeating on both axes, no mipmaps, no vertical flip.
func LightmapOptions() Options {
	return Options{
		WrapS: WrapRepeat,
		WrapT: WrapRepeat,
	}
}

// Texture is a decoded image together with its sampler options.
// The GL object is created lazily on first Upload.
type Texture struct {
	Name    string
	Image   *image.NRGBA
	Options Options

	id uint32
}

// New wraps img as a texture, converting it to NRGBA and applying FlipY.
func New(name string, img image.Image, opts Options) (*Texture, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyImage)
	}

	b := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)

	if opts.FlipY {
		flipRows(nrgba)
	}

	return &Texture{
		Name:    name,
		Image:   nrgba,
		Options: opts,
	}, nil
}

// Decode decodes an encoded image (PNG, JPEG, BMP or WebP, or TGA when name
// ends in .tga) into a texture.
func Decode(name string, data []byte, opts Options) (*Texture, error) {
	img, format, err := decodeImage(name, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	tex, err := New(name, img, opts)
	if err != nil {
		return nil, fmt.Errorf("%s texture: %w", format, err)
	}
	return tex, nil
}

func decodeImage(name string, data []byte) (image.Image, string, error) {
	if isTGA(name) {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, "tga", err
		}
		return img, "tga", nil
	}
	return image.Decode(bytes.NewReader(data))
}

// Load reads and decodes a texture file from disk.
func Load(path string, opts Options) (*Texture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading texture %s: %w", path, err)
	}
	return Decode(path, data, opts)
}

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (width, height int) {
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Sample returns the nearest texel at (u, v), resolving out-of-range
// coordinates with the texture's wrap modes. v=0 is the first stored row.
func (t *Texture) Sample(u, v float32) color.NRGBA {
	w, h := t.Size()
	x := texelIndex(u, w, t.Options.WrapS)
	y := texelIndex(v, h, t.Options.WrapT)
	return t.Image.NRGBAAt(x, y)
}

func texelIndex(coord float32, size int, wrap Wrap) int {
	f := float64(coord)
	switch wrap {
	case WrapRepeat:
		f -= math.Floor(f)
	case WrapMirroredRepeat:
		period := f - 2*math.Floor(f/2)
		if period > 1 {
			period = 2 - period
		}
		f = period
	default:
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
	}

	i := int(f * float64(size))
	if i >= size {
		i = size - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func flipRows(img *image.NRGBA) {
	h := img.Bounds().Dy()
	row := make([]byte, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bottom := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
}
