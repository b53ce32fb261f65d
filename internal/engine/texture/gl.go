package texture

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Upload creates the GL texture on first use and returns its ID.
// Must be called with a current OpenGL context.
func (t *Texture) Upload() (uint32, error) {
	if t.id != 0 {
		return t.id, nil
	}

	w, h := t.Size()
	if w == 0 || h == 0 {
		return 0, fmt.Errorf("%s: %w", t.Name, ErrEmptyImage)
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(t.Image.Pix))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, glWrap(t.Options.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, glWrap(t.Options.WrapT))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	if t.Options.GenerateMipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	t.id = id
	return id, nil
}

// ID returns the GL texture ID, or 0 if the texture was never uploaded.
func (t *Texture) ID() uint32 {
	return t.id
}

// Delete releases the GL texture. The CPU image is kept.
func (t *Texture) Delete() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

func glWrap(w Wrap) int32 {
	switch w {
	case WrapRepeat:
		return gl.REPEAT
	case WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	default:
		return gl.CLAMP_TO_EDGE
	}
}
