package graphics

import (
	"fmt"
	"image"

	"fire-smoke/internal/noise"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// UploadLattice uploads l as a single-channel float 3D texture with linear
// filtering and edge clamping on all three axes, so a shader fetch at a
// normalized coordinate matches noise.Lattice.Sample.
func UploadLattice(l *noise.Lattice) (uint32, error) {
	if l == nil || l.Size == 0 {
		return 0, fmt.Errorf("upload lattice: empty lattice")
	}

	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_3D, texture)

	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	s := int32(l.Size)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage3D(gl.TEXTURE_3D, 0, gl.R32F, s, s, s, 0, gl.RED, gl.FLOAT, gl.Ptr(l.Data))
	gl.BindTexture(gl.TEXTURE_3D, 0)

	if e := gl.GetError(); e != gl.NO_ERROR {
		gl.DeleteTextures(1, &texture)
		return 0, fmt.Errorf("upload lattice: gl error 0x%x", e)
	}
	return texture, nil
}

// NewDynamicTexture allocates an RGBA8 2D texture meant to be refilled every
// frame with UpdateTexture.
func NewDynamicTexture(width, height int) uint32 {
	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texture
}

// UpdateTexture replaces the contents of a texture made by NewDynamicTexture.
// img must match the texture size and have a tight stride.
func UpdateTexture(texture uint32, img *image.RGBA) {
	size := img.Rect.Size()
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(size.X), int32(size.Y), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
}
