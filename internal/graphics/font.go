package graphics

import (
	"fmt"

	"fire-smoke/internal/graphics/text"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const fontVertexSource = `#version 410 core
layout(location = 0) in vec4 vertex; // xy = position, zw = atlas uv
out vec2 texCoords;
uniform mat4 projection;
void main() {
	gl_Position = projection * vec4(vertex.xy, 0.0, 1.0);
	texCoords = vertex.zw;
}
`

const fontFragmentSource = `#version 410 core
in vec2 texCoords;
out vec4 color;
uniform sampler2D text;
uniform vec3 textColor;
void main() {
	color = vec4(textColor, texture(text, texCoords).r);
}
`

// shadowOffset is how far, in pixels, the dark copy under each string is
// shifted down and right. Text sits over bright flames, so it needs one.
const shadowOffset = 1

// FontRenderer draws strings from a text.Atlas uploaded as a GL_RED texture
type FontRenderer struct {
	atlas      *text.Atlas
	texture    uint32
	shader     *Shader
	projection mgl32.Mat4
	vao        uint32
	vbo        uint32
	vertices   []float32 // reused between calls

	Shadow bool
}

// NewFontRenderer uploads the atlas and creates the renderer for a pixel
// viewport of width x height
func NewFontRenderer(atlas *text.Atlas, width, height int) (*FontRenderer, error) {
	if atlas == nil || len(atlas.Glyphs) == 0 {
		return nil, fmt.Errorf("invalid font atlas")
	}
	shader, err := NewShader(fontVertexSource, fontFragmentSource)
	if err != nil {
		return nil, fmt.Errorf("font shader: %w", err)
	}
	fr := &FontRenderer{
		atlas:  atlas,
		shader: shader,
		Shadow: true,
	}
	fr.texture = uploadAtlas(atlas)
	fr.SetViewport(width, height)
	fr.initGL()
	return fr, nil
}

func uploadAtlas(atlas *text.Atlas) uint32 {
	w, h := atlas.Image.Rect.Dx(), atlas.Image.Rect.Dy()

	var texture uint32
	gl.GenTextures(1, &texture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	// one byte per texel
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(w), int32(h), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(atlas.Image.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texture
}

// SetViewport updates the pixel-space projection, origin at the top left
func (fr *FontRenderer) SetViewport(width, height int) {
	fr.projection = mgl32.Ortho(0, float32(width), float32(height), 0, -1, 1)
}

// Dispose releases the GL objects, including the atlas texture
func (fr *FontRenderer) Dispose() {
	gl.DeleteBuffers(1, &fr.vbo)
	gl.DeleteVertexArrays(1, &fr.vao)
	gl.DeleteTextures(1, &fr.texture)
	fr.shader.Delete()
}

func (fr *FontRenderer) initGL() {
	gl.GenVertexArrays(1, &fr.vao)
	gl.GenBuffers(1, &fr.vbo)
	gl.BindVertexArray(fr.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, fr.vbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 4, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// Render draws one string with its baseline starting at (x, y) in pixels
func (fr *FontRenderer) Render(s string, x, y, scale float32, color mgl32.Vec3) {
	fr.RenderLines([]string{s}, x, y, 0, scale, color)
}

// RenderLines draws lines in a single upload, starting at baseline
// (x, yStart) and moving down lineStep pixels per line.
func (fr *FontRenderer) RenderLines(lines []string, x, yStart, lineStep, scale float32, color mgl32.Vec3) {
	fr.vertices = fr.atlas.Layout(fr.vertices[:0], lines, x, yStart, lineStep, scale)
	if len(fr.vertices) == 0 {
		return
	}

	fr.shader.Use()
	fr.shader.SetInt("text", 0)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, fr.texture)
	gl.BindVertexArray(fr.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, fr.vbo)

	// orphan the buffer to avoid stalling on last frame's draw
	size := len(fr.vertices) * 4
	gl.BufferData(gl.ARRAY_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(fr.vertices))
	count := int32(len(fr.vertices) / 4)

	if fr.Shadow {
		shifted := fr.projection.Mul4(mgl32.Translate3D(shadowOffset, shadowOffset, 0))
		fr.shader.SetMatrix4("projection", &shifted[0])
		fr.shader.SetVector3("textColor", 0, 0, 0)
		gl.DrawArrays(gl.TRIANGLES, 0, count)
	}
	fr.shader.SetMatrix4("projection", &fr.projection[0])
	fr.shader.SetVector3("textColor", color.X(), color.Y(), color.Z())
	gl.DrawArrays(gl.TRIANGLES, 0, count)

	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
}

// Measure returns the width and height in pixels s occupies at scale.
func (fr *FontRenderer) Measure(s string, scale float32) (float32, float32) {
	return fr.atlas.Measure(s, scale)
}
