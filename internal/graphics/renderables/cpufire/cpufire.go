// Package cpufire draws the effect composited on the CPU by a raster pool,
// uploading each frame as a texture stretched over the window.
package cpufire

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"

	"fire-smoke/internal/graphics"
	renderer "fire-smoke/internal/graphics/renderer"
	"fire-smoke/internal/profiling"
	"fire-smoke/internal/raster"

	"github.com/go-gl/gl/v4.1-core/gl"
)

const blitVertexSource = `#version 410 core
layout(location = 0) in vec2 aPos;
out vec2 uv;
void main() {
	// image row 0 is the top of the frame
	uv = vec2(aPos.x * 0.5 + 0.5, 0.5 - aPos.y * 0.5);
	gl_Position = vec4(aPos, 0.0, 1.0);
}
`

const blitFragmentSource = `#version 410 core
in vec2 uv;
out vec4 FragColor;
uniform sampler2D frame;
void main() {
	FragColor = texture(frame, uv);
}
`

// CPUFire is the CPU compositing pass.
type CPUFire struct {
	pool  *raster.Pool
	scale float64

	shader  *graphics.Shader
	quad    *graphics.Quad
	texture uint32
	img     *image.RGBA
}

// NewCPUFire renders through pool at scale times the window resolution.
func NewCPUFire(pool *raster.Pool, scale float64) *CPUFire {
	return &CPUFire{pool: pool, scale: scale}
}

func (c *CPUFire) Init() error {
	shader, err := graphics.NewShader(blitVertexSource, blitFragmentSource)
	if err != nil {
		return fmt.Errorf("blit shader: %w", err)
	}
	c.shader = shader
	c.quad = graphics.NewQuad()
	c.shader.Use()
	c.shader.SetInt("frame", 0)
	return nil
}

// SetViewport reallocates the raster target for the new window size.
func (c *CPUFire) SetViewport(width, height int) {
	w := max(1, int(math.Round(float64(width)*c.scale)))
	h := max(1, int(math.Round(float64(height)*c.scale)))
	if c.img != nil && c.img.Rect.Dx() == w && c.img.Rect.Dy() == h {
		return
	}
	if c.texture != 0 {
		gl.DeleteTextures(1, &c.texture)
	}
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
	c.texture = graphics.NewDynamicTexture(w, h)
}

func (c *CPUFire) Render(ctx renderer.RenderContext) {
	if c.img == nil {
		return
	}
	func() {
		defer profiling.Track("raster.Render")()
		if err := c.pool.Render(context.Background(), c.img, ctx.Frame); err != nil {
			slog.Warn("cpu raster failed", "error", err)
		}
	}()

	defer profiling.Track("renderer.cpufire")()
	graphics.UpdateTexture(c.texture, c.img)

	c.shader.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, c.texture)
	c.quad.Draw()
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (c *CPUFire) Dispose() {
	if c.shader == nil {
		return
	}
	gl.DeleteTextures(1, &c.texture)
	c.quad.Delete()
	c.shader.Delete()
	c.shader = nil
}
