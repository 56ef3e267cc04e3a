package renderer

import (
	"fmt"

	"fire-smoke/internal/compositor"
	"fire-smoke/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Renderer orchestrates rendering via renderable features
type Renderer struct {
	renderables []Renderable
	width       int
	height      int
}

// NewRenderer initializes every renderable in order. If one fails, the ones
// already initialized are disposed.
func NewRenderer(width, height int, rs ...Renderable) (*Renderer, error) {
	// full-screen 2D passes only
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	renderer := &Renderer{
		renderables: rs,
		width:       width,
		height:      height,
	}

	for i, r := range rs {
		if err := r.Init(); err != nil {
			for j := i - 1; j >= 0; j-- {
				rs[j].Dispose()
			}
			return nil, fmt.Errorf("init renderable %d (%T): %w", i, r, err)
		}
		r.SetViewport(width, height)
	}

	return renderer, nil
}

// Render draws one frame
func (r *Renderer) Render(f compositor.Frame, paused bool, dt float64) {
	defer profiling.Track("renderer.Render")()

	gl.Viewport(0, 0, int32(r.width), int32(r.height))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	ctx := RenderContext{
		Frame:  f,
		Width:  r.width,
		Height: r.height,
		DT:     dt,
		Paused: paused,
	}

	for _, renderable := range r.renderables {
		renderable.Render(ctx)
	}
}

// Dispose cleans up all renderables in reverse order
func (r *Renderer) Dispose() {
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
}

// UpdateViewport propagates a framebuffer resize
func (r *Renderer) UpdateViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return // minimized
	}
	r.width, r.height = width, height
	for _, renderable := range r.renderables {
		renderable.SetViewport(width, height)
	}
}

// Size returns the current framebuffer size
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}
