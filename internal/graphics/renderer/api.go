package renderer

import "fire-smoke/internal/compositor"

// RenderContext provides shared context for all renderables
type RenderContext struct {
	Frame  compositor.Frame
	Width  int // framebuffer size in pixels
	Height int
	DT     float64
	Paused bool
}

// Renderable interface defines the lifecycle for renderable features
type Renderable interface {
	Init() error
	Render(ctx RenderContext)
	Dispose()
	SetViewport(width, height int)
}
