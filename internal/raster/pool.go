// Package raster evaluates the compositor on the CPU, splitting each frame
// into row bands across a fixed set of worker goroutines.
package raster

import (
	"context"
	"errors"
	"image"
	"runtime"
	"sync"

	"fire-smoke/internal/compositor"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrClosed is returned by Render after Shutdown.
var ErrClosed = errors.New("raster: pool is shut down")

// bandJob is one horizontal strip [y0, y1) of a frame.
type bandJob struct {
	img    *image.RGBA
	frame  compositor.Frame
	y0, y1 int
	done   *sync.WaitGroup
}

// Pool manages goroutines for CPU compositing
type Pool struct {
	comp     *compositor.Compositor
	jobQueue chan bandJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewPool starts workers goroutines evaluating c. workers <= 0 uses
// GOMAXPROCS.
func NewPool(c *compositor.Compositor, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	ctx, cancel := context.WithCancel(context.Background())

	pool := &Pool{
		comp:     c,
		jobQueue: make(chan bandJob, workers*4),
		workers:  workers,
		ctx:      ctx,
		cancel:   cancel,
	}

	for range workers {
		pool.wg.Add(1)
		go pool.worker()
	}

	return pool
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Render fills img with frame f and blocks until every row is written.
// The frame snapshot is shared read-only by all workers. If ctx is
// cancelled mid-frame the bands already queued still finish before Render
// returns the context error, so img is never written after return.
func (p *Pool) Render(ctx context.Context, img *image.RGBA, f compositor.Frame) error {
	if p.ctx.Err() != nil {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	h := img.Rect.Dy()
	if h == 0 || img.Rect.Dx() == 0 {
		return nil
	}

	bands := p.workers * 4
	if bands > h {
		bands = h
	}
	step := (h + bands - 1) / bands

	var done sync.WaitGroup
	var err error
submit:
	for y := 0; y < h; y += step {
		job := bandJob{img: img, frame: f, y0: y, y1: min(y+step, h), done: &done}
		done.Add(1)
		select {
		case p.jobQueue <- job:
		case <-ctx.Done():
			done.Done()
			err = ctx.Err()
			break submit
		case <-p.ctx.Done():
			done.Done()
			err = ErrClosed
			break submit
		}
	}
	done.Wait()
	return err
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			p.renderBand(job)
			job.done.Done()
		case <-p.ctx.Done():
			return
		}
	}
}

// renderBand samples pixel centers; v runs bottom to top so row 0 of the
// image is the top of the flame.
func (p *Pool) renderBand(job bandJob) {
	r := job.img.Rect
	w, h := float32(r.Dx()), float32(r.Dy())
	for y := job.y0; y < job.y1; y++ {
		v := 1 - (float32(y)+0.5)/h
		off := job.img.PixOffset(r.Min.X, r.Min.Y+y)
		for x := 0; x < r.Dx(); x++ {
			u := (float32(x) + 0.5) / w
			putRGB(job.img.Pix[off:off+4], p.comp.Pixel(u, v, job.frame))
			off += 4
		}
	}
}

// Shutdown stops the workers. It must not race with Render.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

func putRGB(px []uint8, c mgl32.Vec3) {
	px[0] = toByte(c[0])
	px[1] = toByte(c[1])
	px[2] = toByte(c[2])
	px[3] = 0xff
}

func toByte(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}
