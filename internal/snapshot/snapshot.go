// Package snapshot renders single frames off screen and saves them as PNG.
package snapshot

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"fire-smoke/internal/compositor"
	"fire-smoke/internal/raster"
)

// Render composites one width×height frame through pool.
func Render(ctx context.Context, pool *raster.Pool, width, height int, f compositor.Frame) (*image.RGBA, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("snapshot size must be positive, got %dx%d", width, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if err := pool.Render(ctx, img, f); err != nil {
		return nil, fmt.Errorf("compositing snapshot: %w", err)
	}
	return img, nil
}

// WritePNG encodes img to path, creating parent directories.
func WritePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating snapshot dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return f.Close()
}

// Name builds a file name that sorts by capture time and records the state,
// e.g. fire-20260102-150405-lava-t12.34.png.
func Name(now time.Time, f compositor.Frame) string {
	return fmt.Sprintf("fire-%s-%s-t%.2f.png", now.Format("20060102-150405"), f.Mode, f.Time)
}
