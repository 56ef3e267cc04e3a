package snapshot

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fire-smoke/internal/compositor"
	"fire-smoke/internal/noise"
	"fire-smoke/internal/raster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPool(t *testing.T) *raster.Pool {
	t.Helper()
	lat := noise.Generate(noise.DefaultSeed, 8, 0.08)
	pool := raster.NewPool(compositor.New(lat, compositor.DefaultParams()), 2)
	t.Cleanup(pool.Shutdown)
	return pool
}

func TestRenderAndWritePNG(t *testing.T) {
	pool := newPool(t)
	img, err := Render(context.Background(), pool, 24, 16, compositor.Frame{Time: 1, Speed: 1})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "shots", "frame.png")
	require.NoError(t, WritePNG(path, img))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, img.Bounds(), decoded.Bounds())
	r1, g1, b1, _ := img.At(5, 5).RGBA()
	r2, g2, b2, _ := decoded.At(5, 5).RGBA()
	assert.Equal(t, []uint32{r1, g1, b1}, []uint32{r2, g2, b2})
}

func TestRenderRejectsEmpty(t *testing.T) {
	_, err := Render(context.Background(), newPool(t), 0, 10, compositor.Frame{})
	assert.Error(t, err)
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Render(ctx, newPool(t), 8, 8, compositor.Frame{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestName(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	got := Name(now, compositor.Frame{Time: 12.345, Mode: compositor.ModeLava})
	assert.Equal(t, "fire-20260102-150405-lava-t12.35.png", got)
}
