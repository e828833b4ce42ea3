package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/geom"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, geom.Point{}, cfg.NodeOrigin())
	assert.Nil(t, cfg.Grid())
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "flow.toml", `
controlled = true

[connection]
mode = "loose"
radius = 25
disallow_self = true

[viewport]
max_zoom = 4

[viewport.translate_extent]
min_x = -1000
min_y = -1000
max_x = 1000
max_y = 1000

[nodes]
origin = [0.5, 0.5]
snap_to_grid = true
snap_grid = [20, 10]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Controlled)
	assert.Equal(t, "loose", cfg.Connection.Mode)
	assert.Equal(t, 25.0, cfg.Connection.Radius)
	assert.True(t, cfg.Connection.DisallowSelf)
	assert.Equal(t, 4.0, cfg.Viewport.MaxZoom)
	assert.Equal(t, 0.5, cfg.Viewport.MinZoom, "unset keys keep defaults")
	require.NotNil(t, cfg.Viewport.Extent)
	assert.Equal(t, geom.Rect{X: -1000, Y: -1000, Width: 2000, Height: 2000}, cfg.Viewport.Extent.Rect())
	assert.Equal(t, geom.Point{X: 0.5, Y: 0.5}, cfg.NodeOrigin())
	assert.Equal(t, &geom.Grid{X: 20, Y: 10}, cfg.Grid())
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "flow.yaml", `
selection:
  mode: partial
edges:
  default_type: smoothstep
  border_radius: 8
autopan:
  speed: 30
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "partial", cfg.Selection.Mode)
	assert.Equal(t, "smoothstep", cfg.Edges.DefaultType)
	assert.Equal(t, 8.0, cfg.Edges.BorderRadius)
	assert.Equal(t, 30.0, cfg.AutoPan.Speed)
	assert.Equal(t, 40.0, cfg.AutoPan.Margin)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    errors.Code
	}{
		{"unknown format", "flow.ini", "x=1", errors.ErrCodeUnsupported},
		{"bad toml", "flow.toml", "[viewport\n", errors.ErrCodeInvalidConfig},
		{"bad yaml", "flow.yml", "viewport: [", errors.ErrCodeInvalidConfig},
		{"inverted zoom", "flow.toml", "[viewport]\nmin_zoom = 3\nmax_zoom = 2\n", errors.ErrCodeInvalidViewport},
		{"zero zoom", "flow.toml", "[viewport.initial]\nzoom = 0\n", errors.ErrCodeInvalidViewport},
		{"bad mode", "flow.toml", "[connection]\nmode = \"sticky\"\n", errors.ErrCodeInvalidConfig},
		{"bad grid", "flow.yaml", "nodes:\n  snap_to_grid: true\n  snap_grid: [0, 10]\n", errors.ErrCodeInvalidConfig},
		{"inverted extent", "flow.toml", "[nodes.extent]\nmin_x = 10\nmax_x = 0\n", errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), "error: %v", err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestWatchReloads(t *testing.T) {
	WatchDebounce = 20 * time.Millisecond
	path := writeFile(t, "flow.toml", "[connection]\nradius = 10\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type reload struct {
		cfg Config
		err error
	}
	got := make(chan reload, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(c Config, err error) { got <- reload{c, err} })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("[connection]\nradius = 42\n"), 0o644))

	select {
	case r := <-got:
		require.NoError(t, r.err)
		assert.Equal(t, 42.0, r.cfg.Connection.Radius)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
