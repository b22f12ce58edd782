package main

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/scenery/internal/scenefile"
	"github.com/taigrr/scenery/pkg/render"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestSim(t *testing.T, name string, cfg simConfig) *sim {
	t.Helper()
	f, err := scenefile.Builtin(name)
	require.NoError(t, err)
	if cfg.fps == 0 {
		cfg.fps = 30
	}
	if cfg.seed == 0 {
		cfg.seed = 1
	}
	s, err := newSim(f, cfg, 64, 48, quietLogger())
	require.NoError(t, err)
	return s
}

func TestDriveTank(t *testing.T) {
	s := newTestSim(t, "tank", simConfig{})
	tank := s.scene.Tank
	require.NotNil(t, tank)

	require.True(t, s.driveTank("up"))
	assert.InDelta(t, 1.0, tank.Base.Position().Z, 1e-9)

	require.True(t, s.driveTank("down"))
	require.True(t, s.driveTank("down"))
	assert.InDelta(t, -1.0, tank.Base.Position().Z, 1e-9)

	cannon := tank.Cannon.WorldMatrix().Translation()
	require.True(t, s.driveTank("d"))
	turned := tank.Cannon.WorldMatrix().Translation()
	assert.InDelta(t, cannon.Y, turned.Y, 1e-9, "tower turns about Y")
	assert.NotEqual(t, cannon.X, turned.X)

	assert.False(t, s.driveTank("q"))
}

func TestDriveTankWithoutRig(t *testing.T) {
	s := newTestSim(t, "collision", simConfig{})
	assert.False(t, s.driveTank("up"))
	assert.True(t, s.orbitCamera("up"))
	assert.False(t, s.orbitCamera("x"))
}

func TestSimDrawShadows(t *testing.T) {
	s := newTestSim(t, "shadows", simConfig{})
	require.NotNil(t, s.renderer.ShadowMap())

	s.step(1.0 / 30)
	require.NoError(t, s.draw())

	stats := s.renderer.Stats()
	assert.Equal(t, 1, stats.ShadowCasters)
	assert.Equal(t, 4, stats.DrawCalls, "floor, wall, ball and lamp")
	assert.Positive(t, stats.Fragments)
}

func TestSimNoShadows(t *testing.T) {
	s := newTestSim(t, "shadows", simConfig{noShadows: true})
	assert.Nil(t, s.renderer.ShadowMap())

	require.NoError(t, s.draw())
	assert.Zero(t, s.renderer.Stats().ShadowCasters)
}

func TestSimPause(t *testing.T) {
	s := newTestSim(t, "shadows", simConfig{})
	ball := s.scene.Root.Find("ball")
	require.NotNil(t, ball)
	before := ball.Position()

	s.paused = true
	s.step(0.5)
	assert.Equal(t, before, ball.Position())

	s.paused = false
	s.step(0.5)
	assert.NotEqual(t, before, ball.Position())
}

func TestSimRespawn(t *testing.T) {
	s := newTestSim(t, "collision", simConfig{})
	old := s.scene.Root

	require.NoError(t, s.respawn())
	assert.True(t, old.Released())
	assert.NotSame(t, old, s.scene.Root)
	assert.Len(t, s.scene.Bodies, 25)
	assert.Equal(t, 27, s.scene.Root.Count())
}

func TestSimReload(t *testing.T) {
	s := newTestSim(t, "collision", simConfig{})
	old := s.scene.Root

	src, err := scenefile.BuiltinSource("tank")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "tank.yaml")
	require.NoError(t, os.WriteFile(path, src, 0o644))
	f, err := scenefile.Load(path)
	require.NoError(t, err)

	require.NoError(t, s.reload(f))
	assert.True(t, old.Released())
	assert.Equal(t, "tank", s.scene.Name)
	assert.NotNil(t, s.scene.Tank)
	assert.Empty(t, s.scene.Bodies)
	assert.InDelta(t, 0.7, s.camera.FOV, 1e-9)
}

func TestSimReloadKeepsSceneOnError(t *testing.T) {
	s := newTestSim(t, "tank", simConfig{})
	root := s.scene.Root

	bad := &scenefile.File{Name: "bad", Nodes: []scenefile.Node{{Name: "x", Geometry: "missing"}}}
	assert.Error(t, s.reload(bad))
	assert.Same(t, root, s.scene.Root)
	assert.False(t, root.Released())
	assert.Equal(t, "tank", s.file.Name)
}

func TestRespawnKeyKeepsSceneOnError(t *testing.T) {
	s := newTestSim(t, "tank", simConfig{})
	root := s.scene.Root
	s.file.Nodes[0].Geometry = "missing"

	var logs bytes.Buffer
	a := &app{sim: s, hud: NewHUD(s.file.Name), log: slog.New(slog.NewTextHandler(&logs, nil))}
	quit := a.handle(uv.KeyPressEvent{Code: 'r', Text: "r"})

	assert.False(t, quit)
	assert.Same(t, root, s.scene.Root)
	assert.False(t, root.Released())
	assert.Contains(t, logs.String(), "respawn failed")

	s.file.Nodes[0].Geometry = "base"
	a.handle(uv.KeyPressEvent{Code: 'r', Text: "r"})
	assert.True(t, root.Released())
	assert.NotSame(t, root, s.scene.Root)
}

func TestWatchScene(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: a\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed, err := watchScene(ctx, path, quietLogger())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("name: b\n"), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
}

func TestSimBackground(t *testing.T) {
	s := newTestSim(t, "tank", simConfig{})
	assert.Equal(t, render.ColorSlate, s.background())

	red := render.RGB(255, 0, 0)
	s = newTestSim(t, "tank", simConfig{background: &red})
	assert.Equal(t, red, s.background())
}

func TestSimCollisionsStayFinite(t *testing.T) {
	s := newTestSim(t, "collision", simConfig{})
	for range 120 {
		s.step(1.0 / 30)
	}
	for _, b := range s.scene.Bodies {
		p := b.Position()
		for _, c := range []float64{p.X, p.Y, p.Z} {
			assert.False(t, math.IsNaN(c) || math.IsInf(c, 0), b.Name)
		}
	}
}

func TestSimConfig(t *testing.T) {
	_, err := (&options{fps: 0}).simConfig()
	assert.ErrorContains(t, err, "fps must be positive")

	cfg, err := (&options{fps: 30, seed: 7, bg: "1,2,3"}).simConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.seed)
	require.NotNil(t, cfg.background)
	assert.Equal(t, render.RGB(1, 2, 3), *cfg.background)

	cfg, err = (&options{fps: 30}).simConfig()
	require.NoError(t, err)
	assert.NotZero(t, cfg.seed, "zero seed picks one from the clock")

	_, err = (&options{fps: 30, bg: "teal"}).simConfig()
	assert.Error(t, err)
}

func TestRenderHeadless(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	opts := &options{fps: 30, seed: 1, frames: 3, png: path, width: 32, height: 24}

	var out bytes.Buffer
	require.NoError(t, renderHeadless(context.Background(), &out, "tank", opts, quietLogger()))
	assert.Contains(t, out.String(), "wrote "+path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRenderHeadlessErrors(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	tests := []struct {
		name string
		opts options
		ref  string
		want string
	}{
		{"no frames", options{fps: 30, frames: 0, width: 8, height: 8}, "tank", "frames must be positive"},
		{"bad size", options{fps: 30, frames: 1, width: 0, height: 8}, "tank", "bad image size"},
		{"bad fps", options{fps: -1, frames: 1, width: 8, height: 8}, "tank", "fps must be positive"},
		{"unknown scene", options{fps: 30, frames: 1, width: 8, height: 8}, "lesson99", "unknown scene"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := renderHeadless(ctx, &out, tt.ref, &tt.opts, quietLogger())
			assert.ErrorContains(t, err, tt.want)
		})
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	opts := &options{fps: 30, frames: 2, width: 8, height: 8, png: filepath.Join(t.TempDir(), "x.png")}
	assert.ErrorIs(t, renderHeadless(canceled, &out, "tank", opts, quietLogger()), context.Canceled)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    render.Color
		wantErr bool
	}{
		{"30,30,46", render.RGB(30, 30, 46), false},
		{" 0,0,0 ", render.RGB(0, 0, 0), false},
		{"255,128,1", render.RGB(255, 128, 1), false},
		{"256,0,0", render.Color{}, true},
		{"-1,0,0", render.Color{}, true},
		{"red", render.Color{}, true},
		{"1,2", render.Color{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	_, _, err := newLogger("loud", "", false)
	assert.ErrorContains(t, err, "log level")

	logger, closeFn, err := newLogger("info", "", true)
	require.NoError(t, err)
	logger.Info("dropped")
	closeFn()

	path := filepath.Join(t.TempDir(), "scenery.log")
	logger, closeFn, err = newLogger("debug", path, true)
	require.NoError(t, err)
	logger.Debug("kept", "n", 1)
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept")
}

func TestDumpTree(t *testing.T) {
	s := newTestSim(t, "tank", simConfig{})
	var out bytes.Buffer
	dumpTree(&out, s.scene.Root)
	assert.Contains(t, out.String(), "cannon")
	assert.Contains(t, out.String(), "Triangles")
}
