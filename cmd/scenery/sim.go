package main

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/taigrr/scenery/internal/scenefile"
	"github.com/taigrr/scenery/pkg/math3d"
	"github.com/taigrr/scenery/pkg/physics"
	"github.com/taigrr/scenery/pkg/render"
)

// simConfig is what the frame loop needs from the command line.
type simConfig struct {
	fps        int
	seed       int64
	background *render.Color
	noShadows  bool
}

func (o *options) simConfig() (simConfig, error) {
	cfg := simConfig{fps: o.fps, seed: o.seed, noShadows: o.noShadows}
	if cfg.fps <= 0 {
		return cfg, errors.Errorf("fps must be positive, got %d", cfg.fps)
	}
	if cfg.seed == 0 {
		cfg.seed = time.Now().UnixNano()
	}
	if o.bg != "" {
		c, err := parseColor(o.bg)
		if err != nil {
			return cfg, err
		}
		cfg.background = &c
	}
	return cfg, nil
}

// sim owns one running scene: the node tree, its renderer, camera and
// collision resolver. Everything runs on the frame loop goroutine.
type sim struct {
	file     *scenefile.File
	cfg      simConfig
	log      *slog.Logger
	rng      *rand.Rand
	scene    *scenefile.Scene
	renderer *render.Renderer
	camera   *render.OrbitCamera
	resolver *physics.Resolver

	wireframe bool
	paused    bool

	// collision counters, logged once per simulated second
	contacts   int
	statsClock float64
}

func newSim(f *scenefile.File, cfg simConfig, width, height int, logger *slog.Logger) (*sim, error) {
	s := &sim{
		file: f,
		cfg:  cfg,
		log:  logger,
		rng:  rand.New(rand.NewSource(cfg.seed)),
	}
	if err := s.load(); err != nil {
		return nil, err
	}

	shadowSize := s.scene.ShadowSize
	if cfg.noShadows {
		shadowSize = 0
	}
	s.renderer = render.NewRenderer(width, height, shadowSize)
	s.renderer.SetShadowBias(s.scene.ShadowBias)

	c := s.scene.Camera
	s.camera = render.NewOrbitCamera(c.Eye.Vec(), c.Target.Vec(), cfg.fps)
	s.camera.FOV, s.camera.Near, s.camera.Far = c.FOV, c.Near, c.Far
	s.resize(width, height)

	logger.Info("scene ready",
		"scene", s.scene.Name,
		"size", [2]int{width, height},
		"shadows", shadowSize,
		"seed", cfg.seed)
	return s, nil
}

// load builds a fresh tree from the scene file.
func (s *sim) load() error {
	built, err := scenefile.Build(s.file, scenefile.Options{Rand: s.rng, Logger: s.log})
	if err != nil {
		return errors.Wrap(err, "build scene")
	}
	s.scene = built
	s.resolver = built.NewResolver()
	return nil
}

// respawn builds a new tree and releases the old one. The rng carries on,
// so spawned bodies land somewhere new. A failed build keeps the old tree.
func (s *sim) respawn() error {
	old := s.scene.Root
	if err := s.load(); err != nil {
		return err
	}
	released := old.Release()
	s.log.Info("respawned", "released", released, "nodes", s.scene.Root.Count())
	return nil
}

// reload swaps in a new scene file, rebuilds the tree and moves the camera
// to the new file's eye.
func (s *sim) reload(f *scenefile.File) error {
	prev := s.file
	s.file = f
	if err := s.respawn(); err != nil {
		s.file = prev
		return err
	}
	s.renderer.SetShadowBias(s.scene.ShadowBias)
	c := s.scene.Camera
	s.camera.Target = c.Target.Vec()
	s.camera.SetEye(c.Eye.Vec())
	s.camera.FOV, s.camera.Near, s.camera.Far = c.FOV, c.Near, c.Far
	return nil
}

func (s *sim) resize(width, height int) {
	s.renderer.Resize(width, height)
	s.camera.Aspect = float64(width) / float64(height)
}

// step advances the simulation by dt seconds: node motion first, then
// collisions between the scene's bodies.
func (s *sim) step(dt float64) {
	s.camera.Update()
	if s.paused {
		return
	}

	s.scene.Root.Update(dt)
	if s.scene.Collisions {
		stats := s.scene.Resolve(s.resolver)
		s.contacts += stats.Contacts
	}

	s.statsClock += dt
	if s.statsClock >= 1 {
		s.log.Debug("collisions", "contacts", s.contacts, "bodies", len(s.scene.Bodies))
		s.contacts, s.statsClock = 0, 0
	}
}

// draw renders one frame: the shadow depth pass, then the color pass.
func (s *sim) draw() error {
	r := s.renderer
	r.SetViewMatrix(s.camera.ViewMatrix())
	r.SetProjectionMatrix(s.camera.ProjectionMatrix())
	r.SetLightPos(s.scene.LightPosition())

	root := s.scene.Root
	if r.ShadowMap() != nil {
		r.BeginShadowPass()
		root.Render(r, render.PipelineShadowDepth)
	}

	r.Clear(s.background())
	p := s.scene.Pipeline
	if s.wireframe {
		p = render.PipelineWireframe
	}
	root.Render(r, p)
	return r.Present()
}

func (s *sim) background() render.Color {
	if s.cfg.background != nil {
		return *s.cfg.background
	}
	return s.scene.Background
}

const (
	tankStep = 1.0
	tankTurn = 0.1
)

// driveTank applies one key press to the tank rig. It reports whether the
// key belongs to the tank.
func (s *sim) driveTank(key string) bool {
	t := s.scene.Tank
	if t == nil {
		return false
	}

	up, down := math3d.V3(0, 1, 0), math3d.V3(0, -1, 0)
	switch key {
	case "up":
		t.Base.SetMatrix(t.Base.Matrix().Mul(math3d.Translate(math3d.V3(0, 0, tankStep))))
	case "down":
		t.Base.SetMatrix(t.Base.Matrix().Mul(math3d.Translate(math3d.V3(0, 0, -tankStep))))
	case "left":
		t.Base.SetMatrix(t.Base.Matrix().Mul(math3d.Rotate(up, tankTurn)))
	case "right":
		t.Base.SetMatrix(t.Base.Matrix().Mul(math3d.Rotate(down, tankTurn)))
	case "a":
		t.Tower.SetMatrix(t.Tower.Matrix().Mul(math3d.Rotate(down, tankTurn)))
	case "d":
		t.Tower.SetMatrix(t.Tower.Matrix().Mul(math3d.Rotate(up, tankTurn)))
	case "w":
		t.Cannon.SetMatrix(t.Cannon.Matrix().Mul(math3d.Rotate(math3d.V3(-1, 0, 0), tankTurn)))
	case "s":
		t.Cannon.SetMatrix(t.Cannon.Matrix().Mul(math3d.Rotate(math3d.V3(1, 0, 0), tankTurn)))
	default:
		return false
	}
	return true
}

// tankKeys are the key names driveTank understands.
var tankKeys = []string{"up", "down", "left", "right", "w", "a", "s", "d"}

const (
	orbitStep = 0.1
	zoomStep  = 1.0
)

// orbitCamera maps a movement key onto the camera.
func (s *sim) orbitCamera(key string) bool {
	switch key {
	case "left", "a":
		s.camera.Orbit(-orbitStep, 0)
	case "right", "d":
		s.camera.Orbit(orbitStep, 0)
	case "up", "w":
		s.camera.Orbit(0, orbitStep)
	case "down", "s":
		s.camera.Orbit(0, -orbitStep)
	default:
		return false
	}
	return true
}
