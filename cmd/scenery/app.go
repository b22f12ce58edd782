package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/pkg/errors"

	"github.com/taigrr/scenery/internal/scenefile"
	"github.com/taigrr/scenery/pkg/render"
)

// app is the interactive terminal front end around a sim.
type app struct {
	term   *uv.Terminal
	sim    *sim
	hud    *HUD
	log    *slog.Logger
	width  int
	height int

	// scene file path and its change notifications when --watch is set
	ref    string
	reload <-chan struct{}

	mouseDown  bool
	lastMouseX int
	lastMouseY int
}

func runInteractive(ctx context.Context, ref string, opts *options, logger *slog.Logger) error {
	cfg, err := opts.simConfig()
	if err != nil {
		return err
	}
	f, err := scenefile.Open(ref)
	if err != nil {
		return err
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return errors.Wrap(err, "get terminal size")
	}

	fbWidth, fbHeight := render.FramebufferSize(width, height)
	s, err := newSim(f, cfg, fbWidth, fbHeight, logger)
	if err != nil {
		return err
	}
	if opts.dump {
		dumpTree(os.Stdout, s.scene.Root)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var reload <-chan struct{}
	if opts.watch {
		if _, err := os.Stat(ref); err != nil {
			return errors.Errorf("--watch needs a scene file, %q is not one", ref)
		}
		if reload, err = watchScene(ctx, ref, logger); err != nil {
			return err
		}
	}

	if err := term.Start(); err != nil {
		return errors.Wrap(err, "start terminal")
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// any-event mouse tracking in SGR mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h")
	fmt.Fprint(os.Stdout, "\x1b[?1006h")

	a := &app{
		term:   term,
		sim:    s,
		hud:    NewHUD(f.Name),
		log:    logger,
		width:  width,
		height: height,
		ref:    ref,
		reload: reload,
	}
	s.renderer.SetPresenter(render.NewScreenPresenter(term, width, height))

	err = a.loop(ctx, cfg.fps)

	fmt.Fprint(os.Stdout, "\x1b[?1003l")
	fmt.Fprint(os.Stdout, "\x1b[?1006l")
	term.ExitAltScreen()
	term.ShowCursor()
	shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
	defer stop()
	if serr := term.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = errors.Wrap(serr, "shutdown terminal")
	}
	logger.Info("stopped", "scene", f.Name)
	return err
}

// loop runs fixed-rate frames until the context ends or the user quits.
// Terminal events arrive on their own goroutine and are handled between
// frames.
func (a *app) loop(ctx context.Context, fps int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan uv.Event, 64)
	go func() {
		for ev := range a.term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		select {
		case <-a.reload:
			a.reloadScene()
		default:
		}

	drain:
		for {
			select {
			case ev := <-events:
				if a.handle(ev) {
					return nil
				}
			default:
				break drain
			}
		}

		now := time.Now()
		dt := math.Min(now.Sub(last).Seconds(), 0.1)
		last = now

		a.sim.step(dt)
		if err := a.sim.draw(); err != nil {
			return errors.Wrap(err, "draw")
		}
		if err := a.term.Display(); err != nil {
			return errors.Wrap(err, "display")
		}

		a.hud.UpdateFPS()
		a.hud.Render(os.Stdout, a.width, a.height, hudState{
			stats:     a.sim.renderer.Stats(),
			bodies:    len(a.sim.scene.Bodies),
			paused:    a.sim.paused,
			wireframe: a.sim.wireframe,
			tank:      a.sim.scene.Tank != nil,
		})
	}
}

// reloadScene rebuilds the sim from the watched file. A broken file is
// logged and the current scene keeps running.
func (a *app) reloadScene() {
	f, err := scenefile.Load(a.ref)
	if err != nil {
		a.log.Warn("reload failed", "path", a.ref, "err", err)
		return
	}
	if err := a.sim.reload(f); err != nil {
		a.log.Warn("reload failed", "path", a.ref, "err", err)
		return
	}
	a.hud.name = f.Name
	a.log.Info("reloaded", "path", a.ref, "scene", f.Name)
}

// respawn rebuilds the current scene. A failed build is logged and the old
// tree keeps running.
func (a *app) respawn() {
	if err := a.sim.respawn(); err != nil {
		a.log.Warn("respawn failed", "scene", a.sim.file.Name, "err", err)
	}
}

// handle applies one terminal event. It reports whether the user asked to
// quit.
func (a *app) handle(ev uv.Event) bool {
	s := a.sim
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		a.width, a.height = ev.Width, ev.Height
		a.term.Erase()
		a.term.Resize(a.width, a.height)
		fbWidth, fbHeight := render.FramebufferSize(a.width, a.height)
		s.resize(fbWidth, fbHeight)
		s.renderer.SetPresenter(render.NewScreenPresenter(a.term, a.width, a.height))
		a.log.Debug("resized", "cols", a.width, "rows", a.height)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "ctrl+c", "q"):
			return true
		case ev.MatchString("space"):
			s.paused = !s.paused
		case ev.MatchString("r"):
			a.respawn()
		case ev.MatchString("x"):
			s.wireframe = !s.wireframe
		case ev.MatchString("?", "shift+/"):
			a.hud.Visible = !a.hud.Visible
		case ev.MatchString("+", "="):
			s.camera.Zoom(-zoomStep)
		case ev.MatchString("-", "_"):
			s.camera.Zoom(zoomStep)
		default:
			for _, key := range tankKeys {
				if ev.MatchString(key) {
					if !s.driveTank(key) {
						s.orbitCamera(key)
					}
					break
				}
			}
		}

	case uv.MouseClickEvent:
		a.mouseDown = true
		a.lastMouseX, a.lastMouseY = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		a.mouseDown = false

	case uv.MouseMotionEvent:
		if a.mouseDown {
			dx, dy := ev.X-a.lastMouseX, ev.Y-a.lastMouseY
			s.camera.Orbit(float64(dx)*0.05, float64(dy)*0.05)
			a.lastMouseX, a.lastMouseY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			s.camera.Zoom(-zoomStep)
		case uv.MouseWheelDown:
			s.camera.Zoom(zoomStep)
		}
	}
	return false
}
