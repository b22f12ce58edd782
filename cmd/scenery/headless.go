package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/taigrr/scenery/internal/scenefile"
	"github.com/taigrr/scenery/pkg/render"
)

// renderHeadless simulates opts.frames fixed steps and writes the last frame
// to opts.png.
func renderHeadless(ctx context.Context, out io.Writer, ref string, opts *options, logger *slog.Logger) error {
	if opts.frames <= 0 {
		return errors.Errorf("frames must be positive, got %d", opts.frames)
	}
	if opts.width <= 0 || opts.height <= 0 {
		return errors.Errorf("bad image size %dx%d", opts.width, opts.height)
	}
	cfg, err := opts.simConfig()
	if err != nil {
		return err
	}
	f, err := scenefile.Open(ref)
	if err != nil {
		return err
	}

	s, err := newSim(f, cfg, opts.width, opts.height, logger)
	if err != nil {
		return err
	}
	if opts.dump {
		dumpTree(out, s.scene.Root)
	}

	png := &render.PNGWriter{Path: opts.png}
	dt := 1 / float64(cfg.fps)
	for i := range opts.frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.step(dt)
		if i == opts.frames-1 {
			s.renderer.SetPresenter(png)
			if err := s.draw(); err != nil {
				return errors.Wrap(err, "write frame")
			}
		}
	}

	stats := s.renderer.Stats()
	logger.Info("frame written",
		"path", opts.png,
		"frames", opts.frames,
		"draw_calls", stats.DrawCalls,
		"triangles", stats.Triangles,
		"fragments", stats.Fragments)
	fmt.Fprintf(out, "wrote %s (%dx%d, %d frames simulated)\n", opts.png, opts.width, opts.height, opts.frames)
	return nil
}
