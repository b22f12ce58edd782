// scenery - scene graph lessons in the terminal.
// Runs the built-in lesson scenes (or a YAML scene file) with a software
// rasterizer, sphere collisions and shadow mapping.
//
// Controls:
//
//	Arrows/WASD - Orbit the camera, or drive the tank in the tank scene
//	Mouse drag  - Orbit the camera
//	Scroll, +/- - Zoom in/out
//	Space       - Pause
//	R           - Respawn the scene
//	X           - Toggle wireframe
//	?           - Toggle HUD overlay
//	Esc, Q      - Quit
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/taigrr/scenery/internal/scenefile"
	"github.com/taigrr/scenery/pkg/render"
	"github.com/taigrr/scenery/pkg/scene"
)

var version = "dev"

// options are the flags shared by every command.
type options struct {
	fps       int
	seed      int64
	bg        string
	logLevel  string
	logFile   string
	dump      bool
	noShadows bool

	// run only
	watch bool

	// render only
	frames int
	png    string
	width  int
	height int
}

func main() {
	opts := &options{}
	root := &cobra.Command{
		Use:   "scenery",
		Short: "Scene graph lessons rendered in the terminal",
		Long: "scenery runs small scene graph lessons in the terminal: hierarchical\n" +
			"transforms, bouncing and colliding spheres, shadow mapping and a keyboard\n" +
			"driven tank.",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.IntVar(&opts.fps, "fps", 60, "target frames per second")
	pf.Int64Var(&opts.seed, "seed", 0, "random seed, 0 picks one from the clock")
	pf.StringVar(&opts.bg, "bg", "", "background color as R,G,B (default from the scene)")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	pf.BoolVar(&opts.dump, "dump", false, "print the built scene tree before starting")
	pf.BoolVar(&opts.noShadows, "no-shadows", false, "disable shadow mapping")

	root.AddCommand(runCommand(opts), renderCommand(opts), scenesCommand())

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

func runCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scene|file.yaml]",
		Short: "Run a scene interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := "shadows"
			if len(args) > 0 {
				ref = args[0]
			}
			// the terminal UI owns stderr, so logs only go to a file
			logger, closeLog, err := newLogger(opts.logLevel, opts.logFile, true)
			if err != nil {
				return err
			}
			defer closeLog()
			return runInteractive(cmd.Context(), ref, opts, logger)
		},
	}
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the scene file when it changes")
	return cmd
}

func renderCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [scene|file.yaml]",
		Short: "Simulate a scene headless and save the last frame as PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := "shadows"
			if len(args) > 0 {
				ref = args[0]
			}
			logger, closeLog, err := newLogger(opts.logLevel, opts.logFile, false)
			if err != nil {
				return err
			}
			defer closeLog()
			return renderHeadless(cmd.Context(), cmd.OutOrStdout(), ref, opts, logger)
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.frames, "frames", 120, "number of fixed steps to simulate")
	f.StringVar(&opts.png, "png", "scenery.png", "output PNG path")
	f.IntVar(&opts.width, "width", 320, "image width in pixels")
	f.IntVar(&opts.height, "height", 240, "image height in pixels")
	return cmd
}

func scenesCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "scenes [name]",
		Short: "List the built-in scenes, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				data, err := scenefile.BuiltinSource(args[0])
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, name := range scenefile.Builtins() {
				f, err := scenefile.Builtin(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\n", name, f.Description)
				if verbose {
					fmt.Fprintf(tw, "\t%d nodes, %d spawned, pipeline %s\n", countNodes(f.Nodes), countSpawned(f), f.Pipeline)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show node counts")
	return cmd
}

func countNodes(nodes []scenefile.Node) int {
	n := len(nodes)
	for _, c := range nodes {
		n += countNodes(c.Children)
	}
	return n
}

func countSpawned(f *scenefile.File) int {
	n := 0
	for _, s := range f.Spawn {
		n += s.Count
	}
	return n
}

// newLogger builds the slog logger every component logs through. With
// quiet set and no file, logging is discarded.
func newLogger(level, file string, quiet bool) (*slog.Logger, func(), error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "log level %q", level)
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case file != "":
		fh, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open log file")
		}
		w = fh
		closeFn = func() { fh.Close() }
	case quiet:
		return slog.New(slog.DiscardHandler), closeFn, nil
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "scenery",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	return slog.New(handler), closeFn, nil
}

// parseColor reads "R,G,B" with components in 0-255.
func parseColor(s string) (render.Color, error) {
	var r, g, b int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d,%d,%d", &r, &g, &b); err != nil {
		return render.Color{}, errors.Errorf("bad color %q, want R,G,B", s)
	}
	for _, c := range []int{r, g, b} {
		if c < 0 || c > 255 {
			return render.Color{}, errors.Errorf("bad color %q, components must be 0-255", s)
		}
	}
	return render.RGB(uint8(r), uint8(g), uint8(b)), nil
}

// dumpNode is the part of a node worth printing.
type dumpNode struct {
	Name      string
	Kind      string
	Position  [3]float64
	Radius    float64
	Triangles int
	Caster    bool
	Receiver  bool
	Children  []dumpNode
}

func summarize(n *scene.Node) dumpNode {
	p := n.Position()
	d := dumpNode{
		Name:     n.Name,
		Kind:     n.Kind.String(),
		Position: [3]float64{p.X, p.Y, p.Z},
		Radius:   n.Radius(),
		Caster:   n.ShadowCaster,
		Receiver: n.ShadowReceiver,
	}
	if n.Geometry != nil {
		d.Triangles = n.Geometry.TriangleCount()
	}
	for _, c := range n.Children() {
		d.Children = append(d.Children, summarize(c))
	}
	return d
}

func dumpTree(w io.Writer, root *scene.Node) {
	cfg := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	cfg.Fdump(w, summarize(root))
}
