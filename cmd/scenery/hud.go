package main

import (
	"fmt"
	"io"
	"time"

	"github.com/taigrr/scenery/pkg/render"
)

// HUD draws a status overlay with ANSI escapes after the frame is flushed.
type HUD struct {
	Visible bool

	name      string
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD returns a visible HUD titled with the scene name.
func NewHUD(name string) *HUD {
	return &HUD{name: name, Visible: true, fpsTime: time.Now()}
}

// UpdateFPS counts a frame. Call once per frame.
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

type hudState struct {
	stats     render.Stats
	bodies    int
	paused    bool
	wireframe bool
	tank      bool
}

func (h *HUD) Render(w io.Writer, width, height int, st hudState) {
	const (
		reset     = "\x1b[0m"
		bold      = "\x1b[1m"
		dim       = "\x1b[2m"
		bgBlack   = "\x1b[40m"
		fgWhite   = "\x1b[97m"
		fgGreen   = "\x1b[92m"
		fgYellow  = "\x1b[93m"
		fgCyan    = "\x1b[96m"
		clearLine = "\x1b[2K"
	)
	moveTo := func(row, col int) string {
		return fmt.Sprintf("\x1b[%d;%dH", row, col)
	}

	// always clear so toggling off works
	fmt.Fprint(w, moveTo(1, 1)+clearLine)
	fmt.Fprint(w, moveTo(height, 1)+clearLine)
	if !h.Visible {
		return
	}

	fmt.Fprintf(w, "%s%s%s %.0f FPS %s", moveTo(1, 1), bgBlack, fgGreen, h.fps, reset)

	titleCol := max((width-len(h.name)-2)/2, 1)
	fmt.Fprintf(w, "%s%s%s%s %s %s", moveTo(1, titleCol), bold, bgBlack, fgWhite, h.name, reset)

	counts := fmt.Sprintf(" %d draws %d tris ", st.stats.DrawCalls, st.stats.Triangles)
	fmt.Fprintf(w, "%s%s%s%s%s", moveTo(1, max(width-len(counts), 1)), bgBlack, fgCyan, counts, reset)

	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	fmt.Fprintf(w, "%s%s%s %s Paused  %s Wireframe  %d bodies %d casters %s",
		moveTo(height, 1), bgBlack, fgWhite, check(st.paused), check(st.wireframe), st.bodies, st.stats.ShadowCasters, reset)

	hint := " arrows: orbit  r: respawn "
	if st.tank {
		hint = " arrows: drive  a/d: tower  w/s: cannon "
	}
	fmt.Fprintf(w, "%s%s%s%s%s%s", moveTo(height, max(width-len(hint), 1)), bgBlack, dim, fgYellow, hint, reset)
}
