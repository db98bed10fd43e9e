package routing

import (
	"fmt"

	platformcore "github.com/vovakirdan/routeboard/internal/core"
	"github.com/vovakirdan/routeboard/internal/games/routing/core"
)

const (
	hudHeight    = 4
	footerHeight = 2
	cellW        = 3 // "[^]"
	labelW       = 3 // row index column
)

// boardRect returns where the board box goes, and whether it fits.
func (g *Game) boardRect(dst *platformcore.Screen) (platformcore.Rect, bool) {
	w := labelW + g.rules.Width*cellW + 2
	h := g.rules.Height + 3 // column header + box border
	availH := dst.Height() - hudHeight - footerHeight
	if dst.Width() < w || availH < h {
		return platformcore.Rect{}, false
	}
	r := platformcore.Centered(dst.Width(), availH, w, h)
	r.Y += hudHeight
	return r, true
}

// Render draws the board, HUD and overlays.
func (g *Game) Render(dst *platformcore.Screen) {
	dst.Clear()
	g.renderHUD(dst)

	if g.env == nil {
		g.renderOverlay(dst, "Invalid rules", g.warning)
		return
	}

	r, ok := g.boardRect(dst)
	if !ok {
		g.renderOverlay(dst, "Window too small", "Resize to continue")
		return
	}
	g.renderBoard(dst, r)
	g.renderFooter(dst)

	switch {
	case g.gameOver:
		score, _ := g.env.Score()
		g.renderOverlay(dst,
			fmt.Sprintf("Episode over | Score: %d", score.Total),
			fmt.Sprintf("drain %d, eaten %d, leftover %d | R: restart", score.DrainSteps, score.Eaten, score.Leftover))
	case g.paused:
		g.renderOverlay(dst, "Paused", "Press P to continue")
	}
}

func (g *Game) renderHUD(dst *platformcore.Screen) {
	hud := " " + g.variant.Title
	if g.env != nil {
		s := g.env.Snapshot()
		hud += fmt.Sprintf(" | Turn: %d | Pieces: %d | Eaten: %d | Exited: %d | Placer left: %d",
			s.Turn, s.Pieces(), s.Eaten, s.Exited, s.PlacerLeft)
	}
	dst.DrawTextWithColor(0, 0, hud, platformcore.ColorCyan)

	for x := 0; x < dst.Width(); x++ {
		dst.SetWithColor(x, 1, '─', platformcore.ColorGray)
	}

	controls := " Arrows: Move | WASD: Set | Space: Cycle | U: Undo | F: Autopilot | Enter: Commit | P: Pause | ?: Help"
	if g.rules.AllowNone {
		controls += " | X: None"
	}
	dst.DrawTextWithColor(0, 2, controls, platformcore.ColorGray)

	for x := 0; x < dst.Width(); x++ {
		dst.SetWithColor(x, 3, '─', platformcore.ColorGray)
	}
}

func (g *Game) renderBoard(dst *platformcore.Screen, r platformcore.Rect) {
	dst.DrawBox(r, platformcore.ColorGray)

	x0 := r.X + 1 + labelW
	y0 := r.Y + 2

	for x := 0; x < g.rules.Width; x++ {
		dst.DrawTextWithColor(x0+x*cellW, r.Y+1, fmt.Sprintf("%2d ", x), platformcore.ColorGray)
	}

	snap := g.env.Snapshot()
	for y := 0; y < g.rules.Height; y++ {
		dst.DrawTextWithColor(r.X+1, y0+y, fmt.Sprintf("%2d ", y), platformcore.ColorGray)
		for x := 0; x < g.rules.Width; x++ {
			c := core.C(x, y)
			g.renderCell(dst, x0+x*cellW, y0+y, c, snap)
		}
	}
}

func (g *Game) renderCell(dst *platformcore.Screen, sx, sy int, c core.Coord, snap core.Snapshot) {
	glyph := g.pending.Get(c).Glyph()
	left, right := ' ', ' '
	frame := platformcore.ColorGray
	fg := platformcore.ColorGray

	switch {
	case snap.Occupied.Get(c):
		left, right = '[', ']'
		frame, fg = platformcore.ColorYellow, platformcore.ColorBrightYellow
	case c == snap.Exit:
		glyph = 'E'
		fg = platformcore.ColorBrightGreen
	case snap.Mask.Get(c):
		left, right = ':', ':'
		frame, fg = platformcore.ColorBlue, platformcore.ColorWhite
	}
	if snap.Mask.Get(c) && fg == platformcore.ColorGray {
		fg = platformcore.ColorWhite
	}
	if g.collided[c] {
		frame = platformcore.ColorBrightRed
		if left == ' ' {
			left, right = '*', '*'
		}
	}
	if c == g.cursor && !g.gameOver {
		left, right = '>', '<'
		frame = platformcore.ColorMagenta
	}

	dst.SetWithColor(sx, sy, left, frame)
	dst.SetWithColor(sx+1, sy, glyph, fg)
	dst.SetWithColor(sx+2, sy, right, frame)
}

func (g *Game) renderFooter(dst *platformcore.Screen) {
	y := dst.Height() - footerHeight
	status := fmt.Sprintf(" Cursor %s | Edits: %d | Last turn: %d eaten, %d exited",
		g.cursor, len(g.history), g.lastEaten, g.lastExits)
	dst.DrawTextWithColor(0, y, status, platformcore.ColorDefault)
	if g.warning != "" {
		dst.DrawTextWithColor(0, y+1, " "+g.warning, platformcore.ColorRed)
	}
}

// renderOverlay draws a centered two-line message box.
func (g *Game) renderOverlay(dst *platformcore.Screen, line1, line2 string) {
	w := platformcore.Max(len([]rune(line1)), len([]rune(line2))) + 4
	box := platformcore.Centered(dst.Width(), dst.Height(), w, 5)
	dst.DrawBox(box, platformcore.ColorWhite)
	dst.DrawTextCentered(box.Y+1, line1, platformcore.ColorBrightYellow)
	dst.DrawTextCentered(box.Y+3, line2, platformcore.ColorDefault)
}
