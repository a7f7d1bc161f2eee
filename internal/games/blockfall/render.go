package blockfall

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/engine"
	"github.com/vovakirdan/blockfall/internal/entropy"
	"github.com/vovakirdan/blockfall/internal/ledger"
)

// Layout constants. Each board cell is two characters wide.
const (
	cellW   = 2
	boardX  = 2
	boardY  = 1
	boardW  = engine.MapWidth*cellW + 2
	boardH  = engine.MapHeight + 2
	sideX   = boardX + boardW + 3
	minW    = sideX + 24
	minH    = boardY + boardH + 1
	overlay = 34 // Overlay box width
)

// Render draws the current state into dst.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	s := g.Snapshot()

	if dst.Width() < minW || dst.Height() < minH {
		g.renderTooSmall(dst)
		return
	}

	g.renderBoard(dst, s)
	g.renderSidebar(dst, s)

	switch s.State {
	case StateLoadGame:
		g.renderOverlay(dst, "Saved game found", []string{
			fmt.Sprintf("Score %d  Level %d", g.pending.Score, g.pending.Level),
			"",
			"A: continue    B: new game",
		})
	case StateDifficulty:
		g.renderOverlay(dst, "Select difficulty", difficultyLines(s))
	case StatePaused:
		lines := append([]string{"Start: resume", ""}, recordLines(s.Records, -1)...)
		g.renderOverlay(dst, "Paused", lines)
	case StateSelectName:
		g.renderOverlay(dst, "New record!", nameLines(s))
	case StateSetName:
		g.renderOverlay(dst, "Enter your name", []string{
			"",
			fmt.Sprintf("> %-*s <", ledger.PlayerNameLength, s.NameInput+"_"),
			"",
			"Enter: accept   Esc: skip",
			"Backspace: erase",
		})
	case StateGameOver:
		lines := append([]string{fmt.Sprintf("Score %d", s.Score), ""}, recordLines(s.Records, s.Rank)...)
		lines = append(lines, "", "Start: play again   X: quit")
		g.renderOverlay(dst, "Game over", lines)
	}

	if s.Message != "" {
		dst.DrawTextColored(boardX, dst.Height()-1, s.Message, core.ColorRed)
	}
	if s.Debug {
		renderEntropy(dst, s.Entropy, sideX, minH-3)
	}
}

func (g *Game) renderTooSmall(dst *core.Screen) {
	y := dst.Height() / 2
	dst.DrawTextCentered(y-1, "Window too small")
	dst.DrawTextCentered(y, fmt.Sprintf("Need %dx%d", minW, minH))
}

func (g *Game) renderBoard(dst *core.Screen, s Snapshot) {
	dst.DrawBox(core.NewRect(boardX, boardY, boardW, boardH), core.ColorGray)

	put := func(x, y int, t uint8) {
		px := boardX + 1 + x*cellW
		py := boardY + 1 + y
		if t == 0 {
			dst.SetColored(px, py, ' ', core.ColorGray)
			dst.SetColored(px+1, py, '.', core.ColorGray)
			return
		}
		c := core.BlockColor(t)
		dst.SetColored(px, py, '█', c)
		dst.SetColored(px+1, py, '█', c)
	}

	for y := 0; y < engine.MapHeight; y++ {
		for x := 0; x < engine.MapWidth; x++ {
			put(x, y, s.Board[y][x])
		}
	}

	if s.State == StateRunning || s.State == StatePaused {
		for i, p := range s.Figure.Cells() {
			if engine.InBounds(p.X, p.Y) {
				put(p.X, p.Y, s.Figure.Blocks[i])
			}
		}
	}
}

func (g *Game) renderSidebar(dst *core.Screen, s Snapshot) {
	y := boardY
	line := func(text string, c core.Color) {
		dst.DrawTextColored(sideX, y, text, c)
		y++
	}

	line("BLOCKFALL v"+Version, core.ColorBrightWhite)
	y++
	line(fmt.Sprintf("Score   %6d", s.Score), core.ColorYellow)
	line(fmt.Sprintf("Level   %6d", s.Level), core.ColorDefault)
	line(fmt.Sprintf("Lines   %6d", s.Lines), core.ColorDefault)
	line(fmt.Sprintf("Figures %6d", s.Figures), core.ColorDefault)
	line(fmt.Sprintf("Blocks  %6d", s.BlockTypes), core.ColorDefault)
	line(fmt.Sprintf("Game #  %6d", s.GameCounter), core.ColorGray)
	y++

	vol := fmt.Sprintf("Volume  %6d", s.Volume)
	if s.MusicPaused {
		vol += " (muted)"
	}
	line(vol, core.ColorCyan)
	if s.Track != "" {
		line("♪ "+truncate(s.Track, 20), core.ColorCyan)
	}
}

func difficultyLines(s Snapshot) []string {
	bar := strings.Repeat("■", s.BlockTypes-engine.MinBlockTypes+1) +
		strings.Repeat("□", engine.MaxBlockTypes-s.BlockTypes)
	return []string{
		fmt.Sprintf("Block types: %d  %s", s.BlockTypes, bar),
		"Up/Down: change  Start: play",
		"",
		"Line up the falling columns",
		"and clear full rows.",
		"Left/Right: move  Down: drop",
		"A: rotate  Start: pause",
		"Start+Select: quit",
	}
}

func nameLines(s Snapshot) []string {
	lines := []string{"Select your name:"}
	for i, n := range s.Names {
		if n == "" {
			n = "-UNUSED-"
		}
		mark, end := "   ", "   "
		if i == s.RosterIdx {
			mark, end = ">>>", "<<<"
		}
		lines = append(lines, fmt.Sprintf("%s %-*s %s", mark, ledger.PlayerNameLength, n, end))
	}
	return append(lines, "A: select   B: change name")
}

// recordLines lists a tier's records, marking the one at highlight.
func recordLines(recs []ledger.Record, highlight int) []string {
	lines := make([]string, 0, len(recs))
	for i, r := range recs {
		mark := " "
		if i == highlight {
			mark = "*"
		}
		lines = append(lines, fmt.Sprintf("%s%2d. %-*s L%-2d %6d", mark, i+1, ledger.PlayerNameLength, r.Name, r.Level, r.Score))
	}
	return lines
}

// renderOverlay draws a titled box over the board area.
func (g *Game) renderOverlay(dst *core.Screen, title string, lines []string) {
	h := len(lines) + 4
	x := boardX + (boardW+sideX-boardX-overlay)/2
	y := (dst.Height() - h) / 2
	if y < 0 {
		y = 0
	}

	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+overlay; xx++ {
			dst.Set(xx, yy, ' ')
		}
	}
	dst.DrawBox(core.NewRect(x, y, overlay, h), core.ColorWhite)

	dst.DrawTextColored(x+(overlay-len([]rune(title)))/2, y+1, title, core.ColorBrightWhite)
	for i, l := range lines {
		dst.DrawText(x+2, y+3+i, truncate(l, overlay-4))
	}
}

// renderEntropy shows the pool bytes with the write (W) and read (R) indices.
func renderEntropy(dst *core.Screen, e entropy.Snapshot, x, y int) {
	const perRow = 8
	for row := 0; row < entropy.PoolSize/perRow; row++ {
		var b strings.Builder
		for i := row * perRow; i < (row+1)*perRow; i++ {
			switch i {
			case e.Write:
				b.WriteByte('W')
			case e.Read:
				b.WriteByte('R')
			default:
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%02x", e.Buf[i])
		}
		dst.DrawTextColored(x, y-entropy.PoolSize/perRow+row, b.String(), core.ColorGray)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
