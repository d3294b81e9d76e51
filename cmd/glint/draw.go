package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/glintnotes/glint/internal/decor"
	"github.com/glintnotes/glint/internal/engine/buffer"
	"github.com/glintnotes/glint/internal/render"
)

// paint redraws the whole frame: visible document lines, the
// completion popup, and the status or find bar on the bottom row.
func (a *App) paint() {
	a.screen.Clear()
	w, h := a.screen.Size()
	if h < 2 {
		a.screen.Show()
		return
	}
	textHeight := h - 1

	doc := a.session.Document()
	a.clampTopLine(textHeight)
	lastLine := a.topLine + textHeight - 1
	if lastLine >= doc.LineCount() {
		lastLine = doc.LineCount() - 1
	}
	a.session.SetViewport(buffer.NewRange(
		doc.LineStartOffset(a.topLine),
		doc.LineEndOffset(lastLine),
	))

	d := a.session.Decorations()
	merged := make([]decor.Instruction, 0, len(d.Markdown)+len(d.Wiki))
	merged = append(merged, d.Markdown...)
	merged = append(merged, d.Wiki...)

	matches := a.session.Search().Matches()
	current, hasCurrent := a.session.Search().Current()

	a.rows = a.rows[:0]
	caret := a.session.Caret()
	for line := a.topLine; line <= lastLine; line++ {
		y := line - a.topLine
		cells := a.renderer.RenderLine(doc, line, merged)
		a.rows = append(a.rows, cells)

		x := 0
		for _, c := range cells {
			style := c.Style
			for _, m := range matches {
				if c.Source >= m.From && c.Source < m.To {
					style = style.Reverse(true)
					if hasCurrent && m == current {
						style = style.Bold(true)
					}
					break
				}
			}
			a.screen.SetContent(x, y, c.Rune, nil, style)
			x += c.Width
			if x >= w {
				break
			}
		}

		if doc.LineAt(caret) == line {
			a.screen.ShowCursor(caretColumn(cells, caret), y)
		}
	}

	a.paintPopup(w, textHeight)
	a.paintBar(w, h-1)
	a.screen.Show()
}

// clampTopLine keeps the caret line on screen when the window resizes
// or the caret moves past the edges.
func (a *App) clampTopLine(height int) {
	doc := a.session.Document()
	caretLine := doc.LineAt(a.session.Caret())
	if caretLine < a.topLine {
		a.topLine = caretLine
	}
	if caretLine >= a.topLine+height {
		a.topLine = caretLine - height + 1
	}
	if a.topLine < 0 {
		a.topLine = 0
	}
}

// caretColumn maps the caret offset to a screen column on its line.
func caretColumn(cells []render.Cell, caret buffer.ByteOffset) int {
	x := 0
	for _, c := range cells {
		if c.Source >= caret {
			return x
		}
		x += c.Width
	}
	return x
}

func (a *App) paintPopup(w, textHeight int) {
	if len(a.popup) == 0 {
		return
	}
	doc := a.session.Document()
	caretLine := doc.LineAt(a.session.Caret())
	y := caretLine - a.topLine + 1

	base := tcell.StyleDefault.Reverse(true)
	for i, sg := range a.popup {
		if y+i >= textHeight {
			break
		}
		style := base
		if i == a.popupSel {
			style = style.Bold(true)
		}
		title := sg.Title
		if sg.Placeholder {
			title = "(type to filter notes)"
		}
		a.drawText(2, y+i, w, title, style)
	}
}

func (a *App) paintBar(w, y int) {
	style := tcell.StyleDefault.Reverse(true)
	var text string
	if a.mode == modeFind {
		st := a.session.Search().State()
		marker := map[int]string{0: ">", 1: " "}
		text = fmt.Sprintf("find%s %s  repl%s %s  [%d/%d]",
			marker[a.findField], string(a.findQuery),
			marker[1-a.findField], string(a.findRepl),
			st.CurrentMatch, st.MatchCount)
	} else {
		name := a.path
		if name == "" {
			name = "[no file]"
		}
		p := a.session.Document().OffsetToPoint(a.session.Caret())
		text = fmt.Sprintf("%s  %d:%d", name, p.Line+1, p.Column+1)
	}
	a.drawText(0, y, w, text, style)
	// Pad the rest of the bar.
	for x := runewidth.StringWidth(text); x < w; x++ {
		a.screen.SetContent(x, y, ' ', nil, style)
	}
}

func (a *App) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if x+rw > maxWidth {
			break
		}
		a.screen.SetContent(x, y, r, nil, style)
		x += rw
	}
}
