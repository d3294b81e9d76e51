// Package render turns a document line plus its decoration
// instructions into styled terminal cells: hidden ranges are skipped,
// marks pull styles from the theme, and widgets replace their source
// range with glyphs. It also maps screen columns back to byte offsets
// so the host can route mouse clicks.
package render

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/glintnotes/glint/internal/decor"
	"github.com/glintnotes/glint/internal/decor/widget"
	"github.com/glintnotes/glint/internal/engine/buffer"
	"github.com/glintnotes/glint/internal/wikilink"
)

// ruleWidth is how many box-drawing runes a horizontal rule collapses to.
const ruleWidth = 3

// Cell is one terminal cell of a rendered line. Source is the byte
// offset of the document text the cell came from; widget glyph cells
// carry the widget's anchor so clicks resolve to it.
type Cell struct {
	Rune   rune
	Width  int
	Style  tcell.Style
	Source buffer.ByteOffset
}

// LineRenderer renders document lines against a theme.
type LineRenderer struct {
	theme Theme
}

// NewLineRenderer creates a renderer with the given theme.
func NewLineRenderer(theme Theme) *LineRenderer {
	return &LineRenderer{theme: theme}
}

// RenderLine produces the cells for one line. The instruction slice is
// the merged decoration output; instructions outside the line are
// ignored, so callers can pass whole layers.
func (r *LineRenderer) RenderLine(doc *buffer.Document, line int, ins []decor.Instruction) []Cell {
	lr := doc.LineRange(line)
	text := doc.LineText(line)

	base := r.theme.Default()
	var hides []decor.Instruction
	var marks []decor.Instruction
	var widgets []decor.Instruction
	for _, in := range ins {
		if in.Line {
			if in.From >= lr.Start && in.From <= lr.End {
				base = r.theme.Style(in.Class)
			}
			continue
		}
		if in.To <= lr.Start || in.From >= lr.End {
			continue
		}
		switch in.Op {
		case decor.OpHide:
			hides = append(hides, in)
		case decor.OpMark:
			marks = append(marks, in)
		case decor.OpWidget:
			widgets = append(widgets, in)
		}
	}

	var cells []Cell
	skipUntil := lr.Start

	g := uniseg.NewGraphemes(text)
	for g.Next() {
		start, _ := g.Positions()
		off := lr.Start + buffer.ByteOffset(start)
		if off < skipUntil {
			continue
		}

		if w, ok := widgetAt(widgets, off); ok {
			cells = append(cells, r.widgetCells(w)...)
			skipUntil = w.To
			continue
		}
		if hidden(hides, off) {
			continue
		}

		style := base
		if m, ok := markAt(marks, off); ok {
			style = r.theme.Style(m.Class)
		}
		for _, rn := range g.Runes() {
			cells = append(cells, Cell{
				Rune:   rn,
				Width:  runewidth.RuneWidth(rn),
				Style:  style,
				Source: off,
			})
		}
	}
	return cells
}

// widgetAt returns the widget instruction starting at the offset.
func widgetAt(widgets []decor.Instruction, off buffer.ByteOffset) (decor.Instruction, bool) {
	for _, w := range widgets {
		if w.From == off {
			return w, true
		}
	}
	return decor.Instruction{}, false
}

func hidden(hides []decor.Instruction, off buffer.ByteOffset) bool {
	for _, h := range hides {
		if off >= h.From && off < h.To {
			return true
		}
	}
	return false
}

// markAt returns the innermost mark covering the offset. Range marks
// within a layer never overlap, so across merged layers the one with
// the greatest From is the innermost.
func markAt(marks []decor.Instruction, off buffer.ByteOffset) (decor.Instruction, bool) {
	found := false
	var best decor.Instruction
	for _, m := range marks {
		if off < m.From || off >= m.To {
			continue
		}
		if !found || m.From > best.From {
			best = m
			found = true
		}
	}
	return best, found
}

// widgetCells renders a widget's glyphs, anchored at the widget start.
func (r *LineRenderer) widgetCells(in decor.Instruction) []Cell {
	var text string
	style := r.theme.Default()

	switch w := in.Widget.(type) {
	case widget.Checkbox:
		if w.Checked {
			text = "☑ "
		} else {
			text = "☐ "
		}
	case widget.ListMarker:
		if w.Style == widget.StyleOrdinal {
			text = strconv.Itoa(w.Index) + ". "
		} else {
			text = "• "
		}
	case widget.Rule:
		text = strings.Repeat("─", ruleWidth)
	case wikilink.Widget:
		text = w.Display
		style = r.theme.Style(wikilink.ClassLink)
	default:
		return nil
	}

	cells := make([]Cell, 0, len(text))
	for _, rn := range text {
		cells = append(cells, Cell{
			Rune:   rn,
			Width:  runewidth.RuneWidth(rn),
			Style:  style,
			Source: in.From,
		})
	}
	return cells
}

// ColumnToOffset maps a screen column on a rendered line back to the
// source byte offset, for mouse click routing. Columns past the end of
// the line report false.
func ColumnToOffset(cells []Cell, col int) (buffer.ByteOffset, bool) {
	x := 0
	for _, c := range cells {
		next := x + c.Width
		if col >= x && col < next {
			return c.Source, true
		}
		x = next
	}
	return 0, false
}

// Width returns the total display width of a rendered line.
func Width(cells []Cell) int {
	w := 0
	for _, c := range cells {
		w += c.Width
	}
	return w
}
