// Package wikilink implements the inline note-reference overlay. It
// scans visible lines for [[Title]] and [[Title|Display]] references,
// emits its own decoration layer independent of the Markdown layer,
// and resolves click positions to note titles for navigation.
//
// Matches are recomputed from raw line text on every pass and never
// persisted; find-or-create semantics live behind the Navigator
// callback in the note repository, not here.
package wikilink

import (
	"strings"

	"github.com/glintnotes/glint/internal/decor"
	"github.com/glintnotes/glint/internal/decor/widget"
	"github.com/glintnotes/glint/internal/engine/buffer"
)

// Style classes emitted by the overlay.
const (
	ClassLink    = "cm-wikilink"
	ClassBracket = "cm-wikilink-bracket"
)

// Match is one wiki-link occurrence on a line.
type Match struct {
	From    buffer.ByteOffset
	To      buffer.ByteOffset
	Title   string
	Display string
}

// ScanLine finds all wiki links in one raw line. base is the absolute
// offset of the line start. The first ]] terminates a reference;
// nested brackets are not supported, and empty or blank titles are
// skipped.
func ScanLine(text string, base buffer.ByteOffset) []Match {
	var matches []Match

	pos := 0
	for {
		open := strings.Index(text[pos:], "[[")
		if open < 0 {
			break
		}
		open += pos

		close := strings.Index(text[open+2:], "]]")
		if close < 0 {
			break
		}
		end := open + 2 + close + 2

		inner := text[open+2 : end-2]
		pos = end

		title, display := splitAlias(inner)
		if title == "" {
			continue
		}

		matches = append(matches, Match{
			From:    base + open,
			To:      base + end,
			Title:   title,
			Display: display,
		})
	}

	return matches
}

// splitAlias separates "Title|Display"; the display defaults to the
// title when no alias is given.
func splitAlias(inner string) (title, display string) {
	if pipe := strings.Index(inner, "|"); pipe >= 0 {
		title = strings.TrimSpace(inner[:pipe])
		display = strings.TrimSpace(inner[pipe+1:])
	} else {
		title = strings.TrimSpace(inner)
		display = title
	}
	if display == "" {
		display = title
	}
	return title, display
}

// Widget renders a collapsed wiki link. It shows the display text and
// carries the title for click navigation.
type Widget struct {
	Title   string
	Display string
}

// Kind returns the wiki-link widget kind.
func (w Widget) Kind() widget.Kind { return widget.KindWikiLink }

// ContentKey keys on title and display so edits to either re-render.
func (w Widget) ContentKey() string { return w.Title + "|" + w.Display }

// Navigator receives resolved titles. Implementations typically open
// the note with that title, creating it when missing.
type Navigator interface {
	OpenNote(title string) error
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(title string) error

// OpenNote calls the function.
func (f NavigatorFunc) OpenNote(title string) error { return f(title) }

// Overlay produces the wiki-link decoration layer.
type Overlay struct {
	nav Navigator
}

// NewOverlay creates an overlay reporting navigation to nav, which may
// be nil when navigation is not wired.
func NewOverlay(nav Navigator) *Overlay {
	return &Overlay{nav: nav}
}

// Build scans the visible lines and emits the overlay's decoration
// layer. Matches on the caret's line split into three marks so the raw
// syntax stays editable; matches elsewhere collapse into one widget.
func (o *Overlay) Build(doc *buffer.Document, viewport buffer.Range, caret buffer.ByteOffset) []decor.Instruction {
	if viewport.End <= viewport.Start {
		return nil
	}
	caretLine := doc.LineAt(caret)
	startLine := doc.LineAt(viewport.Start)
	endLine := doc.LineAt(viewport.End - 1)

	var out []decor.Instruction
	for line := startLine; line <= endLine; line++ {
		lineStart := doc.LineStartOffset(line)
		for _, m := range ScanLine(doc.LineText(line), lineStart) {
			if line == caretLine {
				out = append(out,
					decor.Instruction{Op: decor.OpMark, From: m.From, To: m.From + 2, Class: ClassBracket},
					decor.Instruction{Op: decor.OpMark, From: m.From + 2, To: m.To - 2, Class: ClassLink},
					decor.Instruction{Op: decor.OpMark, From: m.To - 2, To: m.To, Class: ClassBracket},
				)
				continue
			}
			out = append(out, decor.Instruction{
				Op:     decor.OpWidget,
				From:   m.From,
				To:     m.To,
				Widget: Widget{Title: m.Title, Display: m.Display},
			})
		}
	}
	return out
}

// Resolve maps a document offset to the title of the wiki link
// containing it, re-scanning the clicked line against current text.
func (o *Overlay) Resolve(doc *buffer.Document, offset buffer.ByteOffset) (string, bool) {
	line := doc.LineAt(offset)
	for _, m := range ScanLine(doc.LineText(line), doc.LineStartOffset(line)) {
		if offset >= m.From && offset < m.To {
			return m.Title, true
		}
	}
	return "", false
}

// Click resolves the offset and hands the title to the navigator.
// Clicks outside any link, or without a navigator, are no-ops.
func (o *Overlay) Click(doc *buffer.Document, offset buffer.ByteOffset) error {
	if o.nav == nil {
		return nil
	}
	title, ok := o.Resolve(doc, offset)
	if !ok {
		return nil
	}
	return o.nav.OpenNote(title)
}
