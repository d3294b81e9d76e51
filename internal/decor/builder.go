package decor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/glintnotes/glint/internal/decor/widget"
	"github.com/glintnotes/glint/internal/engine/buffer"
	"github.com/glintnotes/glint/internal/syntax"
)

// Raw-line patterns for block markers. Block marker extents are
// derived from the line text rather than node boundaries because the
// tree does not expose marker-only spans at the needed granularity.
var (
	headingRe = regexp.MustCompile(`^ {0,3}(#{1,6}) `)
	quoteRe   = regexp.MustCompile(`^( {0,3}> ?)+`)
	bulletRe  = regexp.MustCompile(`^(\s*)([-*+]) `)
	orderedRe = regexp.MustCompile(`^(\s*)(\d+)([.)]) `)
	hruleRe   = regexp.MustCompile(`^ {0,3}(-{3,}|_{3,}|\*{3,})[ \t]*$`)
	fenceRe   = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

// Builder computes the Markdown decoration layer. It is a pure
// function of its inputs: recomputing on an unchanged (document,
// nodes, viewport, caret) quadruple yields an identical list.
type Builder struct{}

// NewBuilder creates a decoration builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build walks the nodes intersecting the viewport and emits the
// ordered decoration layer. Any node whose extent touches the line
// containing the caret is excluded entirely, so that line always shows
// raw syntax. Cost is proportional to the nodes and lines inside the
// viewport, not to document size.
func (b *Builder) Build(doc *buffer.Document, nodes []syntax.Node, viewport buffer.Range, caret buffer.ByteOffset) []Instruction {
	visible := syntax.Intersecting(nodes, viewport.Start, viewport.End)
	caretLine := doc.LineRange(doc.LineAt(caret))

	var out []Instruction
	var taken []buffer.Range
	var headings []syntax.Node

	for _, n := range visible {
		if touchesLine(n.From, n.To, caretLine) {
			continue
		}
		if n.Kind.IsHeading() {
			headings = append(headings, n)
			continue
		}
		ins := b.instructionsFor(doc, n, viewport)
		if len(ins) == 0 || conflicts(ins, taken) {
			continue
		}
		for _, in := range ins {
			if !in.Line {
				taken = append(taken, in.Range())
			}
		}
		out = append(out, ins...)
	}

	// Headings go last: their content mark spans the whole line, so it
	// is split around ranges claimed by inline constructs inside the
	// heading instead of colliding with them.
	for _, n := range headings {
		for _, in := range b.heading(doc, n) {
			if in.Op == OpMark {
				for _, seg := range splitMark(in, taken) {
					taken = append(taken, seg.Range())
					out = append(out, seg)
				}
				continue
			}
			if conflicts([]Instruction{in}, taken) {
				continue
			}
			taken = append(taken, in.Range())
			out = append(out, in)
		}
	}

	out = b.appendRules(doc, visible, viewport, caretLine, taken, out)

	sortInstructions(out)
	return out
}

// instructionsFor emits the decoration set for one node, or nil when
// the construct is degenerate and must be skipped.
func (b *Builder) instructionsFor(doc *buffer.Document, n syntax.Node, viewport buffer.Range) []Instruction {
	switch {
	case n.Kind == syntax.KindEmphasis:
		return b.inline(doc, n, 1, ClassEmphasis)
	case n.Kind == syntax.KindStrong:
		return b.inline(doc, n, 2, ClassStrong)
	case n.Kind == syntax.KindStrikethrough:
		return b.inline(doc, n, 2, ClassStrike)
	case n.Kind == syntax.KindCodeSpan:
		return b.inline(doc, n, backtickRun(doc, n.From), ClassInlineCode)
	case n.Kind == syntax.KindLink:
		return b.link(doc, n)
	case n.Kind == syntax.KindBlockquote:
		return b.blockquote(doc, n, viewport)
	case n.Kind == syntax.KindListItem:
		return b.listItem(doc, n, viewport)
	case n.Kind == syntax.KindFencedCode:
		return b.fencedCode(doc, n, viewport)
	}
	return nil
}

// heading hides the leading marker run plus one space and marks the
// remaining span with the level class. Setext headings have no marker
// to hide and only receive the mark.
func (b *Builder) heading(doc *buffer.Document, n syntax.Node) []Instruction {
	class := fmt.Sprintf("%s%d", ClassHeaderPrefix, n.Kind.HeadingLevel())
	line := doc.LineAt(n.From)
	lineStart := doc.LineStartOffset(line)

	markFrom := n.From
	var ins []Instruction
	if m := headingRe.FindStringSubmatchIndex(doc.LineText(line)); m != nil {
		ins = append(ins, Instruction{Op: OpHide, From: lineStart + m[2], To: lineStart + m[1]})
		markFrom = lineStart + m[1]
	}
	if markFrom >= n.To {
		return nil
	}
	return append(ins, Instruction{Op: OpMark, From: markFrom, To: n.To, Class: class})
}

// inline hides width delimiter characters on each side and marks the
// inner span. Degenerate constructs with an empty inner span are
// skipped.
func (b *Builder) inline(doc *buffer.Document, n syntax.Node, width int, class string) []Instruction {
	if width <= 0 {
		return nil
	}
	innerFrom := n.From + width
	innerTo := n.To - width
	if innerFrom >= innerTo {
		return nil
	}
	return []Instruction{
		{Op: OpHide, From: n.From, To: innerFrom},
		{Op: OpMark, From: innerFrom, To: innerTo, Class: class},
		{Op: OpHide, From: innerTo, To: n.To},
	}
}

// link hides the brackets and target, marking only the display text.
func (b *Builder) link(doc *buffer.Document, n syntax.Node) []Instruction {
	text := doc.TextRange(n.From, n.To)
	idx := strings.Index(text, "](")
	if idx <= 1 {
		// Missing target or empty display text.
		return nil
	}
	return []Instruction{
		{Op: OpHide, From: n.From, To: n.From + 1},
		{Op: OpMark, From: n.From + 1, To: n.From + idx, Class: ClassLink},
		{Op: OpHide, From: n.From + idx, To: n.To},
	}
}

// blockquote applies a line-level style and hides the quote-marker
// prefix on every visible line of the block. Lazy continuation lines
// without a marker keep the line style only.
func (b *Builder) blockquote(doc *buffer.Document, n syntax.Node, viewport buffer.Range) []Instruction {
	var ins []Instruction
	forEachLine(doc, n, viewport, func(line int, lr buffer.Range) {
		ins = append(ins, Instruction{Op: OpMark, From: lr.Start, To: lr.Start, Class: ClassQuote, Line: true})
		if m := quoteRe.FindStringIndex(doc.LineText(line)); m != nil {
			ins = append(ins, Instruction{Op: OpHide, From: lr.Start, To: lr.Start + m[1]})
		}
	})
	return ins
}

// listItem replaces the marker substring on the item's first line with
// a widget: task checkbox first, then unordered bullet, then ordered
// number. Content text stays untouched and editable.
func (b *Builder) listItem(doc *buffer.Document, n syntax.Node, viewport buffer.Range) []Instruction {
	line := doc.LineAt(n.From)
	lr := doc.LineRange(line)
	if !lr.Intersects(viewport) && !viewport.Contains(lr.Start) {
		return nil
	}
	text := doc.LineText(line)

	if start, end, checked, ok := widget.MatchTask(text); ok {
		anchor := lr.Start + start
		return []Instruction{{
			Op:     OpWidget,
			From:   anchor,
			To:     lr.Start + end,
			Widget: widget.Checkbox{Checked: checked, Anchor: anchor},
		}}
	}

	if m := bulletRe.FindStringSubmatchIndex(text); m != nil {
		from := lr.Start + m[4]
		return []Instruction{{
			Op:     OpWidget,
			From:   from,
			To:     from + 1,
			Widget: widget.ListMarker{Style: widget.StyleBullet},
		}}
	}

	if m := orderedRe.FindStringSubmatchIndex(text); m != nil {
		index, err := strconv.Atoi(text[m[4]:m[5]])
		if err != nil {
			return nil
		}
		return []Instruction{{
			Op:     OpWidget,
			From:   lr.Start + m[4],
			To:     lr.Start + m[7],
			Widget: widget.ListMarker{Style: widget.StyleOrdinal, Index: index},
		}}
	}

	return nil
}

// fencedCode marks every visible line of the block and additionally
// tags the fence lines. Nothing is hidden; the fences stay visible so
// the block reads as fenced while styled.
func (b *Builder) fencedCode(doc *buffer.Document, n syntax.Node, viewport buffer.Range) []Instruction {
	firstLine := doc.LineAt(n.From)
	lastLine := doc.LineAt(maxOffset(n.From, n.To-1))

	var ins []Instruction
	forEachLine(doc, n, viewport, func(line int, lr buffer.Range) {
		ins = append(ins, Instruction{Op: OpMark, From: lr.Start, To: lr.Start, Class: ClassCodeBlock, Line: true})
		if (line == firstLine || line == lastLine) && fenceRe.MatchString(doc.LineText(line)) {
			ins = append(ins, Instruction{Op: OpMark, From: lr.Start, To: lr.Start, Class: ClassCodeFence, Line: true})
		}
	})
	return ins
}

// appendRules scans visible lines for horizontal rules. Rules are
// matched from raw text because the tree does not carry offsets for
// thematic breaks; lines inside fenced code blocks are skipped, and a
// dash rule directly under text is left alone since that spelling is a
// setext heading underline.
func (b *Builder) appendRules(doc *buffer.Document, visible []syntax.Node, viewport buffer.Range, caretLine buffer.Range, taken []buffer.Range, out []Instruction) []Instruction {
	if viewport.End <= viewport.Start {
		return out
	}
	startLine := doc.LineAt(viewport.Start)
	endLine := doc.LineAt(maxOffset(viewport.Start, viewport.End-1))

	for line := startLine; line <= endLine; line++ {
		lr := doc.LineRange(line)
		if lr.IsEmpty() {
			continue
		}
		if touchesLine(lr.Start, lr.End, caretLine) {
			continue
		}
		if ruleShielded(visible, lr) {
			continue
		}
		m := hruleRe.FindStringSubmatch(doc.LineText(line))
		if m == nil {
			continue
		}
		if m[1][0] == '-' && line > 0 && strings.TrimSpace(doc.LineText(line-1)) != "" {
			continue
		}
		in := Instruction{Op: OpWidget, From: lr.Start, To: lr.End, Widget: widget.Rule{}}
		if conflicts([]Instruction{in}, taken) {
			continue
		}
		taken = append(taken, in.Range())
		out = append(out, in)
	}
	return out
}

// forEachLine visits the lines of a node's extent that intersect the
// viewport.
func forEachLine(doc *buffer.Document, n syntax.Node, viewport buffer.Range, fn func(line int, lr buffer.Range)) {
	from := maxOffset(n.From, viewport.Start)
	to := minOffset(n.To, viewport.End)
	if from >= to {
		return
	}
	startLine := doc.LineAt(from)
	endLine := doc.LineAt(to - 1)
	for line := startLine; line <= endLine; line++ {
		fn(line, doc.LineRange(line))
	}
}

// touchesLine reports whether [from, to] reaches the given line range,
// treating both as closed so empty lines still match.
func touchesLine(from, to buffer.ByteOffset, line buffer.Range) bool {
	return from <= line.End && to >= line.Start
}

// conflicts reports whether any range instruction intersects an
// already accepted range. Nested or self-overlapping constructs are
// dropped at node granularity so the layer invariant holds.
func conflicts(ins []Instruction, taken []buffer.Range) bool {
	for _, in := range ins {
		if in.Line {
			continue
		}
		r := in.Range()
		for _, t := range taken {
			if r.Intersects(t) {
				return true
			}
		}
	}
	return false
}

// splitMark cuts a mark instruction around the claimed ranges and
// returns the surviving non-empty segments.
func splitMark(in Instruction, taken []buffer.Range) []Instruction {
	segs := []buffer.Range{in.Range()}
	for _, t := range taken {
		var next []buffer.Range
		for _, s := range segs {
			if t.End <= s.Start || t.Start >= s.End {
				next = append(next, s)
				continue
			}
			if t.Start > s.Start {
				next = append(next, buffer.NewRange(s.Start, t.Start))
			}
			if t.End < s.End {
				next = append(next, buffer.NewRange(t.End, s.End))
			}
		}
		segs = next
	}
	out := make([]Instruction, 0, len(segs))
	for _, s := range segs {
		if s.End > s.Start {
			out = append(out, Instruction{Op: in.Op, From: s.Start, To: s.End, Class: in.Class})
		}
	}
	return out
}

// ruleShielded reports whether a line must not be scanned for a
// horizontal rule: it lies inside a fenced code block, or an inline
// construct spans part of it. The inline check keeps a degenerate
// delimiter run the tree recognized as emphasis (an empty `****` being
// typed) from being swallowed by a rule widget.
func ruleShielded(nodes []syntax.Node, lr buffer.Range) bool {
	for _, n := range nodes {
		switch n.Kind {
		case syntax.KindFencedCode:
			if n.From <= lr.Start && n.To >= lr.End {
				return true
			}
		case syntax.KindEmphasis, syntax.KindStrong, syntax.KindStrikethrough,
			syntax.KindCodeSpan, syntax.KindLink:
			if n.From < lr.End && n.To > lr.Start {
				return true
			}
		}
	}
	return false
}

// backtickRun counts the backtick run starting at the offset.
func backtickRun(doc *buffer.Document, from buffer.ByteOffset) int {
	text := doc.Text()
	n := 0
	for i := from; i < len(text) && text[i] == '`'; i++ {
		n++
	}
	return n
}

func minOffset(a, b buffer.ByteOffset) buffer.ByteOffset {
	if a < b {
		return a
	}
	return b
}

func maxOffset(a, b buffer.ByteOffset) buffer.ByteOffset {
	if a > b {
		return a
	}
	return b
}
