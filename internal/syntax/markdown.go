package syntax

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Markdown parses documents with goldmark and flattens the AST into
// offset nodes. goldmark never fails on malformed input: unterminated
// delimiters parse as plain text and therefore produce no node, which
// is exactly the degradation the decoration layer wants.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a Markdown provider with GFM strikethrough and
// task-list extensions enabled.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(goldmark.WithExtensions(
			extension.Strikethrough,
			extension.TaskList,
		)),
	}
}

// Parse returns all recognized nodes sorted ascending by From.
func (m *Markdown) Parse(source string) []Node {
	src := []byte(source)
	root := m.md.Parser().Parse(text.NewReader(src))

	var nodes []Node
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node, ok := convert(n, src); ok {
			nodes = append(nodes, node)
		}
		return ast.WalkContinue, nil
	})

	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].From != nodes[j].From {
			return nodes[i].From < nodes[j].From
		}
		return nodes[i].To > nodes[j].To
	})
	return nodes
}

// convert maps one AST node onto an offset node. Nodes whose extent
// cannot be established from the source are skipped.
func convert(n ast.Node, src []byte) (Node, bool) {
	switch v := n.(type) {
	case *ast.Heading:
		start, stop, ok := textExtent(n)
		if !ok {
			return Node{}, false
		}
		return Node{Kind: HeadingKind(v.Level), From: startOfLine(src, start), To: stop}, true

	case *ast.Emphasis:
		kind := KindEmphasis
		if v.Level == 2 {
			kind = KindStrong
		}
		return delimited(n, src, v.Level, kind, '*', '_')

	case *east.Strikethrough:
		return delimited(n, src, 2, KindStrikethrough, '~', '~')

	case *ast.CodeSpan:
		return codeSpan(n, src)

	case *ast.Link:
		return link(n, src)

	case *ast.Blockquote:
		start, stop, ok := blockExtent(n)
		if !ok {
			return Node{}, false
		}
		return Node{Kind: KindBlockquote, From: startOfLine(src, start), To: stop}, true

	case *ast.ListItem:
		start, stop, ok := blockExtent(n)
		if !ok {
			return Node{}, false
		}
		return Node{Kind: KindListItem, From: startOfLine(src, start), To: stop}, true

	case *ast.FencedCodeBlock:
		return fencedCode(v, src)
	}

	return Node{}, false
}

// delimited expands an inline node's text extent by width delimiter
// characters on each side, verifying the source actually carries them.
func delimited(n ast.Node, src []byte, width int, kind NodeKind, delims ...byte) (Node, bool) {
	start, stop, ok := textExtent(n)
	if !ok {
		return Node{}, false
	}
	if start-width < 0 || stop+width > len(src) {
		return Node{}, false
	}
	for i := start - width; i < start; i++ {
		if !isOneOf(src[i], delims) {
			return Node{}, false
		}
	}
	for i := stop; i < stop+width; i++ {
		if !isOneOf(src[i], delims) {
			return Node{}, false
		}
	}
	return Node{Kind: kind, From: start - width, To: stop + width}, true
}

// codeSpan expands a code span's text extent by its backtick run.
func codeSpan(n ast.Node, src []byte) (Node, bool) {
	start, stop, ok := textExtent(n)
	if !ok {
		return Node{}, false
	}

	ticks := 0
	for i := start - 1; i >= 0 && src[i] == '`'; i-- {
		ticks++
	}
	if ticks == 0 {
		return Node{}, false
	}
	for i := stop; i < stop+ticks; i++ {
		if i >= len(src) || src[i] != '`' {
			return Node{}, false
		}
	}
	return Node{Kind: KindCodeSpan, From: start - ticks, To: stop + ticks}, true
}

// link locates the full [text](target) span around the display text.
// Reference-style and shortcut links do not match and are skipped.
func link(n ast.Node, src []byte) (Node, bool) {
	start, stop, ok := textExtent(n)
	if !ok {
		return Node{}, false
	}
	if start < 1 || src[start-1] != '[' {
		return Node{}, false
	}
	if stop+1 >= len(src) || src[stop] != ']' || src[stop+1] != '(' {
		return Node{}, false
	}
	close := bytes.IndexByte(src[stop+2:], ')')
	if close < 0 {
		return Node{}, false
	}
	// Target must stay on one line.
	if nl := bytes.IndexByte(src[stop+2:stop+2+close], '\n'); nl >= 0 {
		return Node{}, false
	}
	return Node{Kind: KindLink, From: start - 1, To: stop + 2 + close + 1}, true
}

// fencedCode returns the extent of a fenced block including its fence
// lines. The opening fence is found via the info segment or the line
// above the first content line; the closing fence, when present, is
// the line after the last content line.
func fencedCode(v *ast.FencedCodeBlock, src []byte) (Node, bool) {
	var anchor int
	switch {
	case v.Info != nil && v.Info.Segment.Start > 0:
		anchor = v.Info.Segment.Start
	case v.Lines().Len() > 0:
		first := v.Lines().At(0)
		ls := startOfLine(src, first.Start)
		if ls == 0 {
			return Node{}, false
		}
		anchor = ls - 1 // newline of the fence line above
	default:
		return Node{}, false
	}
	from := startOfLine(src, anchor)

	to := endOfLine(src, anchor)
	if lines := v.Lines(); lines.Len() > 0 {
		last := lines.At(lines.Len() - 1)
		to = last.Stop
		// Include the closing fence line when one follows.
		if last.Stop < len(src) {
			next := last.Stop
			if src[next-1] != '\n' {
				next = endOfLine(src, next)
			}
			if next < len(src) {
				lineEnd := endOfLine(src, next)
				if isFenceLine(src[next:lineEnd]) {
					to = lineEnd
				}
			}
		}
	} else if lineEnd := endOfLine(src, anchor); lineEnd+1 < len(src) {
		next := lineEnd + 1
		closeEnd := endOfLine(src, next)
		if isFenceLine(src[next:closeEnd]) {
			to = closeEnd
		}
	}

	return Node{Kind: KindFencedCode, From: from, To: to}, true
}

// isFenceLine reports whether a line is a ``` or ~~~ fence.
func isFenceLine(line []byte) bool {
	trimmed := bytes.TrimLeft(line, " ")
	if len(trimmed) < 3 {
		return false
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return false
	}
	for _, b := range trimmed {
		if b != c {
			return false
		}
	}
	return true
}

// textExtent returns the extent covered by all descendant text
// segments of a node.
func textExtent(n ast.Node) (int, int, bool) {
	start, stop := -1, -1
	var walk func(ast.Node)
	walk = func(c ast.Node) {
		for child := c.FirstChild(); child != nil; child = child.NextSibling() {
			if t, ok := child.(*ast.Text); ok {
				seg := t.Segment
				if seg.Stop > seg.Start {
					if start == -1 || seg.Start < start {
						start = seg.Start
					}
					if seg.Stop > stop {
						stop = seg.Stop
					}
				}
			}
			walk(child)
		}
	}
	walk(n)
	if start < 0 || stop <= start {
		return 0, 0, false
	}
	return start, stop, true
}

// blockExtent returns the extent covered by a block node's content
// lines and descendant text segments.
func blockExtent(n ast.Node) (int, int, bool) {
	start, stop := -1, -1
	add := func(s, e int) {
		if e <= s {
			return
		}
		if start == -1 || s < start {
			start = s
		}
		if e > stop {
			stop = e
		}
	}

	var walk func(ast.Node)
	walk = func(c ast.Node) {
		if c.Type() == ast.TypeBlock {
			lines := c.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				add(seg.Start, seg.Stop)
			}
		}
		if t, ok := c.(*ast.Text); ok {
			add(t.Segment.Start, t.Segment.Stop)
		}
		for child := c.FirstChild(); child != nil; child = child.NextSibling() {
			walk(child)
		}
	}
	walk(n)

	if start < 0 {
		return 0, 0, false
	}
	return start, stop, true
}

// startOfLine returns the offset of the first byte of the line
// containing offset.
func startOfLine(src []byte, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	for offset > 0 && src[offset-1] != '\n' {
		offset--
	}
	return offset
}

// endOfLine returns the offset just past the last content byte of the
// line containing offset, excluding the newline.
func endOfLine(src []byte, offset int) int {
	for offset < len(src) && src[offset] != '\n' {
		offset++
	}
	return offset
}

func isOneOf(b byte, set []byte) bool {
	for _, c := range set {
		if b == c {
			return true
		}
	}
	return false
}

// Ensure Markdown implements Provider.
var _ Provider = (*Markdown)(nil)
