package buffer

import (
	"errors"
	"sort"
	"strings"
)

// Errors returned by document operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrEditsOverlap     = errors.New("edits overlap or are not in descending order")
)

// Document holds the note text and a line-start index.
// It is owned by one editor session and is not safe for concurrent
// mutation; the editing core is single-threaded by construction.
type Document struct {
	text       string
	lineStarts []ByteOffset
	revision   Revision
}

// NewDocument creates a document with the given initial content.
// Line endings are normalized to LF.
func NewDocument(text string) *Document {
	d := &Document{}
	d.setText(normalizeLineEndings(text))
	return d
}

// normalizeLineEndings converts CRLF and CR line endings to LF.
func normalizeLineEndings(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// setText replaces the content and rebuilds the line index.
func (d *Document) setText(text string) {
	d.text = text
	d.lineStarts = d.lineStarts[:0]
	d.lineStarts = append(d.lineStarts, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			d.lineStarts = append(d.lineStarts, i+1)
		}
	}
}

// Read operations

// Text returns the full document content.
func (d *Document) Text() string {
	return d.text
}

// TextRange returns the text in [start, end). Out-of-range bounds are
// clamped to the document.
func (d *Document) TextRange(start, end ByteOffset) string {
	start = d.Clamp(start)
	end = d.Clamp(end)
	if start >= end {
		return ""
	}
	return d.text[start:end]
}

// Len returns the total byte length of the document.
func (d *Document) Len() ByteOffset {
	return len(d.text)
}

// IsEmpty returns true if the document has no content.
func (d *Document) IsEmpty() bool {
	return len(d.text) == 0
}

// LineCount returns the number of lines. An empty document has one line.
func (d *Document) LineCount() int {
	return len(d.lineStarts)
}

// LineAt returns the 0-indexed line containing the offset.
// Offsets past the end map to the last line.
func (d *Document) LineAt(offset ByteOffset) int {
	offset = d.Clamp(offset)
	// First line start greater than offset, minus one.
	i := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > offset
	})
	return i - 1
}

// LineStartOffset returns the byte offset of the start of a line.
func (d *Document) LineStartOffset(line int) ByteOffset {
	if line < 0 {
		return 0
	}
	if line >= len(d.lineStarts) {
		return len(d.text)
	}
	return d.lineStarts[line]
}

// LineEndOffset returns the byte offset of the end of a line, before
// its newline.
func (d *Document) LineEndOffset(line int) ByteOffset {
	if line < 0 {
		return 0
	}
	if line >= len(d.lineStarts)-1 {
		return len(d.text)
	}
	return d.lineStarts[line+1] - 1
}

// LineRange returns the byte range of a line excluding its newline.
func (d *Document) LineRange(line int) Range {
	return Range{Start: d.LineStartOffset(line), End: d.LineEndOffset(line)}
}

// LineText returns the text of a line without its newline.
func (d *Document) LineText(line int) string {
	r := d.LineRange(line)
	return d.text[r.Start:r.End]
}

// Clamp constrains an offset into [0, Len()].
func (d *Document) Clamp(offset ByteOffset) ByteOffset {
	if offset < 0 {
		return 0
	}
	if offset > len(d.text) {
		return len(d.text)
	}
	return offset
}

// Coordinate conversion

// OffsetToPoint converts a byte offset to line/column.
func (d *Document) OffsetToPoint(offset ByteOffset) Point {
	offset = d.Clamp(offset)
	line := d.LineAt(offset)
	return Point{Line: line, Column: offset - d.lineStarts[line]}
}

// PointToOffset converts line/column to a byte offset.
// Columns past the line end map to the line end.
func (d *Document) PointToOffset(p Point) ByteOffset {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(d.lineStarts) {
		return len(d.text)
	}
	offset := d.lineStarts[p.Line] + p.Column
	end := d.LineEndOffset(p.Line)
	if offset > end {
		return end
	}
	if offset < d.lineStarts[p.Line] {
		return d.lineStarts[p.Line]
	}
	return offset
}

// Write operations

// Replace substitutes the text in [start, end) as one atomic edit.
func (d *Document) Replace(start, end ByteOffset, text string) (EditResult, error) {
	if start < 0 || start > end || end > len(d.text) {
		return EditResult{}, ErrRangeInvalid
	}

	old := d.text[start:end]
	text = normalizeLineEndings(text)
	d.setText(d.text[:start] + text + d.text[end:])
	d.revision++

	return EditResult{
		OldRange: Range{Start: start, End: end},
		NewRange: Range{Start: start, End: start + len(text)},
		OldText:  old,
	}, nil
}

// ApplyEdits applies multiple edits as one atomic transaction.
// Edits must be sorted descending by offset and must not overlap, so
// applying one cannot shift the ranges of those still pending. The
// document is untouched if validation fails.
func (d *Document) ApplyEdits(edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}

	for i := 1; i < len(edits); i++ {
		if edits[i].Range.End > edits[i-1].Range.Start {
			return ErrEditsOverlap
		}
	}
	for _, e := range edits {
		if e.Range.Start < 0 || e.Range.Start > e.Range.End || e.Range.End > len(d.text) {
			return ErrRangeInvalid
		}
	}

	text := d.text
	for _, e := range edits {
		text = text[:e.Range.Start] + normalizeLineEndings(e.NewText) + text[e.Range.End:]
	}
	d.setText(text)
	d.revision++
	return nil
}

// Revision returns the current document revision.
func (d *Document) Revision() Revision {
	return d.revision
}
