// Package decor turns (document, syntax nodes, viewport, caret) into
// an ordered list of decoration instructions: hidden ranges, styled
// ranges, and widget replacements. Instructions never alter the
// underlying text; the host's rendering layer applies them.
package decor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/glintnotes/glint/internal/decor/widget"
	"github.com/glintnotes/glint/internal/engine/buffer"
)

// Op is the decoration operation.
type Op uint8

const (
	// OpHide removes a range from display without touching the text.
	OpHide Op = iota

	// OpMark applies a style class to a range, or to a whole line when
	// the instruction is line-level.
	OpMark

	// OpWidget substitutes a widget for the range.
	OpWidget
)

// String returns the string representation of the operation.
func (o Op) String() string {
	switch o {
	case OpHide:
		return "hide"
	case OpMark:
		return "mark"
	case OpWidget:
		return "widget"
	default:
		return "unknown"
	}
}

// Style classes emitted by the builder.
const (
	ClassHeaderPrefix = "cm-header" // cm-header1 .. cm-header6
	ClassStrong       = "cm-strong"
	ClassEmphasis     = "cm-em"
	ClassStrike       = "cm-strike"
	ClassInlineCode   = "cm-inline-code"
	ClassLink         = "cm-link"
	ClassQuote        = "cm-quote"
	ClassCodeBlock    = "cm-codeblock"
	ClassCodeFence    = "cm-codefence"
)

// Instruction is one visual annotation over a byte range.
//
// Line-level marks anchor at the line start with an empty range and
// style the whole line. Range instructions carry a non-empty range and
// never overlap another range instruction within the same layer.
type Instruction struct {
	Op     Op
	From   buffer.ByteOffset
	To     buffer.ByteOffset
	Class  string        // style class for OpMark
	Line   bool          // line-level mark anchored at a line start
	Widget widget.Widget // payload for OpWidget
}

// String returns a human-readable representation of the instruction.
func (in Instruction) String() string {
	if in.Line {
		return fmt.Sprintf("mark-line@%d(%s)", in.From, in.Class)
	}
	switch in.Op {
	case OpMark:
		return fmt.Sprintf("mark[%d,%d)(%s)", in.From, in.To, in.Class)
	case OpWidget:
		return fmt.Sprintf("widget[%d,%d)(%s)", in.From, in.To, in.Widget.Kind())
	default:
		return fmt.Sprintf("hide[%d,%d)", in.From, in.To)
	}
}

// Range returns the instruction's byte range.
func (in Instruction) Range() buffer.Range {
	return buffer.Range{Start: in.From, End: in.To}
}

// sortInstructions orders a layer: ascending by From; at equal From,
// line-level marks precede range instructions; remaining ties order by
// To, then class for determinism.
func sortInstructions(ins []Instruction) {
	sort.SliceStable(ins, func(i, j int) bool {
		a, b := ins[i], ins[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.Line != b.Line {
			return a.Line
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Class < b.Class
	})
}

// Validation errors.
var (
	ErrUnsorted      = errors.New("instructions not sorted")
	ErrOverlap       = errors.New("range instructions overlap")
	ErrEmptyRange    = errors.New("range instruction with empty range")
	ErrLineLevelSpan = errors.New("line-level instruction with non-empty range")
)

// Validate checks the layer ordering invariant: ascending From with
// line-level ties first, non-empty non-overlapping ranges for range
// instructions, empty ranges for line-level marks.
func Validate(ins []Instruction) error {
	lastEnd := -1
	for i, in := range ins {
		if i > 0 {
			prev := ins[i-1]
			if in.From < prev.From {
				return fmt.Errorf("%w: %s after %s", ErrUnsorted, in, prev)
			}
			if in.From == prev.From && in.Line && !prev.Line {
				return fmt.Errorf("%w: line-level %s after range %s", ErrUnsorted, in, prev)
			}
		}
		if in.Line {
			if in.To != in.From {
				return fmt.Errorf("%w: %s", ErrLineLevelSpan, in)
			}
			continue
		}
		if in.To <= in.From {
			return fmt.Errorf("%w: %s", ErrEmptyRange, in)
		}
		if in.From < lastEnd {
			return fmt.Errorf("%w: %s", ErrOverlap, in)
		}
		lastEnd = in.To
	}
	return nil
}
