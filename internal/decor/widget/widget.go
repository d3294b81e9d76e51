// Package widget provides the interactive visual substitutes the
// decoration builder can emit in place of source text: task checkboxes,
// list markers, and horizontal rules.
//
// Widgets carry a (Kind, ContentKey) identity so a rendering layer can
// decide between reusing and replacing an already rendered element.
// They never hold document text; the checkbox re-derives its marker
// from the current document at activation time.
package widget

import (
	"regexp"
	"strconv"

	"github.com/glintnotes/glint/internal/engine/buffer"
)

// Kind identifies the widget variety.
type Kind uint8

const (
	KindCheckbox Kind = iota
	KindListMarker
	KindRule
	KindWikiLink
)

// String returns the string representation of the widget kind.
func (k Kind) String() string {
	switch k {
	case KindCheckbox:
		return "checkbox"
	case KindListMarker:
		return "list-marker"
	case KindRule:
		return "rule"
	case KindWikiLink:
		return "wiki-link"
	default:
		return "unknown"
	}
}

// Widget is a non-text visual element substituted for source characters.
type Widget interface {
	// Kind returns the widget variety.
	Kind() Kind

	// ContentKey returns a stable key describing the rendered content.
	// Two widgets with equal kind and key render identically, so the
	// host may reuse the existing element.
	ContentKey() string
}

// taskRe matches a task-list marker at the start of a line:
// optional indent, bullet, space, bracketed state, trailing space.
var taskRe = regexp.MustCompile(`^(\s*)([-*+]) \[([ xX])\] `)

// MatchTask locates the task marker on a raw line. It returns the
// byte extent of the marker substring (bullet through closing bracket,
// excluding the trailing space), the checked state, and whether the
// line carries a task marker at all.
func MatchTask(line string) (start, end int, checked bool, ok bool) {
	m := taskRe.FindStringSubmatchIndex(line)
	if m == nil {
		return 0, 0, false, false
	}
	// Marker runs from the bullet to the closing bracket.
	start = m[4]           // bullet start
	end = m[7] + 1         // just past the closing bracket
	state := line[m[6]:m[7]]
	return start, end, state != " ", true
}

// Checkbox replaces a task-list marker. Anchor is the marker's start
// offset captured at render time; it is only a hint for locating the
// line and is never trusted as an edit target.
type Checkbox struct {
	Checked bool
	Anchor  buffer.ByteOffset
}

// Kind returns KindCheckbox.
func (c Checkbox) Kind() Kind { return KindCheckbox }

// ContentKey keys on the checked state.
func (c Checkbox) ContentKey() string { return strconv.FormatBool(c.Checked) }

// Toggle derives the single-character edit flipping the checkbox
// state. The task marker is re-located on the line currently at the
// anchor; if intervening edits removed the pattern, ok is false and no
// edit is produced.
func (c Checkbox) Toggle(doc *buffer.Document) (buffer.Edit, bool) {
	line := doc.LineAt(c.Anchor)
	text := doc.LineText(line)

	m := taskRe.FindStringSubmatchIndex(text)
	if m == nil {
		return buffer.Edit{}, false
	}

	boxOffset := doc.LineStartOffset(line) + m[6]
	next := "x"
	if text[m[6]:m[7]] != " " {
		next = " "
	}
	return buffer.Replacement(boxOffset, boxOffset+1, next), true
}

// MarkerStyle distinguishes unordered bullets from ordered markers.
type MarkerStyle uint8

const (
	StyleBullet MarkerStyle = iota
	StyleOrdinal
)

// ListMarker replaces a list marker substring. Ordinal markers keep
// the integer found in the source; there is no renumbering.
type ListMarker struct {
	Style MarkerStyle
	Index int
}

// Kind returns KindListMarker.
func (l ListMarker) Kind() Kind { return KindListMarker }

// ContentKey keys on the marker appearance.
func (l ListMarker) ContentKey() string {
	if l.Style == StyleBullet {
		return "bullet"
	}
	return strconv.Itoa(l.Index) + "."
}

// Rule replaces a horizontal-rule line. It is stateless; all rules are
// interchangeable.
type Rule struct{}

// Kind returns KindRule.
func (Rule) Kind() Kind { return KindRule }

// ContentKey is empty; equality is by kind alone.
func (Rule) ContentKey() string { return "" }
