// Package syntax defines the flat node model the decoration builder
// consumes and a Markdown provider that produces it from goldmark's AST.
package syntax

import (
	"fmt"
	"sort"
)

// NodeKind represents the Markdown construct a node covers.
type NodeKind uint8

const (
	KindNone NodeKind = iota

	// Headings, one kind per ATX level.
	KindHeading1
	KindHeading2
	KindHeading3
	KindHeading4
	KindHeading5
	KindHeading6

	// Inline constructs.
	KindEmphasis
	KindStrong
	KindStrikethrough
	KindCodeSpan
	KindLink

	// Block constructs. Marker extents within these are derived from
	// raw line text by the builder, not from the node range.
	KindBlockquote
	KindListItem
	KindFencedCode
)

// String returns the string representation of the node kind.
func (k NodeKind) String() string {
	switch k {
	case KindHeading1:
		return "heading1"
	case KindHeading2:
		return "heading2"
	case KindHeading3:
		return "heading3"
	case KindHeading4:
		return "heading4"
	case KindHeading5:
		return "heading5"
	case KindHeading6:
		return "heading6"
	case KindEmphasis:
		return "emphasis"
	case KindStrong:
		return "strong"
	case KindStrikethrough:
		return "strikethrough"
	case KindCodeSpan:
		return "code-span"
	case KindLink:
		return "link"
	case KindBlockquote:
		return "blockquote"
	case KindListItem:
		return "list-item"
	case KindFencedCode:
		return "fenced-code"
	default:
		return "none"
	}
}

// IsHeading returns true for the heading kinds.
func (k NodeKind) IsHeading() bool {
	return k >= KindHeading1 && k <= KindHeading6
}

// HeadingLevel returns the 1-based heading level, or 0 for non-headings.
func (k NodeKind) HeadingLevel() int {
	if !k.IsHeading() {
		return 0
	}
	return int(k-KindHeading1) + 1
}

// HeadingKind returns the node kind for a 1-6 heading level.
func HeadingKind(level int) NodeKind {
	if level < 1 || level > 6 {
		return KindNone
	}
	return KindHeading1 + NodeKind(level-1)
}

// Node is one parsed construct with its absolute byte extent.
// From/To cover the full construct including its delimiters; for block
// kinds they cover the block's content lines. Nodes are immutable for
// the duration of one recompute pass.
type Node struct {
	Kind NodeKind
	From int
	To   int
}

// String returns a human-readable representation of the node.
func (n Node) String() string {
	return fmt.Sprintf("%s[%d,%d)", n.Kind, n.From, n.To)
}

// Provider supplies parsed nodes for a document.
type Provider interface {
	// Parse returns all nodes in the document, sorted ascending by From.
	Parse(source string) []Node
}

// Intersecting returns the nodes whose extent intersects [from, to).
// The input must be sorted ascending by From.
func Intersecting(nodes []Node, from, to int) []Node {
	if to <= from {
		return nil
	}
	// First node that could still intersect: binary search is not
	// directly applicable because extents nest, so cut only the tail.
	end := sort.Search(len(nodes), func(i int) bool {
		return nodes[i].From >= to
	})

	var out []Node
	for _, n := range nodes[:end] {
		if n.To > from {
			out = append(out, n)
		}
	}
	return out
}
