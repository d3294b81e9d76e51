package buffer

import "fmt"

// Range represents a half-open byte range [Start, End) in the document.
type Range struct {
	Start ByteOffset
	End   ByteOffset
}

// NewRange creates a range, swapping the bounds if they are reversed.
func NewRange(start, end ByteOffset) Range {
	if end < start {
		start, end = end, start
	}
	return Range{Start: start, End: end}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Len returns the length of the range in bytes.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty returns true if the range covers no bytes.
func (r Range) IsEmpty() bool {
	return r.Start >= r.End
}

// Contains returns true if the offset falls inside the range.
func (r Range) Contains(offset ByteOffset) bool {
	return offset >= r.Start && offset < r.End
}

// Intersects returns true if the two ranges share at least one byte,
// or if one of them is an empty range positioned inside the other.
func (r Range) Intersects(other Range) bool {
	return r.Start < other.End && other.Start < r.End
}

// Within returns true if r lies entirely inside other.
func (r Range) Within(other Range) bool {
	return r.Start >= other.Start && r.End <= other.End
}
