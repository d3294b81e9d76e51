package buffer

// Edit describes a single text replacement: the bytes in Range are
// replaced by NewText. Pure insertions use an empty range, deletions
// an empty NewText.
type Edit struct {
	Range   Range
	NewText string
}

// Insert creates an edit that inserts text at an offset.
func Insert(at ByteOffset, text string) Edit {
	return Edit{Range: Range{Start: at, End: at}, NewText: text}
}

// Delete creates an edit that removes the given range.
func Delete(start, end ByteOffset) Edit {
	return Edit{Range: NewRange(start, end)}
}

// Replacement creates an edit that substitutes the given range.
func Replacement(start, end ByteOffset, text string) Edit {
	return Edit{Range: NewRange(start, end), NewText: text}
}

// Delta returns how many bytes the edit adds (negative for removals).
func (e Edit) Delta() int {
	return len(e.NewText) - e.Range.Len()
}

// EditResult reports the outcome of an applied edit.
type EditResult struct {
	// OldRange is the replaced range in the pre-edit document.
	OldRange Range
	// NewRange is the range of the inserted text in the post-edit document.
	NewRange Range
	// OldText is the text that was replaced.
	OldText string
}
