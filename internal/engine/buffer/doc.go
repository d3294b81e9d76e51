// Package buffer provides the document text store for the editing core.
//
// A Document holds the full note text addressed by absolute byte
// offsets and maintains a line-start index for offset/point
// conversion. Documents are owned by a single editor session and are
// accessed from one goroutine; the decoration, wiki-link, completion,
// and search components read through this package and never mutate it
// themselves.
//
// Two mutation paths exist: Replace for a single atomic edit (checkbox
// toggle, replace-current) and ApplyEdits for an atomic multi-range
// edit (replace-all). Multi-range edits must be sorted descending by
// offset and non-overlapping so earlier replacements cannot shift the
// offsets of later ones inside the same transaction.
package buffer
