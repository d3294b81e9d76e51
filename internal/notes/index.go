// Package notes models the external note-title index the completion
// provider reads. The index itself is maintained by the host's note
// listing service; this package only holds the read-only snapshot
// shape and the refresh entry point called on note-list changes.
package notes

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Note is one entry in the title index.
type Note struct {
	ID        uuid.UUID
	Title     string
	UpdatedAt time.Time
}

// Snapshot is an immutable view of the index, sorted by UpdatedAt
// descending so recent notes rank first.
type Snapshot struct {
	notes []Note
}

// Notes returns the snapshot entries. Callers must not mutate the
// returned slice.
func (s *Snapshot) Notes() []Note {
	if s == nil {
		return nil
	}
	return s.notes
}

// Len returns the number of indexed notes.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.notes)
}

// Index is the mutable holder. The host replaces its content whenever
// the note list changes; readers take snapshots.
type Index struct {
	current *Snapshot
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{current: &Snapshot{}}
}

// Replace swaps in a new note set. The input is copied and sorted by
// UpdatedAt descending, most recent first; ties order by title for
// determinism.
func (i *Index) Replace(ns []Note) {
	copied := make([]Note, len(ns))
	copy(copied, ns)
	sort.SliceStable(copied, func(a, b int) bool {
		if !copied[a].UpdatedAt.Equal(copied[b].UpdatedAt) {
			return copied[a].UpdatedAt.After(copied[b].UpdatedAt)
		}
		return copied[a].Title < copied[b].Title
	})
	i.current = &Snapshot{notes: copied}
}

// Snapshot returns the current read-only view.
func (i *Index) Snapshot() *Snapshot {
	return i.current
}
