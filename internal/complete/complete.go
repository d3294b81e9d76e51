// Package complete suggests note titles while the user types an open
// wiki-link reference. It ranks the external title index by
// case-insensitive substring containment, boosting earlier matches and
// more recently updated notes, and synthesizes the edit that accepts a
// suggestion.
package complete

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/glintnotes/glint/internal/engine/buffer"
	"github.com/glintnotes/glint/internal/notes"
)

// DefaultLimit caps the suggestion list when no limit is configured.
const DefaultLimit = 10

// Suggestion is one completion candidate.
type Suggestion struct {
	Title  string
	NoteID uuid.UUID

	// Placeholder marks the single non-actionable entry shown for an
	// empty query instead of dumping the whole note set.
	Placeholder bool
}

// Context describes an active completion site: the partial query typed
// since the opening brackets and its start offset.
type Context struct {
	Query string
	Start buffer.ByteOffset
}

// Trigger reports whether the caret sits inside an unterminated [[ on
// its line, with no closing bracket typed yet, and extracts the
// partial query.
func Trigger(doc *buffer.Document, caret buffer.ByteOffset) (Context, bool) {
	caret = doc.Clamp(caret)
	line := doc.LineAt(caret)
	lineStart := doc.LineStartOffset(line)
	before := doc.TextRange(lineStart, caret)

	open := strings.LastIndex(before, "[[")
	if open < 0 {
		return Context{}, false
	}
	partial := before[open+2:]
	if strings.Contains(partial, "]") {
		return Context{}, false
	}
	return Context{
		Query: partial,
		Start: lineStart + open + 2,
	}, true
}

// Provider ranks note titles against completion queries.
type Provider struct {
	index *notes.Index
	limit int
}

// NewProvider creates a provider over the title index. A non-positive
// limit falls back to DefaultLimit.
func NewProvider(index *notes.Index, limit int) *Provider {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Provider{index: index, limit: limit}
}

// Suggest returns ranked candidates for the query. The empty query
// yields one placeholder entry. Candidates must contain the query
// case-insensitively; earlier containment ranks higher, ties order by
// recency (the snapshot is already recency-sorted), so a stable sort
// on position alone suffices.
func (p *Provider) Suggest(query string) []Suggestion {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Suggestion{{Placeholder: true}}
	}

	needle := strings.ToLower(query)
	snap := p.index.Snapshot()

	type scored struct {
		s   Suggestion
		pos int
	}
	var results []scored
	for _, n := range snap.Notes() {
		pos := strings.Index(strings.ToLower(n.Title), needle)
		if pos < 0 {
			continue
		}
		results = append(results, scored{
			s:   Suggestion{Title: n.Title, NoteID: n.ID},
			pos: pos,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].pos < results[j].pos
	})

	if len(results) > p.limit {
		results = results[:p.limit]
	}
	out := make([]Suggestion, len(results))
	for i, r := range results {
		out[i] = r.s
	}
	return out
}

// Accept synthesizes the edit applying a suggestion: the partial query
// between the context start and the caret is replaced by the full
// title plus closing brackets. The returned offset is the caret
// position after the edit, just past the inserted text. Placeholder
// suggestions produce no edit.
func Accept(ctx Context, caret buffer.ByteOffset, s Suggestion) (buffer.Edit, buffer.ByteOffset, bool) {
	if s.Placeholder || s.Title == "" {
		return buffer.Edit{}, 0, false
	}
	text := s.Title + "]]"
	edit := buffer.Replacement(ctx.Start, caret, text)
	return edit, ctx.Start + len(text), true
}
