// Package search implements the in-buffer find/replace engine: a
// literal full-document scan with circular match navigation and
// single or whole-document replacement.
package search

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/glintnotes/glint/internal/engine/buffer"
)

// ErrInvalidQuery reports a query that cannot be compiled.
var ErrInvalidQuery = errors.New("invalid search query")

// Match is one occurrence of the query in the document.
type Match struct {
	From buffer.ByteOffset
	To   buffer.ByteOffset
}

// Options configures how the query is matched.
type Options struct {
	// CaseSensitive makes matching case-sensitive.
	CaseSensitive bool

	// WholeWord wraps the query in word boundaries.
	WholeWord bool
}

// State is a snapshot of the engine for the find bar: how many matches
// exist and which one is selected (1-based, 0 = none).
type State struct {
	Active       bool
	Query        string
	MatchCount   int
	CurrentMatch int
}

// Engine runs literal search over a single document. It is Idle until
// a non-empty query is set and returns to Idle on Close. Matches are
// ordered by position; current is 1-based with 0 meaning no selection.
type Engine struct {
	doc  *buffer.Document
	re   *regexp.Regexp
	opts Options

	query   string
	matches []Match
	current int
}

// NewEngine creates an idle engine over the document.
func NewEngine(doc *buffer.Document) *Engine {
	return &Engine{doc: doc}
}

// compileQuery turns a literal query into a regex pattern.
func compileQuery(query string, opts Options) (*regexp.Regexp, error) {
	pattern := regexp.QuoteMeta(query)
	if opts.WholeWord {
		pattern = `\b` + pattern + `\b`
	}
	if !opts.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return re, nil
}

// SetQuery scans the whole document for the literal query and resets
// the selection. An empty query returns the engine to Idle.
func (e *Engine) SetQuery(query string, opts Options) error {
	if query == "" {
		e.Close()
		return nil
	}

	re, err := compileQuery(query, opts)
	if err != nil {
		return err
	}

	e.query = query
	e.opts = opts
	e.re = re
	e.current = 0
	e.rescan()
	return nil
}

// rescan recomputes the match list from the current document text.
func (e *Engine) rescan() {
	e.matches = e.matches[:0]
	if e.re == nil {
		return
	}
	for _, m := range e.re.FindAllStringIndex(e.doc.Text(), -1) {
		e.matches = append(e.matches, Match{
			From: buffer.ByteOffset(m[0]),
			To:   buffer.ByteOffset(m[1]),
		})
	}
}

// Next advances the selection circularly and returns the selected
// match. Returns false when there are no matches.
func (e *Engine) Next() (Match, bool) {
	if len(e.matches) == 0 {
		return Match{}, false
	}
	e.current++
	if e.current > len(e.matches) {
		e.current = 1
	}
	return e.matches[e.current-1], true
}

// Prev moves the selection backwards circularly. With no prior
// selection it starts at the last match.
func (e *Engine) Prev() (Match, bool) {
	if len(e.matches) == 0 {
		return Match{}, false
	}
	e.current--
	if e.current < 1 {
		e.current = len(e.matches)
	}
	return e.matches[e.current-1], true
}

// Current returns the selected match, if any.
func (e *Engine) Current() (Match, bool) {
	if e.current < 1 || e.current > len(e.matches) {
		return Match{}, false
	}
	return e.matches[e.current-1], true
}

// ReplaceCurrent replaces the selected match and rescans with the same
// query. The selection moves to the first match at or after the
// replacement site, wrapping to the first match when none follows. An
// empty post-replace match list keeps the engine Active so the find
// bar can show "no results". Without a selected match this is a no-op.
func (e *Engine) ReplaceCurrent(repl string) error {
	m, ok := e.Current()
	if !ok {
		return nil
	}
	if _, err := e.doc.Replace(m.From, m.To, repl); err != nil {
		return err
	}
	e.rescan()

	e.current = 0
	at := m.From + buffer.ByteOffset(len(repl))
	for i, next := range e.matches {
		if next.From >= at {
			e.current = i + 1
			break
		}
	}
	if e.current == 0 && len(e.matches) > 0 {
		e.current = 1
	}
	return nil
}

// ReplaceAll replaces every match in one atomic edit batch, applied in
// descending offset order so earlier offsets stay valid. No-op when
// the match list is empty.
func (e *Engine) ReplaceAll(repl string) error {
	if len(e.matches) == 0 {
		return nil
	}
	edits := make([]buffer.Edit, 0, len(e.matches))
	for i := len(e.matches) - 1; i >= 0; i-- {
		m := e.matches[i]
		edits = append(edits, buffer.Replacement(m.From, m.To, repl))
	}
	if err := e.doc.ApplyEdits(edits); err != nil {
		return err
	}
	e.current = 0
	e.rescan()
	return nil
}

// Resync rescans after an external document edit, clearing the
// selection. No-op while Idle.
func (e *Engine) Resync() {
	if e.re == nil {
		return
	}
	e.current = 0
	e.rescan()
}

// State reports the engine snapshot for display.
func (e *Engine) State() State {
	return State{
		Active:       e.re != nil,
		Query:        e.query,
		MatchCount:   len(e.matches),
		CurrentMatch: e.current,
	}
}

// Matches returns the current match list in document order. The
// returned slice is owned by the engine.
func (e *Engine) Matches() []Match {
	return e.matches
}

// Close clears the query and returns the engine to Idle.
func (e *Engine) Close() {
	e.query = ""
	e.re = nil
	e.matches = nil
	e.current = 0
}
