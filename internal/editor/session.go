// Package editor owns the live-preview session: one document, a caret,
// a viewport, and the derived state hanging off them (markdown
// decorations, wiki-link overlay, search engine, title completion).
// Hosts feed it edits and events; it hands back ordered instruction
// lists for the renderer.
package editor

import (
	"time"

	"github.com/glintnotes/glint/internal/complete"
	"github.com/glintnotes/glint/internal/decor"
	"github.com/glintnotes/glint/internal/decor/widget"
	"github.com/glintnotes/glint/internal/engine/buffer"
	"github.com/glintnotes/glint/internal/logger"
	"github.com/glintnotes/glint/internal/notes"
	"github.com/glintnotes/glint/internal/search"
	"github.com/glintnotes/glint/internal/syntax"
	"github.com/glintnotes/glint/internal/wikilink"
)

// Reason says why a decoration recompute was requested.
type Reason uint8

const (
	ReasonDocChanged Reason = iota
	ReasonViewportChanged
	ReasonCaretMoved
)

// String returns the reason name for logging.
func (r Reason) String() string {
	switch r {
	case ReasonDocChanged:
		return "doc-changed"
	case ReasonViewportChanged:
		return "viewport-changed"
	case ReasonCaretMoved:
		return "caret-moved"
	default:
		return "unknown"
	}
}

// Decorations is the result of one recompute pass: the markdown layer
// and the wiki-link layer, each internally ordered.
type Decorations struct {
	Markdown []decor.Instruction
	Wiki     []decor.Instruction
}

// Option configures a session.
type Option func(*Session)

// WithNavigator sets the wiki-link click target.
func WithNavigator(nav wikilink.Navigator) Option {
	return func(s *Session) { s.overlay = wikilink.NewOverlay(nav) }
}

// WithNotes sets the title index backing completion.
func WithNotes(index *notes.Index) Option {
	return func(s *Session) { s.index = index }
}

// WithMaxSuggestions caps the completion list.
func WithMaxSuggestions(n int) Option {
	return func(s *Session) { s.maxSuggest = n }
}

// WithLogger sets the session logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) { s.log = l }
}

// Session is the live-preview editing core for one open document.
type Session struct {
	doc      *buffer.Document
	caret    buffer.ByteOffset
	viewport buffer.Range

	provider syntax.Provider
	builder  *decor.Builder
	overlay  *wikilink.Overlay
	engine   *search.Engine

	index      *notes.Index
	maxSuggest int
	completer  *complete.Provider

	log *logger.Logger

	// nodes caches the parse tree for nodesRev; a revision miss reparses.
	nodes    []syntax.Node
	nodesRev buffer.Revision

	decorations Decorations
}

// NewSession creates a session over the initial text and runs the
// first decoration pass.
func NewSession(text string, opts ...Option) *Session {
	s := &Session{
		doc:      buffer.NewDocument(text),
		provider: syntax.NewMarkdown(),
		builder:  decor.NewBuilder(),
		overlay:  wikilink.NewOverlay(nil),
		log:      logger.Discard(),
	}
	s.engine = search.NewEngine(s.doc)
	for _, opt := range opts {
		opt(s)
	}
	if s.index == nil {
		s.index = notes.NewIndex()
	}
	s.completer = complete.NewProvider(s.index, s.maxSuggest)
	s.viewport = buffer.NewRange(0, s.doc.Len())
	s.Invalidate(ReasonDocChanged)
	return s
}

// Document returns the underlying document.
func (s *Session) Document() *buffer.Document {
	return s.doc
}

// Caret returns the caret offset.
func (s *Session) Caret() buffer.ByteOffset {
	return s.caret
}

// SetCaret moves the caret, clamped into the document.
func (s *Session) SetCaret(offset buffer.ByteOffset) {
	offset = s.doc.Clamp(offset)
	if offset == s.caret {
		return
	}
	s.caret = offset
	s.Invalidate(ReasonCaretMoved)
}

// Viewport returns the visible byte range.
func (s *Session) Viewport() buffer.Range {
	return s.viewport
}

// SetViewport updates the visible byte range.
func (s *Session) SetViewport(r buffer.Range) {
	r = buffer.NewRange(s.doc.Clamp(r.Start), s.doc.Clamp(r.End))
	if r == s.viewport {
		return
	}
	s.viewport = r
	s.Invalidate(ReasonViewportChanged)
}

// InsertText inserts at the caret and advances it past the insertion.
func (s *Session) InsertText(text string) error {
	if text == "" {
		return nil
	}
	res, err := s.doc.Replace(s.caret, s.caret, text)
	if err != nil {
		return err
	}
	s.caret = res.NewRange.End
	s.afterEdit(len(text))
	return nil
}

// DeleteRange removes a byte range, moving the caret to its start.
func (s *Session) DeleteRange(start, end buffer.ByteOffset) error {
	res, err := s.doc.Replace(start, end, "")
	if err != nil {
		return err
	}
	s.caret = res.NewRange.Start
	s.afterEdit(-res.OldRange.Len())
	return nil
}

// ApplyEdit applies a single replacement, keeping the caret in bounds.
func (s *Session) ApplyEdit(e buffer.Edit) error {
	if _, err := s.doc.Replace(e.Range.Start, e.Range.End, e.NewText); err != nil {
		return err
	}
	s.afterEdit(e.Delta())
	return nil
}

func (s *Session) afterEdit(delta int) {
	s.caret = s.doc.Clamp(s.caret)
	s.engine.Resync()
	s.log.EditApplied(s.caret, delta, s.doc.Revision())
	s.Invalidate(ReasonDocChanged)
}

// Invalidate recomputes both decoration layers. The parse tree is
// reused while the document revision is unchanged. Callers invoke it
// after editing the document outside the session, so the caret and
// viewport are re-clamped here.
func (s *Session) Invalidate(reason Reason) {
	start := time.Now()
	s.caret = s.doc.Clamp(s.caret)
	s.viewport = buffer.NewRange(s.doc.Clamp(s.viewport.Start), s.doc.Clamp(s.viewport.End))
	if rev := s.doc.Revision(); rev != s.nodesRev || s.nodes == nil {
		s.nodes = s.provider.Parse(s.doc.Text())
		s.nodesRev = rev
	}
	s.decorations = Decorations{
		Markdown: s.builder.Build(s.doc, s.nodes, s.viewport, s.caret),
		Wiki:     s.overlay.Build(s.doc, s.viewport, s.caret),
	}
	n := len(s.decorations.Markdown) + len(s.decorations.Wiki)
	s.log.DecorationPass(reason.String(), n, time.Since(start))
}

// Decorations returns the latest pass.
func (s *Session) Decorations() Decorations {
	return s.decorations
}

// ToggleCheckbox flips the task checkbox on the line holding anchor.
// Reports false when the line no longer carries a task marker.
func (s *Session) ToggleCheckbox(anchor buffer.ByteOffset) bool {
	edit, ok := widget.Checkbox{Anchor: anchor}.Toggle(s.doc)
	if !ok {
		return false
	}
	if err := s.ApplyEdit(edit); err != nil {
		return false
	}
	return true
}

// Click resolves a click offset against the wiki overlay and navigates
// when it lands on a link.
func (s *Session) Click(offset buffer.ByteOffset) error {
	title, ok := s.overlay.Resolve(s.doc, offset)
	if !ok {
		return nil
	}
	if err := s.overlay.Click(s.doc, offset); err != nil {
		s.log.NavigateError(title, err)
		return err
	}
	s.log.Navigate(title)
	return nil
}

// Search exposes the in-buffer search engine.
func (s *Session) Search() *search.Engine {
	return s.engine
}

// Completion exposes the title completion provider.
func (s *Session) Completion() *complete.Provider {
	return s.completer
}

// Suggestions runs completion at the caret. ok is false when the caret
// is not inside an open wiki-link reference.
func (s *Session) Suggestions() (complete.Context, []complete.Suggestion, bool) {
	ctx, ok := complete.Trigger(s.doc, s.caret)
	if !ok {
		return complete.Context{}, nil, false
	}
	return ctx, s.completer.Suggest(ctx.Query), true
}

// AcceptSuggestion applies a completion, placing the caret after the
// closing brackets.
func (s *Session) AcceptSuggestion(ctx complete.Context, sg complete.Suggestion) error {
	edit, caret, ok := complete.Accept(ctx, s.caret, sg)
	if !ok {
		return nil
	}
	if err := s.ApplyEdit(edit); err != nil {
		return err
	}
	s.SetCaret(caret)
	return nil
}

// EnsureVisible shifts the viewport so the caret line is inside it,
// keeping the viewport's line height.
func (s *Session) EnsureVisible() {
	if s.viewport.Contains(s.caret) || s.caret == s.viewport.End {
		return
	}
	startLine := s.doc.LineAt(s.viewport.Start)
	endLine := s.doc.LineAt(s.doc.Clamp(s.viewport.End))
	height := endLine - startLine
	if height < 0 {
		height = 0
	}

	caretLine := s.doc.LineAt(s.caret)
	first := caretLine
	if caretLine > endLine {
		first = caretLine - height
	}
	if first < 0 {
		first = 0
	}
	last := first + height
	if last >= s.doc.LineCount() {
		last = s.doc.LineCount() - 1
	}
	s.SetViewport(buffer.NewRange(s.doc.LineStartOffset(first), s.doc.LineEndOffset(last)))
}
