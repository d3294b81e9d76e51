package editor

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/glintnotes/glint/internal/decor"
	"github.com/glintnotes/glint/internal/engine/buffer"
	"github.com/glintnotes/glint/internal/notes"
	"github.com/glintnotes/glint/internal/search"
	"github.com/glintnotes/glint/internal/wikilink"
)

func TestNewSession_InitialPass(t *testing.T) {
	s := NewSession("# Title\ntext")
	s.SetCaret(10) // second line, heading not excluded

	d := s.Decorations()
	if len(d.Markdown) == 0 {
		t.Fatal("no markdown instructions for a heading document")
	}
	if d.Markdown[0].Op != decor.OpHide || d.Markdown[0].From != 0 || d.Markdown[0].To != 2 {
		t.Errorf("first instruction = %v, want hide [0,2)", d.Markdown[0])
	}
}

func TestSession_CaretLineExclusion(t *testing.T) {
	s := NewSession("# Title\ntext")

	s.SetCaret(2) // on the heading line
	if n := len(s.Decorations().Markdown); n != 0 {
		t.Errorf("heading line with caret produced %d instructions, want 0", n)
	}

	s.SetCaret(10)
	if n := len(s.Decorations().Markdown); n == 0 {
		t.Error("heading not decorated after caret left its line")
	}
}

func TestSession_SetCaretClamps(t *testing.T) {
	s := NewSession("abc")
	s.SetCaret(100)
	if s.Caret() != 3 {
		t.Errorf("caret = %d, want 3", s.Caret())
	}
	s.SetCaret(-5)
	if s.Caret() != 0 {
		t.Errorf("caret = %d, want 0", s.Caret())
	}
}

func TestSession_InsertText(t *testing.T) {
	s := NewSession("ac")
	s.SetCaret(1)
	if err := s.InsertText("b"); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	if got := s.Document().Text(); got != "abc" {
		t.Errorf("text = %q, want %q", got, "abc")
	}
	if s.Caret() != 2 {
		t.Errorf("caret = %d, want 2", s.Caret())
	}
}

func TestSession_InsertRecomputesDecorations(t *testing.T) {
	s := NewSession("plain\n")
	s.SetCaret(6)
	if n := len(s.Decorations().Markdown); n != 0 {
		t.Fatalf("plain text produced %d instructions", n)
	}
	// Type a heading on the first line while the caret ends on it:
	// still raw. Then move away and the decoration appears.
	s.SetCaret(0)
	if err := s.InsertText("# "); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	s.SetCaret(s.Document().Len())
	if n := len(s.Decorations().Markdown); n == 0 {
		t.Error("typed heading not decorated after edit")
	}
}

func TestSession_DeleteRange(t *testing.T) {
	s := NewSession("hello world")
	s.SetCaret(11)
	if err := s.DeleteRange(5, 11); err != nil {
		t.Fatalf("DeleteRange: %v", err)
	}
	if got := s.Document().Text(); got != "hello" {
		t.Errorf("text = %q, want %q", got, "hello")
	}
	if s.Caret() != 5 {
		t.Errorf("caret = %d, want 5", s.Caret())
	}
}

func TestSession_ToggleCheckbox(t *testing.T) {
	s := NewSession("- [ ] buy milk")
	if !s.ToggleCheckbox(0) {
		t.Fatal("ToggleCheckbox returned false")
	}
	if got := s.Document().Text(); got != "- [x] buy milk" {
		t.Errorf("text = %q, want %q", got, "- [x] buy milk")
	}
	if !s.ToggleCheckbox(0) {
		t.Fatal("second ToggleCheckbox returned false")
	}
	if got := s.Document().Text(); got != "- [ ] buy milk" {
		t.Errorf("text = %q, want %q", got, "- [ ] buy milk")
	}
}

func TestSession_ToggleCheckbox_NotATask(t *testing.T) {
	s := NewSession("plain line")
	if s.ToggleCheckbox(0) {
		t.Error("ToggleCheckbox on a plain line returned true")
	}
	if s.Document().Text() != "plain line" {
		t.Errorf("document modified: %q", s.Document().Text())
	}
}

func TestSession_ClickNavigates(t *testing.T) {
	var opened string
	nav := wikilink.NavigatorFunc(func(title string) error {
		opened = title
		return nil
	})
	s := NewSession("go [[Target|there]] now", WithNavigator(nav))

	if err := s.Click(6); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if opened != "Target" {
		t.Errorf("opened = %q, want %q", opened, "Target")
	}
}

func TestSession_ClickMiss(t *testing.T) {
	called := false
	nav := wikilink.NavigatorFunc(func(string) error {
		called = true
		return nil
	})
	s := NewSession("go [[Target]] now", WithNavigator(nav))

	if err := s.Click(0); err != nil {
		t.Fatalf("Click: %v", err)
	}
	if called {
		t.Error("navigator called for a click outside any link")
	}
}

func TestSession_ClickError(t *testing.T) {
	wantErr := errors.New("note missing")
	nav := wikilink.NavigatorFunc(func(string) error { return wantErr })
	s := NewSession("[[Gone]]", WithNavigator(nav))

	if err := s.Click(3); !errors.Is(err, wantErr) {
		t.Errorf("Click error = %v, want %v", err, wantErr)
	}
}

func TestSession_CompletionFlow(t *testing.T) {
	idx := notes.NewIndex()
	idx.Replace([]notes.Note{
		{ID: uuid.New(), Title: "My Note", UpdatedAt: time.Now()},
	})
	s := NewSession("see [[My", WithNotes(idx))
	s.SetCaret(8)

	ctx, suggestions, ok := s.Suggestions()
	if !ok {
		t.Fatal("Suggestions returned ok = false inside open brackets")
	}
	if len(suggestions) != 1 || suggestions[0].Title != "My Note" {
		t.Fatalf("suggestions = %+v, want [My Note]", suggestions)
	}

	if err := s.AcceptSuggestion(ctx, suggestions[0]); err != nil {
		t.Fatalf("AcceptSuggestion: %v", err)
	}
	if got := s.Document().Text(); got != "see [[My Note]]" {
		t.Errorf("text = %q, want %q", got, "see [[My Note]]")
	}
	if s.Caret() != 15 {
		t.Errorf("caret = %d, want 15", s.Caret())
	}
}

func TestSession_SuggestionsOutsideBrackets(t *testing.T) {
	s := NewSession("no links here")
	s.SetCaret(5)
	if _, _, ok := s.Suggestions(); ok {
		t.Error("Suggestions returned ok = true outside brackets")
	}
}

func TestSession_SearchResyncsOnEdit(t *testing.T) {
	s := NewSession("abc")
	if err := s.Search().SetQuery("abc", search.Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	if n := s.Search().State().MatchCount; n != 1 {
		t.Fatalf("MatchCount = %d, want 1", n)
	}

	s.SetCaret(3)
	if err := s.InsertText(" abc"); err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	if n := s.Search().State().MatchCount; n != 2 {
		t.Errorf("MatchCount after edit = %d, want 2", n)
	}
}

func TestSession_WikiLayerViewportBound(t *testing.T) {
	s := NewSession("[[a]]\n[[b]]")
	s.SetViewport(buffer.NewRange(0, 5))
	s.SetCaret(8) // second line, so the first link renders as a widget

	wiki := s.Decorations().Wiki
	if len(wiki) != 1 {
		t.Fatalf("wiki instructions = %d, want 1", len(wiki))
	}
	if wiki[0].From != 0 || wiki[0].To != 5 {
		t.Errorf("wiki[0] = %v, want widget over [0,5)", wiki[0])
	}
}

func TestSession_EnsureVisible(t *testing.T) {
	s := NewSession("l0\nl1\nl2\nl3\nl4")
	// Two-line viewport over lines 0-1.
	s.SetViewport(buffer.NewRange(0, 5))
	s.SetCaret(12) // line 4

	s.EnsureVisible()
	vp := s.Viewport()
	if !vp.Contains(12) {
		t.Errorf("viewport %v does not contain caret 12", vp)
	}
	if doc := s.Document(); doc.LineAt(vp.Start) != 3 {
		t.Errorf("viewport starts at line %d, want 3", doc.LineAt(vp.Start))
	}
}
