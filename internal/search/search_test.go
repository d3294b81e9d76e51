package search

import (
	"testing"

	"github.com/glintnotes/glint/internal/engine/buffer"
)

func TestSetQuery_FindsAllMatches(t *testing.T) {
	doc := buffer.NewDocument("abcabc")
	e := NewEngine(doc)
	if err := e.SetQuery("abc", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}

	got := e.Matches()
	want := []Match{{From: 0, To: 3}, {From: 3, To: 6}}
	if len(got) != len(want) {
		t.Fatalf("matches = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("matches[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSetQuery_CaseFolding(t *testing.T) {
	doc := buffer.NewDocument("Note note NOTE")
	e := NewEngine(doc)

	if err := e.SetQuery("note", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	if n := e.State().MatchCount; n != 3 {
		t.Errorf("insensitive MatchCount = %d, want 3", n)
	}

	if err := e.SetQuery("note", Options{CaseSensitive: true}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	if n := e.State().MatchCount; n != 1 {
		t.Errorf("sensitive MatchCount = %d, want 1", n)
	}
}

func TestSetQuery_LiteralNotRegex(t *testing.T) {
	doc := buffer.NewDocument("a.c abc")
	e := NewEngine(doc)
	if err := e.SetQuery("a.c", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	got := e.Matches()
	if len(got) != 1 || got[0].From != 0 || got[0].To != 3 {
		t.Errorf("matches = %v, want [{0 3}]", got)
	}
}

func TestSetQuery_WholeWord(t *testing.T) {
	doc := buffer.NewDocument("cat catalog cat")
	e := NewEngine(doc)
	if err := e.SetQuery("cat", Options{WholeWord: true}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	got := e.Matches()
	if len(got) != 2 {
		t.Fatalf("matches = %v, want 2 whole-word matches", got)
	}
	if got[0].From != 0 || got[1].From != 12 {
		t.Errorf("match offsets = %d, %d, want 0, 12", got[0].From, got[1].From)
	}
}

func TestSetQuery_EmptyGoesIdle(t *testing.T) {
	doc := buffer.NewDocument("abc")
	e := NewEngine(doc)
	if err := e.SetQuery("abc", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	if err := e.SetQuery("", Options{}); err != nil {
		t.Fatalf("SetQuery(\"\"): %v", err)
	}
	st := e.State()
	if st.Active || st.Query != "" || st.MatchCount != 0 || st.CurrentMatch != 0 {
		t.Errorf("state after empty query = %+v, want idle zero state", st)
	}
}

func TestNext_Circular(t *testing.T) {
	doc := buffer.NewDocument("abcabc")
	e := NewEngine(doc)
	if err := e.SetQuery("abc", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}

	wantSeq := []int{1, 2, 1}
	for i, want := range wantSeq {
		if _, ok := e.Next(); !ok {
			t.Fatalf("Next #%d returned ok = false", i)
		}
		if cur := e.State().CurrentMatch; cur != want {
			t.Errorf("Next #%d: CurrentMatch = %d, want %d", i, cur, want)
		}
	}
}

func TestPrev_StartsAtLast(t *testing.T) {
	doc := buffer.NewDocument("x x x")
	e := NewEngine(doc)
	if err := e.SetQuery("x", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}

	m, ok := e.Prev()
	if !ok {
		t.Fatal("Prev returned ok = false")
	}
	if m.From != 4 {
		t.Errorf("Prev match From = %d, want 4", m.From)
	}
	if cur := e.State().CurrentMatch; cur != 3 {
		t.Errorf("CurrentMatch = %d, want 3", cur)
	}

	m, _ = e.Prev()
	if m.From != 2 {
		t.Errorf("second Prev From = %d, want 2", m.From)
	}
}

func TestNext_NoMatches(t *testing.T) {
	doc := buffer.NewDocument("abc")
	e := NewEngine(doc)
	if err := e.SetQuery("zzz", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	if _, ok := e.Next(); ok {
		t.Error("Next on empty match list returned ok = true")
	}
	if _, ok := e.Prev(); ok {
		t.Error("Prev on empty match list returned ok = true")
	}
}

func TestReplaceCurrent(t *testing.T) {
	doc := buffer.NewDocument("one two one")
	e := NewEngine(doc)
	if err := e.SetQuery("one", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	e.Next()

	if err := e.ReplaceCurrent("three"); err != nil {
		t.Fatalf("ReplaceCurrent: %v", err)
	}
	if got := doc.Text(); got != "three two one" {
		t.Errorf("text = %q, want %q", got, "three two one")
	}

	st := e.State()
	if st.MatchCount != 1 {
		t.Errorf("MatchCount = %d, want 1", st.MatchCount)
	}
	// Selection moves to the next surviving match.
	if st.CurrentMatch != 1 {
		t.Errorf("CurrentMatch = %d, want 1", st.CurrentMatch)
	}
	m, ok := e.Current()
	if !ok || m.From != 10 {
		t.Errorf("Current = %v, %v, want match at 10", m, ok)
	}
}

func TestReplaceCurrent_WrapsSelection(t *testing.T) {
	doc := buffer.NewDocument("one two one")
	e := NewEngine(doc)
	if err := e.SetQuery("one", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	e.Next()
	e.Next() // select the last match

	if err := e.ReplaceCurrent("x"); err != nil {
		t.Fatalf("ReplaceCurrent: %v", err)
	}
	if got := doc.Text(); got != "one two x" {
		t.Errorf("text = %q, want %q", got, "one two x")
	}
	m, ok := e.Current()
	if !ok || m.From != 0 {
		t.Errorf("Current = %v, %v, want wrap to match at 0", m, ok)
	}
}

func TestReplaceCurrent_NoSelection(t *testing.T) {
	doc := buffer.NewDocument("one")
	e := NewEngine(doc)
	if err := e.SetQuery("one", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	if err := e.ReplaceCurrent("x"); err != nil {
		t.Errorf("ReplaceCurrent with no selection: %v", err)
	}
	if doc.Text() != "one" {
		t.Errorf("text changed to %q", doc.Text())
	}
}

func TestReplaceCurrent_LastMatchStaysActive(t *testing.T) {
	doc := buffer.NewDocument("only")
	e := NewEngine(doc)
	if err := e.SetQuery("only", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	e.Next()

	if err := e.ReplaceCurrent("done"); err != nil {
		t.Fatalf("ReplaceCurrent: %v", err)
	}
	st := e.State()
	if !st.Active {
		t.Error("engine went idle after replacing the last match")
	}
	if st.MatchCount != 0 || st.CurrentMatch != 0 {
		t.Errorf("state = %+v, want zero matches, still active", st)
	}
}

func TestReplaceAll(t *testing.T) {
	doc := buffer.NewDocument("aaa")
	e := NewEngine(doc)
	if err := e.SetQuery("a", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	if err := e.ReplaceAll("b"); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if got := doc.Text(); got != "bbb" {
		t.Errorf("text = %q, want %q", got, "bbb")
	}
	st := e.State()
	if st.MatchCount != 0 {
		t.Errorf("MatchCount = %d, want 0", st.MatchCount)
	}
	if !st.Active {
		t.Error("engine went idle after ReplaceAll")
	}
}

func TestReplaceAll_GrowingReplacement(t *testing.T) {
	doc := buffer.NewDocument("x.x.x")
	e := NewEngine(doc)
	if err := e.SetQuery("x", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	if err := e.ReplaceAll("long"); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if got := doc.Text(); got != "long.long.long" {
		t.Errorf("text = %q, want %q", got, "long.long.long")
	}
}

func TestReplaceAll_NoMatches(t *testing.T) {
	doc := buffer.NewDocument("abc")
	e := NewEngine(doc)
	if err := e.SetQuery("zzz", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	rev := doc.Revision()
	if err := e.ReplaceAll("x"); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if doc.Revision() != rev {
		t.Error("ReplaceAll with no matches modified the document")
	}
}

func TestResync_AfterExternalEdit(t *testing.T) {
	doc := buffer.NewDocument("abc")
	e := NewEngine(doc)
	if err := e.SetQuery("abc", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	e.Next()

	if _, err := doc.Replace(0, 0, "abc "); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	e.Resync()

	st := e.State()
	if st.MatchCount != 2 {
		t.Errorf("MatchCount = %d, want 2", st.MatchCount)
	}
	if st.CurrentMatch != 0 {
		t.Errorf("CurrentMatch = %d, want 0 after resync", st.CurrentMatch)
	}
}

func TestClose(t *testing.T) {
	doc := buffer.NewDocument("abc")
	e := NewEngine(doc)
	if err := e.SetQuery("abc", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	e.Close()
	st := e.State()
	if st.Active || st.MatchCount != 0 || st.CurrentMatch != 0 || st.Query != "" {
		t.Errorf("state after Close = %+v, want idle", st)
	}
}
