package widget

import (
	"testing"

	"github.com/glintnotes/glint/internal/engine/buffer"
)

func TestMatchTask(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		start   int
		end     int
		checked bool
		ok      bool
	}{
		{"unchecked", "- [ ] buy milk", 0, 5, false, true},
		{"checked", "- [x] buy milk", 0, 5, true, true},
		{"checked upper", "- [X] buy milk", 0, 5, true, true},
		{"indented", "  - [ ] nested", 2, 7, false, true},
		{"star bullet", "* [ ] task", 0, 5, false, true},
		{"plain bullet", "- buy milk", 0, 0, false, false},
		{"no trailing space", "- [ ]", 0, 0, false, false},
		{"not a list", "see [x] there", 0, 0, false, false},
		{"empty", "", 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, checked, ok := MatchTask(tt.line)
			if ok != tt.ok {
				t.Fatalf("MatchTask(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if !ok {
				return
			}
			if start != tt.start || end != tt.end {
				t.Errorf("MatchTask(%q) extent = [%d,%d), want [%d,%d)", tt.line, start, end, tt.start, tt.end)
			}
			if checked != tt.checked {
				t.Errorf("MatchTask(%q) checked = %v, want %v", tt.line, checked, tt.checked)
			}
		})
	}
}

func TestCheckbox_Toggle(t *testing.T) {
	doc := buffer.NewDocument("# Todo\n- [ ] buy milk\n- [x] done")

	// Toggle the unchecked box on line 1.
	cb := Checkbox{Checked: false, Anchor: doc.LineStartOffset(1)}
	edit, ok := cb.Toggle(doc)
	if !ok {
		t.Fatal("Toggle should locate the task marker")
	}
	if _, err := doc.Replace(edit.Range.Start, edit.Range.End, edit.NewText); err != nil {
		t.Fatalf("applying edit: %v", err)
	}
	if got := doc.LineText(1); got != "- [x] buy milk" {
		t.Errorf("line after toggle = %q, want %q", got, "- [x] buy milk")
	}
}

func TestCheckbox_Toggle_RoundTrip(t *testing.T) {
	const original = "- [ ] task one"
	doc := buffer.NewDocument(original)

	for i := 0; i < 2; i++ {
		cb := Checkbox{Anchor: 0}
		edit, ok := cb.Toggle(doc)
		if !ok {
			t.Fatalf("toggle %d failed to match", i)
		}
		if edit.Range.Len() != len(edit.NewText) {
			t.Fatalf("toggle edit must be same-length: %v -> %q", edit.Range, edit.NewText)
		}
		if _, err := doc.Replace(edit.Range.Start, edit.Range.End, edit.NewText); err != nil {
			t.Fatalf("applying edit: %v", err)
		}
	}

	if doc.Text() != original {
		t.Errorf("double toggle = %q, want original %q", doc.Text(), original)
	}
}

func TestCheckbox_Toggle_StaleAnchor(t *testing.T) {
	doc := buffer.NewDocument("- [ ] task")

	// The line is edited so the marker is gone; the stale anchor must
	// be a silent no-op.
	if _, err := doc.Replace(0, doc.Len(), "plain text now"); err != nil {
		t.Fatalf("setup edit: %v", err)
	}

	cb := Checkbox{Anchor: 0}
	if _, ok := cb.Toggle(doc); ok {
		t.Error("Toggle on a line without a task marker should be a no-op")
	}
	if doc.Text() != "plain text now" {
		t.Errorf("document corrupted: %q", doc.Text())
	}
}

func TestCheckbox_Toggle_TogglesCorrectLine(t *testing.T) {
	// The anchor offset points into line 2 even though it was captured
	// when the marker rendered; Toggle must work from the current line.
	doc := buffer.NewDocument("intro\n- [x] first\n- [ ] second")
	anchor := doc.LineStartOffset(2) + 3

	cb := Checkbox{Anchor: anchor}
	edit, ok := cb.Toggle(doc)
	if !ok {
		t.Fatal("Toggle should match line 2")
	}
	if _, err := doc.Replace(edit.Range.Start, edit.Range.End, edit.NewText); err != nil {
		t.Fatalf("applying edit: %v", err)
	}
	if got := doc.LineText(2); got != "- [x] second" {
		t.Errorf("line 2 = %q, want %q", got, "- [x] second")
	}
	if got := doc.LineText(1); got != "- [x] first" {
		t.Errorf("line 1 changed: %q", got)
	}
}

func TestWidget_ContentKeys(t *testing.T) {
	tests := []struct {
		name string
		w    Widget
		kind Kind
		key  string
	}{
		{"unchecked box", Checkbox{Checked: false}, KindCheckbox, "false"},
		{"checked box", Checkbox{Checked: true}, KindCheckbox, "true"},
		{"bullet", ListMarker{Style: StyleBullet}, KindListMarker, "bullet"},
		{"ordinal", ListMarker{Style: StyleOrdinal, Index: 3}, KindListMarker, "3."},
		{"rule", Rule{}, KindRule, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.w.Kind(); got != tt.kind {
				t.Errorf("Kind() = %v, want %v", got, tt.kind)
			}
			if got := tt.w.ContentKey(); got != tt.key {
				t.Errorf("ContentKey() = %q, want %q", got, tt.key)
			}
		})
	}
}
