package editor

import (
	"reflect"
	"sort"
	"testing"

	"github.com/AltKhyin/reviewcanvas/internal/document"
)

func sessionWithNodes(t *testing.T, ids ...string) *Session {
	t.Helper()
	doc := document.Empty()
	for i, id := range ids {
		doc.Nodes = append(doc.Nodes, document.Node{ID: id, Type: document.TypeText, Data: map[string]any{}})
		doc.Positions[id] = document.Position{Y: float64(i * 140), Width: 600, Height: 120}
	}
	return NewSession(1, doc)
}

func TestSelectBlockExclusive(t *testing.T) {
	s := sessionWithNodes(t, "a", "b", "c")
	s.SelectBlock("a", SelectOptions{MultiSelect: true})
	s.SelectBlock("b", SelectOptions{MultiSelect: true})

	s.SelectBlock("c", SelectOptions{})
	sel := s.Selection()
	if sel.Primary != "c" {
		t.Fatalf("primary: want=%q got=%q", "c", sel.Primary)
	}
	if len(sel.Secondary) != 0 {
		t.Fatalf("exclusive select must clear secondary: %v", sel.Secondary)
	}
	if sel.LastSelected != "c" {
		t.Fatalf("lastSelected: want=%q got=%q", "c", sel.LastSelected)
	}
}

func TestSelectBlockMultiAppendOnly(t *testing.T) {
	s := sessionWithNodes(t, "a", "b", "c")
	s.SelectBlock("a", SelectOptions{MultiSelect: true})
	s.SelectBlock("b", SelectOptions{MultiSelect: true})
	s.SelectBlock("b", SelectOptions{MultiSelect: true}) // no toggle-off
	s.SelectBlock("a", SelectOptions{MultiSelect: true}) // primary never demoted

	sel := s.Selection()
	if sel.Primary != "a" {
		t.Fatalf("primary: want=%q got=%q", "a", sel.Primary)
	}
	if !reflect.DeepEqual(sel.Secondary, []string{"b"}) {
		t.Fatalf("secondary: want=[b] got=%v", sel.Secondary)
	}
}

func TestSelectBlockRangeOrderIndependent(t *testing.T) {
	forward := sessionWithNodes(t, "n0", "n1", "n2", "n3", "n4", "n5")
	forward.SelectBlock("n1", SelectOptions{})
	forward.SelectBlock("n4", SelectOptions{RangeSelect: true})

	backward := sessionWithNodes(t, "n0", "n1", "n2", "n3", "n4", "n5")
	backward.SelectBlock("n4", SelectOptions{})
	backward.SelectBlock("n1", SelectOptions{RangeSelect: true})

	want := []string{"n1", "n2", "n3", "n4"}
	for name, s := range map[string]*Session{"1-then-4": forward, "4-then-1": backward} {
		sel := s.Selection()
		got := append([]string{sel.Primary}, sel.Secondary...)
		sort.Strings(got)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: selected set want=%v got=%v", name, want, got)
		}
	}
}

func TestSelectBlockRangeWithoutAnchorFallsBackToExclusive(t *testing.T) {
	s := sessionWithNodes(t, "a", "b")
	s.SelectBlock("b", SelectOptions{RangeSelect: true})
	sel := s.Selection()
	if sel.Primary != "b" || len(sel.Secondary) != 0 {
		t.Fatalf("range without anchor: got %+v", sel)
	}
}

func TestSelectBlockRangeClearsMarqueeRect(t *testing.T) {
	s := sessionWithNodes(t, "a", "b", "c")
	s.SelectBlock("a", SelectOptions{})
	s.SetSelectionRect(&Rect{Width: 50, Height: 50})

	s.SelectBlock("c", SelectOptions{RangeSelect: true})
	if sel := s.Selection(); sel.SelectionRect != nil {
		t.Fatalf("range select must clear the marquee rect: %+v", sel.SelectionRect)
	}
}

func TestSelectBlockStaleIDIsNoOp(t *testing.T) {
	s := sessionWithNodes(t, "a")
	s.SelectBlock("a", SelectOptions{})
	s.SelectBlock("ghost", SelectOptions{})
	sel := s.Selection()
	if sel.Primary != "a" || sel.LastSelected != "a" {
		t.Fatalf("stale id must not disturb selection: %+v", sel)
	}
}

func TestFocusBlockDoesNotAlterSelection(t *testing.T) {
	s := sessionWithNodes(t, "a", "b")
	s.SelectBlock("a", SelectOptions{})
	s.FocusBlock("b")

	sel := s.Selection()
	if sel.Primary != "a" {
		t.Fatalf("focus must not alter primary: got=%q", sel.Primary)
	}
	inter := s.Interaction()
	if inter.FocusedBlockID != "b" || inter.ActiveEditor.BlockID != "b" {
		t.Fatalf("focus state: %+v", inter)
	}
	if len(inter.ActiveEditor.ContextualFeatures) == 0 {
		t.Fatalf("text block focus must expose contextual features")
	}
}

func TestClearSelectionKeepsFocus(t *testing.T) {
	s := sessionWithNodes(t, "a")
	s.SelectBlock("a", SelectOptions{})
	s.SetSelectionRect(&Rect{Width: 10, Height: 10})
	s.FocusBlock("a")

	s.ClearSelection()
	sel := s.Selection()
	if sel.Primary != "" || sel.LastSelected != "" || sel.SelectionRect != nil || len(sel.Secondary) != 0 {
		t.Fatalf("clear selection left residue: %+v", sel)
	}
	if s.Interaction().FocusedBlockID != "a" {
		t.Fatalf("clear selection must not clear focus")
	}
}

// Selection invariant: primary never appears in secondary, secondary holds no
// duplicates, across any gesture sequence.
func TestSelectionInvariantsUnderGestures(t *testing.T) {
	s := sessionWithNodes(t, "a", "b", "c", "d")
	gestures := []struct {
		id   string
		opts SelectOptions
	}{
		{"a", SelectOptions{}},
		{"b", SelectOptions{MultiSelect: true}},
		{"b", SelectOptions{MultiSelect: true}},
		{"d", SelectOptions{RangeSelect: true}},
		{"a", SelectOptions{MultiSelect: true}},
		{"c", SelectOptions{}},
		{"a", SelectOptions{RangeSelect: true}},
	}
	for _, g := range gestures {
		s.SelectBlock(g.id, g.opts)
		sel := s.Selection()
		seen := map[string]bool{}
		for _, id := range sel.Secondary {
			if id == sel.Primary {
				t.Fatalf("primary %q leaked into secondary %v", sel.Primary, sel.Secondary)
			}
			if seen[id] {
				t.Fatalf("duplicate %q in secondary %v", id, sel.Secondary)
			}
			seen[id] = true
		}
	}
}
