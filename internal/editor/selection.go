package editor

// Rect is a viewport-space rectangle, used for marquee selection.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SelectionState tracks which blocks are selected. Invariants: Primary never
// appears in Secondary, and Secondary holds no duplicates.
type SelectionState struct {
	Primary       string   `json:"primary,omitempty"`
	Secondary     []string `json:"secondary,omitempty"`
	SelectionRect *Rect    `json:"selectionRect,omitempty"`
	LastSelected  string   `json:"lastSelected,omitempty"`
}

// InteractionState tracks focus and the active rich-text sub-editor.
type InteractionState struct {
	FocusedBlockID string       `json:"focusedBlockId,omitempty"`
	ActiveEditor   ActiveEditor `json:"activeEditor"`
}

// ActiveEditor describes the embedded rich-text editor attached to one block.
// Selection is opaque to the core.
type ActiveEditor struct {
	BlockID            string   `json:"blockId,omitempty"`
	Selection          any      `json:"selection,omitempty"`
	ContextualFeatures []string `json:"contextualFeatures,omitempty"`
}

// SelectOptions modify a SelectBlock call.
type SelectOptions struct {
	MultiSelect bool
	RangeSelect bool
}

// SelectBlock applies one selection gesture. Operations on ids that are not
// in the document are silent no-ops: selection events frequently arrive from
// stale UI handlers during rapid edits.
func (s *Session) SelectBlock(id string, opts SelectOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.NodeIndex(id) < 0 {
		return
	}

	switch {
	case opts.RangeSelect && s.selection.LastSelected != "" && s.doc.NodeIndex(s.selection.LastSelected) >= 0:
		s.selectRange(s.selection.LastSelected, id)
	case opts.MultiSelect:
		if s.selection.Primary == "" {
			s.selection.Primary = id
		} else if id != s.selection.Primary && !containsString(s.selection.Secondary, id) {
			// Append-only multiselect: toggling off is not supported, only
			// exclusive reselection clears.
			s.selection.Secondary = append(s.selection.Secondary, id)
		}
	default:
		s.selectExclusive(id)
	}
	s.selection.LastSelected = id
}

// selectRange selects every node whose document-order index falls between
// from and to inclusive; the first becomes primary. Document order, not
// screen position.
func (s *Session) selectRange(from, to string) {
	lo := s.doc.NodeIndex(from)
	hi := s.doc.NodeIndex(to)
	if lo > hi {
		lo, hi = hi, lo
	}
	s.selection.Primary = ""
	s.selection.Secondary = nil
	s.selection.SelectionRect = nil
	for i := lo; i <= hi; i++ {
		id := s.doc.Nodes[i].ID
		if s.selection.Primary == "" {
			s.selection.Primary = id
			continue
		}
		s.selection.Secondary = append(s.selection.Secondary, id)
	}
}

// selectExclusive must be called with the lock held.
func (s *Session) selectExclusive(id string) {
	s.selection.Primary = id
	s.selection.Secondary = nil
	s.selection.SelectionRect = nil
}

// FocusBlock sets keyboard focus and attaches the rich-text sub-editor to the
// block. Does not alter the selection. Unknown id is a no-op.
func (s *Session) FocusBlock(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node := s.doc.NodeByID(id)
	if node == nil {
		return
	}
	s.interaction.FocusedBlockID = id
	s.interaction.ActiveEditor = ActiveEditor{
		BlockID:            id,
		ContextualFeatures: contextualFeaturesFor(node.Type),
	}
}

// ClearSelection resets all selection fields; focus is untouched.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = SelectionState{}
}

// SetSelectionRect records the marquee rectangle (nil clears it).
func (s *Session) SetSelectionRect(r *Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.SelectionRect = r
}

// Selection returns a copy of the current selection state.
func (s *Session) Selection() SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.selection
	out.Secondary = append([]string(nil), s.selection.Secondary...)
	if s.selection.SelectionRect != nil {
		rect := *s.selection.SelectionRect
		out.SelectionRect = &rect
	}
	return out
}

// Interaction returns a copy of the current interaction state.
func (s *Session) Interaction() InteractionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.interaction
	out.ActiveEditor.ContextualFeatures = append([]string(nil), s.interaction.ActiveEditor.ContextualFeatures...)
	return out
}

func contextualFeaturesFor(nodeType string) []string {
	switch nodeType {
	case "textBlock", "quoteBlock", "keyTakeawayBlock":
		return []string{"typography", "color", "link"}
	case "headingBlock":
		return []string{"typography", "headingLevel"}
	case "basicTable", "tableBlock":
		return []string{"tableStructure"}
	default:
		return nil
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
