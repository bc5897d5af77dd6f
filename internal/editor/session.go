// Package editor holds the in-memory editing session: the canonical document,
// per-node version counters, the selection/interaction state machine and the
// autosave scheduler. The session exclusively owns its document; every
// mutation goes through a session method and is atomic with respect to other
// mutations.
package editor

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AltKhyin/reviewcanvas/internal/document"
)

type Session struct {
	mu sync.Mutex

	reviewID     int64
	doc          *document.Document
	nodeVersions map[string]int
	dirty        bool
	// gen counts mutations; savers compare it against the generation of the
	// snapshot they persisted so an edit made during an in-flight save keeps
	// the session dirty.
	gen uint64

	selection   SelectionState
	interaction InteractionState

	// onDirty arms the autosave scheduler; set once by the owner.
	onDirty func()
}

func NewSession(reviewID int64, doc *document.Document) *Session {
	if doc == nil {
		doc = document.Empty()
	}
	if doc.Positions == nil {
		doc.Positions = document.PositionMap{}
	}
	if doc.MobilePositions == nil {
		doc.MobilePositions = document.PositionMap{}
	}
	return &Session{
		reviewID:     reviewID,
		doc:          doc,
		nodeVersions: map[string]int{},
	}
}

// SetDirtyHook registers the callback invoked after every dirty mutation.
func (s *Session) SetDirtyHook(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDirty = fn
}

func (s *Session) ReviewID() int64 { return s.reviewID }

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// MarkSaved clears the dirty flag after a successful persist, but only when
// no mutation landed after the persisted checkpoint was taken. A stale
// generation is a no-op and the session stays dirty.
func (s *Session) MarkSaved(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.dirty = false
	}
}

// Snapshot returns a deep copy of the document for rendering.
func (s *Session) Snapshot() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Checkpoint returns a deep copy of the document together with the mutation
// generation it was taken at, atomically. Savers hand the generation back to
// MarkSaved so edits racing the save are not lost.
func (s *Session) Checkpoint() (*document.Document, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone(), s.gen
}

func (s *Session) NodeVersion(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodeVersions[id]
}

// markDirty must be called with the lock held.
func (s *Session) markDirty() {
	s.dirty = true
	s.gen++
	s.doc.Metadata.UpdatedAt = time.Now().UTC()
	if s.onDirty != nil {
		s.onDirty()
	}
}

// AddNode creates a node of the given type with a generated id and a default
// content body at a viewport-centered position, and selects it exclusively.
func (s *Session) AddNode(nodeType string) document.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	node := document.Node{
		ID:   uuid.NewString(),
		Type: nodeType,
		Data: defaultDataFor(nodeType),
	}
	s.doc.Nodes = append(s.doc.Nodes, node)
	s.doc.Positions[node.ID] = s.centeredPosition()
	s.nodeVersions[node.ID] = 1

	s.selectExclusive(node.ID)
	s.markDirty()
	return node
}

// UpdateNodeData merges a partial attribute patch into the node's data bag,
// bumps its version counter and stamps the document. Unknown id is a no-op.
func (s *Session) UpdateNodeData(id string, patch map[string]any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	node := s.doc.NodeByID(id)
	if node == nil {
		return false
	}
	if node.Data == nil {
		node.Data = map[string]any{}
	}
	for k, v := range patch {
		if v == nil {
			delete(node.Data, k)
			continue
		}
		node.Data[k] = v
	}
	s.nodeVersions[id]++
	s.markDirty()
	return true
}

// MoveNode replaces the node's position for one viewport. Unknown id is a
// no-op.
func (s *Session) MoveNode(id string, pos document.Position, mobile bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.NodeByID(id) == nil {
		return false
	}
	if mobile {
		s.doc.MobilePositions[id] = pos
	} else {
		s.doc.Positions[id] = pos
	}
	s.nodeVersions[id]++
	s.markDirty()
	return true
}

// DeleteNode removes the node and cascades: both position maps, the version
// counter, every selection field and, when the node held focus or the active
// editor, the whole editing context. Editing context cannot outlive its node.
func (s *Session) DeleteNode(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.doc.NodeIndex(id)
	if idx < 0 {
		return false
	}
	s.doc.Nodes = append(s.doc.Nodes[:idx], s.doc.Nodes[idx+1:]...)
	delete(s.doc.Positions, id)
	delete(s.doc.MobilePositions, id)
	delete(s.nodeVersions, id)

	if s.selection.Primary == id {
		s.selection.Primary = ""
	}
	s.selection.Secondary = removeString(s.selection.Secondary, id)
	if s.selection.LastSelected == id {
		s.selection.LastSelected = ""
	}
	if s.interaction.FocusedBlockID == id || s.interaction.ActiveEditor.BlockID == id {
		s.interaction = InteractionState{}
	}

	s.markDirty()
	return true
}

// DuplicateNode copies the node under a fresh id, offsets both positions by a
// small delta and moves the selection to the copy.
func (s *Session) DuplicateNode(id string) (document.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.doc.NodeByID(id)
	if src == nil {
		return document.Node{}, false
	}
	copyNode := document.Node{
		ID:    uuid.NewString(),
		Type:  src.Type,
		Data:  deepCopyMap(src.Data),
		Extra: deepCopyMap(src.Extra),
	}
	s.doc.Nodes = append(s.doc.Nodes, copyNode)

	const offset = 24.0
	if pos, ok := s.doc.Positions[id]; ok {
		pos.X += offset
		pos.Y += offset
		s.doc.Positions[copyNode.ID] = pos
	}
	if pos, ok := s.doc.MobilePositions[id]; ok {
		pos.X += offset
		pos.Y += offset
		s.doc.MobilePositions[copyNode.ID] = pos
	}
	s.nodeVersions[copyNode.ID] = 1

	s.selectExclusive(copyNode.ID)
	s.markDirty()
	return copyNode, true
}

// centeredPosition computes the default placement for a new block: centered
// horizontally on the canvas, below the current lowest block.
func (s *Session) centeredPosition() document.Position {
	canvasWidth := s.doc.Canvas.CanvasWidth
	if canvasWidth <= 0 {
		canvasWidth = document.DefaultCanvasWidth
	}
	var maxBottom float64
	for _, pos := range s.doc.Positions {
		if bottom := pos.Y + pos.Height; bottom > maxBottom {
			maxBottom = bottom
		}
	}
	y := maxBottom
	if len(s.doc.Positions) > 0 {
		y += 24
	}
	return document.Position{
		X:      (canvasWidth - document.DefaultBlockWidth) / 2,
		Y:      y,
		Width:  document.DefaultBlockWidth,
		Height: document.DefaultBlockHeight,
	}
}

func defaultDataFor(nodeType string) map[string]any {
	switch nodeType {
	case document.TypeText:
		return map[string]any{"content": map[string]any{"tiptapJSON": nil, "htmlContent": "<p></p>"}}
	case document.TypeHeading:
		return map[string]any{"level": float64(2), "content": map[string]any{"tiptapJSON": nil, "htmlContent": "<h2></h2>"}}
	case document.TypeBasicTable:
		return map[string]any{"headers": []any{"", ""}, "rows": []any{[]any{"", ""}}}
	case document.TypePoll:
		return map[string]any{"question": "", "options": []any{}}
	default:
		return map[string]any{}
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, item := range list {
		if item != s {
			out = append(out, item)
		}
	}
	return out
}
