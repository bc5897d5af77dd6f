// Package document defines the versioned structured-content shapes for the
// canvas editor and the single narrowing function that classifies an
// arbitrary loaded payload into one of the supported generations.
package document

import (
	"encoding/json"
	"time"
)

// Version is the canonical document version tag.
const Version = "3.0.0"

// EditorVersion is stamped into metadata of documents produced by this build.
const EditorVersion = "2.0.0"

// Canonical canvas defaults. Desktop positions are authored against
// DefaultCanvasWidth; mobile geometry without an explicit override is derived
// by uniform scale to DefaultMobileCanvasWidth.
const (
	DefaultCanvasWidth       = 800.0
	DefaultMobileCanvasWidth = 375.0
	DefaultGridColumns       = 12
	DefaultSnapTolerance     = 10.0

	DefaultBlockWidth  = 600.0
	DefaultBlockHeight = 120.0
)

// Node type tags. The set is closed-ish: unknown tags are legal and render as
// placeholders with their data preserved untouched.
const (
	TypeText        = "textBlock"
	TypeHeading     = "headingBlock"
	TypeImage       = "imageBlock"
	TypeVideoEmbed  = "videoEmbedBlock"
	TypeTable       = "tableBlock" // deprecated, migrated to basicTable
	TypeBasicTable  = "basicTable"
	TypePoll        = "pollBlock"
	TypeKeyTakeaway = "keyTakeawayBlock"
	TypeReference   = "referenceBlock"
	TypeSeparator   = "separatorBlock"
	TypeQuote       = "quoteBlock"
)

var knownTypes = map[string]bool{
	TypeText:        true,
	TypeHeading:     true,
	TypeImage:       true,
	TypeVideoEmbed:  true,
	TypeTable:       true,
	TypeBasicTable:  true,
	TypePoll:        true,
	TypeKeyTakeaway: true,
	TypeReference:   true,
	TypeSeparator:   true,
	TypeQuote:       true,
}

// KnownType reports whether t is a node type this build can render natively.
func KnownType(t string) bool { return knownTypes[t] }

// Node is one content unit of a document. Data is the type-specific attribute
// bag and is carried verbatim. Extra holds top-level fields written by newer
// editor builds; they round-trip through save/load untouched so no
// information is lost.
type Node struct {
	ID    string
	Type  string
	Data  map[string]any
	Extra map[string]any
}

func (n Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 3+len(n.Extra))
	for k, v := range n.Extra {
		out[k] = v
	}
	out["id"] = n.ID
	out["type"] = n.Type
	out["data"] = n.Data
	return json.Marshal(out)
}

func (n *Node) UnmarshalJSON(raw []byte) error {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	n.ID, _ = m["id"].(string)
	n.Type, _ = m["type"].(string)
	n.Data, _ = m["data"].(map[string]any)
	delete(m, "id")
	delete(m, "type")
	delete(m, "data")
	if len(m) > 0 {
		n.Extra = m
	} else {
		n.Extra = nil
	}
	return nil
}

// Position is a node's geometry in canonical desktop canvas units. Width and
// height are always positive; x/y may go negative only transiently during a
// drag and are clamped before persistence.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	ZIndex *int    `json:"zIndex,omitempty"`
}

// PositionMap maps node id to Position. The desktop map is authoritative; the
// mobile map is sparse and absence means "scale the desktop position".
type PositionMap map[string]Position

// Canvas holds authoring-time grid/snap configuration. Not required for
// rendering correctness.
type Canvas struct {
	CanvasWidth   float64 `json:"canvasWidth"`
	CanvasHeight  float64 `json:"canvasHeight"`
	GridColumns   int     `json:"gridColumns"`
	SnapTolerance float64 `json:"snapTolerance"`
}

type Metadata struct {
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	EditorVersion string    `json:"editorVersion"`
}

// Document is the canonical (V3) shape. Legacy and V2 payloads are accepted
// on read and lifted by the migrate package.
type Document struct {
	Version         string      `json:"version"`
	Nodes           []Node      `json:"nodes"`
	Positions       PositionMap `json:"positions"`
	MobilePositions PositionMap `json:"mobilePositions"`
	Canvas          Canvas      `json:"canvas"`
	Metadata        Metadata    `json:"metadata"`
}

// Empty returns a renderable empty canonical document.
func Empty() *Document {
	now := time.Now().UTC()
	return &Document{
		Version:         Version,
		Nodes:           []Node{},
		Positions:       PositionMap{},
		MobilePositions: PositionMap{},
		Canvas: Canvas{
			CanvasWidth:   DefaultCanvasWidth,
			GridColumns:   DefaultGridColumns,
			SnapTolerance: DefaultSnapTolerance,
		},
		Metadata: Metadata{
			CreatedAt:     now,
			UpdatedAt:     now,
			EditorVersion: EditorVersion,
		},
	}
}

// Clone returns a deep copy via JSON round-trip. Node data bags hold only
// JSON-representable values, so the round-trip is lossless.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return &out
}

// NodeIndex returns the index of id in document node order, or -1.
func (d *Document) NodeIndex(id string) int {
	for i, n := range d.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// NodeByID returns a pointer into d.Nodes, or nil.
func (d *Document) NodeByID(id string) *Node {
	if i := d.NodeIndex(id); i >= 0 {
		return &d.Nodes[i]
	}
	return nil
}
