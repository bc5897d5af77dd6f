// Package migrate lifts legacy and v2 payloads into the canonical v3 shape
// and rewrites deprecated block variants into their successors.
package migrate

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/AltKhyin/reviewcanvas/internal/document"
)

// Report describes what a canonical lift did to the payload.
type Report struct {
	SourceFormat document.Format `json:"sourceFormat"`
	// MobileOnlyNodeIDs lists v2 blocks that existed only in the mobile
	// layout. Their mobile position is duplicated into the desktop map so
	// desktop rendering cannot crash; they need manual reconciliation.
	MobileOnlyNodeIDs []string `json:"mobileOnlyNodeIds,omitempty"`
	// GeneratedIDs counts blocks that arrived without an id.
	GeneratedIDs int `json:"generatedIds,omitempty"`
}

// ToCanonical lifts a classified payload into a v3 document. It never fails:
// unrecognized payloads degrade to an empty canonical document so the editor
// always has something renderable.
func ToCanonical(payload any, c document.Classification) (*document.Document, Report) {
	payload = decodePayload(payload)
	report := Report{SourceFormat: c.Format}
	switch c.Format {
	case document.FormatV3:
		if doc := decodeV3(payload); doc != nil {
			return doc, report
		}
		return document.Empty(), report
	case document.FormatV2:
		return fromV2(payload, &report), report
	case document.FormatLegacy:
		return fromLegacy(payload, &report), report
	default:
		return document.Empty(), report
	}
}

func decodeV3(payload any) *document.Document {
	raw, ok := payloadBytes(payload)
	if !ok {
		return nil
	}
	var doc document.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	if doc.Positions == nil {
		doc.Positions = document.PositionMap{}
	}
	if doc.MobilePositions == nil {
		doc.MobilePositions = document.PositionMap{}
	}
	if doc.Nodes == nil {
		doc.Nodes = []document.Node{}
	}
	if doc.Canvas.CanvasWidth <= 0 {
		doc.Canvas.CanvasWidth = document.DefaultCanvasWidth
	}
	return &doc
}

func fromLegacy(payload any, report *Report) *document.Document {
	doc := document.Empty()
	for _, raw := range legacyBlocks(payload) {
		block, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		node, pos := liftBlock(block, report)
		doc.Nodes = append(doc.Nodes, node)
		doc.Positions[node.ID] = pos
	}
	return doc
}

func fromV2(payload any, report *Report) *document.Document {
	doc := document.Empty()
	m, ok := payload.(map[string]any)
	if !ok {
		return doc
	}
	layouts, ok := m["layouts"].(map[string]any)
	if !ok {
		return doc
	}

	desktop, _ := layouts["desktop"].([]any)
	for _, raw := range desktop {
		block, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		node, pos := liftBlock(block, report)
		doc.Nodes = append(doc.Nodes, node)
		doc.Positions[node.ID] = pos
	}

	mobile, _ := layouts["mobile"].([]any)
	for _, raw := range mobile {
		block, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		node, pos := liftBlock(block, report)
		if doc.NodeIndex(node.ID) >= 0 {
			doc.MobilePositions[node.ID] = pos
			continue
		}
		// Mobile-only block: appended with its position also inserted into
		// the desktop map, and flagged for manual review. Known lossy edge.
		doc.Nodes = append(doc.Nodes, node)
		doc.Positions[node.ID] = pos
		doc.MobilePositions[node.ID] = pos
		report.MobileOnlyNodeIDs = append(report.MobileOnlyNodeIDs, node.ID)
	}
	return doc
}

// liftBlock splits a self-positioned block into a node plus a position entry.
// Blocks wrote geometry either as flat x/y/width/height keys or as nested
// position/dimensions maps, depending on editor vintage.
func liftBlock(block map[string]any, report *Report) (document.Node, document.Position) {
	node := document.Node{}
	node.ID, _ = block["id"].(string)
	if node.ID == "" {
		node.ID = uuid.NewString()
		report.GeneratedIDs++
	}
	node.Type, _ = block["type"].(string)
	if node.Type == "" {
		node.Type = document.TypeText
	}
	if data, ok := block["data"].(map[string]any); ok {
		node.Data = data
	} else {
		node.Data = map[string]any{}
	}

	pos := document.Position{
		X:      numField(block, "x"),
		Y:      numField(block, "y"),
		Width:  numField(block, "width"),
		Height: numField(block, "height"),
	}
	if nested, ok := block["position"].(map[string]any); ok {
		pos.X = numField(nested, "x")
		pos.Y = numField(nested, "y")
		if w := numField(nested, "width"); w > 0 {
			pos.Width = w
		}
		if h := numField(nested, "height"); h > 0 {
			pos.Height = h
		}
	}
	if dims, ok := block["dimensions"].(map[string]any); ok {
		if w := numField(dims, "width"); w > 0 {
			pos.Width = w
		}
		if h := numField(dims, "height"); h > 0 {
			pos.Height = h
		}
	}
	if pos.Width <= 0 {
		pos.Width = document.DefaultBlockWidth
	}
	if pos.Height <= 0 {
		pos.Height = document.DefaultBlockHeight
	}
	return node, pos
}

func legacyBlocks(payload any) []any {
	if arr, ok := payload.([]any); ok {
		return arr
	}
	m, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	if blocks, ok := m["blocks"].([]any); ok {
		return blocks
	}
	if elements, ok := m["elements"].([]any); ok {
		return elements
	}
	return nil
}

func numField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}

// decodePayload accepts raw JSON straight from storage alongside
// already-decoded values.
func decodePayload(payload any) any {
	var raw []byte
	switch v := payload.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		return payload
	}
	if len(raw) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	return decoded
}

func payloadBytes(payload any) ([]byte, bool) {
	switch v := payload.(type) {
	case []byte:
		return v, len(v) > 0
	case json.RawMessage:
		return v, len(v) > 0
	default:
		raw, err := json.Marshal(payload)
		return raw, err == nil
	}
}
