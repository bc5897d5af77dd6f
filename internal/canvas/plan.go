package canvas

import (
	"fmt"

	"github.com/AltKhyin/reviewcanvas/internal/document"
)

// BlockRender is one node's fully resolved rendering entry.
type BlockRender struct {
	ID    string     `json:"id"`
	Type  string     `json:"type"`
	Rect  RenderRect `json:"rect"`
	Style BlockStyle `json:"style"`
	// Unsupported marks a node type this build cannot render natively. It is
	// never an error: the node renders as an inert labeled placeholder and
	// its data stays untouched.
	Unsupported bool   `json:"unsupported,omitempty"`
	Label       string `json:"label,omitempty"`
}

// RenderPlan is the complete geometry for one document at one viewport.
type RenderPlan struct {
	Viewport     Viewport      `json:"viewport"`
	CanvasWidth  float64       `json:"canvasWidth"`
	CanvasHeight float64       `json:"canvasHeight"`
	Blocks       []BlockRender `json:"blocks"`
}

// PlanOptions tunes a render plan computation.
type PlanOptions struct {
	MobileCanvasWidth float64
	// ScaleFactor forces the factor for every block (thumbnailing).
	ScaleFactor *float64
}

// ComputeRenderPlan resolves geometry and styling for every node in document
// order. This is the single geometry path for the editable and the read-only
// surface; callers must not post-process the rects.
func ComputeRenderPlan(doc *document.Document, viewport Viewport, opts PlanOptions) RenderPlan {
	plan := RenderPlan{Viewport: viewport, Blocks: []BlockRender{}}
	if doc == nil {
		return plan
	}

	canvasWidth := doc.Canvas.CanvasWidth
	if canvasWidth <= 0 {
		canvasWidth = document.DefaultCanvasWidth
	}
	mobileWidth := opts.MobileCanvasWidth
	if mobileWidth <= 0 {
		mobileWidth = document.DefaultMobileCanvasWidth
	}
	narrow := viewport == ViewportMobile

	plan.CanvasWidth = canvasWidth
	if narrow {
		plan.CanvasWidth = mobileWidth
	}

	var maxBottom float64
	for _, n := range doc.Nodes {
		desktop, ok := doc.Positions[n.ID]
		if !ok {
			// A node without a desktop entry still renders; it gets default
			// dimensions at the origin rather than being dropped.
			desktop = document.Position{Width: document.DefaultBlockWidth, Height: document.DefaultBlockHeight}
		}
		var mobile *document.Position
		if mp, ok := doc.MobilePositions[n.ID]; ok {
			mobile = &mp
		}
		rect := ResolveGeometry(GeometryInput{
			Desktop:           desktop,
			Mobile:            mobile,
			CanvasWidth:       canvasWidth,
			MobileCanvasWidth: mobileWidth,
			NarrowViewport:    narrow,
			ScaleFactor:       opts.ScaleFactor,
		})
		entry := BlockRender{
			ID:    n.ID,
			Type:  n.Type,
			Rect:  rect,
			Style: ResolveBlockStyle(n, viewport),
		}
		if !document.KnownType(n.Type) {
			entry.Unsupported = true
			entry.Label = fmt.Sprintf("Unsupported block (%s)", n.Type)
		}
		plan.Blocks = append(plan.Blocks, entry)
		if bottom := rect.Y + rect.Height; bottom > maxBottom {
			maxBottom = bottom
		}
	}

	plan.CanvasHeight = maxBottom
	if plan.CanvasHeight <= 0 {
		plan.CanvasHeight = doc.Canvas.CanvasHeight
	}
	return plan
}
