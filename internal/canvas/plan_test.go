package canvas

import (
	"reflect"
	"testing"

	"github.com/AltKhyin/reviewcanvas/internal/document"
)

func planDoc() *document.Document {
	d := document.Empty()
	d.Nodes = []document.Node{
		{ID: "a", Type: document.TypeText, Data: map[string]any{
			"backgroundColor": "#f8f8f8",
			"paddingX":        float64(16),
			"paddingY":        float64(8),
			"mobilePadding":   map[string]any{"x": float64(8)},
		}},
		{ID: "b", Type: "hologramBlock", Data: map[string]any{"depth": float64(3)}},
	}
	d.Positions = document.PositionMap{
		"a": {X: 100, Y: 0, Width: 600, Height: 120},
		"b": {X: 100, Y: 160, Width: 600, Height: 240},
	}
	return d
}

func TestComputeRenderPlanDesktop(t *testing.T) {
	plan := ComputeRenderPlan(planDoc(), ViewportDesktop, PlanOptions{})
	if len(plan.Blocks) != 2 {
		t.Fatalf("block count: want=2 got=%d", len(plan.Blocks))
	}
	if plan.CanvasWidth != document.DefaultCanvasWidth {
		t.Fatalf("canvas width: want=%g got=%g", document.DefaultCanvasWidth, plan.CanvasWidth)
	}
	if plan.CanvasHeight != 400 {
		t.Fatalf("canvas height: want=400 got=%g", plan.CanvasHeight)
	}
	if plan.Blocks[0].Style.PaddingX != 16 {
		t.Fatalf("desktop padding: want=16 got=%g", plan.Blocks[0].Style.PaddingX)
	}
}

func TestComputeRenderPlanMobileAppliesOverrides(t *testing.T) {
	plan := ComputeRenderPlan(planDoc(), ViewportMobile, PlanOptions{})
	f := document.DefaultMobileCanvasWidth / document.DefaultCanvasWidth
	first := plan.Blocks[0]
	if first.Rect.X != 100*f || first.Rect.Width != 600*f {
		t.Fatalf("mobile rect not scaled: %+v", first.Rect)
	}
	if first.Style.PaddingX != 8 {
		t.Fatalf("mobilePadding.x override: want=8 got=%g", first.Style.PaddingX)
	}
	if first.Style.PaddingY != 8 {
		t.Fatalf("unoverridden axis must keep base padding: got=%g", first.Style.PaddingY)
	}
	if plan.CanvasWidth != document.DefaultMobileCanvasWidth {
		t.Fatalf("canvas width: want=%g got=%g", document.DefaultMobileCanvasWidth, plan.CanvasWidth)
	}
}

// The read-only surface is a structural mirror of the editable one: the same
// document and viewport must always produce an identical plan, regardless of
// which caller asks for it.
func TestComputeRenderPlanDeterministicParity(t *testing.T) {
	doc := planDoc()
	editable := ComputeRenderPlan(doc, ViewportMobile, PlanOptions{})
	readonly := ComputeRenderPlan(doc, ViewportMobile, PlanOptions{})
	if !reflect.DeepEqual(editable, readonly) {
		t.Fatalf("plans diverge between render modes:\neditable=%+v\nreadonly=%+v", editable, readonly)
	}
}

func TestComputeRenderPlanUnsupportedNodeBecomesPlaceholder(t *testing.T) {
	plan := ComputeRenderPlan(planDoc(), ViewportDesktop, PlanOptions{})
	entry := plan.Blocks[1]
	if !entry.Unsupported {
		t.Fatalf("hologramBlock must be flagged unsupported")
	}
	if entry.Label == "" {
		t.Fatalf("unsupported entry must carry a placeholder label")
	}
	if entry.Rect.Width != 600 {
		t.Fatalf("unsupported entry keeps its geometry: %+v", entry.Rect)
	}
}

func TestComputeRenderPlanMissingPositionGetsDefaultRect(t *testing.T) {
	doc := planDoc()
	doc.Nodes = append(doc.Nodes, document.Node{ID: "c", Type: document.TypeSeparator, Data: map[string]any{}})
	plan := ComputeRenderPlan(doc, ViewportDesktop, PlanOptions{})
	last := plan.Blocks[len(plan.Blocks)-1]
	if last.Rect.Width != document.DefaultBlockWidth || last.Rect.Height != document.DefaultBlockHeight {
		t.Fatalf("missing position must fall back to defaults: %+v", last.Rect)
	}
}

func TestComputeRenderPlanNilDocument(t *testing.T) {
	plan := ComputeRenderPlan(nil, ViewportDesktop, PlanOptions{})
	if len(plan.Blocks) != 0 {
		t.Fatalf("nil document must produce an empty plan")
	}
}
