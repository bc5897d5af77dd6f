// Package canvas computes render geometry and resolved block styling for the
// editor. The editable renderer and the read-only renderer both go through
// ComputeRenderPlan with identical inputs, which is what guarantees that what
// an author sees while editing is pixel-identical to what a reader sees.
package canvas

import "github.com/AltKhyin/reviewcanvas/internal/document"

// Viewport selects which position map and style overrides apply.
type Viewport string

const (
	ViewportDesktop Viewport = "desktop"
	ViewportMobile  Viewport = "mobile"
)

// RenderRect is a node's final geometry in rendering units.
type RenderRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	ZIndex int     `json:"zIndex"`
}

// GeometryInput carries everything needed to place one node.
type GeometryInput struct {
	Desktop document.Position
	// Mobile is the viewport-authored override, nil when mobile geometry is
	// derived from the desktop position by uniform scale.
	Mobile            *document.Position
	CanvasWidth       float64
	MobileCanvasWidth float64
	NarrowViewport    bool
	// ScaleFactor forces a caller-chosen factor, e.g. for thumbnailing at
	// arbitrary widths. Used verbatim when set.
	ScaleFactor *float64
}

// ResolveScaleFactor returns the multiplier converting the chosen position
// into rendering units.
func ResolveScaleFactor(in GeometryInput) float64 {
	if in.ScaleFactor != nil {
		return *in.ScaleFactor
	}
	if in.NarrowViewport && in.Mobile == nil {
		if in.CanvasWidth <= 0 {
			return 1
		}
		return in.MobileCanvasWidth / in.CanvasWidth
	}
	// Desktop viewport, or a mobile-authored position already expressed in
	// mobile units.
	return 1
}

// ResolveGeometry places one node. Both render modes call this with the same
// inputs for a given node/viewport; any divergence here shows up as drift
// between editing and display.
func ResolveGeometry(in GeometryInput) RenderRect {
	pos := in.Desktop
	if in.NarrowViewport && in.Mobile != nil {
		pos = *in.Mobile
	}
	f := ResolveScaleFactor(in)
	rect := RenderRect{
		X:      pos.X * f,
		Y:      pos.Y * f,
		Width:  pos.Width * f,
		Height: pos.Height * f,
	}
	if pos.ZIndex != nil {
		rect.ZIndex = *pos.ZIndex
	}
	return rect
}
