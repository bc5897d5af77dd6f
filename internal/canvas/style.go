package canvas

import "github.com/AltKhyin/reviewcanvas/internal/document"

// BlockStyle is the per-block custom styling resolved for one viewport.
// Resolving it in one place for both render modes is what keeps edit and
// display visually identical.
type BlockStyle struct {
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	BorderColor     string  `json:"borderColor,omitempty"`
	BorderWidth     float64 `json:"borderWidth,omitempty"`
	BorderRadius    float64 `json:"borderRadius,omitempty"`
	PaddingX        float64 `json:"paddingX"`
	PaddingY        float64 `json:"paddingY"`
}

// ResolveBlockStyle reads styling attributes off the node's data bag.
// Axis-specific padding may be overridden per viewport via the
// desktopPadding/mobilePadding sub-objects.
func ResolveBlockStyle(n document.Node, viewport Viewport) BlockStyle {
	style := BlockStyle{}
	data := n.Data
	if data == nil {
		return style
	}
	style.BackgroundColor, _ = data["backgroundColor"].(string)
	style.BorderColor, _ = data["borderColor"].(string)
	style.BorderWidth = floatAttr(data, "borderWidth")
	style.BorderRadius = floatAttr(data, "borderRadius")
	style.PaddingX = floatAttr(data, "paddingX")
	style.PaddingY = floatAttr(data, "paddingY")

	overrideKey := "desktopPadding"
	if viewport == ViewportMobile {
		overrideKey = "mobilePadding"
	}
	if override, ok := data[overrideKey].(map[string]any); ok {
		if _, has := override["x"]; has {
			style.PaddingX = floatAttr(override, "x")
		}
		if _, has := override["y"]; has {
			style.PaddingY = floatAttr(override, "y")
		}
	}
	return style
}

func floatAttr(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
