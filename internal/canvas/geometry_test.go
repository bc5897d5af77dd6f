package canvas

import (
	"testing"

	"github.com/AltKhyin/reviewcanvas/internal/document"
	"github.com/AltKhyin/reviewcanvas/internal/pkg/pointers"
)

func TestResolveGeometryDesktopIsIdentity(t *testing.T) {
	rect := ResolveGeometry(GeometryInput{
		Desktop:           document.Position{X: 40, Y: 80, Width: 600, Height: 120},
		CanvasWidth:       800,
		MobileCanvasWidth: 375,
	})
	if rect.X != 40 || rect.Y != 80 || rect.Width != 600 || rect.Height != 120 {
		t.Fatalf("desktop rect must be unscaled: %+v", rect)
	}
}

func TestResolveGeometryNarrowScalesDesktopPosition(t *testing.T) {
	in := GeometryInput{
		Desktop:           document.Position{X: 80, Y: 160, Width: 400, Height: 200},
		CanvasWidth:       800,
		MobileCanvasWidth: 375,
		NarrowViewport:    true,
	}
	f := ResolveScaleFactor(in)
	want := 375.0 / 800.0
	if f != want {
		t.Fatalf("scale factor: want=%g got=%g", want, f)
	}
	rect := ResolveGeometry(in)
	if rect.X != 80*want || rect.Width != 400*want {
		t.Fatalf("narrow rect not scaled: %+v", rect)
	}
}

func TestResolveGeometryMobileAuthoredPositionUnscaled(t *testing.T) {
	in := GeometryInput{
		Desktop:           document.Position{X: 80, Y: 160, Width: 400, Height: 200},
		Mobile:            &document.Position{X: 10, Y: 20, Width: 355, Height: 260},
		CanvasWidth:       800,
		MobileCanvasWidth: 375,
		NarrowViewport:    true,
	}
	if f := ResolveScaleFactor(in); f != 1 {
		t.Fatalf("mobile-authored position must not be rescaled, factor=%g", f)
	}
	rect := ResolveGeometry(in)
	if rect.X != 10 || rect.Width != 355 || rect.Height != 260 {
		t.Fatalf("mobile-authored rect: %+v", rect)
	}
}

func TestResolveGeometryExplicitFactorWinsVerbatim(t *testing.T) {
	in := GeometryInput{
		Desktop:           document.Position{X: 100, Y: 100, Width: 200, Height: 100},
		Mobile:            &document.Position{X: 0, Y: 0, Width: 375, Height: 100},
		CanvasWidth:       800,
		MobileCanvasWidth: 375,
		ScaleFactor:       pointers.Float64(0.25),
	}
	rect := ResolveGeometry(in)
	if rect.X != 25 || rect.Width != 50 {
		t.Fatalf("explicit factor not applied verbatim: %+v", rect)
	}
}

// Doubling both canvas widths proportionally leaves the factor unchanged.
func TestResolveScaleFactorIsScaleLinear(t *testing.T) {
	base := GeometryInput{CanvasWidth: 800, MobileCanvasWidth: 375, NarrowViewport: true}
	doubled := GeometryInput{CanvasWidth: 1600, MobileCanvasWidth: 750, NarrowViewport: true}
	if ResolveScaleFactor(base) != ResolveScaleFactor(doubled) {
		t.Fatalf("scale factor must be invariant under proportional width changes: %g vs %g",
			ResolveScaleFactor(base), ResolveScaleFactor(doubled))
	}
}

func TestResolveGeometryZeroCanvasWidthFallsBackToIdentity(t *testing.T) {
	in := GeometryInput{
		Desktop:           document.Position{Width: 100, Height: 100},
		CanvasWidth:       0,
		MobileCanvasWidth: 375,
		NarrowViewport:    true,
	}
	if f := ResolveScaleFactor(in); f != 1 {
		t.Fatalf("zero canvas width: want factor 1, got %g", f)
	}
}

func TestResolveGeometryCarriesZIndex(t *testing.T) {
	rect := ResolveGeometry(GeometryInput{
		Desktop:     document.Position{Width: 10, Height: 10, ZIndex: pointers.Int(7)},
		CanvasWidth: 800,
	})
	if rect.ZIndex != 7 {
		t.Fatalf("zIndex: want=7 got=%d", rect.ZIndex)
	}
}
