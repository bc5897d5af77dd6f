package document

import (
	"encoding/json"
	"testing"
)

func mustDecode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return v
}

// Regression fixture: a backend path once reported unknown for valid v3
// payloads. A 2-node v3 document with both position maps populated must
// classify as (v3, 2, true, true).
func TestClassifyV3WithBothPositionMaps(t *testing.T) {
	payload := mustDecode(t, `{
		"version": "3.0.0",
		"nodes": [
			{"id": "a", "type": "textBlock", "data": {}},
			{"id": "b", "type": "headingBlock", "data": {}}
		],
		"positions": {
			"a": {"x": 0, "y": 0, "width": 600, "height": 120},
			"b": {"x": 0, "y": 140, "width": 600, "height": 80}
		},
		"mobilePositions": {
			"a": {"x": 0, "y": 0, "width": 375, "height": 150}
		}
	}`)

	c := Classify(payload)
	if c.Format != FormatV3 {
		t.Fatalf("format: want=%q got=%q", FormatV3, c.Format)
	}
	if c.NodeCount != 2 {
		t.Fatalf("node count: want=2 got=%d", c.NodeCount)
	}
	if !c.HasPositions {
		t.Fatalf("hasPositions: want=true got=false")
	}
	if !c.HasMobilePositions {
		t.Fatalf("hasMobilePositions: want=true got=false")
	}
}

func TestClassifyV3WinsOverLeftoverLayoutsKey(t *testing.T) {
	// Migration tooling leaves an empty layouts key behind; the v3 rule must
	// still win.
	payload := mustDecode(t, `{
		"version": "3.0.0",
		"nodes": [{"id": "a", "type": "textBlock", "data": {}}],
		"positions": {},
		"mobilePositions": {},
		"layouts": {}
	}`)

	c := Classify(payload)
	if c.Format != FormatV3 {
		t.Fatalf("format: want=%q got=%q", FormatV3, c.Format)
	}
	if c.HasPositions || c.HasMobilePositions {
		t.Fatalf("empty maps should report false, got positions=%v mobile=%v", c.HasPositions, c.HasMobilePositions)
	}
}

func TestClassifyV2ReportsLargerLayout(t *testing.T) {
	payload := mustDecode(t, `{
		"layouts": {
			"desktop": [{"id": "a"}, {"id": "b"}],
			"mobile": [{"id": "a"}, {"id": "b"}, {"id": "m"}]
		}
	}`)

	c := Classify(payload)
	if c.Format != FormatV2 {
		t.Fatalf("format: want=%q got=%q", FormatV2, c.Format)
	}
	if c.NodeCount != 3 {
		t.Fatalf("node count: want=3 got=%d", c.NodeCount)
	}
}

func TestClassifyV2EmptyDesktopStillV2(t *testing.T) {
	// An empty desktop array is truthy in the original reader.
	payload := mustDecode(t, `{"layouts": {"desktop": []}}`)

	c := Classify(payload)
	if c.Format != FormatV2 {
		t.Fatalf("format: want=%q got=%q", FormatV2, c.Format)
	}
	if c.NodeCount != 0 {
		t.Fatalf("node count: want=0 got=%d", c.NodeCount)
	}
}

func TestClassifyLegacyShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{"bare array", `[{"id": "a", "type": "textBlock", "position": {"x": 0, "y": 0}}]`, 1},
		{"blocks key", `{"blocks": [{"id": "a"}, {"id": "b"}]}`, 2},
		{"elements key", `{"elements": [{"id": "a"}]}`, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(mustDecode(t, tc.raw))
			if c.Format != FormatLegacy {
				t.Fatalf("format: want=%q got=%q", FormatLegacy, c.Format)
			}
			if c.NodeCount != tc.want {
				t.Fatalf("node count: want=%d got=%d", tc.want, c.NodeCount)
			}
			if c.HasPositions || c.HasMobilePositions {
				t.Fatalf("legacy must report no position maps")
			}
		})
	}
}

func TestClassifyUnknown(t *testing.T) {
	cases := []struct {
		name    string
		payload any
	}{
		{"nil", nil},
		{"empty object", map[string]any{}},
		{"wrong version", mustDecode(t, `{"version": "2.9.0", "nodes": []}`)},
		{"nodes not array", mustDecode(t, `{"version": "3.0.0", "nodes": {"a": 1}}`)},
		{"scalar", "hello"},
		{"empty bytes", []byte(nil)},
		{"malformed json", []byte(`{"version":`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(tc.payload)
			if c.Format != FormatUnknown {
				t.Fatalf("format: want=%q got=%q", FormatUnknown, c.Format)
			}
			if c.NodeCount != 0 || c.HasPositions || c.HasMobilePositions {
				t.Fatalf("unknown must zero all summary fields, got %+v", c)
			}
		})
	}
}

func TestClassifyAcceptsRawBytes(t *testing.T) {
	raw := []byte(`{"version": "3.0.0", "nodes": [], "positions": {}, "mobilePositions": {}}`)
	c := Classify(raw)
	if c.Format != FormatV3 {
		t.Fatalf("format: want=%q got=%q", FormatV3, c.Format)
	}
}
