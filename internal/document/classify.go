package document

import "encoding/json"

// Format identifies which generation a loaded payload belongs to.
type Format string

const (
	FormatV3      Format = "v3"
	FormatV2      Format = "v2"
	FormatLegacy  Format = "legacy"
	FormatUnknown Format = "unknown"
)

// Classification summarizes an inspected payload.
type Classification struct {
	Format             Format `json:"format"`
	NodeCount          int    `json:"nodeCount"`
	HasPositions       bool   `json:"hasPositions"`
	HasMobilePositions bool   `json:"hasMobilePositions"`
}

// Classify inspects an arbitrary loaded payload and determines its format.
// Pure, never panics; nil and unrecognized payloads classify as unknown.
//
// The rule order is load-bearing: a v3 document can carry an empty "layouts"
// key left over from migration tooling, so the v3 check must run before the
// v2 check or valid documents get misreported.
func Classify(payload any) Classification {
	payload = decodeRaw(payload)

	if m, ok := payload.(map[string]any); ok {
		if m["version"] == Version {
			if nodes, ok := m["nodes"].([]any); ok {
				return Classification{
					Format:             FormatV3,
					NodeCount:          len(nodes),
					HasPositions:       nonEmptyMap(m["positions"]),
					HasMobilePositions: nonEmptyMap(m["mobilePositions"]),
				}
			}
		}
		if layouts, ok := m["layouts"].(map[string]any); ok {
			desktop, hasDesktop := layouts["desktop"]
			mobile, hasMobile := layouts["mobile"]
			if (hasDesktop && truthy(desktop)) || (hasMobile && truthy(mobile)) {
				return Classification{
					Format:    FormatV2,
					NodeCount: maxInt(arrayLen(desktop), arrayLen(mobile)),
				}
			}
		}
		if blocks, ok := m["blocks"].([]any); ok {
			return Classification{Format: FormatLegacy, NodeCount: len(blocks)}
		}
		if elements, ok := m["elements"].([]any); ok {
			return Classification{Format: FormatLegacy, NodeCount: len(elements)}
		}
	}
	if arr, ok := payload.([]any); ok {
		return Classification{Format: FormatLegacy, NodeCount: len(arr)}
	}
	return Classification{Format: FormatUnknown}
}

// decodeRaw lets callers pass raw JSON bytes straight from storage.
func decodeRaw(payload any) any {
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

func nonEmptyMap(v any) bool {
	m, ok := v.(map[string]any)
	return ok && len(m) > 0
}

// truthy mirrors the loose check of the original reader: present, non-nil and
// not false/empty-string. An empty array still counts.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}

func arrayLen(v any) int {
	if arr, ok := v.([]any); ok {
		return len(arr)
	}
	return 0
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
