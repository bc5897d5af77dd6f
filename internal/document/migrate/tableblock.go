package migrate

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/AltKhyin/reviewcanvas/internal/document"
)

// TableStats reports what a table-block migration pass did.
type TableStats struct {
	Scanned  int `json:"scanned"`
	Migrated int `json:"migrated"`
	// DroppedFields counts deprecated sub-fields with no successor mapping
	// (per-cell styling, merged cells, column sizing).
	DroppedFields int `json:"droppedFields"`
	// ComplexityReduction averages 1 - successorBytes/deprecatedBytes across
	// migrated nodes.
	ComplexityReduction float64 `json:"complexityReduction"`
}

// Deprecated table sub-fields that map structurally onto basicTable.
var tableCarriedFields = map[string]bool{
	"headers":              true,
	"htmlHeaders":          true,
	"rows":                 true,
	"htmlRows":             true,
	"caption":              true,
	"alternatingRowColors": true,
	"sortable":             true,
}

var tagRE = regexp.MustCompile(`<[^>]*>`)

// MigrateTableBlocks rewrites every deprecated tableBlock node into a
// normalized basicTable in place, without touching geometry. Idempotent:
// nodes already on basicTable are no-ops, so a second pass changes nothing.
func MigrateTableBlocks(doc *document.Document) (bool, TableStats) {
	var stats TableStats
	if doc == nil {
		return false, stats
	}
	changed := false
	var reductions []float64
	for i := range doc.Nodes {
		stats.Scanned++
		node := &doc.Nodes[i]
		if node.Type != document.TypeTable {
			continue
		}
		oldBytes := dataBytes(node.Data)
		newData, dropped := liftTableData(node.Data)
		node.Type = document.TypeBasicTable
		node.Data = newData
		stats.Migrated++
		stats.DroppedFields += dropped
		if oldBytes > 0 {
			newBytes := dataBytes(newData)
			r := 1 - float64(newBytes)/float64(oldBytes)
			if r < 0 {
				r = 0
			}
			reductions = append(reductions, r)
		}
		changed = true
	}
	if len(reductions) > 0 {
		var sum float64
		for _, r := range reductions {
			sum += r
		}
		stats.ComplexityReduction = sum / float64(len(reductions))
	}
	return changed, stats
}

// liftTableData maps a deprecated free-form table attribute bag onto the
// basicTable schema. Best effort: headers and rows are carried (falling back
// to stripped HTML variants), presentation toggles are renamed, everything
// else is dropped and counted.
func liftTableData(old map[string]any) (map[string]any, int) {
	out := map[string]any{
		"headers": []any{},
		"rows":    []any{},
	}
	if old == nil {
		return out, 0
	}

	headers := stringList(old["headers"])
	if len(headers) == 0 {
		headers = stripTagsList(stringList(old["htmlHeaders"]))
	}
	out["headers"] = toAnyList(headers)

	rows := rowList(old["rows"])
	if len(rows) == 0 {
		rows = stripTagsRows(rowList(old["htmlRows"]))
	}
	out["rows"] = rowsToAny(rows)

	if caption, ok := old["caption"].(string); ok && caption != "" {
		out["caption"] = caption
	}
	if striped, ok := old["alternatingRowColors"].(bool); ok {
		out["striped"] = striped
	}
	if sortable, ok := old["sortable"].(bool); ok {
		out["sortable"] = sortable
	}

	dropped := 0
	for k := range old {
		if !tableCarriedFields[k] {
			dropped++
		}
	}
	return out, dropped
}

func stringList(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func rowList(v any) [][]string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([][]string, 0, len(arr))
	for _, item := range arr {
		cells, ok := item.([]any)
		if !ok {
			continue
		}
		row := make([]string, 0, len(cells))
		for _, c := range cells {
			switch cell := c.(type) {
			case string:
				row = append(row, cell)
			case map[string]any:
				// Styled cell objects collapse to their text content.
				if s, ok := cell["text"].(string); ok {
					row = append(row, s)
				} else if s, ok := cell["content"].(string); ok {
					row = append(row, s)
				} else {
					row = append(row, "")
				}
			default:
				row = append(row, "")
			}
		}
		out = append(out, row)
	}
	return out
}

func stripTags(s string) string {
	return strings.TrimSpace(tagRE.ReplaceAllString(s, ""))
}

func stripTagsList(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = stripTags(s)
	}
	return out
}

func stripTagsRows(in [][]string) [][]string {
	out := make([][]string, len(in))
	for i, row := range in {
		out[i] = stripTagsList(row)
	}
	return out
}

func toAnyList(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func rowsToAny(in [][]string) []any {
	out := make([]any, len(in))
	for i, row := range in {
		out[i] = toAnyList(row)
	}
	return out
}

func dataBytes(data map[string]any) int {
	raw, err := json.Marshal(data)
	if err != nil {
		return 0
	}
	return len(raw)
}
