package migrate

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/AltKhyin/reviewcanvas/internal/document"
)

func tableDoc() *document.Document {
	d := document.Empty()
	d.Nodes = []document.Node{
		{ID: "t1", Type: document.TypeTable, Data: map[string]any{
			"htmlHeaders":          []any{"<b>Name</b>", "<b>Dose</b>"},
			"htmlRows":             []any{[]any{"<i>Aspirin</i>", "100mg"}},
			"caption":              "Dosing",
			"alternatingRowColors": true,
			"cellStyles":           map[string]any{"0:0": map[string]any{"bold": true}},
			"mergedCells":          []any{},
			"columnWidths":         []any{float64(120), float64(80)},
		}},
		{ID: "x1", Type: document.TypeText, Data: map[string]any{"content": map[string]any{}}},
	}
	d.Positions = document.PositionMap{
		"t1": {X: 0, Y: 0, Width: 600, Height: 300},
		"x1": {X: 0, Y: 320, Width: 600, Height: 120},
	}
	return d
}

func TestMigrateTableBlocksMapsDeprecatedVariant(t *testing.T) {
	doc := tableDoc()
	changed, stats := MigrateTableBlocks(doc)
	if !changed {
		t.Fatalf("changed: want=true got=false")
	}
	if stats.Migrated != 1 || stats.Scanned != 2 {
		t.Fatalf("stats: want migrated=1 scanned=2 got=%+v", stats)
	}
	if stats.DroppedFields != 3 {
		t.Fatalf("dropped fields: want=3 got=%d", stats.DroppedFields)
	}
	if stats.ComplexityReduction <= 0 {
		t.Fatalf("complexity reduction: want>0 got=%g", stats.ComplexityReduction)
	}

	node := doc.NodeByID("t1")
	if node.Type != document.TypeBasicTable {
		t.Fatalf("type: want=%q got=%q", document.TypeBasicTable, node.Type)
	}
	headers, _ := node.Data["headers"].([]any)
	if len(headers) != 2 || headers[0] != "Name" {
		t.Fatalf("headers not stripped/carried: %v", node.Data["headers"])
	}
	rows, _ := node.Data["rows"].([]any)
	if len(rows) != 1 {
		t.Fatalf("rows not carried: %v", node.Data["rows"])
	}
	row, _ := rows[0].([]any)
	if len(row) != 2 || row[0] != "Aspirin" {
		t.Fatalf("row cells: %v", row)
	}
	if node.Data["caption"] != "Dosing" {
		t.Fatalf("caption dropped")
	}
	if node.Data["striped"] != true {
		t.Fatalf("alternatingRowColors must map to striped")
	}
	if _, ok := node.Data["cellStyles"]; ok {
		t.Fatalf("unmappable fields must be dropped")
	}
}

func TestMigrateTableBlocksLeavesGeometryUntouched(t *testing.T) {
	doc := tableDoc()
	before := map[string]document.Position{}
	for id, p := range doc.Positions {
		before[id] = p
	}
	MigrateTableBlocks(doc)
	if !reflect.DeepEqual(map[string]document.Position(doc.Positions), before) {
		t.Fatalf("positions changed: before=%v after=%v", before, doc.Positions)
	}
}

func TestMigrateTableBlocksIdempotent(t *testing.T) {
	doc := tableDoc()
	MigrateTableBlocks(doc)
	once, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	changed, stats := MigrateTableBlocks(doc)
	if changed {
		t.Fatalf("second pass must be a no-op")
	}
	if stats.Migrated != 0 {
		t.Fatalf("second pass migrated: want=0 got=%d", stats.Migrated)
	}
	twice, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(once) != string(twice) {
		t.Fatalf("document drifted across idempotent passes")
	}
}

func TestMigrateTableBlocksStyledCellObjects(t *testing.T) {
	doc := document.Empty()
	doc.Nodes = []document.Node{{ID: "t", Type: document.TypeTable, Data: map[string]any{
		"headers": []any{"A"},
		"rows": []any{
			[]any{map[string]any{"text": "plain", "background": "#fff"}},
			[]any{map[string]any{"content": "fallback"}},
			[]any{float64(7)},
		},
	}}}
	doc.Positions = document.PositionMap{"t": {Width: 100, Height: 100}}

	MigrateTableBlocks(doc)
	rows, _ := doc.Nodes[0].Data["rows"].([]any)
	if len(rows) != 3 {
		t.Fatalf("rows: want=3 got=%d", len(rows))
	}
	first, _ := rows[0].([]any)
	if first[0] != "plain" {
		t.Fatalf("styled cell text: got=%v", first[0])
	}
	second, _ := rows[1].([]any)
	if second[0] != "fallback" {
		t.Fatalf("content fallback: got=%v", second[0])
	}
	third, _ := rows[2].([]any)
	if third[0] != "" {
		t.Fatalf("unmappable cell must collapse to empty string, got=%v", third[0])
	}
}

func TestMigrateTableBlocksNilDoc(t *testing.T) {
	changed, stats := MigrateTableBlocks(nil)
	if changed || stats.Scanned != 0 {
		t.Fatalf("nil doc: want no-op, got changed=%v stats=%+v", changed, stats)
	}
}
