package document

import (
	"encoding/json"
	"errors"
	"testing"

	pkgerrors "github.com/AltKhyin/reviewcanvas/internal/pkg/errors"
)

func validDoc() *Document {
	d := Empty()
	d.Nodes = []Node{
		{ID: "a", Type: TypeText, Data: map[string]any{}},
		{ID: "b", Type: TypeHeading, Data: map[string]any{"level": float64(2)}},
	}
	d.Positions = PositionMap{
		"a": {X: 0, Y: 0, Width: 600, Height: 120},
		"b": {X: 0, Y: 140, Width: 600, Height: 80},
	}
	return d
}

func TestValidateAcceptsCanonicalDocument(t *testing.T) {
	if err := Validate(validDoc()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Document)
	}{
		{"missing version", func(d *Document) { d.Version = "" }},
		{"duplicate node id", func(d *Document) { d.Nodes[1].ID = "a" }},
		{"empty node id", func(d *Document) { d.Nodes[0].ID = "" }},
		{"empty node type", func(d *Document) { d.Nodes[0].Type = "" }},
		{"zero width", func(d *Document) {
			p := d.Positions["a"]
			p.Width = 0
			d.Positions["a"] = p
		}},
		{"negative height", func(d *Document) {
			p := d.Positions["b"]
			p.Height = -10
			d.Positions["b"] = p
		}},
		{"orphan position entry", func(d *Document) {
			d.Positions["ghost"] = Position{Width: 100, Height: 100}
		}},
		{"orphan mobile entry", func(d *Document) {
			d.MobilePositions["ghost"] = Position{Width: 100, Height: 100}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDoc()
			tc.mutate(d)
			err := Validate(d)
			if err == nil {
				t.Fatalf("Validate: expected error")
			}
			if !errors.Is(err, pkgerrors.ErrValidation) {
				t.Fatalf("Validate: want ErrValidation, got %v", err)
			}
		})
	}
}

func TestValidateNil(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, pkgerrors.ErrValidation) {
		t.Fatalf("Validate(nil): want ErrValidation, got %v", err)
	}
}

// Fields written by a newer editor build must survive a save/load round trip
// untouched so a future migration can still act on them.
func TestNodeUnknownFieldsRoundTrip(t *testing.T) {
	raw := []byte(`{"id":"a","type":"hologramBlock","data":{"depth":3},"renderHints":{"shader":"v2"},"pinned":true}`)

	var n Node
	if err := json.Unmarshal(raw, &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n.ID != "a" || n.Type != "hologramBlock" {
		t.Fatalf("core fields: got id=%q type=%q", n.ID, n.Type)
	}
	if n.Extra == nil || n.Extra["pinned"] != true {
		t.Fatalf("extra fields not captured: %+v", n.Extra)
	}

	out, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if back["pinned"] != true {
		t.Fatalf("pinned dropped on round trip: %v", back)
	}
	hints, ok := back["renderHints"].(map[string]any)
	if !ok || hints["shader"] != "v2" {
		t.Fatalf("renderHints dropped on round trip: %v", back)
	}
	if KnownType(n.Type) {
		t.Fatalf("hologramBlock must not be a known type")
	}
}
