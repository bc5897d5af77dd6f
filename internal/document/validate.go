package document

import (
	"fmt"

	pkgerrors "github.com/AltKhyin/reviewcanvas/internal/pkg/errors"
)

// Validate checks the document model invariants before a save and after a
// load: version tag present, node ids unique and non-empty, node types
// non-empty, every position entry with positive dimensions, and position-map
// keys referring to nodes that exist. Violations are fatal and never coerced.
func Validate(d *Document) error {
	if d == nil {
		return fmt.Errorf("%w: document is nil", pkgerrors.ErrValidation)
	}
	if d.Version != Version {
		return fmt.Errorf("%w: unexpected version tag %q", pkgerrors.ErrValidation, d.Version)
	}
	seen := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node %d has empty id", pkgerrors.ErrValidation, i)
		}
		if seen[n.ID] {
			return fmt.Errorf("%w: duplicate node id %q", pkgerrors.ErrValidation, n.ID)
		}
		seen[n.ID] = true
		if n.Type == "" {
			return fmt.Errorf("%w: node %q has empty type", pkgerrors.ErrValidation, n.ID)
		}
	}
	if err := validatePositions(d.Positions, seen, "positions"); err != nil {
		return err
	}
	return validatePositions(d.MobilePositions, seen, "mobilePositions")
}

func validatePositions(pm PositionMap, nodes map[string]bool, label string) error {
	for id, pos := range pm {
		if !nodes[id] {
			return fmt.Errorf("%w: %s entry %q has no matching node", pkgerrors.ErrValidation, label, id)
		}
		if pos.Width <= 0 || pos.Height <= 0 {
			return fmt.Errorf("%w: %s entry %q has non-positive dimensions (%gx%g)",
				pkgerrors.ErrValidation, label, id, pos.Width, pos.Height)
		}
	}
	return nil
}
