package design

import (
	"fmt"

	"github.com/biolabs/plateforge/pkg/common"
)

// SourceWell is one occupied well of a source plate: a position, the
// sample it carries, and optional volume/concentration metadata.
type SourceWell struct {
	Position        string
	Sample          string
	VolumeUL        *float64
	ConcentrationUM *float64
}

// SourcePlate is a barcode plus its ordered collection of source wells.
// Positions within a plate are unique; a sample label may repeat across
// wells.
type SourcePlate struct {
	Barcode string
	Wells   []SourceWell
}

// Validate checks the position-uniqueness invariant.
func (p SourcePlate) Validate() error {
	seen := make(map[string]bool, len(p.Wells))
	for _, w := range p.Wells {
		if seen[w.Position] {
			return fmt.Errorf("%w: duplicate source well position %q on plate %q", common.ErrInvalidDesign, w.Position, p.Barcode)
		}
		seen[w.Position] = true
	}
	return nil
}

// FirstWellForSample returns the first source well (in plate order)
// carrying the given sample label, used for source-well attribution.
func (p SourcePlate) FirstWellForSample(sample string) (SourceWell, bool) {
	for _, w := range p.Wells {
		if w.Sample == sample {
			return w, true
		}
	}
	return SourceWell{}, false
}

// Samples returns the distinct sample labels present on the plate, in
// first-occurrence order.
func (p SourcePlate) Samples() []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range p.Wells {
		if w.Sample == "" || seen[w.Sample] {
			continue
		}
		seen[w.Sample] = true
		out = append(out, w.Sample)
	}
	return out
}
