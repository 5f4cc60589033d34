package validator

import (
	"testing"

	"github.com/biolabs/plateforge/pkg/design"
	"github.com/biolabs/plateforge/pkg/geometry"
)

func layoutFromGrid(t *testing.T, kind geometry.PlateKind, samples map[string]string) design.PlateLayout {
	t.Helper()
	rows, cols, err := geometry.Dimensions(kind)
	if err != nil {
		t.Fatal(err)
	}
	var wells []design.LayoutWell
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			pos := geometry.FormatPosition(r, c)
			if sample, ok := samples[pos]; ok {
				wells = append(wells, design.LayoutWell{
					Position: pos, Row: r, Col: c,
					ContentType: design.ContentSample, Sample: sample,
				})
				continue
			}
			wells = append(wells, design.LayoutWell{Position: pos, Row: r, Col: c, ContentType: design.ContentEmpty})
		}
	}
	return design.PlateLayout{PlateKind: kind, Wells: wells}
}

func TestCheckNoAdjacentSameGeneFindsKingsMoveNeighbors(t *testing.T) {
	l := layoutFromGrid(t, geometry.Plate96, map[string]string{
		"B02": "Gene1",
		"B03": "Gene1", // horizontally adjacent
		"C02": "Gene2",
	})
	violations := CheckNoAdjacentSameGene(l)
	if len(violations) != 1 {
		t.Fatalf("len(violations) = %d, want 1", len(violations))
	}
	if violations[0].Severity != design.SeverityWarning {
		t.Errorf("Severity = %v, want warning", violations[0].Severity)
	}
}

func TestCheckNoAdjacentSameGeneReportsEachPairOnce(t *testing.T) {
	l := layoutFromGrid(t, geometry.Plate96, map[string]string{
		"B02": "Gene1",
		"C03": "Gene1", // diagonally adjacent
	})
	violations := CheckNoAdjacentSameGene(l)
	if len(violations) != 1 {
		t.Fatalf("len(violations) = %d, want 1 (reported once, not twice)", len(violations))
	}
}

func TestCheckNoAdjacentSameGeneIgnoresNonAdjacentAndDifferentLabels(t *testing.T) {
	l := layoutFromGrid(t, geometry.Plate96, map[string]string{
		"A01": "Gene1",
		"A02": "Gene2",
		"H12": "Gene1",
	})
	if violations := CheckNoAdjacentSameGene(l); len(violations) != 0 {
		t.Fatalf("violations = %+v, want none", violations)
	}
}

func TestCheckQuadrantBalanceFlagsLargeSpread(t *testing.T) {
	samples := map[string]string{}
	// Pack 10 samples into the top-left quadrant (rows 0-3, cols 0-5 of a 96-well plate)
	// and place one sample in each other quadrant so every quadrant is non-empty.
	n := 0
	for r := 0; r < 4 && n < 10; r++ {
		for c := 0; c < 6 && n < 10; c++ {
			samples[geometry.FormatPosition(r, c)] = "GeneA"
			n++
		}
	}
	samples[geometry.FormatPosition(0, 6)] = "GeneB"
	samples[geometry.FormatPosition(4, 0)] = "GeneC"
	samples[geometry.FormatPosition(4, 6)] = "GeneD"

	l := layoutFromGrid(t, geometry.Plate96, samples)
	violations := CheckQuadrantBalance(l)
	if len(violations) != 1 {
		t.Fatalf("len(violations) = %d, want 1", len(violations))
	}
	if violations[0].Constraint != "quadrant_balance" {
		t.Errorf("Constraint = %q, want quadrant_balance", violations[0].Constraint)
	}
}

func TestCheckQuadrantBalanceIgnoresEmptyQuadrants(t *testing.T) {
	samples := map[string]string{
		"A01": "GeneA",
		"A02": "GeneA",
		"A03": "GeneA",
	}
	l := layoutFromGrid(t, geometry.Plate96, samples)
	// Three other quadrants are empty (count 0), so the rule doesn't apply.
	if violations := CheckQuadrantBalance(l); len(violations) != 0 {
		t.Fatalf("violations = %+v, want none when some quadrants are empty", violations)
	}
}

func TestCheckQuadrantBalanceAcceptsEvenSpread(t *testing.T) {
	samples := map[string]string{
		"A01": "GeneA", "A12": "GeneB",
		"H01": "GeneC", "H12": "GeneD",
	}
	l := layoutFromGrid(t, geometry.Plate96, samples)
	if violations := CheckQuadrantBalance(l); len(violations) != 0 {
		t.Fatalf("violations = %+v, want none for an even spread", violations)
	}
}
