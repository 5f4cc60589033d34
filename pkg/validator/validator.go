// Package validator checks a solved plate layout for soft spatial
// problems the solver's objective doesn't guarantee away: same-label
// wells sitting next to each other, and samples bunching into one
// quadrant of the plate. Both checks only ever produce warnings — neither
// blocks a layout from being used.
package validator

import (
	"fmt"

	"github.com/biolabs/plateforge/pkg/design"
	"github.com/biolabs/plateforge/pkg/geometry"
)

// Validate runs every check against a layout and returns their combined
// violations, in a fixed order (adjacency first, then quadrant balance).
func Validate(layout design.PlateLayout) []design.ConstraintViolation {
	var out []design.ConstraintViolation
	out = append(out, CheckNoAdjacentSameGene(layout)...)
	out = append(out, CheckQuadrantBalance(layout)...)
	return out
}

// CheckNoAdjacentSameGene reports every unordered pair of wells carrying
// the same sample label that sit within Chebyshev distance 1 of each
// other (8-way adjacency, king's-move), each pair reported once.
func CheckNoAdjacentSameGene(layout design.PlateLayout) []design.ConstraintViolation {
	byPos := make(map[geometry.Position]design.LayoutWell, len(layout.Wells))
	for _, w := range layout.Wells {
		if w.ContentType != design.ContentSample {
			continue
		}
		byPos[geometry.Position{Row: w.Row, Col: w.Col}] = w
	}

	var violations []design.ConstraintViolation
	reported := make(map[[2]string]bool)

	for pos, w := range byPos {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				neighborPos := geometry.Position{Row: pos.Row + dr, Col: pos.Col + dc}
				neighbor, ok := byPos[neighborPos]
				if !ok || neighbor.Sample != w.Sample {
					continue
				}
				key := pairKey(w.Position, neighbor.Position)
				if reported[key] {
					continue
				}
				reported[key] = true
				violations = append(violations, design.ConstraintViolation{
					Constraint:  "no_adjacent_same_gene",
					Description: fmt.Sprintf("%s and %s both carry %s and are adjacent", w.Position, neighbor.Position, w.Sample),
					Severity:    design.SeverityWarning,
					Positions:   []string{w.Position, neighbor.Position},
				})
			}
		}
	}
	return violations
}

func pairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

// CheckQuadrantBalance splits the plate into four quadrants (by the
// row/column midpoints) and reports a single warning when the spread
// between the busiest and quietest occupied quadrant exceeds 5 sample
// wells, provided every quadrant holds at least one sample (an empty
// quadrant is a capacity-planning question, not a balance one).
func CheckQuadrantBalance(layout design.PlateLayout) []design.ConstraintViolation {
	rows, cols, err := geometry.Dimensions(layout.PlateKind)
	if err != nil {
		return nil
	}
	midRow := rows / 2
	midCol := cols / 2

	counts := [4]int{}
	positions := [4][]string{}
	for _, w := range layout.Wells {
		if w.ContentType != design.ContentSample {
			continue
		}
		q := quadrantOf(w.Row, w.Col, midRow, midCol)
		counts[q]++
		positions[q] = append(positions[q], w.Position)
	}

	min, max := counts[0], counts[0]
	for _, c := range counts {
		if c < min {
			min = c
		}
		if c > max {
			max = c
		}
	}
	if min == 0 || max-min <= 5 {
		return nil
	}

	var allPositions []string
	for _, p := range positions {
		allPositions = append(allPositions, p...)
	}
	return []design.ConstraintViolation{{
		Constraint:  "quadrant_balance",
		Description: fmt.Sprintf("quadrant sample counts %v span more than 5 (min=%d, max=%d)", counts, min, max),
		Severity:    design.SeverityWarning,
		Positions:   allPositions,
	}}
}

func quadrantOf(row, col, midRow, midCol int) int {
	top := row < midRow
	left := col < midCol
	switch {
	case top && left:
		return 0
	case top && !left:
		return 1
	case !top && left:
		return 2
	default:
		return 3
	}
}
