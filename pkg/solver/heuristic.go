package solver

import (
	"math"

	"github.com/biolabs/plateforge/pkg/geometry"
)

// goldenRatio drives the deterministic scramble used to scatter instances
// across the plate before the spiral search below nudges each one onto a
// free, non-adjacent well. Using the golden ratio keeps successive targets
// from clustering the way a linear or low-period scramble would.
const goldenRatio = 1.618033988749895

// placement is a resolved (row, col) for one placed unit, whether it came
// from the CP engine or from the heuristic below.
type placement struct {
	row, col int
}

// scrambleTarget returns the deterministic starting point the spiral
// search below begins from for one gene's repIdx-th replicate. Row and
// column each mix geneIdx and repIdx with opposite powers of phi so that
// replicates of the same gene scatter across both axes instead of tracking
// each other, rather than collapsing gene and replicate into one flattened
// counter.
func scrambleTarget(geneIdx, repIdx, innerRows, innerCols int) (int, int) {
	phi := goldenRatio
	phi2 := phi * phi
	r := int(math.Mod((float64(geneIdx)*phi+float64(repIdx)*phi2)*float64(innerRows), float64(innerRows)))
	c := int(math.Mod((float64(geneIdx)*phi2+float64(repIdx)*phi)*float64(innerCols), float64(innerCols)))
	if r < 0 {
		r += innerRows
	}
	if c < 0 {
		c += innerCols
	}
	return r, c
}

// placeBySpiralSearch finds a free, non-adjacent-to-same-label inner well
// for one unit, starting from a golden-ratio-scrambled target and walking
// outward in growing Chebyshev rings. It falls back to the first free
// inner well in row-major order if every ring comes up empty.
func placeBySpiralSearch(edge, rows, cols int, label string, occupied map[geometry.Position]string, target geometry.Position) (geometry.Position, bool) {
	innerRows := rows - 2*edge
	innerCols := cols - 2*edge
	maxRadius := innerRows
	if innerCols > maxRadius {
		maxRadius = innerCols
	}

	tryCell := func(r, c int) (geometry.Position, bool) {
		if r < edge || r >= rows-edge || c < edge || c >= cols-edge {
			return geometry.Position{}, false
		}
		pos := geometry.Position{Row: r, Col: c}
		if _, taken := occupied[pos]; taken {
			return geometry.Position{}, false
		}
		if label != "" && hasAdjacentSameLabel(pos, label, occupied) {
			return geometry.Position{}, false
		}
		return pos, true
	}

	if pos, ok := tryCell(edge+target.Row, edge+target.Col); ok {
		return pos, true
	}

	for radius := 1; radius <= maxRadius; radius++ {
		cr, cc := edge+target.Row, edge+target.Col
		for dr := -radius; dr <= radius; dr++ {
			for dc := -radius; dc <= radius; dc++ {
				if absInt(dr) != radius && absInt(dc) != radius {
					continue
				}
				if pos, ok := tryCell(cr+dr, cc+dc); ok {
					return pos, true
				}
			}
		}
	}

	for r := edge; r < rows-edge; r++ {
		for c := edge; c < cols-edge; c++ {
			if pos, ok := tryCell(r, c); ok {
				return pos, true
			}
		}
	}
	return geometry.Position{}, false
}

func hasAdjacentSameLabel(pos geometry.Position, label string, occupied map[geometry.Position]string) bool {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			neighbor := geometry.Position{Row: pos.Row + dr, Col: pos.Col + dc}
			if occupiedLabel, ok := occupied[neighbor]; ok && occupiedLabel == label {
				return true
			}
		}
	}
	return false
}

// placeAllBySpiralSearch places every instance in order, starting from a
// fresh golden-ratio scramble per unit (keyed by that unit's geneIdx/repIdx
// pair) and recording each placement into occupied (keyed by the ultimate
// well position, valued by label) so later units avoid both collisions and
// same-label adjacency. geneIdx and repIdx must be parallel to labels.
func placeAllBySpiralSearch(edge, rows, cols int, labels []string, geneIdx, repIdx []int, occupied map[geometry.Position]string) []placement {
	innerRows := rows - 2*edge
	innerCols := cols - 2*edge
	placements := make([]placement, len(labels))
	for i, label := range labels {
		tr, tc := scrambleTarget(geneIdx[i], repIdx[i], innerRows, innerCols)
		pos, ok := placeBySpiralSearch(edge, rows, cols, label, occupied, geometry.Position{Row: tr, Col: tc})
		if !ok {
			placements[i] = placement{row: -1, col: -1}
			continue
		}
		occupied[pos] = label
		placements[i] = placement{row: pos.Row, col: pos.Col}
	}
	return placements
}
