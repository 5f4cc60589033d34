package solver

import (
	"math"

	"github.com/biolabs/plateforge/pkg/engine"
	"github.com/biolabs/plateforge/pkg/geometry"
)

// sampleInstance is one replicate of one gene that needs a decision
// variable in the CP model. Controls never get a CP decision variable —
// see heuristic.go.
type sampleInstance struct {
	gene    string
	geneIdx int
	repIdx  int
}

// cpModel bundles the engine together with the per-instance row/col
// variables so extraction (solver.go) can read values(instance) back out.
type cpModel struct {
	eng       engine.Engine
	instances []sampleInstance
	rowVar    []engine.Var
	colVar    []engine.Var
}

// buildModel builds the decision variables, the hard placement
// constraints, and the uniform-spread objective against eng. When
// includeDispersion is false the conditional per-label row/col
// AllDifferent constraints are skipped — this is the "relaxed" tier.
func buildModel(eng engine.Engine, kind geometry.PlateKind, edge int, instances []sampleInstance, includeDispersion bool) (*cpModel, error) {
	rows, cols, err := geometry.Dimensions(kind)
	if err != nil {
		return nil, err
	}
	innerRows := rows - 2*edge
	innerCols := cols - 2*edge

	m := &cpModel{eng: eng, instances: instances}
	m.rowVar = make([]engine.Var, len(instances))
	m.colVar = make([]engine.Var, len(instances))
	posVar := make([]engine.Var, len(instances))

	// Variable creation order is search order (btengine assigns by
	// increasing index), so each instance's non-adjacency booleans against
	// every earlier same-label instance are created right after that
	// instance's own row/col/pos vars — not batched in afterward once
	// every position var already exists. That keeps a pair's reified
	// adjacency check close enough in index to its row/col vars that the
	// search can backtrack on it while still placing this plate's
	// positions, instead of only discovering the violation once every
	// position is already committed.
	seenByGene := make(map[string][]int)
	for i := range instances {
		m.rowVar[i] = eng.NewIntVar(edge, rows-edge-1, "row")
		m.colVar[i] = eng.NewIntVar(edge, cols-edge-1, "col")
		posVar[i] = eng.NewIntVar(0, rows*cols-1, "pos")
		// pos - cols*row - col = 0
		eng.AddLinearEq(
			[]engine.Var{posVar[i], m.rowVar[i], m.colVar[i]},
			[]int{1, -cols, -1},
			0,
		)

		gene := instances[i].gene
		for _, j := range seenByGene[gene] {
			addNonAdjacency(eng, m.rowVar[j], m.colVar[j], m.rowVar[i], m.colVar[i])
		}
		seenByGene[gene] = append(seenByGene[gene], i)
	}

	// 1. Position uniqueness.
	eng.AllDifferent(posVar...)

	// 4. Conditional row/col dispersion.
	byGene := groupByGene(instances)
	if includeDispersion {
		for _, idxs := range byGene {
			if len(idxs) <= innerRows {
				rowVars := make([]engine.Var, len(idxs))
				for i, idx := range idxs {
					rowVars[i] = m.rowVar[idx]
				}
				eng.AllDifferent(rowVars...)
			}
			if len(idxs) <= innerCols {
				colVars := make([]engine.Var, len(idxs))
				for i, idx := range idxs {
					colVars[i] = m.colVar[idx]
				}
				eng.AllDifferent(colVars...)
			}
		}
	}

	// Soft objective: uniform spread across rows and columns.
	addUniformSpreadObjective(eng, m.rowVar, m.colVar, edge, rows, cols, innerRows, innerCols)

	return m, nil
}

func groupByGene(instances []sampleInstance) map[string][]int {
	groups := make(map[string][]int)
	for i, inst := range instances {
		groups[inst.gene] = append(groups[inst.gene], i)
	}
	return groups
}

// addNonAdjacency encodes: |row1-row2|>=2 OR |col1-col2|>=2. rowFar/colFar
// are reified so the engine enforces the disjunction regardless of which
// side of it ends up true.
func addNonAdjacency(eng engine.Engine, row1, col1, row2, col2 engine.Var) {
	rowFar := eng.NewBoolVar("row_far")
	colFar := eng.NewBoolVar("col_far")

	eng.OnlyEnforceIf(engine.Literal{Var: rowFar}).AddReified(
		[]engine.Var{row1, row2},
		func(v []int) bool { return absInt(v[0]-v[1]) >= 2 },
	)
	eng.OnlyEnforceIf(engine.Literal{Var: colFar}).AddReified(
		[]engine.Var{col1, col2},
		func(v []int) bool { return absInt(v[0]-v[1]) >= 2 },
	)
	eng.AddBoolOr(engine.Literal{Var: rowFar}, engine.Literal{Var: colFar})
}

// addUniformSpreadObjective minimizes the sum of |count_r - ideal_row|
// over inner rows plus |count_c - ideal_col| over inner columns. N here is
// the number of gene instances on this plate, not the plate's total
// well demand (controls are placed separately, after this model solves).
func addUniformSpreadObjective(eng engine.Engine, rowVar, colVar []engine.Var, edge, rows, cols, innerRows, innerCols int) {
	n := len(rowVar)
	if n == 0 || innerRows <= 0 || innerCols <= 0 {
		return
	}
	idealRow := int(math.Round(float64(n) / float64(innerRows)))
	idealCol := int(math.Round(float64(n) / float64(innerCols)))

	var objVars []engine.Var
	var objCoeffs []int

	objVars, objCoeffs = appendDeviationVars(eng, rowVar, edge, rows-edge-1, idealRow, objVars, objCoeffs)
	objVars, objCoeffs = appendDeviationVars(eng, colVar, edge, cols-edge-1, idealCol, objVars, objCoeffs)

	eng.Minimize(objVars, objCoeffs)
}

// appendDeviationVars adds, for every value v in [lo, hi], an indicator
// per instance (ind[i] <=> vars[i]==v), a count_v := sum(ind), and a
// deviation d_v := |count_v - ideal|, then returns the running objective
// term lists with d_v appended.
func appendDeviationVars(eng engine.Engine, vars []engine.Var, lo, hi, ideal int, objVars []engine.Var, objCoeffs []int) ([]engine.Var, []int) {
	for v := lo; v <= hi; v++ {
		value := v
		indicators := make([]engine.Var, len(vars))
		for i, ev := range vars {
			ind := eng.NewBoolVar("ind")
			eng.OnlyEnforceIf(engine.Literal{Var: ind}).AddReified(
				[]engine.Var{ev},
				func(vals []int) bool { return vals[0] == value },
			)
			indicators[i] = ind
		}

		count := eng.NewIntVar(0, len(vars), "count")
		eqVars := append([]engine.Var{count}, indicators...)
		eqCoeffs := make([]int, len(eqVars))
		eqCoeffs[0] = 1
		for i := range indicators {
			eqCoeffs[i+1] = -1
		}
		eng.AddLinearEq(eqVars, eqCoeffs, 0)

		idealVar := eng.NewIntVar(ideal, ideal, "ideal")
		deviation := eng.NewIntVar(0, len(vars), "deviation")
		eng.AddAbsEq(deviation, count, idealVar)

		objVars = append(objVars, deviation)
		objCoeffs = append(objCoeffs, 1)
	}
	return objVars, objCoeffs
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
