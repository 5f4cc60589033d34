// Package btengine implements pkg/engine.Engine as a deterministic, seeded
// backtracking search with randomized value ordering and a bounded worker
// pool, generalized to an arbitrary CP-style model of integer variables
// and constraints.
//
// No CP-SAT-class Go binding is pure-Go vendorable — the real ones need
// cgo plus a native solver library. This engine instead interprets the
// constraints pkg/solver builds directly against a backtracking search,
// which is sufficient to satisfy the Engine contract (AllDifferent,
// reification via OnlyEnforceIf, a linear objective, and a wall-clock +
// worker budget) without any native dependency.
package btengine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/biolabs/plateforge/pkg/engine"
)

type varSpec struct {
	lo, hi int
}

type linExpr struct {
	vars   []engine.Var
	coeffs []int
	rhs    int
}

type absEqConstraint struct {
	target, a, b engine.Var
}

type reifiedConstraint struct {
	lits  []engine.Literal
	vars  []engine.Var
	holds func(values []int) bool
}

// Engine is a btengine.Engine: a plain in-memory model plus a backtracking
// search. The zero value is not usable; construct with New.
type Engine struct {
	vars      []varSpec
	allDiff   [][]engine.Var
	linearEq  []linExpr
	linearLE  []linExpr
	absEq     []absEqConstraint
	boolOr    [][]engine.Literal
	reified   []reifiedConstraint
	objVars   []engine.Var
	objCoeffs []int

	values []int
}

// New returns an empty model.
func New() *Engine {
	return &Engine{}
}

func (e *Engine) NewIntVar(lo, hi int, _ string) engine.Var {
	e.vars = append(e.vars, varSpec{lo: lo, hi: hi})
	return engine.Var(len(e.vars) - 1)
}

func (e *Engine) NewBoolVar(name string) engine.Var {
	return e.NewIntVar(0, 1, name)
}

func (e *Engine) AllDifferent(vars ...engine.Var) {
	group := append([]engine.Var(nil), vars...)
	e.allDiff = append(e.allDiff, group)
}

func (e *Engine) AddLinearEq(vars []engine.Var, coeffs []int, rhs int) {
	e.linearEq = append(e.linearEq, linExpr{
		vars:   append([]engine.Var(nil), vars...),
		coeffs: append([]int(nil), coeffs...),
		rhs:    rhs,
	})
}

func (e *Engine) AddLinearLE(vars []engine.Var, coeffs []int, rhs int) {
	e.linearLE = append(e.linearLE, linExpr{
		vars:   append([]engine.Var(nil), vars...),
		coeffs: append([]int(nil), coeffs...),
		rhs:    rhs,
	})
}

func (e *Engine) AddAbsEq(target, a, b engine.Var) {
	e.absEq = append(e.absEq, absEqConstraint{target: target, a: a, b: b})
}

func (e *Engine) AddBoolOr(lits ...engine.Literal) {
	e.boolOr = append(e.boolOr, append([]engine.Literal(nil), lits...))
}

type scope struct {
	e    *Engine
	lits []engine.Literal
}

func (s *scope) AddReified(vars []engine.Var, holds func(values []int) bool) {
	s.e.reified = append(s.e.reified, reifiedConstraint{
		lits:  append([]engine.Literal(nil), s.lits...),
		vars:  append([]engine.Var(nil), vars...),
		holds: holds,
	})
}

func (e *Engine) OnlyEnforceIf(lits ...engine.Literal) engine.ConstraintScope {
	return &scope{e: e, lits: append([]engine.Literal(nil), lits...)}
}

func (e *Engine) Minimize(vars []engine.Var, coeffs []int) {
	e.objVars = append([]engine.Var(nil), vars...)
	e.objCoeffs = append([]int(nil), coeffs...)
}

func (e *Engine) Value(v engine.Var) int {
	return e.values[v]
}

func (e *Engine) hasObjective() bool {
	return len(e.objVars) > 0
}

func (e *Engine) evaluateObjective(values []int) int {
	total := 0
	for i, v := range e.objVars {
		total += e.objCoeffs[i] * values[v]
	}
	return total
}

type searchResult struct {
	values    []int
	objective int
	feasible  bool
}

// Solve runs up to workers independent, seeded backtracking searches in
// parallel, each with randomized value ordering, and keeps the
// best-objective feasible assignment found before maxSeconds elapses.
// Worker results are compared in worker order, so ties go to the
// lowest-numbered worker.
func (e *Engine) Solve(maxSeconds float64, workers int, seed int64) engine.Status {
	if len(e.vars) == 0 {
		e.values = nil
		return engine.StatusOptimal
	}
	if workers < 1 {
		workers = 1
	}
	deadline := time.Now().Add(time.Duration(maxSeconds * float64(time.Second)))

	results := make([]searchResult, workers)
	exhausted := make([]bool, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		workerSeed := seed + int64(w)*1000003
		go func(w int, ws int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(ws))
			values := make([]int, len(e.vars))
			assigned := make([]bool, len(e.vars))
			var best searchResult
			timedOut := false
			e.search(0, values, assigned, rng, &best, deadline, &timedOut)
			results[w] = best
			exhausted[w] = !timedOut
		}(w, workerSeed)
	}
	wg.Wait()

	var best searchResult
	found := false
	for _, r := range results {
		if !r.feasible {
			continue
		}
		if !found || (e.hasObjective() && r.objective < best.objective) {
			best = r
			found = true
		}
	}
	anyExhausted := false
	for _, ex := range exhausted {
		if ex {
			anyExhausted = true
		}
	}

	if !found {
		return engine.StatusInfeasible
	}
	e.values = best.values
	if anyExhausted {
		return engine.StatusOptimal
	}
	return engine.StatusFeasible
}

// search explores the decision tree depth-first, checking every
// constraint incrementally as soon as its variables are all assigned, and
// recording the best (lowest-objective) complete assignment found before
// the deadline.
func (e *Engine) search(idx int, values []int, assigned []bool, rng *rand.Rand, best *searchResult, deadline time.Time, timedOut *bool) {
	if *timedOut {
		return
	}
	if time.Now().After(deadline) {
		*timedOut = true
		return
	}
	if idx == len(e.vars) {
		obj := 0
		if e.hasObjective() {
			obj = e.evaluateObjective(values)
		}
		if !best.feasible || obj < best.objective {
			best.feasible = true
			best.objective = obj
			best.values = append([]int(nil), values...)
		}
		return
	}

	v := e.vars[idx]
	span := v.hi - v.lo + 1
	if span <= 0 {
		return
	}
	order := rng.Perm(span)
	for _, off := range order {
		values[idx] = v.lo + off
		assigned[idx] = true
		if e.consistentAt(idx, values, assigned) {
			e.search(idx+1, values, assigned, rng, best, deadline, timedOut)
		}
		assigned[idx] = false
		if *timedOut {
			return
		}
	}
}

// consistentAt checks every constraint touching variable idx that has
// become fully assigned, returning false at the first violation.
func (e *Engine) consistentAt(idx int, values []int, assigned []bool) bool {
	vidx := engine.Var(idx)

	for _, g := range e.allDiff {
		if !containsVar(g, vidx) {
			continue
		}
		for _, other := range g {
			if other == vidx || !assigned[other] {
				continue
			}
			if values[other] == values[idx] {
				return false
			}
		}
	}

	for _, c := range e.linearEq {
		if !involvesVar(c.vars, vidx) || !allAssigned(c.vars, assigned) {
			continue
		}
		if sumLinear(c.vars, c.coeffs, values) != c.rhs {
			return false
		}
	}

	for _, c := range e.linearLE {
		if !involvesVar(c.vars, vidx) || !allAssigned(c.vars, assigned) {
			continue
		}
		if sumLinear(c.vars, c.coeffs, values) > c.rhs {
			return false
		}
	}

	for _, c := range e.absEq {
		vars := []engine.Var{c.target, c.a, c.b}
		if !involvesVar(vars, vidx) || !allAssigned(vars, assigned) {
			continue
		}
		diff := values[c.a] - values[c.b]
		if diff < 0 {
			diff = -diff
		}
		if values[c.target] != diff {
			return false
		}
	}

	for _, g := range e.boolOr {
		vars := literalVars(g)
		if !involvesVar(vars, vidx) || !allAssigned(vars, assigned) {
			continue
		}
		if !anyLiteralTrue(g, values) {
			return false
		}
	}

	for _, rc := range e.reified {
		allVars := append(append([]engine.Var(nil), literalVars(rc.lits)...), rc.vars...)
		if !involvesVar(allVars, vidx) || !allAssigned(allVars, assigned) {
			continue
		}
		litsTrue := allLiteralsTrue(rc.lits, values)
		argValues := make([]int, len(rc.vars))
		for i, rv := range rc.vars {
			argValues[i] = values[rv]
		}
		if litsTrue != rc.holds(argValues) {
			return false
		}
	}

	return true
}

func containsVar(vars []engine.Var, v engine.Var) bool {
	for _, x := range vars {
		if x == v {
			return true
		}
	}
	return false
}

func involvesVar(vars []engine.Var, v engine.Var) bool {
	return containsVar(vars, v)
}

func allAssigned(vars []engine.Var, assigned []bool) bool {
	for _, v := range vars {
		if !assigned[v] {
			return false
		}
	}
	return true
}

func sumLinear(vars []engine.Var, coeffs []int, values []int) int {
	total := 0
	for i, v := range vars {
		total += coeffs[i] * values[v]
	}
	return total
}

func literalVars(lits []engine.Literal) []engine.Var {
	out := make([]engine.Var, len(lits))
	for i, l := range lits {
		out[i] = l.Var
	}
	return out
}

func anyLiteralTrue(lits []engine.Literal, values []int) bool {
	for _, lit := range lits {
		if literalValue(lit, values) {
			return true
		}
	}
	return false
}

func allLiteralsTrue(lits []engine.Literal, values []int) bool {
	for _, lit := range lits {
		if !literalValue(lit, values) {
			return false
		}
	}
	return true
}

func literalValue(lit engine.Literal, values []int) bool {
	v := values[lit.Var]
	if lit.Negated {
		v = 1 - v
	}
	return v == 1
}
