// Package solver turns a layout design and a list of genes into concrete
// per-plate well assignments. It tries a full constraint model first, then
// a relaxed one with the dispersion constraints dropped, then falls back
// to a deterministic scramble-and-spiral-search heuristic — degrading
// gracefully rather than failing outright when the engine can't finish in
// time.
package solver

import (
	"fmt"
	"time"

	"github.com/biolabs/plateforge/pkg/common"
	"github.com/biolabs/plateforge/pkg/design"
	"github.com/biolabs/plateforge/pkg/engine"
	"github.com/biolabs/plateforge/pkg/engine/btengine"
	"github.com/biolabs/plateforge/pkg/geometry"
	"github.com/biolabs/plateforge/pkg/validator"
)

// Status summarizes how a Solve call went.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// MaxPlates is the hard cap on how many plates a single request may span.
const MaxPlates = 10

// DefaultSeed is used whenever Options.Seed is left at its zero value, so
// a caller that never thinks about seeding still gets reproducible runs.
const DefaultSeed = 42

// DefaultWorkers is the default parallel search width handed to the
// engine for each plate solved.
const DefaultWorkers = 8

// Options configures a Solve call beyond the plain (design, source,
// genes, timeout) signature.
type Options struct {
	TimeoutSeconds float64
	Seed           int64
	Workers        int
}

func (o Options) withDefaults() Options {
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = 30
	}
	return o
}

// Result is the outcome of a Solve call: the resulting layouts, every
// violation the validator reported against them, which constraints had to
// be relaxed or skipped, and timing/diagnostic information.
type Result struct {
	Status             Status
	Layouts            []design.PlateLayout
	Violations         []design.ConstraintViolation
	RelaxedConstraints []string
	SolveTimeMs        int64
	Message            string
}

// Solve plans plate capacity for genesToPlace plus d's configured
// controls, partitions across as many plates as needed (up to MaxPlates),
// and solves each plate independently using DefaultSeed and
// DefaultWorkers.
func Solve(d design.Design, source design.SourcePlate, genesToPlace []string, timeoutSeconds float64) Result {
	return SolveWithOptions(d, source, genesToPlace, Options{TimeoutSeconds: timeoutSeconds})
}

// SolveWithOptions is Solve with explicit control over the search seed and
// worker count.
func SolveWithOptions(d design.Design, source design.SourcePlate, genesToPlace []string, opts Options) Result {
	start := time.Now()
	opts = opts.withDefaults()

	if err := d.Validate(); err != nil {
		return Result{Status: StatusFailed, Message: err.Error(), SolveTimeMs: elapsedMs(start)}
	}

	rows, cols, err := geometry.Dimensions(d.PlateKind)
	if err != nil {
		return Result{Status: StatusFailed, Message: err.Error(), SolveTimeMs: elapsedMs(start)}
	}
	available := geometry.AvailableWells(d.PlateKind, d.EdgeEmptyLayers)
	if available <= 0 {
		return Result{Status: StatusFailed, Message: "edge exclusion leaves no usable wells", SolveTimeMs: elapsedMs(start)}
	}

	totalControls := 0
	for _, c := range d.Controls {
		totalControls += c.Count
	}
	totalDemand := totalControls
	for _, g := range genesToPlace {
		totalDemand += d.ReplicatesFor(g)
	}
	if totalDemand == 0 {
		return Result{Status: StatusFailed, Message: "nothing to place", SolveTimeMs: elapsedMs(start)}
	}

	plateCount := ceilDiv(totalDemand, available)
	if plateCount > MaxPlates {
		common.Error("capacity exceeded: %d wells needed across %d plates, cap is %d", totalDemand, plateCount, MaxPlates)
		return Result{
			Status:      StatusFailed,
			Message:     fmt.Sprintf("%v: %d plates required, exceeds cap of %d", common.ErrCapacityExceeded, plateCount, MaxPlates),
			SolveTimeMs: elapsedMs(start),
		}
	}

	chunks := partitionGenes(genesToPlace, plateCount)
	perPlateTimeout := opts.TimeoutSeconds
	if plateCount > 1 {
		perPlateTimeout = opts.TimeoutSeconds / float64(plateCount)
	}

	layouts := make([]design.PlateLayout, plateCount)
	relaxedSet := map[string]bool{}
	anyFailed := false

	results := make(chan struct {
		idx       int
		layout    design.PlateLayout
		relaxed   []string
		allPlaced bool
	}, plateCount)

	sem := make(chan struct{}, opts.Workers)
	for i := 0; i < plateCount; i++ {
		i := i
		controls := []design.Control{}
		if i == 0 {
			controls = d.Controls
		}
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			layout, relaxed, allPlaced := solveOnePlate(d, source, chunks[i], controls, rows, cols, i, perPlateTimeout, opts.Seed+int64(i)*7919, opts.Workers)
			results <- struct {
				idx       int
				layout    design.PlateLayout
				relaxed   []string
				allPlaced bool
			}{idx: i, layout: layout, relaxed: relaxed, allPlaced: allPlaced}
		}()
	}
	for i := 0; i < plateCount; i++ {
		r := <-results
		layouts[r.idx] = r.layout
		for _, rc := range r.relaxed {
			relaxedSet[rc] = true
		}
		if !r.allPlaced {
			anyFailed = true
		}
	}

	relaxed := make([]string, 0, len(relaxedSet))
	for rc := range relaxedSet {
		relaxed = append(relaxed, rc)
	}

	// Falling back to the relaxed or heuristic tier is a normal, expected
	// outcome, not a degradation worth reporting on its own — only an
	// actual placement failure or an error-severity validator finding
	// should move status off success.
	var violations []design.ConstraintViolation
	for _, layout := range layouts {
		violations = append(violations, validator.Validate(layout)...)
	}
	anyErrorViolation := false
	for _, v := range violations {
		if v.Severity == design.SeverityError {
			anyErrorViolation = true
			break
		}
	}

	status := StatusSuccess
	message := fmt.Sprintf("placed %d instances across %d plate(s)", totalDemand, plateCount)
	if anyFailed {
		status = StatusFailed
		message = "one or more plates could not be placed within constraints"
	} else if anyErrorViolation {
		status = StatusPartial
		message = "placed, but one or more layouts have error-severity violations"
	}

	return Result{
		Status:             status,
		Layouts:            layouts,
		Violations:         violations,
		RelaxedConstraints: relaxed,
		SolveTimeMs:        elapsedMs(start),
		Message:            message,
	}
}

// solveOnePlate runs the three-tier strategy for a single plate's gene
// chunk, then places controls afterward by the same heuristic policy onto
// whatever inner wells remain free. The returned bool is true only when
// every gene and control instance actually landed on a well — which tier
// produced that placement does not by itself make the plate a failure.
func solveOnePlate(d design.Design, source design.SourcePlate, genes []string, controls []design.Control, rows, cols, plateIndex int, timeoutSeconds float64, seed int64, workers int) (design.PlateLayout, []string, bool) {
	start := time.Now()
	instances := buildInstances(d, genes)
	relaxed := []string{}

	eng := btengine.New()
	model, err := buildModel(eng, d.PlateKind, d.EdgeEmptyLayers, instances, true)
	status := engine.StatusInfeasible
	if err == nil {
		status = eng.Solve(timeoutSeconds*0.5, workers, seed)
	}

	if status != engine.StatusOptimal && status != engine.StatusFeasible {
		relaxed = append(relaxed, "row_col_dispersion")
		common.Verbose("plate %d: full model failed (%v), retrying relaxed", plateIndex, status)
		eng = btengine.New()
		model, err = buildModel(eng, d.PlateKind, d.EdgeEmptyLayers, instances, false)
		if err == nil {
			status = eng.Solve(timeoutSeconds*0.5, workers, seed+1)
		}
	}

	occupied := make(map[geometry.Position]string, len(instances))
	var genePlacements []placement

	if status == engine.StatusOptimal || status == engine.StatusFeasible {
		genePlacements = make([]placement, len(instances))
		for i := range instances {
			row := eng.Value(model.rowVar[i])
			col := eng.Value(model.colVar[i])
			genePlacements[i] = placement{row: row, col: col}
			occupied[geometry.Position{Row: row, Col: col}] = instances[i].gene
		}
	} else {
		relaxed = append(relaxed, "cp_model")
		common.Warning("plate %d: falling back to heuristic placement", plateIndex)
		labels := make([]string, len(instances))
		geneIdx := make([]int, len(instances))
		repIdx := make([]int, len(instances))
		for i, inst := range instances {
			labels[i] = inst.gene
			geneIdx[i] = inst.geneIdx
			repIdx[i] = inst.repIdx
		}
		genePlacements = placeAllBySpiralSearch(d.EdgeEmptyLayers, rows, cols, labels, geneIdx, repIdx, occupied)
	}

	controlInstances, controlLabels := buildControlInstances(controls)
	controlGeneIdx := make([]int, len(controlLabels))
	controlRepIdx := make([]int, len(controlLabels))
	for i := range controlLabels {
		controlGeneIdx[i] = len(instances) + i
	}
	controlPlacements := placeAllBySpiralSearch(d.EdgeEmptyLayers, rows, cols, controlLabels, controlGeneIdx, controlRepIdx, occupied)

	allPlaced := true
	for _, p := range genePlacements {
		if p.row < 0 {
			allPlaced = false
			break
		}
	}
	if allPlaced {
		for _, p := range controlPlacements {
			if p.row < 0 {
				allPlaced = false
				break
			}
		}
	}

	barcode := common.DefaultPlateBarcode(plateIndex)
	layout := design.PlateLayout{
		Barcode:    barcode,
		PlateKind:  d.PlateKind,
		PlateIndex: plateIndex,
		Wells:      buildWells(d, source, rows, cols, instances, genePlacements, controlInstances, controlPlacements),
	}

	common.SolveEvent(status.String(), int(d.PlateKind), 1, tierLabel(relaxed), relaxed, elapsedMs(start))
	return layout, relaxed, allPlaced
}

func tierLabel(relaxed []string) string {
	switch {
	case len(relaxed) == 0:
		return "full"
	case containsString(relaxed, "cp_model"):
		return "heuristic"
	default:
		return "relaxed"
	}
}

func containsString(items []string, target string) bool {
	for _, s := range items {
		if s == target {
			return true
		}
	}
	return false
}

func buildInstances(d design.Design, genes []string) []sampleInstance {
	var instances []sampleInstance
	for gi, g := range genes {
		r := d.ReplicatesFor(g)
		for rep := 0; rep < r; rep++ {
			instances = append(instances, sampleInstance{gene: g, geneIdx: gi, repIdx: rep})
		}
	}
	return instances
}

type controlInstance struct {
	control design.Control
	label   string
}

func buildControlInstances(controls []design.Control) ([]controlInstance, []string) {
	var instances []controlInstance
	var labels []string
	for _, c := range controls {
		for i := 0; i < c.Count; i++ {
			instances = append(instances, controlInstance{control: c, label: c.Label})
			labels = append(labels, c.Label)
		}
	}
	return instances, labels
}

func buildWells(d design.Design, source design.SourcePlate, rows, cols int, instances []sampleInstance, genePlacements []placement, controls []controlInstance, controlPlacements []placement) []design.LayoutWell {
	byPos := make(map[geometry.Position]design.LayoutWell)

	for i, inst := range instances {
		p := genePlacements[i]
		if p.row < 0 {
			continue
		}
		rep := inst.repIdx
		well := design.LayoutWell{
			Position:       geometry.FormatPosition(p.row, p.col),
			Row:            p.row,
			Col:            p.col,
			ContentType:    design.ContentSample,
			Sample:         inst.gene,
			ReplicateIndex: &rep,
		}
		if sw, ok := source.FirstWellForSample(inst.gene); ok {
			well.SourcePlateBarcode = source.Barcode
			well.SourceWellPosition = sw.Position
		}
		byPos[geometry.Position{Row: p.row, Col: p.col}] = well
	}

	for i, ci := range controls {
		p := controlPlacements[i]
		if p.row < 0 {
			continue
		}
		well := design.LayoutWell{
			Position:    geometry.FormatPosition(p.row, p.col),
			Row:         p.row,
			Col:         p.col,
			ContentType: controlContentType(ci.control),
			Sample:      ci.control.Label,
		}
		if ci.control.SourceWell != "" {
			well.SourcePlateBarcode = source.Barcode
			well.SourceWellPosition = ci.control.SourceWell
		}
		byPos[geometry.Position{Row: p.row, Col: p.col}] = well
	}

	wells := make([]design.LayoutWell, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			pos := geometry.Position{Row: r, Col: c}
			if w, ok := byPos[pos]; ok {
				wells = append(wells, w)
				continue
			}
			wells = append(wells, design.LayoutWell{
				Position:    geometry.FormatPosition(r, c),
				Row:         r,
				Col:         c,
				ContentType: design.ContentEmpty,
			})
		}
	}
	return wells
}

func controlContentType(c design.Control) design.ContentType {
	switch c.Type {
	case design.ControlPositive:
		return design.ContentPositiveControl
	case design.ControlNegative:
		return design.ContentNegativeControl
	default:
		return design.ContentBlank
	}
}

// partitionGenes splits genes into n contiguous, roughly equal chunks, in
// the order genes were given. No constraints are shared across chunks.
func partitionGenes(genes []string, n int) [][]string {
	if n <= 1 {
		return [][]string{genes}
	}
	chunkSize := ceilDiv(len(genes), n)
	chunks := make([][]string, 0, n)
	for i := 0; i < len(genes); i += chunkSize {
		end := i + chunkSize
		if end > len(genes) {
			end = len(genes)
		}
		chunks = append(chunks, genes[i:end])
	}
	for len(chunks) < n {
		chunks = append(chunks, nil)
	}
	return chunks
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
