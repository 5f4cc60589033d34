package solver

import (
	"strconv"
	"testing"

	"github.com/biolabs/plateforge/pkg/design"
	"github.com/biolabs/plateforge/pkg/geometry"
	"github.com/biolabs/plateforge/pkg/validator"
	"pgregory.net/rapid"
)

func genes(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "Gene" + strconv.Itoa(i+1)
	}
	return out
}

func TestSolveSinglePlate96Well(t *testing.T) {
	d := design.NewDesign(geometry.Plate96)
	d.DefaultReplicates = 6
	d.EdgeEmptyLayers = 1

	result := SolveWithOptions(d, design.SourcePlate{}, genes(10), Options{TimeoutSeconds: 2})
	if result.Status != StatusSuccess {
		t.Fatalf("Status = %v, want success: %s", result.Status, result.Message)
	}
	if len(result.Layouts) != 1 {
		t.Fatalf("len(Layouts) = %d, want 1", len(result.Layouts))
	}
	assertFullTiling(t, result.Layouts[0], 8, 12)
}

func TestSolveSinglePlate384Well(t *testing.T) {
	d := design.NewDesign(geometry.Plate384)
	d.DefaultReplicates = 4
	d.EdgeEmptyLayers = 2

	result := SolveWithOptions(d, design.SourcePlate{}, genes(20), Options{TimeoutSeconds: 2})
	if result.Status != StatusSuccess {
		t.Fatalf("Status = %v, want success: %s", result.Status, result.Message)
	}
	assertFullTiling(t, result.Layouts[0], 16, 24)
}

func TestSolveMultiPlateAtTenPlateCap(t *testing.T) {
	d := design.NewDesign(geometry.Plate96)
	d.DefaultReplicates = 1
	d.EdgeEmptyLayers = 1
	// AvailableWells(96,1) = 60. 10 plates * 60 = 600 instances exactly at cap.
	result := SolveWithOptions(d, design.SourcePlate{}, genes(600), Options{TimeoutSeconds: 5})
	if result.Status != StatusSuccess {
		t.Fatalf("Status = %v at the 10-plate boundary, want success: %s", result.Status, result.Message)
	}
	if len(result.Layouts) != MaxPlates {
		t.Fatalf("len(Layouts) = %d, want %d", len(result.Layouts), MaxPlates)
	}
}

func TestSolveOverCapacityFails(t *testing.T) {
	d := design.NewDesign(geometry.Plate96)
	d.DefaultReplicates = 1
	d.EdgeEmptyLayers = 1
	// 601 instances need 11 plates, one past the cap.
	result := SolveWithOptions(d, design.SourcePlate{}, genes(601), Options{TimeoutSeconds: 1})
	if result.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed when capacity is exceeded", result.Status)
	}
}

func TestSolveWithControlsPlacesThemOnFirstPlate(t *testing.T) {
	d := design.NewDesign(geometry.Plate96)
	d.DefaultReplicates = 2
	d.EdgeEmptyLayers = 1
	d.Controls = []design.Control{
		{Type: design.ControlPositive, Label: "PosCtrl", Count: 2},
		{Type: design.ControlNegative, Label: "NegCtrl", Count: 2},
	}

	result := SolveWithOptions(d, design.SourcePlate{}, genes(5), Options{TimeoutSeconds: 2})
	if result.Status != StatusSuccess {
		t.Fatalf("Status = %v, want success: %s", result.Status, result.Message)
	}

	found := map[string]int{}
	for _, w := range result.Layouts[0].Wells {
		if w.ContentType == design.ContentPositiveControl || w.ContentType == design.ContentNegativeControl {
			found[w.Sample]++
		}
	}
	if found["PosCtrl"] != 2 || found["NegCtrl"] != 2 {
		t.Fatalf("control well counts = %+v, want PosCtrl=2 NegCtrl=2", found)
	}
}

func TestDeterministicAcrossRepeatedSolves(t *testing.T) {
	d := design.NewDesign(geometry.Plate96)
	d.DefaultReplicates = 4
	d.EdgeEmptyLayers = 1

	opts := Options{TimeoutSeconds: 2, Seed: 123, Workers: 1}
	r1 := SolveWithOptions(d, design.SourcePlate{}, genes(8), opts)
	r2 := SolveWithOptions(d, design.SourcePlate{}, genes(8), opts)

	if r1.Status != StatusSuccess || r2.Status != StatusSuccess {
		t.Fatalf("Status = %v / %v, want success: %s / %s", r1.Status, r2.Status, r1.Message, r2.Message)
	}
	pos1 := positionsOf(r1.Layouts[0])
	pos2 := positionsOf(r2.Layouts[0])
	if len(pos1) != len(pos2) {
		t.Fatalf("layouts have different well counts")
	}
	for pos, sample := range pos1 {
		if pos2[pos] != sample {
			t.Fatalf("same seed produced different placements at %s: %q vs %q", pos, sample, pos2[pos])
		}
	}
}

func TestSolveAggregatesViolationsAcrossLayouts(t *testing.T) {
	d := design.NewDesign(geometry.Plate96)
	d.DefaultReplicates = 6
	d.EdgeEmptyLayers = 1

	result := SolveWithOptions(d, design.SourcePlate{}, genes(10), Options{TimeoutSeconds: 2})
	if result.Status != StatusSuccess {
		t.Fatalf("Status = %v, want success: %s", result.Status, result.Message)
	}
	want := validator.Validate(result.Layouts[0])
	if len(result.Violations) != len(want) {
		t.Fatalf("len(Violations) = %d, want %d (validator run directly against the same layout)", len(result.Violations), len(want))
	}
}

func positionsOf(l design.PlateLayout) map[string]string {
	out := make(map[string]string)
	for _, w := range l.Wells {
		out[w.Position] = w.Sample
	}
	return out
}

func assertFullTiling(t *testing.T, l design.PlateLayout, rows, cols int) {
	t.Helper()
	if len(l.Wells) != rows*cols {
		t.Fatalf("len(Wells) = %d, want %d", len(l.Wells), rows*cols)
	}
	seen := make(map[string]bool, len(l.Wells))
	for _, w := range l.Wells {
		if seen[w.Position] {
			t.Fatalf("position %s appears more than once", w.Position)
		}
		seen[w.Position] = true
	}
}

// TestEdgeRingAlwaysEmpty checks that no sample or control ever lands in
// the excluded edge ring, across a range of plate kinds and edge widths.
func TestEdgeRingAlwaysEmpty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		kind := rapid.SampledFrom(geometry.PlateKinds()).Draw(t, "kind")
		edge := rapid.IntRange(0, 2).Draw(t, "edge")
		count := rapid.IntRange(1, 15).Draw(t, "genes")

		d := design.NewDesign(kind)
		d.DefaultReplicates = 1
		d.EdgeEmptyLayers = edge

		rows, cols, err := geometry.Dimensions(kind)
		if err != nil {
			t.Fatal(err)
		}
		available := geometry.AvailableWells(kind, edge)
		if available == 0 || count > available {
			return
		}

		result := SolveWithOptions(d, design.SourcePlate{}, genes(count), Options{TimeoutSeconds: 1})
		if result.Status == StatusFailed {
			return
		}
		for _, w := range result.Layouts[0].Wells {
			if w.ContentType == design.ContentEmpty {
				continue
			}
			if geometry.IsEdge(rows, cols, edge, w.Row, w.Col) {
				t.Fatalf("non-empty content placed in edge ring at %s", w.Position)
			}
		}
	})
}
