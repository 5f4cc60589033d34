package design

import (
	"errors"
	"testing"

	"github.com/biolabs/plateforge/pkg/common"
	"github.com/biolabs/plateforge/pkg/geometry"
)

func TestReplicatesForDefaultsAndOverrides(t *testing.T) {
	d := NewDesign(geometry.Plate96)
	d.DefaultReplicates = 6
	d.PerSampleOverrides = map[string]SampleOverride{
		"Gene10": {Replicates: 20, TransferVolumeNL: 40},
	}

	if got := d.ReplicatesFor("Gene1"); got != 6 {
		t.Errorf("ReplicatesFor(Gene1) = %d, want 6 (default)", got)
	}
	if got := d.ReplicatesFor("Gene10"); got != 20 {
		t.Errorf("ReplicatesFor(Gene10) = %d, want 20 (override)", got)
	}
}

func TestTransferVolumeForDefaultsAndOverrides(t *testing.T) {
	d := NewDesign(geometry.Plate96)
	d.DefaultTransferVolumeNL = 25
	d.PerSampleOverrides = map[string]SampleOverride{
		"Gene10": {Replicates: 20, TransferVolumeNL: 40},
	}

	if got := d.TransferVolumeFor("Gene1"); got != 25 {
		t.Errorf("TransferVolumeFor(Gene1) = %v, want 25", got)
	}
	if got := d.TransferVolumeFor("Gene10"); got != 40 {
		t.Errorf("TransferVolumeFor(Gene10) = %v, want 40", got)
	}
}

func TestConsistent(t *testing.T) {
	d := NewDesign(geometry.Plate96)
	d.DefaultReplicates = 6
	if !d.Consistent([]string{"Gene1", "Gene2"}) {
		t.Error("design with positive defaults should be consistent")
	}

	d.PerSampleOverrides = map[string]SampleOverride{"Gene1": {Replicates: 0}}
	if d.Consistent([]string{"Gene1"}) {
		t.Error("design with a zero-replicate override should be inconsistent for that sample")
	}
}

func TestValidateRejectsBadEdgeLayers(t *testing.T) {
	d := NewDesign(geometry.Plate96)
	d.EdgeEmptyLayers = -1
	if err := d.Validate(); !errors.Is(err, common.ErrInvalidDesign) {
		t.Fatalf("Validate() = %v, want wrapping ErrInvalidDesign", err)
	}
}

func TestValidateRejectsUnknownPlateKind(t *testing.T) {
	d := NewDesign(geometry.PlateKind(7))
	if err := d.Validate(); !errors.Is(err, common.ErrInvalidDesign) {
		t.Fatalf("Validate() = %v, want wrapping ErrInvalidDesign", err)
	}
}

func TestSourcePlateValidateDetectsDuplicatePositions(t *testing.T) {
	p := SourcePlate{
		Barcode: "src1",
		Wells: []SourceWell{
			{Position: "A01", Sample: "Gene1"},
			{Position: "A01", Sample: "Gene2"},
		},
	}
	if err := p.Validate(); !errors.Is(err, common.ErrInvalidDesign) {
		t.Fatalf("Validate() = %v, want wrapping ErrInvalidDesign", err)
	}
}

func TestFirstWellForSample(t *testing.T) {
	p := SourcePlate{
		Barcode: "src1",
		Wells: []SourceWell{
			{Position: "A01", Sample: "Gene1"},
			{Position: "B01", Sample: "Gene1"},
		},
	}
	w, ok := p.FirstWellForSample("Gene1")
	if !ok || w.Position != "A01" {
		t.Fatalf("FirstWellForSample(Gene1) = (%+v, %v), want (A01, true)", w, ok)
	}
	if _, ok := p.FirstWellForSample("Gene99"); ok {
		t.Fatal("FirstWellForSample(Gene99) should report not found")
	}
}
