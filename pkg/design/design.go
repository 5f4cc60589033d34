package design

import (
	"fmt"

	"github.com/biolabs/plateforge/pkg/common"
	"github.com/biolabs/plateforge/pkg/geometry"
)

// Distribution is the design's spatial-distribution policy. Only Uniform
// has a distinct effect in the solver today; the others are accepted but
// currently behave like Uniform.
type Distribution string

const (
	DistributionUniform Distribution = "uniform"
	DistributionRandom  Distribution = "random"
	DistributionColumn  Distribution = "column"
	DistributionRow     Distribution = "row"
)

// ControlType is one of the three control-well kinds.
type ControlType string

const (
	ControlPositive ControlType = "positive"
	ControlNegative ControlType = "negative"
	ControlBlank    ControlType = "blank"
)

// Control describes a requested block of control wells.
type Control struct {
	Type       ControlType
	Label      string
	Count      int
	SourceWell string // optional; "" means unset
}

// SampleOverride supersedes the design defaults for one sample label.
type SampleOverride struct {
	Replicates       int
	TransferVolumeNL float64
}

// Design carries every tunable of a layout request. It is built once and
// never mutated afterward; ReplicatesFor and TransferVolumeFor are the
// only lookups callers need.
type Design struct {
	PlateKind               geometry.PlateKind
	DefaultReplicates       int
	EdgeEmptyLayers         int
	Distribution            Distribution
	Controls                []Control
	DefaultTransferVolumeNL float64
	PerSampleOverrides      map[string]SampleOverride
}

// NewDesign returns a Design with every field at its documented default
// value for the given plate kind.
func NewDesign(kind geometry.PlateKind) Design {
	return Design{
		PlateKind:               kind,
		DefaultReplicates:       6,
		EdgeEmptyLayers:         1,
		Distribution:            DistributionUniform,
		DefaultTransferVolumeNL: 0,
		PerSampleOverrides:      map[string]SampleOverride{},
	}
}

// ReplicatesFor returns the replicate count for sample, honoring a
// per-sample override when present. Never fails.
func (d Design) ReplicatesFor(sample string) int {
	if o, ok := d.PerSampleOverrides[sample]; ok {
		return o.Replicates
	}
	return d.DefaultReplicates
}

// TransferVolumeFor returns the transfer volume (nL) for sample, honoring a
// per-sample override when present. Never fails.
func (d Design) TransferVolumeFor(sample string) float64 {
	if o, ok := d.PerSampleOverrides[sample]; ok {
		return o.TransferVolumeNL
	}
	return d.DefaultTransferVolumeNL
}

// Consistent reports whether every sample in requested has at least one
// replicate.
func (d Design) Consistent(requested []string) bool {
	for _, s := range requested {
		if d.ReplicatesFor(s) < 1 {
			return false
		}
	}
	return true
}

// Validate checks the basic shape invariants a constructor is expected to
// enforce.
func (d Design) Validate() error {
	if _, _, err := geometry.Dimensions(d.PlateKind); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidDesign, err)
	}
	if d.EdgeEmptyLayers < 0 {
		return fmt.Errorf("%w: edge_empty_layers must be >= 0", common.ErrInvalidDesign)
	}
	if d.DefaultReplicates < 1 {
		return fmt.Errorf("%w: default_replicates must be >= 1", common.ErrInvalidDesign)
	}
	for sample, o := range d.PerSampleOverrides {
		if o.Replicates <= 0 {
			return fmt.Errorf("%w: override for %q has non-positive replicate count", common.ErrInvalidDesign, sample)
		}
	}
	for _, c := range d.Controls {
		if c.Count < 0 {
			return fmt.Errorf("%w: control %q has negative count", common.ErrInvalidDesign, c.Label)
		}
	}
	return nil
}
