package design

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/biolabs/plateforge/pkg/common"
	"github.com/biolabs/plateforge/pkg/geometry"
)

// fileOverride mirrors the external per-sample-override mapping:
// {sample_label: {replicates, transfer_volume_nL}}.
type fileOverride struct {
	Replicates       int     `yaml:"replicates"`
	TransferVolumeNL float64 `yaml:"transfer_volume_nL"`
}

type fileControl struct {
	Type       string `yaml:"type"`
	Label      string `yaml:"label"`
	Count      int    `yaml:"count"`
	SourceWell string `yaml:"source_well,omitempty"`
}

// DesignFile is the on-disk YAML shape for a design, used only by the
// CLI. The in-memory core never reads files directly.
type DesignFile struct {
	PlateKind               int                     `yaml:"plate_kind"`
	DefaultReplicates       int                     `yaml:"default_replicates"`
	EdgeEmptyLayers         *int                    `yaml:"edge_empty_layers"`
	Distribution            string                  `yaml:"distribution"`
	DefaultTransferVolumeNL float64                 `yaml:"default_transfer_volume_nL"`
	Controls                []fileControl           `yaml:"controls"`
	PerSampleOverrides      map[string]fileOverride `yaml:"per_sample_overrides"`
}

// LoadDesignFile reads and parses a YAML design file into a Design.
func LoadDesignFile(path string) (Design, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Design{}, fmt.Errorf("reading design file %s: %w", path, err)
	}

	var df DesignFile
	if err := yaml.Unmarshal(raw, &df); err != nil {
		return Design{}, fmt.Errorf("parsing design file %s: %w", path, err)
	}

	kind := geometry.PlateKind(df.PlateKind)
	if kind == 0 {
		kind = geometry.Plate96
	}
	d := NewDesign(kind)
	if df.DefaultReplicates > 0 {
		d.DefaultReplicates = df.DefaultReplicates
	}
	if df.EdgeEmptyLayers != nil {
		d.EdgeEmptyLayers = *df.EdgeEmptyLayers
	}
	if df.Distribution != "" {
		d.Distribution = Distribution(df.Distribution)
	}
	d.DefaultTransferVolumeNL = df.DefaultTransferVolumeNL

	d.PerSampleOverrides = make(map[string]SampleOverride, len(df.PerSampleOverrides))
	for sample, o := range df.PerSampleOverrides {
		d.PerSampleOverrides[sample] = SampleOverride{
			Replicates:       o.Replicates,
			TransferVolumeNL: o.TransferVolumeNL,
		}
	}

	for _, c := range df.Controls {
		d.Controls = append(d.Controls, Control{
			Type:       ControlType(c.Type),
			Label:      c.Label,
			Count:      c.Count,
			SourceWell: c.SourceWell,
		})
	}

	if err := d.Validate(); err != nil {
		return Design{}, err
	}
	return d, nil
}

type fileSourceWell struct {
	Position        string   `yaml:"position"`
	Sample          string   `yaml:"sample"`
	VolumeUL        *float64 `yaml:"volume_uL,omitempty"`
	ConcentrationUM *float64 `yaml:"concentration_uM,omitempty"`
}

type fileSourcePlate struct {
	Barcode string           `yaml:"barcode"`
	Wells   []fileSourceWell `yaml:"wells"`
}

// LoadSourcePlateFile reads and parses a YAML source-plate file.
func LoadSourcePlateFile(path string) (SourcePlate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SourcePlate{}, fmt.Errorf("reading source plate file %s: %w", path, err)
	}

	var fp fileSourcePlate
	if err := yaml.Unmarshal(raw, &fp); err != nil {
		return SourcePlate{}, fmt.Errorf("parsing source plate file %s: %w", path, err)
	}

	barcode := fp.Barcode
	if barcode == "" {
		barcode = common.FallbackBarcode()
	}
	p := SourcePlate{Barcode: barcode}
	for _, w := range fp.Wells {
		p.Wells = append(p.Wells, SourceWell{
			Position:        w.Position,
			Sample:          w.Sample,
			VolumeUL:        w.VolumeUL,
			ConcentrationUM: w.ConcentrationUM,
		})
	}
	if err := p.Validate(); err != nil {
		return SourcePlate{}, err
	}
	return p, nil
}
