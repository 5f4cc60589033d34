// Package picklist turns solved plate layouts into liquid-handler
// transfer instructions: one entry per occupied well, naming where its
// contents came from and where they need to go.
package picklist

import (
	"fmt"
	"io"
	"strconv"

	"github.com/biolabs/plateforge/pkg/design"
)

// naValue is what an unset auxiliary field renders as in the CSV output.
const naValue = "N/A"

// Entry is one liquid-handler transfer instruction.
type Entry struct {
	SourcePlateBarcode      string
	SourceWell              string
	SourcePlateType         string // always naValue; not tracked by SourcePlate
	DestinationPlateBarcode string
	DestinationPlateType    string
	DestinationWell         string
	TransferVolumeNL        float64
	GeneSymbol              string
	CompoundLabel           string // always naValue; not tracked by this layout model
	EnsemblID               string // always naValue; not tracked by this layout model
}

// Picklist is an ordered set of entries, emission order preserved.
type Picklist struct {
	Entries []Entry
}

// Generate iterates layouts in the order given and, within each, wells
// in layout order, emitting one entry per well whose content is not
// empty. A well with no resolvable source well (no explicit source-well
// attribution and no source-plate match on its sample label) is skipped.
func Generate(layouts []design.PlateLayout, source design.SourcePlate, defaultTransferVolumeNL float64, transferVolumeFor func(sample string) float64) Picklist {
	var pl Picklist
	for _, layout := range layouts {
		destType := layout.PlateKind.PlateTypeTag()
		if destType == "" {
			destType = naValue
		}
		for _, w := range layout.Wells {
			if w.ContentType == design.ContentEmpty {
				continue
			}
			sourceBarcode, sourceWell, ok := resolveSource(w, source)
			if !ok {
				continue
			}

			volume := defaultTransferVolumeNL
			label := w.Sample
			if label != "" && transferVolumeFor != nil {
				volume = transferVolumeFor(label)
			}
			if label == "" {
				label = string(w.ContentType)
			}

			pl.Entries = append(pl.Entries, Entry{
				SourcePlateBarcode:      sourceBarcode,
				SourceWell:              sourceWell,
				SourcePlateType:         naValue,
				DestinationPlateBarcode: layout.Barcode,
				DestinationPlateType:    destType,
				DestinationWell:         w.Position,
				TransferVolumeNL:        volume,
				GeneSymbol:              label,
				CompoundLabel:           naValue,
				EnsemblID:               naValue,
			})
		}
	}
	return pl
}

// resolveSource implements the well's source lookup: its own recorded
// source well takes priority; otherwise fall back to the first source
// plate well carrying the same sample label.
func resolveSource(w design.LayoutWell, source design.SourcePlate) (barcode, well string, ok bool) {
	if w.SourceWellPosition != "" {
		return w.SourcePlateBarcode, w.SourceWellPosition, true
	}
	if w.Sample == "" {
		return "", "", false
	}
	if sw, found := source.FirstWellForSample(w.Sample); found {
		return source.Barcode, sw.Position, true
	}
	return "", "", false
}

// WriteCSV serializes pl to w in the bit-exact, comma-separated,
// newline-terminated format: a fixed header line followed by one line per
// entry in emission order, with no trailing newline after the last line.
func WriteCSV(w io.Writer, pl Picklist) error {
	header := "Source Plate Barcode,Source Well,Source Plate Type,Destination Plate Barcode,Destination Plate Type,Destination Well,Transfer Volume,GENE_SYMBOL,COMPOUND_LABEL,ENSEMBL_ID"
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	for _, e := range pl.Entries {
		line := fmt.Sprintf("\n%s,%s,%s,%s,%s,%s,%s,%s,%s,%s",
			e.SourcePlateBarcode,
			e.SourceWell,
			e.SourcePlateType,
			e.DestinationPlateBarcode,
			e.DestinationPlateType,
			e.DestinationWell,
			formatVolume(e.TransferVolumeNL),
			e.GeneSymbol,
			e.CompoundLabel,
			e.EnsemblID,
		)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// formatVolume renders a transfer volume as a plain decimal (no exponent),
// with no trailing ".0" so whole-number volumes don't look like fractions.
func formatVolume(nl float64) string {
	s := strconv.FormatFloat(nl, 'f', -1, 64)
	return s
}
