// Package picklist implements the "plateforge picklist" subcommand:
// turn solved layouts into a liquid-handler picklist CSV.
package picklist

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/biolabs/plateforge/pkg/common"
	"github.com/biolabs/plateforge/pkg/design"
	"github.com/biolabs/plateforge/pkg/picklist"
)

var (
	layoutsPath string
	designPath  string
	sourcePath  string
	outPath     string
)

type layoutsFile struct {
	Layouts []design.PlateLayout `json:"Layouts"`
}

var picklistCmd = &cobra.Command{
	Use:   "picklist",
	Short: "Generate a liquid-handler picklist CSV from solved layouts",
	Long: `Picklist reads the layouts JSON produced by "plateforge solve", the
design that produced it (for transfer-volume overrides), and the source
plate, then writes a bit-exact picklist CSV.

Examples:
  plateforge picklist --layouts layouts.json --design design.yaml --source source.yaml --out picklist.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(layoutsPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", layoutsPath, err)
		}
		var lf layoutsFile
		if err := json.Unmarshal(raw, &lf); err != nil {
			return fmt.Errorf("parsing %s: %w", layoutsPath, err)
		}

		d, err := design.LoadDesignFile(designPath)
		if err != nil {
			return fmt.Errorf("loading design: %w", err)
		}

		var source design.SourcePlate
		if sourcePath != "" {
			source, err = design.LoadSourcePlateFile(sourcePath)
			if err != nil {
				return fmt.Errorf("loading source plate: %w", err)
			}
		}

		pl := picklist.Generate(lf.Layouts, source, d.DefaultTransferVolumeNL, d.TransferVolumeFor)
		common.Info("generated %d picklist entries from %d layout(s)", len(pl.Entries), len(lf.Layouts))

		out := os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", outPath, err)
			}
			defer f.Close()
			out = f
		}
		if err := picklist.WriteCSV(out, pl); err != nil {
			return fmt.Errorf("writing picklist: %w", err)
		}
		if outPath != "" {
			common.Info("wrote %s", outPath)
		}
		return nil
	},
}

func init() {
	picklistCmd.Flags().StringVar(&layoutsPath, "layouts", "", "path to a layouts JSON file produced by solve (required)")
	picklistCmd.Flags().StringVar(&designPath, "design", "", "path to the design YAML file used to produce the layouts (required)")
	picklistCmd.Flags().StringVar(&sourcePath, "source", "", "path to a source-plate YAML file (optional)")
	picklistCmd.Flags().StringVar(&outPath, "out", "", "output path for the picklist CSV (default: stdout)")
	_ = picklistCmd.MarkFlagRequired("layouts")
	_ = picklistCmd.MarkFlagRequired("design")
}

// GetCommand returns the picklist command for registration with root.
func GetCommand() *cobra.Command {
	return picklistCmd
}
