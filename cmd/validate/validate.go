// Package validate implements the "plateforge validate" subcommand: load
// previously solved layouts and report adjacency/balance violations.
package validate

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/biolabs/plateforge/pkg/common"
	"github.com/biolabs/plateforge/pkg/design"
	"github.com/biolabs/plateforge/pkg/validator"
)

var (
	layoutsPath string
	outPath     string
)

// layoutsFile is the minimal shape validate needs out of a solve result —
// just the layouts, not the status/timing fields.
type layoutsFile struct {
	Layouts []design.PlateLayout `json:"Layouts"`
}

var validateCmd = &cobra.Command{
	Use:     "validate",
	Aliases: []string{"val"},
	Short:   "Validate solved layouts for adjacency and balance problems",
	Long: `Validate reads the layouts JSON produced by "plateforge solve" and
reports same-label adjacency and quadrant-balance warnings for each
layout.

Examples:
  plateforge validate --layouts layouts.json
  plateforge validate --layouts layouts.json --out violations.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(layoutsPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", layoutsPath, err)
		}
		var lf layoutsFile
		if err := json.Unmarshal(raw, &lf); err != nil {
			return fmt.Errorf("parsing %s: %w", layoutsPath, err)
		}

		var all []design.ConstraintViolation
		for i, layout := range lf.Layouts {
			violations := validator.Validate(layout)
			common.Info("plate %d (%s): %d violation(s)", i, layout.Barcode, len(violations))
			all = append(all, violations...)
		}

		if outPath != "" {
			b, err := json.MarshalIndent(all, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding violations: %w", err)
			}
			if err := os.WriteFile(outPath, b, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
			common.Info("wrote %s", outPath)
			return nil
		}

		for _, v := range all {
			fmt.Printf("[%s] %s: %s (%v)\n", v.Severity, v.Constraint, v.Description, v.Positions)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&layoutsPath, "layouts", "", "path to a layouts JSON file produced by solve (required)")
	validateCmd.Flags().StringVar(&outPath, "out", "", "output path for violations JSON (default: print to stdout)")
	_ = validateCmd.MarkFlagRequired("layouts")
}

// GetCommand returns the validate command for registration with root.
func GetCommand() *cobra.Command {
	return validateCmd
}
