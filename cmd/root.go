package cmd

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/biolabs/plateforge/cmd/picklist"
	"github.com/biolabs/plateforge/cmd/render"
	"github.com/biolabs/plateforge/cmd/solve"
	"github.com/biolabs/plateforge/cmd/validate"
	"github.com/biolabs/plateforge/pkg/common"
)

var (
	verbose    bool
	workers    string
	workingDir string

	// WorkersCount is the parsed --workers value. Subcommand packages cannot
	// import this package, so cmd/solve reads the flag itself.
	WorkersCount int
)

var rootCmd = &cobra.Command{
	Use:   "plateforge",
	Short: "Constraint-based microplate layout designer",
	Long: `plateforge assigns samples and controls to microplate wells under
spatial constraints, validates the result, and emits liquid-handler
picklists.

It provides commands for:
  - Solving a layout for a design and a list of genes
  - Validating an existing layout for adjacency and balance problems
  - Generating a picklist CSV from solved layouts
  - Rendering a layout as an SVG for a quick visual check`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		common.VerboseEnabled = verbose
		common.ResetLogger()

		count, err := parseWorkers(workers)
		if err != nil {
			return fmt.Errorf("invalid --workers value: %w", err)
		}
		WorkersCount = count
		common.Verbose("workers: %d (from flag: %s)", WorkersCount, workers)

		if workingDir != "" {
			common.Verbose("changing working directory to: %s", workingDir)
			if err := os.Chdir(workingDir); err != nil {
				return fmt.Errorf("failed to change working directory: %w", err)
			}
		}
		return nil
	},
}

// Execute runs the root command; called once from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output for debugging")
	rootCmd.PersistentFlags().StringVarP(&workers, "workers", "j", "half", "number of concurrent search workers (integer, 'half', or 'full')")
	rootCmd.PersistentFlags().StringVarP(&workingDir, "working-dir", "w", "", "working directory for input/output paths (default: current directory)")

	rootCmd.AddCommand(solve.GetCommand())
	rootCmd.AddCommand(validate.GetCommand())
	rootCmd.AddCommand(picklist.GetCommand())
	rootCmd.AddCommand(render.GetCommand())
}

// workerFractions maps the named --workers shorthands to a fraction of
// runtime.NumCPU(). Plate solving is embarrassingly parallel across
// independent per-plate backtracking searches, so a fraction of the host's
// cores is a reasonable default without needing per-plate tuning.
var workerFractions = map[string]float64{
	"full": 1.0,
	"half": 0.5,
}

// parseWorkers resolves the --workers flag into a concrete worker count: a
// named fraction of the local core count, or a literal positive integer.
func parseWorkers(value string) (int, error) {
	value = strings.TrimSpace(strings.ToLower(value))

	if frac, named := workerFractions[value]; named {
		count := int(float64(runtime.NumCPU()) * frac)
		if count < 1 {
			count = 1
		}
		return count, nil
	}

	count, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("must be 'full', 'half', or a positive integer (got: %s)", value)
	}
	if count < 1 {
		return 0, fmt.Errorf("must be at least 1 (got: %d)", count)
	}
	return count, nil
}
