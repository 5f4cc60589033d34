// Package solve implements the "plateforge solve" subcommand: load a
// design and a gene list, run the solver, and write the resulting layouts
// as JSON.
package solve

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/biolabs/plateforge/pkg/common"
	"github.com/biolabs/plateforge/pkg/design"
	"github.com/biolabs/plateforge/pkg/solver"
)

var (
	designPath string
	genesPath  string
	sourcePath string
	outPath    string
	timeout    float64
	seed       int64
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a plate layout for a design and a list of genes",
	Long: `Solve reads a design YAML file and a newline-delimited gene list,
places the genes (and the design's configured controls) onto as many
plates as capacity requires, and writes the resulting layouts as JSON.

Examples:
  plateforge solve --design design.yaml --genes genes.txt --out layouts.json
  plateforge solve --design design.yaml --genes genes.txt --source source.yaml --seed 7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := design.LoadDesignFile(designPath)
		if err != nil {
			return fmt.Errorf("loading design: %w", err)
		}

		genes, err := readGeneList(genesPath)
		if err != nil {
			return fmt.Errorf("loading gene list: %w", err)
		}

		var source design.SourcePlate
		if sourcePath != "" {
			source, err = design.LoadSourcePlateFile(sourcePath)
			if err != nil {
				return fmt.Errorf("loading source plate: %w", err)
			}
		}

		sp := common.NewSpinner(fmt.Sprintf("solving %d genes...", len(genes)))
		sp.Start()

		opts := solver.Options{TimeoutSeconds: timeout, Seed: seed}
		// --workers is the root's persistent flag; the root command has
		// already rejected values that are not 'full', 'half', or >= 1.
		if w, err := cmd.Flags().GetString("workers"); err == nil {
			switch w = strings.ToLower(strings.TrimSpace(w)); w {
			case "full":
				opts.Workers = runtime.NumCPU()
			case "half":
				opts.Workers = max(1, runtime.NumCPU()/2)
			default:
				opts.Workers, _ = strconv.Atoi(w)
			}
		}
		result := solver.SolveWithOptions(d, source, genes, opts)

		spun := sp.Stop()
		common.Info("solve finished: status=%s plates=%d violations=%d elapsed=%dms (spinner ran %s)", result.Status, len(result.Layouts), len(result.Violations), result.SolveTimeMs, spun.Round(time.Millisecond))
		if len(result.RelaxedConstraints) > 0 {
			common.Warning("relaxed or approximated: %s", strings.Join(result.RelaxedConstraints, ", "))
		}

		return writeResult(result)
	},
}

func init() {
	solveCmd.Flags().StringVar(&designPath, "design", "", "path to a design YAML file (required)")
	solveCmd.Flags().StringVar(&genesPath, "genes", "", "path to a newline-delimited gene list (required)")
	solveCmd.Flags().StringVar(&sourcePath, "source", "", "path to a source-plate YAML file (optional)")
	solveCmd.Flags().StringVar(&outPath, "out", "", "output path for the layouts JSON (default: stdout)")
	solveCmd.Flags().Float64Var(&timeout, "timeout", 30, "solve timeout in seconds")
	solveCmd.Flags().Int64Var(&seed, "seed", 0, "search seed (0 uses the default fixed seed)")
	_ = solveCmd.MarkFlagRequired("design")
	_ = solveCmd.MarkFlagRequired("genes")
}

// GetCommand returns the solve command for registration with root.
func GetCommand() *cobra.Command {
	return solveCmd
}

func readGeneList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var genes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		genes = append(genes, line)
	}
	return genes, scanner.Err()
}

func writeResult(result solver.Result) error {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if outPath == "" {
		_, err := os.Stdout.Write(append(b, '\n'))
		return err
	}
	if err := os.WriteFile(outPath, b, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	common.Info("wrote %s", outPath)
	return nil
}
