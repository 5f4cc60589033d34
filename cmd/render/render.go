// Package render implements the "plateforge render" subcommand: draw a
// solved plate layout as an SVG grid, wells colored by content type and
// the excluded edge ring shaded, for a quick visual sanity check. This is
// a visualization convenience only — it never feeds back into solving.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	svg "github.com/ajstarks/svgo"
	"github.com/spf13/cobra"

	"github.com/biolabs/plateforge/pkg/common"
	"github.com/biolabs/plateforge/pkg/design"
	"github.com/biolabs/plateforge/pkg/geometry"
)

var (
	layoutsPath string
	plateIndex  int
	edgeLayers  int
	outPath     string
	cellSize    int
)

type layoutsFile struct {
	Layouts []design.PlateLayout `json:"Layouts"`
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one solved plate layout as an SVG grid",
	Long: `Render reads the layouts JSON produced by "plateforge solve" and draws
one plate (selected by --plate-index) as an SVG grid: sample wells in one
color, positive/negative/blank controls in others, the excluded edge ring
shaded, and everything else left empty.

Examples:
  plateforge render --layouts layouts.json --plate-index 0 --out plate_0.svg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(layoutsPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", layoutsPath, err)
		}
		var lf layoutsFile
		if err := json.Unmarshal(raw, &lf); err != nil {
			return fmt.Errorf("parsing %s: %w", layoutsPath, err)
		}
		if plateIndex < 0 || plateIndex >= len(lf.Layouts) {
			return fmt.Errorf("plate-index %d out of range (have %d layouts)", plateIndex, len(lf.Layouts))
		}
		layout := lf.Layouts[plateIndex]

		b, err := renderLayout(layout, edgeLayers, cellSize)
		if err != nil {
			return fmt.Errorf("rendering layout: %w", err)
		}

		if outPath == "" {
			_, err := os.Stdout.Write(b)
			return err
		}
		if err := os.WriteFile(outPath, b, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		common.Info("wrote %s", outPath)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&layoutsPath, "layouts", "", "path to a layouts JSON file produced by solve (required)")
	renderCmd.Flags().IntVar(&plateIndex, "plate-index", 0, "which layout to render, 0-based")
	renderCmd.Flags().IntVar(&edgeLayers, "edge", 1, "edge-exclusion layers to shade")
	renderCmd.Flags().IntVar(&cellSize, "cell-size", 28, "well cell size in pixels")
	renderCmd.Flags().StringVar(&outPath, "out", "", "output path for the SVG (default: stdout)")
	_ = renderCmd.MarkFlagRequired("layouts")
}

// GetCommand returns the render command for registration with root.
func GetCommand() *cobra.Command {
	return renderCmd
}

func wellColor(ct design.ContentType) string {
	switch ct {
	case design.ContentSample:
		return "#4299e1"
	case design.ContentPositiveControl:
		return "#48bb78"
	case design.ContentNegativeControl:
		return "#f56565"
	case design.ContentBlank:
		return "#a0aec0"
	default:
		return "#ffffff"
	}
}

func renderLayout(layout design.PlateLayout, edge, cell int) ([]byte, error) {
	rows, cols, err := geometry.Dimensions(layout.PlateKind)
	if err != nil {
		return nil, err
	}
	margin := cell
	width := cols*cell + 2*margin
	height := rows*cell + 2*margin

	buf := new(bytes.Buffer)
	canvas := svg.New(buf)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:#1a202c")
	canvas.Text(width/2, margin/2, fmt.Sprintf("%s (%d)", layout.Barcode, layout.PlateKind),
		"text-anchor:middle;font-size:14px;fill:#e2e8f0;font-family:sans-serif")

	for _, w := range layout.Wells {
		x := margin + w.Col*cell
		y := margin + w.Row*cell
		fill := wellColor(w.ContentType)
		style := fmt.Sprintf("fill:%s;stroke:#2d3748;stroke-width:1", fill)
		if geometry.IsEdge(rows, cols, edge, w.Row, w.Col) {
			style += ";opacity:0.35"
		}
		canvas.Rect(x, y, cell-1, cell-1, style)
	}
	canvas.End()
	return buf.Bytes(), nil
}
