package design

import "github.com/biolabs/plateforge/pkg/geometry"

// ContentType is the closed enumeration of what a well can hold.
type ContentType string

const (
	ContentEmpty           ContentType = "empty"
	ContentSample          ContentType = "sample"
	ContentPositiveControl ContentType = "positive_control"
	ContentNegativeControl ContentType = "negative_control"
	ContentBlank           ContentType = "blank"
)

// LayoutWell is one physical well of a destination plate layout.
type LayoutWell struct {
	Position          string
	Row, Col          int
	ContentType       ContentType
	Sample            string // sample label, or the control label for control wells; "" for empty wells
	ReplicateIndex    *int   // 0-based; nil unless ContentType == ContentSample
	SourcePlateBarcode string
	SourceWellPosition string
}

// PlateLayout is a full tiling of one destination plate: rows*cols wells,
// each appearing exactly once.
type PlateLayout struct {
	Barcode    string
	PlateKind  geometry.PlateKind
	PlateIndex int
	Wells      []LayoutWell
}

// WellAt returns the layout well at (row, col), and whether it was found.
func (l PlateLayout) WellAt(row, col int) (LayoutWell, bool) {
	for _, w := range l.Wells {
		if w.Row == row && w.Col == col {
			return w, true
		}
	}
	return LayoutWell{}, false
}

// Severity is a constraint violation's severity tag.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ConstraintViolation names a failed constraint check, its severity, and
// the positions it implicates.
type ConstraintViolation struct {
	Constraint  string
	Description string
	Severity    Severity
	Positions   []string
}
