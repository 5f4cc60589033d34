package common

import (
	"strconv"

	"github.com/google/uuid"
)

// DefaultPlateBarcode returns the default destination-plate barcode for the
// plate at plateIndex (0-based).
func DefaultPlateBarcode(plateIndex int) string {
	return "plate_" + strconv.Itoa(plateIndex+1)
}

// FallbackBarcode generates a short, stable-looking barcode for a source
// plate that arrived without one. It is never used by the solver itself,
// only by CLI/config loading paths that need something to print.
func FallbackBarcode() string {
	return "plate_" + uuid.New().String()[:8]
}
