package design

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDesignFile(t *testing.T) {
	content := `
plate_kind: 384
default_replicates: 8
edge_empty_layers: 2
distribution: uniform
default_transfer_volume_nL: 25
controls:
  - type: positive
    label: PosCtrl
    count: 4
per_sample_overrides:
  Gene10:
    replicates: 20
    transfer_volume_nL: 40
`
	path := filepath.Join(t.TempDir(), "design.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	d, err := LoadDesignFile(path)
	require.NoError(t, err)

	require.Equal(t, 384, int(d.PlateKind))
	require.Equal(t, 2, d.EdgeEmptyLayers)
	require.Equal(t, 8, d.ReplicatesFor("Gene1"))
	require.Equal(t, 20, d.ReplicatesFor("Gene10"))
	require.Len(t, d.Controls, 1)
	require.Equal(t, "PosCtrl", d.Controls[0].Label)
}

func TestLoadDesignFileDefaultsEdgeLayersWhenUnset(t *testing.T) {
	content := "plate_kind: 96\n"
	path := filepath.Join(t.TempDir(), "design.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	d, err := LoadDesignFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, d.EdgeEmptyLayers)
}
