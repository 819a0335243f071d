package cli_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/energyprophet/internal/catalog"
)

func TestCatalogExport(t *testing.T) {
	tests := []struct {
		name string
		file string
		arg  func(path string) string
		open func(ctx context.Context, path string) (*catalog.Memory, error)
	}{
		{name: "yaml", file: "catalog.yaml", arg: func(p string) string { return p }, open: catalog.LoadFile},
		{name: "sqlite by extension", file: "catalog.db", arg: func(p string) string { return p }, open: catalog.OpenSQLite},
		{
			name: "sqlite by prefix",
			file: "catalog.data",
			arg:  func(p string) string { return "sqlite:" + p },
			open: catalog.OpenSQLite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCLITest(t)
			path := filepath.Join(t.TempDir(), tt.file)

			out, err := executeCmd(t, "", "catalog", "export", tt.arg(path))
			require.NoError(t, err)
			assert.Contains(t, out, "Exported 4 countries to "+path)

			got, err := tt.open(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, catalog.Builtin().Len(), got.Len())

			deu, err := got.GetCountry(context.Background(), "deu")
			require.NoError(t, err)
			assert.InDelta(t, 432.0, deu.TotalGeneration, 1e-9)
		})
	}
}

func TestCatalogExport_RoundTripThroughCatalogFlag(t *testing.T) {
	setupCLITest(t)
	path := filepath.Join(t.TempDir(), "catalog.sqlite")

	_, err := executeCmd(t, "", "catalog", "export", path)
	require.NoError(t, err)

	out, err := executeCmd(t, "", "--catalog", path, "countries", "show", "ita")
	require.NoError(t, err)
	assert.Contains(t, out, "Italy (ita)")
}
