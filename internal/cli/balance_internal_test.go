package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScript(t *testing.T) {
	ops, err := parseScript("inc:solar*3, DEC:coal ,reset,")
	require.NoError(t, err)

	assert.Equal(t, []scriptOp{
		{action: "inc", id: "solar", repeat: 3},
		{action: "dec", id: "coal", repeat: 1},
		{action: "reset", repeat: 1},
	}, ops)
}

func TestParseShares(t *testing.T) {
	shares, err := parseShares([]string{"solar=0.6", " wind = 0.4 ", "solar=0.5"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"solar": 0.5, "wind": 0.4}, shares)

	empty, err := parseShares(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestExportTarget(t *testing.T) {
	tests := []struct {
		in       string
		wantPath string
		wantDB   bool
	}{
		{"catalog.yaml", "catalog.yaml", false},
		{"catalog.json", "catalog.json", false},
		{"catalog.DB", "catalog.DB", true},
		{"data/catalog.sqlite3", "data/catalog.sqlite3", true},
		{"sqlite:catalog.bin", "catalog.bin", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			path, db := exportTarget(tt.in)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantDB, db)
		})
	}
}
