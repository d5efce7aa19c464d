package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLiquidity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liq.csv")
	require.NoError(t, os.WriteFile(path, []byte("symbol,avg_traded_value\nAAA,12500000\nBBB,9800000.5\n"), 0o644))

	values, err := loadLiquidity(path)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, 12500000.0, values["AAA"])
	assert.Equal(t, 9800000.5, values["BBB"])
}

func TestLoadLiquidityNoHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liq.csv")
	require.NoError(t, os.WriteFile(path, []byte("AAA,1000\n"), 0o644))

	values, err := loadLiquidity(path)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, values["AAA"])
}

func TestLoadLiquidityBadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liq.csv")
	require.NoError(t, os.WriteFile(path, []byte("AAA,1000\nBBB,not-a-number\n"), 0o644))

	_, err := loadLiquidity(path)
	require.Error(t, err)
}

func TestLoadLiquidityMissingFile(t *testing.T) {
	_, err := loadLiquidity(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
}
