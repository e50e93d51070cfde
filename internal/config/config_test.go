package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	m := cfg.Mapping.Resolve()
	assert.Equal(t, []int{5}, m.Invoice.Key)
	assert.Equal(t, []int{15, 14}, m.Invoice.Amount)
	assert.Equal(t, []int{7}, m.PackingList.Cartons)
	assert.Equal(t, []int{11}, m.PackingList.NetWeight)
	assert.Equal(t, []int{12}, m.PackingList.GrossWeight)

	opts := cfg.Description.Options()
	assert.Equal(t, 11, opts.StartRow)
	assert.Equal(t, 0, opts.Column)
	assert.Equal(t, "net weight", opts.Sentinel)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reconciler.yaml")
	content := `
output_dir: ` + filepath.Join(dir, "out") + `
mapping:
  invoice:
    hs_code: ["C", "D"]
    amount: ["9"]
description:
  start_row: 5
  column: B
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "out"), cfg.OutputDir)
	assert.Equal(t, []string{"C", "D"}, cfg.Mapping.Invoice.HSCode)
	assert.Equal(t, []string{"9"}, cfg.Mapping.Invoice.Amount)
	// Keys missing from the file keep their defaults.
	assert.Equal(t, []string{"H"}, cfg.Mapping.PackingList.Cartons)
	assert.Equal(t, 8080, cfg.Server.Port)

	m := cfg.Mapping.Resolve()
	assert.Equal(t, []int{2, 3}, m.Invoice.Key)
	assert.Equal(t, []int{8}, m.Invoice.Amount)

	opts := cfg.Description.Options()
	assert.Equal(t, 4, opts.StartRow)
	assert.Equal(t, 1, opts.Column)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("RECON_SERVER_PORT", "9191")
	t.Setenv("RECON_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\nserver:\n  port: 70000\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "LogLevel")
	assert.Contains(t, err.Error(), "Port")
}

func TestValidateEmptyMapping(t *testing.T) {
	cfg := Default()
	cfg.Mapping.Invoice.Amount = nil
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Amount")
}

func TestInvalidReferences(t *testing.T) {
	m := Default().Mapping
	assert.Empty(t, m.InvalidReferences())

	m.Invoice.HSCode = []string{"F", "F1"}
	m.PackingList.NetWeight = []string{"?"}
	assert.Equal(t, []string{
		`invoice.hs_code="F1"`,
		`packing_list.net_weight="?"`,
	}, m.InvalidReferences())
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reconciler.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	err = WriteDefault(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
