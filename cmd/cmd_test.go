package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testInvoiceCSV = "code,amount\n,\n8471.30,100\n9403.60,50\n8471.30,20\n"
	testPackingCSV = "ctns,net,gross\n2,10,12\n1,2,3\n1,1,1.5\n"

	testConfigYAML = `output_dir: %s
output_name_format: "{kind}_{uuid}"
log_level: error
log_format: json
mapping:
  invoice:
    hs_code: [A]
    amount: [B]
  packing_list:
    cartons: [A]
    net_weight: [B]
    gross_weight: [C]
description:
  start_row: 3
  column: A
  sentinel: net weight
`
)

// testEnv holds the files used by one command test.
type testEnv struct {
	dir       string
	outputDir string
	config    string
	invoice   string
	packing   string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{
		dir:       dir,
		outputDir: filepath.Join(dir, "out"),
		config:    filepath.Join(dir, "reconciler.yaml"),
		invoice:   filepath.Join(dir, "invoice.csv"),
		packing:   filepath.Join(dir, "packing.csv"),
	}
	writeFile(t, env.config, strings.ReplaceAll(testConfigYAML, "%s", env.outputDir))
	writeFile(t, env.invoice, testInvoiceCSV)
	writeFile(t, env.packing, testPackingCSV)
	return env
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores every flag to its default so tests do not leak
// state through the package-level flag variables.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			var values []string
			if trimmed := strings.Trim(f.DefValue, "[]"); trimmed != "" {
				values = strings.Split(trimmed, ",")
			}
			_ = sv.Replace(values)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func outputFiles(t *testing.T, dir, pattern string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	require.NoError(t, err)
	return matches
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "HS Code Reconciler")
	assert.Contains(t, out, "Version:    "+Version)
}

func TestReconcileCommandDryRun(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, "reconcile", "--config", env.config,
		"--invoice", env.invoice, "--packing-list", env.packing, "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "8471.30")
	assert.Contains(t, out, "9403.60")
	assert.Contains(t, out, "120.00")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "Paired lines:       3")
	assert.Contains(t, out, "HS codes:           2")

	assert.NoDirExists(t, env.outputDir)
}

func TestReconcileCommandWritesOutputs(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, "reconcile", "--config", env.config,
		"--invoice", env.invoice, "--packing-list", env.packing,
		"--format", "xlsx,csv", "--summary-log")
	require.NoError(t, err)

	assert.Len(t, outputFiles(t, env.outputDir, "hs-code-analysis_*.xlsx"), 1)
	assert.Len(t, outputFiles(t, env.outputDir, "hs-code-summary_*.csv"), 1)
	assert.Len(t, outputFiles(t, env.outputDir, "hs-code-details_*.csv"), 1)

	logs := outputFiles(t, env.outputDir, "processing_summary_*.txt")
	require.Len(t, logs, 1)
	data, err := os.ReadFile(logs[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "invoice.csv, packing.csv")
	assert.Contains(t, out, "Summary log:")
}

func TestReconcileCommandOutputDirOverride(t *testing.T) {
	env := newTestEnv(t)
	override := filepath.Join(env.dir, "elsewhere")

	_, err := execute(t, "reconcile", "--config", env.config,
		"--invoice", env.invoice, "--packing-list", env.packing, "--output-dir", override)
	require.NoError(t, err)

	assert.Len(t, outputFiles(t, override, "*.xlsx"), 1)
	assert.NoDirExists(t, env.outputDir)
}

func TestReconcileCommandMappingOverride(t *testing.T) {
	env := newTestEnv(t)

	// Column C of the invoice is empty, so no invoice line has an HS code.
	out, err := execute(t, "reconcile", "--config", env.config,
		"--invoice", env.invoice, "--packing-list", env.packing,
		"--dry-run", "--hs-code", "C")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid invoice data found")
	assert.Contains(t, out, "✗")
}

func TestReconcileCommandStrict(t *testing.T) {
	env := newTestEnv(t)
	headerOnly := filepath.Join(env.dir, "header-only.csv")
	writeFile(t, headerOnly, "code,amount\n")

	_, err := execute(t, "reconcile", "--config", env.config,
		"--invoice", headerOnly, "--packing-list", env.packing, "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid invoice data found")

	_, err = execute(t, "reconcile", "--config", env.config,
		"--invoice", headerOnly, "--packing-list", env.packing, "--dry-run", "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File must contain at least 2 rows")
}

func TestReconcileCommandErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing packing list flag",
			args:    []string{"reconcile", "--config", env.config, "--invoice", env.invoice},
			wantErr: "packing-list",
		},
		{
			name: "missing invoice file",
			args: []string{"reconcile", "--config", env.config, "--dry-run",
				"--invoice", filepath.Join(env.dir, "nope.csv"), "--packing-list", env.packing},
			wantErr: "file not found",
		},
		{
			name: "unsupported file type",
			args: []string{"reconcile", "--config", env.config, "--dry-run",
				"--invoice", env.config, "--packing-list", env.packing},
			wantErr: "unsupported file type",
		},
		{
			name: "missing config file",
			args: []string{"reconcile", "--config", filepath.Join(env.dir, "missing.yaml"),
				"--invoice", env.invoice, "--packing-list", env.packing},
			wantErr: "failed to read config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDescribeCommandDirectory(t *testing.T) {
	env := newTestEnv(t)
	invoices := filepath.Join(env.dir, "invoices")
	require.NoError(t, os.Mkdir(invoices, 0755))

	writeFile(t, filepath.Join(invoices, "a.csv"), "code,amount\n8471.30,100\nCotton shirts,\n,\nBlue,\nNet weight: 10kg,\nignored,\n")
	writeFile(t, filepath.Join(invoices, "b.csv"), "code,amount\n8471.30,100\nSteel desks,\nNET WEIGHT,\n")
	writeFile(t, filepath.Join(invoices, "notes.txt"), "skip me")

	out, err := execute(t, "describe", "--config", env.config, invoices)
	require.NoError(t, err)

	assert.Contains(t, out, "=== a.csv ===")
	assert.Contains(t, out, "=== b.csv ===")
	assert.Contains(t, out, "Cotton shirts")
	assert.Contains(t, out, "Steel desks")
	assert.NotContains(t, out, "ignored")
	assert.Contains(t, out, "Successful:      2")

	assert.Len(t, outputFiles(t, env.outputDir, "a_invoice-descriptions_*.xlsx"), 1)
	assert.Len(t, outputFiles(t, env.outputDir, "b_invoice-descriptions_*.xlsx"), 1)
}

func TestDescribeCommandSameStem(t *testing.T) {
	env := newTestEnv(t)
	config := filepath.Join(env.dir, "timestamp.yaml")
	writeFile(t, config, strings.Replace(
		strings.ReplaceAll(testConfigYAML, "%s", env.outputDir),
		`"{kind}_{uuid}"`, `"{kind}_{timestamp}"`, 1))

	invoice := "code,amount\n8471.30,100\nCotton shirts,\n"
	first := filepath.Join(env.dir, "one", "a.csv")
	second := filepath.Join(env.dir, "two", "a.csv")
	for _, path := range []string{first, second} {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		writeFile(t, path, invoice)
	}

	_, err := execute(t, "describe", "--config", config, first, second)
	require.NoError(t, err)
	assert.Len(t, outputFiles(t, env.outputDir, "a_invoice-descriptions_*.xlsx"), 2)
}

func TestBatchNameFormat(t *testing.T) {
	assert.Equal(t, "a_{kind}_{timestamp}_{uuid}", batchNameFormat("dir/a.xlsx", "{kind}_{timestamp}"))
	assert.Equal(t, "a_{kind}_{uuid}", batchNameFormat("a.csv", "{kind}_{uuid}"))
}

func TestDescribeCommandReportsFailures(t *testing.T) {
	env := newTestEnv(t)

	short := filepath.Join(env.dir, "short.csv")
	writeFile(t, short, "code,amount\n8471.30,100\n")

	out, err := execute(t, "describe", "--config", env.config, "--dry-run", env.invoice, short)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 file(s) failed")
	assert.Contains(t, out, "Errors:          1")
}

func TestPreviewCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, "preview", "--config", env.config, "--kind", "invoice", env.invoice)
	require.NoError(t, err)

	assert.Contains(t, out, "Data rows:      3")
	assert.Contains(t, out, "8471.30")
	assert.Contains(t, out, "Validation: invoice: OK")

	_, err = execute(t, "preview", "--config", env.config, "--kind", "receipt", env.invoice)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid kind")
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reconciler.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, err = execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "output_dir: ./output")
	assert.Contains(t, out, "sentinel: net weight")
}
