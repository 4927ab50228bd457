package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/blctm/gigagreen/internal/testutil"
	"github.com/blctm/gigagreen/pkg/cellkpi/export"
	"github.com/blctm/gigagreen/pkg/cellkpi/kpi"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeWorkbooks(t *testing.T, dir string, rows map[string]int) []string {
	t.Helper()
	var paths []string
	for _, name := range []string{"A_1.xlsx", "B_1.xlsx", "C_1.xlsx"} {
		n, ok := rows[name]
		if !ok {
			continue
		}
		wb := testutil.NewCycleWorkbook(n, func(i int) float64 { return 150 + float64(i) })
		paths = append(paths, wb.Save(t, dir, name))
	}
	return paths
}

func readSummary(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	table, err := export.ReadCSV(f)
	require.NoError(t, err)
	ids := make([]string, len(table.Rows))
	for i, r := range table.Rows {
		ids[i] = r.CellID
	}
	return ids
}

func TestSummarizeWritesCSV(t *testing.T) {
	dir := t.TempDir()
	tChdir(t, dir)
	paths := writeWorkbooks(t, dir, map[string]int{"A_1.xlsx": 103, "B_1.xlsx": 103})
	out := filepath.Join(dir, "summary.csv")

	_, _, err := execute(t, append([]string{"summarize", "-o", out}, paths...)...)
	require.NoError(t, err)
	assert.Equal(t, []string{"A_1", "B_1"}, readSummary(t, out))
}

func TestSummarizeReportsFailuresAfterWriting(t *testing.T) {
	dir := t.TempDir()
	tChdir(t, dir)
	paths := writeWorkbooks(t, dir, map[string]int{"A_1.xlsx": 103, "B_1.xlsx": 20, "C_1.xlsx": 103})
	out := filepath.Join(dir, "summary.csv")

	_, stderr, err := execute(t, append([]string{"summarize", "-o", out}, paths...)...)
	require.Error(t, err)
	assert.Contains(t, stderr, "B_1.xlsx")
	assert.Equal(t, []string{"A_1", "C_1"}, readSummary(t, out))
}

func TestSummarizeMerge(t *testing.T) {
	dir := t.TempDir()
	tChdir(t, dir)
	paths := writeWorkbooks(t, dir, map[string]int{"A_1.xlsx": 103, "B_1.xlsx": 103})
	first := filepath.Join(dir, "first.csv")
	merged := filepath.Join(dir, "merged.csv")

	_, _, err := execute(t, "summarize", "-o", first, paths[0])
	require.NoError(t, err)
	_, _, err = execute(t, "summarize", "--merge", first, "-o", merged, paths[1])
	require.NoError(t, err)

	assert.Equal(t, []string{"A_1", "B_1"}, readSummary(t, merged))
}

func TestSummarizeRejectsUnknownFormat(t *testing.T) {
	tChdir(t, t.TempDir())
	_, _, err := execute(t, "summarize", "--format", "parquet", "a.xlsx")
	assert.ErrorContains(t, err, "invalid format")
}

func TestProtocolCommand(t *testing.T) {
	tChdir(t, t.TempDir())
	stdout, _, err := execute(t, "protocol")
	require.NoError(t, err)

	var p kpi.Protocol
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &p))
	assert.Equal(t, kpi.DefaultProtocol(), p)
}
