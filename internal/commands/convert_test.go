package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cpa005/internal/runlog"
)

func copyTestdata(t *testing.T, dst string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "payments.csv"))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}

func TestConvert_WritesFile(t *testing.T) {
	dir := t.TempDir()
	copyTestdata(t, filepath.Join(dir, "march.csv"))

	out, err := runCPA005(t, dir, "convert", "march.csv", "--mode", "PAD", "--creation-date", "2025-03-10")
	require.NoError(t, err, out)
	assert.Contains(t, out, "3 records, total 1326.09, 1 skipped")

	data, err := os.ReadFile(filepath.Join(dir, "march.txt"))
	require.NoError(t, err)
	records := strings.Split(string(data), "\n\n")
	require.Len(t, records, 5)
	assert.Len(t, records[0], 1464)
	assert.Len(t, records[1], 264)
	assert.Len(t, records[4], 1464)
	assert.Equal(t, "025069", records[0][24:30])

	// A run is logged relative to the working directory.
	entries, err := runlog.NewCSVStore(filepath.Join(dir, "logs", "conversions.csv")).Read()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, runlog.StatusOK, entries[0].Status)
	assert.Equal(t, 3, entries[0].Records)
}

func TestConvert_OutDirAndFlags(t *testing.T) {
	dir := t.TempDir()
	copyTestdata(t, filepath.Join(dir, "march.csv"))

	out, err := runCPA005(t, dir, "convert", "march.csv",
		"-m", "pds", "-o", "out", "--delimiter", "", "--file-number", "42", "--creation-date", "2025-03-10")
	require.NoError(t, err, out)

	data, err := os.ReadFile(filepath.Join(dir, "out", "march.txt"))
	require.NoError(t, err)
	assert.Len(t, data, 1464+3*264+1464, "no delimiter between records")
	assert.Equal(t, "42  ", string(data[20:24]), "header carries the file creation number")
	assert.Equal(t, byte('C'), data[1464])
}

func TestConvert_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	copyTestdata(t, filepath.Join(dir, "march.csv"))
	cfg := "output:\n  record_delimiter: \"\\n\"\n  extension: .cpa\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(cfg), 0o644))

	out, err := runCPA005(t, dir, "convert", "march.csv", "--mode", "PAD", "--config", "custom.yaml")
	require.NoError(t, err, out)

	data, err := os.ReadFile(filepath.Join(dir, "march.cpa"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(string(data), "\n"), 5)
}

func TestConvert_FailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	copyTestdata(t, filepath.Join(dir, "march.csv"))
	data, err := os.ReadFile(filepath.Join(dir, "march.csv"))
	require.NoError(t, err)
	bad := strings.Replace(string(data), "0.99", "zero", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "march.csv"), []byte(bad), 0o644))

	out, err := runCPA005(t, dir, "convert", "march.csv", "--mode", "PAD")
	require.Error(t, err)
	assert.Contains(t, out, "1 of 1 conversions failed")

	_, err = os.Stat(filepath.Join(dir, "march.txt"))
	assert.True(t, os.IsNotExist(err), "no output for a failed conversion")

	leftovers, err := filepath.Glob(filepath.Join(dir, ".cpa005-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temp files are cleaned up")

	entries, err := runlog.NewCSVStore(filepath.Join(dir, "logs", "conversions.csv")).Read()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, runlog.StatusFailed, entries[0].Status)
}

func TestConvert_SkipInvalid(t *testing.T) {
	dir := t.TempDir()
	copyTestdata(t, filepath.Join(dir, "march.csv"))
	data, err := os.ReadFile(filepath.Join(dir, "march.csv"))
	require.NoError(t, err)
	bad := strings.Replace(string(data), "0.99", "zero", 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "march.csv"), []byte(bad), 0o644))

	out, err := runCPA005(t, dir, "convert", "march.csv", "--mode", "PAD", "--skip-invalid")
	require.NoError(t, err, out)
	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, "2 records, total 1325.10, 1 skipped, 1 rejected")
}

func TestConvert_ImportDir(t *testing.T) {
	dir := t.TempDir()
	copyTestdata(t, filepath.Join(dir, "import", "a.csv"))
	copyTestdata(t, filepath.Join(dir, "import", "b.csv"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "readme.md"), []byte("x"), 0o644))

	out, err := runCPA005(t, dir, "convert", "--mode", "PAD", "--import-dir", "import", "--out-dir", "out")
	require.NoError(t, err, out)

	for _, name := range []string{"a", "b"} {
		_, err := os.Stat(filepath.Join(dir, "out", name+".txt"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(dir, "import", "processed", name+".csv"))
		assert.NoError(t, err, "%s.csv moved to processed", name)
	}
	_, err = os.Stat(filepath.Join(dir, "import", "readme.md"))
	assert.NoError(t, err, "unsupported files stay put")
}

func TestConvert_Errors(t *testing.T) {
	dir := t.TempDir()
	copyTestdata(t, filepath.Join(dir, "march.csv"))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no mode", []string{"convert", "march.csv"}, `"mode" not set`},
		{"bad mode", []string{"convert", "march.csv", "--mode", "ACH"}, "unknown record mode"},
		{"no input", []string{"convert", "--mode", "PAD"}, "no input files"},
		{"bad date", []string{"convert", "march.csv", "--mode", "PAD", "--creation-date", "10/03/2025"}, "--creation-date"},
		{"bad file number", []string{"convert", "march.csv", "--mode", "PAD", "--file-number", "10000"}, "out of range"},
		{"missing file", []string{"convert", "nope.csv", "--mode", "PAD"}, "nope.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCPA005(t, dir, tt.args...)
			require.Error(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}
