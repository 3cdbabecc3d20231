package commands_test

import (
	"encoding/csv"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cpa005/internal/config"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "cpa005-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "cpa005")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/cpa005")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

// runCPA005 runs the binary with dir as its working directory.
func runCPA005(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	_, err := runCPA005(t, dir, "init", dir)
	require.NoError(t, err)

	expectedDirs := []string{
		"logs",
		"out",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range expectedDirs {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runCPA005(t, dir, "init", dir)
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, "cpa005.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestInit_Template(t *testing.T) {
	dir := t.TempDir()
	_, err := runCPA005(t, dir, "init", dir,
		"--client-name", "ACME", "--client-number", "0123456789",
		"--centre", "310", "--currency", "usd", "--transaction-code", "450")
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "template.csv"))
	require.NoError(t, err)
	defer f.Close()
	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 7, "six metadata rows and the column header")
	assert.Equal(t, []string{"Client Name", "ACME"}, rows[0])
	assert.Equal(t, []string{"Client Number", "0123456789"}, rows[1])
	assert.Equal(t, []string{"Processing Centre", "310"}, rows[2])
	assert.Equal(t, []string{"Currency Code", "USD"}, rows[3])
	assert.Equal(t, "Customer Number", rows[6][0])
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := runCPA005(t, dir, "init", dir)
	require.NoError(t, err)

	out, err := runCPA005(t, dir, "init", dir)
	require.Error(t, err)
	assert.Contains(t, out, "already exists")

	_, err = runCPA005(t, dir, "init", dir, "--force")
	require.NoError(t, err)
}

func TestInit_RejectsUnknownCentre(t *testing.T) {
	dir := t.TempDir()
	out, err := runCPA005(t, dir, "init", dir, "--centre", "999")
	require.Error(t, err)
	assert.Contains(t, out, "processing centre")
}

func TestVersion(t *testing.T) {
	out, err := runCPA005(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "cpa005 version dev")
}
