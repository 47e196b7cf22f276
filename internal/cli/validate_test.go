package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gearmatrix/internal/compiler"
	"github.com/roach88/gearmatrix/internal/testutil"
)

func TestValidateValidTrains(t *testing.T) {
	stdout, _, err := executeCommand(NewValidateCommand(&RootOptions{Format: "text"}), trainsDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ All trains valid (3)")
}

func TestValidateValidTrainsJSON(t *testing.T) {
	stdout, _, err := executeCommand(NewValidateCommand(&RootOptions{Format: "json"}), trainsDir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Trains)
}

func TestValidateNonExistentPath(t *testing.T) {
	stdout, _, err := executeCommand(NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, stdout, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	stdout, _, err := executeCommand(NewValidateCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
	assert.Contains(t, stdout, "no train files found")
}

func TestValidateNotATrainFile(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "notes.txt", "hello")

	_, _, err := executeCommand(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeLoadFailed)
}

func TestValidateUnparseableFile(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "broken.yaml", "gears: [\n")

	_, _, err := executeCommand(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestValidateInvalidTrain(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "cycle.yaml", testutil.CycleYAML)

	stdout, _, err := executeCommand(NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 1 error(s)")
	assert.Contains(t, stdout, "✗ Validation failed")
	assert.Contains(t, stdout, "CYCLE_DETECTED [E221]: cycle in gear connections: 0 → 1 → 0")
}

func TestValidateCollectsAllProblems(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "bad.yaml", `name: bad
input: {rpm: 1000, torque: 10}
gears:
  - {teeth: -1, radius: 50, connects: [7]}
  - {teeth: 10, radius: 0}
`)

	stdout, _, err := executeCommand(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 3)

	byDetail := make(map[string]string, len(resp.Data.Errors))
	for _, p := range resp.Data.Errors {
		byDetail[p.DetailCode] = p.Code
		assert.Equal(t, "bad", p.Train)
	}
	assert.Equal(t, map[string]string{
		compiler.ErrNegativeTeeth:     string(compiler.ErrCodeInvalidValue),
		compiler.ErrDanglingReference: string(compiler.ErrCodeInvalidReference),
		compiler.ErrInvalidRadius:     string(compiler.ErrCodeInvalidValue),
	}, byDetail)
	assert.Equal(t, resp.Data.Errors[0].Code, resp.Error.Code)
}

func TestValidateCycleJSONCodes(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "cycle.yaml", testutil.CycleYAML)

	stdout, _, err := executeCommand(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)

	var resp struct {
		Data  ValidationResult `json:"data"`
		Error *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, string(compiler.ErrCodeCycleDetected), resp.Data.Errors[0].Code)
	assert.Equal(t, compiler.ErrCycle, resp.Data.Errors[0].DetailCode)
	assert.Equal(t, string(compiler.ErrCodeCycleDetected), resp.Error.Code)
}

func TestValidateUnknownUnit(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "furlong.yaml", `name: furlong
units: {length: furlong}
input: {rpm: 1000, torque: 10}
gears:
  - {teeth: 10, radius: 5}
`)

	stdout, _, err := executeCommand(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "INVALID_VALUE")
	assert.Contains(t, stdout, "furlong")
}

func TestValidateCompat(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "worm.yaml", `name: worm
input: {rpm: 1450, torque: 3}
gears:
  - {type: Worm, teeth: 1, radius: 8, connects: [1]}
  - {type: Helical, teeth: 30, radius: 48}
`)

	stdout, _, err := executeCommand(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err, "incompatible types only warn by default")
	assert.Contains(t, stdout, "⚠ worm")
	assert.Contains(t, stdout, "✓ All trains valid (1)")

	stdout, _, err = executeCommand(NewValidateCommand(&RootOptions{Format: "text"}), path, "--compat", "strict")
	require.Error(t, err)
	assert.Contains(t, stdout, "INCOMPATIBLE_TYPES")
}

func TestValidateVerboseOutput(t *testing.T) {
	stdout, stderr, err := executeCommand(NewValidateCommand(&RootOptions{Format: "json", Verbose: true}),
		filepath.Join(trainsDir, "reducer.cue"))
	require.NoError(t, err)

	// Verbose logs go to stderr so JSON stays parseable
	assert.Contains(t, stderr, `Validating train "reducer"`)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
}

func TestValidateMultiplePaths(t *testing.T) {
	dir := t.TempDir()
	extra := testutil.WriteFile(t, dir, "extra.yaml", testutil.ReducerYAML)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("not a train"), 0644))

	stdout, _, err := executeCommand(NewValidateCommand(&RootOptions{Format: "text"}),
		filepath.Join(trainsDir, "reducer.cue"), extra)
	require.NoError(t, err)
	assert.Contains(t, stdout, "✓ All trains valid (2)")
}
