package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gearmatrix/internal/testutil"
)

// executeCommand runs cmd with args and returns stdout, stderr and the error.
func executeCommand(cmd *cobra.Command, args ...string) (string, string, error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "gearmatrix", cmd.Use)
	assert.Contains(t, cmd.Long, "propagates speed and torque")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"calc", "validate", "batch", "test", "units"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestCalcCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	calcCmd, _, err := cmd.Find([]string{"calc"})
	require.NoError(t, err)

	gearFlag := calcCmd.Flags().Lookup("gear")
	require.NotNil(t, gearFlag)
	assert.Equal(t, "g", gearFlag.Shorthand)

	for _, name := range []string{"rpm", "torque", "length-unit", "torque-unit", "compat", "train"} {
		assert.NotNil(t, calcCmd.Flags().Lookup(name), "calc should have --%s", name)
	}
}

func TestBatchCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	batchCmd, _, err := cmd.Find([]string{"batch"})
	require.NoError(t, err)

	workersFlag := batchCmd.Flags().Lookup("workers")
	require.NotNil(t, workersFlag)
	assert.Equal(t, "w", workersFlag.Shorthand)
	assert.Equal(t, "0", workersFlag.DefValue)
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	filterFlag := testCmd.Flags().Lookup("filter")
	require.NotNil(t, filterFlag)
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, _, err := executeCommand(NewRootCommand(), "--format", "invalid", "units")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootConfigFile(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "gearmatrix.yaml", "format: json\n")

	stdout, _, err := executeCommand(NewRootCommand(), "--config", path, "units")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), "config format should select JSON")
	assert.Equal(t, "ok", resp.Status)
}

func TestRootFormatFlagOverridesConfig(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "gearmatrix.yaml", "format: json\n")

	stdout, _, err := executeCommand(NewRootCommand(), "--config", path, "--format", "text", "units")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Length units:")
}

func TestRootConfigFromEnvironment(t *testing.T) {
	t.Setenv("GEARMATRIX_FORMAT", "json")

	stdout, _, err := executeCommand(NewRootCommand(), "units")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"status": "ok"`)
}

func TestRootInvalidConfig(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "gearmatrix.yaml", "compat: loose\n")

	_, _, err := executeCommand(NewRootCommand(), "--config", path, "units")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRootMissingConfig(t *testing.T) {
	_, _, err := executeCommand(NewRootCommand(), "--config", filepath.Join(t.TempDir(), "nope.yaml"), "units")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootConfigCompatAppliesToCalc(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "gearmatrix.yaml", "compat: strict\n")

	stdout, _, err := executeCommand(NewRootCommand(), "--config", path, "calc",
		"--gear", "Worm:1:8:1", "--gear", "Helical:30:48", "--rpm", "1450", "--torque", "3")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "INCOMPATIBLE_TYPES")
}
