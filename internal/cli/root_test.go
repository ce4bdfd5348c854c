package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCLI runs the root command with args and returns stdout.
func executeCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// testDB returns a database path in a fresh temp dir.
func testDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "racetally", cmd.Use)
	assert.Contains(t, cmd.Long, "rank token")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"settings", "register", "rename", "round", "undo", "reset", "board", "settle", "history", "check", "replay"}

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

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, DefaultDatabase, dbFlag.DefValue)

	langFlag := cmd.PersistentFlags().Lookup("lang")
	require.NotNil(t, langFlag)
	assert.Equal(t, "en", langFlag.DefValue)
}

func TestSettingsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	settingsCmd, _, err := cmd.Find([]string{"settings"})
	require.NoError(t, err)

	retention := settingsCmd.Flags().Lookup("retention")
	require.NotNil(t, retention)
	assert.Equal(t, "-1", retention.DefValue)
	assert.NotNil(t, settingsCmd.Flags().Lookup("players"))
	assert.NotNil(t, settingsCmd.Flags().Lookup("games"))
	assert.NotNil(t, settingsCmd.Flags().Lookup("reload-rules"))
}

func TestInvalidFormat(t *testing.T) {
	_, err := executeCLI(t, "--db", testDB(t), "--format", "xml", "board")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidLanguage(t *testing.T) {
	_, err := executeCLI(t, "--db", testDB(t), "--lang", "!!", "board")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid language")
}

func TestEnvOverrides(t *testing.T) {
	dbPath := testDB(t)
	t.Setenv("RACETALLY_DB", dbPath)
	t.Setenv("RACETALLY_FORMAT", "json")

	out, err := executeCLI(t, "settings", "--players", "3")
	require.NoError(t, err)
	assert.Contains(t, out, `"roster_size":3`)

	// Flags win over the environment.
	out, err = executeCLI(t, "--format", "text", "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "Players: 3")
}

func TestEnvRetentionAppliesToNewSession(t *testing.T) {
	t.Setenv("RACETALLY_RETENTION", "25")

	out, err := executeCLI(t, "--db", testDB(t), "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "Retention: 25 rounds")
}
