package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/surveysync/internal/log"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "surveysync", cmd.Use)
	assert.Contains(t, cmd.Long, "SQLite")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"validate", "check-settings", "sync", "export", "fingerprint", "list"}

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
	assert.Equal(t, "surveysync.db", dbFlag.DefValue)

	logFormatFlag := cmd.PersistentFlags().Lookup("log-format")
	require.NotNil(t, logFormatFlag)
	assert.Equal(t, "text", logFormatFlag.DefValue)

	checkFlag := cmd.PersistentFlags().Lookup("settings-check")
	require.NotNil(t, checkFlag)
	assert.Equal(t, "true", checkFlag.DefValue)
}

func TestExportCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	exportCmd, _, err := cmd.Find([]string{"export"})
	require.NoError(t, err)

	outputFlag := exportCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestInvalidFormatRejected(t *testing.T) {
	res := execute(t, "--format", "xml", "list", "--db", tempDB(t))

	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stderr, "invalid format")
}

func TestConfigFileApplies(t *testing.T) {
	dir := t.TempDir()
	cfgPath := dir + "/surveysync.yaml"
	writeFile(t, cfgPath, "db: "+dir+"/from-config.db\nformat: json\n")

	res := execute(t, "--config", cfgPath, "list")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"status":"ok"`)
	assert.FileExists(t, dir+"/from-config.db")
}

func TestVerboseRaisesLogLevel(t *testing.T) {
	db := tempDB(t)

	require.NoError(t, execute(t, "-v", "list", "--db", db).err)
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	require.NoError(t, execute(t, "-v", "--log-level", "trace", "list", "--db", db).err)
	assert.Equal(t, log.TraceLevel, log.GetLevel(), "verbose never lowers the level")

	require.NoError(t, execute(t, "list", "--db", db).err)
	assert.Equal(t, log.WarnLevel, log.GetLevel())
}

func TestInvalidLogFormatRejected(t *testing.T) {
	res := execute(t, "--log-format", "xml", "list", "--db", tempDB(t))

	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stderr, "invalid log format")
}
