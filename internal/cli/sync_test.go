package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/surveysync/internal/syncer"
	"github.com/roach88/surveysync/internal/testutil"
	"github.com/roach88/surveysync/internal/validate"
)

func TestSync_NewSurvey(t *testing.T) {
	db := tempDB(t)

	res := execute(t, "sync", "--db", db, "testdata/lobby.json")

	require.NoError(t, res.err)
	assert.Equal(t, "✓ Synced survey lobby (id-0001)\n"+
		"  sections  +1 ~0 -0\n"+
		"  questions +1 ~0 -0\n"+
		"  options   +1 ~0 -0\n"+
		"  rules     +1 ~0 -0\n", res.stdout)

	list := execute(t, "list", "--db", db)
	require.NoError(t, list.err)
	assert.Contains(t, list.stdout, "lobby")
	assert.Contains(t, list.stdout, "Published")
}

func TestSync_SecondRunMatchesByNaturalKey(t *testing.T) {
	db := tempDB(t)
	opts := &RootOptions{IDs: testutil.NewSequentialIDs("id")}

	first := executeWith(t, opts, "sync", "--db", db, "testdata/lobby.yaml")
	require.NoError(t, first.err)

	second := executeWith(t, opts, "--format", "json", "sync", "--db", db, "testdata/lobby.json")
	require.NoError(t, second.err)

	var resp struct {
		Status string     `json:"status"`
		Data   SyncResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(second.stdout), &resp))
	assert.Equal(t, "ok", resp.Status)

	report := resp.Data.Report
	assert.Equal(t, "id-0001", report.SurveyID)
	assert.False(t, report.SurveyCreated)
	assert.Equal(t, syncer.KindCounts{Matched: 1}, report.Sections)
	assert.Equal(t, syncer.KindCounts{Matched: 1}, report.Questions)
	assert.Equal(t, syncer.KindCounts{Matched: 1}, report.Options)
	// Rules without an id are replaced on every sync
	assert.Equal(t, syncer.KindCounts{Created: 1, Deleted: 1}, report.Rules)
}

func TestSync_DryRunSavesNothing(t *testing.T) {
	db := tempDB(t)

	res := execute(t, "sync", "--db", db, "--dry-run", "testdata/lobby.json")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "✓ Dry run for survey lobby")

	list := execute(t, "list", "--db", db)
	require.NoError(t, list.err)
	assert.Equal(t, "No surveys stored\n", list.stdout)
}

func TestSync_RejectedDefinitionChangesNothing(t *testing.T) {
	db := tempDB(t)

	res := execute(t, "sync", "--db", db, "testdata/invalid.json")

	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "✗ Validation failed")
	assert.Contains(t, res.stdout, validate.ErrDuplicateKey)
	assert.Contains(t, res.stderr, "definition rejected")

	list := execute(t, "list", "--db", db)
	require.NoError(t, list.err)
	assert.Equal(t, "No surveys stored\n", list.stdout)
}

func TestSync_SettingsCheck(t *testing.T) {
	t.Run("rejects by default", func(t *testing.T) {
		res := execute(t, "sync", "--db", tempDB(t), "testdata/bad-settings.json")

		require.Error(t, res.err)
		assert.Equal(t, ExitFailure, GetExitCode(res.err))
		assert.Contains(t, res.stdout, validate.ErrQuestionSettings)
	})

	t.Run("disabled by flag", func(t *testing.T) {
		res := execute(t, "sync", "--db", tempDB(t), "--settings-check=false", "testdata/bad-settings.json")

		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "✓ Synced survey lobby")
	})

	t.Run("disabled by environment", func(t *testing.T) {
		t.Setenv("SURVEYSYNC_SETTINGS_CHECK", "false")

		res := execute(t, "sync", "--db", tempDB(t), "testdata/bad-settings.json")

		require.NoError(t, res.err)
	})
}

func TestSync_UnknownSurveyID(t *testing.T) {
	res := execute(t, "sync", "--db", tempDB(t), "--survey-id", "missing", "testdata/lobby.json")

	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error ["+ErrCodeSurveyNotFound+"]")
}

func TestSync_ExplicitSurveyID(t *testing.T) {
	db := tempDB(t)
	opts := &RootOptions{IDs: testutil.NewSequentialIDs("id")}

	require.NoError(t, executeWith(t, opts, "sync", "--db", db, "testdata/lobby.json").err)

	res := executeWith(t, opts, "sync", "--db", db, "--survey-id", "id-0001", "testdata/lobby.json")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "✓ Synced survey lobby (id-0001)")
	assert.Contains(t, res.stdout, "sections  +0 ~1 -0")
}

func TestSync_UUIDsByDefault(t *testing.T) {
	res := executeWith(t, &RootOptions{}, "--format", "json", "sync", "--db", tempDB(t), "testdata/lobby.json")
	require.NoError(t, res.err)

	var resp struct {
		Data SyncResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Len(t, resp.Data.Report.SurveyID, 36)
	assert.True(t, resp.Data.Report.SurveyCreated)
}

func TestSync_StoreFailureIsLogged(t *testing.T) {
	// A directory is not a database file.
	res := execute(t, "--log-format", "json", "sync", "--db", t.TempDir(), "testdata/lobby.json")

	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error ["+ErrCodeStore+"]")

	lines := strings.Split(strings.TrimSpace(res.stderr), "\n")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Contains(t, entry["msg"], "open database")
	assert.NotEmpty(t, entry["error"])
}

// A definition id that is not stored falls back to the code, and the code's
// survey then rejects the foreign id.
func TestSync_UnknownDefinitionIDFallsBackToCode(t *testing.T) {
	db := tempDB(t)
	opts := &RootOptions{IDs: testutil.NewSequentialIDs("id")}
	require.NoError(t, executeWith(t, opts, "sync", "--db", db, "testdata/lobby.json").err)

	path := filepath.Join(t.TempDir(), "ghost.json")
	writeFile(t, path, `{"id":"ghost","code":"lobby","title":"Lobby","sections":[{"title":"Visit","order":1,"questions":[{"key":"reason","order":1,"type":"text","prompt":"Why?"}]}],"rules":[]}`)

	res := executeWith(t, opts, "sync", "--db", db, path)

	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))
	assert.Contains(t, res.stdout, validate.ErrIDMismatch)
	assert.Contains(t, res.stderr, `survey id ghost is not stored, matching by code \"lobby\"`)
}
