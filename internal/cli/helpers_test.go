package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/surveysync/internal/testutil"
)

// result captures one CLI invocation.
type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs the root command with deterministic row ids.
func execute(t *testing.T, args ...string) result {
	t.Helper()
	return executeWith(t, &RootOptions{IDs: testutil.NewSequentialIDs("id")}, args...)
}

func executeWith(t *testing.T, opts *RootOptions, args ...string) result {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := newRootCommand(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "surveys.db")
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
