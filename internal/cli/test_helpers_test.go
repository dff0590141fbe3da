package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/charta/internal/store"
	"github.com/roach88/charta/internal/testutil"
)

// result captures one command execution.
type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs the root command with args and captures its output.
func execute(t *testing.T, opts *RootOptions, stdin io.Reader, args ...string) result {
	t.Helper()

	if opts == nil {
		opts = &RootOptions{}
	}
	cmd := newRootCommand(opts)
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)

	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// fixedIDs returns root options whose history IDs are run-0001, run-0002, ...
func fixedIDs() *RootOptions {
	return &RootOptions{
		storeOptions: []store.Option{store.WithIDGenerator(testutil.NewFixedIDGenerator("run"))},
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// jsonResponse decodes a JSON envelope whose data has type T.
type jsonResponse[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
}

func decodeResponse[T any](t *testing.T, out string) jsonResponse[T] {
	t.Helper()
	var resp jsonResponse[T]
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}
