package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// cmdResult captures one command execution.
type cmdResult struct {
	Stdout string
	Stderr string
	Err    error
}

// execute runs cmd with args and stdin and captures both writers.
func execute(cmd *cobra.Command, stdin string, args ...string) cmdResult {
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return cmdResult{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

func textOpts() *RootOptions {
	return &RootOptions{Format: "text"}
}

func jsonOpts() *RootOptions {
	return &RootOptions{Format: "json"}
}

// decodeResponse parses a JSON CLIResponse from stdout.
func decodeResponse(t *testing.T, stdout string) (CLIResponse, map[string]any) {
	t.Helper()

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), "stdout: %s", stdout)
	data, _ := resp.Data.(map[string]any)
	return resp, data
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
