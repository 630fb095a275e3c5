package process

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/fsmgen/pkg/domain"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
}

func TestRunner_Run(t *testing.T) {
	skipOnWindows(t)

	runner := NewRunner()
	runner.Register("echo_env", "sh", "-c", "echo $SOLC_VERSION; echo oops >&2; exit $CODE")

	t.Run("Passes Parameters via Env Vars", func(t *testing.T) {
		out, err := runner.Run(context.Background(), Invocation{
			Tool: "echo_env",
			Env:  map[string]string{"SOLC_VERSION": "0.8.19", "CODE": "0"},
		})
		require.NoError(t, err)
		assert.Equal(t, "0.8.19", strings.TrimSpace(out.Stdout))
		assert.Equal(t, "oops", strings.TrimSpace(out.Stderr))
		assert.Equal(t, 0, out.ExitCode)
	})

	t.Run("Reports Exit Code Without Error", func(t *testing.T) {
		out, err := runner.Run(context.Background(), Invocation{
			Tool: "echo_env",
			Env:  map[string]string{"CODE": "3"},
		})
		require.NoError(t, err)
		assert.Equal(t, 3, out.ExitCode)
	})

	t.Run("Fails For Unregistered Command", func(t *testing.T) {
		_, err := runner.Run(context.Background(), Invocation{Tool: "hacker_script"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not registered")
	})
}

func TestRunner_Stdin(t *testing.T) {
	skipOnWindows(t)

	runner := NewRunner()
	runner.Register("cat", "cat")

	out, err := runner.Run(context.Background(), Invocation{Tool: "cat", Stdin: strings.NewReader("contract A {}")})
	require.NoError(t, err)
	assert.Equal(t, "contract A {}", out.Stdout)
}

func TestRunner_MissingBinary(t *testing.T) {
	runner := NewRunner()
	runner.Register("solc", "definitely-not-a-real-solc-binary")

	_, err := runner.Run(context.Background(), Invocation{Tool: "solc"})
	assert.ErrorIs(t, err, domain.ErrToolchainUnavailable)
}

func TestRunner_Timeout(t *testing.T) {
	skipOnWindows(t)

	runner := NewRunner(WithTimeout(50 * time.Millisecond))
	runner.Register("slow", "sleep", "5")

	_, err := runner.Run(context.Background(), Invocation{Tool: "slow"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoadTools(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("yaml", func(t *testing.T) {
		tools, err := LoadTools(write("tools.yaml", `tools:
  - name: solc
    command: /opt/solc/bin/solc
    env:
      SOLC_SELECT_HOME: /opt/solc
`))
		require.NoError(t, err)
		require.Len(t, tools, 1)
		assert.Equal(t, "/opt/solc/bin/solc", tools["solc"].Command)
		assert.Equal(t, "/opt/solc", tools["solc"].Env["SOLC_SELECT_HOME"])

		runner := NewRunner(WithRegistry(tools))
		runner.Register("solc", "solc")
		assert.True(t, runner.Has("solc"))
		assert.Equal(t, "/opt/solc/bin/solc", runner.registry["solc"].Command, "configured entry wins over default")
	})

	t.Run("json", func(t *testing.T) {
		tools, err := LoadTools(write("tools.json", `{"tools": [{"name": "slither", "command": "python3", "args": ["-m", "slither"]}]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"-m", "slither"}, tools["slither"].Args)
	})

	t.Run("missing file", func(t *testing.T) {
		tools, err := LoadTools(filepath.Join(dir, "absent.yaml"))
		require.NoError(t, err)
		assert.Empty(t, tools)
	})

	invalid := []struct {
		name    string
		content string
	}{
		{"no name", "tools:\n  - command: solc\n"},
		{"no command", "tools:\n  - name: solc\n"},
		{"duplicate", "tools:\n  - {name: solc, command: a}\n  - {name: solc, command: b}\n"},
		{"malformed", "tools: [\n"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTools(write("bad.yaml", tt.content))
			assert.Error(t, err)
		})
	}
}
