package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/fsmgen/internal/testutils"
	"github.com/aretw0/fsmgen/pkg/fsm"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateCommand(t *testing.T) {
	t.Run("passes", func(t *testing.T) {
		out, err := run(t, "validate", writeFile(t, "fsm.json", testutils.ValidFSM))
		require.NoError(t, err)
		assert.Contains(t, out, "FSM validation passed")
	})

	t.Run("reports the bad target", func(t *testing.T) {
		doc := strings.Replace(testutils.ValidFSM, `"target": "Ended"`, `"target": "Closed"`, 1)
		out, err := run(t, "validate", writeFile(t, "fsm.json", doc))
		assert.ErrorIs(t, err, errInvalid)
		assert.Contains(t, out, "Closed")
	})
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	out, err := run(t, "analyze", "--json", writeFile(t, "fsm.json", testutils.AcyclicFSM))
	require.NoError(t, err)

	var got analyzeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Valid)
	assert.False(t, got.HasCycle)
	assert.False(t, got.Accepted)
	assert.Empty(t, got.Unreachable)
}

func TestGraphCommand(t *testing.T) {
	out, err := run(t, "graph", writeFile(t, "fsm.json", testutils.ValidFSM))
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "Bidding")
}

func TestFilterRows(t *testing.T) {
	rows := []map[string]any{
		{"id": "keep", "FSM": testutils.Fence("json", testutils.ValidFSM), "code": "contract A { }", "extra": 1.0},
		{"id": "acyclic", "FSM": testutils.AcyclicFSM},
		{"id": "broken", "FSM": "not json"},
	}

	tests := []struct {
		name     string
		opts     filterOptions
		expected []string
	}{
		{
			name:     "cardinality only",
			opts:     filterOptions{field: "FSM", filter: fsm.DefaultFilter()},
			expected: []string{"keep"},
		},
		{
			name:     "word window rejects short code",
			opts:     filterOptions{field: "FSM", filter: fsm.DefaultFilter(), minWords: 10, maxWords: 100},
			expected: nil,
		},
		{
			name:     "missing field",
			opts:     filterOptions{field: "code", filter: fsm.DefaultFilter()},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			kept, err := filterRows(&buf, rows, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, len(tt.expected), kept)

			var ids []string
			for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
				if line == "" {
					continue
				}
				var row map[string]any
				require.NoError(t, json.Unmarshal([]byte(line), &row))
				ids = append(ids, row["id"].(string))
				assert.Equal(t, 1.0, row["extra"])
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}
