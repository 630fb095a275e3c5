package testutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteJSONL writes each row as one JSON line to a file in a temporary
// directory and returns its absolute path. It fails the test immediately on error.
func WriteJSONL(t *testing.T, name string, rows ...any) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err, "Failed to create dataset file")
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, row := range rows {
		require.NoError(t, enc.Encode(row), "Failed to encode dataset row")
	}
	return path
}

// Fence wraps body in a Markdown code fence with the given language tag.
func Fence(lang, body string) string {
	return "```" + lang + "\n" + body + "\n```"
}
