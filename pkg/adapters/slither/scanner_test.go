package slither

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/fsmgen/pkg/adapters/process"
	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/ports"
)

func TestParseReport(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "report.json"))
	require.NoError(t, err)

	findings, err := ParseReport(data)
	require.NoError(t, err)
	require.Len(t, findings, 2)

	assert.Equal(t, domain.Finding{
		Check:       "reentrancy-eth",
		Impact:      domain.LevelHigh,
		Confidence:  domain.LevelMedium,
		StartLine:   20,
		EndLine:     28,
		Description: "Reentrancy in Auction.withdraw() (fsmgen-1.sol#20-28):\n\tExternal calls:",
	}, findings[0])
	assert.Equal(t, domain.LevelInformational, findings[1].Impact)
}

func TestParseReport_Failure(t *testing.T) {
	_, err := ParseReport([]byte(`{"success": false, "error": "Invalid compilation: ParserError", "results": {}}`))
	require.ErrorIs(t, err, ErrAnalysisFailed)
	assert.Contains(t, err.Error(), "ParserError")

	_, err = ParseReport([]byte("Traceback (most recent call last):"))
	assert.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestScanner_Scan(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
	report, err := filepath.Abs(filepath.Join("testdata", "report.json"))
	require.NoError(t, err)

	// Stand-in for slither: checks the contract file exists, prints the report and exits 255.
	runner := process.NewRunner()
	runner.Register(ToolSlither, "sh", "-c", `test -f "$1" && [ "$SOLC_VERSION" = 0.8.19 ] && cat "`+report+`" && exit 255`, "slither")

	workDir := t.TempDir()
	s := New(runner, WithWorkDir(workDir))

	findings, err := s.Scan(context.Background(), "contract Auction {}", ports.Target{Version: "0.8.19"})
	require.NoError(t, err)
	assert.Len(t, findings, 2)

	leftovers, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temporary contract file is removed")
}
