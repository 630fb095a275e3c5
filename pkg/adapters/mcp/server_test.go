package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/fsmgen/internal/testutils"
	"github.com/aretw0/fsmgen/pkg/fsm"
)

func TestHandleValidate(t *testing.T) {
	s := NewServer("test")
	ctx := context.Background()

	tests := []struct {
		name     string
		fsm      string
		valid    bool
		accepted bool
		decode   bool
	}{
		{name: "Accepted", fsm: testutils.ValidFSM, valid: true, accepted: true},
		{name: "Acyclic", fsm: testutils.AcyclicFSM, valid: true},
		{name: "Garbage", fsm: "not an fsm at all", decode: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]interface{}{"fsm": tt.fsm})
			require.NoError(t, err)
			assert.Equal(t, tt.valid, resp.Valid)
			assert.Equal(t, tt.accepted, resp.Accepted)
			assert.Equal(t, tt.decode, len(resp.Violations) > 0)
			if tt.valid {
				assert.Equal(t, fsm.PassedMessage, resp.Message)
			}
		})
	}
}

func TestHandleGraph(t *testing.T) {
	s := NewServer("test")
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"fsm": testutils.ValidFSM}

	res, err := s.handleGraph(context.Background(), req)
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `Created(("Created"))`)

	req.Params.Arguments = map[string]any{}
	res, err = s.handleGraph(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleScore(t *testing.T) {
	s := NewServer("test")
	args := map[string]interface{}{
		"findings": `[
			{"check":"reentrancy-eth","impact":"High","confidence":"High","start_line":10,"end_line":14},
			{"check":"reentrancy-eth","impact":"High","confidence":"High","start_line":14,"end_line":20},
			{"check":"pragma","impact":"Informational","confidence":"High","start_line":1,"end_line":1}
		]`,
	}

	resp, err := s.handleScore(context.Background(), mcp.CallToolRequest{}, args)
	require.NoError(t, err)
	require.Len(t, resp.Findings, 1)
	assert.Equal(t, 20, resp.Findings[0].EndLine)
	assert.InDelta(t, 9.0, resp.Report.RiskScore, 1e-9)

	_, err = s.handleScore(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"findings": "{"})
	assert.Error(t, err)
}
