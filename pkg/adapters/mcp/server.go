// Package mcp exposes the FSM checks and the security aggregator as Model
// Context Protocol tools, so an assistant can verify its own artifacts.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/fsmgen/internal/logging"
	"github.com/aretw0/fsmgen/internal/presentation/graph"
	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/fsm"
	"github.com/aretw0/fsmgen/pkg/prompt"
	"github.com/aretw0/fsmgen/pkg/security"
)

// TemplateURI is the resource holding the FSM template given to models.
const TemplateURI = "fsmgen://template/fsm"

// ValidateResponse is the structured result of validate_fsm.
type ValidateResponse struct {
	Valid       bool     `json:"valid" jsonschema_description:"Whether the structural checks passed"`
	Message     string   `json:"message" jsonschema_description:"First failing check, or the success message"`
	Unreachable []string `json:"unreachable" jsonschema_description:"States not reachable from the initial state"`
	HasCycle    bool     `json:"has_cycle" jsonschema_description:"Whether the transition graph contains a cycle"`
	Accepted    bool     `json:"accepted" jsonschema_description:"Valid, fully reachable and cyclic"`
	Violations  []string `json:"violations,omitempty" jsonschema_description:"Decode problems when the document could not be read"`
}

// ScoreResponse is the structured result of score_findings.
type ScoreResponse struct {
	Findings []domain.MergedFinding `json:"findings" jsonschema_description:"Findings merged per check"`
	Report   domain.RiskReport      `json:"report" jsonschema_description:"Weighted risk score and severity distribution"`
}

// Server wraps an MCP server with the fsmgen tools registered.
type Server struct {
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(version string, opts ...Option) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer("fsmgen-mcp", version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	validateTool := mcp.NewTool("validate_fsm",
		mcp.WithDescription("Validate a finite state machine document and analyze its transition graph."),
		mcp.WithString("fsm", mcp.Required(), mcp.Description("The FSM as JSON, optionally inside a markdown code fence")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(validateTool, mcp.NewStructuredToolHandler(s.handleValidate))

	s.mcpServer.AddTool(mcp.NewTool("graph_fsm",
		mcp.WithDescription("Render a finite state machine document as a Mermaid flowchart."),
		mcp.WithString("fsm", mcp.Required(), mcp.Description("The FSM as JSON")),
	), s.handleGraph)

	scoreTool := mcp.NewTool("score_findings",
		mcp.WithDescription("Merge static analysis findings per check and compute the weighted risk score."),
		mcp.WithString("findings", mcp.Required(), mcp.Description("JSON array of findings with check, impact, confidence, start_line, end_line")),
		mcp.WithOutputSchema[ScoreResponse](),
	)
	s.mcpServer.AddTool(scoreTool, mcp.NewStructuredToolHandler(s.handleScore))
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidateResponse, error) {
	raw, _ := args["fsm"].(string)
	doc, err := fsm.Parse(raw)
	if err != nil {
		var derr *fsm.DecodeError
		if errors.As(err, &derr) {
			return ValidateResponse{Message: err.Error(), Unreachable: []string{}, Violations: derr.Violations()}, nil
		}
		return ValidateResponse{}, err
	}

	valid, msg := fsm.Validate(doc)
	resp := ValidateResponse{Valid: valid, Message: msg, Unreachable: []string{}}
	if valid {
		a := fsm.Analyze(doc)
		resp.Unreachable = append(resp.Unreachable, a.Unreachable...)
		resp.HasCycle = a.HasCycle
		resp.Accepted = len(a.Unreachable) == 0 && a.HasCycle
	}
	s.logger.Debug("MCP validate_fsm", "valid", resp.Valid, "accepted", resp.Accepted)
	return resp, nil
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("fsm")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := fsm.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("decode failed: %v", err)), nil
	}

	var overlay *graph.GraphOverlay
	if valid, _ := fsm.Validate(doc); valid {
		overlay = &graph.GraphOverlay{Unreachable: fsm.Analyze(doc).Unreachable}
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(doc, overlay)), nil
}

func (s *Server) handleScore(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ScoreResponse, error) {
	raw, _ := args["findings"].(string)
	var findings []domain.Finding
	if err := json.Unmarshal([]byte(raw), &findings); err != nil {
		return ScoreResponse{}, fmt.Errorf("invalid findings: %w", err)
	}
	merged, report := security.Aggregate(findings)
	if merged == nil {
		merged = []domain.MergedFinding{}
	}
	return ScoreResponse{Findings: merged, Report: report}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TemplateURI, "FSM Template",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      TemplateURI,
				MIMEType: "text/plain",
				Text:     prompt.FSMTemplate,
			},
		}, nil
	})
}
