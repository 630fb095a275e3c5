package testutils

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/fsmgen/pkg/domain"
	"github.com/aretw0/fsmgen/pkg/ports"
)

// ScriptedDialogue replies with a fixed script and records every prompt.
// Once the script is exhausted the last reply is repeated.
type ScriptedDialogue struct {
	mu      sync.Mutex
	Replies []string
	Prompts []string
	Err     error
	calls   int
}

func (d *ScriptedDialogue) Chat(_ context.Context, prompt string, history []domain.Message, _ bool) (string, []domain.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Prompts = append(d.Prompts, prompt)
	if d.Err != nil {
		return "", history, d.Err
	}
	if len(d.Replies) == 0 {
		return "", history, domain.ErrEmptyResponse
	}

	idx := min(d.calls, len(d.Replies)-1)
	d.calls++
	reply := d.Replies[idx]

	if len(history) == 0 {
		history = append(history, domain.Message{Role: domain.RoleSystem, Content: "test persona"})
	}
	history = append(history,
		domain.Message{Role: domain.RoleUser, Content: prompt},
		domain.Message{Role: domain.RoleAssistant, Content: reply},
	)
	return reply, history, nil
}

// Calls returns how many prompts were sent.
func (d *ScriptedDialogue) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Prompts)
}

// CompileStep is one scripted compiler answer.
type CompileStep struct {
	Result ports.CompileResult
	Err    error
}

// ScriptedCompiler answers with Steps in order, repeating the last one.
type ScriptedCompiler struct {
	mu      sync.Mutex
	Steps   []CompileStep
	Sources []string
	Targets []ports.Target
}

func (c *ScriptedCompiler) Compile(_ context.Context, code string, target ports.Target) (ports.CompileResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Sources = append(c.Sources, code)
	c.Targets = append(c.Targets, target)
	if len(c.Steps) == 0 {
		return ports.CompileResult{OK: true}, nil
	}
	step := c.Steps[min(len(c.Sources)-1, len(c.Steps)-1)]
	return step.Result, step.Err
}

// ScanStep is one scripted analyzer answer.
type ScanStep struct {
	Findings []domain.Finding
	Err      error
}

// ScriptedScanner answers with Steps in order, repeating the last one.
type ScriptedScanner struct {
	mu      sync.Mutex
	Steps   []ScanStep
	Sources []string
}

func (s *ScriptedScanner) Scan(_ context.Context, code string, _ ports.Target) ([]domain.Finding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Sources = append(s.Sources, code)
	if len(s.Steps) == 0 {
		return nil, nil
	}
	step := s.Steps[min(len(s.Sources)-1, len(s.Steps)-1)]
	return step.Findings, step.Err
}

// MemorySink collects appended records.
type MemorySink struct {
	mu      sync.Mutex
	Records []domain.Record
	Err     error
}

func (m *MemorySink) Append(_ context.Context, rec domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Records = append(m.Records, rec)
	return nil
}

// Snapshot returns a copy of the collected records.
func (m *MemorySink) Snapshot() []domain.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Record(nil), m.Records...)
}

// ValidFSM is a document accepted by the refinement loop: every state is
// reachable and Bidding/Ended form a cycle.
const ValidFSM = `{
  "contractName": "Auction",
  "initialState": "Created",
  "states": [
    {"name": "Created", "transitions": [{"trigger": "Start", "target": "Bidding", "action": "start"}]},
    {"name": "Bidding", "transitions": [{"trigger": "End", "target": "Ended", "action": "end"}]},
    {"name": "Ended", "transitions": [{"trigger": "Restart", "target": "Bidding", "action": "restart"}]}
  ],
  "variables": [{"name": "highestBid", "type": "uint", "initialValue": 0}],
  "functions": [{"name": "start", "function": "Opens the auction."}],
  "events": ["Start", "End", "Restart"]
}`

// AcyclicFSM is structurally valid but has no cycle.
const AcyclicFSM = `{
  "initialState": "A",
  "states": [
    {"name": "A", "transitions": [{"trigger": "go", "target": "B", "action": "move"}]},
    {"name": "B", "transitions": []}
  ],
  "functions": [{"name": "move", "function": "Moves on."}],
  "events": ["go"]
}`

// Contract returns a minimal Solidity contract named name.
func Contract(name string) string {
	return fmt.Sprintf("pragma solidity ^0.8.19;\n\ncontract %s {\n}\n", name)
}

// RoutedDialogue answers generation prompts by kind, so concurrent sessions
// sharing it each see a coherent conversation. Prompts mentioning
// "smart contract code" get Code; every other prompt gets FSM.
// A non-nil FailFor error is returned for prompts containing FailOn.
type RoutedDialogue struct {
	FSM     string
	Code    string
	FailOn  string
	FailFor error
}

func (d *RoutedDialogue) Chat(_ context.Context, prompt string, history []domain.Message, _ bool) (string, []domain.Message, error) {
	if d.FailFor != nil && d.FailOn != "" && strings.Contains(prompt, d.FailOn) {
		return "", history, d.FailFor
	}
	reply := d.FSM
	if strings.Contains(prompt, "smart contract code") {
		reply = d.Code
	}
	history = append(history,
		domain.Message{Role: domain.RoleUser, Content: prompt},
		domain.Message{Role: domain.RoleAssistant, Content: reply},
	)
	return reply, history, nil
}
