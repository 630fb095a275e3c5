/*
Package fsmgen generates Solidity smart contracts from natural-language
requirements, using a finite state machine as an intermediate artifact.

A refinement session first asks a language model for an FSM, checks it
structurally (initial state, targets, triggers) and as a graph (every state
reachable, at least one cycle), and feeds every violation back until the FSM
is accepted or the budget is spent. It then asks for the contract, compiles
it and scans it with a static analyzer, again feeding diagnostics and merged
findings back within separate budgets.

# Packages

  - pkg/fsm: decoding, lenient repair, validation and graph analysis of FSM documents.
  - pkg/security: merging and scoring of analyzer findings, SARIF export.
  - pkg/refine: the refinement control loop.
  - pkg/evaluate: compilation pass rate and dataset security metrics.
  - pkg/adapters: OpenAI dialogue, solc and Slither toolchain, Redis, BadgerDB, JSONL, HTTP and MCP.

# Usage

	loop := refine.New(dialogue, compiler, scanner, refine.WithBudgets(refine.DefaultBudgets()))
	sink, _ := jsonl.OpenSink("out.jsonl")
	defer sink.Close()

	p := fsmgen.NewPipeline(loop, sink, fsmgen.WithModel("gpt-4o"), fsmgen.WithWorkers(4))
	summary, err := p.Run(ctx, requirements)

The fsmgen command wraps the same pipeline together with the offline
filter, the evaluators and the HTTP and MCP servers.
*/
package fsmgen
