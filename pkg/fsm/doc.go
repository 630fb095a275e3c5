// Package fsm checks the finite-state-machine documents proposed by the model.
//
// Validate performs the ordered structural checks, Analyze inspects the
// transition graph for unreachable states and cycles, and Parse / RepairAndExtract
// turn raw model replies into documents, repairing malformed JSON when needed.
// Every function in this package is pure and safe for concurrent use.
package fsm
