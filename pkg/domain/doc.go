/*
Package domain contains the core models shared by every fsmgen component.

It defines the finite-state-machine document produced by the model, the
security findings reported by static analysis, and the records persisted for
each refinement session. The package is kept free of I/O and of third-party
dependencies so that the validators, the aggregator and the adapters can all
depend on it.

# Key Entities

  - Document: the FSM intermediate representation (states, events, functions).
  - State / Transition: nodes and edges of the FSM transition graph.
  - Finding: a single static-analysis result with impact and confidence.
  - RiskReport: the weighted score derived from merged findings.
  - Record: the line persisted for each processed requirement.
*/
package domain
