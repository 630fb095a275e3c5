/*
Package refine drives a generative model towards an accepted FSM and an
accepted smart contract.

A refinement session runs two bounded sub-loops over one conversation:

  - the FSM sub-loop validates the proposed state machine and feeds every
    defect back until it is structurally valid, fully reachable and cyclic;
  - the code sub-loop compiles the generated contract (phase A) and scans it
    for vulnerabilities (phase B), restarting from phase A after each
    corrective round, until it compiles cleanly with no findings.

Each corrective round consumes one unit of the matching budget. When a
budget runs out the last artifact is kept and its outcome is recorded as
exhausted; running out of budget is never an error.
*/
package refine
