/*
Package ports defines the driven ports (interfaces) for the fsmgen pipeline.

These interfaces decouple the refinement loop from the model provider, the
Solidity toolchain and the storage backends, so each can be replaced by a
fake in tests or by another implementation in production.

# Key Interfaces

  - Dialogue: a multi-turn chat session with the generative model.
  - Compiler / Scanner: the Solidity compiler and the static analyzer, both
    parameterized by an explicit compiler Target.
  - RecordSink / OutcomeStore: where session records are appended and looked up.
  - ResultCache: memoizes toolchain results keyed by version and source digest.
  - DistributedLocker: coordinates toolchain installation across replicas.
*/
package ports
