// Package services defines shared utilities consumed by the reconciliation
// components and the CLI host.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, the target audio folder,
//     and the executor phase for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     (recoverable planning errors vs fatal precondition failures vs
//     accumulated per-operation failures).
//
// Use these helpers when wiring new component logic so operational behaviour
// (error handling, observability) stays uniform across the engine.
package services
