// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package saga is a single-threaded cooperative effect runtime: user code is
// written as suspendable routines ([Eff]) that yield declarative [Effect]
// values via [Perform], and an [Engine] interprets them — scheduling child
// routines, fanning broadcasts out to receivers, racing strands, and
// enforcing structured cancellation.
//
// # Routines
//
// [Eff] is the continuation-passing representation of a routine: a
// computation that accepts the rest of the routine (the continuation) and
// produces a final [Resumed] answer for the engine to step over.
//
//   - [Pure]: lift a plain value
//   - [Bind], [Map], [Then]: sequence routines
//   - [Suspend]: build an [Eff] directly from a CPS function
//
// # Stepping boundary
//
// [Step] drives an [Eff] one suspension point at a time, returning either a
// completed value or a [Suspension] — a one-shot handle whose [Suspension.Resume]
// advances the routine past the effect the engine just serviced. This is
// the shallow evaluation contract the [Engine] is built on: it never runs a
// routine to completion in one call, because effects like Receive must
// genuinely park a strand across other strands' turns.
//
// # Effects and the engine
//
// [Effect] is a closed tagged union — see [Variant] for the full set —
// constructed via [Broadcast], [Receive], [Call], [CallFork], [CallBlocking],
// [First], [Cancel], [Wrapper], [Intercept], and [DebugTree]. [Run]
// constructs the root [Strand] from a [RoutineFactory], drives it and every
// strand it spawns to completion, and returns the root's result or a
// [RuntimeFault].
//
// # Combinators
//
// Layered on the effect set, with no special engine support: [Sequence],
// [Join], [JoinAll], [Fork], [Race], [Subscribe], and [Sleep], plus the
// cooperative synchronisation primitives [Lock] and [Queue]. Both
// primitives clean up after cancelled waiters through the cancel hooks
// their pending operations install, so structured cancellation composes
// with them for free.
package saga
