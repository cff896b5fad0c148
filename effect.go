// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

import (
	"fmt"
	"runtime"
)

// Variant discriminates the Effect tagged union.
type Variant int

const (
	VariantBroadcast Variant = iota
	VariantReceive
	VariantCall
	VariantCallFork
	VariantCallBlocking
	VariantFirst
	VariantCancel
	VariantWrapper
	VariantIntercept
	VariantDebugTree
)

// String renders the variant's diagnostic name.
func (v Variant) String() string {
	switch v {
	case VariantBroadcast:
		return "Broadcast"
	case VariantReceive:
		return "Receive"
	case VariantCall:
		return "Call"
	case VariantCallFork:
		return "CallFork"
	case VariantCallBlocking:
		return "CallBlocking"
	case VariantFirst:
		return "First"
	case VariantCancel:
		return "Cancel"
	case VariantWrapper:
		return "Wrapper"
	case VariantIntercept:
		return "Intercept"
	case VariantDebugTree:
		return "DebugTree"
	default:
		return "Unknown"
	}
}

// RoutineFactory builds a suspendable routine from arguments. Used by Call
// and CallFork to spawn a child strand.
type RoutineFactory func(args ...any) Eff[any]

// BlockingFunc is a function executed off the loop thread by the blocking
// task bridge. It receives the arguments given to CallBlocking.
type BlockingFunc func(args ...any) (any, error)

// Effect is a declarative, inert value describing what a strand is asking
// the engine to do at a suspension point. It is a concrete tagged
// union, not an open handler interface: the engine's effect set is closed
// and fully enumerated by Variant.
type Effect struct {
	Variant Variant

	// Name is a human-readable diagnostic name, defaulting to the variant's
	// String(), overridable via Wrapper.
	Name string

	// Immediate controls ready-deque placement for self-resolving effects
	// (only meaningful for Broadcast): true schedules tail/LIFO, false
	// schedules head/deferred so registered receivers run first.
	Immediate bool

	// CancelHook is invoked at most once if the owning strand is cancelled
	// while parked on this effect. Must be synchronous and safe to
	// call even if the effect was never dispatched.
	CancelHook func()

	// CallerFrame is the call site captured when the effect was constructed,
	// used by stack().
	CallerFrame string

	// Broadcast / Receive
	Key       string
	Value     any
	Predicate func(any) bool

	// Call / CallFork
	Factory  RoutineFactory
	Args     []any
	RunFirst bool

	// CallBlocking
	Blocking BlockingFunc

	// First
	Racers       []*Strand
	CancelLosers bool
	EnsureCancel bool

	// Cancel
	Target *Strand

	// Wrapper
	Inner *Effect

	// Intercept
	InterceptPredicate func(Effect) bool
}

func callerFrame(skip int) string {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	name := "unknown"
	if fn != nil {
		name = fn.Name()
	}
	return fmt.Sprintf("%s:%d %s", file, line, name)
}

// Broadcast publishes value under key, waking every currently-registered
// Receive(key, ...) whose predicate accepts it. A broadcast with no
// matching receivers is a silent no-op.
func Broadcast(key string, value any, immediate bool) Effect {
	return Effect{
		Variant:     VariantBroadcast,
		Name:        VariantBroadcast.String(),
		Key:         key,
		Value:       value,
		Immediate:   immediate,
		CallerFrame: callerFrame(1),
	}
}

// Receive parks the strand on key until a matching Broadcast arrives.
// A nil predicate matches every value.
func Receive(key string, predicate func(any) bool) Effect {
	return Effect{
		Variant:     VariantReceive,
		Name:        VariantReceive.String(),
		Key:         key,
		Predicate:   predicate,
		CallerFrame: callerFrame(1),
	}
}

// Call spawns a child strand and awaits its result.
func Call(factory RoutineFactory, args ...any) Effect {
	return Effect{
		Variant:     VariantCall,
		Name:        VariantCall.String(),
		Factory:     factory,
		Args:        args,
		CallerFrame: callerFrame(1),
	}
}

// CallFork spawns a child strand without awaiting it, resuming the caller
// with a *Strand handle. runFirst controls whether the child or the caller
// runs first.
func CallFork(factory RoutineFactory, runFirst bool, args ...any) Effect {
	return Effect{
		Variant:     VariantCallFork,
		Name:        VariantCallFork.String(),
		Factory:     factory,
		Args:        args,
		RunFirst:    runFirst,
		CallerFrame: callerFrame(1),
	}
}

// CallBlocking hands fn off to the blocking-task bridge and parks the
// strand until a worker delivers its result.
func CallBlocking(fn BlockingFunc, args ...any) Effect {
	return Effect{
		Variant:     VariantCallBlocking,
		Name:        VariantCallBlocking.String(),
		Blocking:    fn,
		Args:        args,
		CallerFrame: callerFrame(1),
	}
}

// First races the given strands, resolving to (index, value) for the first
// to complete.
func First(racers []*Strand, cancelLosers, ensureCancel bool) Effect {
	return Effect{
		Variant:      VariantFirst,
		Name:         VariantFirst.String(),
		Racers:       racers,
		CancelLosers: cancelLosers,
		EnsureCancel: ensureCancel,
		CallerFrame:  callerFrame(1),
	}
}

// Cancel cascades cancellation to target and its live descendants.
func Cancel(target *Strand) Effect {
	return Effect{
		Variant:     VariantCancel,
		Name:        VariantCancel.String(),
		Target:      target,
		CallerFrame: callerFrame(1),
	}
}

// Wrapper dispatches inner under the same strand, overriding only its
// diagnostic name.
func Wrapper(inner Effect, name string) Effect {
	return Effect{
		Variant:     VariantWrapper,
		Name:        name,
		Inner:       &inner,
		CallerFrame: callerFrame(1),
	}
}

// Intercept is test-only: it parks the strand as an interceptor, capturing
// the next effect whose predicate matches (nil matches all) before it
// dispatches. Outside test mode, dispatching Intercept is a fault.
func Intercept(predicate func(Effect) bool) Effect {
	return Effect{
		Variant:            VariantIntercept,
		Name:               VariantIntercept.String(),
		InterceptPredicate: predicate,
		CallerFrame:        callerFrame(1),
	}
}

// DebugTree resumes the caller with a rendering of the live strand tree
// rooted at the run's root strand.
func DebugTree() Effect {
	return Effect{
		Variant:     VariantDebugTree,
		Name:        VariantDebugTree.String(),
		CallerFrame: callerFrame(1),
	}
}

// effectSuspension represents a suspended effect operation, implemented by
// genericMarker.
type effectSuspension interface {
	Op() Effect
	Resume(Resumed) Resumed
}

// effectMarkerResume resumes an effect operation from a genericMarker.
func effectMarkerResume(m *genericMarker, v Resumed) Resumed {
	k := m.k.(func(any) Resumed)
	releaseMarker(m)
	return k(v)
}

// toResumed is the identity continuation for CPS entry points (Step).
func toResumed(a any) Resumed { return a }

// Perform triggers an effect and suspends the routine. The engine receives
// the Effect via the strand's Suspension and resumes with a value once the
// effect has been serviced.
func Perform(op Effect) Eff[any] {
	return func(k func(any) Resumed) Resumed {
		m := acquireMarker()
		m.op = op
		m.k = k
		m.resume = effectMarkerResume
		return m
	}
}
