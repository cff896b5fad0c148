// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

import "sync/atomic"

// Stepping boundary between a suspendable routine and the strand that drives
// it. Step provides shallow one-effect-at-a-time evaluation: the engine
// advances a strand by one suspension point at a time rather than running
// the routine to completion.

// Suspension represents a routine suspended on an Effect. It holds the
// pending effect and a one-shot resumption handle.
//
// Suspension enforces affine semantics: Resume may be called at most once.
// Calling Resume twice panics. Use Discard to abandon a suspension without
// resuming it.
type Suspension struct {
	used atomic.Uintptr
	op   Effect
	cont effectSuspension
}

// Op returns the effect that caused the suspension.
func (s *Suspension) Op() Effect { return s.op }

// Resume advances the routine with the given value. Returns the completed
// value (with nil suspension) or the next suspension. Panics if the
// suspension has already been resumed or discarded.
func (s *Suspension) Resume(v Resumed) (any, *Suspension) {
	if s.used.Add(1) != 1 {
		panic("saga: suspension resumed twice")
	}
	return classifyResumed(s.cont.Resume(v))
}

// TryResume attempts to advance the routine. Returns (value, suspension,
// true) on success, or (nil, nil, false) if already used.
func (s *Suspension) TryResume(v Resumed) (any, *Suspension, bool) {
	if s.used.Add(1) != 1 {
		return nil, nil, false
	}
	a, next := classifyResumed(s.cont.Resume(v))
	return a, next, true
}

// Discard marks the suspension as consumed without resuming it.
func (s *Suspension) Discard() {
	s.used.Store(1)
}

// Step drives a routine until it either completes or suspends on an effect.
// Returns (value, nil) if the routine completed, or (nil, suspension) if
// pending.
//
//	result, susp := Step(routine)
//	for susp != nil {
//	    v := dispatch(susp.Op())
//	    result, susp = susp.Resume(v)
//	}
func Step(m Eff[any]) (any, *Suspension) {
	result := m(toResumed)
	return classifyResumed(result)
}

// classifyResumed examines a Resumed value and classifies it as either a
// completed value or a suspension carrying the continuation state.
func classifyResumed(result Resumed) (any, *Suspension) {
	if s, ok := result.(effectSuspension); ok {
		return nil, &Suspension{op: s.Op(), cont: s}
	}
	return result, nil
}
