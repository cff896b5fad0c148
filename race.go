// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

// FirstResult is the value First resumes its caller with: the winning
// racer's position in the original list and its return value.
type FirstResult struct {
	Index int
	Value any
}

// dispatchFirst resolves a race. It resolves immediately against any
// already-done racer, otherwise registers a completion callback on every
// racer's done key and waits for the first to fire.
func (e *Engine) dispatchFirst(s *Strand, op Effect) {
	if len(op.Racers) == 0 {
		e.fault = newFault(UnhandledEffect, e.stack(s), "First over an empty racer list")
		return
	}

	doneIdx, doneCount := -1, 0
	for i, r := range op.Racers {
		if r.IsDone() {
			doneCount++
			if doneIdx == -1 {
				doneIdx = i
			}
		}
	}
	if doneIdx != -1 {
		if op.EnsureCancel && doneCount > 1 {
			e.fault = newFault(RaceAlreadyResolved, e.stack(s), "race between already-completed effects")
			return
		}
		value, _ := op.Racers[doneIdx].GetResult()
		e.resolveFirst(s, op, doneIdx, value)
		return
	}

	e.hanging[s.id] = struct{}{}
	resolved := false
	entries := make([]*waiterEntry, len(op.Racers))
	for i, racer := range op.Racers {
		idx, r := i, racer
		entries[i] = e.waiters.register(doneKey(r.id), s.id, func(value any) bool {
			if resolved {
				return true
			}
			resolved = true
			s.cancelHook = nil
			e.resolveFirst(s, op, idx, value)
			return true
		})
	}
	s.cancelHook = func() {
		for i, r := range op.Racers {
			e.waiters.remove(doneKey(r.id), entries[i])
		}
	}
}

// resolveFirst fires at most once (guarded by the caller): it cancels
// losers per cancel_losers, asserts ensure_cancel's invariant, and resumes
// the caller with the winner's (index, value) pair.
func (e *Engine) resolveFirst(s *Strand, op Effect, winner int, value any) {
	delete(e.hanging, s.id)
	for i, r := range op.Racers {
		if i == winner {
			continue
		}
		if op.CancelLosers {
			e.cancelStrand(r)
		}
		if op.EnsureCancel && r.IsDone() {
			e.fault = newFault(RaceAlreadyResolved, e.stack(s), "loser strand %d completed before it could be cancelled", r.id)
			return
		}
	}
	e.advance(s, FirstResult{Index: winner, Value: value}, true)
}
