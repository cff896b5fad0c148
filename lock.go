// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

import (
	"fmt"

	"github.com/google/uuid"
)

// Lock is a cooperative mutex for strands. The holder is the head of the
// pending list; each waiter parks on a per-acquisition broadcast key and is
// handed the lock by the releasing strand. Cancelling a waiting acquirer
// removes it from the pending list via the Receive effect's cancel hook, so
// a release skips cancelled waiters.
//
// A Lock may only be used from strands of a single Run invocation.
type Lock struct {
	id      string
	name    string
	pending []uint64
	counter uint64
}

// NewLock creates a lock. The name appears in diagnostics only.
func NewLock(name string) *Lock {
	return &Lock{id: uuid.NewString(), name: name}
}

func (l *Lock) waitKey(acquireID uint64) string {
	return fmt.Sprintf("lock.%s.%d", l.id, acquireID)
}

func (l *Lock) removePending(acquireID uint64) {
	for i, id := range l.pending {
		if id == acquireID {
			l.pending = append(l.pending[:i:i], l.pending[i+1:]...)
			return
		}
	}
}

// Acquire returns an effect that resolves once the lock is held. Its resume
// value is the matching release effect; performing that hands the lock to
// the next non-cancelled waiter. Releasing out of turn or twice is a
// routine error and faults the run.
func (l *Lock) Acquire() Effect {
	acquireID := l.counter
	l.counter++

	release := func(args ...any) Eff[any] {
		return Suspend[any](func(k func(any) Resumed) Resumed {
			if len(l.pending) == 0 || l.pending[0] != acquireID {
				panic(fmt.Sprintf("lock %q released out of turn", l.name))
			}
			l.pending = l.pending[1:]
			if len(l.pending) > 0 {
				// Immediate, so the releasing strand carries on before the
				// new holder's next effect dispatches.
				return Then(Perform(Broadcast(l.waitKey(l.pending[0]), nil, true)), Pure[any](nil))(k)
			}
			return k(nil)
		})
	}

	acquire := func(args ...any) Eff[any] {
		return Suspend[any](func(k func(any) Resumed) Resumed {
			releaseOp := Call(release)
			releaseOp.Name = "Release(" + l.name + ")"
			if len(l.pending) > 0 {
				l.pending = append(l.pending, acquireID)
				wait := Receive(l.waitKey(acquireID), nil)
				wait.CancelHook = func() { l.removePending(acquireID) }
				return Bind(Perform(wait), func(any) Eff[any] {
					return Pure[any](releaseOp)
				})(k)
			}
			l.pending = append(l.pending, acquireID)
			return k(releaseOp)
		})
	}

	op := Call(acquire)
	op.Name = "Acquire(" + l.name + ")"
	op.CallerFrame = callerFrame(1)
	return op
}
