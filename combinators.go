// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

import "time"

// Higher-level combinators layered on the engine's effect set. Everything
// here is expressible by user code; the engine knows nothing about these.

// Sequence performs each effect in order and resumes with the list of their
// values.
func Sequence(ops ...Effect) Eff[[]any] {
	var step func(i int, acc []any) Eff[[]any]
	step = func(i int, acc []any) Eff[[]any] {
		if i == len(ops) {
			return Pure(acc)
		}
		return Bind(Perform(ops[i]), func(v any) Eff[[]any] {
			return step(i+1, append(acc, v))
		})
	}
	return step(0, make([]any, 0, len(ops)))
}

// Join resumes with the result of a strand the caller already holds a
// handle to. A strand that is already done resolves without parking.
func Join(s *Strand) Eff[any] {
	return Suspend[any](func(k func(any) Resumed) Resumed {
		if s.IsDone() {
			v, _ := s.GetResult()
			return k(v)
		}
		return Bind(Perform(First([]*Strand{s}, true, true)), func(v any) Eff[any] {
			return Pure(v.(FirstResult).Value)
		})(k)
	})
}

// JoinAll joins each strand in order and resumes with their results.
func JoinAll(strands ...*Strand) Eff[[]any] {
	var step func(i int, acc []any) Eff[[]any]
	step = func(i int, acc []any) Eff[[]any] {
		if i == len(strands) {
			return Pure(acc)
		}
		return Bind(Join(strands[i]), func(v any) Eff[[]any] {
			return step(i+1, append(acc, v))
		})
	}
	return step(0, make([]any, 0, len(strands)))
}

// Fork runs op on a new strand without awaiting it, resuming with the
// strand handle.
func Fork(op Effect) Eff[*Strand] {
	factory := func(args ...any) Eff[any] { return Perform(op) }
	fork := CallFork(factory, false)
	fork.Name = "Fork(" + op.Name + ")"
	fork.CallerFrame = callerFrame(1)
	return Bind(Perform(fork), func(v any) Eff[*Strand] {
		return Pure(v.(*Strand))
	})
}

// Race forks each effect and resumes with the index and value of the first
// to finish. Losers are cancelled.
func Race(ops ...Effect) Eff[FirstResult] {
	var forkAll func(i int, strands []*Strand) Eff[FirstResult]
	forkAll = func(i int, strands []*Strand) Eff[FirstResult] {
		if i == len(ops) {
			return Bind(Perform(First(strands, true, true)), func(v any) Eff[FirstResult] {
				return Pure(v.(FirstResult))
			})
		}
		return Bind(Fork(ops[i]), func(s *Strand) Eff[FirstResult] {
			return forkAll(i+1, append(strands, s))
		})
	}
	return forkAll(0, make([]*Strand, 0, len(ops)))
}

// SubscribeMode selects how Subscribe schedules its handler when messages
// overlap.
type SubscribeMode int

const (
	// SubscribeEvery forks the handler for every message.
	SubscribeEvery SubscribeMode = iota
	// SubscribeLeading ignores messages that arrive while a handler run is
	// still in flight.
	SubscribeLeading
	// SubscribeLatest cancels the in-flight handler run to make way for a
	// new message.
	SubscribeLatest
)

// Subscribe forks a strand that runs fn on the value of every broadcast on
// key accepted by predicate (nil accepts all). It resumes with the
// subscription strand; cancelling that strand ends the subscription and,
// via the cancellation cascade, any handler runs still in flight.
func Subscribe(key string, fn RoutineFactory, mode SubscribeMode, predicate func(any) bool) Eff[*Strand] {
	loop := func(args ...any) Eff[any] {
		var next func(prev *Strand) Eff[any]
		next = func(prev *Strand) Eff[any] {
			return Bind(Perform(Receive(key, predicate)), func(msg any) Eff[any] {
				switch mode {
				case SubscribeLeading:
					return Then(Perform(Call(fn, msg)), next(nil))
				case SubscribeLatest:
					cancelPrev := Pure[any](nil)
					if prev != nil {
						cancelPrev = Perform(Cancel(prev))
					}
					return Then(cancelPrev, Bind(Perform(CallFork(fn, false, msg)), func(t any) Eff[any] {
						return next(t.(*Strand))
					}))
				default:
					return Then(Perform(CallFork(fn, false, msg)), next(nil))
				}
			})
		}
		return next(nil)
	}
	sub := CallFork(loop, false)
	sub.Name = "Subscribe(" + key + ")"
	sub.CallerFrame = callerFrame(1)
	return Bind(Perform(sub), func(v any) Eff[*Strand] {
		return Pure(v.(*Strand))
	})
}

// Sleep pauses the performing strand for d without holding the loop thread:
// the wait runs as a blocking task, so it can lose a Race like any other
// blocking work. Racing work against a Sleep is the runtime's timeout
// idiom.
func Sleep(d time.Duration) Effect {
	op := CallBlocking(func(args ...any) (any, error) {
		time.Sleep(d)
		return nil, nil
	})
	op.Name = "Sleep(" + d.String() + ")"
	op.CallerFrame = callerFrame(1)
	return op
}
