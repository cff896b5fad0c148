// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/saga"
)

func TestQueueGetThenPut(t *testing.T) {
	q := saga.NewQueue(1)
	sum := 0
	popAndAdd := func(args ...any) saga.Eff[any] {
		return saga.Bind(saga.Perform(q.Get()), func(v any) saga.Eff[any] {
			sum += v.(int)
			return saga.Pure[any](nil)
		})
	}

	root := func(args ...any) saga.Eff[any] {
		return saga.Bind(saga.Perform(saga.CallFork(popAndAdd, false)), func(any) saga.Eff[any] {
			return saga.Bind(saga.Perform(saga.CallFork(popAndAdd, false)), func(v2 any) saga.Eff[any] {
				t2 := v2.(*saga.Strand)
				return saga.Bind(saga.Perform(saga.CallFork(popAndAdd, false)), func(any) saga.Eff[any] {
					if q.HasWork() {
						t.Fatalf("parked getters are not work")
					}
					return saga.Bind(saga.Perform(q.Put(3)), func(any) saga.Eff[any] {
						if sum != 3 {
							t.Fatalf("after first put sum = %d, want 3", sum)
						}
						return saga.Bind(saga.Perform(saga.Cancel(t2)), func(any) saga.Eff[any] {
							return saga.Bind(saga.Perform(q.Put(5)), func(any) saga.Eff[any] {
								if sum != 8 {
									t.Fatalf("cancelled getter consumed a value, sum = %d", sum)
								}
								// No getters left: this one is buffered.
								return saga.Bind(saga.Perform(q.Put(5)), func(any) saga.Eff[any] {
									if sum != 8 {
										t.Fatalf("buffered put should not resolve a get, sum = %d", sum)
									}
									return saga.Bind(saga.Perform(saga.CallFork(popAndAdd, false)), func(v4 any) saga.Eff[any] {
										return saga.Bind(saga.Join(v4.(*saga.Strand)), func(any) saga.Eff[any] {
											return saga.Pure[any](sum)
										})
									})
								})
							})
						})
					})
				})
			})
		})
	}

	got, err := saga.Run(root, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 13 {
		t.Fatalf("sum = %v, want 13", got)
	}
}

func TestQueuePutThenGet(t *testing.T) {
	q := saga.NewQueue(2)
	root := func(args ...any) saga.Eff[any] {
		puts := saga.Then(saga.Perform(q.Put(3)), saga.Perform(q.Put(5)))
		return saga.Bind(puts, func(any) saga.Eff[any] {
			if !q.HasWork() {
				t.Fatalf("buffered values should count as work")
			}
			return saga.Bind(saga.Perform(q.Get()), func(first any) saga.Eff[any] {
				return saga.Bind(saga.Perform(q.Get()), func(second any) saga.Eff[any] {
					if q.HasWork() {
						t.Fatalf("drained queue still reports work")
					}
					return saga.Pure[any]([2]any{first, second})
				})
			})
		})
	}

	got, err := saga.Run(root, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ([2]any{3, 5}) {
		t.Fatalf("got %v, want values in put order", got)
	}
}

func TestQueueBlockedPutHangs(t *testing.T) {
	q := saga.NewQueue(1)
	putter := func(args ...any) saga.Eff[any] {
		return saga.Perform(q.Put(5))
	}
	root := func(args ...any) saga.Eff[any] {
		return saga.Bind(saga.Perform(q.Put(3)), func(any) saga.Eff[any] {
			return saga.Perform(saga.CallFork(putter, false))
		})
	}

	_, err := saga.Run(root, nil)
	var fault *saga.RuntimeFault
	if !errors.As(err, &fault) || fault.Kind != saga.HangingStrands {
		t.Fatalf("got %v, want HangingStrands for a put with no buffer space", err)
	}
}

// A blocked Put that gets cancelled takes its value with it: later gets see
// the remaining puts in their original order.
func TestQueueBlockedPutCancel(t *testing.T) {
	q := saga.NewQueue(1)
	putter := func(x int) saga.RoutineFactory {
		return func(args ...any) saga.Eff[any] {
			return saga.Perform(q.Put(x))
		}
	}

	root := func(args ...any) saga.Eff[any] {
		return saga.Bind(saga.Perform(q.Put(3)), func(any) saga.Eff[any] {
			return saga.Bind(saga.Perform(saga.CallFork(putter(5), false)), func(any) saga.Eff[any] {
				return saga.Bind(saga.Perform(saga.CallFork(putter(7), false)), func(v2 any) saga.Eff[any] {
					p2 := v2.(*saga.Strand)
					return saga.Bind(saga.Perform(saga.CallFork(putter(9), false)), func(any) saga.Eff[any] {
						return saga.Bind(saga.Perform(q.Get()), func(first any) saga.Eff[any] {
							return saga.Bind(saga.Perform(saga.Cancel(p2)), func(any) saga.Eff[any] {
								return saga.Bind(saga.Perform(q.Get()), func(second any) saga.Eff[any] {
									return saga.Bind(saga.Perform(q.Get()), func(third any) saga.Eff[any] {
										return saga.Pure[any]([3]any{first, second, third})
									})
								})
							})
						})
					})
				})
			})
		})
	}

	got, err := saga.Run(root, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ([3]any{3, 5, 9}) {
		t.Fatalf("got %v, want the cancelled put's value skipped", got)
	}
}

func TestQueueRendezvousUnbuffered(t *testing.T) {
	q := saga.NewQueue(0)
	putter := func(args ...any) saga.Eff[any] {
		return saga.Perform(q.Put(3))
	}
	root := func(args ...any) saga.Eff[any] {
		return saga.Bind(saga.Perform(saga.CallFork(putter, false)), func(pv any) saga.Eff[any] {
			p := pv.(*saga.Strand)
			return saga.Bind(saga.Perform(q.Get()), func(v any) saga.Eff[any] {
				return saga.Bind(saga.Join(p), func(any) saga.Eff[any] {
					return saga.Pure[any](v)
				})
			})
		})
	}

	got, err := saga.Run(root, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3 {
		t.Fatalf("got %v, want the handed-off value", got)
	}
}
