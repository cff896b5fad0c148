// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

import (
	"fmt"

	"github.com/google/uuid"
)

// Queue is a cooperative bounded channel between strands. Put parks once
// the buffer is full; Get parks while it is empty. A parked operation's
// cancel hook removes the pending operation — and, for a Put, its value —
// so cancelled strands never exchange data.
//
// A Queue may only be used from strands of a single Run invocation.
type Queue struct {
	id          string
	bufferSize  int
	buffer      []any
	pendingPuts []queuedPut
	pendingGets []uint64
	counter     uint64
}

type queuedPut struct {
	id    uint64
	value any
}

// NewQueue creates a queue holding up to bufferSize values. Zero makes
// every Put rendezvous with a Get.
func NewQueue(bufferSize int) *Queue {
	return &Queue{id: uuid.NewString(), bufferSize: bufferSize}
}

// HasWork reports whether a Get would resolve without parking.
func (q *Queue) HasWork() bool {
	return len(q.buffer) > 0 || len(q.pendingPuts) > 0
}

func (q *Queue) putKey(id uint64) string { return fmt.Sprintf("queue.%s.put.%d", q.id, id) }
func (q *Queue) getKey(id uint64) string { return fmt.Sprintf("queue.%s.get.%d", q.id, id) }

func (q *Queue) removePendingPut(id uint64) {
	for i, p := range q.pendingPuts {
		if p.id == id {
			q.pendingPuts = append(q.pendingPuts[:i:i], q.pendingPuts[i+1:]...)
			return
		}
	}
}

func (q *Queue) removePendingGet(id uint64) {
	for i, g := range q.pendingGets {
		if g == id {
			q.pendingGets = append(q.pendingGets[:i:i], q.pendingGets[i+1:]...)
			return
		}
	}
}

// Put returns an effect that resolves once value has been handed to a
// waiting Get or buffered.
func (q *Queue) Put(value any) Effect {
	putID := q.counter
	q.counter++

	put := func(args ...any) Eff[any] {
		return Suspend[any](func(k func(any) Resumed) Resumed {
			if len(q.pendingGets) > 0 {
				getID := q.pendingGets[0]
				q.pendingGets = q.pendingGets[1:]
				return Then(Perform(Broadcast(q.getKey(getID), value, true)), Pure[any](nil))(k)
			}
			if len(q.buffer) < q.bufferSize {
				q.buffer = append(q.buffer, value)
				return k(nil)
			}
			q.pendingPuts = append(q.pendingPuts, queuedPut{id: putID, value: value})
			wait := Receive(q.putKey(putID), nil)
			wait.CancelHook = func() { q.removePendingPut(putID) }
			return Perform(wait)(k)
		})
	}

	op := Call(put)
	op.Name = "Put"
	op.CallerFrame = callerFrame(1)
	return op
}

// Get returns an effect that resolves to the next value, unparking the
// oldest blocked Put once buffer space frees up.
func (q *Queue) Get() Effect {
	getID := q.counter
	q.counter++

	get := func(args ...any) Eff[any] {
		return Suspend[any](func(k func(any) Resumed) Resumed {
			if len(q.buffer) > 0 {
				v := q.buffer[0]
				q.buffer = q.buffer[1:]
				if len(q.pendingPuts) > 0 {
					p := q.pendingPuts[0]
					q.pendingPuts = q.pendingPuts[1:]
					q.buffer = append(q.buffer, p.value)
					return Then(Perform(Broadcast(q.putKey(p.id), nil, true)), Pure[any](v))(k)
				}
				return k(v)
			}
			if len(q.pendingPuts) > 0 {
				p := q.pendingPuts[0]
				q.pendingPuts = q.pendingPuts[1:]
				return Then(Perform(Broadcast(q.putKey(p.id), nil, true)), Pure[any](p.value))(k)
			}
			q.pendingGets = append(q.pendingGets, getID)
			wait := Receive(q.getKey(getID), nil)
			wait.CancelHook = func() { q.removePendingGet(getID) }
			return Perform(wait)(k)
		})
	}

	op := Call(get)
	op.Name = "Get"
	op.CallerFrame = callerFrame(1)
	return op
}
