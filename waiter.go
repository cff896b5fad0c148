// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

import "strconv"

// waiterCallback is invoked with the delivered value. It returns whether the
// value was consumed: false means "not a match, keep me registered"; true
// means "I took this value and resumed my strand".
type waiterCallback func(value any) bool

type waiterEntry struct {
	strandID uint64
	callback waiterCallback
}

// waiterTable maps a wait key to an ordered list of receive callbacks. Keys
// come from a single flat namespace with two prefixes: broadcast.<key> and
// done.<strand-id>.
type waiterTable struct {
	entries map[string][]*waiterEntry
}

func newWaiterTable() *waiterTable {
	return &waiterTable{entries: make(map[string][]*waiterEntry)}
}

func broadcastKey(key string) string { return "broadcast." + key }
func doneKey(id uint64) string       { return "done." + strconv.FormatUint(id, 10) }

// register adds a waiter for key, preserving registration order.
func (w *waiterTable) register(key string, strandID uint64, cb waiterCallback) *waiterEntry {
	e := &waiterEntry{strandID: strandID, callback: cb}
	w.entries[key] = append(w.entries[key], e)
	return e
}

// remove deregisters a specific entry, used by cancel hooks to pull a
// cancelled strand out of a wait list.
func (w *waiterTable) remove(key string, e *waiterEntry) {
	list := w.entries[key]
	for i, cur := range list {
		if cur == e {
			w.entries[key] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(w.entries[key]) == 0 {
		delete(w.entries, key)
	}
}

// removeKey drops every waiter registered on key outright, used by
// cancellation to invalidate done.<id> so stale joiners never see a value
// that can no longer arrive in the normal way.
func (w *waiterTable) removeKey(key string) {
	delete(w.entries, key)
}

// resolve delivers value to every waiter on key, in registration order.
// Waiters whose callback returns false stay registered (predicate miss);
// a broadcast with no matching receivers is a silent no-op.
func (w *waiterTable) resolve(key string, value any) {
	list := w.entries[key]
	if len(list) == 0 {
		return
	}
	remaining := make([]*waiterEntry, 0, len(list))
	for _, e := range list {
		if e.callback(value) {
			continue
		}
		remaining = append(remaining, e)
	}
	if len(remaining) == 0 {
		delete(w.entries, key)
	} else {
		w.entries[key] = remaining
	}
}
