// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

// readyDeque is a double-ended queue of parked strands, used as a LIFO for
// normal effects and as a FIFO head for deferred effects.
type readyDeque struct {
	items []*Strand
}

func newReadyDeque() *readyDeque {
	return &readyDeque{}
}

// pushTail schedules s to run before other already-enqueued work
// ("immediate" placement).
func (d *readyDeque) pushTail(s *Strand) {
	d.items = append(d.items, s)
}

// pushHead yields s's turn to any already-queued work ("deferred"
// placement).
func (d *readyDeque) pushHead(s *Strand) {
	d.items = append(d.items, nil)
	copy(d.items[1:], d.items)
	d.items[0] = s
}

// popTail pops the most recently pushed item (LIFO).
func (d *readyDeque) popTail() (*Strand, bool) {
	n := len(d.items)
	if n == 0 {
		return nil, false
	}
	s := d.items[n-1]
	d.items[n-1] = nil
	d.items = d.items[:n-1]
	return s, true
}

func (d *readyDeque) empty() bool { return len(d.items) == 0 }
