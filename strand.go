// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Strand is the engine's unit of scheduling: one instance of a running
// suspendable routine, with parent/child links, current effect, result, and
// cancellation flag.
type Strand struct {
	id uint64
	// TraceID is a diagnostic-only correlation id (debug logs, DebugTree).
	// It never participates in scheduling or waiter-table lookups, so it
	// never threatens the engine's determinism guarantee.
	traceID uuid.UUID

	susp    *Suspension // nil before the first Advance and after the strand is done/cancelled
	routine Eff[any]    // pending initial routine, consumed by the first Advance

	parent       *Strand
	parentEffect string // edge label: the diagnostic name of the effect that spawned this strand
	children     map[uint64]*Strand

	done      bool
	result    any
	cancelled bool

	// cancelHook is installed by whichever dispatch handler parked this
	// strand (Receive, First, Intercept) and invoked at most once if the
	// strand is cancelled while parked. nil when not parked on
	// anything that needs third-party cleanup.
	cancelHook func()

	callSite string // captured at creation
}

// ID returns the strand's scheduling identity.
func (s *Strand) ID() uint64 { return s.id }

// IsDone reports whether the strand has returned a result.
func (s *Strand) IsDone() bool { return s.done }

// IsCancelled reports whether the strand has been cancelled.
func (s *Strand) IsCancelled() bool { return s.cancelled }

// GetResult returns the strand's return value. It fails if the strand has
// not completed.
func (s *Strand) GetResult() (any, error) {
	if !s.done {
		return nil, fmt.Errorf("saga: strand %d has not completed", s.id)
	}
	return s.result, nil
}

// currentEffect returns the effect the strand is currently parked on, or the
// zero Effect if it isn't parked.
func (s *Strand) currentEffect() (Effect, bool) {
	if s.susp == nil {
		return Effect{}, false
	}
	return s.susp.Op(), true
}

func (s *Strand) addChild(c *Strand) {
	if s.children == nil {
		s.children = make(map[uint64]*Strand)
	}
	s.children[c.id] = c
}

func (s *Strand) removeChild(id uint64) {
	delete(s.children, id)
}

// liveChildren returns the live children in creation order, so cancellation
// cascades and tree renderings stay deterministic despite the map store.
func (s *Strand) liveChildren() []*Strand {
	out := make([]*Strand, 0, len(s.children))
	for _, c := range s.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// statusLabel renders the strand's current state for tree().
func (s *Strand) statusLabel() string {
	switch {
	case s.done:
		return "done"
	case s.cancelled:
		return "cancelled"
	case s.susp != nil:
		return "waiting:" + s.susp.Op().Name
	default:
		return "running"
	}
}
