// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

import "sync"

var genericMarkerPool = sync.Pool{
	New: func() any { return new(genericMarker) },
}

// genericMarker is the pooled suspension value a routine yields from Perform.
// It carries the Effect the routine is suspending on plus the continuation
// needed to resume it; op is a concrete Effect rather than a generic
// Operation, since the engine's effect set is closed.
type genericMarker struct {
	op     Effect
	resume func(*genericMarker, Resumed) Resumed
	k      any
}

func (m *genericMarker) Op() Effect               { return m.op }
func (m *genericMarker) Resume(v Resumed) Resumed { return m.resume(m, v) }
func (m *genericMarker) release()                 { releaseMarker(m) }

func acquireMarker() *genericMarker {
	return genericMarkerPool.Get().(*genericMarker)
}

func releaseMarker(m *genericMarker) {
	m.op = Effect{}
	m.resume = nil
	m.k = nil
	genericMarkerPool.Put(m)
}
