// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

// InterceptCapture is what an interceptor strand is resumed with: the
// effect captured before it dispatched, and an injector it may call to
// resume the intercepted strand with an arbitrary value. Inject is an
// ordinary closure: the interceptor calls it directly rather than yielding
// a second effect.
type InterceptCapture struct {
	Effect Effect
	Inject func(value any)
}

type interceptEntry struct {
	strand    *Strand
	predicate func(Effect) bool
}

// dispatchIntercept registers s as an interceptor. Outside test mode this
// is a RuntimeFault.
func (e *Engine) dispatchIntercept(s *Strand, op Effect) {
	if !e.opts.TestMode {
		e.fault = newFault(InterceptOutsideTestMode, e.stack(s), "Intercept yielded outside test mode")
		return
	}
	e.interceptors = append(e.interceptors, &interceptEntry{strand: s, predicate: op.InterceptPredicate})
	e.hanging[s.id] = struct{}{}
	s.cancelHook = func() {
		for i, ic := range e.interceptors {
			if ic.strand == s {
				e.interceptors = append(e.interceptors[:i:i], e.interceptors[i+1:]...)
				return
			}
		}
	}
}

// tryIntercept scans registered interceptors in registration order before
// op dispatches. The first whose predicate matches (nil matches all)
// captures op; the target strand stays suspended, to be resumed later by
// the interceptor's injector call.
func (e *Engine) tryIntercept(target *Strand, op Effect) bool {
	for i, ic := range e.interceptors {
		if ic.predicate != nil && !ic.predicate(op) {
			continue
		}
		e.interceptors = append(e.interceptors[:i:i], e.interceptors[i+1:]...)
		delete(e.hanging, ic.strand.id)
		ic.strand.cancelHook = nil

		// The captured strand stays suspended on its original effect and
		// joins the hanging set: if the interceptor never injects, shutdown
		// reports it rather than letting it vanish.
		e.hanging[target.id] = struct{}{}
		inject := func(value any) {
			delete(e.hanging, target.id)
			e.advance(target, value, true)
		}
		e.advance(ic.strand, InterceptCapture{Effect: op, Inject: inject}, true)
		return true
	}
	return false
}
