// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

// cancelStrand cascades cancellation through s and its live descendants.
// It is idempotent: cancelling an already-done or already-cancelled strand
// is a no-op.
func (e *Engine) cancelStrand(s *Strand) {
	if s.done || s.cancelled {
		return
	}
	if s.cancelHook != nil {
		hook := s.cancelHook
		s.cancelHook = nil
		hook()
	}
	if op, ok := s.currentEffect(); ok {
		for {
			if op.CancelHook != nil {
				op.CancelHook()
			}
			if op.Inner == nil {
				break
			}
			op = *op.Inner
		}
	}
	e.waiters.removeKey(doneKey(s.id))
	for _, c := range s.liveChildren() {
		e.cancelStrand(c)
	}
	s.cancelled = true
	s.susp = nil
	delete(e.hanging, s.id)
	if s.parent != nil {
		s.parent.removeChild(s.id)
	}
}

// dispatchCancel cascades cancellation to op.Target and resumes the caller.
func (e *Engine) dispatchCancel(s *Strand, op Effect) {
	e.cancelStrand(op.Target)
	e.advance(s, nil, true)
}
