// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

import (
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/google/uuid"
)

// Engine owns every mutable table the scheduler touches: the strand arena,
// the waiter table, the ready deque, the blocking-task bridge, the
// interceptor list, and the hanging set. All of it is mutated only on
// the loop thread; the bridge is the sole exception.
type Engine struct {
	opts Options

	strands map[uint64]*Strand
	nextID  uint64
	root    *Strand

	waiters      *waiterTable
	ready        *readyDeque
	bridge       *blockingBridge
	interceptors []*interceptEntry
	hanging      map[uint64]struct{}

	fault  *RuntimeFault
	logger *slog.Logger
}

func newEngine(opts Options) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return &Engine{
		opts:    opts,
		strands: make(map[uint64]*Strand),
		waiters: newWaiterTable(),
		ready:   newReadyDeque(),
		bridge:  newBlockingBridge(opts.MaxBlockingWorkers),
		hanging: make(map[uint64]struct{}),
		logger:  logger,
	}
}

// Run constructs the root strand from factory(args...), advances it to
// completion, and returns its result or a RuntimeFault.
func Run(factory RoutineFactory, args []any, opts ...Option) (any, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	e := newEngine(o)
	defer e.bridge.close()

	root := e.spawnStrand(nil, "", factory(args...), callerFrame(1))
	e.root = root

	e.advance(root, nil, true)
	if e.fault != nil {
		return nil, e.fault
	}
	if err := e.loop(); err != nil {
		return nil, err
	}
	if e.fault != nil {
		return nil, e.fault
	}
	return root.GetResult()
}

func (e *Engine) spawnStrand(parent *Strand, edgeLabel string, routine Eff[any], callSite string) *Strand {
	id := e.nextID
	e.nextID++
	s := &Strand{
		id:           id,
		traceID:      uuid.New(),
		routine:      routine,
		parent:       parent,
		parentEffect: edgeLabel,
		callSite:     callSite,
	}
	e.strands[id] = s
	if parent != nil {
		parent.addChild(s)
	}
	return s
}

// loop is the main scheduler loop: drain the blocking-task bridge
// non-blockingly while the ready deque still has work, blockingly when it
// doesn't, and dispatch the ready deque's tail. It exits once both are
// empty, then checks for hangs.
func (e *Engine) loop() error {
	for !e.ready.empty() || !e.bridge.empty() {
		if e.ready.empty() {
			e.deliverBlocking(e.bridge.blockDrain())
		} else if r, ok := e.bridge.tryDrain(); ok {
			e.deliverBlocking(r)
		}
		if e.fault != nil {
			return e.fault
		}
		if s, ok := e.ready.popTail(); ok {
			e.dispatch(s)
		}
		if e.fault != nil {
			return e.fault
		}
	}
	return e.checkHanging()
}

// deliverBlocking resolves a CallBlocking result against its waiting
// strand. A cancelled waiter's result is silently discarded.
func (e *Engine) deliverBlocking(r bridgeResult) {
	s, ok := e.bridge.consume(r)
	if !ok {
		return
	}
	if r.err != nil {
		f := newFault(BlockingTaskFailed, e.stack(s), "%v", r.err)
		f.Cause = r.err
		e.fault = f
		return
	}
	e.advance(s, r.value, true)
}

// checkHanging scans strands still parked when the loop has nothing left
// to drive. Strands are visited in id order (creation order) so the raised
// fault deterministically names the earliest-created hanging strand.
func (e *Engine) checkHanging() error {
	ids := make([]uint64, 0, len(e.hanging))
	for id := range e.hanging {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		s := e.strands[id]
		if s.done || s.cancelled {
			continue
		}
		op, _ := s.currentEffect()
		return newFault(HangingStrands, e.stack(s), "hanging strands detected waiting for %s", op.Name)
	}
	return nil
}

// step drives s one suspension point forward, recovering a panicking user
// routine into a UserRoutineException fault carrying the strand's stack.
func (e *Engine) step(s *Strand, resumeVal any) (result any, susp *Suspension) {
	defer func() {
		if r := recover(); r != nil {
			f := newFault(UserRoutineException, e.stack(s), "%v", r)
			f.Cause, _ = r.(error)
			e.fault = f
			result, susp = nil, nil
		}
	}()
	if s.susp == nil {
		return Step(s.routine)
	}
	return s.susp.Resume(resumeVal)
}

// advance steps s forward and, on suspension, enqueues it per immediate;
// on completion it resolves done.<s.id>.
func (e *Engine) advance(s *Strand, resumeVal any, immediate bool) {
	if s.done || s.cancelled {
		return
	}
	result, susp := e.step(s, resumeVal)
	if e.fault != nil {
		return
	}
	if susp == nil {
		e.complete(s, result)
		return
	}
	s.susp = susp
	if immediate {
		e.ready.pushTail(s)
	} else {
		e.ready.pushHead(s)
	}
}

func (e *Engine) complete(s *Strand, result any) {
	s.done = true
	s.result = result
	s.susp = nil
	s.routine = nil
	s.cancelHook = nil
	delete(e.hanging, s.id)
	if s.parent != nil {
		s.parent.removeChild(s.id)
	}
	e.waiters.resolve(doneKey(s.id), result)
}

// dispatch processes the effect a popped strand is suspended on: a
// cancelled strand is dropped, then test-mode interception
// gets first refusal, then the variant switch runs.
func (e *Engine) dispatch(s *Strand) {
	if s.cancelled {
		return
	}
	op := s.susp.Op()
	if e.opts.TestMode && op.Variant != VariantIntercept && e.tryIntercept(s, op) {
		return
	}
	e.execute(s, op)
}

func (e *Engine) execute(s *Strand, op Effect) {
	e.logger.Debug("dispatch", "strand", s.id, "trace_id", s.traceID.String(), "effect", op.Name, "variant", op.Variant.String())
	switch op.Variant {
	case VariantBroadcast:
		e.dispatchBroadcast(s, op)
	case VariantReceive:
		e.dispatchReceive(s, op)
	case VariantCall:
		e.dispatchCall(s, op)
	case VariantCallFork:
		e.dispatchCallFork(s, op)
	case VariantCallBlocking:
		e.dispatchCallBlocking(s, op)
	case VariantFirst:
		e.dispatchFirst(s, op)
	case VariantCancel:
		e.dispatchCancel(s, op)
	case VariantWrapper:
		if op.Inner == nil {
			e.fault = newFault(NonEffectYield, e.stack(s), "%s wraps no effect", op.Name)
			return
		}
		e.execute(s, *op.Inner)
	case VariantIntercept:
		e.dispatchIntercept(s, op)
	case VariantDebugTree:
		e.dispatchDebugTree(s, op)
	default:
		e.fault = newFault(UnhandledEffect, e.stack(s), "unrecognized effect variant %d", int(op.Variant))
	}
}

// dispatchBroadcast resolves waiters on key, then advances the broadcaster
// using the broadcast's own immediate flag to place it relative to the
// freshly-woken receivers.
func (e *Engine) dispatchBroadcast(s *Strand, op Effect) {
	e.waiters.resolve(broadcastKey(op.Key), op.Value)
	e.advance(s, nil, op.Immediate)
}

// dispatchReceive parks s on broadcast.<key> and into the hanging set,
// installing a cancel hook that deregisters it.
func (e *Engine) dispatchReceive(s *Strand, op Effect) {
	key := broadcastKey(op.Key)
	var entry *waiterEntry
	entry = e.waiters.register(key, s.id, func(value any) bool {
		if op.Predicate != nil && !op.Predicate(value) {
			return false
		}
		delete(e.hanging, s.id)
		s.cancelHook = nil
		e.advance(s, value, true)
		return true
	})
	e.hanging[s.id] = struct{}{}
	s.cancelHook = func() { e.waiters.remove(key, entry) }
}

// dispatchCall spawns a child and awaits it. A trivially-returning child
// resumes the caller inline without ever touching the ready deque.
func (e *Engine) dispatchCall(s *Strand, op Effect) {
	child := e.spawnStrand(s, op.Name, op.Factory(op.Args...), op.CallerFrame)
	result, susp := e.step(child, nil)
	if e.fault != nil {
		return
	}
	if susp == nil {
		e.complete(child, result)
		e.advance(s, result, true)
		return
	}
	child.susp = susp
	e.ready.pushTail(child)
	e.waiters.register(doneKey(child.id), s.id, func(value any) bool {
		delete(e.hanging, s.id)
		e.advance(s, value, true)
		return true
	})
	e.hanging[s.id] = struct{}{}
}

// dispatchCallFork spawns a child without awaiting it. run_first orders
// whether the child or the caller is advanced first; the caller always
// resumes with the child's *Strand handle.
func (e *Engine) dispatchCallFork(s *Strand, op Effect) {
	child := e.spawnStrand(s, op.Name, op.Factory(op.Args...), op.CallerFrame)
	if op.RunFirst {
		e.advance(child, nil, true)
		if e.fault != nil {
			return
		}
		e.advance(s, child, true)
		return
	}
	e.advance(s, child, true)
	if e.fault != nil {
		return
	}
	e.advance(child, nil, true)
}

// dispatchCallBlocking hands the function off to the bridge. The
// strand is tracked via the bridge's in-flight map rather than the hanging
// set: by the time checkHanging ever runs, the bridge is already empty.
func (e *Engine) dispatchCallBlocking(s *Strand, op Effect) {
	e.bridge.submit(s, op.Blocking, op.Args)
}
