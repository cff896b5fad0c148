// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

import (
	"context"

	"github.com/ygrebnov/workers"
)

// blockingBridge is the thread-safe inbox that lets the off-loop worker
// pool deliver CallBlocking results back into the single-threaded loop.
// It is the only concurrent structure the engine touches; the worker
// goroutines never read or write any other engine table.
type blockingBridge struct {
	pool     workers.Workers[bridgeResult]
	cancel   context.CancelFunc
	inflight map[uint64]*Strand
	nextID   uint64
}

// bridgeResult carries a CallBlocking function's outcome tagged with the
// submission id, so results racing back through the pool's shared results
// channel are routed to the strand that submitted them.
type bridgeResult struct {
	id    uint64
	value any
	err   error
}

func newBlockingBridge(maxWorkers uint) *blockingBridge {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &workers.Config{
		MaxWorkers:       maxWorkers, // 0 selects a dynamically sized pool
		StartImmediately: true,
	}
	return &blockingBridge{
		pool:     workers.New[bridgeResult](ctx, cfg),
		cancel:   cancel,
		inflight: make(map[uint64]*Strand),
	}
}

// submit hands fn off to the worker pool on behalf of strand, which remains
// in the blocking-task set until the worker returns.
func (b *blockingBridge) submit(strand *Strand, fn BlockingFunc, args []any) {
	id := b.nextID
	b.nextID++
	b.inflight[id] = strand

	task := func(_ context.Context) (bridgeResult, error) {
		v, err := fn(args...)
		return bridgeResult{id: id, value: v, err: err}, nil
	}
	// newTask only fails for malformed function shapes; fn's own signature
	// is fixed by BlockingFunc, so AddTask cannot fail here.
	_ = b.pool.AddTask(task)
}

func (b *blockingBridge) empty() bool { return len(b.inflight) == 0 }

// consume resolves a result delivered over the pool's channel to its
// waiting strand. If the strand was cancelled before the worker returned,
// the bridge still consumes the post but reports no waiter.
func (b *blockingBridge) consume(r bridgeResult) (*Strand, bool) {
	s, ok := b.inflight[r.id]
	if !ok {
		return nil, false
	}
	delete(b.inflight, r.id)
	if s.cancelled {
		return nil, false
	}
	return s, true
}

// tryDrain non-blockingly takes one ready result, if any.
func (b *blockingBridge) tryDrain() (bridgeResult, bool) {
	select {
	case r := <-b.pool.GetResults():
		return r, true
	default:
		return bridgeResult{}, false
	}
}

// blockDrain waits for the next result. Called only when the ready deque is
// empty and the blocking-task set is non-empty, so the loop sleeps only
// when nothing else can progress.
func (b *blockingBridge) blockDrain() bridgeResult {
	return <-b.pool.GetResults()
}

func (b *blockingBridge) close() { b.cancel() }
