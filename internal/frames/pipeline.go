package frames

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Pipeline compresses raw framebuffers under a bounded concurrency
// budget. At most maxConcurrent encodes run at once; one pending slot
// holds the newest raw frame that could not start immediately, and a
// newer frame replaces it (latest-wins). Under sustained overload the
// delivered FPS falls while memory stays bounded.
type Pipeline struct {
	encode  Encoder
	deliver func([]byte)
	sem     *semaphore.Weighted
	logger  *zap.Logger

	mu      sync.Mutex
	pending []byte

	inFlight atomic.Int64
}

// NewPipeline builds a pipeline delivering compressed frames to the
// given callback.
func NewPipeline(maxConcurrent int, encode Encoder, deliver func([]byte), logger *zap.Logger) *Pipeline {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		encode:  encode,
		deliver: deliver,
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		logger:  logger,
	}
}

// Submit offers a raw frame. It never blocks: if the budget is full the
// frame parks in the pending slot, displacing any older one.
func (p *Pipeline) Submit(raw []byte) {
	if p.sem.TryAcquire(1) {
		go p.run(raw)
		return
	}

	p.mu.Lock()
	p.pending = raw
	p.mu.Unlock()
}

// InFlight reports the number of encodes currently running.
func (p *Pipeline) InFlight() int64 {
	return p.inFlight.Load()
}

func (p *Pipeline) run(raw []byte) {
	p.inFlight.Add(1)

	encoded, err := p.encode(raw)
	if err != nil {
		p.logger.Warn("frame encode failed", zap.Error(err))
	} else {
		p.deliver(encoded)
	}

	p.inFlight.Add(-1)
	p.sem.Release(1)
	p.drainPending()
}

// drainPending starts the parked frame if a slot is free.
func (p *Pipeline) drainPending() {
	p.mu.Lock()
	if p.pending == nil {
		p.mu.Unlock()
		return
	}
	if !p.sem.TryAcquire(1) {
		p.mu.Unlock()
		return
	}
	raw := p.pending
	p.pending = nil
	p.mu.Unlock()

	go p.run(raw)
}
