package votes

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bhuan/monad-plays-pokemon/internal/model"
)

// ErrWindowFinalized is returned when a vote arrives for a window that
// has already been finalized. The vote is dropped; no retroactive
// result is re-emitted.
var ErrWindowFinalized = errors.New("window already finalized")

// Aggregator buckets votes by block window and elects a winner each
// time the window clock advances past a window boundary. AddVote and
// OnBlock are serialized by one mutex; results are delivered on the
// callback set at construction, while the lock is held, so downstream
// sees them in strictly increasing window order.
type Aggregator struct {
	mu sync.Mutex

	windowSize    uint64
	started       bool
	currentWindow uint64
	windowVotes   map[uint64][]model.Vote
	lastHash      common.Hash

	onComplete func(model.WindowResult)
	logger     *zap.Logger
}

// New builds an aggregator for the given window size.
func New(windowSize uint64, onComplete func(model.WindowResult), logger *zap.Logger) *Aggregator {
	if windowSize == 0 {
		windowSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		windowSize:  windowSize,
		windowVotes: make(map[uint64][]model.Vote),
		onComplete:  onComplete,
		logger:      logger,
	}
}

// AddVote records a vote. A vote for a window older than the current
// one is rejected with ErrWindowFinalized. A vote for a future window
// first finalizes every window up to it.
func (a *Aggregator) AddVote(vote model.Vote) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	window := model.WindowOf(vote.Block, a.windowSize)

	if !a.started {
		a.started = true
		a.currentWindow = window
	}

	if window < a.currentWindow {
		a.logger.Warn("late vote rejected",
			zap.Uint64("vote_window", window),
			zap.Uint64("current_window", a.currentWindow),
			zap.String("tx", vote.TxHash.Hex()),
		)
		return ErrWindowFinalized
	}

	if window > a.currentWindow {
		a.advanceTo(window)
	}

	a.windowVotes[window] = append(a.windowVotes[window], vote)
	return nil
}

// OnBlock advances the window clock. A tick inside the current window
// is a no-op apart from refreshing the tie-break seed; a tick in a
// later window finalizes everything before it. Older ticks are ignored.
func (a *Aggregator) OnBlock(number uint64, hash common.Hash) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if hash != (common.Hash{}) {
		// The subscription path's hash is authoritative; poll ticks
		// carry none and never overwrite it.
		a.lastHash = hash
	}

	window := model.WindowOf(number, a.windowSize)

	if !a.started {
		a.started = true
		a.currentWindow = window
		return
	}

	if window > a.currentWindow {
		a.advanceTo(window)
	}
}

// CurrentWindow returns the window currently collecting votes.
func (a *Aggregator) CurrentWindow() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentWindow
}

// advanceTo finalizes every window in [currentWindow, target) in order.
// Caller holds the lock.
func (a *Aggregator) advanceTo(target uint64) {
	for w := a.currentWindow; w < target; w++ {
		a.finalize(w)
	}
	a.currentWindow = target
}

// finalize elects a winner for one window and releases its memory.
// Empty windows are skipped: no result is emitted.
func (a *Aggregator) finalize(window uint64) {
	collected := a.windowVotes[window]
	delete(a.windowVotes, window)

	if len(collected) == 0 {
		return
	}

	result := elect(window, a.windowSize, collected, a.lastHash)

	a.logger.Info("window finalized",
		zap.Uint64("window", result.WindowID),
		zap.String("winner", result.Winner.String()),
		zap.Uint32("total_votes", result.TotalVotes),
	)

	if a.onComplete != nil {
		a.onComplete(result)
	}
}
