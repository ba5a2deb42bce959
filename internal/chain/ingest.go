package chain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/bhuan/monad-plays-pokemon/internal/model"
)

const trailingWindows = 2

// rawEvent is the union of what the two upstream paths produce. Exactly
// one field is set.
type rawEvent struct {
	log  *types.Log
	tick *model.BlockTick
}

// Ingest funnels both upstream paths through a single loop so that the
// dedup set has one writer and downstream sees one ordered stream.
type Ingest struct {
	in         chan rawEvent
	votes      chan model.Vote
	ticks      chan model.BlockTick
	dedup      *DedupSet
	windowSize uint64
	gcEvery    time.Duration
	logger     *zap.Logger

	highestBlock uint64
}

// NewIngest builds the ingest funnel.
func NewIngest(windowSize uint64, gcEvery time.Duration, logger *zap.Logger) *Ingest {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gcEvery <= 0 {
		gcEvery = 30 * time.Second
	}
	return &Ingest{
		in:         make(chan rawEvent, 256),
		votes:      make(chan model.Vote, 256),
		ticks:      make(chan model.BlockTick, 256),
		dedup:      NewDedupSet(),
		windowSize: windowSize,
		gcEvery:    gcEvery,
		logger:     logger,
	}
}

// Votes is the deduplicated vote stream.
func (i *Ingest) Votes() <-chan model.Vote { return i.votes }

// Ticks is the observed-block stream.
func (i *Ingest) Ticks() <-chan model.BlockTick { return i.ticks }

// OfferLog hands a raw log from either path into the funnel.
func (i *Ingest) OfferLog(ctx context.Context, log types.Log) {
	select {
	case i.in <- rawEvent{log: &log}:
	case <-ctx.Done():
	}
}

// OfferTick hands an observed block into the funnel.
func (i *Ingest) OfferTick(ctx context.Context, tick model.BlockTick) {
	select {
	case i.in <- rawEvent{tick: &tick}:
	case <-ctx.Done():
	}
}

// Run consumes the funnel until the context is cancelled. It owns the
// dedup set and its periodic eviction.
func (i *Ingest) Run(ctx context.Context) {
	gc := time.NewTicker(i.gcEvery)
	defer gc.Stop()

	for {
		select {
		case <-ctx.Done():
			close(i.votes)
			close(i.ticks)
			return
		case <-gc.C:
			i.collect()
		case ev := <-i.in:
			switch {
			case ev.log != nil:
				i.handleLog(ctx, *ev.log)
			case ev.tick != nil:
				i.handleTick(ctx, *ev.tick)
			}
		}
	}
}

func (i *Ingest) handleLog(ctx context.Context, log types.Log) {
	if log.Removed {
		return
	}
	if !i.dedup.Admit(log.BlockNumber, log.TxHash, uint32(log.Index)) {
		return
	}

	vote, err := ParseVoteLog(log, time.Now().UTC())
	if err != nil {
		i.logger.Warn("drop unparsable vote log",
			zap.Error(err),
			zap.Uint64("block", log.BlockNumber),
			zap.String("tx", log.TxHash.Hex()),
		)
		return
	}

	if vote.Block > i.highestBlock {
		i.highestBlock = vote.Block
	}

	select {
	case i.votes <- vote:
	case <-ctx.Done():
	}
}

func (i *Ingest) handleTick(ctx context.Context, tick model.BlockTick) {
	if tick.Number > i.highestBlock {
		i.highestBlock = tick.Number
	}
	select {
	case i.ticks <- tick:
	case <-ctx.Done():
	}
}

// collect evicts dedup entries older than the trailing window margin.
func (i *Ingest) collect() {
	current := model.WindowOf(i.highestBlock, i.windowSize)
	if current < trailingWindows {
		return
	}
	cutoff := (current - trailingWindows) * i.windowSize
	if n := i.dedup.Evict(cutoff); n > 0 {
		i.logger.Debug("dedup gc",
			zap.Int("evicted", n),
			zap.Int("remaining", i.dedup.Len()),
			zap.Uint64("cutoff_block", cutoff),
		)
	}
}
