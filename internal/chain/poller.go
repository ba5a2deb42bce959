package chain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/bhuan/monad-plays-pokemon/internal/model"
)

const (
	maxPollRange   = 100
	skipAheadRatio = 10
	rpcTimeout     = 10 * time.Second
)

// Poller queries the HTTP endpoint on a timer for the current head and
// any logs in the range since the last poll. It is the fallback path
// when the subscription is down, and the dedup set absorbs the overlap
// when both are healthy.
type Poller struct {
	client     *Client
	contract   common.Address
	interval   time.Duration
	ingest     *Ingest
	logger     *zap.Logger
	maxRetries int
	backoff    time.Duration

	lastPolled uint64
}

// NewPoller builds the polling path. The interval should be one window
// worth of blocks (W * blockTimeMs).
func NewPoller(client *Client, contract common.Address, interval time.Duration, ingest *Ingest, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		client:     client,
		contract:   contract,
		interval:   interval,
		ingest:     ingest,
		logger:     logger,
		maxRetries: 2,
		backoff:    250 * time.Millisecond,
	}
}

// Run polls until the context is cancelled. Poll errors are logged and
// retried on the next tick.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.poll(ctx); err != nil && ctx.Err() == nil {
				p.logger.Warn("poll failed", zap.Error(err))
			}
		}
	}
}

func (p *Poller) poll(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, rpcTimeout)
	defer cancel()

	var head uint64
	err := withRetry(callCtx, p.maxRetries, p.backoff, func(ctx context.Context) error {
		var err error
		head, err = p.client.LatestBlockNumber(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if p.lastPolled == 0 {
		// First poll starts at the tip; history is not replayed.
		p.lastPolled = head
		p.ingest.OfferTick(ctx, model.BlockTick{Number: head})
		return nil
	}

	if head <= p.lastPolled {
		return nil
	}

	if head-p.lastPolled > skipAheadRatio*maxPollRange {
		skipTo := head - maxPollRange
		p.logger.Warn("poller far behind, skipping ahead",
			zap.Uint64("last_polled", p.lastPolled),
			zap.Uint64("head", head),
			zap.Uint64("skip_to", skipTo),
		)
		p.lastPolled = skipTo
	}

	from := p.lastPolled + 1
	to := head
	if to-from+1 > maxPollRange {
		to = from + maxPollRange - 1
	}

	rawLogs, err := p.client.FilterLogs(callCtx, from, to, p.contract, VoteCastTopic)
	if err != nil {
		return err
	}

	for _, log := range rawLogs {
		p.ingest.OfferLog(ctx, log)
	}
	p.ingest.OfferTick(ctx, model.BlockTick{Number: to})

	p.logger.Debug("poll complete",
		zap.Uint64("from", from),
		zap.Uint64("to", to),
		zap.Int("logs", len(rawLogs)),
	)

	p.lastPolled = to
	return nil
}
