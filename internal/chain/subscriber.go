package chain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/bhuan/monad-plays-pokemon/internal/model"
)

const defaultReconnectDelay = 5 * time.Second

// Subscriber owns the websocket endpoint: one new-heads subscription
// and one filtered-logs subscription. Any error tears both down and the
// connection is re-dialed after a fixed delay; no replay is attempted.
type Subscriber struct {
	wsURL          string
	contract       common.Address
	ingest         *Ingest
	reconnectDelay time.Duration
	logger         *zap.Logger
}

// NewSubscriber builds the subscription path.
func NewSubscriber(wsURL string, contract common.Address, ingest *Ingest, logger *zap.Logger) *Subscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{
		wsURL:          wsURL,
		contract:       contract,
		ingest:         ingest,
		reconnectDelay: defaultReconnectDelay,
		logger:         logger,
	}
}

// Run dials and re-dials the streaming endpoint until the context is
// cancelled. It never returns a terminal error: the polling path keeps
// the indexer alive while this one is down.
func (s *Subscriber) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.connectAndListen(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("subscription dropped", zap.Error(err), zap.Duration("reconnect_in", s.reconnectDelay))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnectDelay):
		}
	}
}

func (s *Subscriber) connectAndListen(ctx context.Context) error {
	client, err := NewClient(ctx, s.wsURL)
	if err != nil {
		return err
	}
	defer client.Close()

	heads := make(chan *types.Header, 64)
	headSub, err := client.SubscribeNewHead(ctx, heads)
	if err != nil {
		return err
	}
	defer headSub.Unsubscribe()

	logs := make(chan types.Log, 256)
	logSub, err := client.SubscribeLogs(ctx, s.contract, VoteCastTopic, logs)
	if err != nil {
		return err
	}
	defer logSub.Unsubscribe()

	s.logger.Info("subscriptions established", zap.String("ws", s.wsURL), zap.String("contract", s.contract.Hex()))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-headSub.Err():
			return err
		case err := <-logSub.Err():
			return err
		case head := <-heads:
			if head == nil {
				continue
			}
			s.ingest.OfferTick(ctx, model.BlockTick{
				Number: head.Number.Uint64(),
				Hash:   head.Hash(),
			})
		case log := <-logs:
			s.ingest.OfferLog(ctx, log)
		}
	}
}
