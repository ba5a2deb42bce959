package chain

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bhuan/monad-plays-pokemon/internal/model"
)

// Scenario: the subscription delivers a log, then the poll path returns
// the same log in a range query. Exactly one vote reaches downstream.
func TestIngestDedupAcrossPaths(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ing := NewIngest(5, time.Hour, nil)
	go ing.Run(ctx)

	player := common.HexToAddress("0x2222222222222222222222222222222222222222")
	log := voteLog(7, common.HexToHash("0xaa"), 0, player, uint8(model.ActionA))

	ing.OfferLog(ctx, log) // subscription path
	ing.OfferLog(ctx, log) // poll path, same identity

	select {
	case vote := <-ing.Votes():
		if vote.Block != 7 || vote.Action != model.ActionA {
			t.Fatalf("unexpected vote: %+v", vote)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected one vote downstream")
	}

	select {
	case vote := <-ing.Votes():
		t.Fatalf("duplicate vote leaked downstream: %+v", vote)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestIngestDropsInvalidLog(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ing := NewIngest(5, time.Hour, nil)
	go ing.Run(ctx)

	player := common.HexToAddress("0x2222222222222222222222222222222222222222")
	ing.OfferLog(ctx, voteLog(7, common.HexToHash("0xab"), 0, player, 200))

	select {
	case vote := <-ing.Votes():
		t.Fatalf("invalid action leaked downstream: %+v", vote)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestIngestForwardsTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ing := NewIngest(5, time.Hour, nil)
	go ing.Run(ctx)

	hash := common.HexToHash("0x0101")
	ing.OfferTick(ctx, model.BlockTick{Number: 12, Hash: hash})

	select {
	case tick := <-ing.Ticks():
		if tick.Number != 12 || tick.Hash != hash {
			t.Fatalf("tick mismatch: %+v", tick)
		}
		if !tick.HasHash() {
			t.Fatalf("subscription tick should carry a hash")
		}
	case <-time.After(time.Second):
		t.Fatalf("expected tick downstream")
	}
}
