package model

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Vote is a single on-chain button vote, constructed once at the
// ingestion boundary and immutable afterwards.
type Vote struct {
	Player     common.Address
	Action     Action
	Block      uint64
	TxHash     common.Hash
	LogIndex   uint32
	ObservedAt time.Time
}

// Key returns the dedup identity for this vote.
func (v Vote) Key() string {
	return EventKey(v.Block, v.TxHash, v.LogIndex)
}

// EventKey builds the identity string used by the seen-events set.
func EventKey(block uint64, txHash common.Hash, logIndex uint32) string {
	return fmt.Sprintf("%d:%s:%d", block, txHash.Hex(), logIndex)
}

// BlockTick signals that some block has been observed by either
// ingestion path. Hash is zero when the poll path produced the tick.
type BlockTick struct {
	Number uint64
	Hash   common.Hash
}

// HasHash reports whether the tick carries an authoritative hash.
func (t BlockTick) HasHash() bool {
	return t.Hash != (common.Hash{})
}
