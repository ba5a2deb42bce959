package chain

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/bhuan/monad-plays-pokemon/internal/model"
)

// DedupSet absorbs duplicate vote events seen by the subscription and
// polling paths. It is single-writer: only the ingest loop touches it.
type DedupSet struct {
	seen map[string]uint64
}

// NewDedupSet creates an empty dedup set.
func NewDedupSet() *DedupSet {
	return &DedupSet{seen: make(map[string]uint64)}
}

// Admit records the event identity and reports whether it was new.
func (d *DedupSet) Admit(block uint64, txHash common.Hash, logIndex uint32) bool {
	key := model.EventKey(block, txHash, logIndex)
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = block
	return true
}

// Evict drops entries below the given block number.
func (d *DedupSet) Evict(beforeBlock uint64) int {
	evicted := 0
	for key, block := range d.seen {
		if block < beforeBlock {
			delete(d.seen, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of tracked identities.
func (d *DedupSet) Len() int {
	return len(d.seen)
}
