package model

import "github.com/ethereum/go-ethereum/common"

// WindowOf maps a block number onto its window id for window size w.
func WindowOf(block, w uint64) uint64 {
	if w == 0 {
		w = 1
	}
	return block / w
}

// WindowBounds returns the inclusive block bounds of a window.
func WindowBounds(windowID, w uint64) (start, end uint64) {
	if w == 0 {
		w = 1
	}
	return windowID * w, (windowID+1)*w - 1
}

// WindowResult is the single-shot outcome of a finalized window.
type WindowResult struct {
	WindowID     uint64
	StartBlock   uint64
	EndBlock     uint64
	Tallies      map[Action]uint32
	Winner       Action
	WinnerTxHash common.Hash
	TotalVotes   uint32
	SeedHash     common.Hash
}
