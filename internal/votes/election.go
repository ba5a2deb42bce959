package votes

import (
	"encoding/binary"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bhuan/monad-plays-pokemon/internal/model"
)

// elect tallies one window's votes and picks the winner. Ties are
// broken by reducing the prior block hash XOR the window id modulo the
// tie count over the tied actions in canonical enum order; with no hash
// available the first tied action in canonical order wins.
func elect(window, windowSize uint64, collected []model.Vote, seed common.Hash) model.WindowResult {
	tallies := make(map[model.Action]uint32, model.ActionCount)
	for _, action := range model.Actions() {
		tallies[action] = 0
	}
	for _, vote := range collected {
		tallies[vote.Action]++
	}

	var top uint32
	for _, count := range tallies {
		if count > top {
			top = count
		}
	}

	tied := make([]model.Action, 0, model.ActionCount)
	for _, action := range model.Actions() {
		if tallies[action] == top {
			tied = append(tied, action)
		}
	}
	sort.Slice(tied, func(i, j int) bool { return tied[i] < tied[j] })

	winner := tied[0]
	if len(tied) > 1 && seed != (common.Hash{}) {
		reduced := binary.BigEndian.Uint64(seed[24:32])
		winner = tied[(reduced^window)%uint64(len(tied))]
	}

	result := model.WindowResult{
		WindowID:   window,
		Tallies:    tallies,
		Winner:     winner,
		TotalVotes: uint32(len(collected)),
		SeedHash:   seed,
	}
	result.StartBlock, result.EndBlock = model.WindowBounds(window, windowSize)

	// Surface the first-seen transaction voting for the winner.
	for _, vote := range collected {
		if vote.Action == winner {
			result.WinnerTxHash = vote.TxHash
			break
		}
	}

	return result
}
