package model

import "github.com/ethereum/go-ethereum/common"

var zeroHash common.Hash

// CachedVote is the broadcast-shaped form of a Vote held in the hub's
// recent-history buffer and echoed to spectators.
type CachedVote struct {
	Player     string `json:"player"`
	Action     string `json:"action"`
	ActionCode uint8  `json:"actionCode"`
	Block      uint64 `json:"block"`
	TxHash     string `json:"txHash"`
	ObservedAt int64  `json:"observedAt"`
}

// CachedAction is the broadcast-shaped form of a WindowResult.
type CachedAction struct {
	WindowID     uint64            `json:"windowId"`
	StartBlock   uint64            `json:"startBlock"`
	EndBlock     uint64            `json:"endBlock"`
	Winner       string            `json:"winner"`
	WinnerCode   uint8             `json:"winnerCode"`
	WinnerTxHash string            `json:"winnerTxHash,omitempty"`
	Tallies      map[string]uint32 `json:"tallies"`
	TotalVotes   uint32            `json:"totalVotes"`
}

// CacheVote converts an ingested Vote into its broadcast shape.
func CacheVote(v Vote) CachedVote {
	return CachedVote{
		Player:     v.Player.Hex(),
		Action:     v.Action.String(),
		ActionCode: uint8(v.Action),
		Block:      v.Block,
		TxHash:     v.TxHash.Hex(),
		ObservedAt: v.ObservedAt.UnixMilli(),
	}
}

// CacheResult converts a WindowResult into its broadcast shape.
func CacheResult(r WindowResult) CachedAction {
	tallies := make(map[string]uint32, len(r.Tallies))
	for action, count := range r.Tallies {
		tallies[action.String()] = count
	}
	cached := CachedAction{
		WindowID:   r.WindowID,
		StartBlock: r.StartBlock,
		EndBlock:   r.EndBlock,
		Winner:     r.Winner.String(),
		WinnerCode: uint8(r.Winner),
		Tallies:    tallies,
		TotalVotes: r.TotalVotes,
	}
	if r.WinnerTxHash != (zeroHash) {
		cached.WinnerTxHash = r.WinnerTxHash.Hex()
	}
	return cached
}
