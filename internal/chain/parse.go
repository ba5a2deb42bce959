package chain

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/bhuan/monad-plays-pokemon/internal/model"
)

// VoteCastTopic is topic0 of the vote contract's VoteCast event.
var VoteCastTopic = crypto.Keccak256Hash([]byte("VoteCast(address,uint8)"))

// ParseVoteLog converts a raw VoteCast log into a Vote. The player is
// the low 20 bytes of topics[1]; the action is the last byte of the
// data word.
func ParseVoteLog(log types.Log, observedAt time.Time) (model.Vote, error) {
	if len(log.Topics) < 2 {
		return model.Vote{}, fmt.Errorf("vote log: expected 2 topics, got %d", len(log.Topics))
	}
	if log.Topics[0] != VoteCastTopic {
		return model.Vote{}, fmt.Errorf("vote log: unexpected topic0 %s", log.Topics[0].Hex())
	}
	if len(log.Data) < 32 {
		return model.Vote{}, fmt.Errorf("vote log: expected 32 data bytes, got %d", len(log.Data))
	}

	action, err := model.ParseAction(log.Data[31])
	if err != nil {
		return model.Vote{}, fmt.Errorf("vote log: %w", err)
	}

	return model.Vote{
		Player:     common.BytesToAddress(log.Topics[1].Bytes()),
		Action:     action,
		Block:      log.BlockNumber,
		TxHash:     log.TxHash,
		LogIndex:   uint32(log.Index),
		ObservedAt: observedAt,
	}, nil
}
