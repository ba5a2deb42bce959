package model

import (
	"encoding/json"
)

// JournalRecord is the normalized representation of a finalized window
// result for the append-only journal.
type JournalRecord struct {
	WindowID     uint64            `json:"window_id"`
	StartBlock   uint64            `json:"start_block"`
	EndBlock     uint64            `json:"end_block"`
	Winner       string            `json:"winner"`
	WinnerTxHash string            `json:"winner_tx_hash,omitempty"`
	Tallies      map[string]uint32 `json:"tallies"`
	TotalVotes   uint32            `json:"total_votes"`
	SeedHash     string            `json:"seed_hash,omitempty"`
	EmittedAt    string            `json:"emitted_at"`
}

// MarshalJSON ensures JournalRecord is encoded with stable field names.
func (jr JournalRecord) MarshalJSON() ([]byte, error) {
	type Alias JournalRecord
	return json.Marshal(Alias(jr))
}

// UnmarshalJSON decodes a JournalRecord from JSON.
func (jr *JournalRecord) UnmarshalJSON(data []byte) error {
	type Alias JournalRecord
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*jr = JournalRecord(a)
	return nil
}
