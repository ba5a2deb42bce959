package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bhuan/monad-plays-pokemon/internal/model"
)

// JsonlJournal appends finalized window results to a JSONL file.
type JsonlJournal struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

func NewJsonlJournal(path string) *JsonlJournal {
	return &JsonlJournal{path: path, now: time.Now}
}

// Append writes one result as a JSON line.
func (j *JsonlJournal) Append(result model.WindowResult) error {
	record := recordFromResult(result, j.now().UTC())

	dir := filepath.Dir(j.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal journal record: %w", err)
	}
	if _, err := writer.Write(line); err != nil {
		return fmt.Errorf("write journal record: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush journal: %w", err)
	}

	return nil
}

func recordFromResult(result model.WindowResult, emittedAt time.Time) model.JournalRecord {
	tallies := make(map[string]uint32, len(result.Tallies))
	for action, count := range result.Tallies {
		tallies[action.String()] = count
	}

	record := model.JournalRecord{
		WindowID:   result.WindowID,
		StartBlock: result.StartBlock,
		EndBlock:   result.EndBlock,
		Winner:     result.Winner.String(),
		Tallies:    tallies,
		TotalVotes: result.TotalVotes,
		EmittedAt:  emittedAt.Format(time.RFC3339Nano),
	}
	if result.WinnerTxHash != (common.Hash{}) {
		record.WinnerTxHash = result.WinnerTxHash.Hex()
	}
	if result.SeedHash != (common.Hash{}) {
		record.SeedHash = result.SeedHash.Hex()
	}
	return record
}
