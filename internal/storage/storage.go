package storage

import "github.com/bhuan/monad-plays-pokemon/internal/model"

// Journal defines a sink for finalized window results.
type Journal interface {
	Append(result model.WindowResult) error
}

// NopJournal discards results. Used when no journal path is configured.
type NopJournal struct{}

func (NopJournal) Append(model.WindowResult) error { return nil }
