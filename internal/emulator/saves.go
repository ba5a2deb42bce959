package emulator

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	batteryFileName = "pokemon-red.sav"
	stateFileName   = "pokemon-red.state"
)

// SaveStore persists and restores console saves under one directory.
// The full-state snapshot is preferred on load; the battery file is the
// fallback for saves written by other emulators.
type SaveStore struct {
	dir    string
	logger *zap.Logger
}

// NewSaveStore ensures the save directory exists.
func NewSaveStore(dir string, logger *zap.Logger) (*SaveStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}
	return &SaveStore{dir: dir, logger: logger}, nil
}

// BatteryPath returns the battery RAM file path.
func (s *SaveStore) BatteryPath() string { return filepath.Join(s.dir, batteryFileName) }

// StatePath returns the full-state file path.
func (s *SaveStore) StatePath() string { return filepath.Join(s.dir, stateFileName) }

// Restore loads saved progress into the core: full state first, battery
// RAM second, fresh start when neither works. The outcome is logged,
// never fatal.
func (s *SaveStore) Restore(core Core) {
	if data, err := os.ReadFile(s.StatePath()); err == nil {
		if err := core.RestoreState(data); err == nil {
			s.logger.Info("restored full state", zap.String("path", s.StatePath()))
			return
		} else {
			s.logger.Warn("full state unusable, trying battery ram", zap.Error(err))
		}
	}

	if data, err := os.ReadFile(s.BatteryPath()); err == nil {
		if err := core.LoadSaveRAM(data); err == nil {
			s.logger.Info("restored battery ram", zap.String("path", s.BatteryPath()))
			return
		} else {
			s.logger.Warn("battery ram unusable", zap.Error(err))
		}
	}

	s.logger.Info("no usable save, starting fresh")
}

// Persist writes both the full state and the battery backup. Either
// failure is returned but the other file is still attempted.
func (s *SaveStore) Persist(core Core) error {
	var firstErr error

	if data, err := core.SaveState(); err != nil {
		firstErr = fmt.Errorf("serialize state: %w", err)
	} else if err := writeAtomic(s.StatePath(), data); err != nil {
		firstErr = err
	}

	if battery := core.SaveRAM(); len(battery) > 0 {
		if err := writeAtomic(s.BatteryPath(), battery); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s tmp: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
