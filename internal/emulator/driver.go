package emulator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bhuan/monad-plays-pokemon/internal/model"
)

// DefaultPressFrames is how many frames a button stays held.
const DefaultPressFrames = 5

// actionKeys maps vote actions onto joypad key codes.
var actionKeys = map[model.Action]int{
	model.ActionUp:     KeyUp,
	model.ActionDown:   KeyDown,
	model.ActionLeft:   KeyLeft,
	model.ActionRight:  KeyRight,
	model.ActionA:      KeyA,
	model.ActionB:      KeyB,
	model.ActionStart:  KeyStart,
	model.ActionSelect: KeySelect,
}

// Driver owns the console. One mutex serializes every core access: the
// frame clock, the game-state sampler, and the auto-saver all go
// through it because the core is not reentrant.
type Driver struct {
	mu    sync.Mutex
	core  Core
	saves *SaveStore

	fps     int
	onFrame func([]byte)
	logger  *zap.Logger

	pendingKey   int
	framesLeft   int
	pressActive  bool
	lastSnapshot *model.GameState
}

// NewDriver wires the console to its save store and frame sink.
func NewDriver(core Core, saves *SaveStore, fps int, onFrame func([]byte), logger *zap.Logger) *Driver {
	if fps <= 0 {
		fps = 60
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		core:    core,
		saves:   saves,
		fps:     fps,
		onFrame: onFrame,
		logger:  logger,
	}
}

// RunClock advances the console one frame per tick until the context is
// cancelled, injecting any pending button press along the way.
func (d *Driver) RunClock(ctx context.Context) {
	interval := time.Second / time.Duration(d.fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame := d.step()
			if d.onFrame != nil {
				d.onFrame(frame)
			}
		}
	}
}

// step runs one frame under the lock and returns the framebuffer.
func (d *Driver) step() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pressActive {
		d.core.PressKey(d.pendingKey)
		d.framesLeft--
		if d.framesLeft <= 0 {
			d.core.ReleaseKey(d.pendingKey)
			d.pressActive = false
		}
	}

	d.core.AdvanceFrame()
	return d.core.Screen()
}

// PressButton queues a button press for the next durationFrames frames.
// A press queued before the previous one exhausts replaces it.
func (d *Driver) PressButton(action model.Action, durationFrames int) {
	key, ok := actionKeys[action]
	if !ok {
		d.logger.Warn("unmapped action", zap.String("action", action.String()))
		return
	}
	if durationFrames <= 0 {
		durationFrames = DefaultPressFrames
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pressActive && d.pendingKey != key {
		d.core.ReleaseKey(d.pendingKey)
	}
	d.pendingKey = key
	d.framesLeft = durationFrames
	d.pressActive = true
}

// RunAutosave persists the save files on a timer. Failures are logged;
// the next tick tries again.
func (d *Driver) RunAutosave(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.Save(); err != nil {
				d.logger.Warn("autosave failed", zap.Error(err))
			}
		}
	}
}

// Save synchronously persists both save files. Called by the autosave
// timer and once more during shutdown.
func (d *Driver) Save() error {
	if d.saves == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saves.Persist(d.core)
}

// RunSampler reads the game state on a fixed cadence and invokes
// onChange only when the snapshot semantically differs from the last.
func (d *Driver) RunSampler(ctx context.Context, every time.Duration, onChange func(model.GameState)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if state, changed := d.Sample(); changed && onChange != nil {
				onChange(state)
			}
		}
	}
}

// Sample reads the current game state and reports whether it changed
// since the previous sample.
func (d *Driver) Sample() (model.GameState, bool) {
	d.mu.Lock()
	state := readGameState(d.core)
	changed := state.Changed(d.lastSnapshot)
	if changed {
		d.lastSnapshot = &state
	}
	d.mu.Unlock()
	return state, changed
}
