package emulator

import (
	"encoding/json"
	"fmt"
	"sync"
)

// fakeCore is an in-memory console for tests. It records key events
// and serves a writable 64 KiB address space.
type fakeCore struct {
	mu       sync.Mutex
	mem      [0x10000]byte
	battery  []byte
	frames   int
	events   []string
	failSave bool
}

func (f *fakeCore) AdvanceFrame() {
	f.mu.Lock()
	f.frames++
	f.mu.Unlock()
}

func (f *fakeCore) Screen() []byte {
	return make([]byte, ScreenWidth*ScreenHeight*4)
}

func (f *fakeCore) PressKey(code int) {
	f.mu.Lock()
	f.events = append(f.events, fmt.Sprintf("press:%d", code))
	f.mu.Unlock()
}

func (f *fakeCore) ReleaseKey(code int) {
	f.mu.Lock()
	f.events = append(f.events, fmt.Sprintf("release:%d", code))
	f.mu.Unlock()
}

func (f *fakeCore) SaveRAM() []byte { return f.battery }

func (f *fakeCore) LoadSaveRAM(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty battery ram")
	}
	f.battery = append([]byte(nil), data...)
	return nil
}

type fakeState struct {
	Battery []byte `json:"battery"`
	WRAM    []byte `json:"wram"`
}

func (f *fakeCore) SaveState() ([]byte, error) {
	if f.failSave {
		return nil, fmt.Errorf("save unsupported")
	}
	return json.Marshal(fakeState{Battery: f.battery, WRAM: f.mem[0xC000:0xE000]})
}

func (f *fakeCore) RestoreState(data []byte) error {
	var state fakeState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if len(state.WRAM) != 0x2000 {
		return fmt.Errorf("wram size mismatch")
	}
	f.battery = state.Battery
	copy(f.mem[0xC000:0xE000], state.WRAM)
	return nil
}

func (f *fakeCore) ReadMemory(addr uint16) byte { return f.mem[addr] }

func (f *fakeCore) keyEvents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}
