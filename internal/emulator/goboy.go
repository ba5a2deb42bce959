package emulator

import (
	"encoding/json"
	"fmt"

	"github.com/Humpheh/goboy/pkg/gb"
)

// goboyCore adapts the goboy Game Boy core to the Core interface. All
// goboy-specific knowledge lives in this file.
type goboyCore struct {
	g *gb.Gameboy
}

// NewCore instantiates the console with the ROM at the given path.
func NewCore(romPath string) (Core, error) {
	g, err := gb.NewGameboy(romPath)
	if err != nil {
		return nil, fmt.Errorf("load rom: %w", err)
	}
	return &goboyCore{g: g}, nil
}

func (c *goboyCore) AdvanceFrame() {
	c.g.Update()
}

func (c *goboyCore) Screen() []byte {
	out := make([]byte, ScreenWidth*ScreenHeight*4)
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			px := c.g.PreparedData[x][y]
			i := (y*ScreenWidth + x) * 4
			out[i] = px[0]
			out[i+1] = px[1]
			out[i+2] = px[2]
			out[i+3] = 0xff
		}
	}
	return out
}

func (c *goboyCore) PressKey(code int) {
	c.g.PressButton(gb.Button(code))
}

func (c *goboyCore) ReleaseKey(code int) {
	c.g.ReleaseButton(gb.Button(code))
}

func (c *goboyCore) SaveRAM() []byte {
	return c.g.Memory.Cart.GetSaveData()
}

func (c *goboyCore) LoadSaveRAM(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty battery ram")
	}
	c.g.Memory.Cart.LoadSaveData(data)
	return nil
}

// memory regions captured by a full state snapshot. The goboy core does
// not expose CPU register serialization, so a snapshot is battery RAM
// plus work/high RAM; the game's observable state lives there.
const (
	wramStart = 0xC000
	wramEnd   = 0xDFFF
	hramStart = 0xFF80
	hramEnd   = 0xFFFE
)

type fullState struct {
	Version    int    `json:"version"`
	BatteryRAM []byte `json:"batteryRam"`
	WorkRAM    []byte `json:"workRam"`
	HighRAM    []byte `json:"highRam"`
}

func (c *goboyCore) SaveState() ([]byte, error) {
	state := fullState{
		Version:    1,
		BatteryRAM: c.g.Memory.Cart.GetSaveData(),
		WorkRAM:    c.readRange(wramStart, wramEnd),
		HighRAM:    c.readRange(hramStart, hramEnd),
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	return data, nil
}

func (c *goboyCore) RestoreState(data []byte) error {
	var state fullState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("parse state: %w", err)
	}
	if state.Version != 1 {
		return fmt.Errorf("unsupported state version: %d", state.Version)
	}
	if len(state.WorkRAM) != int(wramEnd-wramStart)+1 {
		return fmt.Errorf("work ram size mismatch: %d", len(state.WorkRAM))
	}

	if len(state.BatteryRAM) > 0 {
		c.g.Memory.Cart.LoadSaveData(state.BatteryRAM)
	}
	c.writeRange(wramStart, state.WorkRAM)
	c.writeRange(hramStart, state.HighRAM)
	return nil
}

func (c *goboyCore) ReadMemory(addr uint16) byte {
	return c.g.Memory.Read(addr)
}

func (c *goboyCore) readRange(start, end uint16) []byte {
	out := make([]byte, 0, int(end-start)+1)
	for addr := uint32(start); addr <= uint32(end); addr++ {
		out = append(out, c.g.Memory.Read(uint16(addr)))
	}
	return out
}

func (c *goboyCore) writeRange(start uint16, data []byte) {
	for i, b := range data {
		c.g.Memory.Write(start+uint16(i), b)
	}
}
