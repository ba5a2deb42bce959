package emulator

// Joypad key codes of the console core. These are the native codes the
// hardware joypad register uses, and what Core.PressKey expects.
const (
	KeyA      = 0
	KeyB      = 1
	KeySelect = 2
	KeyStart  = 3
	KeyRight  = 4
	KeyLeft   = 5
	KeyUp     = 6
	KeyDown   = 7
)

// Screen dimensions of the console.
const (
	ScreenWidth  = 160
	ScreenHeight = 144
)

// Core is the black-box console the driver owns. Implementations are
// not reentrant: the driver serializes every call behind one mutex.
type Core interface {
	// AdvanceFrame runs the console for exactly one video frame.
	AdvanceFrame()

	// Screen returns the current framebuffer as RGBA bytes,
	// ScreenWidth*ScreenHeight*4 long. The returned slice is owned by
	// the caller.
	Screen() []byte

	// PressKey holds down a joypad key until ReleaseKey.
	PressKey(code int)

	// ReleaseKey releases a joypad key.
	ReleaseKey(code int)

	// SaveRAM returns the cartridge battery RAM, or nil when the
	// cartridge has none.
	SaveRAM() []byte

	// LoadSaveRAM restores cartridge battery RAM.
	LoadSaveRAM(data []byte) error

	// SaveState serializes the full console state.
	SaveState() ([]byte, error)

	// RestoreState loads a snapshot produced by SaveState.
	RestoreState(data []byte) error

	// ReadMemory reads one byte from the console address space.
	ReadMemory(addr uint16) byte
}
