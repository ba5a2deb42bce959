package emulator

import (
	"math/bits"

	"github.com/bhuan/monad-plays-pokemon/internal/model"
)

// Work-RAM addresses of the game state the indexer surfaces. These are
// fixed for the Red cartridge.
const (
	addrBadges     = 0xD356
	addrMoney      = 0xD347 // three BCD bytes
	addrMapID      = 0xD35E
	addrPlayerY    = 0xD361
	addrPlayerX    = 0xD362
	addrPartyCount = 0xD163
	addrPartyMons  = 0xD16B

	partyMonSize = 44
	maxParty     = 6

	// offsets within one party-mon record
	monOffHPCur = 0x01 // big-endian u16
	monOffLevel = 0x21
	monOffHPMax = 0x22 // big-endian u16
)

// readGameState decodes the derived snapshot from console memory. The
// caller holds the driver lock.
func readGameState(core Core) model.GameState {
	badges := core.ReadMemory(addrBadges)
	mapID := core.ReadMemory(addrMapID)

	partyCount := int(core.ReadMemory(addrPartyCount))
	if partyCount > maxParty {
		partyCount = maxParty
	}

	party := make([]model.PartyMember, 0, partyCount)
	for slot := 0; slot < partyCount; slot++ {
		base := uint16(addrPartyMons + slot*partyMonSize)
		internalID := core.ReadMemory(base)
		dexID, name := lookupSpecies(internalID)

		party = append(party, model.PartyMember{
			Species:   name,
			DexID:     dexID,
			Level:     core.ReadMemory(base + monOffLevel),
			CurrentHP: readU16BE(core, base+monOffHPCur),
			MaxHP:     readU16BE(core, base+monOffHPMax),
		})
	}

	return model.GameState{
		Location:   lookupLocation(mapID),
		MapID:      mapID,
		Badges:     badges,
		BadgeCount: bits.OnesCount8(badges),
		PlayerX:    core.ReadMemory(addrPlayerX),
		PlayerY:    core.ReadMemory(addrPlayerY),
		PartyCount: partyCount,
		Party:      party,
		Money:      decodeBCDMoney(core),
	}
}

func readU16BE(core Core, addr uint16) uint16 {
	return uint16(core.ReadMemory(addr))<<8 | uint16(core.ReadMemory(addr+1))
}

// decodeBCDMoney reads the three binary-coded-decimal money bytes into
// a 6-digit decimal value.
func decodeBCDMoney(core Core) uint32 {
	var money uint32
	for i := uint16(0); i < 3; i++ {
		b := core.ReadMemory(addrMoney + i)
		money = money*100 + uint32(b>>4)*10 + uint32(b&0x0f)
	}
	return money
}
