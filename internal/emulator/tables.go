package emulator

import "fmt"

// speciesEntry maps the cartridge's internal species index onto the
// canonical dex number and display name.
type speciesEntry struct {
	dex  uint16
	name string
}

// internalSpecies is keyed by the internal index order the cartridge
// stores party members in; gaps are glitch slots.
var internalSpecies = map[byte]speciesEntry{
	0x01: {112, "RHYDON"},
	0x02: {115, "KANGASKHAN"},
	0x03: {32, "NIDORAN-M"},
	0x04: {35, "CLEFAIRY"},
	0x05: {21, "SPEAROW"},
	0x06: {100, "VOLTORB"},
	0x07: {34, "NIDOKING"},
	0x08: {80, "SLOWBRO"},
	0x09: {2, "IVYSAUR"},
	0x0A: {103, "EXEGGUTOR"},
	0x0B: {108, "LICKITUNG"},
	0x0C: {102, "EXEGGCUTE"},
	0x0D: {88, "GRIMER"},
	0x0E: {94, "GENGAR"},
	0x0F: {29, "NIDORAN-F"},
	0x10: {31, "NIDOQUEEN"},
	0x11: {104, "CUBONE"},
	0x12: {111, "RHYHORN"},
	0x13: {131, "LAPRAS"},
	0x14: {59, "ARCANINE"},
	0x15: {151, "MEW"},
	0x16: {130, "GYARADOS"},
	0x17: {90, "SHELLDER"},
	0x18: {72, "TENTACOOL"},
	0x19: {92, "GASTLY"},
	0x1A: {123, "SCYTHER"},
	0x1B: {120, "STARYU"},
	0x1C: {9, "BLASTOISE"},
	0x1D: {127, "PINSIR"},
	0x1E: {114, "TANGELA"},
	0x21: {58, "GROWLITHE"},
	0x22: {95, "ONIX"},
	0x23: {22, "FEAROW"},
	0x24: {16, "PIDGEY"},
	0x25: {79, "SLOWPOKE"},
	0x26: {64, "KADABRA"},
	0x27: {75, "GRAVELER"},
	0x28: {113, "CHANSEY"},
	0x29: {67, "MACHOKE"},
	0x2A: {122, "MR. MIME"},
	0x2B: {106, "HITMONLEE"},
	0x2C: {107, "HITMONCHAN"},
	0x2D: {24, "ARBOK"},
	0x2E: {47, "PARASECT"},
	0x2F: {54, "PSYDUCK"},
	0x30: {96, "DROWZEE"},
	0x31: {76, "GOLEM"},
	0x33: {126, "MAGMAR"},
	0x35: {125, "ELECTABUZZ"},
	0x36: {82, "MAGNETON"},
	0x37: {109, "KOFFING"},
	0x39: {56, "MANKEY"},
	0x3A: {86, "SEEL"},
	0x3B: {50, "DIGLETT"},
	0x3C: {128, "TAUROS"},
	0x40: {83, "FARFETCH'D"},
	0x41: {48, "VENONAT"},
	0x42: {149, "DRAGONITE"},
	0x46: {84, "DODUO"},
	0x47: {60, "POLIWAG"},
	0x48: {124, "JYNX"},
	0x49: {146, "MOLTRES"},
	0x4A: {144, "ARTICUNO"},
	0x4B: {145, "ZAPDOS"},
	0x4C: {132, "DITTO"},
	0x4D: {52, "MEOWTH"},
	0x4E: {98, "KRABBY"},
	0x52: {37, "VULPIX"},
	0x53: {38, "NINETALES"},
	0x54: {25, "PIKACHU"},
	0x55: {26, "RAICHU"},
	0x58: {147, "DRATINI"},
	0x59: {148, "DRAGONAIR"},
	0x5A: {140, "KABUTO"},
	0x5B: {141, "KABUTOPS"},
	0x5C: {116, "HORSEA"},
	0x5D: {117, "SEADRA"},
	0x60: {27, "SANDSHREW"},
	0x61: {28, "SANDSLASH"},
	0x62: {138, "OMANYTE"},
	0x63: {139, "OMASTAR"},
	0x64: {39, "JIGGLYPUFF"},
	0x65: {40, "WIGGLYTUFF"},
	0x66: {133, "EEVEE"},
	0x67: {136, "FLAREON"},
	0x68: {135, "JOLTEON"},
	0x69: {134, "VAPOREON"},
	0x6A: {66, "MACHOP"},
	0x6B: {41, "ZUBAT"},
	0x6C: {23, "EKANS"},
	0x6D: {46, "PARAS"},
	0x6E: {61, "POLIWHIRL"},
	0x6F: {62, "POLIWRATH"},
	0x70: {13, "WEEDLE"},
	0x71: {14, "KAKUNA"},
	0x72: {15, "BEEDRILL"},
	0x74: {85, "DODRIO"},
	0x75: {57, "PRIMEAPE"},
	0x76: {51, "DUGTRIO"},
	0x77: {49, "VENOMOTH"},
	0x78: {87, "DEWGONG"},
	0x7B: {10, "CATERPIE"},
	0x7C: {11, "METAPOD"},
	0x7D: {12, "BUTTERFREE"},
	0x7E: {68, "MACHAMP"},
	0x80: {55, "GOLDUCK"},
	0x81: {97, "HYPNO"},
	0x82: {42, "GOLBAT"},
	0x83: {150, "MEWTWO"},
	0x84: {143, "SNORLAX"},
	0x85: {129, "MAGIKARP"},
	0x88: {89, "MUK"},
	0x8A: {99, "KINGLER"},
	0x8B: {91, "CLOYSTER"},
	0x8D: {101, "ELECTRODE"},
	0x8E: {36, "CLEFABLE"},
	0x8F: {110, "WEEZING"},
	0x90: {53, "PERSIAN"},
	0x91: {105, "MAROWAK"},
	0x93: {93, "HAUNTER"},
	0x94: {63, "ABRA"},
	0x95: {65, "ALAKAZAM"},
	0x96: {17, "PIDGEOTTO"},
	0x97: {18, "PIDGEOT"},
	0x98: {121, "STARMIE"},
	0x99: {1, "BULBASAUR"},
	0x9A: {3, "VENUSAUR"},
	0x9B: {73, "TENTACRUEL"},
	0x9D: {118, "GOLDEEN"},
	0x9E: {119, "SEAKING"},
	0xA3: {77, "PONYTA"},
	0xA4: {78, "RAPIDASH"},
	0xA5: {19, "RATTATA"},
	0xA6: {20, "RATICATE"},
	0xA7: {33, "NIDORINO"},
	0xA8: {30, "NIDORINA"},
	0xA9: {74, "GEODUDE"},
	0xAA: {137, "PORYGON"},
	0xAB: {142, "AERODACTYL"},
	0xAD: {81, "MAGNEMITE"},
	0xB0: {4, "CHARMANDER"},
	0xB1: {7, "SQUIRTLE"},
	0xB2: {5, "CHARMELEON"},
	0xB3: {8, "WARTORTLE"},
	0xB4: {6, "CHARIZARD"},
	0xB9: {43, "ODDISH"},
	0xBA: {44, "GLOOM"},
	0xBB: {45, "VILEPLUME"},
	0xBC: {69, "BELLSPROUT"},
	0xBD: {70, "WEEPINBELL"},
	0xBE: {71, "VICTREEBEL"},
}

func lookupSpecies(internalID byte) (uint16, string) {
	if entry, ok := internalSpecies[internalID]; ok {
		return entry.dex, entry.name
	}
	return 0, fmt.Sprintf("UNKNOWN(0x%02X)", internalID)
}

// mapNames covers the overworld and the landmarks spectators care
// about; interiors fall through to a numbered label.
var mapNames = map[byte]string{
	0x00: "Pallet Town",
	0x01: "Viridian City",
	0x02: "Pewter City",
	0x03: "Cerulean City",
	0x04: "Lavender Town",
	0x05: "Vermilion City",
	0x06: "Celadon City",
	0x07: "Fuchsia City",
	0x08: "Cinnabar Island",
	0x09: "Indigo Plateau",
	0x0A: "Saffron City",
	0x0C: "Route 1",
	0x0D: "Route 2",
	0x0E: "Route 3",
	0x0F: "Route 4",
	0x10: "Route 5",
	0x11: "Route 6",
	0x12: "Route 7",
	0x13: "Route 8",
	0x14: "Route 9",
	0x15: "Route 10",
	0x16: "Route 11",
	0x17: "Route 12",
	0x18: "Route 13",
	0x19: "Route 14",
	0x1A: "Route 15",
	0x1B: "Route 16",
	0x1C: "Route 17",
	0x1D: "Route 18",
	0x1E: "Route 19",
	0x1F: "Route 20",
	0x20: "Route 21",
	0x21: "Route 22",
	0x22: "Route 23",
	0x23: "Route 24",
	0x24: "Route 25",
	0x25: "Player's House",
	0x28: "Oak's Lab",
	0x33: "Viridian Forest",
	0x3B: "Mt. Moon",
	0x3C: "Mt. Moon",
	0x3D: "Mt. Moon",
	0x52: "Rock Tunnel",
	0x8E: "Pokemon Tower",
	0x9C: "Victory Road",
	0xA5: "Power Plant",
	0xD9: "Safari Zone",
	0xE2: "Cerulean Cave",
	0xE8: "Seafoam Islands",
}

func lookupLocation(mapID byte) string {
	if name, ok := mapNames[mapID]; ok {
		return name
	}
	return fmt.Sprintf("Area 0x%02X", mapID)
}
