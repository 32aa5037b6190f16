package generators

// Kit remaps the fixed GM voice set a Drums generator's hitMap produces
// onto the note numbers a specific drum machine or module expects.
// Grounded on the teacher's sequencer/kits.go DrumKit table (16
// hardware-specific slot→note mappings for a step-grid UI), adapted here
// from a fixed [16]uint8 slot array into a map keyed by the GM note the
// Drums generator already emits, since this generator has no fixed slot
// count — only the ten GM voice constants declared in drums.go (§4.4's
// "GM note mapping"), of which Generate emits kick, snare and closed hat.
type Kit struct {
	Name  string
	Notes map[uint8]uint8 // GM voice note -> kit-specific note
}

func identityKit(name string) Kit { return Kit{Name: name, Notes: map[uint8]uint8{}} }

// Kits holds the hardware mappings carried over from the teacher's
// DrumKit table, restricted to the ten GM voice constants drums.go
// declares.
var Kits = map[string]Kit{
	"gm": identityKit("General MIDI"),
	"rd8": {
		Name: "Behringer RD-8",
		Notes: map[uint8]uint8{
			GMKick: 36, GMSnare: 40, GMClosedHat: 42, GMOpenHat: 46,
			GMLowTom: 45, GMMidTom: 48, GMHighTom: 50, GMCrash: 49,
			GMRide: 51, GMClap: 39,
		},
	},
	"tr8s": {
		Name: "Roland TR-8S",
		Notes: map[uint8]uint8{
			GMKick: 36, GMSnare: 38, GMClosedHat: 42, GMOpenHat: 46,
			GMLowTom: 41, GMMidTom: 43, GMHighTom: 45, GMCrash: 49,
			GMRide: 51, GMClap: 39,
		},
	},
	"er1": {
		Name: "Korg ER-1",
		Notes: map[uint8]uint8{
			GMKick: 36, GMSnare: 38, GMClosedHat: 42, GMOpenHat: 46,
			GMLowTom: 40, GMMidTom: 41, GMHighTom: 43, GMCrash: 49,
			GMRide: 45, GMClap: 39,
		},
	},
}

// KitNames lists the available kit names, "gm" first.
func KitNames() []string { return []string{"gm", "rd8", "tr8s", "er1"} }

// kitByName returns the named kit, defaulting to "gm" (identity) if
// unknown, matching the teacher's GetKit fallback.
func kitByName(name string) Kit {
	if k, ok := Kits[name]; ok {
		return k
	}
	return Kits["gm"]
}

// remap translates a GM voice note through the kit, leaving any note the
// kit doesn't override unchanged.
func (k Kit) remap(gmNote uint8) uint8 {
	if n, ok := k.Notes[gmNote]; ok {
		return n
	}
	return gmNote
}

// kitIndex returns k's position in KitNames(), for Params() introspection.
func kitIndex(k Kit) int {
	for i, name := range KitNames() {
		if Kits[name].Name == k.Name {
			return i
		}
	}
	return 0
}
