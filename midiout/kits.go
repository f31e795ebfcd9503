package midiout

import "step-machine/sequencer"

// Kit maps the machine's voices to MIDI notes for a particular sound module.
type Kit struct {
	Name  string
	Notes map[sequencer.Track]uint8
}

// Kits contains all available drum kit mappings
var Kits = map[string]Kit{
	"gm": {
		Name: "General MIDI",
		Notes: map[sequencer.Track]uint8{
			sequencer.TrackKick:      36,
			sequencer.TrackSnare:     38,
			sequencer.TrackClosedHat: 42,
			sequencer.TrackOpenHat:   46,
			sequencer.TrackClap:      39,
			sequencer.TrackLowTom:    41,
			sequencer.TrackHighTom:   45,
			sequencer.TrackCowbell:   56,
		},
	},
	"rd8": {
		Name: "Behringer RD-8",
		Notes: map[sequencer.Track]uint8{
			sequencer.TrackKick:      36,
			sequencer.TrackSnare:     40, // RD-8 uses 40, not 38!
			sequencer.TrackClosedHat: 42,
			sequencer.TrackOpenHat:   46,
			sequencer.TrackClap:      39,
			sequencer.TrackLowTom:    45,
			sequencer.TrackHighTom:   50,
			sequencer.TrackCowbell:   56,
		},
	},
	"tr8s": {
		Name: "Roland TR-8S",
		Notes: map[sequencer.Track]uint8{
			sequencer.TrackKick:      36,
			sequencer.TrackSnare:     38,
			sequencer.TrackClosedHat: 42,
			sequencer.TrackOpenHat:   46,
			sequencer.TrackClap:      39,
			sequencer.TrackLowTom:    41,
			sequencer.TrackHighTom:   45,
			sequencer.TrackCowbell:   56,
		},
	},
}

// KitNames returns the list of available kit names
func KitNames() []string {
	return []string{"gm", "rd8", "tr8s"}
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) Kit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits["gm"]
}

// DefaultKit is the default kit name
const DefaultKit = "gm"
