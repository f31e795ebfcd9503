package sequencer

// Track identifies one of the machine's drum voices.
type Track string

const (
	TrackKick      Track = "kick"
	TrackSnare     Track = "snare"
	TrackClosedHat Track = "closed-hat"
	TrackOpenHat   Track = "open-hat"
	TrackClap      Track = "clap"
	TrackLowTom    Track = "low-tom"
	TrackHighTom   Track = "high-tom"
	TrackCowbell   Track = "cowbell"
)

// Tracks is the fixed voice set, in dispatch and display order.
var Tracks = []Track{
	TrackKick,
	TrackSnare,
	TrackClosedHat,
	TrackOpenHat,
	TrackClap,
	TrackLowTom,
	TrackHighTom,
	TrackCowbell,
}

// PatternLength is the number of sixteenth-note steps in a pattern.
const PatternLength = 16

// Grid maps each track to its step row. A missing row means no hits on that
// track. The scheduler reads the grid it was handed without copying it, so
// callers replace it wholesale via SetGrid rather than mutating in place.
type Grid map[Track][]bool

// NewGrid returns an empty grid with a row for every track.
func NewGrid() Grid {
	g := make(Grid, len(Tracks))
	for _, t := range Tracks {
		g[t] = make([]bool, PatternLength)
	}
	return g
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	c := make(Grid, len(g))
	for t, row := range g {
		c[t] = append([]bool(nil), row...)
	}
	return c
}

// Toggle returns a copy of the grid with one step flipped. The receiver is
// left untouched so an in-flight scheduling pass never sees a half-edited row.
func (g Grid) Toggle(track Track, step int) Grid {
	c := g.Clone()
	row := c[track]
	if row == nil {
		row = make([]bool, PatternLength)
	}
	if step >= 0 && step < len(row) {
		row[step] = !row[step]
	}
	c[track] = row
	return c
}
