package sequencer

// Factory patterns. Each call builds a fresh grid so callers can edit the
// result without bleeding into later loads.

// PresetNames lists the built-in patterns in menu order.
func PresetNames() []string {
	return []string{"four-on-the-floor", "backbeat", "shuffle"}
}

// Preset returns a built-in pattern by name, or an empty grid for unknown
// names.
func Preset(name string) Grid {
	g := NewGrid()
	switch name {
	case "four-on-the-floor":
		setSteps(g, TrackKick, 0, 4, 8, 12)
		setSteps(g, TrackClosedHat, 2, 6, 10, 14)
		setSteps(g, TrackClap, 4, 12)
	case "backbeat":
		setSteps(g, TrackKick, 0, 7, 10)
		setSteps(g, TrackSnare, 4, 12)
		setSteps(g, TrackClosedHat, 0, 2, 4, 6, 8, 10, 12, 14)
		setSteps(g, TrackOpenHat, 14)
	case "shuffle":
		setSteps(g, TrackKick, 0, 8)
		setSteps(g, TrackSnare, 4, 12)
		setSteps(g, TrackClosedHat, 1, 3, 5, 7, 9, 11, 13, 15)
		setSteps(g, TrackCowbell, 0, 6)
	}
	return g
}

func setSteps(g Grid, track Track, steps ...int) {
	row := g[track]
	for _, s := range steps {
		if s >= 0 && s < len(row) {
			row[s] = true
		}
	}
}
