// Package markov generates drum patterns from a chain trained on existing
// grids. The model is order-1 per track, conditioned on the position within
// the beat so downbeat and off-beat habits are learned separately.
package markov

import (
	"math/rand"

	"step-machine/sequencer"
)

type state struct {
	phase int  // step index mod 4
	prev  bool // previous step had a hit
}

// Chain accumulates hit/rest transition counts per track and samples new
// patterns from them. Alongside the full (phase, prev) states it keeps
// phase-only marginals as a fallback for states the training data never
// visited.
type Chain struct {
	counts map[sequencer.Track]map[state][2]int
	phases map[sequencer.Track]map[int][2]int
	rng    *rand.Rand
}

// New returns an untrained chain. The seed fixes the generation sequence;
// an untrained chain generates silence.
func New(seed int64) *Chain {
	counts := make(map[sequencer.Track]map[state][2]int, len(sequencer.Tracks))
	phases := make(map[sequencer.Track]map[int][2]int, len(sequencer.Tracks))
	for _, track := range sequencer.Tracks {
		counts[track] = make(map[state][2]int)
		phases[track] = make(map[int][2]int)
	}
	return &Chain{
		counts: counts,
		phases: phases,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Train folds one grid into the transition counts. Call it once per seed
// pattern; later training shifts the generated style toward the new
// material.
func (c *Chain) Train(g sequencer.Grid) {
	for _, track := range sequencer.Tracks {
		row := g[track]
		n := len(row)
		if n == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			st := state{phase: i % 4, prev: row[(i-1+n)%n]}
			outcome := 0
			if row[i] {
				outcome = 1
			}
			c.counts[track][st] = incremented(c.counts[track][st], outcome)
			c.phases[track][st.phase] = incremented(c.phases[track][st.phase], outcome)
		}
	}
}

func incremented(pair [2]int, outcome int) [2]int {
	pair[outcome]++
	return pair
}

// Generate samples a fresh pattern. Each track walks the chain from a
// silent step 16 steps forward, drawing every step from the learned
// hit frequency for its (phase, previous-step) state.
func (c *Chain) Generate() sequencer.Grid {
	g := sequencer.NewGrid()
	for _, track := range sequencer.Tracks {
		row := g[track]
		prev := false
		for i := range row {
			st := state{phase: i % 4, prev: prev}
			pair := c.counts[track][st]
			if pair[0]+pair[1] == 0 {
				pair = c.phases[track][st.phase]
			}
			total := pair[0] + pair[1]
			hit := false
			if total > 0 {
				hit = c.rng.Float64() < float64(pair[1])/float64(total)
			}
			row[i] = hit
			prev = hit
		}
	}
	return g
}

// TrainPresets folds every built-in pattern into the chain, giving an
// otherwise untrained machine something to riff on.
func (c *Chain) TrainPresets() {
	for _, name := range sequencer.PresetNames() {
		c.Train(sequencer.Preset(name))
	}
}
