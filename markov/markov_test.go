package markov

import (
	"testing"

	"step-machine/sequencer"
)

func TestUntrainedChainGeneratesSilence(t *testing.T) {
	g := New(1).Generate()
	for _, track := range sequencer.Tracks {
		for i, on := range g[track] {
			if on {
				t.Fatalf("untrained chain put a hit on %q step %d", track, i)
			}
		}
	}
}

func TestGeneratedGridShape(t *testing.T) {
	c := New(1)
	c.TrainPresets()
	g := c.Generate()
	if len(g) != len(sequencer.Tracks) {
		t.Fatalf("generated %d rows, want %d", len(g), len(sequencer.Tracks))
	}
	for _, track := range sequencer.Tracks {
		if len(g[track]) != sequencer.PatternLength {
			t.Fatalf("track %q row has %d steps", track, len(g[track]))
		}
	}
}

func TestSameSeedSamePattern(t *testing.T) {
	a := New(42)
	a.TrainPresets()
	b := New(42)
	b.TrainPresets()
	ga, gb := a.Generate(), b.Generate()
	for _, track := range sequencer.Tracks {
		for i := range ga[track] {
			if ga[track][i] != gb[track][i] {
				t.Fatalf("seeded generation diverged at %q step %d", track, i)
			}
		}
	}
}

func TestDeterministicTrainingIsReflected(t *testing.T) {
	// A track that always hits must always generate hits; one that never
	// hits must stay silent.
	c := New(7)
	g := sequencer.NewGrid()
	for i := range g[sequencer.TrackKick] {
		g[sequencer.TrackKick][i] = true
	}
	c.Train(g)

	out := c.Generate()
	for i, on := range out[sequencer.TrackKick] {
		if !on {
			t.Fatalf("all-hit training produced a rest at step %d", i)
		}
	}
	for i, on := range out[sequencer.TrackSnare] {
		if on {
			t.Fatalf("all-rest training produced a hit at step %d", i)
		}
	}
}
