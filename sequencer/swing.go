package sequencer

// secondsPerStep is the duration of one sixteenth note at the given tempo.
func secondsPerStep(bpm float64) float64 {
	return (60.0 / bpm) / 4.0
}

// SwingOffset returns the timing displacement for a step. On-beat steps
// (even index) are never moved. Off-beat steps are delayed by up to half a
// step at swing 100, so a swung hit can never land on the next downbeat.
func SwingOffset(step int, bpm float64, swing int) float64 {
	if step%2 == 0 {
		return 0
	}
	return (float64(swing) / 100.0) * secondsPerStep(bpm) * 0.5
}
