package audio

import (
	"math"

	"step-machine/sequencer"
)

// Voice rendering. Each hit is a stereo float32 LE buffer a few tenths of a
// second long, generated once at startup.

func renderHits() map[sequencer.Track][]byte {
	return map[sequencer.Track][]byte{
		sequencer.TrackKick:      genKick(),
		sequencer.TrackSnare:     genSnare(),
		sequencer.TrackClosedHat: genHat(0.06, 24),
		sequencer.TrackOpenHat:   genHat(0.30, 8),
		sequencer.TrackClap:      genClap(),
		sequencer.TrackLowTom:    genTom(110),
		sequencer.TrackHighTom:   genTom(180),
		sequencer.TrackCowbell:   genCowbell(),
	}
}

func makeBuf(n int) []byte { return make([]byte, n*8) }

// putStereoF32 writes a [-1,1] sample as float32 LE to both stereo channels at frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	buf[i*8] = byte(v)
	buf[i*8+1] = byte(v >> 8)
	buf[i*8+2] = byte(v >> 16)
	buf[i*8+3] = byte(v >> 24)
	buf[i*8+4] = byte(v)
	buf[i*8+5] = byte(v >> 8)
	buf[i*8+6] = byte(v >> 16)
	buf[i*8+7] = byte(v >> 24)
}

// lcg is a cheap deterministic noise source in [-1,1].
func lcg(seed *uint64) float64 {
	*seed = *seed*6364136223846793005 + 1442695040888963407
	return float64(int64(*seed>>11))/float64(1<<52) - 1
}

// genKick: sine sweep 150→45 Hz with a fast exponential decay.
func genKick() []byte {
	n := int(0.28 * sampleRate)
	buf := makeBuf(n)
	phase := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		freq := 150 * math.Pow(45.0/150.0, p*1.4)
		phase += 2 * math.Pi * freq / sampleRate
		s := math.Sin(phase) * math.Exp(-p*6) * 0.9
		putStereoF32(buf, i, s)
	}
	return buf
}

// genSnare: 190 Hz body plus a bright noise burst.
func genSnare() []byte {
	n := int(0.18 * sampleRate)
	buf := makeBuf(n)
	seed := uint64(7919)
	prev := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		p := float64(i) / float64(n)
		body := math.Sin(2*math.Pi*190*t) * math.Exp(-p*14) * 0.5
		white := lcg(&seed)
		hp := white - prev // crude highpass brightens the rattle
		prev = white
		s := body + hp*math.Exp(-p*9)*0.45
		putStereoF32(buf, i, s)
	}
	return buf
}

// genHat: highpassed noise burst; decay sets closed vs open.
func genHat(dur, decay float64) []byte {
	n := int(dur * sampleRate)
	buf := makeBuf(n)
	seed := uint64(104729)
	prev := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		white := lcg(&seed)
		hp := white - prev
		prev = white
		putStereoF32(buf, i, hp*math.Exp(-p*decay)*0.4)
	}
	return buf
}

// genClap: three quick noise bursts then a tail, the classic 909 shape.
func genClap() []byte {
	n := int(0.22 * sampleRate)
	buf := makeBuf(n)
	seed := uint64(1299709)
	lp := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		p := float64(i) / float64(n)
		lp = lp*0.6 + lcg(&seed)*0.4
		env := math.Exp(-p * 10)
		// Retrigger bumps at 0, 11 and 22 ms.
		for _, off := range []float64{0, 0.011, 0.022} {
			if t >= off && t < off+0.004 {
				env += 0.8
			}
		}
		putStereoF32(buf, i, lp*env*0.4)
	}
	return buf
}

// genTom: pitched sine with a slight downward bend.
func genTom(freq float64) []byte {
	n := int(0.25 * sampleRate)
	buf := makeBuf(n)
	phase := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		phase += 2 * math.Pi * freq * (1 - 0.2*p) / sampleRate
		putStereoF32(buf, i, math.Sin(phase)*math.Exp(-p*7)*0.7)
	}
	return buf
}

// genCowbell: two detuned square-ish partials, 540 and 800 Hz.
func genCowbell() []byte {
	n := int(0.15 * sampleRate)
	buf := makeBuf(n)
	for i := 0; i < n; i++ {
		t := float64(i) / sampleRate
		p := float64(i) / float64(n)
		a := math.Tanh(math.Sin(2*math.Pi*540*t) * 3)
		b := math.Tanh(math.Sin(2*math.Pi*800*t) * 3)
		putStereoF32(buf, i, (a+b)*0.25*math.Exp(-p*9))
	}
	return buf
}
