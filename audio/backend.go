// Package audio plays trigger events through the system audio device, for
// machines without a MIDI output. Each voice is a short pre-rendered
// percussive hit.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"step-machine/sequencer"
)

const (
	sampleRate   = 44100
	channelCount = 2
	bitDepth     = 0 // 32-bit float (oto.FormatFloat32LE)
)

// Backend implements sequencer.Backend on top of an oto playback context.
// Unlock creates the context (the claim some platforms require inside a
// user interaction), Initialize waits for the device to come up.
type Backend struct {
	hits  map[sequencer.Track][]byte
	epoch time.Time

	mu      sync.Mutex
	ctx     *oto.Context
	ready   chan struct{}
	openErr error
}

// New returns a backend with all voice samples pre-rendered. No audio
// device is touched until Unlock.
func New() *Backend {
	return &Backend{
		hits:  renderHits(),
		epoch: time.Now(),
	}
}

// Unlock opens the audio device context. Called synchronously from
// Start's call stack; any error is held for Initialize to report.
func (b *Backend) Unlock() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx != nil || b.openErr != nil {
		return
	}
	ctx, ready, err := oto.NewContext(sampleRate, channelCount, bitDepth)
	if err != nil {
		b.openErr = err
		return
	}
	b.ctx = ctx
	b.ready = ready
}

// Initialize waits until the audio device is ready to accept players.
func (b *Backend) Initialize(ctx context.Context) error {
	b.mu.Lock()
	c, ready, err := b.ctx, b.ready, b.openErr
	b.mu.Unlock()
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	if c == nil {
		return errors.New("audio context was never unlocked")
	}
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Now returns seconds since the backend was created.
func (b *Backend) Now() float64 {
	return time.Since(b.epoch).Seconds()
}

// Trigger plays the track's hit at the target time.
func (b *Backend) Trigger(track sequencer.Track, at float64) {
	data := b.hits[track]
	b.mu.Lock()
	ctx := b.ctx
	b.mu.Unlock()
	if ctx == nil || len(data) == 0 {
		return
	}
	delay := time.Duration((at - b.Now()) * float64(time.Second))
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, func() {
		player := ctx.NewPlayer(&hitReader{data: data})
		player.Play()
		go func() {
			for player.IsPlaying() {
				time.Sleep(10 * time.Millisecond)
			}
			player.Close()
		}()
	})
}

type hitReader struct {
	data []byte
	pos  int
}

func (r *hitReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
