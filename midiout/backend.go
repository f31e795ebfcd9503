// Package midiout plays trigger events through a hardware or virtual MIDI
// output port.
package midiout

import (
	"context"
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"step-machine/debug"
	"step-machine/sequencer"
)

// gateTime is how long a triggered note stays on before NoteOff.
const gateTime = 100 * time.Millisecond

// Backend sends each trigger as a timed NoteOn/NoteOff pair on one MIDI
// channel, translating tracks to notes through a drum kit map. It
// implements sequencer.Backend.
type Backend struct {
	portName string
	channel  uint8
	kit      Kit
	epoch    time.Time

	mu   sync.Mutex
	send func(gomidi.Message) error
}

// New returns a backend for the named output port. The clock epoch is
// armed immediately so Now is valid before Initialize.
func New(portName, kitName string, channel uint8) *Backend {
	return &Backend{
		portName: portName,
		channel:  channel,
		kit:      GetKit(kitName),
		epoch:    time.Now(),
	}
}

// ListPorts returns the names of all MIDI output ports.
func ListPorts() []string {
	outs := gomidi.GetOutPorts()
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names
}

// Unlock is a no-op: a hardware MIDI port has no gesture-gated clock to
// claim.
func (b *Backend) Unlock() {}

// Initialize opens the output port. Idempotent; safe to call on every
// start.
func (b *Backend) Initialize(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.send != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, port := range gomidi.GetOutPorts() {
		if port.String() == b.portName {
			send, err := gomidi.SendTo(port)
			if err != nil {
				return fmt.Errorf("failed to open port %q: %w", b.portName, err)
			}
			b.send = send
			debug.Log("midiout", "opened port %q", b.portName)
			return nil
		}
	}
	return fmt.Errorf("MIDI port %q not found", b.portName)
}

// Now returns seconds since the backend was created.
func (b *Backend) Now() float64 {
	return time.Since(b.epoch).Seconds()
}

// Trigger schedules a NoteOn at the target time and a NoteOff one gate
// later. Fire-and-forget; a send error is logged and dropped, since a
// missed drum hit is not actionable mid-loop.
func (b *Backend) Trigger(track sequencer.Track, at float64) {
	note, ok := b.kit.Notes[track]
	if !ok {
		return
	}
	delay := time.Duration((at - b.Now()) * float64(time.Second))
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, func() {
		b.mu.Lock()
		send := b.send
		b.mu.Unlock()
		if send == nil {
			return
		}
		if err := send(gomidi.NoteOn(b.channel, note, 100)); err != nil {
			debug.Log("midiout", "note on failed: %v", err)
			return
		}
		time.AfterFunc(gateTime, func() {
			send(gomidi.NoteOff(b.channel, note))
		})
	})
}

// Close releases the MIDI driver.
func (b *Backend) Close() {
	b.mu.Lock()
	b.send = nil
	b.mu.Unlock()
	gomidi.CloseDriver()
}
