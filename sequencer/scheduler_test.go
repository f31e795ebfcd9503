package sequencer

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
)

// fakeBackend is a Backend with a hand-advanced clock that records every
// trigger it receives.
type fakeBackend struct {
	mu       sync.Mutex
	now      float64
	unlocks  int
	inits    int
	initErr  error
	triggers []triggerCall
}

type triggerCall struct {
	track Track
	at    float64
}

func (b *fakeBackend) Unlock() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unlocks++
}

func (b *fakeBackend) Initialize(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unlocks == 0 {
		return errors.New("initialize before unlock")
	}
	b.inits++
	return b.initErr
}

func (b *fakeBackend) Now() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now
}

func (b *fakeBackend) Trigger(track Track, at float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.triggers = append(b.triggers, triggerCall{track: track, at: at})
}

func (b *fakeBackend) advance(dt float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now += dt
}

func (b *fakeBackend) calls() []triggerCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]triggerCall(nil), b.triggers...)
}

func TestStartUnlocksBeforeInitialize(t *testing.T) {
	b := &fakeBackend{}
	s := New(b)
	defer s.Stop()

	// fakeBackend.Initialize rejects if Unlock has not happened yet.
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if b.unlocks != 1 || b.inits != 1 {
		t.Fatalf("unlocks=%d inits=%d, want 1 and 1", b.unlocks, b.inits)
	}
}

func TestStartInitFailureStaysStopped(t *testing.T) {
	b := &fakeBackend{initErr: errors.New("no device")}
	s := New(b)

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("Start should propagate initialization failure")
	}
	if s.IsPlaying() {
		t.Fatal("scheduler should remain stopped after failed init")
	}
	// A later Start with a healthy backend must work.
	b.mu.Lock()
	b.initErr = nil
	b.mu.Unlock()
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("retry Start: %v", err)
	}
	s.Stop()
}

func TestStartWhilePlayingIsNoOp(t *testing.T) {
	b := &fakeBackend{}
	s := New(b)
	defer s.Stop()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.mu.Lock()
	tick := s.tickStop
	s.mu.Unlock()

	// Advance a few steps so a reset would be visible.
	for i := 0; i < 3; i++ {
		b.advance(0.125)
		s.pass()
	}
	step := s.GetCurrentStep()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if got := s.GetCurrentStep(); got != step {
		t.Fatalf("second Start reset step: got %d, want %d", got, step)
	}
	s.mu.Lock()
	same := s.tickStop == tick
	s.mu.Unlock()
	if !same {
		t.Fatal("second Start installed a second maintenance tick")
	}
}

func TestStopIdempotent(t *testing.T) {
	b := &fakeBackend{}
	s := New(b)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
	s.Stop() // must not panic or change anything
	if s.IsPlaying() {
		t.Fatal("still playing after Stop")
	}
	if s.GetCurrentStep() != 0 {
		t.Fatalf("step not reset: %d", s.GetCurrentStep())
	}
}

func TestStopNotifiesReset(t *testing.T) {
	b := &fakeBackend{}
	s := New(b)

	var mu sync.Mutex
	last := -1
	s.Subscribe(func(step int) {
		mu.Lock()
		last = step
		mu.Unlock()
	})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()

	mu.Lock()
	defer mu.Unlock()
	if last != 0 {
		t.Fatalf("observer saw %d on stop, want 0", last)
	}
}

func TestStepCycling(t *testing.T) {
	b := &fakeBackend{}
	s := New(b)
	defer s.Stop()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// The eager pass plans step 0, so the planner sits at step 1.
	if got := s.GetCurrentStep(); got != 1 {
		t.Fatalf("after eager pass: step %d, want 1", got)
	}
	// Each sixteenth the clock advances lets exactly one more step in.
	for n := 2; n < 40; n++ {
		b.advance(0.125)
		s.pass()
		if got, want := s.GetCurrentStep(), n%PatternLength; got != want {
			t.Fatalf("after %d steps: step %d, want %d", n, got, want)
		}
	}
}

func TestNoDuplicateNoSkip(t *testing.T) {
	b := &fakeBackend{}
	s := New(b)
	defer s.Stop()

	// Every step active on one track turns the trigger stream into the
	// exact step progression.
	g := NewGrid()
	for i := range g[TrackKick] {
		g[TrackKick][i] = true
	}
	s.SetGrid(g)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 40; i++ {
		b.advance(0.125)
		s.pass()
	}

	calls := b.calls()
	if len(calls) < 33 {
		t.Fatalf("only %d triggers over two loops", len(calls))
	}
	for i, c := range calls {
		want := float64(i) * 0.125
		if math.Abs(c.at-want) > 1e-9 {
			t.Fatalf("trigger %d at %.6f, want %.6f", i, c.at, want)
		}
	}
}

func TestEndToEndKickPattern(t *testing.T) {
	b := &fakeBackend{}
	s := New(b)
	defer s.Stop()

	g := NewGrid()
	g[TrackKick][0] = true
	g[TrackKick][8] = true
	s.SetGrid(g)
	s.SetTempo(120)
	s.SetSwing(0)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Two full loops: 32 sixteenths at 0.125 s each.
	for i := 0; i < 33; i++ {
		b.advance(0.125)
		s.pass()
	}

	calls := b.calls()
	if len(calls) < 4 {
		t.Fatalf("want at least two hits per loop, got %d total", len(calls))
	}
	for _, c := range calls {
		if c.track != TrackKick {
			t.Fatalf("unexpected track %q", c.track)
		}
	}
	// Steps 0 and 8 are eight sixteenths apart: 1.0 s at 120 BPM.
	for i := 1; i < len(calls); i++ {
		if d := calls[i].at - calls[i-1].at; math.Abs(d-1.0) > 1e-9 {
			t.Fatalf("hit spacing %.6f, want 1.0", d)
		}
	}
}

func TestMutedTrackIsSilent(t *testing.T) {
	b := &fakeBackend{}
	s := New(b)
	defer s.Stop()

	g := NewGrid()
	g[TrackKick][0] = true
	g[TrackSnare][0] = true
	s.SetGrid(g)
	s.SetMutedTracks(map[Track]bool{TrackSnare: true})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, c := range b.calls() {
		if c.track == TrackSnare {
			t.Fatal("muted track dispatched")
		}
	}
	if len(b.calls()) == 0 {
		t.Fatal("unmuted track did not dispatch")
	}
}

func TestMissingGridStillAdvances(t *testing.T) {
	b := &fakeBackend{}
	s := New(b)
	defer s.Stop()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 5; i++ {
		b.advance(0.125)
		s.pass()
	}
	if len(b.calls()) != 0 {
		t.Fatal("no grid configured but triggers dispatched")
	}
	if s.GetCurrentStep() == 0 {
		t.Fatal("playhead did not advance without a grid")
	}
}

func TestTempoClamp(t *testing.T) {
	s := New(&fakeBackend{})
	for _, c := range []struct{ in, want float64 }{
		{10, 40}, {39.9, 40}, {40, 40}, {120, 120}, {300, 300}, {301, 300}, {9999, 300},
	} {
		s.SetTempo(c.in)
		if got := s.GetTempo(); got != c.want {
			t.Fatalf("SetTempo(%v): got %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSwingClamp(t *testing.T) {
	s := New(&fakeBackend{})
	for _, c := range []struct{ in, want int }{
		{-5, 0}, {0, 0}, {50, 50}, {100, 100}, {150, 100},
	} {
		s.SetSwing(c.in)
		if got := s.GetSwing(); got != c.want {
			t.Fatalf("SetSwing(%d): got %d, want %d", c.in, got, c.want)
		}
	}
}
