package sequencer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"step-machine/debug"
)

// Backend is the sound-producing collaborator: it owns the audio clock and
// turns trigger events into sound. The scheduler never synthesizes anything
// itself; it only hands the backend (track, time) pairs.
type Backend interface {
	// Unlock claims the audio clock. Start calls it synchronously, before
	// anything that can yield, so platforms that gate audio on a direct
	// user interaction see the claim inside the gesture's call stack.
	Unlock()

	// Initialize completes backend startup. Idempotent; called on every
	// Start.
	Initialize(ctx context.Context) error

	// Now returns the backend clock in seconds. Monotonically
	// non-decreasing.
	Now() float64

	// Trigger sounds a track at the given backend-clock time.
	// Fire-and-forget: nothing is owed back and nothing can be retracted.
	Trigger(track Track, at float64)
}

const (
	// lookaheadSec is the horizon within which every step must already be
	// handed to the backend before it sounds.
	lookaheadSec = 0.1

	// tickInterval is the maintenance tick. Much shorter than the
	// lookahead horizon, so several consecutive late ticks still refill
	// the window before it drains.
	tickInterval = 25 * time.Millisecond

	MinTempo = 40
	MaxTempo = 300
	MinSwing = 0
	MaxSwing = 100
)

// DefaultNoticeLead is how far ahead of the audible hit the playhead
// notification fires, compensating for terminal render latency. Tuned by
// ear, no derivation; override per scheduler with SetNoticeLead.
const DefaultNoticeLead = 10 * time.Millisecond

// Scheduler drives pattern playback: it plans every step against the
// backend clock slightly ahead of real time, so the coarse maintenance tick
// decides only when to plan, never when a hit actually sounds.
//
// Two states exist, stopped and playing. There is no pause; Stop always
// rewinds to step 0.
type Scheduler struct {
	backend Backend

	// passMu serializes scheduling passes end to end, dispatch included,
	// so triggers reach the backend in step order even when the ticker
	// and an eager pass race.
	passMu sync.Mutex

	mu           sync.Mutex
	grid         Grid
	muted        map[Track]bool
	tempo        float64
	swing        int
	noticeLead   time.Duration
	playing      bool
	step         int
	nextStepTime float64
	session      uint64 // bumped on every Start and Stop
	tickStop     chan struct{}

	observers map[int]func(step int)
	nextObsID int
}

// New returns a stopped scheduler playing through the given backend.
func New(backend Backend) *Scheduler {
	return &Scheduler{
		backend:    backend,
		tempo:      120,
		noticeLead: DefaultNoticeLead,
		observers:  make(map[int]func(int)),
	}
}

// Start unlocks and initializes the backend, then begins playback from step
// 0. A failed initialization leaves the scheduler stopped. Calling Start
// while already playing is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.playing {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	// The unlock must happen before any suspend point.
	s.backend.Unlock()
	if err := s.backend.Initialize(ctx); err != nil {
		return fmt.Errorf("backend initialize: %w", err)
	}

	s.mu.Lock()
	if s.playing {
		// A concurrent Start won the race while we were initializing.
		s.mu.Unlock()
		return nil
	}
	s.playing = true
	s.session++
	s.step = 0
	s.nextStepTime = s.backend.Now()
	stop := make(chan struct{})
	s.tickStop = stop
	s.mu.Unlock()

	debug.Log("sched", "started at t=%.3f", s.backend.Now())

	// First pass runs eagerly so step 0 sounds without waiting a tick.
	s.pass()
	go s.tickLoop(stop)
	return nil
}

// Stop cancels the maintenance tick, rewinds to step 0, and notifies
// observers of the rewind. Triggers already handed to the backend still
// sound; stopping silences future steps, not in-flight ones. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = false
	s.session++
	s.step = 0
	close(s.tickStop)
	s.tickStop = nil
	fns := s.observerSnapshot()
	s.mu.Unlock()

	debug.Log("sched", "stopped")
	for _, fn := range fns {
		fn(0)
	}
}

func (s *Scheduler) tickLoop(stop chan struct{}) {
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			s.pass()
		}
	}
}

// plannedStep is one step the current pass has committed to.
type plannedStep struct {
	step int
	at   float64
}

// pass schedules every step whose time falls inside the lookahead window.
// The loop always terminates: nextStepTime strictly grows by a positive
// secondsPerStep each iteration (tempo is clamped, so it is never zero) and
// the horizon bounds it above.
//
// Grid, mutes, tempo, and swing are snapshotted up front; mutators take
// effect on the next pass, and a pass never sees a torn mid-pass update.
func (s *Scheduler) pass() {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	grid := s.grid
	muted := s.muted
	tempo := s.tempo
	swing := s.swing
	session := s.session
	spStep := secondsPerStep(tempo)
	horizon := s.backend.Now() + lookaheadSec

	var planned []plannedStep
	for s.nextStepTime < horizon {
		planned = append(planned, plannedStep{step: s.step, at: s.nextStepTime})
		s.step = (s.step + 1) % PatternLength
		s.nextStepTime += spStep
	}
	s.mu.Unlock()

	if len(planned) > 0 {
		debug.LogEvery(40, "sched", "pass planned=%d horizon=%.3f", len(planned), horizon)
	}
	for _, p := range planned {
		s.dispatch(p, grid, muted, tempo, swing, session)
	}
}

// dispatch hands one planned step to the backend and queues its playhead
// notice. A nil grid means nothing to play yet; the playhead still moves.
func (s *Scheduler) dispatch(p plannedStep, grid Grid, muted map[Track]bool, tempo float64, swing int, session uint64) {
	adjusted := p.at + SwingOffset(p.step, tempo, swing)
	for _, track := range Tracks {
		row := grid[track]
		if p.step < len(row) && row[p.step] && !muted[track] {
			s.backend.Trigger(track, adjusted)
		}
	}
	s.queueNotice(p.step, p.at, session)
}

// SetGrid replaces the pattern grid wholesale. No shape validation happens
// here; short or missing rows simply play as silence past their end.
func (s *Scheduler) SetGrid(g Grid) {
	s.mu.Lock()
	s.grid = g
	s.mu.Unlock()
}

// SetMutedTracks replaces the mute set wholesale. Mutes are consulted at
// schedule time, so a change lands within one lookahead window.
func (s *Scheduler) SetMutedTracks(muted map[Track]bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
}

// SetTempo stores the tempo, clamped to [MinTempo, MaxTempo]. Takes effect
// on the next scheduling pass.
func (s *Scheduler) SetTempo(bpm float64) {
	if bpm < MinTempo {
		bpm = MinTempo
	} else if bpm > MaxTempo {
		bpm = MaxTempo
	}
	s.mu.Lock()
	s.tempo = bpm
	s.mu.Unlock()
}

// GetTempo returns the current tempo in BPM.
func (s *Scheduler) GetTempo() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tempo
}

// SetSwing stores the swing percentage, clamped to [MinSwing, MaxSwing].
func (s *Scheduler) SetSwing(percent int) {
	if percent < MinSwing {
		percent = MinSwing
	} else if percent > MaxSwing {
		percent = MaxSwing
	}
	s.mu.Lock()
	s.swing = percent
	s.mu.Unlock()
}

// GetSwing returns the current swing percentage.
func (s *Scheduler) GetSwing() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swing
}

// GetSwingOffset returns the displacement the current tempo and swing give
// a step. Introspection only; dispatch computes its own.
func (s *Scheduler) GetSwingOffset(step int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SwingOffset(step, s.tempo, s.swing)
}

// GetCurrentStep returns the next step the scheduler will plan.
func (s *Scheduler) GetCurrentStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// IsPlaying reports whether playback is running.
func (s *Scheduler) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// SetNoticeLead overrides how far ahead of the audio the playhead notice
// fires.
func (s *Scheduler) SetNoticeLead(d time.Duration) {
	s.mu.Lock()
	s.noticeLead = d
	s.mu.Unlock()
}
