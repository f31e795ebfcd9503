package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"step-machine/markov"
	"step-machine/sequencer"
)

// Model is the bubbletea model for the whole machine: a 8x16 grid editor,
// transport state, and the playhead fed back from the scheduler.
type Model struct {
	Sched *sequencer.Scheduler
	Chain *markov.Chain

	grid        sequencer.Grid
	muted       map[sequencer.Track]bool
	cursorTrack int
	cursorStep  int
	playhead    int
	steps       chan int
	backendName string
	errText     string
	quitting    bool
}

// StepMsg carries a playhead position from the scheduler's step observer.
type StepMsg int

type startErrMsg struct{ err error }

type startedMsg struct{}

// NewModel wires a model to the scheduler and hands the scheduler its
// initial grid.
func NewModel(sched *sequencer.Scheduler, chain *markov.Chain, grid sequencer.Grid, backendName string) Model {
	m := Model{
		Sched:       sched,
		Chain:       chain,
		grid:        grid,
		muted:       map[sequencer.Track]bool{},
		steps:       make(chan int, 4),
		backendName: backendName,
	}
	sched.SetGrid(grid)
	steps := m.steps
	sched.Subscribe(func(step int) {
		select {
		case steps <- step:
		default:
		}
	})
	return m
}

// ListenForSteps forwards scheduler playhead notifications into the
// bubbletea loop.
func ListenForSteps(steps chan int) tea.Cmd {
	return func() tea.Msg {
		return StepMsg(<-steps)
	}
}

func startPlayback(s *sequencer.Scheduler) tea.Cmd {
	return func() tea.Msg {
		if err := s.Start(context.Background()); err != nil {
			return startErrMsg{err: err}
		}
		return startedMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForSteps(m.steps)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case StepMsg:
		m.playhead = int(msg)
		return m, ListenForSteps(m.steps)

	case startErrMsg:
		m.errText = msg.err.Error()

	case startedMsg:
		m.errText = ""
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.Sched.Stop()
		return m, tea.Quit

	case "p":
		if m.Sched.IsPlaying() {
			m.Sched.Stop()
			m.playhead = 0
			return m, nil
		}
		return m, startPlayback(m.Sched)

	case "h", "left":
		if m.cursorStep > 0 {
			m.cursorStep--
		}
	case "l", "right":
		if m.cursorStep < sequencer.PatternLength-1 {
			m.cursorStep++
		}
	case "k", "up":
		if m.cursorTrack > 0 {
			m.cursorTrack--
		}
	case "j", "down":
		if m.cursorTrack < len(sequencer.Tracks)-1 {
			m.cursorTrack++
		}

	case " ", "enter", "x":
		track := sequencer.Tracks[m.cursorTrack]
		m.grid = m.grid.Toggle(track, m.cursorStep)
		m.Sched.SetGrid(m.grid)

	case "m":
		track := sequencer.Tracks[m.cursorTrack]
		muted := make(map[sequencer.Track]bool, len(m.muted))
		for t, v := range m.muted {
			muted[t] = v
		}
		muted[track] = !muted[track]
		m.muted = muted
		m.Sched.SetMutedTracks(muted)

	case "+", "=":
		m.Sched.SetTempo(m.Sched.GetTempo() + 5)
	case "-", "_":
		m.Sched.SetTempo(m.Sched.GetTempo() - 5)

	case "[":
		m.Sched.SetSwing(m.Sched.GetSwing() - 5)
	case "]":
		m.Sched.SetSwing(m.Sched.GetSwing() + 5)

	case "g":
		if m.Chain != nil {
			m.grid = m.Chain.Generate()
			m.Sched.SetGrid(m.grid)
		}

	case "c":
		m.grid = sequencer.NewGrid()
		m.Sched.SetGrid(m.grid)

	case "1", "2", "3":
		names := sequencer.PresetNames()
		idx := int(msg.String()[0] - '1')
		if idx < len(names) {
			m.grid = sequencer.Preset(names[idx])
			m.Sched.SetGrid(m.grid)
		}
	}
	return m, nil
}
