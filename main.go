package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"step-machine/audio"
	"step-machine/config"
	"step-machine/debug"
	"step-machine/markov"
	"step-machine/midiout"
	"step-machine/sequencer"
	"step-machine/tui"
)

func main() {
	if os.Getenv("STEP_MACHINE_DEBUG") != "" {
		debug.Enable()
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}

	backend, name := pickBackend(cfg)
	sched := sequencer.New(backend)
	if cfg.UI.LastTempo > 0 {
		sched.SetTempo(cfg.UI.LastTempo)
	}
	sched.SetSwing(cfg.UI.LastSwing)

	chain := markov.New(time.Now().UnixNano())
	chain.TrainPresets()

	m := tui.NewModel(sched, chain, sequencer.Preset(cfg.UI.Preset), name)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// pickBackend prefers a MIDI port (configured, else the first available)
// and falls back to the built-in audio voices.
func pickBackend(cfg *config.Config) (sequencer.Backend, string) {
	if !cfg.Output.ForceAudio {
		port := cfg.Output.MIDIPort
		if port == "" {
			if ports := midiout.ListPorts(); len(ports) > 0 {
				port = ports[0]
			}
		}
		if port != "" {
			channel := cfg.Output.Channel
			if channel == 0 {
				channel = 10
			}
			return midiout.New(port, cfg.Output.Kit, channel-1), "midi:" + port
		}
	}
	return audio.New(), "audio"
}
