package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"step-machine/sequencer"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	playheadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("219")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Grid cell symbols
const (
	stepEmpty    = '·'
	stepActive   = '●'
	stepPlayhead = '▶'

	cursorEmpty    = '○'
	cursorActive   = '◉'
	cursorPlayhead = '▷'
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var out strings.Builder

	transport := "stopped"
	if m.Sched.IsPlaying() {
		transport = "playing"
	}
	out.WriteString(headerStyle.Render("STEP-MACHINE"))
	out.WriteString(fmt.Sprintf("  %s  %.0f BPM  swing %d%%  out: %s\n\n",
		transport, m.Sched.GetTempo(), m.Sched.GetSwing(), m.backendName))

	for ti, track := range sequencer.Tracks {
		name := fmt.Sprintf("%-10s", track)
		if m.muted[track] {
			name = mutedStyle.Render(name + "M ")
		} else {
			name += "  "
		}
		out.WriteString(name)

		row := m.grid[track]
		for s := 0; s < sequencer.PatternLength; s++ {
			active := s < len(row) && row[s]
			onPlayhead := m.Sched.IsPlaying() && s == m.playhead
			onCursor := ti == m.cursorTrack && s == m.cursorStep

			var char rune
			switch {
			case onCursor && onPlayhead:
				char = cursorPlayhead
			case onCursor && active:
				char = cursorActive
			case onCursor:
				char = cursorEmpty
			case onPlayhead:
				char = stepPlayhead
			case active:
				char = stepActive
			default:
				char = stepEmpty
			}

			cell := string(char)
			switch {
			case onCursor:
				cell = cursorStyle.Render(cell)
			case onPlayhead:
				cell = playheadStyle.Render(cell)
			}
			out.WriteString(cell)
			if s%4 == 3 && s != sequencer.PatternLength-1 {
				out.WriteString("  ")
			} else {
				out.WriteString(" ")
			}
		}
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(helpStyle.Render(
		"space toggle  hjkl move  p play/stop  m mute  +/- tempo  [/] swing  g generate  1-3 preset  c clear  q quit"))
	out.WriteString("\n")

	if m.errText != "" {
		out.WriteString(errStyle.Render("error: " + m.errText))
		out.WriteString("\n")
	}

	return out.String()
}
