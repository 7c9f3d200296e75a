package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/voicetake/voicetake/internal/meter"
	"github.com/voicetake/voicetake/internal/playback"
	"github.com/voicetake/voicetake/internal/record"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5F5FD7"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	waveBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5F5FD7")).
			Padding(0, 1)

	recordingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A40000"))
	playingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00AA00"))
	pausedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// waveGlyphs maps amplitude to bar height, shortest first.
var waveGlyphs = []rune("▁▂▃▄▅▆▇█")

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return "Initializing...\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Voicetake 🎙"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render("record · enhance · save"))
	b.WriteString("\n\n")

	b.WriteString(m.renderStateLine())
	b.WriteString("\n")
	b.WriteString(m.renderWaveform())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")
	b.WriteString(m.renderHelp())
	b.WriteString("\n")

	return b.String()
}

// renderStateLine shows what is running and its clock.
func (m Model) renderStateLine() string {
	switch m.machine.State() {
	case record.StateCountdown:
		return recordingStyle.Render(fmt.Sprintf("● Starting in %d...", m.machine.CountdownRemaining()))
	case record.StateRecording:
		return recordingStyle.Render(fmt.Sprintf("● REC %s", clock(m.machine.Elapsed())))
	case record.StatePaused:
		return pausedStyle.Render(fmt.Sprintf("‖ REC (paused) %s", clock(m.machine.Elapsed())))
	}

	switch m.player.State() {
	case playback.StatePlaying:
		return playingStyle.Render(fmt.Sprintf("▶ %s / %s", clock(m.player.Position()), clock(m.player.Duration())))
	case playback.StatePaused:
		return pausedStyle.Render(fmt.Sprintf("‖ %s / %s", clock(m.player.Position()), clock(m.player.Duration())))
	case playback.StateEnded:
		return subtitleStyle.Render(fmt.Sprintf("■ %s", clock(m.player.Duration())))
	}

	if rec := m.editor.Current(); rec != nil {
		return subtitleStyle.Render(fmt.Sprintf("■ take ready, %s", clock(rec.Duration)))
	}
	return subtitleStyle.Render("idle")
}

// renderWaveform draws the amplitude window as a single row of bar glyphs.
func (m Model) renderWaveform() string {
	width := m.Width - 6
	if width < 10 {
		width = 10
	}
	if width > meter.DefaultCapacity {
		width = meter.DefaultCapacity
	}

	values := m.sampler.Values()
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var bar strings.Builder
	for i := 0; i < width-len(values); i++ {
		bar.WriteRune(' ')
	}
	for _, v := range values {
		idx := int(v / meter.MaxAmplitude * float64(len(waveGlyphs)))
		if idx >= len(waveGlyphs) {
			idx = len(waveGlyphs) - 1
		}
		if idx < 0 {
			idx = 0
		}
		bar.WriteRune(waveGlyphs[idx])
	}
	return waveBoxStyle.Width(width + 2).Render(bar.String())
}

// renderStatus shows the status line, cut marks, settings and any error.
func (m Model) renderStatus() string {
	var b strings.Builder
	b.WriteString(m.status)

	settings := fmt.Sprintf("enhance %s · volume %s", onOff(m.enhance), m.level)
	if m.humNotch {
		settings += fmt.Sprintf(" · notch %dHz", m.region.Hz)
	}
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render(settings))

	if m.cutStart >= 0 || m.cutEnd >= 0 {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("cut: %s → %s", mark(m.cutStart), mark(m.cutEnd))))
	}
	if m.saved != "" {
		b.WriteString("\n")
		b.WriteString(playingStyle.Render("✓ " + m.saved))
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("✗ " + m.err.Error()))
	}
	return b.String()
}

func (m Model) renderHelp() string {
	keys := []string{
		"r record", "space pause", "s stop", "p play",
		"[/] mark", "x cut", "u undo",
		"e enhance", "v volume", "n notch", "w save", "q quit",
	}
	return helpStyle.Render(strings.Join(keys, " · "))
}

// clock renders seconds as M:SS.t for the live readouts.
func clock(secs float64) string {
	if secs < 0 {
		secs = 0
	}
	mins := int(secs) / 60
	rem := secs - float64(mins*60)
	return fmt.Sprintf("%d:%04.1f", mins, rem)
}

func mark(t float64) string {
	if t < 0 {
		return "?"
	}
	return fmt.Sprintf("%.2fs", t)
}
