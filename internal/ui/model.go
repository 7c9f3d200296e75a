// Package ui provides the Bubbletea terminal user interface for voicetake
package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/voicetake/voicetake/internal/capture"
	"github.com/voicetake/voicetake/internal/config"
	"github.com/voicetake/voicetake/internal/editor"
	"github.com/voicetake/voicetake/internal/export"
	"github.com/voicetake/voicetake/internal/logging"
	"github.com/voicetake/voicetake/internal/mains"
	"github.com/voicetake/voicetake/internal/meter"
	"github.com/voicetake/voicetake/internal/playback"
	"github.com/voicetake/voicetake/internal/processor"
	"github.com/voicetake/voicetake/internal/record"
)

// Model is the Bubbletea model for the recorder UI
type Model struct {
	machine *record.Machine
	player  *playback.Player
	editor  *editor.Editor
	sampler *meter.Sampler
	cfg     *config.Config
	region  mains.Region

	// Events channel for callbacks arriving off the Bubbletea loop
	Events chan tea.Msg

	// Enhancement settings applied at playback and export time
	enhance  bool
	level    processor.VolumeLevel
	humNotch bool

	// Cut selection, marked against the playback position
	cutStart float64
	cutEnd   float64
	cuts     int

	status  string
	saved   string
	loading bool
	err     error

	Width  int
	Height int
}

// NewModel creates the recorder UI wired to the given capture backend
func NewModel(cfg *config.Config, open capture.OpenFunc) Model {
	spec := capture.Spec{SampleRate: cfg.Audio.SampleRate, Channels: cfg.Audio.Channels}
	region := mains.Detect()

	player := playback.NewPlayer()
	player.SetEnhance(cfg.Enhance.Auto)
	player.SetVolume(cfg.Volume())
	player.SetHumNotch(cfg.Enhance.HumNotch, region.Hz)

	m := Model{
		machine:  record.NewMachine(open, spec),
		player:   player,
		editor:   editor.New(),
		sampler:  meter.NewSampler(meter.DefaultCapacity),
		cfg:      cfg,
		region:   region,
		Events:   make(chan tea.Msg, 16),
		enhance:  cfg.Enhance.Auto,
		level:    cfg.Volume(),
		humNotch: cfg.Enhance.HumNotch,
		cutStart: -1,
		cutEnd:   -1,
		status:   "Press r to record",
	}
	m.player.SetOnEnded(func() {
		m.Events <- playbackEndedMsg{}
	})
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.Events)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case countdownTickMsg:
		remaining, err := m.machine.CountdownTick()
		if err != nil {
			m.err = err
			m.status = "Device unavailable"
			return m, nil
		}
		if remaining > 0 {
			return m, countdownTick()
		}
		m.status = "Recording"
		return m, meterTick()

	case meterTickMsg:
		return m.handleMeterTick()

	case processedMsg:
		if errors.Is(msg.err, playback.ErrStale) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.status = "Processing failed"
			return m, nil
		}
		if err := m.player.Play(); err != nil {
			m.err = err
			return m, nil
		}
		m.status = "Playing"
		return m, meterTick()

	case playbackEndedMsg:
		m.status = "Playback finished"
		return m, waitForEvent(m.Events)

	case savedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "Save failed"
			return m, nil
		}
		m.saved = msg.path
		if msg.fellBack {
			m.status = "Saved (MP3 unavailable, kept WAV)"
		} else {
			m.status = "Saved"
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.machine.Reset()
		m.player.Reset()
		return m, tea.Quit

	case "r":
		if m.machine.State() == record.StateStopped {
			m.machine.Reset()
		}
		m.haltPlayback()
		if err := m.machine.Start(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.saved = ""
		m.sampler.Clear()
		m.status = "Get ready..."
		return m, countdownTick()

	case " ":
		return m.handleSpace()

	case "s":
		if st := m.machine.State(); st != record.StateRecording && st != record.StatePaused {
			return m, nil
		}
		rec, err := m.machine.Stop()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.editor.Load(rec)
		m.cuts = 0
		m.cutStart, m.cutEnd = -1, -1
		m.status = "Stopped. p to play, w to save"
		return m, nil

	case "p":
		return m.startPlayback()

	case "e":
		m.enhance = !m.enhance
		m.player.SetEnhance(m.enhance)
		m.haltPlayback()
		m.status = fmt.Sprintf("Enhancement %s", onOff(m.enhance))
		return m, nil

	case "v":
		m.level = nextLevel(m.level)
		m.player.SetVolume(m.level)
		m.haltPlayback()
		m.status = fmt.Sprintf("Volume level: %s", m.level)
		return m, nil

	case "n":
		m.humNotch = !m.humNotch
		m.player.SetHumNotch(m.humNotch, m.region.Hz)
		m.haltPlayback()
		m.status = fmt.Sprintf("Hum notch (%d Hz) %s", m.region.Hz, onOff(m.humNotch))
		return m, nil

	case "[":
		if m.editor.Current() == nil {
			return m, nil
		}
		m.cutStart = m.player.Position()
		m.status = fmt.Sprintf("Cut start %.2fs", m.cutStart)
		return m, nil

	case "]":
		if m.editor.Current() == nil {
			return m, nil
		}
		m.cutEnd = m.player.Position()
		m.status = fmt.Sprintf("Cut end %.2fs", m.cutEnd)
		return m, nil

	case "x":
		return m.applyCut()

	case "u":
		if !m.editor.CanUndo() {
			m.status = "Nothing to undo"
			return m, nil
		}
		if _, err := m.editor.Undo(); err != nil {
			m.err = err
			return m, nil
		}
		if m.cuts > 0 {
			m.cuts--
		}
		m.haltPlayback()
		m.player.Load(m.editor.Current())
		m.status = "Cut undone"
		return m, nil

	case "w":
		return m.save()
	}

	return m, nil
}

// handleSpace pauses or resumes whichever of recording and playback is live.
func (m Model) handleSpace() (tea.Model, tea.Cmd) {
	switch m.machine.State() {
	case record.StateRecording:
		if err := m.machine.Pause(); err != nil {
			m.err = err
			return m, nil
		}
		m.status = "Recording paused"
		return m, nil
	case record.StatePaused:
		if err := m.machine.Resume(); err != nil {
			m.err = err
			return m, nil
		}
		m.status = "Recording"
		return m, meterTick()
	}

	switch m.player.State() {
	case playback.StatePlaying:
		if err := m.player.Pause(); err != nil {
			m.err = err
		} else {
			m.status = "Playback paused"
		}
		return m, nil
	case playback.StatePaused:
		if err := m.player.Play(); err != nil {
			m.err = err
			return m, nil
		}
		m.status = "Playing"
		return m, meterTick()
	}
	return m, nil
}

func (m Model) startPlayback() (tea.Model, tea.Cmd) {
	rec := m.editor.Current()
	if rec == nil {
		m.status = "Nothing recorded yet"
		return m, nil
	}
	switch m.player.State() {
	case playback.StatePlaying:
		return m, nil
	case playback.StatePaused, playback.StateEnded:
		if err := m.player.Play(); err == nil {
			m.status = "Playing"
			return m, meterTick()
		}
	}

	token := m.player.Load(rec)
	m.loading = true
	m.status = "Processing..."
	return m, processCmd(m.player, token)
}

func (m Model) applyCut() (tea.Model, tea.Cmd) {
	if m.cutStart < 0 || m.cutEnd < 0 {
		m.status = "Mark a region with [ and ] first"
		return m, nil
	}
	if _, err := m.editor.Cut(m.cutStart, m.cutEnd); err != nil {
		m.err = err
		m.status = "Cut rejected"
		return m, nil
	}
	m.cuts++
	m.cutStart, m.cutEnd = -1, -1
	m.err = nil
	m.haltPlayback()
	m.player.Load(m.editor.Current())
	m.status = "Cut applied"
	return m, nil
}

// haltPlayback stops the player and clears the waveform window, the visual
// reset that goes with returning to idle.
func (m Model) haltPlayback() {
	m.player.Stop()
	m.sampler.Clear()
}

func (m Model) save() (tea.Model, tea.Cmd) {
	rec := m.editor.Current()
	if rec == nil {
		m.status = "Nothing to save"
		return m, nil
	}

	format, err := export.ParseFormat(m.cfg.Output.Format)
	if err != nil {
		m.err = err
		return m, nil
	}
	opts := export.Options{
		Format:      format,
		Enhance:     m.enhance,
		Level:       m.level,
		HumNotch:    m.humNotch,
		MainsHz:     m.region.Hz,
		BitrateKbps: m.cfg.Output.BitrateKbps,
	}
	dir := m.cfg.Output.Directory
	cuts := m.cuts
	region := m.region
	report := m.cfg.Output.Report
	sampleRate := m.cfg.Audio.SampleRate
	channels := m.cfg.Audio.Channels
	m.status = "Saving..."
	return m, func() tea.Msg {
		res, err := export.Render(rec, opts)
		if err != nil {
			return savedMsg{err: err}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return savedMsg{err: err}
		}
		name := fmt.Sprintf("voicetake-%s.%s", time.Now().Format("2006-01-02-150405"), res.Ext)
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, res.Data, 0o644); err != nil {
			return savedMsg{err: err}
		}
		if report {
			_ = logging.WriteReport(logging.ReportData{
				OutputPath:   path,
				SavedAt:      time.Now(),
				DurationSecs: rec.Duration,
				SampleRate:   sampleRate,
				Channels:     channels,
				Cuts:         cuts,
				Enhanced:     opts.Enhance,
				VolumeLevel:  opts.Level,
				HumNotch:     opts.HumNotch,
				MainsHz:      region.Hz,
				MainsRegion:  region.Country,
			})
		}
		return savedMsg{path: path, fellBack: res.FellBack}
	}
}

// handleMeterTick advances the waveform and keeps the tick loop running only
// while something is producing audio.
func (m Model) handleMeterTick() (tea.Model, tea.Cmd) {
	switch m.machine.State() {
	case record.StateRecording:
		m.sampler.Sample(m.machine.MeterBlock(m.cfg.Audio.SampleRate / 10))
		return m, meterTick()
	case record.StatePaused:
		return m, nil
	}

	if m.player.State() == playback.StatePlaying {
		m.sampler.Sample(m.player.MeterBlock())
		return m, meterTick()
	}
	return m, nil
}

// Commands

func countdownTick() tea.Cmd {
	return tea.Tick(record.CountdownInterval, func(time.Time) tea.Msg {
		return countdownTickMsg{}
	})
}

func meterTick() tea.Cmd {
	return tea.Tick(meter.Interval, func(time.Time) tea.Msg {
		return meterTickMsg{}
	})
}

func processCmd(p *playback.Player, token int) tea.Cmd {
	return func() tea.Msg {
		return processedMsg{token: token, err: p.Process(token)}
	}
}

// waitForEvent relays callback-originated messages into the update loop.
func waitForEvent(events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func nextLevel(l processor.VolumeLevel) processor.VolumeLevel {
	switch l {
	case processor.VolumeLow:
		return processor.VolumeStandard
	case processor.VolumeStandard:
		return processor.VolumeHigh
	default:
		return processor.VolumeLow
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
