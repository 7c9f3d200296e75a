// Package record owns the capture lifecycle: the recording state machine,
// chunk accumulation, and finalisation into an encoded Recording.
package record

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/voicetake/voicetake/internal/audio"
	"github.com/voicetake/voicetake/internal/capture"
	"github.com/voicetake/voicetake/internal/encode"
)

// State is the recorder's lifecycle state.
type State string

const (
	StateIdle      State = "IDLE"
	StateCountdown State = "COUNTDOWN"
	StateRecording State = "RECORDING"
	StatePaused    State = "PAUSED"
	StateStopped   State = "STOPPED"
)

// CountdownSteps is the number of one-second countdown ticks shown before
// capture actually begins. Purely a UX affordance.
const CountdownSteps = 3

// CountdownInterval is the spacing between countdown ticks.
const CountdownInterval = time.Second

// ElapsedInterval is how often the live duration display should resample
// Elapsed while recording. The machine itself is pull-based; this is the
// cadence the UI drives it at.
const ElapsedInterval = 100 * time.Millisecond

// Machine is the recording state machine. All transitions are serialized
// under one mutex: a second start while one is resolving is rejected, never
// interleaved, so two capture sessions can never coexist.
type Machine struct {
	open capture.OpenFunc
	spec capture.Spec
	now  func() time.Time

	mu        sync.Mutex
	state     State
	remaining int
	device    capture.Device
	startTime time.Time
	pausedAt  time.Time
	result    *audio.Recording

	chunksMu sync.Mutex
	chunks   [][]float32
}

// NewMachine builds an idle recorder that acquires devices through open.
func NewMachine(open capture.OpenFunc, spec capture.Spec) *Machine {
	if spec.SampleRate == 0 {
		spec = capture.DefaultSpec
	}
	return &Machine{open: open, spec: spec, now: time.Now, state: StateIdle}
}

// State returns the current lifecycle state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CountdownRemaining returns how many countdown ticks are left.
func (m *Machine) CountdownRemaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remaining
}

// Result returns the finalised recording after Stop, or nil.
func (m *Machine) Result() *audio.Recording {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.result
}

// Start begins the countdown. Only valid from idle.
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIdle {
		return fmt.Errorf("record: can only start from idle, current: %s", m.state)
	}
	m.state = StateCountdown
	m.remaining = CountdownSteps
	slog.Info("recording countdown started", "steps", CountdownSteps)
	return nil
}

// CountdownTick consumes one countdown step. When the countdown reaches
// zero it acquires the capture device and transitions to recording. A
// device acquisition failure aborts the transition back to idle and is
// returned to the caller; it is never retried silently.
func (m *Machine) CountdownTick() (remaining int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateCountdown {
		return 0, fmt.Errorf("record: countdown tick outside countdown, current: %s", m.state)
	}

	m.remaining--
	if m.remaining > 0 {
		return m.remaining, nil
	}

	device, err := m.open(m.spec)
	if err != nil {
		m.state = StateIdle
		return 0, fmt.Errorf("record: acquire device: %w", err)
	}
	if err := device.Start(m.appendChunk); err != nil {
		_ = device.Close()
		m.state = StateIdle
		return 0, fmt.Errorf("record: start capture: %w", err)
	}

	m.device = device
	m.spec = device.Spec()
	m.startTime = m.now()
	m.state = StateRecording
	slog.Info("recording started", "sample_rate", m.spec.SampleRate, "channels", m.spec.Channels)
	return 0, nil
}

// appendChunk accumulates one capture chunk. Runs on the backend's thread.
func (m *Machine) appendChunk(samples []float32) {
	m.chunksMu.Lock()
	m.chunks = append(m.chunks, samples)
	m.chunksMu.Unlock()
}

// MeterBlock returns up to n of the most recently captured samples,
// mono-mixed, for the live waveform meter. Empty outside active capture.
func (m *Machine) MeterBlock(n int) []float64 {
	m.chunksMu.Lock()
	defer m.chunksMu.Unlock()

	channels := m.spec.Channels
	if channels < 1 {
		channels = 1
	}
	out := make([]float64, 0, n)
	for i := len(m.chunks) - 1; i >= 0 && len(out) < n; i-- {
		chunk := m.chunks[i]
		for f := len(chunk)/channels - 1; f >= 0 && len(out) < n; f-- {
			sum := 0.0
			for c := 0; c < channels; c++ {
				sum += float64(chunk[f*channels+c])
			}
			out = append(out, sum/float64(channels))
		}
	}
	// Walked newest-first; restore chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Pause halts capture, keeping the device. Only valid while recording.
func (m *Machine) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateRecording {
		return fmt.Errorf("record: can only pause while recording, current: %s", m.state)
	}
	if err := m.device.Pause(); err != nil {
		return err
	}
	m.pausedAt = m.now()
	m.state = StatePaused
	return nil
}

// Resume restarts capture after a pause. The elapsed paused duration is
// folded into the start offset so Elapsed keeps reflecting active recording
// time only.
func (m *Machine) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StatePaused {
		return fmt.Errorf("record: can only resume while paused, current: %s", m.state)
	}
	if err := m.device.Resume(); err != nil {
		return err
	}
	m.startTime = m.startTime.Add(m.now().Sub(m.pausedAt))
	m.state = StateRecording
	return nil
}

// Elapsed returns the active recording time in seconds. Paused stretches do
// not count. Computed from timestamps on demand rather than accumulated in
// timer callbacks.
func (m *Machine) Elapsed() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateRecording:
		return m.now().Sub(m.startTime).Seconds()
	case StatePaused:
		return m.pausedAt.Sub(m.startTime).Seconds()
	case StateStopped:
		if m.result != nil {
			return m.result.Duration
		}
	}
	return 0
}

// Stop finalises the session: concatenates the accumulated chunks into one
// WAV blob, computes the active duration, and releases the device.
func (m *Machine) Stop() (*audio.Recording, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateRecording && m.state != StatePaused {
		return nil, fmt.Errorf("record: can only stop while recording or paused, current: %s", m.state)
	}

	end := m.now()
	if m.state == StatePaused {
		end = m.pausedAt
	}
	duration := end.Sub(m.startTime).Seconds()

	m.releaseDevice()

	m.chunksMu.Lock()
	buf := concatChunks(m.chunks, m.spec)
	m.chunks = nil
	m.chunksMu.Unlock()

	m.result = audio.NewRecording(encode.EncodeWAV(buf), audio.FormatWAV.MIMEType(), duration)
	m.state = StateStopped
	slog.Info("recording stopped", "duration_secs", duration, "bytes", len(m.result.Data))
	return m.result, nil
}

// Reset performs the full teardown back to idle: blob, duration and any
// held device are all dropped.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseDevice()
	m.chunksMu.Lock()
	m.chunks = nil
	m.chunksMu.Unlock()
	m.result = nil
	m.remaining = 0
	m.state = StateIdle
}

func (m *Machine) releaseDevice() {
	if m.device != nil {
		_ = m.device.Close()
		m.device = nil
	}
}

// concatChunks folds the ordered capture chunks into one sample buffer.
func concatChunks(chunks [][]float32, spec capture.Spec) *audio.Buffer {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	interleaved := make([]float64, 0, total)
	for _, c := range chunks {
		for _, s := range c {
			interleaved = append(interleaved, float64(s))
		}
	}
	return audio.FromInterleaved(interleaved, spec.Channels, spec.SampleRate)
}
