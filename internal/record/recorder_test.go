package record

import (
	"errors"
	"testing"
	"time"

	"github.com/voicetake/voicetake/internal/audio"
	"github.com/voicetake/voicetake/internal/capture"
)

// fakeDevice is an in-memory capture device the tests drive by hand.
type fakeDevice struct {
	spec    capture.Spec
	onChunk capture.ChunkFunc
	paused  bool
	closed  bool

	startErr error
	pauseErr error
}

func (d *fakeDevice) Start(onChunk capture.ChunkFunc) error {
	if d.startErr != nil {
		return d.startErr
	}
	d.onChunk = onChunk
	return nil
}

func (d *fakeDevice) Pause() error {
	if d.pauseErr != nil {
		return d.pauseErr
	}
	d.paused = true
	return nil
}

func (d *fakeDevice) Resume() error {
	d.paused = false
	return nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

func (d *fakeDevice) Spec() capture.Spec {
	return d.spec
}

// feed pushes one chunk of samples through the device callback.
func (d *fakeDevice) feed(samples []float32) {
	if d.onChunk != nil && !d.paused {
		d.onChunk(samples)
	}
}

// testClock is an injectable clock the tests advance manually.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// newTestMachine wires a machine to a fake device and a manual clock, and
// runs the countdown down to active recording.
func newTestMachine(t *testing.T, dev *fakeDevice) (*Machine, *testClock) {
	t.Helper()

	if dev.spec.SampleRate == 0 {
		dev.spec = capture.Spec{SampleRate: 8000, Channels: 1}
	}
	open := func(capture.Spec) (capture.Device, error) { return dev, nil }
	m := NewMachine(open, dev.spec)
	clock := newTestClock()
	m.now = func() time.Time { return clock.now }

	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < CountdownSteps; i++ {
		if _, err := m.CountdownTick(); err != nil {
			t.Fatal(err)
		}
	}
	if m.State() != StateRecording {
		t.Fatalf("state after countdown = %s, want %s", m.State(), StateRecording)
	}
	return m, clock
}

func TestStartOnlyFromIdle(t *testing.T) {
	m, _ := newTestMachine(t, &fakeDevice{})
	if err := m.Start(); err == nil {
		t.Error("second start while recording must be rejected")
	}
}

func TestCountdownTicksDown(t *testing.T) {
	dev := &fakeDevice{spec: capture.Spec{SampleRate: 8000, Channels: 1}}
	open := func(capture.Spec) (capture.Device, error) { return dev, nil }
	m := NewMachine(open, dev.spec)

	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	if got := m.CountdownRemaining(); got != CountdownSteps {
		t.Fatalf("remaining after start = %d, want %d", got, CountdownSteps)
	}

	// The device is only acquired on the final tick.
	for want := CountdownSteps - 1; want >= 1; want-- {
		remaining, err := m.CountdownTick()
		if err != nil {
			t.Fatal(err)
		}
		if remaining != want {
			t.Errorf("remaining = %d, want %d", remaining, want)
		}
		if dev.onChunk != nil {
			t.Error("device started before countdown finished")
		}
	}

	if _, err := m.CountdownTick(); err != nil {
		t.Fatal(err)
	}
	if m.State() != StateRecording {
		t.Errorf("state = %s, want %s", m.State(), StateRecording)
	}
	if dev.onChunk == nil {
		t.Error("device not started after final tick")
	}
}

func TestDeviceFailureAbortsToIdle(t *testing.T) {
	boom := errors.New("no microphone")
	open := func(capture.Spec) (capture.Device, error) { return nil, boom }
	m := NewMachine(open, capture.DefaultSpec)

	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	var err error
	for i := 0; i < CountdownSteps; i++ {
		_, err = m.CountdownTick()
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected device error surfaced, got %v", err)
	}
	if m.State() != StateIdle {
		t.Errorf("state after device failure = %s, want %s", m.State(), StateIdle)
	}

	// The failure is not retried behind the caller's back; a fresh Start
	// is required and must work.
	if err := m.Start(); err != nil {
		t.Errorf("restart after failure rejected: %v", err)
	}
}

func TestStartFailureClosesDevice(t *testing.T) {
	dev := &fakeDevice{startErr: errors.New("backend refused")}
	open := func(capture.Spec) (capture.Device, error) { return dev, nil }
	m := NewMachine(open, capture.DefaultSpec)

	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	var err error
	for i := 0; i < CountdownSteps; i++ {
		_, err = m.CountdownTick()
	}
	if err == nil {
		t.Fatal("expected start failure to surface")
	}
	if !dev.closed {
		t.Error("device leaked after failed start")
	}
	if m.State() != StateIdle {
		t.Errorf("state = %s, want %s", m.State(), StateIdle)
	}
}

func TestElapsedExcludesPauses(t *testing.T) {
	m, clock := newTestMachine(t, &fakeDevice{})

	clock.advance(2 * time.Second)
	if got := m.Elapsed(); got != 2.0 {
		t.Errorf("elapsed = %v, want 2.0", got)
	}

	if err := m.Pause(); err != nil {
		t.Fatal(err)
	}
	clock.advance(30 * time.Second)
	if got := m.Elapsed(); got != 2.0 {
		t.Errorf("elapsed while paused = %v, want 2.0", got)
	}

	if err := m.Resume(); err != nil {
		t.Fatal(err)
	}
	clock.advance(1 * time.Second)
	if got := m.Elapsed(); got != 3.0 {
		t.Errorf("elapsed after resume = %v, want 3.0", got)
	}
}

func TestPauseOnlyWhileRecording(t *testing.T) {
	m := NewMachine(func(capture.Spec) (capture.Device, error) {
		return &fakeDevice{}, nil
	}, capture.DefaultSpec)

	if err := m.Pause(); err == nil {
		t.Error("pause from idle must be rejected")
	}
	if err := m.Resume(); err == nil {
		t.Error("resume from idle must be rejected")
	}
}

func TestStopProducesWAVRecording(t *testing.T) {
	dev := &fakeDevice{spec: capture.Spec{SampleRate: 8000, Channels: 1}}
	m, clock := newTestMachine(t, dev)

	// One second of quiet captured audio in two chunks.
	chunk := make([]float32, 4000)
	for i := range chunk {
		chunk[i] = -0.25
	}
	dev.feed(chunk)
	dev.feed(chunk)
	clock.advance(time.Second)

	rec, err := m.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if m.State() != StateStopped {
		t.Errorf("state = %s, want %s", m.State(), StateStopped)
	}
	if !dev.closed {
		t.Error("device not released on stop")
	}
	if rec.Duration != 1.0 {
		t.Errorf("duration = %v, want 1.0", rec.Duration)
	}
	if rec.MIMEType != audio.FormatWAV.MIMEType() {
		t.Errorf("MIME type = %s, want WAV", rec.MIMEType)
	}

	buf, err := audio.Decode(rec.Data)
	if err != nil {
		t.Fatalf("stop blob does not decode: %v", err)
	}
	if buf.NumFrames() != 8000 {
		t.Errorf("frames = %d, want 8000", buf.NumFrames())
	}
	if buf.SampleRate != 8000 {
		t.Errorf("sample rate = %d, want 8000", buf.SampleRate)
	}
}

func TestStopWhilePausedUsesPauseTime(t *testing.T) {
	m, clock := newTestMachine(t, &fakeDevice{})

	clock.advance(4 * time.Second)
	if err := m.Pause(); err != nil {
		t.Fatal(err)
	}
	clock.advance(10 * time.Second)

	rec, err := m.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if rec.Duration != 4.0 {
		t.Errorf("duration = %v, want active time 4.0", rec.Duration)
	}
}

func TestResetFromAnyState(t *testing.T) {
	dev := &fakeDevice{}
	m, _ := newTestMachine(t, dev)

	m.Reset()
	if m.State() != StateIdle {
		t.Errorf("state after reset = %s, want %s", m.State(), StateIdle)
	}
	if !dev.closed {
		t.Error("reset must release the device")
	}
	if m.Result() != nil {
		t.Error("reset must drop any result")
	}
}

func TestMeterBlockReturnsRecentSamples(t *testing.T) {
	dev := &fakeDevice{spec: capture.Spec{SampleRate: 8000, Channels: 1}}
	m, _ := newTestMachine(t, dev)

	dev.feed([]float32{0.1, 0.2})
	dev.feed([]float32{0.3, 0.4})

	got := m.MeterBlock(3)
	want := []float64{float64(float32(0.2)), float64(float32(0.3)), float64(float32(0.4))}
	if len(got) != len(want) {
		t.Fatalf("block length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("block[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
