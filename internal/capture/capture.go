// Package capture acquires the microphone through miniaudio (malgo) and
// delivers raw float32 PCM chunks to the recorder.
package capture

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
)

// Spec is the negotiated capture format.
type Spec struct {
	SampleRate int
	Channels   int
}

// DefaultSpec is mono 44.1 kHz, the format the rest of the pipeline
// assumes unless configured otherwise.
var DefaultSpec = Spec{SampleRate: 44100, Channels: 1}

// ChunkFunc receives one batch of interleaved float32 samples. It is called
// from the audio backend's thread and must not block.
type ChunkFunc func(samples []float32)

// Device is the capture half of the platform audio layer. A Device is
// singly-owned by the active recording session and must be closed before
// another session can open one.
type Device interface {
	// Start begins delivering chunks to onChunk.
	Start(onChunk ChunkFunc) error
	// Pause halts chunk delivery without releasing the device.
	Pause() error
	// Resume restarts delivery after Pause.
	Resume() error
	// Close stops delivery and releases the device and its context.
	Close() error
	// Spec reports the negotiated format.
	Spec() Spec
}

// OpenFunc acquires a capture device. The recorder takes one so tests can
// substitute a fake device.
type OpenFunc func(Spec) (Device, error)

// Open acquires the default system microphone via malgo.
func Open(spec Spec) (Device, error) {
	if spec.SampleRate == 0 {
		spec = DefaultSpec
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("capture: init context: %w", err)
	}
	return &malgoDevice{ctx: ctx, spec: spec}, nil
}

type malgoDevice struct {
	ctx  *malgo.AllocatedContext
	spec Spec

	mu     sync.Mutex
	device *malgo.Device
}

func (d *malgoDevice) Spec() Spec {
	return d.spec
}

func (d *malgoDevice) Start(onChunk ChunkFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device != nil {
		return fmt.Errorf("capture: device already started")
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = uint32(d.spec.Channels)
	cfg.SampleRate = uint32(d.spec.SampleRate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frameCount uint32) {
			onChunk(decodeF32(input, int(frameCount)*d.spec.Channels))
		},
	}

	device, err := malgo.InitDevice(d.ctx.Context, cfg, callbacks)
	if err != nil {
		return fmt.Errorf("capture: init device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("capture: start device: %w", err)
	}

	d.device = device
	return nil
}

func (d *malgoDevice) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device == nil {
		return fmt.Errorf("capture: device not started")
	}
	if err := d.device.Stop(); err != nil {
		return fmt.Errorf("capture: pause device: %w", err)
	}
	return nil
}

func (d *malgoDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device == nil {
		return fmt.Errorf("capture: device not started")
	}
	if err := d.device.Start(); err != nil {
		return fmt.Errorf("capture: resume device: %w", err)
	}
	return nil
}

func (d *malgoDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.device != nil {
		d.device.Uninit()
		d.device = nil
	}
	if d.ctx != nil {
		_ = d.ctx.Uninit()
		d.ctx.Free()
		d.ctx = nil
	}
	return nil
}

// decodeF32 converts malgo's little-endian float32 byte stream into
// samples. The slice is freshly allocated per chunk; the backend reuses its
// own buffer between callbacks.
func decodeF32(data []byte, samples int) []float32 {
	if samples > len(data)/4 {
		samples = len(data) / 4
	}
	out := make([]float32, samples)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return out
}
