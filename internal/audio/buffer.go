// Package audio provides the in-memory sample buffer shared by every
// processing stage, plus decoding of compressed audio files into it.
package audio

// Buffer holds decoded multi-channel float audio: one contiguous slice per
// channel, all channels the same length, at a single sample rate.
//
// A Buffer is owned by whichever stage currently holds it. Transforms never
// mutate a Buffer in place; they allocate and return a new one.
type Buffer struct {
	// Channels holds one sample slice per channel. All slices share the
	// same length.
	Channels [][]float64

	// SampleRate is the sample rate in Hz.
	SampleRate int
}

// New allocates a silent buffer with the given channel count, frame count
// and sample rate.
func New(channels, frames, sampleRate int) *Buffer {
	chans := make([][]float64, channels)
	for i := range chans {
		chans[i] = make([]float64, frames)
	}
	return &Buffer{Channels: chans, SampleRate: sampleRate}
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	return len(b.Channels)
}

// NumFrames returns the per-channel sample count.
func (b *Buffer) NumFrames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate == 0 {
		return 0
	}
	return float64(b.NumFrames()) / float64(b.SampleRate)
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		Channels:   make([][]float64, len(b.Channels)),
		SampleRate: b.SampleRate,
	}
	for i, ch := range b.Channels {
		out.Channels[i] = make([]float64, len(ch))
		copy(out.Channels[i], ch)
	}
	return out
}

// FromInterleaved builds a buffer from interleaved float samples, channel
// order preserved. Trailing samples that do not fill a whole frame are
// dropped.
func FromInterleaved(samples []float64, channels, sampleRate int) *Buffer {
	if channels < 1 {
		channels = 1
	}
	frames := len(samples) / channels
	out := New(channels, frames, sampleRate)
	for f := 0; f < frames; f++ {
		for c := 0; c < channels; c++ {
			out.Channels[c][f] = samples[f*channels+c]
		}
	}
	return out
}

// Interleaved returns the buffer's samples interleaved frame by frame,
// channels in order.
func (b *Buffer) Interleaved() []float64 {
	frames := b.NumFrames()
	channels := b.NumChannels()
	out := make([]float64, frames*channels)
	for f := 0; f < frames; f++ {
		for c := 0; c < channels; c++ {
			out[f*channels+c] = b.Channels[c][f]
		}
	}
	return out
}
