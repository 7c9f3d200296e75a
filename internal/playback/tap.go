package playback

import (
	"sync"

	beep "github.com/gopxl/beep/v2"
)

// Tap sits between the source streamer and the speaker, copying a mono mix
// of everything that passes through into a ring buffer. It is the live
// analysis node the waveform meter polls during playback. A Tap is torn
// down on stop and rebuilt on the next play.
type Tap struct {
	s beep.Streamer

	mu   sync.Mutex
	ring []float64
	pos  int
}

// NewTap wraps s with a ring of size frames.
func NewTap(s beep.Streamer, size int) *Tap {
	return &Tap{s: s, ring: make([]float64, size)}
}

// Stream passes audio through while capturing the mono mix.
func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	t.mu.Lock()
	for i := 0; i < n; i++ {
		t.ring[t.pos] = (samples[i][0] + samples[i][1]) / 2
		t.pos = (t.pos + 1) % len(t.ring)
	}
	t.mu.Unlock()
	return n, ok
}

// Err returns the wrapped streamer's error.
func (t *Tap) Err() error {
	return t.s.Err()
}

// Last returns the most recent n captured samples in chronological order.
func (t *Tap) Last(n int) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n > len(t.ring) {
		n = len(t.ring)
	}
	out := make([]float64, n)
	start := (t.pos - n + len(t.ring)) % len(t.ring)
	for i := 0; i < n; i++ {
		out[i] = t.ring[(start+i)%len(t.ring)]
	}
	return out
}
