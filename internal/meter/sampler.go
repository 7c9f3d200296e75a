// Package meter turns live time-domain audio into the bounded, scrolling
// amplitude sequence the waveform view renders.
package meter

import (
	"math"
	"time"
)

const (
	// Interval is the polling cadence while recording or playing.
	Interval = 100 * time.Millisecond

	// MaxAmplitude caps the displayed bar height.
	MaxAmplitude = 0.85

	// ActiveFloor is the minimum bar height once any non-silent sample
	// was observed in the block; SilentFloor is the resting height.
	ActiveFloor = 0.08
	SilentFloor = 0.05

	// DefaultCapacity is derived from the visualization width (590
	// points at 2px per bar).
	DefaultCapacity = 590 / 2
)

// Amplitude maps a block RMS to a display amplitude. Speech RMS values are
// small, so the mapping is deliberately non-linear: scale by 4, raise to
// the 0.6 power, cap at 0.85. Changing any of these constants changes the
// visual behaviour of every waveform.
func Amplitude(rms float64, active bool) float64 {
	if !active {
		return SilentFloor
	}
	responsive := math.Pow(rms*4, 0.6)
	if responsive > MaxAmplitude {
		return MaxAmplitude
	}
	if responsive < ActiveFloor {
		return ActiveFloor
	}
	return responsive
}

// Sampler maintains the sliding window of amplitude values. Append-only
// while active; once the window is full the oldest value is evicted per
// append. Not safe for concurrent use; the UI owns it.
type Sampler struct {
	capacity int
	values   []float64
}

// NewSampler returns a sampler with the given window capacity; zero or
// negative selects DefaultCapacity.
func NewSampler(capacity int) *Sampler {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Sampler{
		capacity: capacity,
		values:   make([]float64, 0, capacity),
	}
}

// Sample computes one amplitude from a block of time-domain samples,
// appends it to the window and returns it.
func (s *Sampler) Sample(block []float64) float64 {
	var sumSquares float64
	active := false
	for _, x := range block {
		if x != 0 {
			active = true
		}
		sumSquares += x * x
	}
	rms := 0.0
	if len(block) > 0 {
		rms = math.Sqrt(sumSquares / float64(len(block)))
	}

	amp := Amplitude(rms, active)
	s.append(amp)
	return amp
}

func (s *Sampler) append(v float64) {
	if len(s.values) == s.capacity {
		copy(s.values, s.values[1:])
		s.values[len(s.values)-1] = v
		return
	}
	s.values = append(s.values, v)
}

// Values returns the current window, oldest first. The slice is the
// sampler's own backing store; callers must not retain it across appends.
func (s *Sampler) Values() []float64 {
	return s.values
}

// Clear empties the window; called on the transition back to idle.
func (s *Sampler) Clear() {
	s.values = s.values[:0]
}
