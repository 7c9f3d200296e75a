package processor

import (
	"math"
	"testing"

	"github.com/voicetake/voicetake/internal/audio"
)

// sineBuffer generates a mono sine-wave buffer for testing.
// level is linear amplitude (1.0 = full scale).
func sineBuffer(t *testing.T, freq, level float64, durationSecs float64, sampleRate int) *audio.Buffer {
	t.Helper()

	frames := int(durationSecs * float64(sampleRate))
	buf := audio.New(1, frames, sampleRate)
	for i := 0; i < frames; i++ {
		buf.Channels[0][i] = level * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return buf
}

// rms computes the root-mean-square level of a sample slice.
func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, x := range samples {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// peak returns the largest absolute sample value.
func peak(samples []float64) float64 {
	var p float64
	for _, x := range samples {
		if a := math.Abs(x); a > p {
			p = a
		}
	}
	return p
}

// runStage feeds every sample of in through a single stage processor and
// returns the output.
func runStage(t *testing.T, p stageProc, in []float64) []float64 {
	t.Helper()

	out := make([]float64, len(in))
	for i, x := range in {
		out[i] = p.process(x)
	}
	return out
}

// settle drops the first tenth of a slice so filter and envelope
// start-up transients do not skew steady-state measurements.
func settle(samples []float64) []float64 {
	return samples[len(samples)/10:]
}
