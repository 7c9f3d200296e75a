package processor

import (
	"github.com/voicetake/voicetake/internal/audio"
)

// stageProc is one running DSP stage instance.
type stageProc interface {
	process(x float64) float64
}

// gain is a plain linear multiplier stage.
type gain struct {
	multiplier float64
}

func (g *gain) process(x float64) float64 {
	return x * g.multiplier
}

// Render executes a chain against a buffer and returns a new buffer; the
// input is never modified. Stage processors are constructed fresh per call
// and per channel, so rendering the same chain over the same input twice is
// bit-identical and no filter state survives between calls.
func Render(chain Chain, buf *audio.Buffer) *audio.Buffer {
	out := audio.New(buf.NumChannels(), buf.NumFrames(), buf.SampleRate)

	for c := range buf.Channels {
		procs := instantiate(chain, float64(buf.SampleRate))
		in := buf.Channels[c]
		dst := out.Channels[c]
		for i, x := range in {
			for _, p := range procs {
				x = p.process(x)
			}
			dst[i] = x
		}
	}
	return out
}

// instantiate builds runnable stage instances for one channel.
func instantiate(chain Chain, sampleRate float64) []stageProc {
	procs := make([]stageProc, 0, len(chain.Stages))
	for _, s := range chain.Stages {
		switch s.Kind {
		case StageHighpass:
			procs = append(procs, newHighpass(sampleRate, s.Frequency, s.Q))
		case StageLowpass:
			procs = append(procs, newLowpass(sampleRate, s.Frequency, s.Q))
		case StagePeaking:
			procs = append(procs, newPeaking(sampleRate, s.Frequency, s.Q, s.GainDB))
		case StageLowShelf:
			procs = append(procs, newLowShelf(sampleRate, s.Frequency, s.GainDB))
		case StageHighShelf:
			procs = append(procs, newHighShelf(sampleRate, s.Frequency, s.GainDB))
		case StageNotch:
			procs = append(procs, newNotch(sampleRate, s.Frequency, s.Q))
		case StageCompressor:
			procs = append(procs, newCompressor(sampleRate,
				s.ThresholdDB, s.KneeDB, s.Ratio, s.AttackMs, s.ReleaseMs))
		case StageGain:
			procs = append(procs, &gain{multiplier: s.Multiplier})
		}
	}
	return procs
}
