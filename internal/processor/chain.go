// Package processor builds and renders the fixed voice-enhancement chain.
package processor

import (
	"math"
)

// StageKind identifies the DSP primitive a stage runs.
type StageKind string

// Stage kinds understood by the renderer.
const (
	StageHighpass   StageKind = "highpass"
	StageLowpass    StageKind = "lowpass"
	StagePeaking    StageKind = "peaking"
	StageLowShelf   StageKind = "lowshelf"
	StageHighShelf  StageKind = "highshelf"
	StageNotch      StageKind = "notch"
	StageCompressor StageKind = "compressor"
	StageGain       StageKind = "gain"
)

// VolumeLevel selects the makeup gain applied near the end of the chain.
// It is the only user-tunable parameter of the enhancement pipeline.
type VolumeLevel string

const (
	VolumeLow      VolumeLevel = "low"
	VolumeStandard VolumeLevel = "standard"
	VolumeHigh     VolumeLevel = "high"
)

// MakeupGain returns the linear makeup multiplier for the level.
// Standard is exactly 2x Low; High is 1.5x Standard.
func (v VolumeLevel) MakeupGain() float64 {
	switch v {
	case VolumeLow:
		return 1.5
	case VolumeHigh:
		return 4.5
	default:
		return 3.0
	}
}

// Stage is one descriptor in an enhancement chain. Only the fields relevant
// to its Kind are meaningful.
type Stage struct {
	Kind StageKind
	Name string // human-readable label for reports

	// Frequency-domain filter parameters
	Frequency float64 // Hz
	Q         float64
	GainDB    float64

	// Dynamics compressor parameters
	ThresholdDB float64
	KneeDB      float64
	Ratio       float64
	AttackMs    float64
	ReleaseMs   float64

	// Gain stage parameter
	Multiplier float64 // linear
}

// Chain is an ordered sequence of stage descriptors, applied strictly in
// order with no branching. A chain is immutable once built and is rebuilt
// for every render so no filter state leaks between calls.
type Chain struct {
	Stages []Stage
}

// Options tunes chain construction beyond the volume level.
type Options struct {
	// HumNotch prepends a mains-hum notch composite ahead of the
	// high-pass stage. Off by default.
	HumNotch bool

	// MainsHz is the hum fundamental (50 or 60). Ignored unless HumNotch
	// is set; 0 falls back to 50.
	MainsHz int
}

// humHarmonics is how many mains harmonics the hum composite notches out.
const humHarmonics = 4

// BuildChain constructs the fixed enhancement pipeline for a volume level.
//
// The ordering is deliberate: rumble and hiss removal precede compression so
// the compressor never pumps on noise, the EQ boosts precede the makeup gain
// and limiter so post-boost peaks are caught, and the limiter is last so no
// upstream gain choice can push output past the safety ceiling.
func BuildChain(level VolumeLevel) Chain {
	return BuildChainWithOptions(level, Options{})
}

// BuildChainWithOptions is BuildChain plus the optional hum-notch composite.
func BuildChainWithOptions(level VolumeLevel, opts Options) Chain {
	stages := make([]Stage, 0, 16)

	if opts.HumNotch {
		mains := opts.MainsHz
		if mains != 50 && mains != 60 {
			mains = 50
		}
		// Narrow notches at the fundamental and its harmonics, the same
		// composite shape as a hardware hum eliminator.
		for h := 1; h <= humHarmonics; h++ {
			stages = append(stages, Stage{
				Kind:      StageNotch,
				Name:      "mains hum notch",
				Frequency: float64(mains * h),
				Q:         35,
			})
		}
	}

	stages = append(stages,
		// 1. Rumble removal
		Stage{Kind: StageHighpass, Name: "rumble high-pass", Frequency: 85, Q: 0.7},
		// 2. Hiss removal
		Stage{Kind: StageLowpass, Name: "hiss low-pass", Frequency: 8000, Q: 0.7},
		// 3. Sibilance taming
		Stage{Kind: StagePeaking, Name: "de-esser", Frequency: 6500, Q: 2, GainDB: -2},
		// 4. Voice compressor
		Stage{Kind: StageCompressor, Name: "voice compressor",
			ThresholdDB: -18, KneeDB: 8, Ratio: 6, AttackMs: 3, ReleaseMs: 100},
		// 5-7. Presence EQ
		Stage{Kind: StagePeaking, Name: "body", Frequency: 800, Q: 1, GainDB: 2},
		Stage{Kind: StagePeaking, Name: "clarity", Frequency: 2800, Q: 1.2, GainDB: 5},
		Stage{Kind: StagePeaking, Name: "presence", Frequency: 4500, Q: 1.5, GainDB: 3},
		// 8. Shelving warmth and air
		Stage{Kind: StageLowShelf, Name: "warmth shelf", Frequency: 300, GainDB: 2.5},
		Stage{Kind: StageHighShelf, Name: "air shelf", Frequency: 6000, GainDB: 2.5},
		// 9. Gentle noise gate, makeup gain, safety limiter
		Stage{Kind: StageCompressor, Name: "noise gate",
			ThresholdDB: -32, KneeDB: 6, Ratio: 3, AttackMs: 10, ReleaseMs: 200},
		Stage{Kind: StageGain, Name: "makeup gain", Multiplier: level.MakeupGain()},
		Stage{Kind: StageCompressor, Name: "safety limiter",
			ThresholdDB: -0.5, KneeDB: 0, Ratio: 20, AttackMs: 1, ReleaseMs: 30},
	)

	return Chain{Stages: stages}
}

// LimiterCeiling is the linear magnitude the final limiter holds output
// under at steady state.
func LimiterCeiling() float64 {
	return DbToLinear(-0.5)
}

// DbToLinear converts a decibel value to linear amplitude.
func DbToLinear(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// LinearToDb converts linear amplitude to decibels.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return -120.0 // practical floor for audio
	}
	return 20.0 * math.Log10(linear)
}
