package processor

import (
	"math"
	"testing"
)

func TestBuildChainStageOrder(t *testing.T) {
	chain := BuildChain(VolumeStandard)

	wantKinds := []StageKind{
		StageHighpass,
		StageLowpass,
		StagePeaking,
		StageCompressor,
		StagePeaking,
		StagePeaking,
		StagePeaking,
		StageLowShelf,
		StageHighShelf,
		StageCompressor,
		StageGain,
		StageCompressor,
	}

	if len(chain.Stages) != len(wantKinds) {
		t.Fatalf("expected %d stages, got %d", len(wantKinds), len(chain.Stages))
	}
	for i, kind := range wantKinds {
		if chain.Stages[i].Kind != kind {
			t.Errorf("stage %d: expected %s, got %s", i, kind, chain.Stages[i].Kind)
		}
	}

	// The safety limiter must be the final stage regardless of options.
	last := chain.Stages[len(chain.Stages)-1]
	if last.ThresholdDB != -0.5 || last.Ratio != 20 {
		t.Errorf("final stage is not the safety limiter: %+v", last)
	}
}

func TestBuildChainIsDeclarative(t *testing.T) {
	// Two builds for the same level must describe the identical pipeline.
	a := BuildChain(VolumeHigh)
	b := BuildChain(VolumeHigh)

	if len(a.Stages) != len(b.Stages) {
		t.Fatalf("stage count differs: %d vs %d", len(a.Stages), len(b.Stages))
	}
	for i := range a.Stages {
		if a.Stages[i] != b.Stages[i] {
			t.Errorf("stage %d differs: %+v vs %+v", i, a.Stages[i], b.Stages[i])
		}
	}
}

func TestMakeupGainPerLevel(t *testing.T) {
	tests := []struct {
		level VolumeLevel
		want  float64
	}{
		{VolumeLow, 1.5},
		{VolumeStandard, 3.0},
		{VolumeHigh, 4.5},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			if got := tt.level.MakeupGain(); got != tt.want {
				t.Errorf("MakeupGain(%s) = %v, want %v", tt.level, got, tt.want)
			}
			chain := BuildChain(tt.level)
			var gainStage *Stage
			for i := range chain.Stages {
				if chain.Stages[i].Kind == StageGain {
					gainStage = &chain.Stages[i]
				}
			}
			if gainStage == nil {
				t.Fatal("chain has no gain stage")
			}
			if gainStage.Multiplier != tt.want {
				t.Errorf("gain stage multiplier = %v, want %v", gainStage.Multiplier, tt.want)
			}
		})
	}
}

func TestHumNotchOption(t *testing.T) {
	plain := BuildChain(VolumeStandard)

	notched := BuildChainWithOptions(VolumeStandard, Options{HumNotch: true, MainsHz: 60})
	if got, want := len(notched.Stages), len(plain.Stages)+humHarmonics; got != want {
		t.Fatalf("expected %d stages with hum notch, got %d", want, got)
	}
	for h := 0; h < humHarmonics; h++ {
		s := notched.Stages[h]
		if s.Kind != StageNotch {
			t.Fatalf("stage %d: expected notch, got %s", h, s.Kind)
		}
		if want := float64(60 * (h + 1)); s.Frequency != want {
			t.Errorf("notch %d frequency = %v, want %v", h, s.Frequency, want)
		}
	}

	// An unknown mains frequency falls back to 50 Hz.
	fallback := BuildChainWithOptions(VolumeStandard, Options{HumNotch: true, MainsHz: 42})
	if fallback.Stages[0].Frequency != 50 {
		t.Errorf("fallback fundamental = %v, want 50", fallback.Stages[0].Frequency)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	buf := sineBuffer(t, 440, 0.5, 1.0, 44100)
	chain := BuildChain(VolumeStandard)

	first := Render(chain, buf)
	second := Render(chain, buf)

	for i := range first.Channels[0] {
		if first.Channels[0][i] != second.Channels[0][i] {
			t.Fatalf("sample %d differs between renders: %v vs %v",
				i, first.Channels[0][i], second.Channels[0][i])
		}
	}
}

func TestRenderDoesNotModifyInput(t *testing.T) {
	buf := sineBuffer(t, 440, 0.5, 0.5, 44100)
	original := buf.Clone()

	Render(BuildChain(VolumeStandard), buf)

	for i := range buf.Channels[0] {
		if buf.Channels[0][i] != original.Channels[0][i] {
			t.Fatalf("input sample %d was modified", i)
		}
	}
}

func TestLimiterHoldsCeiling(t *testing.T) {
	// A full-scale tone pushed through the complete chain at the loudest
	// volume level must stay under the limiter ceiling on every sample,
	// including the very first milliseconds of the onset where the
	// upstream compressors have not attacked yet.
	buf := sineBuffer(t, 800, 1.0, 2.0, 44100)
	out := Render(BuildChain(VolumeHigh), buf)

	ceiling := LimiterCeiling()
	for i, v := range out.Channels[0] {
		if math.Abs(v) > ceiling+1e-12 {
			t.Fatalf("sample %d: |%.4f| exceeds ceiling %.4f", i, v, ceiling)
		}
	}
}

func TestDbConversions(t *testing.T) {
	if got := DbToLinear(0); got != 1.0 {
		t.Errorf("DbToLinear(0) = %v, want 1", got)
	}
	if got := DbToLinear(-20); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("DbToLinear(-20) = %v, want 0.1", got)
	}
	if got := LinearToDb(1); got != 0 {
		t.Errorf("LinearToDb(1) = %v, want 0", got)
	}
	if got := LinearToDb(0); got != -120 {
		t.Errorf("LinearToDb(0) = %v, want the -120 floor", got)
	}
	if got := LinearToDb(-0.5); got != -120 {
		t.Errorf("LinearToDb(-0.5) = %v, want the -120 floor", got)
	}
}
