package export

import (
	"errors"
	"math"
	"testing"

	"github.com/voicetake/voicetake/internal/audio"
	"github.com/voicetake/voicetake/internal/encode"
	"github.com/voicetake/voicetake/internal/processor"
)

func testRecording(t *testing.T) *audio.Recording {
	t.Helper()

	const rate = 8000
	buf := audio.New(1, rate, rate)
	for i := range buf.Channels[0] {
		buf.Channels[0][i] = 0.3 * math.Sin(2*math.Pi*440*float64(i)/rate)
	}
	return audio.NewRecording(encode.EncodeWAV(buf), audio.FormatWAV.MIMEType(), 1.0)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"wav", FormatWAV, true},
		{"mp3", FormatMP3, true},
		{"raw", FormatRaw, true},
		{"original", FormatRaw, true},
		{"", FormatRaw, true},
		{"flac", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseFormat(%q) = (%v, %v), want %v", tt.in, got, err, tt.want)
		}
		if !tt.ok && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q) err = %v, want ErrUnknownFormat", tt.in, err)
		}
	}
}

func TestRawExportPassesBlobThrough(t *testing.T) {
	rec := testRecording(t)

	res, err := Render(rec, Options{Format: FormatRaw})
	if err != nil {
		t.Fatal(err)
	}
	if &res.Data[0] != &rec.Data[0] {
		t.Error("raw export should hand back the original blob, not a copy")
	}
	if res.Ext != "wav" || res.MIMEType != "audio/wav" {
		t.Errorf("raw export metadata = (%s, %s)", res.Ext, res.MIMEType)
	}
	if res.FellBack {
		t.Error("raw export flagged as fallback")
	}
}

func TestWAVExportWithoutEnhancement(t *testing.T) {
	rec := testRecording(t)

	res, err := Render(rec, Options{Format: FormatWAV})
	if err != nil {
		t.Fatal(err)
	}
	if res.Ext != "wav" {
		t.Errorf("ext = %s, want wav", res.Ext)
	}

	// Unenhanced WAV export is a decode/re-encode; the audio content must
	// survive intact.
	got, err := audio.Decode(res.Data)
	if err != nil {
		t.Fatal(err)
	}
	want, err := audio.Decode(rec.Data)
	if err != nil {
		t.Fatal(err)
	}
	if got.NumFrames() != want.NumFrames() {
		t.Fatalf("frames = %d, want %d", got.NumFrames(), want.NumFrames())
	}
	for i := range want.Channels[0] {
		if math.Abs(got.Channels[0][i]-want.Channels[0][i]) > 2.0/32768 {
			t.Fatalf("sample %d drifted: %v vs %v", i, got.Channels[0][i], want.Channels[0][i])
		}
	}
}

func TestEnhancedExportChangesAudio(t *testing.T) {
	rec := testRecording(t)

	res, err := Render(rec, Options{
		Format:  FormatWAV,
		Enhance: true,
		Level:   processor.VolumeStandard,
	})
	if err != nil {
		t.Fatal(err)
	}

	enhanced, err := audio.Decode(res.Data)
	if err != nil {
		t.Fatal(err)
	}
	original, err := audio.Decode(rec.Data)
	if err != nil {
		t.Fatal(err)
	}

	var diff float64
	for i := range original.Channels[0] {
		diff += math.Abs(enhanced.Channels[0][i] - original.Channels[0][i])
	}
	if diff == 0 {
		t.Error("enhancement left the audio untouched")
	}
}

// muteEncoder satisfies encode.BlockEncoder but never emits a byte.
type muteEncoder struct{}

func (muteEncoder) EncodeBlock(left, right []int16) ([]byte, error) { return nil, nil }
func (muteEncoder) Flush() ([]byte, error)                          { return nil, nil }

func TestMP3ExportFallsBackToOriginalBlob(t *testing.T) {
	swapEncoder := func(t *testing.T, ctor func(int, int, int) (encode.BlockEncoder, error)) {
		t.Helper()
		orig := newMP3Encoder
		newMP3Encoder = ctor
		t.Cleanup(func() { newMP3Encoder = orig })
	}

	assertFallback := func(t *testing.T, rec *audio.Recording) {
		t.Helper()
		res, err := Render(rec, Options{Format: FormatMP3})
		if err != nil {
			t.Fatalf("fallback should not fail the export: %v", err)
		}
		if !res.FellBack {
			t.Error("FellBack not set")
		}
		if &res.Data[0] != &rec.Data[0] {
			t.Error("fallback should hand back the original blob, not a copy")
		}
		if res.Ext != "wav" || res.MIMEType != "audio/wav" {
			t.Errorf("fallback metadata = (%s, %s), want original container", res.Ext, res.MIMEType)
		}
	}

	t.Run("encoder emits nothing", func(t *testing.T) {
		swapEncoder(t, func(int, int, int) (encode.BlockEncoder, error) {
			return muteEncoder{}, nil
		})
		assertFallback(t, testRecording(t))
	})

	t.Run("encoder unavailable", func(t *testing.T) {
		swapEncoder(t, func(int, int, int) (encode.BlockEncoder, error) {
			return nil, errors.New("no lame for you")
		})
		assertFallback(t, testRecording(t))
	})
}

func TestUnknownFormatRejected(t *testing.T) {
	if _, err := Render(testRecording(t), Options{Format: "flac"}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}
