package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/voicetake/voicetake/internal/processor"
)

func testReportData() ReportData {
	return ReportData{
		OutputPath:   "/tmp/take.wav",
		SavedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		DurationSecs: 125.4,
		SampleRate:   44100,
		Channels:     1,
		Cuts:         2,
		Enhanced:     true,
		VolumeLevel:  processor.VolumeStandard,
		HumNotch:     true,
		MainsHz:      50,
		MainsRegion:  "GB",
	}
}

func TestRenderReport(t *testing.T) {
	var sb strings.Builder
	Render(&sb, testReportData())
	out := sb.String()

	for _, want := range []string{
		"take.wav",
		"2:05",
		"44100 Hz",
		"mono",
		"Cuts:        2",
		"standard",
		"x3.0",
		"50 Hz (GB)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderUnenhancedReport(t *testing.T) {
	data := testReportData()
	data.Enhanced = false
	data.Cuts = 0

	var sb strings.Builder
	Render(&sb, data)
	out := sb.String()

	if !strings.Contains(out, "disabled") {
		t.Error("unenhanced report does not say so")
	}
	if strings.Contains(out, "Volume level") {
		t.Error("unenhanced report lists enhancement settings")
	}
	if strings.Contains(out, "Cuts:") {
		t.Error("zero cuts should be omitted")
	}
}

func TestWriteReportCreatesSidecar(t *testing.T) {
	dir := t.TempDir()
	data := testReportData()
	data.OutputPath = filepath.Join(dir, "take.wav")

	if err := WriteReport(data); err != nil {
		t.Fatal(err)
	}

	body, err := os.ReadFile(data.OutputPath + ".txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "take.wav") {
		t.Error("sidecar report missing the output name")
	}
}

func TestFormatDurationHMS(t *testing.T) {
	tests := []struct {
		secs float64
		want string
	}{
		{0, "0:00"},
		{59.4, "0:59"},
		{125.4, "2:05"},
		{3671, "1:01:11"},
	}
	for _, tt := range tests {
		if got := formatDurationHMS(tt.secs); got != tt.want {
			t.Errorf("formatDurationHMS(%v) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
