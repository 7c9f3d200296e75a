// Package logging generates plain-text session reports for saved
// recordings.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/voicetake/voicetake/internal/processor"
)

// ReportData collects everything one session report shows.
type ReportData struct {
	OutputPath string
	SavedAt    time.Time

	DurationSecs float64
	SampleRate   int
	Channels     int
	Cuts         int

	Enhanced    bool
	VolumeLevel processor.VolumeLevel
	HumNotch    bool
	MainsHz     int
	MainsRegion string
}

// WriteReport writes the report next to the exported file as
// <output>.txt, overwriting any previous report for that path.
func WriteReport(data ReportData) error {
	path := data.OutputPath + ".txt"
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("logging: create report: %w", err)
	}
	defer f.Close()
	Render(f, data)
	return nil
}

// Render writes the report body to w.
func Render(w io.Writer, data ReportData) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "RECORDING: %s\n", filepath.Base(data.OutputPath))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Saved:       %s\n", data.SavedAt.Format(time.RFC1123))
	fmt.Fprintf(w, "Duration:    %s\n", formatDurationHMS(data.DurationSecs))
	fmt.Fprintf(w, "Sample Rate: %d Hz\n", data.SampleRate)
	fmt.Fprintf(w, "Channels:    %s\n", channelName(data.Channels))
	if data.Cuts > 0 {
		fmt.Fprintf(w, "Cuts:        %d\n", data.Cuts)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "ENHANCEMENT")
	if !data.Enhanced {
		fmt.Fprintln(w, "  disabled (raw capture exported)")
		return
	}
	fmt.Fprintf(w, "  Volume level: %s (makeup x%.1f)\n", data.VolumeLevel, data.VolumeLevel.MakeupGain())
	if data.HumNotch {
		region := data.MainsRegion
		if region == "" {
			region = "unknown region"
		}
		fmt.Fprintf(w, "  Hum notch:    %d Hz (%s)\n", data.MainsHz, region)
	}
}

// formatDurationHMS renders seconds as H:MM:SS, dropping the hour field
// for short clips.
func formatDurationHMS(secs float64) string {
	total := int(secs + 0.5)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func channelName(n int) string {
	switch n {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	}
	return fmt.Sprintf("%d channels", n)
}
