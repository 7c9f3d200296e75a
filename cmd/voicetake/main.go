package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/voicetake/voicetake/internal/audio"
	"github.com/voicetake/voicetake/internal/capture"
	"github.com/voicetake/voicetake/internal/cli"
	"github.com/voicetake/voicetake/internal/config"
	"github.com/voicetake/voicetake/internal/export"
	"github.com/voicetake/voicetake/internal/logging"
	"github.com/voicetake/voicetake/internal/mains"
	"github.com/voicetake/voicetake/internal/playback"
	"github.com/voicetake/voicetake/internal/processor"
	"github.com/voicetake/voicetake/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version bool   `short:"v" help:"Show version information"`
	Config  string `short:"c" type:"path" help:"Path to TOML config file (optional)"`

	Record  RecordCmd  `cmd:"" default:"withargs" help:"Open the interactive recorder"`
	Enhance EnhanceCmd `cmd:"" help:"Enhance recorded files without the UI"`
	Play    PlayCmd    `cmd:"" help:"Play a file through the enhancement chain"`
}

// RecordCmd runs the interactive recorder TUI.
type RecordCmd struct{}

func (r *RecordCmd) Run(cfg *config.Config) error {
	model := ui.NewModel(cfg, capture.Open)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	return nil
}

// EnhanceCmd batch-processes existing files through the chain.
type EnhanceCmd struct {
	Volume   string   `help:"Volume level: low, standard or high" default:"standard" enum:"low,standard,high"`
	Format   string   `short:"f" help:"Output format: wav or mp3" default:"wav" enum:"wav,mp3"`
	HumNotch bool     `help:"Notch out mains hum for the local region"`
	Report   bool     `help:"Write a session report next to each output"`
	Files    []string `arg:"" name:"files" help:"Audio files to enhance" type:"existingfile"`
}

func (e *EnhanceCmd) Run(cfg *config.Config) error {
	format, err := export.ParseFormat(e.Format)
	if err != nil {
		return err
	}
	region := mains.Detect()
	opts := export.Options{
		Format:      format,
		Enhance:     true,
		Level:       processor.VolumeLevel(e.Volume),
		HumNotch:    e.HumNotch,
		MainsHz:     region.Hz,
		BitrateKbps: cfg.Output.BitrateKbps,
	}

	for _, path := range e.Files {
		rec, err := loadRecording(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		res, err := export.Render(rec, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		out := outputName(path, res.Ext)
		if err := os.WriteFile(out, res.Data, 0o644); err != nil {
			return err
		}
		if e.Report {
			if err := logging.WriteReport(logging.ReportData{
				OutputPath:   out,
				SavedAt:      time.Now(),
				DurationSecs: rec.Duration,
				SampleRate:   cfg.Audio.SampleRate,
				Channels:     cfg.Audio.Channels,
				Enhanced:     true,
				VolumeLevel:  opts.Level,
				HumNotch:     opts.HumNotch,
				MainsHz:      region.Hz,
				MainsRegion:  region.Country,
			}); err != nil {
				return err
			}
		}
		fmt.Printf("%s %s → %s\n", cli.ValueStyle.Render("✓"), filepath.Base(path), filepath.Base(out))
	}
	return nil
}

// PlayCmd plays one file to the speaker, enhanced by default.
type PlayCmd struct {
	Raw    bool   `help:"Play without enhancement"`
	Volume string `help:"Volume level: low, standard or high" default:"standard" enum:"low,standard,high"`
	File   string `arg:"" name:"file" help:"Audio file to play" type:"existingfile"`
}

func (p *PlayCmd) Run(cfg *config.Config) error {
	rec, err := loadRecording(p.File)
	if err != nil {
		return err
	}

	player := playback.NewPlayer()
	player.SetEnhance(!p.Raw)
	player.SetVolume(processor.VolumeLevel(p.Volume))
	done := make(chan struct{})
	player.SetOnEnded(func() { close(done) })

	token := player.Load(rec)
	if err := player.Process(token); err != nil {
		return err
	}
	if err := player.Play(); err != nil {
		return err
	}
	fmt.Printf("Playing %s (%.1fs)\n", filepath.Base(p.File), player.Duration())
	<-done
	return nil
}

// loadRecording reads a file into a Recording, sniffing its container and
// decoding once to learn the duration.
func loadRecording(path string) (*audio.Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format, err := audio.Sniff(data)
	if err != nil {
		return nil, err
	}
	buf, err := audio.Decode(data)
	if err != nil {
		return nil, err
	}
	return audio.NewRecording(data, format.MIMEType(), buf.Duration()), nil
}

func outputName(input, ext string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "-enhanced." + ext
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("voicetake"),
		kong.Description("Terminal voice recorder and enhancer"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	cfg, err := config.Load(cliArgs.Config)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	if err := ctx.Run(cfg); err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
}
