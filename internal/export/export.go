// Package export turns a recording into a downloadable file: enhanced or
// raw, as WAV, MP3 or a pass-through of the original capture container.
package export

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/voicetake/voicetake/internal/audio"
	"github.com/voicetake/voicetake/internal/encode"
	"github.com/voicetake/voicetake/internal/processor"
)

// Format selects the output container.
type Format string

const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
	// FormatRaw passes the original capture blob through untouched.
	FormatRaw Format = "raw"
)

// ErrUnknownFormat reports an unsupported export format name.
var ErrUnknownFormat = errors.New("export: unknown format")

// ParseFormat maps a format or extension name to a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "wav":
		return FormatWAV, nil
	case "mp3":
		return FormatMP3, nil
	case "raw", "original", "":
		return FormatRaw, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Options carries the enhancement and encoding settings for one export.
type Options struct {
	Format      Format
	Enhance     bool
	Level       processor.VolumeLevel
	HumNotch    bool
	MainsHz     int
	BitrateKbps int
}

// Result is the rendered file plus the extension matching its actual
// content. The extension can differ from the requested format when MP3
// encoding failed and the export fell back to the original blob.
type Result struct {
	Data     []byte
	Ext      string
	MIMEType string
	FellBack bool
}

// Render produces the export bytes for a recording.
func Render(rec *audio.Recording, opts Options) (*Result, error) {
	if opts.Format == FormatRaw {
		return &Result{Data: rec.Data, Ext: extForMIME(rec.MIMEType), MIMEType: rec.MIMEType}, nil
	}

	buf, err := audio.Decode(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("export: decode recording: %w", err)
	}
	if opts.Enhance {
		chain := processor.BuildChainWithOptions(opts.Level, processor.Options{
			HumNotch: opts.HumNotch,
			MainsHz:  opts.MainsHz,
		})
		buf = processor.Render(chain, buf)
	}

	switch opts.Format {
	case FormatWAV:
		return &Result{
			Data:     encode.EncodeWAV(buf),
			Ext:      "wav",
			MIMEType: audio.FormatWAV.MIMEType(),
		}, nil

	case FormatMP3:
		data, err := encodeMP3(buf, opts.BitrateKbps)
		if err != nil {
			// MP3 availability is best-effort; hand back the
			// original blob instead of failing the export.
			slog.Warn("MP3 encode failed, falling back to original blob", "err", err)
			return &Result{
				Data:     rec.Data,
				Ext:      extForMIME(rec.MIMEType),
				MIMEType: rec.MIMEType,
				FellBack: true,
			}, nil
		}
		return &Result{Data: data, Ext: "mp3", MIMEType: audio.FormatMP3.MIMEType()}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
}

// newMP3Encoder constructs the block encoder behind an MP3 export. A
// variable so tests can substitute a failing encoder.
var newMP3Encoder = func(sampleRate, channels, bitrateKbps int) (encode.BlockEncoder, error) {
	return encode.NewLameEncoder(sampleRate, channels, bitrateKbps)
}

func encodeMP3(buf *audio.Buffer, bitrateKbps int) ([]byte, error) {
	enc, err := newMP3Encoder(buf.SampleRate, buf.NumChannels(), bitrateKbps)
	if err != nil {
		return nil, err
	}
	return encode.EncodeMP3(buf, enc)
}

func extForMIME(mime string) string {
	switch mime {
	case "audio/mpeg":
		return "mp3"
	case "audio/ogg":
		return "ogg"
	default:
		return "wav"
	}
}
