package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// Decoding errors.
var (
	ErrUnknownFormat = errors.New("audio: unrecognised container format")
	ErrEmptyInput    = errors.New("audio: empty input")
)

// Format identifies a recognised audio container.
type Format string

const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
	FormatOGG Format = "ogg"
)

// MIMEType returns the MIME type for a format.
func (f Format) MIMEType() string {
	switch f {
	case FormatWAV:
		return "audio/wav"
	case FormatMP3:
		return "audio/mpeg"
	case FormatOGG:
		return "audio/ogg"
	}
	return "application/octet-stream"
}

// Sniff identifies the container format from the first bytes of data.
func Sniff(data []byte) (Format, error) {
	if len(data) < 4 {
		return "", ErrEmptyInput
	}
	switch {
	case bytes.HasPrefix(data, []byte("RIFF")):
		return FormatWAV, nil
	case bytes.HasPrefix(data, []byte("OggS")):
		return FormatOGG, nil
	case bytes.HasPrefix(data, []byte("ID3")),
		data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	}
	return "", ErrUnknownFormat
}

// Decode sniffs and decodes a compressed audio byte stream into a Buffer.
func Decode(data []byte) (*Buffer, error) {
	format, err := Sniff(data)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatWAV:
		return decodeWAV(data)
	case FormatOGG:
		return decodeOGG(data)
	default:
		return decodeMP3(data)
	}
}

// decodeWAV decodes PCM WAV via go-audio.
func decodeWAV(data []byte) (*Buffer, error) {
	dec := gowav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("audio: invalid WAV file")
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: WAV decode: %w", err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels < 1 {
		return nil, fmt.Errorf("audio: WAV decode: missing format")
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	channels := pcm.Format.NumChannels
	samples := make([]float64, len(pcm.Data))
	for i, v := range pcm.Data {
		samples[i] = float64(v) / scale
	}
	return FromInterleaved(samples, channels, pcm.Format.SampleRate), nil
}

// decodeMP3 decodes via go-mp3, which always yields 16-bit stereo PCM.
func decodeMP3(data []byte) (*Buffer, error) {
	dec, err := gomp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("audio: MP3 decode: %w", err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("audio: MP3 decode: %w", err)
	}

	const channels = 2
	frames := len(raw) / (2 * channels)
	samples := make([]float64, frames*channels)
	for i := range samples {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		samples[i] = float64(v) / 32768.0
	}
	return FromInterleaved(samples, channels, dec.SampleRate()), nil
}

// decodeOGG decodes Vorbis-in-Ogg via jfreymuth/oggvorbis.
func decodeOGG(data []byte) (*Buffer, error) {
	interleaved, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("audio: OGG decode: %w", err)
	}

	samples := make([]float64, len(interleaved))
	for i, v := range interleaved {
		samples[i] = float64(v)
	}
	return FromInterleaved(samples, format.Channels, format.SampleRate), nil
}
