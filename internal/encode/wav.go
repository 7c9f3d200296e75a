// Package encode serialises sample buffers into downloadable container
// formats: canonical 16-bit PCM WAV and block-encoded MP3.
package encode

import (
	"encoding/binary"

	"github.com/voicetake/voicetake/internal/audio"
)

const (
	wavHeaderSize    = 44
	wavBitsPerSample = 16
)

// EncodeWAV serialises a buffer as a canonical 44-byte RIFF/WAVE header
// followed by interleaved little-endian signed 16-bit PCM.
//
// Float samples are clamped to [-1, 1] and scaled asymmetrically: positive
// samples by 0x7FFF, negative samples by 0x8000. The asymmetric mapping is
// kept deliberately so output is bit-identical with recordings produced by
// earlier releases; do not replace it with a symmetric *32767.
//
// Mismatched channel lengths are a caller bug, not a checked error.
func EncodeWAV(buf *audio.Buffer) []byte {
	numChannels := buf.NumChannels()
	numFrames := buf.NumFrames()

	blockAlign := numChannels * (wavBitsPerSample / 8)
	byteRate := buf.SampleRate * blockAlign
	dataSize := numFrames * blockAlign
	riffSize := 36 + dataSize

	out := make([]byte, wavHeaderSize+dataSize)

	// RIFF header
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(riffSize))
	copy(out[8:12], "WAVE")

	// fmt chunk
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(out[20:22], 1)  // PCM format
	binary.LittleEndian.PutUint16(out[22:24], uint16(numChannels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(buf.SampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], wavBitsPerSample)

	// data chunk
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataSize))

	pos := wavHeaderSize
	for f := 0; f < numFrames; f++ {
		for c := 0; c < numChannels; c++ {
			binary.LittleEndian.PutUint16(out[pos:pos+2], uint16(pcm16(buf.Channels[c][f])))
			pos += 2
		}
	}
	return out
}

// pcm16 converts one float sample to signed 16-bit PCM using the
// asymmetric full-range mapping.
func pcm16(s float64) int16 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	if s < 0 {
		return int16(s * 0x8000)
	}
	return int16(s * 0x7FFF)
}
