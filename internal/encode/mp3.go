package encode

import (
	"errors"
	"fmt"
	"math"

	"github.com/voicetake/voicetake/internal/audio"
)

// MP3FrameSize is the number of samples per channel the MP3 format
// requires per encoded frame.
const MP3FrameSize = 1152

// DefaultMP3BitrateKbps is the bitrate used when the caller passes 0.
const DefaultMP3BitrateKbps = 128

// ErrEncoderEmptyOutput reports that the block encoder produced no bytes at
// all. Callers treat this as an encoder failure and fall back to exporting
// the original blob.
var ErrEncoderEmptyOutput = errors.New("encode: MP3 encoder produced no output")

// BlockEncoder is the frame-level contract of a third-party MP3 encoder.
// EncodeBlock consumes exactly one frame of 16-bit PCM per channel (right is
// nil for mono) and returns whatever bytes the encoder emitted, possibly
// none. Flush must be called exactly once, after the final block.
type BlockEncoder interface {
	EncodeBlock(left, right []int16) ([]byte, error)
	Flush() ([]byte, error)
}

// EncodeMP3 feeds a buffer through enc in MP3FrameSize blocks and
// concatenates the emitted chunks in order. The final block is zero-padded
// with silence. Buffers with more than two channels are a caller bug.
func EncodeMP3(buf *audio.Buffer, enc BlockEncoder) ([]byte, error) {
	numFrames := buf.NumFrames()
	stereo := buf.NumChannels() >= 2

	left := make([]int16, MP3FrameSize)
	var right []int16
	if stereo {
		right = make([]int16, MP3FrameSize)
	}

	var out []byte
	for start := 0; start < numFrames; start += MP3FrameSize {
		n := fillBlock(left, buf.Channels[0][start:])
		if stereo {
			fillBlock(right, buf.Channels[1][start:])
		}
		if n == 0 {
			break
		}

		chunk, err := enc.EncodeBlock(left, right)
		if err != nil {
			return nil, fmt.Errorf("encode: MP3 block: %w", err)
		}
		out = append(out, chunk...)
	}

	tail, err := enc.Flush()
	if err != nil {
		return nil, fmt.Errorf("encode: MP3 flush: %w", err)
	}
	out = append(out, tail...)

	if len(out) == 0 {
		return nil, ErrEncoderEmptyOutput
	}
	return out, nil
}

// fillBlock converts up to len(dst) float samples into dst, zero-padding
// the remainder, and returns how many real samples were consumed.
func fillBlock(dst []int16, src []float64) int {
	n := min(len(src), len(dst))
	for i := 0; i < n; i++ {
		dst[i] = mp3Sample(src[i])
	}
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return n
}

// mp3Sample converts one float sample via round(clamp(s)*32767), clamped
// again to int16 range to guard against rounding overflow at the boundary.
func mp3Sample(s float64) int16 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	v := math.Round(s * 32767)
	if v > 32767 {
		v = 32767
	} else if v < -32768 {
		v = -32768
	}
	return int16(v)
}
