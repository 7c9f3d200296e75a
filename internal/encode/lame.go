package encode

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/viert/go-lame"
)

// lameEncoder adapts the LAME binding to the BlockEncoder contract. LAME
// consumes interleaved little-endian 16-bit PCM through an io.Writer and
// emits encoded bytes into the sink; Close drains its internal buffers.
type lameEncoder struct {
	enc      *lame.Encoder
	sink     *bytes.Buffer
	pcm      []byte
	channels int
	closed   bool
}

// NewLameEncoder returns a BlockEncoder backed by LAME, configured for the
// given sample rate, channel count (1 or 2) and bitrate. A bitrate of 0
// selects DefaultMP3BitrateKbps.
func NewLameEncoder(sampleRate, channels, bitrateKbps int) (BlockEncoder, error) {
	if channels != 1 {
		channels = 2
	}
	if bitrateKbps == 0 {
		bitrateKbps = DefaultMP3BitrateKbps
	}

	sink := &bytes.Buffer{}
	enc := lame.NewEncoder(sink)
	if err := enc.SetNumChannels(channels); err != nil {
		return nil, fmt.Errorf("encode: lame channels: %w", err)
	}
	if err := enc.SetInSamplerate(sampleRate); err != nil {
		return nil, fmt.Errorf("encode: lame sample rate: %w", err)
	}
	if err := enc.SetBrate(bitrateKbps); err != nil {
		return nil, fmt.Errorf("encode: lame bitrate: %w", err)
	}

	return &lameEncoder{
		enc:      enc,
		sink:     sink,
		pcm:      make([]byte, MP3FrameSize*channels*2),
		channels: channels,
	}, nil
}

func (e *lameEncoder) EncodeBlock(left, right []int16) ([]byte, error) {
	if e.closed {
		return nil, fmt.Errorf("encode: lame encoder already flushed")
	}

	for i := range left {
		if e.channels == 2 {
			binary.LittleEndian.PutUint16(e.pcm[4*i:], uint16(left[i]))
			r := int16(0)
			if right != nil {
				r = right[i]
			}
			binary.LittleEndian.PutUint16(e.pcm[4*i+2:], uint16(r))
		} else {
			binary.LittleEndian.PutUint16(e.pcm[2*i:], uint16(left[i]))
		}
	}

	if _, err := e.enc.Write(e.pcm[:len(left)*e.channels*2]); err != nil {
		return nil, err
	}
	return e.drain(), nil
}

func (e *lameEncoder) Flush() ([]byte, error) {
	if !e.closed {
		e.enc.Close()
		e.closed = true
	}
	return e.drain(), nil
}

// drain hands back whatever LAME wrote to the sink since the last call.
func (e *lameEncoder) drain() []byte {
	if e.sink.Len() == 0 {
		return nil
	}
	out := make([]byte, e.sink.Len())
	copy(out, e.sink.Bytes())
	e.sink.Reset()
	return out
}
