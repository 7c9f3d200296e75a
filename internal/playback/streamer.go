package playback

import (
	"github.com/voicetake/voicetake/internal/audio"
)

// bufferStreamer adapts an in-memory sample buffer to beep's StreamSeeker.
// Mono sources are duplicated to both speaker channels; the first two
// channels of wider sources are used as left/right.
type bufferStreamer struct {
	buf *audio.Buffer
	pos int
}

func newBufferStreamer(buf *audio.Buffer) *bufferStreamer {
	return &bufferStreamer{buf: buf}
}

func (s *bufferStreamer) Stream(samples [][2]float64) (int, bool) {
	frames := s.buf.NumFrames()
	if s.pos >= frames {
		return 0, false
	}

	n := 0
	for ; n < len(samples) && s.pos < frames; n++ {
		left := s.buf.Channels[0][s.pos]
		right := left
		if s.buf.NumChannels() > 1 {
			right = s.buf.Channels[1][s.pos]
		}
		samples[n][0] = left
		samples[n][1] = right
		s.pos++
	}
	return n, true
}

func (s *bufferStreamer) Err() error {
	return nil
}

func (s *bufferStreamer) Len() int {
	return s.buf.NumFrames()
}

func (s *bufferStreamer) Position() int {
	return s.pos
}

func (s *bufferStreamer) Seek(p int) error {
	if p < 0 {
		p = 0
	}
	if max := s.buf.NumFrames(); p > max {
		p = max
	}
	s.pos = p
	return nil
}
