// Package editor implements the non-destructive trim editor: sample-accurate
// cuts over a stopped recording, with a bounded undo history.
package editor

import (
	"errors"
	"fmt"
	"math"

	"github.com/voicetake/voicetake/internal/audio"
	"github.com/voicetake/voicetake/internal/encode"
)

// Editor errors.
var (
	ErrNoRecording  = errors.New("editor: no recording loaded")
	ErrInvalidRange = errors.New("editor: cut range must satisfy 0 <= start < end <= duration")
	ErrNothingLeft  = errors.New("editor: cut would remove the entire recording")
	ErrNoHistory    = errors.New("editor: nothing to undo")
)

// Editor holds the current recording and its undo history. It assumes it is
// only invoked on a stable, stopped recording; gating against active
// capture or playback is the caller's job.
type Editor struct {
	current *audio.Recording
	history undoStack
}

// New returns an editor with no recording loaded.
func New() *Editor {
	return &Editor{}
}

// Load replaces the current recording and clears the undo history. Used
// when a brand-new capture finishes.
func (e *Editor) Load(rec *audio.Recording) {
	e.current = rec
	e.history.clear()
}

// Current returns the recording being edited, or nil.
func (e *Editor) Current() *audio.Recording {
	return e.current
}

// CanUndo reports whether an undo snapshot is available.
func (e *Editor) CanUndo() bool {
	return e.history.len() > 0
}

// Reset drops the recording and all history.
func (e *Editor) Reset() {
	e.current = nil
	e.history.clear()
}

// Cut removes [startTime, endTime) seconds from the current recording and
// makes the trimmed result current. The previous recording is pushed onto
// the undo history. On any failure the current recording is left untouched.
func (e *Editor) Cut(startTime, endTime float64) (*audio.Recording, error) {
	if e.current == nil {
		return nil, ErrNoRecording
	}
	if startTime < 0 || startTime >= endTime || endTime > e.current.Duration {
		return nil, ErrInvalidRange
	}

	buf, err := audio.Decode(e.current.Data)
	if err != nil {
		return nil, fmt.Errorf("editor: decode for cut: %w", err)
	}

	startSample := int(math.Floor(startTime * float64(buf.SampleRate)))
	endSample := int(math.Floor(endTime * float64(buf.SampleRate)))
	frames := buf.NumFrames()
	if endSample > frames {
		endSample = frames
	}

	newFrames := frames - (endSample - startSample)
	if newFrames <= 0 {
		return nil, ErrNothingLeft
	}

	trimmed := audio.New(buf.NumChannels(), newFrames, buf.SampleRate)
	for c, ch := range buf.Channels {
		n := copy(trimmed.Channels[c], ch[:startSample])
		copy(trimmed.Channels[c][n:], ch[endSample:])
	}

	duration := float64(newFrames) / float64(buf.SampleRate)
	next := audio.NewRecording(encode.EncodeWAV(trimmed), audio.FormatWAV.MIMEType(), duration)

	e.history.push(e.current)
	e.current = next
	return next, nil
}

// Undo restores the most recent pre-cut snapshot as the current recording.
// Undo is single-level per call, LIFO, and not redoable.
func (e *Editor) Undo() (*audio.Recording, error) {
	prev := e.history.pop()
	if prev == nil {
		return nil, ErrNoHistory
	}
	e.current = prev
	return prev, nil
}
