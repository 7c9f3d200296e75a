package editor

import "github.com/voicetake/voicetake/internal/audio"

// UndoDepth is how many superseded recordings the editor retains.
const UndoDepth = 3

// undoStack is a fixed-capacity most-recent-first ring of recording
// snapshots. Pushing beyond capacity silently discards the oldest entry.
type undoStack struct {
	entries [UndoDepth]*audio.Recording
	top     int
	size    int
}

func (s *undoStack) push(rec *audio.Recording) {
	s.top = (s.top + 1) % UndoDepth
	s.entries[s.top] = rec
	if s.size < UndoDepth {
		s.size++
	}
}

// pop removes and returns the most recent entry, or nil when empty.
func (s *undoStack) pop() *audio.Recording {
	if s.size == 0 {
		return nil
	}
	rec := s.entries[s.top]
	s.entries[s.top] = nil
	s.top = (s.top - 1 + UndoDepth) % UndoDepth
	s.size--
	return rec
}

func (s *undoStack) len() int {
	return s.size
}

func (s *undoStack) clear() {
	*s = undoStack{}
}
