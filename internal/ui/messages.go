package ui

// countdownTickMsg consumes one countdown step before capture begins.
type countdownTickMsg struct{}

// meterTickMsg drives the elapsed readout and the live waveform while
// recording or playing.
type meterTickMsg struct{}

// processedMsg reports an async playback load finishing. Stale results
// carry playback.ErrStale and are ignored.
type processedMsg struct {
	token int
	err   error
}

// playbackEndedMsg reports the player draining to the end of its source.
type playbackEndedMsg struct{}

// savedMsg reports an export finishing.
type savedMsg struct {
	path     string
	fellBack bool
	err      error
}
