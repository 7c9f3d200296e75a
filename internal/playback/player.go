// Package playback owns the playing audio element: an enhanced-or-raw
// source streamed through the speaker, with lazy enhancement processing,
// stale-load protection and a live analysis tap.
package playback

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	beep "github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/voicetake/voicetake/internal/audio"
	"github.com/voicetake/voicetake/internal/processor"
)

// State is the player's lifecycle state.
type State string

const (
	StateIdle    State = "IDLE"
	StatePlaying State = "PLAYING"
	StatePaused  State = "PAUSED"
	StateEnded   State = "ENDED"
)

// ErrStale reports that an async load finished for a source that has been
// superseded; its result was discarded.
var ErrStale = errors.New("playback: load superseded by a newer source")

// ErrNotLoaded reports that no processed source is installed yet.
var ErrNotLoaded = errors.New("playback: no source loaded")

// speakerBufferLen is the speaker's internal buffer length.
const speakerBufferLen = 100 * time.Millisecond

// cacheKey identifies one enhanced render: the exact source blob plus
// every chain input that affects the rendered bytes.
type cacheKey struct {
	id       string
	level    processor.VolumeLevel
	humNotch bool
	mainsHz  int
}

// Player is the playback state machine. Transitions are serialized under
// one mutex. Processing runs on the caller's goroutine (the UI issues it
// as a background command); results are keyed by a load token and results
// for superseded tokens are discarded, never applied.
type Player struct {
	mu sync.Mutex

	state    State
	enhance  bool
	level    processor.VolumeLevel
	humNotch bool
	mainsHz  int

	source     *audio.Recording
	token      int // identity of the current load
	stream     *bufferStreamer
	tap        *Tap
	ctrl       *beep.Ctrl
	sampleRate int
	speakerSR  int
	onEnded    func()

	cache map[cacheKey]*audio.Buffer
}

// NewPlayer returns an idle player with enhancement enabled at the
// standard volume level.
func NewPlayer() *Player {
	return &Player{
		state:   StateIdle,
		enhance: true,
		level:   processor.VolumeStandard,
		cache:   map[cacheKey]*audio.Buffer{},
	}
}

// SetEnhance toggles lazy enhancement for subsequent loads.
func (p *Player) SetEnhance(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enhance = on
}

// SetVolume selects the enhancement volume level for subsequent loads.
func (p *Player) SetVolume(level processor.VolumeLevel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

// SetHumNotch toggles the mains-hum notch composite for subsequent loads.
func (p *Player) SetHumNotch(on bool, mainsHz int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.humNotch = on
	p.mainsHz = mainsHz
}

// SetOnEnded registers a callback fired when playback reaches the end of
// the source. It runs on its own goroutine.
func (p *Player) SetOnEnded(f func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEnded = f
}

// State returns the current lifecycle state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Load replaces the player's source wholesale and returns the token that
// must be passed to Process. Any in-flight load for an earlier token
// becomes stale.
func (p *Player) Load(rec *audio.Recording) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.haltLocked()
	p.source = rec
	p.stream = nil
	p.tap = nil
	p.state = StateIdle
	p.token++
	return p.token
}

// Process decodes (and, when enhancement is on, renders) the source loaded
// under token, then installs it for playback. Safe to run off the UI
// goroutine; a result for a superseded token is dropped with ErrStale and
// never clobbers the newer source. A source that does not decode fails the
// load outright, enhanced or not.
func (p *Player) Process(token int) error {
	p.mu.Lock()
	if token != p.token || p.source == nil {
		p.mu.Unlock()
		return ErrStale
	}
	src := p.source
	enhance := p.enhance
	level := p.level
	key := cacheKey{id: src.ID.String(), level: level, humNotch: p.humNotch, mainsHz: p.mainsHz}
	cached := p.cache[key]
	p.mu.Unlock()

	var buf *audio.Buffer
	switch {
	case enhance && cached != nil:
		buf = cached
	default:
		decoded, err := audio.Decode(src.Data)
		if err != nil {
			return fmt.Errorf("playback: decode source: %w", err)
		}
		buf = decoded
		if enhance {
			chain := processor.BuildChainWithOptions(level, processor.Options{
				HumNotch: key.humNotch,
				MainsHz:  key.mainsHz,
			})
			buf = processor.Render(chain, decoded)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if token != p.token {
		// A newer source arrived while this one was rendering.
		return ErrStale
	}
	if enhance {
		p.cache[key] = buf
	}
	p.stream = newBufferStreamer(buf)
	p.sampleRate = buf.SampleRate
	return nil
}

// Play starts or resumes the installed source.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StatePlaying:
		return nil
	case StatePaused:
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()
		p.state = StatePlaying
		return nil
	}

	if p.stream == nil {
		return ErrNotLoaded
	}

	if p.speakerSR != p.sampleRate {
		sr := beep.SampleRate(p.sampleRate)
		if err := speaker.Init(sr, sr.N(speakerBufferLen)); err != nil {
			return fmt.Errorf("playback: speaker init: %w", err)
		}
		p.speakerSR = p.sampleRate
	}

	if p.state == StateEnded {
		p.stream.Seek(0)
	}

	// The tap is rebuilt for every fresh playback run.
	p.tap = NewTap(p.stream, p.sampleRate/10)
	p.ctrl = &beep.Ctrl{Streamer: p.tap}
	token := p.token
	// The callback fires with the speaker lock held; taking p.mu there
	// would invert the lock order against Pause/Seek/Position.
	speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
		go p.finished(token)
	})))
	p.state = StatePlaying
	slog.Debug("playback started", "sample_rate", p.sampleRate)
	return nil
}

// finished handles the streamer draining to its end.
func (p *Player) finished(token int) {
	p.mu.Lock()
	if token != p.token || p.state != StatePlaying {
		p.mu.Unlock()
		return
	}
	p.stream.Seek(0)
	p.state = StateEnded
	cb := p.onEnded
	p.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Pause halts playback, keeping the current position.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StatePlaying {
		return fmt.Errorf("playback: can only pause while playing, current: %s", p.state)
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = StatePaused
	return nil
}

// Stop halts playback, resets the position to zero and returns to idle.
// The analysis tap is invalidated and rebuilt on the next Play.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.haltLocked()
	if p.stream != nil {
		p.stream.Seek(0)
	}
	p.state = StateIdle
}

// haltLocked silences the speaker and drops the live tap. Callers hold mu.
func (p *Player) haltLocked() {
	if p.ctrl != nil {
		speaker.Clear()
		p.ctrl = nil
	}
	p.tap = nil
}

// Seek jumps to t seconds. Valid in idle, playing and paused; the state is
// unchanged.
func (p *Player) Seek(t float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil {
		return ErrNotLoaded
	}
	if p.state == StateEnded {
		return fmt.Errorf("playback: cannot seek after end, current: %s", p.state)
	}
	frame := int(t * float64(p.sampleRate))
	speaker.Lock()
	err := p.stream.Seek(frame)
	speaker.Unlock()
	return err
}

// Position returns the current playback position in seconds.
func (p *Player) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil || p.sampleRate == 0 {
		return 0
	}
	speaker.Lock()
	pos := p.stream.Position()
	speaker.Unlock()
	return float64(pos) / float64(p.sampleRate)
}

// Duration returns the installed source's length in seconds.
func (p *Player) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stream == nil || p.sampleRate == 0 {
		return 0
	}
	return float64(p.stream.Len()) / float64(p.sampleRate)
}

// MeterBlock returns the last ~100 ms of played audio for the waveform
// meter, or nil when no tap is live.
func (p *Player) MeterBlock() []float64 {
	p.mu.Lock()
	tap := p.tap
	sr := p.sampleRate
	p.mu.Unlock()
	if tap == nil {
		return nil
	}
	return tap.Last(sr / 10)
}

// Reset drops the source and halts playback. Cache entries are keyed by
// blob identity so they cannot go stale; they are released with the player.
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.haltLocked()
	p.source = nil
	p.stream = nil
	p.state = StateIdle
	p.token++
}
