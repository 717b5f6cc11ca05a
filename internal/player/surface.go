// Package player implements the playback surface of the station browser: a
// state holder for the current station that drives audio output and a display
// through small adapters.
package player

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/radiodir/internal/model"
)

// Metadata display texts.
const (
	MetadataLoading     = "Cargando metadatos..."
	MetadataUnavailable = "Sin metadatos disponibles."
	MetadataFailed      = "No se pudieron cargar los metadatos."
	metadataFormat      = "Formato: %s"
)

// ErrIndexOutOfRange is returned by SelectIndex for an index outside the list.
var ErrIndexOutOfRange = errors.New("station index out of range")

// State of the playback surface.
type State int

// Playback states.
const (
	Idle State = iota
	Paused
	Playing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Audio plays a single stream at a time.
type Audio interface {
	// Play replaces whatever is playing with the given stream.
	Play(ctx context.Context, streamURL string) error
	Pause() error
	Stop() error
}

// Display shows the state of the surface to the listener.
type Display interface {
	ShowTitle(name string)
	ShowMetadata(text string)
	ShowPlaying(playing bool)
}

// Prober fetches best-effort metadata of a stream.
type Prober interface {
	// Probe returns the stream's content type, empty if it has none.
	Probe(ctx context.Context, streamURL string) (string, error)
}

// Surface owns the single active stream and its play/pause/navigation state.
// It is safe for concurrent use.
type Surface struct {
	audio   Audio
	display Display
	prober  Prober
	logger  *zap.Logger

	mu       sync.Mutex
	stations []model.Station
	current  *model.Station
	index    int
	state    State
	// generation increments on every station change; probe results carrying an
	// older generation are dropped.
	generation uint64

	probes sync.WaitGroup
}

// NewSurface creates an idle surface.
func NewSurface(audio Audio, display Display, prober Prober, logger *zap.Logger) *Surface {
	return &Surface{
		audio:   audio,
		display: display,
		prober:  prober,
		logger:  logger,
		index:   -1,
	}
}

// SetStations replaces the navigation list. The current station keeps playing;
// its index is looked up again in the new list.
func (s *Surface) SetStations(stations []model.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stations = append([]model.Station(nil), stations...)
	s.index = -1
	if s.current != nil {
		s.index = s.indexOf(s.current.StreamURL)
	}
}

// Stations returns a copy of the navigation list.
func (s *Surface) Stations() []model.Station {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Station(nil), s.stations...)
}

// State returns the playback state.
func (s *Surface) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the current station, if any.
func (s *Surface) Current() (model.Station, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return model.Station{}, false
	}
	return *s.current, true
}

// Index returns the list position of the current station, or -1.
func (s *Surface) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Select makes station the current one and starts playing it. Selecting the
// station already current (same stream URL) does nothing.
func (s *Surface) Select(ctx context.Context, station model.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectLocked(ctx, station, s.indexOf(station.StreamURL))
}

// SelectIndex selects the station at position i of the list.
func (s *Surface) SelectIndex(ctx context.Context, i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.stations) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.stations))
	}
	s.selectLocked(ctx, s.stations[i], i)
	return nil
}

// Next selects the following station, wrapping from the last to the first.
func (s *Surface) Next(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.stations)
	if n == 0 {
		return
	}
	i := (s.index + 1) % n
	s.selectLocked(ctx, s.stations[i], i)
}

// Previous selects the preceding station, wrapping from the first to the last.
func (s *Surface) Previous(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.stations)
	if n == 0 {
		return
	}
	i := n - 1
	if s.index >= 0 {
		i = (s.index - 1 + n) % n
	}
	s.selectLocked(ctx, s.stations[i], i)
}

// Toggle switches between playing and paused. It does nothing while idle.
func (s *Surface) Toggle(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Idle:
		s.logger.Debug("toggle ignored, no station selected")
	case Playing:
		if err := s.audio.Pause(); err != nil {
			s.logger.Warn("pausing playback", zap.String("station", s.current.Name), zap.Error(err))
		}
		s.state = Paused
		s.display.ShowPlaying(false)
	case Paused:
		s.play(ctx)
		s.state = Playing
		s.display.ShowPlaying(true)
	}
}

// Wait blocks until every metadata probe started so far has finished.
func (s *Surface) Wait() {
	s.probes.Wait()
}

// selectLocked performs a station change. Caller holds s.mu.
func (s *Surface) selectLocked(ctx context.Context, station model.Station, index int) {
	if s.current != nil && s.current.StreamURL == station.StreamURL {
		s.logger.Debug("station already selected", zap.String("station", station.Name))
		s.index = index
		return
	}

	if s.state != Idle {
		if err := s.audio.Stop(); err != nil {
			s.logger.Warn("stopping playback", zap.String("station", s.current.Name), zap.Error(err))
		}
	}

	s.current = &station
	s.index = index
	s.generation++
	s.display.ShowTitle(station.Name)

	s.play(ctx)
	s.state = Playing
	s.display.ShowPlaying(true)

	s.display.ShowMetadata(MetadataLoading)
	s.startProbe(ctx, station, s.generation)
}

// play starts the current stream; failures are logged and otherwise ignored.
func (s *Surface) play(ctx context.Context) {
	if err := s.audio.Play(ctx, s.current.StreamURL); err != nil {
		s.logger.Error("playing station",
			zap.String("station", s.current.Name),
			zap.String("stream_url", s.current.StreamURL),
			zap.Error(err),
		)
	}
}

// startProbe fetches the stream metadata in the background and shows it
// unless another station has been selected in the meantime.
func (s *Surface) startProbe(ctx context.Context, station model.Station, generation uint64) {
	s.probes.Add(1)
	go func() {
		defer s.probes.Done()

		contentType, err := s.prober.Probe(ctx, station.StreamURL)

		text := MetadataUnavailable
		switch {
		case err != nil:
			s.logger.Warn("probing stream metadata",
				zap.String("stream_url", station.StreamURL),
				zap.Error(err),
			)
			text = MetadataFailed
		case contentType != "":
			text = fmt.Sprintf(metadataFormat, contentType)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if generation != s.generation {
			s.logger.Debug("dropping stale metadata", zap.String("stream_url", station.StreamURL))
			return
		}
		s.display.ShowMetadata(text)
	}()
}

// indexOf finds a station by stream URL. Caller holds s.mu.
func (s *Surface) indexOf(streamURL string) int {
	for i := range s.stations {
		if s.stations[i].StreamURL == streamURL {
			return i
		}
	}
	return -1
}
