// Package dashboard binds the listening-data session, persisted screen state
// and the link presenter into the streams and intents the dashboard screen
// renders and raises.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jask/spotifydaily/internal/browser"
	"github.com/jask/spotifydaily/internal/reactive"
	"github.com/jask/spotifydaily/internal/screenstate"
	"github.com/jask/spotifydaily/internal/spotify"
)

// Page sizes of the dashboard previews.
const (
	TopArtistsLimit     = 2
	TopTracksLimit      = 2
	RecentlyPlayedLimit = 3
)

// SessionService queries the user's listening data.
type SessionService interface {
	GetTopArtists(ctx context.Context, timeRange spotify.TimeRange, limit int) ([]spotify.Artist, error)
	GetTopTracks(ctx context.Context, timeRange spotify.TimeRange, limit int) ([]spotify.Track, error)
	GetRecentlyPlayedTracks(ctx context.Context, limit int) ([]spotify.RecentlyPlayedTrack, error)
}

// Deps are the collaborators of a State.
type Deps struct {
	Session SessionService
	Data    screenstate.DataManager
	Links   browser.Presenter
	Logger  *slog.Logger
}

// Option configures a State.
type Option func(*State)

// WithExecutor schedules query cycles with exec instead of one goroutine each.
func WithExecutor(exec reactive.Executor) Option {
	return func(s *State) { s.exec = exec }
}

// WithCloseHook runs fn once when the State is closed.
func WithCloseHook(fn func()) Option {
	return func(s *State) { s.onClose = fn }
}

// Prerequisites is the persisted state a State needs before wiring.
type Prerequisites struct {
	Artists screenstate.Artists
	Tracks  screenstate.Tracks
}

// LoadPrerequisites reads both screen states. It reports false when either is
// absent or unreadable; read failures are logged, never returned.
func LoadPrerequisites(ctx context.Context, dm screenstate.DataManager, logger *slog.Logger) (Prerequisites, bool) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	artists, ok, err := screenstate.LoadArtists(ctx, dm)
	if err != nil {
		logger.Warn("read artists screen state", "error", err)
	}
	if !ok {
		return Prerequisites{}, false
	}
	tracks, ok, err := screenstate.LoadTracks(ctx, dm)
	if err != nil {
		logger.Warn("read tracks screen state", "error", err)
	}
	if !ok {
		return Prerequisites{}, false
	}
	return Prerequisites{Artists: artists, Tracks: tracks}, true
}

// State is the dashboard's reactive state holder. When the persisted screen
// states are missing at construction it is inert: outputs and intents are nil
// and nothing is ever queried.
type State struct {
	session SessionService
	data    screenstate.DataManager
	links   browser.Presenter
	logger  *slog.Logger
	exec    reactive.Executor
	onClose func()

	ctx    context.Context
	cancel context.CancelFunc
	bag    reactive.Bag
	ready  bool

	presentTopArtists     *reactive.Signal
	presentTopTracks      *reactive.Signal
	presentRecentlyPlayed *reactive.Signal
	childDismissed        *reactive.Signal
	errs                  *reactive.Subject[error]

	artistsRange *reactive.Relay[spotify.TimeRange]
	tracksRange  *reactive.Relay[spotify.TimeRange]
	refresh      *reactive.Pulse

	topArtists     *reactive.Stream[[]ArtistCell]
	topTracks      *reactive.Stream[[]TrackCell]
	recentlyPlayed *reactive.Stream[[]RecentCell]
}

// New builds a State. The initial queries are issued before New returns
// (their results arrive according to the executor).
func New(ctx context.Context, deps Deps, opts ...Option) *State {
	s := &State{
		session: deps.Session,
		data:    deps.Data,
		links:   deps.Links,
		logger:  deps.Logger,
		exec:    reactive.Go,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	prereqs, ok := LoadPrerequisites(s.ctx, s.data, s.logger)
	if !ok {
		s.logger.Info("dashboard inert: screen state missing")
		return s
	}
	s.wire(prereqs)
	return s
}

func (s *State) wire(p Prerequisites) {
	s.ready = true

	s.presentTopArtists = reactive.NewSignal()
	s.presentTopTracks = reactive.NewSignal()
	s.presentRecentlyPlayed = reactive.NewSignal()
	s.childDismissed = reactive.NewSignal()
	s.errs = reactive.NewSubject[error]()
	for _, sig := range []*reactive.Signal{s.presentTopArtists, s.presentTopTracks, s.presentRecentlyPlayed, s.childDismissed} {
		s.bag.AddFunc(sig.Close)
	}
	s.bag.AddFunc(s.errs.Close)

	s.artistsRange = reactive.NewRelay(p.Artists.TimeRange)
	s.tracksRange = reactive.NewRelay(p.Tracks.TimeRange)
	s.refresh = reactive.NewPulse()
	s.bag.AddFunc(s.artistsRange.Close)
	s.bag.AddFunc(s.tracksRange.Close)
	s.bag.AddFunc(s.refresh.Close)

	artists := reactive.SwitchMap(s.ctx, &s.bag, s.artistsRange,
		func(ctx context.Context, tr spotify.TimeRange) ([]spotify.Artist, error) {
			defer s.trace("top_artists", "time_range", tr)()
			return s.session.GetTopArtists(ctx, tr, TopArtistsLimit)
		}, s.queryOptions("top_artists")...)

	tracks := reactive.SwitchMap(s.ctx, &s.bag, s.tracksRange,
		func(ctx context.Context, tr spotify.TimeRange) ([]spotify.Track, error) {
			defer s.trace("top_tracks", "time_range", tr)()
			return s.session.GetTopTracks(ctx, tr, TopTracksLimit)
		}, s.queryOptions("top_tracks")...)

	recent := reactive.SwitchMap(s.ctx, &s.bag, s.refresh,
		func(ctx context.Context, _ struct{}) ([]spotify.RecentlyPlayedTrack, error) {
			defer s.trace("recently_played")()
			return s.session.GetRecentlyPlayedTracks(ctx, RecentlyPlayedLimit)
		}, s.queryOptions("recently_played")...)

	s.topArtists = reactive.MapEach(&s.bag, artists, NewArtistCell)
	s.topTracks = reactive.MapEach(&s.bag, tracks, NewTrackCell)
	s.recentlyPlayed = reactive.MapEach(&s.bag, recent, NewRecentCell)

	s.bag.Add(s.childDismissed.Subscribe(func(struct{}) { s.reload() }))
}

// reload re-reads the screen states after a child screen closed. The ranges
// are pushed only when both states are present; the refresh pulse always fires.
func (s *State) reload() {
	if p, ok := LoadPrerequisites(s.ctx, s.data, s.logger); ok {
		s.artistsRange.Accept(p.Artists.TimeRange)
		s.tracksRange.Accept(p.Tracks.TimeRange)
	} else {
		s.logger.Debug("child dismissed: screen state missing, keeping time ranges")
	}
	s.refresh.Accept(struct{}{})
}

func (s *State) queryOptions(stream string) []reactive.Option {
	return []reactive.Option{
		reactive.WithExecutor(s.exec),
		reactive.WithErrorSink(func(err error) {
			s.logger.Error("dashboard query failed", "stream", stream, "error", err)
			s.errs.Emit(err)
		}),
	}
}

// trace logs the start of a query cycle and returns the func logging its end.
func (s *State) trace(stream string, attrs ...any) func() {
	cycle := uuid.NewString()
	start := time.Now()
	s.logger.Debug("query start", append([]any{"stream", stream, "cycle", cycle}, attrs...)...)
	return func() {
		s.logger.Debug("query done", "stream", stream, "cycle", cycle, "duration", time.Since(start))
	}
}

// Ready reports whether the state is wired. An inert state is valid.
func (s *State) Ready() bool { return s.ready }

// ArtistSelected opens the artist's page from the given screen.
func (s *State) ArtistSelected(from browser.Origin, artist spotify.Artist) {
	s.links.Present(from, artist.ExternalURL())
}

// TrackSelected opens the track's page from the given screen.
func (s *State) TrackSelected(from browser.Origin, track spotify.Track) {
	s.links.Present(from, track.ExternalURL())
}

// RecentTrackSelected opens the played track's page from the given screen.
func (s *State) RecentTrackSelected(from browser.Origin, track spotify.RecentlyPlayedTrack) {
	s.links.Present(from, track.ExternalURL())
}

// PresentTopArtists is raised to open the top-artists screen.
func (s *State) PresentTopArtists() *reactive.Signal { return s.presentTopArtists }

// PresentTopTracks is raised to open the top-tracks screen.
func (s *State) PresentTopTracks() *reactive.Signal { return s.presentTopTracks }

// PresentRecentlyPlayed is raised to open the recently-played screen.
func (s *State) PresentRecentlyPlayed() *reactive.Signal { return s.presentRecentlyPlayed }

// ChildDismissed is raised when a pushed screen closes.
func (s *State) ChildDismissed() *reactive.Signal { return s.childDismissed }

// Errors carries query failures for display. Nil when inert.
func (s *State) Errors() *reactive.Subject[error] { return s.errs }

// TopArtists streams the top-artist cells. Nil when inert.
func (s *State) TopArtists() *reactive.Stream[[]ArtistCell] { return s.topArtists }

// TopTracks streams the top-track cells. Nil when inert.
func (s *State) TopTracks() *reactive.Stream[[]TrackCell] { return s.topTracks }

// RecentlyPlayed streams the recently-played cells. Nil when inert.
func (s *State) RecentlyPlayed() *reactive.Stream[[]RecentCell] { return s.recentlyPlayed }

// TimeRanges returns the ranges currently driving the top-items streams.
func (s *State) TimeRanges() (artists, tracks spotify.TimeRange) {
	if !s.ready {
		return "", ""
	}
	return s.artistsRange.Value(), s.tracksRange.Value()
}

// Close releases every subscription, cancels in-flight queries and runs the
// close hook. It is safe to call more than once.
func (s *State) Close() {
	if s.cancel == nil {
		return
	}
	s.bag.Close()
	s.cancel()
	s.cancel = nil
	if s.onClose != nil {
		s.onClose()
	}
	s.logger.Debug("dashboard state released")
}
