package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/spotifydaily/internal/dashboard"
	"github.com/jask/spotifydaily/internal/reactive"
)

type artistsMsg []dashboard.ArtistCell

type tracksMsg []dashboard.TrackCell

type recentMsg []dashboard.RecentCell

type navigateMsg struct {
	kind detailKind
}

type errMsg struct{ err error }

// updatesMsg carries everything posted since the last drain, oldest first.
type updatesMsg []tea.Msg

// mailbox moves messages from reactive handlers into the bubbletea loop
// without ever blocking the handler, which may run on the UI goroutine.
type mailbox struct {
	mu      sync.Mutex
	pending []tea.Msg
	notify  chan struct{}
	closed  bool
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

func (m *mailbox) post(msg tea.Msg) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.pending = append(m.pending, msg)
	m.mu.Unlock()
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *mailbox) drain() []tea.Msg {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.pending
	m.pending = nil
	return out
}

func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.notify)
}

// waitForUpdate blocks until something was posted and returns it as one batch.
// A closed mailbox yields nil, which ends the polling loop.
func waitForUpdate(m *mailbox) tea.Cmd {
	return func() tea.Msg {
		for range m.notify {
			if batch := m.drain(); len(batch) > 0 {
				return updatesMsg(batch)
			}
		}
		return nil
	}
}

// bindState forwards the state's streams and intents into box. Subscriptions
// are released with bag.
func bindState(state *dashboard.State, box *mailbox, bag *reactive.Bag) {
	bag.Add(state.TopArtists().Subscribe(func(cells []dashboard.ArtistCell) { box.post(artistsMsg(cells)) }))
	bag.Add(state.TopTracks().Subscribe(func(cells []dashboard.TrackCell) { box.post(tracksMsg(cells)) }))
	bag.Add(state.RecentlyPlayed().Subscribe(func(cells []dashboard.RecentCell) { box.post(recentMsg(cells)) }))
	bag.Add(state.Errors().Subscribe(func(err error) { box.post(errMsg{err}) }))

	bag.Add(state.PresentTopArtists().Subscribe(func(struct{}) { box.post(navigateMsg{kind: detailArtists}) }))
	bag.Add(state.PresentTopTracks().Subscribe(func(struct{}) { box.post(navigateMsg{kind: detailTracks}) }))
	bag.Add(state.PresentRecentlyPlayed().Subscribe(func(struct{}) { box.post(navigateMsg{kind: detailRecent}) }))
}
