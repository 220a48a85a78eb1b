package playback

import (
	"context"
	"time"

	"github.com/llehouerou/tazaudio/internal/broadcast"
	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/playlist"
	"github.com/llehouerou/tazaudio/internal/resolve"
)

const saveTimeout = 5 * time.Second

// PlaylistSnapshot is the user's playlist at one point in time.
type PlaylistSnapshot struct {
	Items   []item.PlayableItem
	Current int // -1 when empty

	// version 0 is the initial empty snapshot and is never saved.
	version int
}

// Playlist returns the items of the user's playlist. Played items are added
// to it, enqueued articles too.
func (m *Machine) Playlist() []item.PlayableItem {
	m.playlistMu.RLock()
	defer m.playlistMu.RUnlock()
	return m.playlist.Items()
}

// PlaylistIndex returns the index of the last played playlist item, or -1.
func (m *Machine) PlaylistIndex() int {
	m.playlistMu.RLock()
	defer m.playlistMu.RUnlock()
	return m.playlist.CurrentIndex()
}

// PlaylistUpdates subscribes to playlist changes. The subscription starts
// with the current playlist.
func (m *Machine) PlaylistUpdates() *broadcast.Subscription[PlaylistSnapshot] {
	return m.playlistState.Subscribe()
}

// PlayFromPlaylist plays the playlist item at index. When it ends and
// auto-play-next is on, the following playlist items play too.
func (m *Machine) PlayFromPlaylist(index int) error {
	if err := m.checkPlaylistIndex(index); err != nil {
		return err
	}
	return m.send(playlistPlay{index: index})
}

// EnqueueArticle adds an article at the end of the playlist without
// playing it. Enqueueing an article already in the playlist does nothing.
func (m *Machine) EnqueueArticle(ctx context.Context, articleKey string) error {
	req := resolve.ArticleRequest{ArticleKey: articleKey}
	it, err := m.resolver.Resolve(ctx, req)
	if err != nil {
		m.log.WithError(err).WithField("request", req.String()).Warn("could not resolve item")
		return err
	}
	return m.send(playlistEnqueue{item: it})
}

// RemoveFromPlaylist removes the playlist item at index. Playback of that
// item, if any, goes on.
func (m *Machine) RemoveFromPlaylist(index int) error {
	if err := m.checkPlaylistIndex(index); err != nil {
		return err
	}
	return m.send(playlistRemove{index: index})
}

// MovePlaylistItem moves the playlist item at from to to.
func (m *Machine) MovePlaylistItem(from, to int) error {
	if err := m.checkPlaylistIndex(from); err != nil {
		return err
	}
	if err := m.checkPlaylistIndex(to); err != nil {
		return err
	}
	return m.send(playlistMove{from: from, to: to})
}

// ClearPlaylist empties the playlist.
func (m *Machine) ClearPlaylist() error {
	return m.send(playlistClear{})
}

func (m *Machine) checkPlaylistIndex(index int) error {
	m.playlistMu.RLock()
	defer m.playlistMu.RUnlock()
	if m.playlist.Item(index) == nil {
		return ErrOutOfRange
	}
	return nil
}

// editPlaylist applies fn under the playlist lock and publishes the result
// if fn reports a change.
func (m *Machine) editPlaylist(fn func(p *playlist.Playlist) bool) bool {
	m.playlistMu.Lock()
	changed := fn(m.playlist)
	m.playlistMu.Unlock()
	if changed {
		m.publishPlaylist()
	}
	return changed
}

func (m *Machine) publishPlaylist() {
	m.playlistMu.RLock()
	items := m.playlist.Items()
	current := m.playlist.CurrentIndex()
	m.playlistMu.RUnlock()

	prev := m.playlistState.Load()
	m.playlistState.Store(PlaylistSnapshot{Items: items, Current: current, version: prev.version + 1})
}

// recordPlayed moves the playlist cursor to it, adding it at the end if it
// is not in the playlist yet.
func (m *Machine) recordPlayed(it item.PlayableItem) {
	m.editPlaylist(func(p *playlist.Playlist) bool {
		if item.Equal(p.Current(), it) {
			return false
		}
		if i := p.IndexOf(it); i >= 0 {
			p.MoveTo(i)
			return true
		}
		p.Append([]item.PlayableItem{it}, true)
		return true
	})
}

func (m *Machine) playFromPlaylist(index int) {
	var it item.PlayableItem
	m.editPlaylist(func(p *playlist.Playlist) bool {
		it = p.MoveTo(index)
		return it != nil
	})
	if it == nil {
		m.log.WithField("index", index).Warn("playlist entry vanished")
		return
	}
	m.playlistFlow = true
	m.enqueueAndPlay(it)
}

func (m *Machine) onPlaylistEnqueue(it item.PlayableItem) {
	added := m.editPlaylist(func(p *playlist.Playlist) bool {
		if p.IndexOf(it) >= 0 {
			return false
		}
		p.Append([]item.PlayableItem{it}, false)
		return true
	})
	if !added {
		m.log.WithField("item", it.String()).Debug("already in playlist")
	}
}

func (m *Machine) onPlaylistRemove(index int) {
	var removedCurrent bool
	m.editPlaylist(func(p *playlist.Playlist) bool {
		removedCurrent = index == p.CurrentIndex()
		return p.RemoveAt(index)
	})
	// The cursor no longer marks what plays, so there is no "next" item.
	if removedCurrent {
		m.playlistFlow = false
	}
}

func (m *Machine) onPlaylistMove(from, to int) {
	m.editPlaylist(func(p *playlist.Playlist) bool {
		return p.Move(from, to)
	})
}

func (m *Machine) onPlaylistClear() {
	m.playlistFlow = false
	m.editPlaylist(func(p *playlist.Playlist) bool {
		if p.IsEmpty() {
			return false
		}
		p.Clear()
		return true
	})
}

// continuePlaylist plays the playlist item after the one that just ended.
// It only applies to items started from the playlist, with auto-play-next
// on. It returns false when nothing follows.
func (m *Machine) continuePlaylist() bool {
	if !m.playlistFlow || !m.autoPlayNext {
		return false
	}
	var next item.PlayableItem
	m.editPlaylist(func(p *playlist.Playlist) bool {
		next = p.Next()
		return next != nil
	})
	if next == nil {
		return false
	}
	m.log.WithField("item", next.String()).Debug("continuing with next playlist item")
	m.enqueueAndPlay(next)
	return true
}

func (m *Machine) onPlaylistRestored(e playlistRestored) {
	restored := m.editPlaylist(func(p *playlist.Playlist) bool {
		if !p.IsEmpty() {
			return false
		}
		*p = *playlist.FromItems(e.current, e.items)
		return true
	})
	if !restored {
		m.log.Debug("playlist changed before restore finished, keeping it")
		return
	}
	m.log.WithField("items", len(e.items)).Debug("playlist restored")
}

// restoreFromStore loads the saved playlist and resolves its items again.
// Entries that no longer resolve are skipped.
func (m *Machine) restoreFromStore(ctx context.Context) {
	reqs, current, err := m.store.LoadPlaylist(ctx)
	if err != nil {
		m.log.WithError(err).Warn("could not load playlist")
		return
	}
	if len(reqs) == 0 {
		return
	}

	items := make([]item.PlayableItem, 0, len(reqs))
	restoredCurrent := -1
	for i, req := range reqs {
		it, err := m.resolver.Resolve(ctx, req)
		if err != nil {
			m.log.WithError(err).WithField("request", req.String()).Warn("dropping playlist entry")
			continue
		}
		if i <= current {
			restoredCurrent = len(items)
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return
	}
	m.Send(playlistRestored{items: items, current: max(restoredCurrent, 0)})
}

// persistPlaylist saves playlist snapshots as they come, until the machine
// shuts down. The snapshot pending at shutdown is saved before returning.
// Saves outlive ctx, so that items recorded while the machine stops are
// not lost.
func (m *Machine) persistPlaylist(ctx context.Context, sub *broadcast.Subscription[PlaylistSnapshot]) {
	defer sub.Cancel()
	ctx = context.WithoutCancel(ctx)

	save := func(snap PlaylistSnapshot) {
		if snap.version == 0 {
			return
		}
		reqs := make([]resolve.Request, 0, len(snap.Items))
		for _, it := range snap.Items {
			reqs = append(reqs, resolve.RequestFor(it))
		}
		ctx, cancel := context.WithTimeout(ctx, saveTimeout)
		defer cancel()
		if err := m.store.SavePlaylist(ctx, reqs, snap.Current); err != nil {
			m.log.WithError(err).Error("could not save playlist")
		}
	}

	for {
		select {
		case <-sub.Done:
			select {
			case snap := <-sub.C:
				save(snap)
			default:
			}
			return
		case snap := <-sub.C:
			save(snap)
		}
	}
}
