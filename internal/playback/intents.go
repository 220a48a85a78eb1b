package playback

import (
	"context"
	"time"

	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/resolve"
)

// PlayArticle plays the audio of a single article.
func (m *Machine) PlayArticle(ctx context.Context, articleKey string) error {
	return m.resolveAndPlay(ctx, resolve.ArticleRequest{ArticleKey: articleKey})
}

// PlayIssue plays every audio article of an issue, starting with the first.
func (m *Machine) PlayIssue(ctx context.Context, issue item.IssueKey) error {
	return m.resolveAndPlay(ctx, resolve.IssueRequest{Issue: issue})
}

// PlayIssueFromArticle plays the audio articles of an issue starting with
// articleKey.
func (m *Machine) PlayIssueFromArticle(ctx context.Context, issue item.IssueKey, articleKey string) error {
	return m.resolveAndPlay(ctx, resolve.IssueRequest{Issue: issue, ArticleKey: articleKey})
}

// PlayPodcast plays the podcast of an issue section.
func (m *Machine) PlayPodcast(ctx context.Context, issue item.IssueKey, sectionKey string) error {
	return m.resolveAndPlay(ctx, resolve.PodcastRequest{Issue: issue, SectionKey: sectionKey})
}

// resolveAndPlay resolves on the caller's goroutine. A failed resolution
// leaves the state untouched.
func (m *Machine) resolveAndPlay(ctx context.Context, req resolve.Request) error {
	it, err := m.resolver.Resolve(ctx, req)
	if err != nil {
		m.log.WithError(err).WithField("request", req.String()).Warn("could not resolve item")
		return err
	}
	return m.Play(it)
}

// Play plays an already resolved item.
func (m *Machine) Play(it item.PlayableItem) error {
	return m.send(PlayIntent{Item: it})
}

// TogglePlaying pauses or resumes, or retries the item after an error.
func (m *Machine) TogglePlaying() error {
	m.tracker.Track(TrackEvent{Action: ActionToggle, Item: ItemOf(m.State())})
	return m.send(ToggleIntent{})
}

// SeekTo seeks to an absolute position.
func (m *Machine) SeekTo(position time.Duration) error {
	m.tracker.Track(TrackEvent{Action: ActionSeekTo, Item: ItemOf(m.State()), Value: position})
	return m.send(SeekIntent{Mode: SeekAbsolute, Position: position})
}

// SeekForward jumps to the next break, or forward by the seek step.
func (m *Machine) SeekForward() error {
	m.tracker.Track(TrackEvent{Action: ActionSeekForward, Item: ItemOf(m.State())})
	return m.send(SeekIntent{Mode: SeekForward})
}

// SeekBackward jumps to the previous break, or back by the seek step.
func (m *Machine) SeekBackward() error {
	m.tracker.Track(TrackEvent{Action: ActionSeekBackward, Item: ItemOf(m.State())})
	return m.send(SeekIntent{Mode: SeekBackward})
}

func (m *Machine) SkipToNext() error {
	m.tracker.Track(TrackEvent{Action: ActionSkipNext, Item: ItemOf(m.State())})
	return m.send(SkipIntent{Forward: true})
}

func (m *Machine) SkipToPrevious() error {
	m.tracker.Track(TrackEvent{Action: ActionSkipPrevious, Item: ItemOf(m.State())})
	return m.send(SkipIntent{Forward: false})
}

// Dismiss stops playback and releases the session.
func (m *Machine) Dismiss() error {
	m.tracker.Track(TrackEvent{Action: ActionDismiss, Item: ItemOf(m.State())})
	return m.send(DismissIntent{})
}

// SetPlaybackSpeed stores the speed. The machine applies it when the
// preference store publishes it.
func (m *Machine) SetPlaybackSpeed(ctx context.Context, speed float64) error {
	if err := ValidatePlaybackSpeed(speed); err != nil {
		return err
	}
	m.tracker.Track(TrackEvent{Action: ActionPlaybackSpeed, Value: speed})
	return m.prefs.SetPlaybackSpeed(ctx, speed)
}

// SetAutoPlayNext stores the auto-play-next preference.
func (m *Machine) SetAutoPlayNext(ctx context.Context, enabled bool) error {
	if m.prefs.AutoPlayNext() == enabled {
		return nil
	}
	m.tracker.Track(TrackEvent{Action: ActionAutoPlayNext, Value: enabled})
	return m.prefs.SetAutoPlayNext(ctx, enabled)
}

func (m *Machine) send(ev Event) error {
	if !m.Send(ev) {
		return ErrNotRunning
	}
	return nil
}
