package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/transport"
)

// sessionListener forwards the events of one session to the machine loop.
type sessionListener struct {
	m       *Machine
	session transport.Session
}

func (l *sessionListener) OnTransportEvent(e transport.Event) {
	l.m.Send(TransportEvent{Session: l.session, Event: e})
}

// enqueueAndPlay makes it the current item. With a session it is prepared
// right away, otherwise it waits in AudioQueued while a session connects.
func (m *Machine) enqueueAndPlay(it item.PlayableItem) {
	prev, next, _ := m.update(func(prev State) (State, bool) {
		switch s := prev.(type) {
		case ControllerReady, AudioPrepare, AudioReady, AudioPlaying, AudioError:
			return AudioPrepare{Session: SessionOf(s), Item: it}, true
		case AudioQueued, Init, ControllerError:
			return AudioQueued{Item: it}, true
		}
		return prev, false
	})

	switch n := next.(type) {
	case AudioPrepare:
		m.prepare(n.Session, n.Item)
	case AudioQueued:
		switch prev.(type) {
		case Init, ControllerError:
			m.connect()
		}
	}
}

// connect opens a session in the background. The result comes back to the
// loop as sessionConnected or sessionFailed.
func (m *Machine) connect() {
	ctx, cancel := context.WithTimeout(m.ctx, m.cfg.ConnectTimeout)
	go func() {
		defer cancel()
		session, err := m.connector.Connect(ctx)
		if err != nil {
			m.Send(sessionFailed{err: fmt.Errorf("connect player: %w", err)})
			return
		}
		if !m.Send(sessionConnected{session: session}) {
			session.Release()
		}
	}()
}

func (m *Machine) onSessionConnected(session transport.Session) {
	if media := session.CurrentMediaItem(); media != nil {
		m.log.WithField("media_id", media.ID).Error("session was already playing audio, stopping it")
		session.Stop()
		session.ClearMediaItems()
	}

	prev, next, ok := m.update(func(prev State) (State, bool) {
		switch s := prev.(type) {
		case Init, ControllerError:
			return ControllerReady{Session: session}, true
		case AudioQueued:
			return AudioPrepare{Session: session, Item: s.Item}, true
		case ControllerReady, AudioPrepare, AudioReady, AudioPlaying, AudioError:
			return prev, false
		}
		return prev, false
	})
	if !ok {
		m.log.WithField("state", prev.String()).Error("session connected in a state that already has one, releasing it")
		session.Release()
		return
	}

	m.listener = &sessionListener{m: m, session: session}
	session.AddListener(m.listener)
	session.SetPlaybackSpeed(m.speed)
	m.startSampler(session)

	if n, ok := next.(AudioPrepare); ok {
		m.prepare(n.Session, n.Item)
	}
}

func (m *Machine) onSessionFailed(err error) {
	prev, _, ok := m.update(func(prev State) (State, bool) {
		switch prev.(type) {
		case AudioQueued, Init:
			return ControllerError{Cause: err}, true
		}
		return prev, false
	})
	if !ok {
		m.log.WithError(err).WithField("state", prev.String()).Warn("ignoring connection failure")
		return
	}
	m.log.WithError(err).Error("could not connect player")
}

// prepare submits it to the session and starts playback.
func (m *Machine) prepare(session transport.Session, it item.PlayableItem) {
	items, start := mediaItems(it)
	session.SetMediaItems(items, start, 0)
	session.SetRepeatMode(repeatModeFor(it, m.autoPlayNext))
	session.Prepare()
	session.Play()
}

func (m *Machine) toggle() {
	state := m.State()
	switch s := state.(type) {
	case AudioError:
		m.log.WithField("item", s.Item.String()).Info("retrying after error")
		m.enqueueAndPlay(s.Item)
	case AudioPlaying, AudioPrepare, AudioReady:
		toggleSession(SessionOf(s))
	case Init, AudioQueued, ControllerReady, ControllerError:
		m.log.WithField("state", state.String()).Debug("nothing to toggle")
	}
}

func toggleSession(session transport.Session) {
	switch session.PlaybackState() {
	case transport.StateReady:
		if session.IsPlaying() {
			session.Pause()
		} else {
			session.Play()
		}
	case transport.StateBuffering:
		if session.PlayWhenReady() {
			session.Pause()
		} else {
			session.Play()
		}
	case transport.StateEnded, transport.StateIdle:
	}
}

func (m *Machine) seek(e SeekIntent) {
	state := m.State()
	session := SessionOf(state)
	if session == nil {
		return
	}
	dur := session.Duration()
	switch e.Mode {
	case SeekAbsolute:
		session.SeekTo(clampPosition(e.Position, dur))
	case SeekForward, SeekBackward:
		var breaks []time.Duration
		if it := ItemOf(state); it != nil {
			breaks = it.CurrentAudio().BreakDurations()
		}
		target := seekTarget(session.CurrentPosition(), dur, breaks,
			e.Mode == SeekForward, m.cfg.SeekStep, m.cfg.BreakMargin)
		session.SeekTo(target)
	}
}

func (m *Machine) skip(forward bool) {
	session := SessionOf(m.State())
	if session == nil {
		return
	}
	if forward {
		session.SeekToNextMediaItem()
	} else {
		session.SeekToPreviousMediaItem()
	}
}

// dismiss stops playback, releases the session and returns to Init.
// Dismissing in Init only republishes Init.
func (m *Machine) dismiss() {
	m.stopSampler()
	if session := SessionOf(m.State()); session != nil {
		session.Stop()
		if m.listener != nil {
			session.RemoveListener(m.listener)
		}
		session.ClearMediaItems()
		session.Release()
	}
	m.listener = nil
	m.force(Init{})
	m.progress.Store(nil)
}

func (m *Machine) onTransportEvent(e TransportEvent) {
	if current := SessionOf(m.State()); current == nil || current != e.Session {
		m.log.WithField("event", fmt.Sprint(e.Event)).Debug("dropping event of stale session")
		return
	}

	switch ev := e.Event.(type) {
	case transport.IsPlayingChanged:
		if ev.Playing {
			m.reconcile(func(s transport.Session, it item.PlayableItem) State {
				return AudioPlaying{Session: s, Item: it}
			})
		} else {
			m.reconcile(func(s transport.Session, it item.PlayableItem) State {
				return AudioReady{Session: s, Item: it}
			})
		}
	case transport.PlayerErrorEvent:
		perr := ClassifyPlaybackError(ev.Err)
		m.log.WithError(ev.Err).WithField("kind", perr.Kind.String()).Error("playback failed")
		m.reconcile(func(s transport.Session, it item.PlayableItem) State {
			return AudioError{Session: s, Item: it, Err: perr}
		})
	case transport.PlaybackStateChanged:
		if ev.State == transport.StateEnded {
			m.log.Debug("playback ended")
			if !m.continuePlaylist() {
				m.dismiss()
			}
		}
	case transport.PositionDiscontinuity:
		m.onPositionDiscontinuity(e.Session, ev)
	case transport.MediaItemTransition:
		m.onMediaItemTransition(e.Session, ev)
	}
}

// reconcile moves to the state built by next, with the item positioned on
// the session's current media. If that media is not part of the item the
// transport went out of sync and the item is submitted again.
func (m *Machine) reconcile(next func(transport.Session, item.PlayableItem) State) {
	var resync item.PlayableItem
	var mediaID string
	m.update(func(prev State) (State, bool) {
		resync, mediaID = nil, ""
		session, it := SessionOf(prev), ItemOf(prev)
		if session == nil || it == nil {
			return prev, false
		}
		media := session.CurrentMediaItem()
		if media == nil {
			return prev, false
		}
		mediaID = media.ID
		positioned, ok := it.WithCurrentMedia(media.ID)
		if !ok {
			resync = it
			return prev, false
		}
		return next(session, positioned), true
	})
	if resync != nil {
		m.log.WithFields(logrus.Fields{"item": resync.String(), "media_id": mediaID}).
			Warn("transport is playing another media, submitting item again")
		m.enqueueAndPlay(resync)
	}
}

// onPositionDiscontinuity pauses when a repeated single media restarts, so
// that an article played alone does not loop.
func (m *Machine) onPositionDiscontinuity(session transport.Session, ev transport.PositionDiscontinuity) {
	if ev.Reason == transport.DiscontinuityAutoTransition &&
		ev.Old.MediaIndex == ev.New.MediaIndex &&
		ev.New.Position == 0 && ev.Old.Position != 0 {
		m.log.Debug("media repeated, pausing")
		session.Pause()
	}
}

type transitionAction int

const (
	transitionNone transitionAction = iota
	transitionResync
	transitionPause
)

func (m *Machine) onMediaItemTransition(session transport.Session, ev transport.MediaItemTransition) {
	if ev.Item == nil {
		return
	}
	var auto bool
	switch ev.Reason {
	case transport.TransitionAuto:
		auto = true
	case transport.TransitionSeek:
	case transport.TransitionRepeat, transport.TransitionPlaylistChanged:
		return
	}

	mediaID := ev.Item.ID
	var (
		action transitionAction
		resync item.PlayableItem
	)
	m.update(func(prev State) (State, bool) {
		action, resync = transitionNone, nil
		it := ItemOf(prev)
		if it == nil {
			return prev, false
		}
		switch it := it.(type) {
		case item.ArticleAudio, item.PodcastAudio:
			if !it.Contains(mediaID) && !isPreparing(prev) {
				action, resync = transitionResync, it
			}
			return prev, false
		case item.IssuePlaylist:
			idx := it.IndexOf(mediaID)
			switch {
			case idx < 0:
				if !isPreparing(prev) {
					action, resync = transitionResync, it
				}
				return prev, false
			case idx == it.StartIndex && auto:
				// Wrapped around to where the playlist started.
				action = transitionPause
				if idx == it.CurrentIndex {
					return prev, false
				}
				positioned, _ := it.WithCurrentIndex(idx)
				return WithItem(prev, positioned), true
			case idx != it.CurrentIndex:
				positioned, _ := it.WithCurrentIndex(idx)
				return WithItem(prev, positioned), true
			}
		}
		return prev, false
	})

	switch action {
	case transitionPause:
		m.log.Debug("playlist wrapped around, pausing")
		session.Pause()
	case transitionResync:
		m.log.WithFields(logrus.Fields{"item": resync.String(), "media_id": mediaID}).
			Error("transport moved to unknown media, submitting item again")
		m.enqueueAndPlay(resync)
	case transitionNone:
	}
}

func (m *Machine) onSpeedChanged(speed float64) {
	m.speed = speed
	if session := SessionOf(m.State()); session != nil {
		session.SetPlaybackSpeed(speed)
	}
}

func (m *Machine) onAutoPlayNextChanged(enabled bool) {
	m.autoPlayNext = enabled
	state := m.State()
	session, it := SessionOf(state), ItemOf(state)
	if session == nil || it == nil {
		return
	}
	if _, ok := it.(item.IssuePlaylist); ok {
		session.SetRepeatMode(repeatModeFor(it, enabled))
	}
}
