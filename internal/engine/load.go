package engine

import (
	"context"
	"errors"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tazaudio/internal/transport"
)

// loadLocked replaces the current track with items[idx], decoded in the
// background. The session buffers until the track is attached.
func (s *Session) loadLocked(idx int, position time.Duration) {
	s.unloadLocked()
	s.gen++
	gen := s.gen
	item := s.items[idx]

	ctx, cancel := context.WithTimeout(context.Background(), s.c.opts.HTTPTimeout)
	s.cancelLoad = cancel
	s.setStateLocked(transport.StateBuffering)

	go func() {
		defer cancel()
		streamer, format, err := s.c.open(ctx, item.URI)
		s.attach(gen, item, position, streamer, format, err)
	}()
}

func (s *Session) attach(gen uint64, item transport.MediaItem, position time.Duration,
	streamer beep.StreamSeekCloser, format beep.Format, err error,
) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.released {
		if streamer != nil {
			streamer.Close()
		}
		return
	}
	s.cancelLoad = nil
	log := s.log.WithFields(logrus.Fields{"media_id": item.ID, "uri": item.URI})
	if err != nil {
		var perr *transport.PlaybackError
		if !errors.As(err, &perr) {
			perr = playbackError(transport.ErrorUnspecified, err)
		}
		log.WithError(perr).Warn("could not load audio")
		s.failLocked(perr)
		return
	}

	t := &track{
		streamer: streamer,
		format:   format,
		duration: format.SampleRate.D(streamer.Len()),
	}
	if position > 0 {
		_ = streamer.Seek(min(format.SampleRate.N(position), streamer.Len()))
	}
	t.resampler = beep.ResampleRatio(resampleQuality, s.ratio(format), streamer)
	t.ctrl = &beep.Ctrl{Streamer: t.resampler, Paused: true}
	s.track = t
	s.startLocked(gen)
	log.WithField("duration", t.duration).Debug("audio ready")

	s.setStateLocked(transport.StateReady)
	if s.playWhenReady {
		s.setPlayingLocked(true)
	}
}

// startLocked hands the track to the speaker. The callback runs on the
// speaker goroutine with the speaker locked, so it only schedules work.
func (s *Session) startLocked(gen uint64) {
	s.c.out.Play(beep.Seq(s.track.ctrl, beep.Callback(func() {
		go s.onTrackEnd(gen)
	})))
}

func (s *Session) failLocked(perr *transport.PlaybackError) {
	s.unloadLocked()
	s.setStateLocked(transport.StateIdle)
	s.emitLocked(transport.PlayerErrorEvent{Err: perr})
}

// unloadLocked detaches the current track from the speaker and cancels a
// pending load.
func (s *Session) unloadLocked() {
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
		s.gen++
	}
	t := s.track
	if t == nil {
		return
	}
	s.setPlayingLocked(false)
	s.c.out.Lock()
	t.ctrl.Streamer = nil
	s.c.out.Unlock()
	if err := t.streamer.Close(); err != nil {
		s.log.WithError(err).Debug("closing audio stream")
	}
	s.track = nil
}

func (s *Session) onTrackEnd(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || s.track == nil || s.released {
		return
	}
	if err := s.track.streamer.Err(); err != nil {
		s.failLocked(playbackError(transport.ErrorDecodingFailed, err))
		return
	}

	last := s.index == len(s.items)-1
	switch {
	case s.repeat == transport.RepeatOne, s.repeat == transport.RepeatAll && len(s.items) == 1:
		s.rewindLocked(gen)
	case !last:
		s.moveLocked(s.index+1, transport.TransitionAuto)
	case s.repeat == transport.RepeatAll:
		s.moveLocked(0, transport.TransitionAuto)
	default:
		s.unloadLocked()
		s.playWhenReady = false
		s.setStateLocked(transport.StateEnded)
	}
}

// rewindLocked restarts the current track from the beginning.
func (s *Session) rewindLocked(gen uint64) {
	t := s.track
	old := transport.PositionInfo{MediaIndex: s.index, Position: s.positionLocked()}
	s.c.out.Lock()
	err := t.streamer.Seek(0)
	s.c.out.Unlock()
	if err != nil {
		s.failLocked(playbackError(transport.ErrorDecodingFailed, err))
		return
	}
	// The finished resampler cannot be reused.
	t.resampler = beep.ResampleRatio(resampleQuality, s.ratio(t.format), t.streamer)
	t.ctrl = &beep.Ctrl{Streamer: t.resampler, Paused: !s.playing}
	s.startLocked(gen)
	s.emitLocked(transport.PositionDiscontinuity{
		Old:    old,
		New:    transport.PositionInfo{MediaIndex: s.index},
		Reason: transport.DiscontinuityAutoTransition,
	})
	s.emitLocked(transport.MediaItemTransition{Item: s.currentLocked(), Reason: transport.TransitionRepeat})
}
