package playback

import (
	"context"
	"time"

	"github.com/llehouerou/tazaudio/internal/transport"
)

// sampler polls the position of one session.
type sampler struct {
	session transport.Session
	cancel  context.CancelFunc
	done    chan struct{}
}

// startSampler starts polling session, replacing a sampler of another
// session.
func (m *Machine) startSampler(session transport.Session) {
	if m.sampler != nil && m.sampler.session == session {
		return
	}
	m.stopSampler()

	ctx, cancel := context.WithCancel(m.ctx)
	s := &sampler{session: session, cancel: cancel, done: make(chan struct{})}
	m.sampler = s
	go func() {
		defer close(s.done)
		m.pollProgress(ctx, session)
	}()
}

func (m *Machine) stopSampler() {
	if m.sampler == nil {
		return
	}
	m.sampler.cancel()
	<-m.sampler.done
	m.sampler = nil
}

func (m *Machine) pollProgress(ctx context.Context, session transport.Session) {
	ticker := time.NewTicker(m.cfg.ProgressInterval)
	defer ticker.Stop()

	var last *Progress
	sample := func() {
		p := progressOf(session)
		if !p.equal(last) {
			m.progress.Store(p)
			last = p
		}
	}

	sample()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample()
		}
	}
}

// progressOf returns nil while the duration is unknown.
func progressOf(session transport.Session) *Progress {
	dur := session.Duration()
	if dur <= 0 {
		return nil
	}
	return &Progress{Position: clampPosition(session.CurrentPosition(), dur), Duration: dur}
}
