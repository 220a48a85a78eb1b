package engine

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tazaudio/internal/transport"
)

const testRate = beep.SampleRate(44100)

// fakeOutput stands in for the speaker. Tests pull audio with drain.
type fakeOutput struct {
	audio sync.Mutex

	mu        sync.Mutex
	streamers []beep.Streamer
}

func (o *fakeOutput) Play(s ...beep.Streamer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.streamers = append(o.streamers, s...)
}

func (o *fakeOutput) Lock()   { o.audio.Lock() }
func (o *fakeOutput) Unlock() { o.audio.Unlock() }

// drain streams up to d of audio from every attached streamer, dropping the
// ones that finish.
func (o *fakeOutput) drain(d time.Duration) {
	o.mu.Lock()
	streamers := slices.Clone(o.streamers)
	o.mu.Unlock()

	buf := make([][2]float64, 512)
	var finished []beep.Streamer
	o.audio.Lock()
	for _, s := range streamers {
		for left := testRate.N(d); left > 0; left -= len(buf) {
			if _, ok := s.Stream(buf); !ok {
				finished = append(finished, s)
				break
			}
		}
	}
	o.audio.Unlock()

	o.mu.Lock()
	o.streamers = slices.DeleteFunc(o.streamers, func(s beep.Streamer) bool {
		return slices.Contains(finished, s)
	})
	o.mu.Unlock()
}

type recorder struct {
	mu     sync.Mutex
	events []transport.Event
}

func (r *recorder) OnTransportEvent(e transport.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) has(match func(transport.Event) bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.ContainsFunc(r.events, match)
}

func (r *recorder) waitFor(t *testing.T, match func(transport.Event) bool, msg string) {
	t.Helper()
	require.Eventually(t, func() bool { return r.has(match) }, 2*time.Second, 5*time.Millisecond, msg)
}

func isState(state transport.PlaybackState) func(transport.Event) bool {
	return func(e transport.Event) bool {
		sc, ok := e.(transport.PlaybackStateChanged)
		return ok && sc.State == state
	}
}

func isPlaying(playing bool) func(transport.Event) bool {
	return func(e transport.Event) bool {
		ip, ok := e.(transport.IsPlayingChanged)
		return ok && ip.Playing == playing
	}
}

func isError(code transport.ErrorCode) func(transport.Event) bool {
	return func(e transport.Event) bool {
		pe, ok := e.(transport.PlayerErrorEvent)
		return ok && pe.Err.Code == code
	}
}

func isTransition(id string, reason transport.TransitionReason) func(transport.Event) bool {
	return func(e transport.Event) bool {
		mt, ok := e.(transport.MediaItemTransition)
		return ok && mt.Item != nil && mt.Item.ID == id && mt.Reason == reason
	}
}

func wavBytes(t *testing.T, d time.Duration) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tmp.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	format := beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(testRate.N(d)), format))
	require.NoError(t, f.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func writeWAV(t *testing.T, name string, d time.Duration) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, wavBytes(t, d), 0o644))
	return path
}

type testEngine struct {
	c   *Connector
	out *fakeOutput
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	log, _ := test.NewNullLogger()
	out := &fakeOutput{}
	c := New(Options{SampleRate: testRate, HTTPTimeout: 2 * time.Second}, log)
	c.out = out
	c.init = func() error { return nil }
	return &testEngine{c: c, out: out}
}

func (e *testEngine) session(t *testing.T) (*Session, *recorder) {
	t.Helper()
	ts, err := e.c.Connect(context.Background())
	require.NoError(t, err)
	s, ok := ts.(*Session)
	require.True(t, ok)
	t.Cleanup(s.Release)
	rec := &recorder{}
	s.AddListener(rec)
	return s, rec
}

func TestSession_PrepareAndPlay(t *testing.T) {
	e := newTestEngine(t)
	s, rec := e.session(t)
	path := writeWAV(t, "a.wav", time.Second)

	s.SetMediaItems([]transport.MediaItem{{ID: "a", URI: path}}, 0, 0)
	s.Prepare()
	s.Play()

	rec.waitFor(t, isState(transport.StateReady), "ready")
	rec.waitFor(t, isPlaying(true), "playing")
	assert.True(t, rec.has(isState(transport.StateBuffering)))
	assert.Equal(t, transport.StateReady, s.PlaybackState())
	assert.True(t, s.IsPlaying())
	assert.Equal(t, time.Second, s.Duration())
	assert.Equal(t, "a", s.CurrentMediaItem().ID)

	s.Pause()
	rec.waitFor(t, isPlaying(false), "paused")
	assert.False(t, s.PlayWhenReady())
}

func TestSession_FileURI(t *testing.T) {
	e := newTestEngine(t)
	s, rec := e.session(t)
	path := writeWAV(t, "a.wav", time.Second)

	s.SetMediaItems([]transport.MediaItem{{ID: "a", URI: "file://" + path}}, 0, 0)
	s.Prepare()
	rec.waitFor(t, isState(transport.StateReady), "ready")
	assert.False(t, s.IsPlaying(), "not playing without Play")
}

func TestSession_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o644))
	broken := filepath.Join(dir, "broken.wav")
	require.NoError(t, os.WriteFile(broken, []byte("not a wav file"), 0o644))

	tests := []struct {
		name string
		uri  string
		code transport.ErrorCode
	}{
		{"missing file", filepath.Join(dir, "missing.mp3"), transport.ErrorIOFileNotFound},
		{"unsupported format", text, transport.ErrorDecodingFormatUnsupported},
		{"broken file", broken, transport.ErrorDecodingFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			s, rec := e.session(t)
			s.SetMediaItems([]transport.MediaItem{{ID: "x", URI: tt.uri}}, 0, 0)
			s.Prepare()
			rec.waitFor(t, isError(tt.code), tt.code.String())
			assert.Equal(t, transport.StateIdle, s.PlaybackState())
		})
	}
}

func TestSession_HTTP(t *testing.T) {
	audio := wavBytes(t, time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.wav":
			w.Header().Set("Content-Type", "audio/wav")
			_, _ = w.Write(audio)
		case "/page.wav":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		name  string
		path  string
		match func(transport.Event) bool
	}{
		{"ok", "/a.wav", isState(transport.StateReady)},
		{"not found", "/missing.wav", isError(transport.ErrorIOBadHTTPStatus)},
		{"wrong content type", "/page.wav", isError(transport.ErrorIOInvalidHTTPContentType)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			s, rec := e.session(t)
			s.SetMediaItems([]transport.MediaItem{{ID: "x", URI: srv.URL + tt.path}}, 0, 0)
			s.Prepare()
			rec.waitFor(t, tt.match, tt.name)
		})
	}
}

func TestSession_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/a.wav"
	srv.Close()

	e := newTestEngine(t)
	s, rec := e.session(t)
	s.SetMediaItems([]transport.MediaItem{{ID: "x", URI: url}}, 0, 0)
	s.Prepare()
	rec.waitFor(t, isError(transport.ErrorIONetworkConnectionFailed), "connection failed")
}

func TestSession_AutoAdvanceThenEnded(t *testing.T) {
	e := newTestEngine(t)
	s, rec := e.session(t)
	items := []transport.MediaItem{
		{ID: "a", URI: writeWAV(t, "a.wav", 200*time.Millisecond)},
		{ID: "b", URI: writeWAV(t, "b.wav", 200*time.Millisecond)},
	}
	s.SetMediaItems(items, 0, 0)
	s.Prepare()
	s.Play()
	rec.waitFor(t, isPlaying(true), "playing")

	e.out.drain(time.Second)
	rec.waitFor(t, isTransition("b", transport.TransitionAuto), "auto transition")
	require.Eventually(t, func() bool {
		return s.CurrentMediaIndex() == 1 && s.IsPlaying()
	}, 2*time.Second, 5*time.Millisecond)

	e.out.drain(time.Second)
	rec.waitFor(t, isState(transport.StateEnded), "ended")
	assert.False(t, s.IsPlaying())
}

func TestSession_RepeatAllWraps(t *testing.T) {
	e := newTestEngine(t)
	s, rec := e.session(t)
	items := []transport.MediaItem{
		{ID: "a", URI: writeWAV(t, "a.wav", 200*time.Millisecond)},
		{ID: "b", URI: writeWAV(t, "b.wav", 200*time.Millisecond)},
	}
	s.SetMediaItems(items, 1, 0)
	s.SetRepeatMode(transport.RepeatAll)
	s.Prepare()
	s.Play()
	rec.waitFor(t, isPlaying(true), "playing")

	e.out.drain(time.Second)
	rec.waitFor(t, isTransition("a", transport.TransitionAuto), "wrapped to first item")
}

func TestSession_RepeatOneRewinds(t *testing.T) {
	e := newTestEngine(t)
	s, rec := e.session(t)
	s.SetMediaItems([]transport.MediaItem{{ID: "a", URI: writeWAV(t, "a.wav", 200*time.Millisecond)}}, 0, 0)
	s.SetRepeatMode(transport.RepeatOne)
	s.Prepare()
	s.Play()
	rec.waitFor(t, isPlaying(true), "playing")

	e.out.drain(time.Second)
	rec.waitFor(t, func(ev transport.Event) bool {
		pd, ok := ev.(transport.PositionDiscontinuity)
		return ok && pd.Reason == transport.DiscontinuityAutoTransition &&
			pd.Old.MediaIndex == 0 && pd.New.MediaIndex == 0 &&
			pd.Old.Position > 0 && pd.New.Position == 0
	}, "rewind discontinuity")
	assert.True(t, rec.has(isTransition("a", transport.TransitionRepeat)))
	assert.Equal(t, transport.StateReady, s.PlaybackState())
}

func TestSession_SeekAndSkip(t *testing.T) {
	e := newTestEngine(t)
	s, rec := e.session(t)
	items := []transport.MediaItem{
		{ID: "a", URI: writeWAV(t, "a.wav", 5*time.Second)},
		{ID: "b", URI: writeWAV(t, "b.wav", time.Second)},
	}
	s.SetMediaItems(items, 0, 0)
	s.Prepare()
	rec.waitFor(t, isState(transport.StateReady), "ready")

	s.SeekTo(4 * time.Second)
	assert.Equal(t, 4*time.Second, s.CurrentPosition())
	assert.True(t, rec.has(func(ev transport.Event) bool {
		pd, ok := ev.(transport.PositionDiscontinuity)
		return ok && pd.Reason == transport.DiscontinuitySeek && pd.New.Position == 4*time.Second
	}))

	// Far enough into the item, previous restarts it.
	s.SeekToPreviousMediaItem()
	assert.Equal(t, time.Duration(0), s.CurrentPosition())
	assert.Equal(t, 0, s.CurrentMediaIndex())

	s.SeekToNextMediaItem()
	rec.waitFor(t, isTransition("b", transport.TransitionSeek), "skip to next")
	assert.Equal(t, 1, s.CurrentMediaIndex())

	// No wrap without repeat all.
	s.SeekToNextMediaItem()
	assert.Equal(t, 1, s.CurrentMediaIndex())
}

func TestSession_StartPosition(t *testing.T) {
	e := newTestEngine(t)
	s, rec := e.session(t)
	s.SetMediaItems([]transport.MediaItem{{ID: "a", URI: writeWAV(t, "a.wav", 2*time.Second)}}, 0, time.Second)
	assert.Equal(t, time.Second, s.CurrentPosition())
	s.Prepare()
	rec.waitFor(t, isState(transport.StateReady), "ready")
	assert.Equal(t, time.Second, s.CurrentPosition())
}

func TestSession_PlaybackSpeed(t *testing.T) {
	e := newTestEngine(t)
	s, rec := e.session(t)
	s.SetMediaItems([]transport.MediaItem{{ID: "a", URI: writeWAV(t, "a.wav", time.Second)}}, 0, 0)
	s.SetPlaybackSpeed(1.5)
	s.Prepare()
	rec.waitFor(t, isState(transport.StateReady), "ready")

	s.mu.Lock()
	assert.InDelta(t, 1.5, s.track.resampler.Ratio(), 1e-9)
	s.mu.Unlock()

	s.SetPlaybackSpeed(0.5)
	s.mu.Lock()
	assert.InDelta(t, 0.5, s.track.resampler.Ratio(), 1e-9)
	s.mu.Unlock()
}

func TestSession_StopAndRelease(t *testing.T) {
	e := newTestEngine(t)
	s, rec := e.session(t)
	s.SetMediaItems([]transport.MediaItem{{ID: "a", URI: writeWAV(t, "a.wav", time.Second)}}, 0, 0)
	s.Prepare()
	s.Play()
	rec.waitFor(t, isPlaying(true), "playing")

	s.Stop()
	rec.waitFor(t, isState(transport.StateIdle), "idle")
	assert.False(t, s.IsPlaying())
	assert.Zero(t, s.Duration())

	s.ClearMediaItems()
	assert.Nil(t, s.CurrentMediaItem())
	assert.Equal(t, -1, s.CurrentMediaIndex())

	s.Release()
	s.Release()
	s.SetMediaItems([]transport.MediaItem{{ID: "a"}}, 0, 0)
	assert.Nil(t, s.CurrentMediaItem(), "released session ignores commands")
}

func TestConnector_Connect(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.c.Connect(ctx)
	require.ErrorIs(t, err, context.Canceled)

	fresh := newTestEngine(t)
	calls := 0
	fresh.c.init = func() error {
		calls++
		return nil
	}
	for range 2 {
		s, err := fresh.c.Connect(context.Background())
		require.NoError(t, err)
		s.Release()
	}
	assert.Equal(t, 1, calls)
}

func TestSkipID3v2(t *testing.T) {
	body := []byte("fLaC-data")
	tagged := append([]byte{'I', 'D', '3', 3, 0, 0, 0, 0, 0, 4, 1, 2, 3, 4}, body...)

	r := bytes.NewReader(tagged)
	require.NoError(t, skipID3v2(r))
	rest := make([]byte, len(body))
	_, err := r.Read(rest)
	require.NoError(t, err)
	assert.Equal(t, body, rest)

	r = bytes.NewReader(body)
	require.NoError(t, skipID3v2(r))
	pos, _ := r.Seek(0, io.SeekCurrent)
	assert.Zero(t, pos)
}

func TestIsAudioContentType(t *testing.T) {
	assert.True(t, isAudioContentType("audio/mpeg"))
	assert.True(t, isAudioContentType("application/octet-stream"))
	assert.False(t, isAudioContentType("text/html; charset=utf-8"))
	assert.False(t, isAudioContentType(";;"))
}
