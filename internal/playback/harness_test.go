package playback

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/resolve"
	"github.com/llehouerou/tazaudio/internal/transport"
)

var testIssue = item.IssueStub{
	Key:     item.IssueKey{Feed: "taz", Date: "2024-05-01", Status: "regular"},
	BaseURL: "https://example.org/2024-05-01",
}

func audioArticle(key string, breaks ...float64) item.Article {
	return item.Article{
		Key:     key,
		Title:   "Title " + key,
		Authors: []item.Author{{Name: "Anna"}},
		Audio:   &item.Audio{File: key + ".mp3", Duration: 90 * time.Second, Breaks: breaks},
	}
}

func articleItem(t *testing.T, key string, breaks ...float64) item.ArticleAudio {
	t.Helper()
	a, err := item.NewArticleAudio(testIssue, audioArticle(key, breaks...))
	require.NoError(t, err)
	return a
}

func issuePlaylist(t *testing.T, n, start int) item.IssuePlaylist {
	t.Helper()
	articles := make([]item.Article, n)
	for i := range articles {
		articles[i] = audioArticle(fmt.Sprintf("art%d.html", i))
	}
	p, err := item.NewIssuePlaylist(testIssue, articles, start)
	require.NoError(t, err)
	return p
}

type stubResolver struct {
	mu    sync.Mutex
	items map[string]item.PlayableItem
}

func newStubResolver() *stubResolver {
	return &stubResolver{items: make(map[string]item.PlayableItem)}
}

func (r *stubResolver) add(req resolve.Request, it item.PlayableItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[req.String()] = it
}

func (r *stubResolver) Resolve(_ context.Context, req resolve.Request) (item.PlayableItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[req.String()]
	if !ok {
		return nil, fmt.Errorf("resolve %s: %w", req, resolve.ErrNotFound)
	}
	return it, nil
}

type recordingTracker struct {
	mu     sync.Mutex
	events []TrackEvent
}

func (r *recordingTracker) Track(e TrackEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingTracker) count(action TrackAction) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Action == action {
			n++
		}
	}
	return n
}

type memoryStore struct {
	mu      sync.Mutex
	reqs    []resolve.Request
	current int
	saves   int
	loadErr error
}

func (s *memoryStore) SavePlaylist(_ context.Context, reqs []resolve.Request, current int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = reqs
	s.current = current
	s.saves++
	return nil
}

func (s *memoryStore) LoadPlaylist(_ context.Context) ([]resolve.Request, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reqs, s.current, s.loadErr
}

func (s *memoryStore) saved() ([]resolve.Request, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reqs, s.current, s.saves
}

type harness struct {
	m        *Machine
	conn     *transport.MockConnector
	prefs    *MemoryPreferences
	resolver *stubResolver
	tracker  *recordingTracker
	logHook  *test.Hook
}

type harnessOption func(*Deps)

func withPreferences(p *MemoryPreferences) harnessOption {
	return func(d *Deps) { d.Preferences = p }
}

func withStore(s PlaylistStore) harnessOption {
	return func(d *Deps) { d.PlaylistStore = s }
}

// startMachine runs a machine for the rest of the test. It must be called
// inside a synctest bubble.
func startMachine(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	h := &harness{
		conn:     transport.NewMockConnector(),
		prefs:    NewMemoryPreferences(1, false),
		resolver: newStubResolver(),
		tracker:  &recordingTracker{},
		logHook:  hook,
	}
	deps := Deps{
		Connector:   h.conn,
		Resolver:    h.resolver,
		Preferences: h.prefs,
		Tracker:     h.tracker,
		Logger:      log,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	if p, ok := deps.Preferences.(*MemoryPreferences); ok {
		h.prefs = p
	}

	m, err := New(Config{}, deps)
	require.NoError(t, err)
	h.m = m

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	synctest.Wait()
	return h
}

// play plays it and returns the connected session.
func (h *harness) play(t *testing.T, it item.PlayableItem) *transport.MockSession {
	t.Helper()
	require.NoError(t, h.m.Play(it))
	synctest.Wait()
	s := h.conn.LastSession()
	require.NotNil(t, s, "no session connected")
	return s
}

func (h *harness) logged(level logrus.Level, msg string) bool {
	for _, e := range h.logHook.AllEntries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

// describe renders a state without session pointers.
func describe(s State) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", s), "playback.")
	it := ItemOf(s)
	if it == nil {
		return name
	}
	if p, ok := it.(item.IssuePlaylist); ok {
		return fmt.Sprintf("%s(%s#%d)", name, p.MediaID(), p.CurrentIndex)
	}
	return fmt.Sprintf("%s(%s)", name, it.MediaID())
}
