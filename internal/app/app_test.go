package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tazaudio/internal/broadcast"
	"github.com/llehouerou/tazaudio/internal/catalog"
	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/playback"
	"github.com/llehouerou/tazaudio/internal/uistate"
)

type fakePlayer struct {
	mu       sync.Mutex
	calls    []string
	err      error
	speed    float64
	auto     *bool
	progress *broadcast.Value[*playback.Progress]
	playlist *broadcast.Value[playback.PlaylistSnapshot]
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{
		progress: broadcast.NewValue[*playback.Progress](nil),
		playlist: broadcast.NewValue(playback.PlaylistSnapshot{Current: -1}),
	}
}

func (f *fakePlayer) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakePlayer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakePlayer) PlayArticle(_ context.Context, key string) error {
	return f.record("article " + key)
}

func (f *fakePlayer) PlayIssue(_ context.Context, issue item.IssueKey) error {
	return f.record("issue " + issue.String())
}

func (f *fakePlayer) PlayIssueFromArticle(_ context.Context, issue item.IssueKey, key string) error {
	return f.record("issue " + issue.String() + " from " + key)
}

func (f *fakePlayer) PlayPodcast(_ context.Context, issue item.IssueKey, key string) error {
	return f.record("podcast " + issue.String() + " " + key)
}

func (f *fakePlayer) TogglePlaying() error  { return f.record("toggle") }
func (f *fakePlayer) SeekForward() error    { return f.record("seek forward") }
func (f *fakePlayer) SeekBackward() error   { return f.record("seek backward") }
func (f *fakePlayer) SkipToNext() error     { return f.record("next") }
func (f *fakePlayer) SkipToPrevious() error { return f.record("previous") }
func (f *fakePlayer) Dismiss() error        { return f.record("dismiss") }

func (f *fakePlayer) SetPlaybackSpeed(_ context.Context, v float64) error {
	f.mu.Lock()
	f.speed = v
	f.mu.Unlock()
	return f.record("speed")
}

func (f *fakePlayer) SetAutoPlayNext(_ context.Context, v bool) error {
	f.mu.Lock()
	f.auto = &v
	f.mu.Unlock()
	return f.record("auto")
}

func (f *fakePlayer) CurrentProgress() *playback.Progress { return f.progress.Load() }

func (f *fakePlayer) Progress() *broadcast.Subscription[*playback.Progress] {
	return f.progress.Subscribe()
}

func (f *fakePlayer) EnqueueArticle(_ context.Context, key string) error {
	return f.record("enqueue " + key)
}

func (f *fakePlayer) PlayFromPlaylist(index int) error {
	return f.record(fmt.Sprintf("playlist play %d", index))
}

func (f *fakePlayer) RemoveFromPlaylist(index int) error {
	return f.record(fmt.Sprintf("playlist remove %d", index))
}

func (f *fakePlayer) MovePlaylistItem(from, to int) error {
	return f.record(fmt.Sprintf("playlist move %d %d", from, to))
}

func (f *fakePlayer) ClearPlaylist() error { return f.record("playlist clear") }

func (f *fakePlayer) PlaylistUpdates() *broadcast.Subscription[playback.PlaylistSnapshot] {
	return f.playlist.Subscribe()
}

type fakeView struct {
	out      *broadcast.Value[uistate.UiState]
	expanded bool
	handled  []uistate.UiState
}

func newFakeView(ui uistate.UiState) *fakeView {
	return &fakeView{out: broadcast.NewValue(ui)}
}

func (v *fakeView) Current() uistate.UiState { return v.out.Load() }

func (v *fakeView) Subscribe() *broadcast.Subscription[uistate.UiState] {
	return v.out.Subscribe()
}

func (v *fakeView) Expanded() bool { return v.expanded }

func (v *fakeView) SetExpanded(expanded bool) { v.expanded = expanded }

func (v *fakeView) OnErrorHandled(shown uistate.UiState) {
	v.handled = append(v.handled, shown)
}

var testIssueKey = item.IssueKey{Feed: "taz", Date: "2024-05-01", Status: "regular"}

func testIssues() []catalog.Issue {
	audio := func(f string) *item.Audio { return &item.Audio{File: f, Duration: time.Minute} }
	return []catalog.Issue{
		{
			Stub: item.IssueStub{Key: testIssueKey},
			Articles: []item.Article{
				{Key: "a1.html", Title: "Erster Artikel", Authors: []item.Author{{Name: "Anna"}}, Audio: audio("a1.mp3")},
				{Key: "a2.html", Title: "Ohne Audio"},
				{Key: "a3.html", Audio: audio("a3.mp3")},
			},
			Sections: []item.Section{
				{Key: "politik", Title: "Politik", ExtendedTitle: "Politik-Podcast", Podcast: audio("politik.mp3")},
				{Key: "kultur", Title: "Kultur"},
			},
		},
		{
			Stub:     item.IssueStub{Key: item.IssueKey{Feed: "taz", Date: "2024-05-02", Status: "regular"}},
			Articles: []item.Article{{Key: "b1.html", Title: "Stumm"}},
		},
	}
}

func newTestModel(t *testing.T, ui uistate.UiState) (Model, *fakePlayer, *fakeView) {
	t.Helper()
	log, _ := test.NewNullLogger()
	player := newFakePlayer()
	view := newFakeView(ui)
	m := New(player, view, testIssues(), log)
	t.Cleanup(m.Close)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model), player, view
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

func playingUI(auto bool) uistate.UiState {
	return uistate.Playing{Player: uistate.Player{
		Item:          uistate.UiItem{Title: "Erster Artikel", Author: "Anna"},
		PlaybackSpeed: 1,
		AutoPlayNext:  auto,
		Controls: uistate.Controls{
			SkipNext:     uistate.ControlEnabled,
			SkipPrevious: uistate.ControlDisabled,
			AutoPlayNext: uistate.ControlEnabled,
		},
	}}
}

func TestBuildEntries(t *testing.T) {
	entries := buildEntries(testIssues())

	require.Len(t, entries, 4)
	assert.Equal(t, entryIssue, entries[0].kind)
	assert.Equal(t, "taz 2024-05-01", entries[0].label)
	assert.Equal(t, "2 articles", entries[0].sub)
	assert.Equal(t, entry{kind: entryArticle, issue: testIssueKey, key: "a1.html", label: "Erster Artikel", sub: "Anna"}, entries[1])
	assert.Equal(t, "a3.html", entries[2].label, "untitled article shows its key")
	assert.Equal(t, entry{kind: entryPodcast, issue: testIssueKey, key: "politik", label: "Politik-Podcast", sub: "Podcast"}, entries[3])
}

func TestUpdate_WindowSizeMsg(t *testing.T) {
	m, _, _ := newTestModel(t, uistate.Hidden{})
	assert.Equal(t, 100, m.Width)
	assert.Equal(t, 30, m.Height)
}

func TestPlaySelected(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{"issue row plays the issue", []string{"enter"}, "issue taz/2024-05-01/regular"},
		{"article row plays the issue from it", []string{"down", "enter"}, "issue taz/2024-05-01/regular from a1.html"},
		{"a plays the article alone", []string{"down", "a"}, "article a1.html"},
		{"podcast row plays the podcast", []string{"G", "enter"}, "podcast taz/2024-05-01/regular politik"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, player, _ := newTestModel(t, uistate.Hidden{})
			_, cmd := press(t, m, tt.keys...)
			require.NotNil(t, cmd)
			assert.Nil(t, cmd())
			assert.Equal(t, []string{tt.want}, player.Calls())
		})
	}
}

func TestPlaySelected_ErrorShownInStatus(t *testing.T) {
	m, player, _ := newTestModel(t, uistate.Hidden{})
	player.err = errors.New("article not found")

	m, cmd := press(t, m, "down", "a")
	msg := cmd()
	require.IsType(t, IntentErrorMsg{}, msg)

	next, _ := m.Update(msg)
	m = next.(Model)
	assert.Equal(t, "Failed to load article 'a1.html': article not found", m.status)
	assert.Contains(t, ansi.Strip(m.View()), "Failed to load article")

	m, _ = press(t, m, "j")
	assert.Empty(t, m.status, "next key clears the status")
}

func TestPlayerControls(t *testing.T) {
	m, player, _ := newTestModel(t, playingUI(false))

	press(t, m, " ", "l", "h", "n", "p", "x")

	assert.Equal(t, []string{"toggle", "seek forward", "seek backward", "next", "previous", "dismiss"}, player.Calls())
}

func TestExpand_OnlyWhenVisible(t *testing.T) {
	m, _, view := newTestModel(t, uistate.Hidden{})
	press(t, m, "v")
	assert.False(t, view.expanded)

	m, _, view = newTestModel(t, playingUI(false))
	press(t, m, "v")
	assert.True(t, view.expanded)
}

func TestSpeedKeys(t *testing.T) {
	m, player, _ := newTestModel(t, playingUI(false))

	_, cmd := press(t, m, "+")
	require.NotNil(t, cmd)
	cmd()
	assert.InDelta(t, 1.25, player.speed, 1e-9)

	_, cmd = press(t, m, "-")
	require.NotNil(t, cmd)
	cmd()
	assert.InDelta(t, 0.75, player.speed, 1e-9)
}

func TestAutoPlayNextKey(t *testing.T) {
	m, player, _ := newTestModel(t, playingUI(false))

	_, cmd := press(t, m, "A")
	require.NotNil(t, cmd)
	cmd()
	require.NotNil(t, player.auto)
	assert.True(t, *player.auto)
}

func TestAutoPlayNextKey_HiddenControl(t *testing.T) {
	ui := uistate.Playing{Player: uistate.Player{Item: uistate.UiItem{Title: "x"}, PlaybackSpeed: 1}}
	m, _, _ := newTestModel(t, ui)

	_, cmd := press(t, m, "A")
	assert.Nil(t, cmd)
}

func TestErrorPopup(t *testing.T) {
	perr := &playback.PlayerError{Kind: playback.ErrorNetwork, Cause: errors.New("timeout")}
	shown := uistate.Error{Player: playingUI(false).(uistate.Playing).Player, Err: perr}
	m, player, view := newTestModel(t, shown)

	out := ansi.Strip(m.View())
	assert.Contains(t, out, "Player error")
	assert.Contains(t, out, "Check your")

	m, _ = press(t, m, "enter")
	require.Len(t, view.handled, 1)
	assert.Equal(t, shown, view.handled[0])
	assert.Empty(t, player.Calls(), "acknowledging does not play")

	next, _ := m.Update(UiStateMsg{State: uistate.Error{Player: shown.Player, Err: perr, WasHandled: true}})
	m = next.(Model)
	assert.NotContains(t, ansi.Strip(m.View()), "Player error")

	press(t, m, " ")
	assert.Equal(t, []string{"toggle"}, player.Calls(), "space retries")
}

func TestInitErrorPopup(t *testing.T) {
	shown := uistate.InitError{Err: &playback.PlayerError{Kind: playback.ErrorGeneric}}
	m, _, view := newTestModel(t, shown)

	assert.Contains(t, ansi.Strip(m.View()), "Audio playback failed.")
	press(t, m, "esc")
	assert.Equal(t, []uistate.UiState{shown}, view.handled)
}

func TestUiStateMsg_RearmsWatch(t *testing.T) {
	m, _, _ := newTestModel(t, uistate.Hidden{})

	next, cmd := m.Update(UiStateMsg{State: playingUI(false)})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Contains(t, ansi.Strip(m.View()), "▶")

	next, _ = m.Update(ProgressMsg{Progress: &playback.Progress{Position: 30 * time.Second, Duration: time.Minute}})
	m = next.(Model)
	assert.Contains(t, ansi.Strip(m.View()), "0:30 / 1:00")

	next, _ = m.Update(UiStateMsg{State: uistate.Hidden{}})
	m = next.(Model)
	assert.Nil(t, m.progress)
}

func TestView_FillsScreen(t *testing.T) {
	m, _, _ := newTestModel(t, playingUI(false))
	lines := strings.Split(m.View(), "\n")
	assert.Len(t, lines, m.Height)
}

func TestStepSpeed(t *testing.T) {
	tests := []struct {
		current float64
		up      bool
		want    float64
	}{
		{1, true, 1.25},
		{1, false, 0.75},
		{2, true, 2},
		{0.5, false, 0.5},
		{1.1, true, 1.25},
		{1.1, false, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, stepSpeed(tt.current, tt.up), 1e-9, "stepSpeed(%v, %v)", tt.current, tt.up)
	}
}

func TestWatch_ReturnsNilWhenClosed(t *testing.T) {
	v := broadcast.NewValue(1)
	sub := v.Subscribe()
	<-sub.C
	v.Close()

	cmd := watch(sub, func(int) tea.Msg { return "value" })
	assert.Nil(t, cmd())
}

func testPlaylist(t *testing.T, current int, keys ...string) playback.PlaylistSnapshot {
	t.Helper()
	items := make([]item.PlayableItem, len(keys))
	for i, k := range keys {
		it, err := item.NewArticleAudio(item.IssueStub{Key: testIssueKey}, item.Article{
			Key:   k,
			Title: "Titel " + k,
			Audio: &item.Audio{File: k + ".mp3", Duration: time.Minute},
		})
		require.NoError(t, err)
		items[i] = it
	}
	return playback.PlaylistSnapshot{Items: items, Current: current}
}

// withPlaylist switches m to the playlist screen showing snap.
func withPlaylist(t *testing.T, m Model, snap playback.PlaylistSnapshot) Model {
	t.Helper()
	next, cmd := m.Update(PlaylistMsg{Playlist: snap})
	require.NotNil(t, cmd, "the playlist watch is rearmed")
	m, _ = press(t, next.(Model), "tab")
	require.True(t, m.showPlaylist)
	return m
}

func TestEnqueueSelected(t *testing.T) {
	m, player, _ := newTestModel(t, uistate.Hidden{})

	_, cmd := press(t, m, "down", "e")
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, []string{"enqueue a1.html"}, player.Calls())

	_, cmd = press(t, m, "e")
	assert.Nil(t, cmd, "issue rows are not enqueued")
}

func TestEnqueueSelected_ErrorShownInStatus(t *testing.T) {
	m, player, _ := newTestModel(t, uistate.Hidden{})
	player.err = errors.New("article not found")

	m, cmd := press(t, m, "down", "e")
	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, "Failed to add to playlist 'a1.html': article not found", m.status)
}

func TestPlaylistScreen_View(t *testing.T) {
	m, _, _ := newTestModel(t, playingUI(false))
	m = withPlaylist(t, m, testPlaylist(t, 1, "a1.html", "a3.html"))

	out := ansi.Strip(m.View())
	assert.Contains(t, out, "Playlist (2/2)")
	assert.Contains(t, out, "Titel a1.html")
	assert.Contains(t, out, "▶ Titel a3.html")
	assert.NotContains(t, out, "taz 2024-05-01")
	assert.Len(t, strings.Split(m.View(), "\n"), m.Height)

	m, _ = press(t, m, "tab")
	assert.Contains(t, ansi.Strip(m.View()), "taz 2024-05-01", "tab goes back to the catalog")
}

func TestPlaylistScreen_Keys(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want []string
	}{
		{"enter plays the entry", []string{"j", "enter"}, []string{"playlist play 1"}},
		{"d removes the entry", []string{"G", "d"}, []string{"playlist remove 2"}},
		{"K moves the entry up", []string{"G", "K", "K"}, []string{"playlist move 2 1", "playlist move 1 0"}},
		{"K stops at the top", []string{"K"}, nil},
		{"J moves the entry down", []string{"J"}, []string{"playlist move 0 1"}},
		{"J stops at the bottom", []string{"G", "J"}, nil},
		{"C clears", []string{"C"}, []string{"playlist clear"}},
		{"player keys still work", []string{" ", "n"}, []string{"toggle", "next"}},
		{"catalog keys do nothing", []string{"a", "e"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, player, _ := newTestModel(t, playingUI(false))
			m = withPlaylist(t, m, testPlaylist(t, 0, "a1.html", "a3.html", "b1.html"))

			_, cmd := press(t, m, tt.keys...)
			assert.Nil(t, cmd)
			assert.Equal(t, tt.want, player.Calls())
		})
	}
}

func TestPlaylistScreen_EmptyPlaylist(t *testing.T) {
	m, player, _ := newTestModel(t, uistate.Hidden{})
	m = withPlaylist(t, m, playback.PlaylistSnapshot{Current: -1})

	press(t, m, "enter", "d", "C", "J")
	assert.Empty(t, player.Calls())
	assert.Contains(t, ansi.Strip(m.View()), "The playlist is empty")
}

func TestPlaylistScreen_EditErrorShownInStatus(t *testing.T) {
	m, player, _ := newTestModel(t, uistate.Hidden{})
	m = withPlaylist(t, m, testPlaylist(t, 0, "a1.html", "a3.html"))
	player.err = playback.ErrOutOfRange

	m, _ = press(t, m, "J")
	assert.Equal(t, "Failed to edit playlist: playlist index out of range", m.status)
	assert.Equal(t, 0, m.playlist.Cursor(), "the cursor stays when the move is refused")
}
