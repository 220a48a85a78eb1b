// Package uistate derives the display state of the player from the state
// machine and the user's preferences.
package uistate

import (
	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/playback"
)

// UiState is one of Hidden, Initializing, Playing, Paused, Error or
// InitError. Values are comparable with ==.
type UiState interface {
	uiState()
}

// Hidden: the player is not shown.
type Hidden struct{}

// Initializing: an item was requested and is being loaded.
type Initializing struct {
	Item     UiItem
	Expanded bool
}

// Playing: the item is playing.
type Playing struct {
	Player Player
}

// Paused: the item is prepared and paused.
type Paused struct {
	Player Player
}

// Error: playback of the item failed. It can be retried or dismissed.
type Error struct {
	Player     Player
	Err        *playback.PlayerError
	WasHandled bool
}

// InitError: the player could not be started. Handling it dismisses the
// player.
type InitError struct {
	Err        *playback.PlayerError
	WasHandled bool
}

func (Hidden) uiState()       {}
func (Initializing) uiState() {}
func (Playing) uiState()      {}
func (Paused) uiState()       {}
func (Error) uiState()        {}
func (InitError) uiState()    {}

// Player is what the player shows about the current item.
type Player struct {
	Item          UiItem
	Expanded      bool
	PlaybackSpeed float64
	AutoPlayNext  bool
	Controls      Controls
}

// UiItem is a display-ready item.
type UiItem struct {
	Title      string
	Author     string
	CoverImage string
	// Open is where clicking the item leads. Zero for podcasts.
	Open OpenItem
}

// OpenItem references an article within its issue.
type OpenItem struct {
	Issue      item.IssueKey
	ArticleKey string
}

// IsZero reports whether o references nothing.
func (o OpenItem) IsZero() bool {
	return o == OpenItem{}
}

// ControlValue is the state of a player control.
type ControlValue int

const (
	ControlHidden ControlValue = iota
	ControlDisabled
	ControlEnabled
)

func (v ControlValue) String() string {
	switch v {
	case ControlHidden:
		return "hidden"
	case ControlDisabled:
		return "disabled"
	case ControlEnabled:
		return "enabled"
	default:
		return "unknown"
	}
}

// Controls describes which player controls are available.
type Controls struct {
	SkipNext     ControlValue
	SkipPrevious ControlValue
	AutoPlayNext ControlValue
	SeekBreaks   bool
}

// Project maps a machine state to what the player shows.
func Project(state playback.State, expanded bool, speed float64, autoPlayNext bool) UiState {
	player := func(it item.PlayableItem) Player {
		return Player{
			Item:          ItemOf(it),
			Expanded:      expanded,
			PlaybackSpeed: speed,
			AutoPlayNext:  autoPlayNext,
			Controls:      ControlsOf(it, autoPlayNext),
		}
	}

	switch s := state.(type) {
	case playback.Init, playback.ControllerReady:
		return Hidden{}
	case playback.AudioQueued:
		return Initializing{Item: ItemOf(s.Item), Expanded: expanded}
	case playback.AudioPrepare:
		return Initializing{Item: ItemOf(s.Item), Expanded: expanded}
	case playback.ControllerError:
		return InitError{Err: &playback.PlayerError{Kind: playback.ErrorGeneric, Cause: s.Cause}}
	case playback.AudioReady:
		return Paused{Player: player(s.Item)}
	case playback.AudioPlaying:
		return Playing{Player: player(s.Item)}
	case playback.AudioError:
		return Error{Player: player(s.Item), Err: s.Err}
	}
	return Hidden{}
}

// ItemOf returns the display data of the item's current entry.
func ItemOf(it item.PlayableItem) UiItem {
	switch it := it.(type) {
	case item.ArticleAudio:
		return articleItem(it.IssueStub, it.Article)
	case item.IssuePlaylist:
		return articleItem(it.IssueStub, it.CurrentArticle())
	case item.PodcastAudio:
		return UiItem{
			Title:      it.Section.DisplayTitle(),
			CoverImage: firstImage(it.Section.Images),
		}
	}
	return UiItem{}
}

func articleItem(issue item.IssueStub, a item.Article) UiItem {
	title := a.Title
	if title == "" {
		title = a.Key
	}
	return UiItem{
		Title:      title,
		Author:     a.AuthorLine(),
		CoverImage: firstImage(a.Images),
		Open:       OpenItem{Issue: issue.Key, ArticleKey: a.Key},
	}
}

func firstImage(images []item.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].Path
}

// ControlsOf returns the controls available for it. Single items have no
// skip controls; playlists can skip while there is a next (or previous)
// article, or always with auto play.
func ControlsOf(it item.PlayableItem, autoPlayNext bool) Controls {
	c := Controls{SeekBreaks: len(it.CurrentAudio().Breaks) > 0}
	p, ok := it.(item.IssuePlaylist)
	if !ok {
		return c
	}
	c.SkipNext = enabledIf(autoPlayNext || p.CurrentIndex < p.LastIndex())
	c.SkipPrevious = enabledIf(autoPlayNext || p.CurrentIndex > 0)
	c.AutoPlayNext = ControlEnabled
	return c
}

func enabledIf(b bool) ControlValue {
	if b {
		return ControlEnabled
	}
	return ControlDisabled
}

// IsVisible reports whether the player is shown.
func IsVisible(u UiState) bool {
	_, hidden := u.(Hidden)
	return u != nil && !hidden
}

// PlayerOf returns the player of u, or nil if u has none.
func PlayerOf(u UiState) *Player {
	switch u := u.(type) {
	case Playing:
		return &u.Player
	case Paused:
		return &u.Player
	case Error:
		return &u.Player
	case Hidden, Initializing, InitError:
		return nil
	}
	return nil
}

// IsExpanded reports whether u is shown expanded.
func IsExpanded(u UiState) bool {
	if i, ok := u.(Initializing); ok {
		return i.Expanded
	}
	if p := PlayerOf(u); p != nil {
		return p.Expanded
	}
	return false
}

// Equal compares two UI states. Errors are compared by kind and cause.
func Equal(a, b UiState) bool {
	switch a := a.(type) {
	case Error:
		b, ok := b.(Error)
		return ok && a.Player == b.Player && a.WasHandled == b.WasHandled && sameError(a.Err, b.Err)
	case InitError:
		b, ok := b.(InitError)
		return ok && a.WasHandled == b.WasHandled && sameError(a.Err, b.Err)
	}
	return a == b
}

func sameError(a, b *playback.PlayerError) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a == b || (a.Kind == b.Kind && a.Cause == b.Cause)
}
