package playback

import (
	"context"
	"time"

	"github.com/llehouerou/tazaudio/internal/broadcast"
	"github.com/llehouerou/tazaudio/internal/item"
)

// Service defines the player contract used by hosts.
type Service interface {
	// Intents resolving their item first. Resolution errors are returned
	// and leave the player untouched.
	PlayArticle(ctx context.Context, articleKey string) error
	PlayIssue(ctx context.Context, issue item.IssueKey) error
	PlayIssueFromArticle(ctx context.Context, issue item.IssueKey, articleKey string) error
	PlayPodcast(ctx context.Context, issue item.IssueKey, sectionKey string) error

	// Playback control
	Play(it item.PlayableItem) error
	TogglePlaying() error
	SeekTo(position time.Duration) error
	SeekForward() error
	SeekBackward() error
	SkipToNext() error
	SkipToPrevious() error
	Dismiss() error

	// Preferences
	SetPlaybackSpeed(ctx context.Context, speed float64) error
	SetAutoPlayNext(ctx context.Context, enabled bool) error

	// State queries
	State() State
	States() *broadcast.Subscription[State]
	CurrentProgress() *Progress
	Progress() *broadcast.Subscription[*Progress]

	// Playlist
	EnqueueArticle(ctx context.Context, articleKey string) error
	PlayFromPlaylist(index int) error
	RemoveFromPlaylist(index int) error
	MovePlaylistItem(from, to int) error
	ClearPlaylist() error
	Playlist() []item.PlayableItem
	PlaylistIndex() int
	PlaylistUpdates() *broadcast.Subscription[PlaylistSnapshot]
}
