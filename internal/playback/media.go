package playback

import (
	"net/url"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/transport"
)

// mediaItems converts it into the transport's item list and the index to
// start at.
func mediaItems(it item.PlayableItem) ([]transport.MediaItem, int) {
	switch it := it.(type) {
	case item.ArticleAudio:
		return []transport.MediaItem{articleMedia(it.IssueStub, it.Article)}, 0
	case item.IssuePlaylist:
		items := make([]transport.MediaItem, len(it.Articles))
		for i, a := range it.Articles {
			items[i] = articleMedia(it.IssueStub, a)
		}
		return items, it.CurrentIndex
	case item.PodcastAudio:
		return []transport.MediaItem{{
			ID:         it.MediaID(),
			URI:        audioURI(it.IssueStub, it.Audio),
			Title:      it.Section.DisplayTitle(),
			Artist:     it.Audio.Speaker,
			ArtworkURI: firstImage(it.Section.Images),
		}}, 0
	}
	return nil, 0
}

func articleMedia(issue item.IssueStub, a item.Article) transport.MediaItem {
	artist := a.AuthorLine()
	if artist == "" {
		artist = a.Audio.Speaker
	}
	title := a.Title
	if title == "" {
		title = a.Key
	}
	return transport.MediaItem{
		ID:         a.Key,
		URI:        audioURI(issue, *a.Audio),
		Title:      title,
		Artist:     artist,
		ArtworkURI: firstImage(a.Images),
	}
}

func audioURI(issue item.IssueStub, audio item.Audio) string {
	if issue.BaseURL == "" || strings.Contains(audio.File, "://") || filepath.IsAbs(audio.File) {
		return audio.File
	}
	if !strings.Contains(issue.BaseURL, "://") {
		return filepath.Join(issue.BaseURL, audio.File)
	}
	u, err := url.JoinPath(issue.BaseURL, audio.File)
	if err != nil {
		return audio.File
	}
	return u
}

func firstImage(images []item.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].Path
}

func repeatModeFor(it item.PlayableItem, autoPlayNext bool) transport.RepeatMode {
	if _, ok := it.(item.IssuePlaylist); !ok {
		return transport.RepeatOff
	}
	if autoPlayNext {
		return transport.RepeatAll
	}
	return transport.RepeatOne
}

// seekTarget returns where a relative seek from pos lands. Without break
// markers it moves by step; with markers it jumps to the next marker, or
// back to the last marker more than margin behind pos. The result is clamped
// to [0, dur] (dur <= 0 means unknown).
func seekTarget(pos, dur time.Duration, breaks []time.Duration, forward bool, step, margin time.Duration) time.Duration {
	var target time.Duration
	switch {
	case len(breaks) == 0 && forward:
		target = pos + step
	case len(breaks) == 0:
		target = pos - step
	case forward:
		sorted := slices.Sorted(slices.Values(breaks))
		target = dur
		if i := slices.IndexFunc(sorted, func(b time.Duration) bool { return b > pos }); i >= 0 {
			target = sorted[i]
		} else if dur <= 0 {
			target = pos
		}
	default:
		target = 0
		for _, b := range breaks {
			if b < pos-margin && b > target {
				target = b
			}
		}
	}
	return clampPosition(target, dur)
}

func clampPosition(p, dur time.Duration) time.Duration {
	p = max(p, 0)
	if dur > 0 {
		p = min(p, dur)
	}
	return p
}
