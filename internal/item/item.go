// Package item models what the audio player can play: a single article, a
// whole issue as a playlist of articles, or a section podcast.
package item

import (
	"fmt"
	"strings"
	"time"
)

// IssueKey identifies a published issue.
type IssueKey struct {
	Feed   string
	Date   string // YYYY-MM-DD
	Status string // "public", "regular", ...
}

func (k IssueKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Feed, k.Date, k.Status)
}

// IssueStub is the slice of an issue the player needs.
type IssueStub struct {
	Key     IssueKey
	BaseURL string // where the issue's files are served from
}

// Audio describes an audio file attached to an article or section.
type Audio struct {
	File     string        // file name, relative to the issue base URL
	Duration time.Duration // 0 if unknown
	Speaker  string
	Breaks   []float64 // break markers, in seconds
}

// Author of an article.
type Author struct {
	Name string
}

// Image is a locally available image.
type Image struct {
	Name string
	Path string // local path or URI usable by the renderer
}

// Article is a fully loaded article.
type Article struct {
	Key     string
	Title   string
	Authors []Author
	Images  []Image
	Audio   *Audio // nil if the article has no audio
}

// HasAudio returns true if the article carries an audio file.
func (a Article) HasAudio() bool {
	return a.Audio != nil
}

// Section is a fully loaded issue section.
type Section struct {
	Key           string
	Title         string
	ExtendedTitle string
	Images        []Image
	Podcast       *Audio // nil if the section has no podcast
}

// BreakDurations converts break markers in seconds to durations.
func (a Audio) BreakDurations() []time.Duration {
	if len(a.Breaks) == 0 {
		return nil
	}
	out := make([]time.Duration, len(a.Breaks))
	for i, b := range a.Breaks {
		out[i] = time.Duration(b * float64(time.Second))
	}
	return out
}

// AuthorLine joins the distinct author names with ", ".
func (a Article) AuthorLine() string {
	seen := make(map[string]bool, len(a.Authors))
	names := make([]string, 0, len(a.Authors))
	for _, au := range a.Authors {
		if au.Name == "" || seen[au.Name] {
			continue
		}
		seen[au.Name] = true
		names = append(names, au.Name)
	}
	return strings.Join(names, ", ")
}

// DisplayTitle returns the extended title if set, the title otherwise.
func (s Section) DisplayTitle() string {
	if s.ExtendedTitle != "" {
		return s.ExtendedTitle
	}
	return s.Title
}
