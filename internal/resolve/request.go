// Package resolve turns references to articles, issues and podcasts into
// playable items.
package resolve

import (
	"fmt"

	"github.com/llehouerou/tazaudio/internal/item"
)

// Request references something to play. It is one of ArticleRequest,
// IssueRequest or PodcastRequest.
type Request interface {
	fmt.Stringer
	request()
}

// ArticleRequest plays a single article.
type ArticleRequest struct {
	ArticleKey string
}

// IssueRequest plays the audio articles of an issue, starting at ArticleKey
// (or at the first audio article if empty).
type IssueRequest struct {
	Issue      item.IssueKey
	ArticleKey string
}

// PodcastRequest plays the podcast of an issue section.
type PodcastRequest struct {
	Issue      item.IssueKey
	SectionKey string
}

func (ArticleRequest) request() {}
func (IssueRequest) request()   {}
func (PodcastRequest) request() {}

func (r ArticleRequest) String() string { return "article:" + r.ArticleKey }

func (r IssueRequest) String() string {
	if r.ArticleKey == "" {
		return "issue:" + r.Issue.String()
	}
	return fmt.Sprintf("issue:%s@%s", r.Issue, r.ArticleKey)
}

func (r PodcastRequest) String() string {
	return fmt.Sprintf("podcast:%s/%s", r.Issue, r.SectionKey)
}

// RequestFor returns the request that resolves back to it.
// Playlists are referenced by their start article.
func RequestFor(it item.PlayableItem) Request {
	switch it := it.(type) {
	case item.ArticleAudio:
		return ArticleRequest{ArticleKey: it.Article.Key}
	case item.IssuePlaylist:
		return IssueRequest{Issue: it.IssueStub.Key, ArticleKey: it.Articles[it.StartIndex].Key}
	case item.PodcastAudio:
		return PodcastRequest{Issue: it.IssueStub.Key, SectionKey: it.Section.Key}
	}
	return nil
}
