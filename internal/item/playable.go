package item

import (
	"errors"
	"fmt"
	"slices"
)

// PlayableItem is one of ArticleAudio, IssuePlaylist or PodcastAudio.
// The set is closed: switches over it are expected to be exhaustive.
type PlayableItem interface {
	// Issue returns the issue the item belongs to.
	Issue() IssueStub
	// CurrentAudio returns the audio of the active entry.
	CurrentAudio() Audio
	// MediaID returns the transport media id of the active entry.
	MediaID() string
	// Contains reports whether mediaID belongs to this item.
	Contains(mediaID string) bool
	// WithCurrentMedia returns a copy whose active entry is mediaID.
	// ok is false if mediaID does not belong to the item.
	WithCurrentMedia(mediaID string) (PlayableItem, bool)
	// Equal compares two items. IssuePlaylist compares shallowly.
	Equal(other PlayableItem) bool
	String() string

	playable()
}

// Errors returned by NewIssuePlaylist.
var (
	ErrEmptyPlaylist   = errors.New("playlist has no articles")
	ErrArticleNoAudio  = errors.New("article has no audio")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Equal compares two possibly nil items.
func Equal(a, b PlayableItem) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// ArticleAudio plays the audio of a single article.
type ArticleAudio struct {
	IssueStub IssueStub
	Article   Article
}

// NewArticleAudio validates that the article has audio.
func NewArticleAudio(issue IssueStub, article Article) (ArticleAudio, error) {
	if !article.HasAudio() {
		return ArticleAudio{}, fmt.Errorf("%w: %s", ErrArticleNoAudio, article.Key)
	}
	return ArticleAudio{IssueStub: issue, Article: article}, nil
}

func (a ArticleAudio) playable() {}

func (a ArticleAudio) Issue() IssueStub { return a.IssueStub }

func (a ArticleAudio) CurrentAudio() Audio { return *a.Article.Audio }

func (a ArticleAudio) MediaID() string { return a.Article.Key }

func (a ArticleAudio) Contains(mediaID string) bool { return a.Article.Key == mediaID }

func (a ArticleAudio) WithCurrentMedia(mediaID string) (PlayableItem, bool) {
	if !a.Contains(mediaID) {
		return nil, false
	}
	return a, true
}

func (a ArticleAudio) Equal(other PlayableItem) bool {
	o, ok := other.(ArticleAudio)
	if !ok {
		return false
	}
	return a.IssueStub == o.IssueStub && a.Article.Key == o.Article.Key
}

func (a ArticleAudio) String() string {
	return fmt.Sprintf("ArticleAudio(%s)", a.Article.Key)
}

// IssuePlaylist plays the articles of an issue that have audio, in order.
type IssuePlaylist struct {
	IssueStub    IssueStub
	Articles     []Article // all with non-nil Audio
	StartIndex   int
	CurrentIndex int
}

// NewIssuePlaylist builds a playlist starting (and positioned) at startIndex.
func NewIssuePlaylist(issue IssueStub, articles []Article, startIndex int) (IssuePlaylist, error) {
	if len(articles) == 0 {
		return IssuePlaylist{}, ErrEmptyPlaylist
	}
	for _, a := range articles {
		if !a.HasAudio() {
			return IssuePlaylist{}, fmt.Errorf("%w: %s", ErrArticleNoAudio, a.Key)
		}
	}
	if startIndex < 0 || startIndex >= len(articles) {
		return IssuePlaylist{}, fmt.Errorf("%w: start %d of %d", ErrIndexOutOfRange, startIndex, len(articles))
	}
	return IssuePlaylist{
		IssueStub:    issue,
		Articles:     articles,
		StartIndex:   startIndex,
		CurrentIndex: startIndex,
	}, nil
}

func (p IssuePlaylist) playable() {}

func (p IssuePlaylist) Issue() IssueStub { return p.IssueStub }

// CurrentArticle returns the article at CurrentIndex.
func (p IssuePlaylist) CurrentArticle() Article { return p.Articles[p.CurrentIndex] }

func (p IssuePlaylist) CurrentAudio() Audio { return *p.CurrentArticle().Audio }

func (p IssuePlaylist) MediaID() string { return p.CurrentArticle().Key }

// LastIndex returns the index of the last article.
func (p IssuePlaylist) LastIndex() int { return len(p.Articles) - 1 }

// IndexOf returns the index of the article with the given media id, or -1.
// A -1 means the transport diverged from this playlist.
func (p IssuePlaylist) IndexOf(mediaID string) int {
	return slices.IndexFunc(p.Articles, func(a Article) bool { return a.Key == mediaID })
}

func (p IssuePlaylist) Contains(mediaID string) bool { return p.IndexOf(mediaID) >= 0 }

// WithCurrentIndex returns a copy positioned at i. Out of range indices are
// rejected.
func (p IssuePlaylist) WithCurrentIndex(i int) (IssuePlaylist, bool) {
	if i < 0 || i >= len(p.Articles) {
		return p, false
	}
	p.CurrentIndex = i
	return p, true
}

func (p IssuePlaylist) WithCurrentMedia(mediaID string) (PlayableItem, bool) {
	next, ok := p.WithCurrentIndex(p.IndexOf(mediaID))
	if !ok {
		return nil, false
	}
	return next, true
}

// Equal ignores the article list so that re-fetches of the same logical
// playlist compare equal.
func (p IssuePlaylist) Equal(other PlayableItem) bool {
	o, ok := other.(IssuePlaylist)
	if !ok {
		return false
	}
	return p.IssueStub.Key == o.IssueStub.Key &&
		p.StartIndex == o.StartIndex &&
		p.CurrentIndex == o.CurrentIndex
}

func (p IssuePlaylist) String() string {
	return fmt.Sprintf("IssuePlaylist(%s, #%d)", p.IssueStub.Key, p.CurrentIndex)
}

// PodcastAudio plays a section-level podcast.
type PodcastAudio struct {
	IssueStub IssueStub
	Section   Section
	Audio     Audio
}

// NewPodcastAudio validates that the section carries a podcast.
func NewPodcastAudio(issue IssueStub, section Section) (PodcastAudio, error) {
	if section.Podcast == nil {
		return PodcastAudio{}, fmt.Errorf("section %s has no podcast", section.Key)
	}
	return PodcastAudio{IssueStub: issue, Section: section, Audio: *section.Podcast}, nil
}

func (p PodcastAudio) playable() {}

func (p PodcastAudio) Issue() IssueStub { return p.IssueStub }

func (p PodcastAudio) CurrentAudio() Audio { return p.Audio }

func (p PodcastAudio) MediaID() string { return p.Audio.File }

func (p PodcastAudio) Contains(mediaID string) bool { return p.Audio.File == mediaID }

func (p PodcastAudio) WithCurrentMedia(mediaID string) (PlayableItem, bool) {
	if !p.Contains(mediaID) {
		return nil, false
	}
	return p, true
}

func (p PodcastAudio) Equal(other PlayableItem) bool {
	o, ok := other.(PodcastAudio)
	if !ok {
		return false
	}
	return p.IssueStub == o.IssueStub && p.Section.Key == o.Section.Key && p.Audio.File == o.Audio.File
}

func (p PodcastAudio) String() string {
	return fmt.Sprintf("PodcastAudio(%s, section=%s)", p.IssueStub.Key, p.Section.Key)
}

// Verify the variants implement PlayableItem at compile time.
var (
	_ PlayableItem = ArticleAudio{}
	_ PlayableItem = IssuePlaylist{}
	_ PlayableItem = PodcastAudio{}
)
