package resolve

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tazaudio/internal/item"
)

// Resolution errors.
var (
	ErrNotFound = errors.New("not found")
	ErrNoAudio  = errors.New("no audio available")
)

// Repository gives access to published content. Lookups return an error
// wrapping ErrNotFound for unknown keys.
type Repository interface {
	Article(ctx context.Context, articleKey string) (item.Article, error)
	IssueForArticle(ctx context.Context, articleKey string) (item.IssueStub, error)
	Issue(ctx context.Context, key item.IssueKey) (item.IssueStub, error)
	ArticlesForIssue(ctx context.Context, key item.IssueKey) ([]item.Article, error)
	Section(ctx context.Context, key item.IssueKey, sectionKey string) (item.Section, error)
}

// Resolver resolves requests against a Repository.
type Resolver struct {
	repo Repository
	log  logrus.FieldLogger
}

// New creates a resolver.
func New(repo Repository, log logrus.FieldLogger) *Resolver {
	return &Resolver{repo: repo, log: log}
}

// Resolve loads everything needed to play req.
func (r *Resolver) Resolve(ctx context.Context, req Request) (item.PlayableItem, error) {
	var (
		it  item.PlayableItem
		err error
	)
	switch req := req.(type) {
	case ArticleRequest:
		it, err = r.article(ctx, req)
	case IssueRequest:
		it, err = r.issue(ctx, req)
	case PodcastRequest:
		it, err = r.podcast(ctx, req)
	default:
		err = fmt.Errorf("unsupported request %T", req)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", req, err)
	}
	r.log.WithFields(logrus.Fields{"request": req.String(), "item": it.String()}).Debug("resolved item")
	return it, nil
}

func (r *Resolver) article(ctx context.Context, req ArticleRequest) (item.PlayableItem, error) {
	article, err := r.repo.Article(ctx, req.ArticleKey)
	if err != nil {
		return nil, err
	}
	if !article.HasAudio() {
		return nil, ErrNoAudio
	}
	issue, err := r.repo.IssueForArticle(ctx, req.ArticleKey)
	if err != nil {
		return nil, err
	}
	return item.NewArticleAudio(issue, article)
}

func (r *Resolver) issue(ctx context.Context, req IssueRequest) (item.PlayableItem, error) {
	issue, err := r.repo.Issue(ctx, req.Issue)
	if err != nil {
		return nil, err
	}
	all, err := r.repo.ArticlesForIssue(ctx, req.Issue)
	if err != nil {
		return nil, err
	}
	articles := slices.DeleteFunc(slices.Clone(all), func(a item.Article) bool { return !a.HasAudio() })
	if len(articles) == 0 {
		return nil, ErrNoAudio
	}

	start := 0
	if req.ArticleKey != "" {
		start = slices.IndexFunc(articles, func(a item.Article) bool { return a.Key == req.ArticleKey })
		if start < 0 {
			if slices.ContainsFunc(all, func(a item.Article) bool { return a.Key == req.ArticleKey }) {
				return nil, fmt.Errorf("article %s: %w", req.ArticleKey, ErrNoAudio)
			}
			return nil, fmt.Errorf("article %s: %w", req.ArticleKey, ErrNotFound)
		}
	}
	return item.NewIssuePlaylist(issue, articles, start)
}

func (r *Resolver) podcast(ctx context.Context, req PodcastRequest) (item.PlayableItem, error) {
	issue, err := r.repo.Issue(ctx, req.Issue)
	if err != nil {
		return nil, err
	}
	section, err := r.repo.Section(ctx, req.Issue, req.SectionKey)
	if err != nil {
		return nil, err
	}
	if section.Podcast == nil {
		return nil, ErrNoAudio
	}
	return item.NewPodcastAudio(issue, section)
}
