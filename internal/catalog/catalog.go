// Package catalog loads the issues available for playback from a TOML
// manifest.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/resolve"
)

type manifest struct {
	Issues []issueEntry `koanf:"issues"`
}

type issueEntry struct {
	Feed     string         `koanf:"feed"`
	Date     string         `koanf:"date"`   // YYYY-MM-DD
	Status   string         `koanf:"status"` // default "regular"
	BaseURL  string         `koanf:"base_url"`
	Articles []articleEntry `koanf:"articles"`
	Sections []sectionEntry `koanf:"sections"`
}

type articleEntry struct {
	Key     string      `koanf:"key"`
	Title   string      `koanf:"title"`
	Authors []string    `koanf:"authors"`
	Images  []string    `koanf:"images"`
	Audio   *audioEntry `koanf:"audio"`
}

type sectionEntry struct {
	Key           string      `koanf:"key"`
	Title         string      `koanf:"title"`
	ExtendedTitle string      `koanf:"extended_title"`
	Images        []string    `koanf:"images"`
	Podcast       *audioEntry `koanf:"podcast"`
}

type audioEntry struct {
	File     string        `koanf:"file"`
	Duration time.Duration `koanf:"duration"`
	Speaker  string        `koanf:"speaker"`
	Breaks   []float64     `koanf:"breaks"`
}

// Issue is a loaded issue.
type Issue struct {
	Stub     item.IssueStub
	Articles []item.Article
	Sections []item.Section
}

// Catalog serves loaded issues. It is read-only after Load.
type Catalog struct {
	issues   []Issue
	byKey    map[item.IssueKey]int
	articles map[string]int // article key -> issue index
}

// Load reads the manifest at path. Missing article titles and speakers are
// filled from the tags of local audio files.
func Load(path string, log logrus.FieldLogger) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	var m manifest
	if err := k.Unmarshal("", &m); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	return build(m, filepath.Dir(path), log)
}

func build(m manifest, dir string, log logrus.FieldLogger) (*Catalog, error) {
	c := &Catalog{
		byKey:    make(map[item.IssueKey]int),
		articles: make(map[string]int),
	}
	for _, e := range m.Issues {
		if e.Feed == "" || e.Date == "" {
			return nil, fmt.Errorf("catalog: issue without feed or date (%q/%q)", e.Feed, e.Date)
		}
		status := e.Status
		if status == "" {
			status = "regular"
		}
		key := item.IssueKey{Feed: e.Feed, Date: e.Date, Status: status}
		if _, dup := c.byKey[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate issue %s", key)
		}
		base := resolveBase(e.BaseURL, dir)

		issue := Issue{Stub: item.IssueStub{Key: key, BaseURL: base}}
		for _, a := range e.Articles {
			if a.Key == "" {
				return nil, fmt.Errorf("catalog: issue %s has an article without key", key)
			}
			article := item.Article{
				Key:    a.Key,
				Title:  a.Title,
				Images: images(base, a.Images),
				Audio:  a.Audio.audio(),
			}
			for _, name := range a.Authors {
				article.Authors = append(article.Authors, item.Author{Name: name})
			}
			fillFromTags(&article, base, log)
			issue.Articles = append(issue.Articles, article)
			if _, seen := c.articles[a.Key]; !seen {
				c.articles[a.Key] = len(c.issues)
			}
		}
		for _, s := range e.Sections {
			issue.Sections = append(issue.Sections, item.Section{
				Key:           s.Key,
				Title:         s.Title,
				ExtendedTitle: s.ExtendedTitle,
				Images:        images(base, s.Images),
				Podcast:       s.Podcast.audio(),
			})
		}
		c.byKey[key] = len(c.issues)
		c.issues = append(c.issues, issue)
	}
	return c, nil
}

func (a *audioEntry) audio() *item.Audio {
	if a == nil || a.File == "" {
		return nil
	}
	return &item.Audio{
		File:     a.File,
		Duration: a.Duration,
		Speaker:  a.Speaker,
		Breaks:   a.Breaks,
	}
}

// resolveBase expands ~ and makes local bases absolute relative to the
// manifest's directory. URLs are kept as is.
func resolveBase(base, dir string) string {
	if base == "" || strings.Contains(base, "://") {
		return base
	}
	if base[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, base[1:])
		}
	}
	if !filepath.IsAbs(base) {
		return filepath.Join(dir, base)
	}
	return base
}

func images(base string, names []string) []item.Image {
	var out []item.Image
	for _, name := range names {
		p := name
		if isLocal(base) && !filepath.IsAbs(name) {
			p = filepath.Join(base, name)
		}
		out = append(out, item.Image{Name: name, Path: p})
	}
	return out
}

func isLocal(base string) bool {
	return base != "" && !strings.Contains(base, "://")
}

// Issues returns all issues, in manifest order.
func (c *Catalog) Issues() []Issue {
	return c.issues
}

func (c *Catalog) Article(_ context.Context, articleKey string) (item.Article, error) {
	idx, ok := c.articles[articleKey]
	if !ok {
		return item.Article{}, fmt.Errorf("article %s: %w", articleKey, resolve.ErrNotFound)
	}
	for _, a := range c.issues[idx].Articles {
		if a.Key == articleKey {
			return a, nil
		}
	}
	return item.Article{}, fmt.Errorf("article %s: %w", articleKey, resolve.ErrNotFound)
}

func (c *Catalog) IssueForArticle(_ context.Context, articleKey string) (item.IssueStub, error) {
	idx, ok := c.articles[articleKey]
	if !ok {
		return item.IssueStub{}, fmt.Errorf("issue of article %s: %w", articleKey, resolve.ErrNotFound)
	}
	return c.issues[idx].Stub, nil
}

func (c *Catalog) Issue(_ context.Context, key item.IssueKey) (item.IssueStub, error) {
	issue, err := c.issue(key)
	if err != nil {
		return item.IssueStub{}, err
	}
	return issue.Stub, nil
}

func (c *Catalog) ArticlesForIssue(_ context.Context, key item.IssueKey) ([]item.Article, error) {
	issue, err := c.issue(key)
	if err != nil {
		return nil, err
	}
	return issue.Articles, nil
}

func (c *Catalog) Section(_ context.Context, key item.IssueKey, sectionKey string) (item.Section, error) {
	issue, err := c.issue(key)
	if err != nil {
		return item.Section{}, err
	}
	for _, s := range issue.Sections {
		if s.Key == sectionKey {
			return s, nil
		}
	}
	return item.Section{}, fmt.Errorf("section %s of %s: %w", sectionKey, key, resolve.ErrNotFound)
}

func (c *Catalog) issue(key item.IssueKey) (*Issue, error) {
	idx, ok := c.byKey[key]
	if !ok {
		return nil, fmt.Errorf("issue %s: %w", key, resolve.ErrNotFound)
	}
	return &c.issues[idx], nil
}

// Verify Catalog implements resolve.Repository at compile time.
var _ resolve.Repository = (*Catalog)(nil)
