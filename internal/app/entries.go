package app

import (
	"fmt"

	"github.com/llehouerou/tazaudio/internal/catalog"
	"github.com/llehouerou/tazaudio/internal/item"
)

// entryKind is what a catalog row plays.
type entryKind int

const (
	entryIssue entryKind = iota
	entryArticle
	entryPodcast
)

// entry is one row of the catalog list.
type entry struct {
	kind  entryKind
	issue item.IssueKey
	key   string // article or section key
	label string
	sub   string
}

// buildEntries lists the playable parts of each issue: the issue itself,
// its articles with audio and its section podcasts.
func buildEntries(issues []catalog.Issue) []entry {
	var entries []entry
	for _, iss := range issues {
		var articles []entry
		for _, a := range iss.Articles {
			if !a.HasAudio() {
				continue
			}
			title := a.Title
			if title == "" {
				title = a.Key
			}
			articles = append(articles, entry{
				kind:  entryArticle,
				issue: iss.Stub.Key,
				key:   a.Key,
				label: title,
				sub:   a.AuthorLine(),
			})
		}

		var podcasts []entry
		for _, s := range iss.Sections {
			if s.Podcast == nil {
				continue
			}
			podcasts = append(podcasts, entry{
				kind:  entryPodcast,
				issue: iss.Stub.Key,
				key:   s.Key,
				label: s.DisplayTitle(),
				sub:   "Podcast",
			})
		}

		if len(articles) == 0 && len(podcasts) == 0 {
			continue
		}
		entries = append(entries, entry{
			kind:  entryIssue,
			issue: iss.Stub.Key,
			label: fmt.Sprintf("%s %s", iss.Stub.Key.Feed, iss.Stub.Key.Date),
			sub:   fmt.Sprintf("%d articles", len(articles)),
		})
		entries = append(entries, articles...)
		entries = append(entries, podcasts...)
	}
	return entries
}
