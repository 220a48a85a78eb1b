package catalog

import (
	"os"
	"path/filepath"

	"github.com/dhowden/tag"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tazaudio/internal/item"
)

// fileTags holds the tags the catalog cares about.
type fileTags struct {
	Title  string
	Artist string
}

func readTags(path string) (*fileTags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}
	artist := m.Artist()
	if artist == "" {
		artist = m.AlbumArtist()
	}
	return &fileTags{Title: m.Title(), Artist: artist}, nil
}

// fillFromTags completes a's title and speaker from its local audio file.
func fillFromTags(a *item.Article, base string, log logrus.FieldLogger) {
	if a.Audio == nil || !isLocal(base) || (a.Title != "" && a.Audio.Speaker != "") {
		return
	}
	path := a.Audio.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	t, err := readTags(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Debug("no tags for article audio")
		return
	}
	if a.Title == "" {
		a.Title = t.Title
	}
	if a.Audio.Speaker == "" {
		a.Audio.Speaker = t.Artist
	}
}
