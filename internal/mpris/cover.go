//go:build linux

package mpris

import (
	"net/url"
	"os"
	"path/filepath"
)

// ArtURL turns a cover image reference into an MPRIS art URL. Remote URLs
// are kept, local files become file:// URLs, missing files give "".
func ArtURL(cover string) string {
	if cover == "" {
		return ""
	}
	if u, err := url.Parse(cover); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return cover
	}
	path, err := filepath.Abs(cover)
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return (&url.URL{Scheme: "file", Path: path}).String()
}
