package scheduler

import (
	"net/url"
	"path"
	"strings"
)

// Burst classes estimate fetch duration from the URL extension.
// Lower class = shorter expected job; used by the SJF algorithm.
const (
	classSmall  = 1 // text assets: css/js/html/json
	classMedium = 2 // images and everything unknown
	classLarge  = 3 // bulk downloads: video/archives/documents
)

// burstClass maps a URL to its estimated job class.
func burstClass(rawURL string) int {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".css", ".js", ".html", ".json":
		return classSmall
	case ".jpg", ".png", ".gif", ".svg":
		return classMedium
	case ".mp4", ".zip", ".iso", ".pdf":
		return classLarge
	default:
		return classMedium
	}
}

// hostOf extracts the origin host from a URL for round-robin grouping.
// Unparseable URLs group under the empty host.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
