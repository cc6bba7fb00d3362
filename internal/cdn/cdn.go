// Package cdn builds public CDN URLs for remote paths.
package cdn

import (
	"net/url"
	"strings"
)

// URL joins base and a slash-separated remote path, escaping each segment.
func URL(base, remotePath string) string {
	segments := strings.Split(strings.Trim(remotePath, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

// WithToken appends a token query parameter to a CDN URL.
func WithToken(rawURL, token string) string {
	return rawURL + "?token=" + url.QueryEscape(token)
}
