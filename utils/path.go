package utils

import (
	"net/url"
	"strings"
)

// JoinURL appends the given path segments to the path of the base URL.
// Each segment is escaped on its own, so a base URL with a path suffix
// keeps its suffix and a segment never introduces additional slashes.
// Dot segments are skipped and never climb above the base path. Empty
// segments are kept, an empty last segment results in a trailing slash.
func JoinURL(base string, segments ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	if len(segments) == 0 {
		return u.String(), nil
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSuffix(u.EscapedPath(), "/"))
	for _, s := range segments {
		if s == "." || s == ".." {
			continue
		}
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(s))
	}

	rawPath := sb.String()
	if rawPath == "" {
		rawPath = "/"
	}
	if u.Path, err = url.PathUnescape(rawPath); err != nil {
		return "", err
	}
	u.RawPath = rawPath

	return u.String(), nil
}

// SplitPath splits an url path into its segments. The leading slash does not
// produce an empty segment, a trailing one does.
func SplitPath(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
