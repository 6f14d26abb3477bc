package blog

import (
	"net/url"
	"path"
	"strings"

	"github.com/pejamp/spacetraveling/richtext"
)

// PostPath is the site route of the post with the given uid.
func PostPath(uid string) string {
	return "/post/" + url.PathEscape(uid) + "/"
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// ResolveLink maps document links inside rich text to site routes. Links to
// documents that are not posts resolve to the home page.
func ResolveLink(link richtext.LinkData) string {
	if link.Type == DefaultDocumentType && link.UID != "" {
		return PostPath(link.UID)
	}
	return "/"
}
