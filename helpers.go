package spacetraveling

import (
	"net/url"
	"strings"
)

// sameOrigin reports whether raw parses to an absolute URL on base's
// scheme and host.
func sameOrigin(raw string, base *url.URL) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, base.Scheme) && strings.EqualFold(u.Host, base.Host)
}
