package oauth

import (
	"net/url"
	"strings"
)

// ValidateClientID checks a raw client_id string against the client id
// metadata document url rules. It is purely syntactic, no network access
// happens here. On success it returns the parsed url's string form, which is
// the exact value used for the metadata fetch and for the client_id equality
// check inside the document.
func ValidateClientID(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return "", ErrMalformedURL
	}

	if u.Scheme != "https" {
		return "", ErrSchemeNotHTTPS
	}

	if u.Path == "" || u.Path == "/" {
		return "", ErrMissingPath
	}

	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "." || seg == ".." {
			return "", ErrDotSegment
		}
	}

	if u.Fragment != "" {
		return "", ErrHasFragment
	}

	if u.User != nil {
		return "", ErrHasUserinfo
	}

	return u.String(), nil
}
