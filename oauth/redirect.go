package oauth

// MatchRedirectURI confirms that a requested redirect uri is registered in
// the client's metadata document. Matching is a byte-for-byte string
// comparison. No scheme or host normalization and no trailing slash
// tolerance: an equivalent-but-distinct uri is an open redirect waiting to
// happen, so it must not match.
func MatchRedirectURI(requested string, metadata *ClientMetadata) error {
	if requested == "" {
		return ErrMissingRedirectURI
	}

	if len(metadata.RedirectURIs) == 0 {
		return ErrMissingRegisteredURIs
	}

	for _, registered := range metadata.RedirectURIs {
		if requested == registered {
			return nil
		}
	}

	return ErrNoExactMatch
}
