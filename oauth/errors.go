package oauth

import "errors"

// Client identifier url validation errors. Each rule fails with its own
// sentinel so callers (and tests) can tell exactly which rule was violated.
var (
	ErrMalformedURL   = errors.New("client_id is not a valid absolute url")
	ErrSchemeNotHTTPS = errors.New("client_id must use the https scheme")
	ErrMissingPath    = errors.New("client_id must have a path component")
	ErrDotSegment     = errors.New("client_id must not contain dot path segments")
	ErrHasFragment    = errors.New("client_id must not contain a fragment")
	ErrHasUserinfo    = errors.New("client_id must not contain a username or password")
)

// Client metadata document errors.
var (
	ErrFetchFailed         = errors.New("client metadata could not be fetched")
	ErrFetchTimeout        = errors.New("client metadata fetch timed out")
	ErrInvalidJSON         = errors.New("client metadata is not valid json")
	ErrNotAnObject         = errors.New("client metadata is not a json object")
	ErrMissingClientID     = errors.New("client metadata is missing client_id")
	ErrClientIDMismatch    = errors.New("client metadata client_id does not match the client id url")
	ErrForbiddenAuthMethod = errors.New("client metadata token_endpoint_auth_method must not be client_secret based")
	ErrSecretPresent       = errors.New("client metadata must not contain client_secret")
	ErrSecretExpiryPresent = errors.New("client metadata must not contain client_secret_expires_at")
)

// Redirect uri matching errors.
var (
	ErrMissingRedirectURI    = errors.New("no redirect_uri was provided")
	ErrMissingRegisteredURIs = errors.New("client metadata does not register any redirect_uris")
	ErrNoExactMatch          = errors.New("redirect_uri is not registered for this client")
)

// Authorization code errors.
var (
	ErrCodeNotFound = errors.New("authorization code not found")
	ErrCodeExpired  = errors.New("authorization code has expired")
)
