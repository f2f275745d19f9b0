package oauth

// Client is a resolved client: the validated client id url plus the metadata
// document that was fetched from it. Documents are fetched fresh for every
// authorize request and never cached, so a Client only lives for one request.
type Client struct {
	ClientID string
	Metadata *ClientMetadata
}
