package client_manager

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/haileyok/cimd/oauth"
	"github.com/haileyok/cimd/oauth/constants"
)

// ClientManager resolves clients by fetching the metadata document that a
// client id url points at. Every resolution is a single fresh GET, no
// retries and no caching. The fetch is plain http client work and never
// touches any shared engine state.
type ClientManager struct {
	h *http.Client
}

type Args struct {
	H *http.Client
}

func New(args Args) *ClientManager {
	if args.H == nil {
		args.H = &http.Client{
			Timeout: constants.FetchTimeout,
		}
	}

	return &ClientManager{
		h: args.H,
	}
}

// GetClient fetches and validates the metadata document for an already
// validated client id url. The field checks run in a fixed order and each
// fails with its own sentinel from the oauth package.
func (cm *ClientManager) GetClient(ctx context.Context, clientID string) (*oauth.Client, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", clientID, nil)
	if err != nil {
		return nil, oauth.ErrFetchFailed
	}

	req.Header.Set("Accept", "application/json")

	resp, err := cm.h.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) && uerr.Timeout() {
			return nil, oauth.ErrFetchTimeout
		}
		return nil, oauth.ErrFetchFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, oauth.ErrFetchFailed
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, oauth.ErrFetchFailed
	}

	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, oauth.ErrInvalidJSON
	}

	fields, ok := doc.(map[string]any)
	if !ok {
		return nil, oauth.ErrNotAnObject
	}

	var metadata oauth.ClientMetadata
	if err := json.Unmarshal(b, &metadata); err != nil {
		return nil, oauth.ErrInvalidJSON
	}

	if _, ok := fields["client_id"]; !ok {
		return nil, oauth.ErrMissingClientID
	}

	// The document's client_id must equal the url it was fetched from,
	// byte for byte. No normalization on either side.
	if metadata.ClientID != clientID {
		return nil, oauth.ErrClientIDMismatch
	}

	if oauth.IsForbiddenAuthMethod(metadata.TokenEndpointAuthMethod) {
		return nil, oauth.ErrForbiddenAuthMethod
	}

	if _, ok := fields["client_secret"]; ok {
		return nil, oauth.ErrSecretPresent
	}

	if _, ok := fields["client_secret_expires_at"]; ok {
		return nil, oauth.ErrSecretExpiryPresent
	}

	return &oauth.Client{
		ClientID: clientID,
		Metadata: &metadata,
	}, nil
}
