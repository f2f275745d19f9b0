package provider

import (
	"context"
	"fmt"
	"net/url"

	"github.com/haileyok/cimd/oauth"
	"github.com/haileyok/cimd/oauth/client_manager"
	"github.com/haileyok/cimd/oauth/constants"
)

// Provider owns the authorize and token flows: client resolution via the
// client manager and code lifecycle via the code store. The http layer hands
// it plain parameter structs and renders whatever comes back.
type Provider struct {
	ClientManager *client_manager.ClientManager
	CodeStore     *oauth.CodeStore

	hostname string
}

type Args struct {
	Hostname          string
	ClientManagerArgs client_manager.Args
}

func NewProvider(args Args) *Provider {
	return &Provider{
		ClientManager: client_manager.New(args.ClientManagerArgs),
		CodeStore:     oauth.NewCodeStore(),
		hostname:      args.Hostname,
	}
}

func (p *Provider) Issuer() string {
	return "https://" + p.hostname
}

// Error is the wire-level oauth error pair. The code is one of the coarse
// rfc6749 categories, the description names the specific rule that failed.
type Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Description
}

const (
	ErrorCodeInvalidRequest          = "invalid_request"
	ErrorCodeUnsupportedResponseType = "unsupported_response_type"
	ErrorCodeUnsupportedGrantType    = "unsupported_grant_type"
	ErrorCodeInvalidGrant            = "invalid_grant"
)

type AuthorizeRequest struct {
	ClientID     string `query:"client_id" form:"client_id" json:"client_id"`
	RedirectURI  string `query:"redirect_uri" form:"redirect_uri" json:"redirect_uri"`
	ResponseType string `query:"response_type" form:"response_type" json:"response_type"`
	State        string `query:"state" form:"state" json:"state,omitempty"`
}

// ValidateAuthorizeRequest runs an authorize request up to the credential
// step: response_type check, client id url validation, metadata fetch and
// validation, then redirect uri matching. The response_type check comes
// first so an unsupported flow never costs a network fetch. Failures are
// returned as *Error with the violated rule in the description.
func (p *Provider) ValidateAuthorizeRequest(ctx context.Context, req AuthorizeRequest) (*oauth.Client, error) {
	if req.ResponseType != constants.ResponseTypeCode {
		return nil, &Error{
			Code:        ErrorCodeUnsupportedResponseType,
			Description: fmt.Sprintf("response_type %q is not supported, only %q", req.ResponseType, constants.ResponseTypeCode),
		}
	}

	clientID, err := oauth.ValidateClientID(req.ClientID)
	if err != nil {
		return nil, &Error{Code: ErrorCodeInvalidRequest, Description: err.Error()}
	}

	client, err := p.ClientManager.GetClient(ctx, clientID)
	if err != nil {
		return nil, &Error{Code: ErrorCodeInvalidRequest, Description: err.Error()}
	}

	if err := oauth.MatchRedirectURI(req.RedirectURI, client.Metadata); err != nil {
		return nil, &Error{Code: ErrorCodeInvalidRequest, Description: err.Error()}
	}

	return client, nil
}

// GrantAuthorization issues a code for a validated request and builds the
// redirect target: the requested redirect_uri with code and, when supplied,
// state appended as query parameters.
func (p *Provider) GrantAuthorization(client *oauth.Client, req AuthorizeRequest) (string, error) {
	code, err := p.CodeStore.Issue(client.ClientID, req.RedirectURI, req.State)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(req.RedirectURI)
	if err != nil {
		return "", fmt.Errorf("could not parse redirect uri: %w", err)
	}

	q := u.Query()
	q.Set("code", code)
	if req.State != "" {
		q.Set("state", req.State)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

type TokenRequest struct {
	GrantType string `form:"grant_type" json:"grant_type"`
	Code      string `form:"code" json:"code"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Exchange redeems an authorization code for a bearer token. Whether a code
// never existed, was already redeemed, or sat past its lifetime all surface
// as invalid_grant; the description may hint at expiry but the category
// never does.
func (p *Provider) Exchange(req TokenRequest) (*TokenResponse, error) {
	if req.GrantType != constants.GrantTypeAuthorizationCode {
		return nil, &Error{
			Code:        ErrorCodeUnsupportedGrantType,
			Description: fmt.Sprintf("grant_type %q is not supported, only %q", req.GrantType, constants.GrantTypeAuthorizationCode),
		}
	}

	if _, err := p.CodeStore.Redeem(req.Code); err != nil {
		return nil, &Error{Code: ErrorCodeInvalidGrant, Description: err.Error()}
	}

	token, err := oauth.GenerateToken()
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(constants.TokenMaxAge.Seconds()),
	}, nil
}

// AuthorizationServerMetadata is served from the well-known endpoint.
// client_id_metadata_document_supported is the whole point.
type AuthorizationServerMetadata struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported"`
	ClientIDMetadataDocumentSupported bool     `json:"client_id_metadata_document_supported"`
}

func (p *Provider) Metadata() AuthorizationServerMetadata {
	return AuthorizationServerMetadata{
		Issuer:                            p.Issuer(),
		AuthorizationEndpoint:             p.Issuer() + "/oauth/authorize",
		TokenEndpoint:                     p.Issuer() + "/oauth/token",
		ResponseTypesSupported:            []string{constants.ResponseTypeCode},
		GrantTypesSupported:               []string{constants.GrantTypeAuthorizationCode},
		TokenEndpointAuthMethodsSupported: []string{"none"},
		ClientIDMetadataDocumentSupported: true,
	}
}
