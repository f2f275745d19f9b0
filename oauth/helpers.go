package oauth

import (
	"fmt"
	"strings"

	"github.com/haileyok/cimd/internal/helpers"
	"github.com/haileyok/cimd/oauth/constants"
)

func GenerateCode() (string, error) {
	v, err := helpers.RandomBase64(constants.CodeBytesLength)
	if err != nil {
		return "", fmt.Errorf("could not generate authorization code: %w", err)
	}
	return constants.CodePrefix + v, nil
}

func GenerateToken() (string, error) {
	v, err := helpers.RandomBase64(constants.TokenBytesLength)
	if err != nil {
		return "", fmt.Errorf("could not generate access token: %w", err)
	}
	return constants.TokenPrefix + v, nil
}

// IsForbiddenAuthMethod reports whether a token_endpoint_auth_method value
// implies a client secret. client_secret_post, client_secret_basic,
// client_secret_jwt and anything else under the client_secret_ prefix are all
// forbidden for metadata document clients.
func IsForbiddenAuthMethod(method string) bool {
	return strings.HasPrefix(method, constants.ClientSecretAuthMethodPrefix)
}
