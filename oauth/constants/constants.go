package constants

import "time"

const (
	CodePrefix      = "cod-"
	CodeBytesLength = 32
	CodeLifetime    = 10 * time.Minute

	TokenPrefix      = "tok-"
	TokenBytesLength = 32
	TokenMaxAge      = 60 * time.Minute

	CodeCleanupInterval = 1 * time.Minute

	FetchTimeout = 10 * time.Second

	ResponseTypeCode           = "code"
	GrantTypeAuthorizationCode = "authorization_code"

	// Any token_endpoint_auth_method with this prefix implies a client
	// secret, which a client id metadata document can never hold.
	ClientSecretAuthMethodPrefix = "client_secret_"
)
