package helpers

import (
	crand "crypto/rand"
	"encoding/base64"

	"github.com/labstack/echo/v4"
)

func InputError(e echo.Context, custom *string) error {
	msg := "InvalidRequest"
	if custom != nil {
		msg = *custom
	}
	return genericError(e, 400, msg)
}

func ServerError(e echo.Context, suffix *string) error {
	msg := "Internal server error"
	if suffix != nil {
		msg += ". " + *suffix
	}
	return genericError(e, 500, msg)
}

func genericError(e echo.Context, code int, msg string) error {
	return e.JSON(code, map[string]string{
		"error": msg,
	})
}

// RandomBase64 returns n bytes from the system csprng encoded as unpadded
// base64url. An error here means the randomness source is broken and the
// calling operation must abort, never fall back to something weaker.
func RandomBase64(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := crand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
