package server

import (
	"errors"

	"github.com/haileyok/cimd/internal/helpers"
	"github.com/haileyok/cimd/oauth/provider"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleOauthToken(e echo.Context) error {
	var req provider.TokenRequest
	if err := e.Bind(&req); err != nil {
		s.logger.Error("error binding token request", "error", err)
		return helpers.ServerError(e, nil)
	}

	resp, err := s.provider.Exchange(req)
	if err != nil {
		var oerr *provider.Error
		if errors.As(err, &oerr) {
			return e.JSON(400, oerr)
		}
		s.logger.Error("error exchanging authorization code", "error", err)
		return helpers.ServerError(e, nil)
	}

	return e.JSON(200, resp)
}
