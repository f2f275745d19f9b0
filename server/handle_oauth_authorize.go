package server

import (
	"errors"
	"net/url"

	"github.com/Azure/go-autorest/autorest/to"
	"github.com/haileyok/cimd/internal/helpers"
	"github.com/haileyok/cimd/oauth/provider"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type OauthSigninRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`

	ClientID     string `form:"client_id"`
	RedirectURI  string `form:"redirect_uri"`
	ResponseType string `form:"response_type"`
	State        string `form:"state"`
}

func (s *Server) handleOauthAuthorizeGet(e echo.Context) error {
	var req provider.AuthorizeRequest
	if err := e.Bind(&req); err != nil {
		s.logger.Error("error binding authorize request", "error", err)
		return helpers.ServerError(e, nil)
	}

	client, err := s.provider.ValidateAuthorizeRequest(e.Request().Context(), req)
	if err != nil {
		var oerr *provider.Error
		if errors.As(err, &oerr) {
			return e.JSON(400, oerr)
		}
		s.logger.Error("error validating authorize request", "error", err)
		return helpers.ServerError(e, nil)
	}

	sess, _ := session.Get("session", e)
	flashes := sess.Flashes("error")
	sess.Save(e.Request(), e.Response())

	appName := client.Metadata.ClientName
	if appName == "" {
		appName = client.ClientID
	}

	return e.Render(200, "signin.html", map[string]any{
		"AppName": appName,
		"Params":  req,
		"Errors":  flashes,
	})
}

func (s *Server) handleOauthAuthorizePost(e echo.Context) error {
	var req OauthSigninRequest
	if err := e.Bind(&req); err != nil {
		s.logger.Error("error binding sign in request", "error", err)
		return helpers.ServerError(e, nil)
	}

	// The parameters round tripped through the client's browser as hidden
	// form fields, so everything gets validated again before a code is
	// issued.
	authReq := provider.AuthorizeRequest{
		ClientID:     req.ClientID,
		RedirectURI:  req.RedirectURI,
		ResponseType: req.ResponseType,
		State:        req.State,
	}

	client, err := s.provider.ValidateAuthorizeRequest(e.Request().Context(), authReq)
	if err != nil {
		var oerr *provider.Error
		if errors.As(err, &oerr) {
			return e.JSON(400, oerr)
		}
		s.logger.Error("error validating authorize request", "error", err)
		return helpers.ServerError(e, nil)
	}

	if err := e.Validate(req); err != nil {
		return s.signinRetry(e, authReq, "Username and password are required")
	}

	if req.Username != s.config.DemoUsername {
		return s.signinRetry(e, authReq, "Username or password is incorrect")
	}

	if err := bcrypt.CompareHashAndPassword(s.demoPasswordHash, []byte(req.Password)); err != nil {
		if err != bcrypt.ErrMismatchedHashAndPassword {
			s.logger.Error("error comparing password", "error", err)
			return helpers.ServerError(e, nil)
		}
		return s.signinRetry(e, authReq, "Username or password is incorrect")
	}

	target, err := s.provider.GrantAuthorization(client, authReq)
	if err != nil {
		s.logger.Error("error granting authorization", "error", err)
		return helpers.ServerError(e, to.StringPtr("could not issue authorization code"))
	}

	return e.Redirect(303, target)
}

// signinRetry flashes a visible error and sends the user back to the
// credential form with the original request parameters intact.
func (s *Server) signinRetry(e echo.Context, req provider.AuthorizeRequest, msg string) error {
	sess, _ := session.Get("session", e)
	sess.AddFlash(msg, "error")
	sess.Save(e.Request(), e.Response())

	q := url.Values{}
	q.Set("client_id", req.ClientID)
	q.Set("redirect_uri", req.RedirectURI)
	q.Set("response_type", req.ResponseType)
	if req.State != "" {
		q.Set("state", req.State)
	}

	return e.Redirect(303, "/oauth/authorize?"+q.Encode())
}
