package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (c *TestClient) handleHome(e echo.Context) error {
	state := uuid.NewString()

	c.mu.Lock()
	c.states[state] = true
	c.mu.Unlock()

	q := url.Values{}
	q.Set("client_id", c.clientID())
	q.Set("redirect_uri", c.redirectURI())
	q.Set("response_type", "code")
	q.Set("state", state)

	return e.Redirect(302, c.serverURL+"/oauth/authorize?"+q.Encode())
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *TestClient) handleCallback(e echo.Context) error {
	code := e.QueryParam("code")
	state := e.QueryParam("state")

	if code == "" {
		return e.String(400, "no code in callback")
	}

	c.mu.Lock()
	known := c.states[state]
	delete(c.states, state)
	c.mu.Unlock()

	if !known {
		return e.String(400, "unknown state in callback")
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)

	req, err := http.NewRequestWithContext(e.Request().Context(), "POST", c.serverURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.h.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach token endpoint: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != 200 {
		c.logger.Error("token exchange failed", "status", resp.StatusCode, "body", string(b))
		return e.String(400, "token exchange failed: "+string(b))
	}

	var token tokenResponse
	if err := json.Unmarshal(b, &token); err != nil {
		return fmt.Errorf("could not unmarshal token response: %w", err)
	}

	return e.String(200, fmt.Sprintf("signed in!\n\naccess_token: %s\ntoken_type: %s\nexpires_in: %d\n", token.AccessToken, token.TokenType, token.ExpiresIn))
}
