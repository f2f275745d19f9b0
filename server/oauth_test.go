package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/haileyok/cimd/oauth/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	server   *Server
	clientID string
	fetches  int
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{}

	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.fetches++
		w.Write([]byte(`{
			"client_id": "` + f.clientID + `",
			"client_name": "Test App",
			"redirect_uris": ["https://app.example.com/callback"],
			"token_endpoint_auth_method": "none"
		}`))
	}))
	t.Cleanup(ts.Close)

	f.clientID = ts.URL + "/oauth/client-metadata.json"

	s, err := New(&Args{
		Addr:           ":0",
		Hostname:       "auth.example.com",
		Version:        "test",
		StaticFilePath: "../static",
		CookieSecret:   "test-secret",
		DemoUsername:   "demo",
		DemoPassword:   "hunter2",
		HTTPClient:     ts.Client(),
	})
	require.NoError(t, err)

	s.addRoutes()
	f.server = s

	return f
}

func (f *testFixture) get(t *testing.T, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	f.server.echo.ServeHTTP(rec, req)
	return rec
}

func (f *testFixture) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	f.server.echo.ServeHTTP(rec, req)
	return rec
}

func (f *testFixture) authorizeQuery(state string) url.Values {
	q := url.Values{}
	q.Set("client_id", f.clientID)
	q.Set("redirect_uri", "https://app.example.com/callback")
	q.Set("response_type", "code")
	if state != "" {
		q.Set("state", state)
	}
	return q
}

func (f *testFixture) signinForm(state, username, password string) url.Values {
	form := f.authorizeQuery(state)
	form.Set("username", username)
	form.Set("password", password)
	return form
}

func TestWellKnownMetadata(t *testing.T) {
	assert := assert.New(t)

	f := newTestFixture(t)

	rec := f.get(t, "/.well-known/oauth-authorization-server", nil)
	require.Equal(t, 200, rec.Code)

	var meta provider.AuthorizationServerMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))

	assert.Equal("https://auth.example.com", meta.Issuer)
	assert.Equal("https://auth.example.com/oauth/authorize", meta.AuthorizationEndpoint)
	assert.Equal("https://auth.example.com/oauth/token", meta.TokenEndpoint)
	assert.True(meta.ClientIDMetadataDocumentSupported)
}

func TestAuthorizeRendersSignin(t *testing.T) {
	assert := assert.New(t)

	f := newTestFixture(t)

	rec := f.get(t, "/oauth/authorize?"+f.authorizeQuery("xyz").Encode(), nil)
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	assert.Contains(body, "Test App")
	assert.Contains(body, `name="state" value="xyz"`)
	assert.Contains(body, `name="client_id" value="`+f.clientID+`"`)
	assert.Equal("no-store", rec.Header().Get("cache-control"))
	assert.Equal(1, f.fetches)
}

func TestAuthorizeUnsupportedResponseTypeSkipsFetch(t *testing.T) {
	assert := assert.New(t)

	f := newTestFixture(t)

	q := f.authorizeQuery("")
	q.Set("response_type", "token")

	rec := f.get(t, "/oauth/authorize?"+q.Encode(), nil)
	require.Equal(t, 400, rec.Code)

	var oerr provider.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &oerr))
	assert.Equal("unsupported_response_type", oerr.Code)
	assert.Equal(0, f.fetches)
}

func TestAuthorizeInvalidClient(t *testing.T) {
	assert := assert.New(t)

	f := newTestFixture(t)

	q := f.authorizeQuery("")
	q.Set("client_id", "https://example.com/")

	rec := f.get(t, "/oauth/authorize?"+q.Encode(), nil)
	require.Equal(t, 400, rec.Code)

	var oerr provider.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &oerr))
	assert.Equal("invalid_request", oerr.Code)
	assert.Contains(oerr.Description, "path")
}

func TestFullAuthorizationCodeFlow(t *testing.T) {
	assert := assert.New(t)

	f := newTestFixture(t)

	// Submit the login with the original parameters round tripped as form
	// fields.
	rec := f.postForm(t, "/oauth/authorize", f.signinForm("xyz", "demo", "hunter2"))
	require.Equal(t, 303, rec.Code)

	target, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)

	assert.Equal("https", target.Scheme)
	assert.Equal("app.example.com", target.Host)
	assert.Equal("/callback", target.Path)
	assert.Equal("xyz", target.Query().Get("state"))

	code := target.Query().Get("code")
	require.NotEmpty(t, code)

	// Exchange the code for a token.
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)

	rec = f.postForm(t, "/oauth/token", form)
	require.Equal(t, 200, rec.Code)

	var token provider.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	assert.NotEmpty(token.AccessToken)
	assert.Equal("Bearer", token.TokenType)
	assert.Equal(3600, token.ExpiresIn)

	// The same code cannot be redeemed twice.
	rec = f.postForm(t, "/oauth/token", form)
	require.Equal(t, 400, rec.Code)

	var oerr provider.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &oerr))
	assert.Equal("invalid_grant", oerr.Code)
}

func TestSigninWrongPassword(t *testing.T) {
	assert := assert.New(t)

	f := newTestFixture(t)

	rec := f.postForm(t, "/oauth/authorize", f.signinForm("xyz", "demo", "wrong"))
	require.Equal(t, 303, rec.Code)

	// Back to the credential form, not to the client's redirect uri.
	loc := rec.Header().Get("Location")
	assert.True(strings.HasPrefix(loc, "/oauth/authorize?"))

	// The flashed error shows up on the next render of the form.
	res := rec.Result()
	rec = f.get(t, loc, res.Cookies())
	require.Equal(t, 200, rec.Code)
	assert.Contains(rec.Body.String(), "Username or password is incorrect")
}

func TestSigninMissingCredentials(t *testing.T) {
	f := newTestFixture(t)

	form := f.authorizeQuery("xyz")
	form.Set("username", "demo")

	rec := f.postForm(t, "/oauth/authorize", form)
	require.Equal(t, 303, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/oauth/authorize?"))
}

func TestTokenUnsupportedGrantType(t *testing.T) {
	assert := assert.New(t)

	f := newTestFixture(t)

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("code", "cod-whatever")

	rec := f.postForm(t, "/oauth/token", form)
	require.Equal(t, 400, rec.Code)

	var oerr provider.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &oerr))
	assert.Equal("unsupported_grant_type", oerr.Code)
}
