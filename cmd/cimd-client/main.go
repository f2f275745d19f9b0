package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/haileyok/cimd/oauth"
	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	slogecho "github.com/samber/slog-echo"
	"github.com/urfave/cli/v2"
)

// TestClient is a tiny OAuth consumer that identifies itself with the client
// id metadata document it serves at /oauth/client-metadata.json.
type TestClient struct {
	h         *http.Client
	logger    *slog.Logger
	publicURL string
	serverURL string

	mu     sync.Mutex
	states map[string]bool
}

func main() {
	app := &cli.App{
		Name:  "cimd-client",
		Usage: "A test client that drives the cimd authorization flow",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":7070",
				EnvVars: []string{"CIMD_CLIENT_ADDR"},
			},
			&cli.StringFlag{
				Name:     "public-url",
				Usage:    "public https base url of this client, e.g. https://client.example.com",
				Required: true,
				EnvVars:  []string{"CIMD_CLIENT_PUBLIC_URL"},
			},
			&cli.StringFlag{
				Name:     "server-url",
				Usage:    "issuer url of the authorization server",
				Required: true,
				EnvVars:  []string{"CIMD_CLIENT_SERVER_URL"},
			},
		},
		Action: run,
	}

	app.RunAndExitOnError()
}

func run(cmd *cli.Context) error {
	c := &TestClient{
		h: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    slog.Default(),
		publicURL: cmd.String("public-url"),
		serverURL: cmd.String("server-url"),
		states:    map[string]bool{},
	}

	e := echo.New()
	e.Use(slogecho.New(c.logger))

	e.GET("/", c.handleHome)
	e.GET("/oauth/client-metadata.json", c.handleClientMetadata)
	e.GET("/callback", c.handleCallback)

	httpd := http.Server{
		Addr:    cmd.String("addr"),
		Handler: e,
	}

	fmt.Println("starting cimd test client...")

	if err := httpd.ListenAndServe(); err != nil {
		return err
	}

	return nil
}

func (c *TestClient) clientID() string {
	return c.publicURL + "/oauth/client-metadata.json"
}

func (c *TestClient) redirectURI() string {
	return c.publicURL + "/callback"
}

func (c *TestClient) handleClientMetadata(e echo.Context) error {
	return e.JSON(200, oauth.ClientMetadata{
		ClientID:                c.clientID(),
		ClientName:              "CIMD Test Client",
		ClientURI:               c.publicURL,
		RedirectURIs:            []string{c.redirectURI()},
		GrantTypes:              []string{"authorization_code"},
		ResponseTypes:           []string{"code"},
		ApplicationType:         "web",
		TokenEndpointAuthMethod: "none",
	})
}
