package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"text/template"
	"time"

	"github.com/go-playground/validator"
	"github.com/gorilla/sessions"
	"github.com/haileyok/cimd/oauth/client_manager"
	"github.com/haileyok/cimd/oauth/constants"
	"github.com/haileyok/cimd/oauth/provider"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"golang.org/x/crypto/bcrypt"
)

type Server struct {
	httpd  *http.Server
	echo   *echo.Echo
	logger *slog.Logger
	config *config

	provider *provider.Provider

	demoPasswordHash []byte
}

type Args struct {
	Addr           string
	Hostname       string
	Logger         *slog.Logger
	Version        string
	StaticFilePath string
	CookieSecret   string

	DemoUsername string
	DemoPassword string

	// Overridable for tests that fetch metadata from a local tls server.
	HTTPClient *http.Client
}

type config struct {
	Version        string
	Hostname       string
	DemoUsername   string
	StaticFilePath string
}

type CustomValidator struct {
	validator *validator.Validate
}

type ValidationError struct {
	error
	Field string
	Tag   string
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		var validateErrors validator.ValidationErrors
		if errors.As(err, &validateErrors) && len(validateErrors) > 0 {
			first := validateErrors[0]
			return ValidationError{
				error: err,
				Field: first.Field(),
				Tag:   first.Tag(),
			}
		}

		return err
	}

	return nil
}

type TemplateRenderer struct {
	templates *template.Template
}

func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

func New(args *Args) (*Server, error) {
	if args.Addr == "" {
		return nil, fmt.Errorf("addr must be set")
	}

	if args.Hostname == "" {
		return nil, fmt.Errorf("hostname must be set")
	}

	if args.DemoUsername == "" || args.DemoPassword == "" {
		return nil, fmt.Errorf("demo credentials must be set")
	}

	if args.CookieSecret == "" {
		return nil, fmt.Errorf("cookie secret must be set")
	}

	if args.Logger == nil {
		args.Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	}

	e := echo.New()

	e.Pre(middleware.RemoveTrailingSlash())
	e.Pre(slogecho.New(args.Logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"*"},
		AllowMethods:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           100_000_000,
	}))
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(args.CookieSecret))))

	e.Validator = &CustomValidator{validator: validator.New()}

	httpd := &http.Server{
		Addr:         args.Addr,
		Handler:      e,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(args.DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("could not hash demo password: %w", err)
	}

	s := &Server{
		httpd:  httpd,
		echo:   e,
		logger: args.Logger,
		config: &config{
			Version:        args.Version,
			Hostname:       args.Hostname,
			DemoUsername:   args.DemoUsername,
			StaticFilePath: args.StaticFilePath,
		},
		provider: provider.NewProvider(provider.Args{
			Hostname: args.Hostname,
			ClientManagerArgs: client_manager.Args{
				H: args.HTTPClient,
			},
		}),
		demoPasswordHash: hash,
	}

	renderer := &TemplateRenderer{
		templates: template.Must(template.ParseGlob(s.getFilePath("*.html"))),
	}
	e.Renderer = renderer

	return s, nil
}

func (s *Server) addRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/xrpc/_health", s.handleHealth)
	s.echo.GET("/robots.txt", s.handleRobots)
	s.echo.GET("/.well-known/oauth-authorization-server", s.handleOauthAuthorizationServer)

	s.echo.GET("/oauth/authorize", s.handleOauthAuthorizeGet, s.provider.BaseMiddleware)
	s.echo.POST("/oauth/authorize", s.handleOauthAuthorizePost, s.provider.BaseMiddleware)
	s.echo.POST("/oauth/token", s.handleOauthToken, s.provider.BaseMiddleware)
}

func (s *Server) Serve(ctx context.Context) error {
	s.addRoutes()

	s.provider.CodeStore.StartCleanup(constants.CodeCleanupInterval)
	defer s.provider.CodeStore.StopCleanup()

	s.logger.Info("starting cimd authorization server", "addr", s.httpd.Addr, "issuer", s.provider.Issuer())

	go func() {
		if err := s.httpd.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpd.Shutdown(shutdownCtx)
}

func (s *Server) getFilePath(file string) string {
	return fmt.Sprintf("%s/%s", s.config.StaticFilePath, file)
}
