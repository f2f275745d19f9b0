package server

import (
	"github.com/labstack/echo/v4"
)

func (s *Server) handleRoot(e echo.Context) error {
	return e.String(200, "this is a cimd demonstration authorization server. clients identify themselves with a client id metadata document url.\n")
}

func (s *Server) handleHealth(e echo.Context) error {
	return e.JSON(200, map[string]string{
		"version": s.config.Version,
	})
}

func (s *Server) handleRobots(e echo.Context) error {
	return e.String(200, "User-agent: *\nDisallow: /oauth/\n")
}
