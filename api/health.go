// Package api
package api

import (
	"github.com/labstack/echo"
)

func (s *Server) Ping(c echo.Context) error {
	type pingStat struct {
		Version string `json:"version"`
	}
	stats := &pingStat{Version: ServerVersion}
	return OK.SetData(stats).Build(c)
}
