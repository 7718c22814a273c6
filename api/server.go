// Package api
package api

import (
	"time"

	"go.uber.org/zap"

	"github.com/kardiachain/crowdfund-backend/handler"
)

const (
	ServerVersion         = "1.0.0"
	DefaultRequestTimeout = 10 * time.Second
)

type Server struct {
	handler        handler.Handler
	requestTimeout time.Duration

	logger *zap.Logger
}

func NewServer() *Server {
	return &Server{requestTimeout: DefaultRequestTimeout, logger: zap.NewNop()}
}

func (s *Server) SetHandler(h handler.Handler) *Server {
	s.handler = h
	return s
}

func (s *Server) SetLogger(logger *zap.Logger) *Server {
	s.logger = logger
	return s
}

func (s *Server) SetRequestTimeout(timeout time.Duration) *Server {
	if timeout > 0 {
		s.requestTimeout = timeout
	}
	return s
}
