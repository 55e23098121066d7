// Package httpapi is the thin HTTP adapter over the payments service. It
// parses and validates query parameters and maps service results to JSON
// responses; all domain behavior lives behind the service.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"paycache/internal/payments"
)

// Server routes payment queries to the service.
type Server struct {
	service *payments.Service
	driver  string
	router  *gin.Engine
}

// NewServer builds the router. driver names the archive backend for health
// reporting.
func NewServer(service *payments.Service, driver string) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		service: service,
		driver:  driver,
		router:  router,
	}

	router.GET("/payments", s.handleList)
	router.GET("/payments/:id", s.handleGet)
	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Handler exposes the router for an http.Server or test harness.
func (s *Server) Handler() http.Handler { return s.router }

// Run starts serving on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
