// Package web serves the loan intake form, results view and email panel.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const sessionContextKey = "session"

// Server is the browser-facing HTTP surface
type Server struct {
	echo       *echo.Echo
	service    *core.LoanService
	drafter    *core.EmailDrafter
	sessions   core.SessionProvider
	forwarder  core.DraftForwarder
	logger     *zap.Logger
	listenAddr string
	cookieName string
}

// NewServer creates a new web server. forwarder may be nil when the outbox is disabled.
func NewServer(
	service *core.LoanService,
	drafter *core.EmailDrafter,
	sessions core.SessionProvider,
	forwarder core.DraftForwarder,
	logger *zap.Logger,
	listenAddr string,
	cookieName string,
) (*Server, error) {
	if service == nil || drafter == nil || sessions == nil {
		return nil, fmt.Errorf("service, drafter and session provider are required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cookieName == "" {
		cookieName = "loan_session"
	}

	renderer, err := newRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:       e,
		service:    service,
		drafter:    drafter,
		sessions:   sessions,
		forwarder:  forwarder,
		logger:     logger,
		listenAddr: listenAddr,
		cookieName: cookieName,
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ui := s.echo.Group("", s.sessionMiddleware)
	ui.GET("/", s.handleIndex)
	ui.POST("/apply", s.handleApply)
	ui.POST("/email", s.handleEmail)
	ui.POST("/email/forward", s.handleForward)

	v1 := s.echo.Group("/api/v1", s.sessionMiddleware)
	v1.POST("/applications", s.handleAPIApplication)
	v1.POST("/emails", s.handleAPIEmail)
}

// sessionMiddleware resolves the caller's session from its cookie, issuing a new one if needed
func (s *Server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := ""
		if cookie, err := c.Cookie(s.cookieName); err == nil {
			if _, perr := uuid.Parse(cookie.Value); perr == nil {
				id = cookie.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			c.SetCookie(&http.Cookie{
				Name:     s.cookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		session, err := s.sessions.Session(c.Request().Context(), id)
		if err != nil {
			s.logger.Error("Failed to resolve session", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
		}
		c.Set(sessionContextKey, session)
		return next(c)
	}
}

func sessionFrom(c echo.Context) core.Session {
	return c.Get(sessionContextKey).(core.Session)
}

// HealthResponse is the response body for GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Web server starting", zap.String("address", s.listenAddr))
	if err := s.echo.Start(s.listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Web server shutting down")
	return s.echo.Shutdown(ctx)
}
