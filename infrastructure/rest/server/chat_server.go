package server

import (
	"bate-papo/domain"
	"bate-papo/domain/chat"
	"bate-papo/errors"
	"bate-papo/infrastructure/rest"
	"bate-papo/observability"
	"bate-papo/services"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// UserHeader identifies the caller on every message and status route.
const UserHeader = "User"

type ChatServer struct {
	log     *slog.Logger
	service services.IChatService
	metrics *observability.Metrics
	echo    *echo.Echo
}

type Option func(*ChatServer)

// WithMetrics counts every request and exposes GET /metrics.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(s *ChatServer) {
		s.metrics = metrics
	}
}

func NewChatServer(log *slog.Logger, service services.IChatService, opts ...Option) *ChatServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &ChatServer{log: log, service: service, echo: e}
	for _, opt := range opts {
		opt(s)
	}

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				s.log.Warn("Request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			s.log.Debug("Request served", attrs...)
			return nil
		},
	}))
	if s.metrics != nil {
		e.Use(s.countRequests)
		e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	e.POST("/participants", s.Join)
	e.GET("/participants", s.ListParticipants)
	e.POST("/messages", s.PostMessage)
	e.GET("/messages", s.GetMessages)
	e.DELETE("/messages/:id", s.DeleteMessage)
	e.POST("/status", s.Heartbeat)
	return s
}

// Handler exposes the router, mostly for httptest.
func (s *ChatServer) Handler() http.Handler {
	return s.echo
}

// Start blocks until the server is shut down.
// http.ErrServerClosed is returned after a graceful Shutdown.
func (s *ChatServer) Start(address string) error {
	return s.echo.Start(address)
}

func (s *ChatServer) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *ChatServer) Join(c echo.Context) error {
	var req rest.JoinRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(fmt.Errorf("%w: %v", errors.ErrInvalidName, err))
	}
	if _, err := s.service.Join(chat.JoinCommand{Name: req.Name}); err != nil {
		return s.fail(err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *ChatServer) ListParticipants(c echo.Context) error {
	participants, err := s.service.ListParticipants()
	if err != nil {
		return s.fail(err)
	}
	return c.JSON(http.StatusOK, rest.ToParticipantResponses(participants))
}

func (s *ChatServer) PostMessage(c echo.Context) error {
	var req rest.PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(fmt.Errorf("%w: %v", errors.ErrInvalidMessage, err))
	}
	_, err := s.service.PostMessage(chat.PostMessageCommand{
		From: c.Request().Header.Get(UserHeader),
		To:   req.To,
		Text: req.Text,
		Type: domain.MessageType(req.Type),
	})
	if err != nil {
		return s.fail(err)
	}
	return c.NoContent(http.StatusCreated)
}

// GetMessages reads the optional limit query parameter.
// limit bounds the number of log entries scanned, so fewer messages may come back.
func (s *ChatServer) GetMessages(c echo.Context) error {
	cmd := chat.GetMessageCommand{Viewer: c.Request().Header.Get(UserHeader)}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return s.fail(fmt.Errorf("%w: %q", errors.ErrInvalidLimit, raw))
		}
		cmd.Limit = &limit
	}
	messages, err := s.service.GetMessages(cmd)
	if err != nil {
		return s.fail(err)
	}
	return c.JSON(http.StatusOK, rest.ToMessageResponses(messages))
}

func (s *ChatServer) Heartbeat(c echo.Context) error {
	if err := s.service.Heartbeat(c.Request().Header.Get(UserHeader)); err != nil {
		return s.fail(err)
	}
	return c.NoContent(http.StatusOK)
}

func (s *ChatServer) DeleteMessage(c echo.Context) error {
	err := s.service.DeleteMessage(chat.DeleteMessageCommand{
		MessageID: c.Param("id"),
		Requester: c.Request().Header.Get(UserHeader),
	})
	if err != nil {
		return s.fail(err)
	}
	return c.NoContent(http.StatusOK)
}

// countRequests labels by route pattern, not raw path, to keep ids out of the labels.
func (s *ChatServer) countRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		status := c.Response().Status
		var httpErr *echo.HTTPError
		switch {
		case goerrors.As(err, &httpErr):
			status = httpErr.Code
		case err != nil:
			status = http.StatusInternalServerError
		}
		s.metrics.ObserveRequest(c.Request().Method, c.Path(), status)
		return err
	}
}

// fail turns a service error into an echo error carrying the mapped status.
// Storage causes are kept internal and never written to the client.
func (s *ChatServer) fail(err error) error {
	status := errors.MapToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed on storage", "error", err)
		message = http.StatusText(status)
	}
	return echo.NewHTTPError(status, message).SetInternal(err)
}
