package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/agents/orchestrator"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/geo"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/store"
)

// Backend is the slice of the persistence layer the HTTP surface reads.
type Backend interface {
	GetOrCreateCustomer(ctx context.Context, name, phone, email string) (*store.Customer, error)
	GetReservation(ctx context.Context, id int64) (*store.Reservation, error)
	CustomerConversation(ctx context.Context, customerID int64) ([]store.LogEntry, error)
	ConversationSummaries(ctx context.Context) ([]store.ConversationSummary, error)
	VenueFeedback(ctx context.Context, venueID int64) ([]store.FeedbackEntry, error)
}

var _ Backend = (*store.Store)(nil)

type Handler struct {
	backend  Backend
	sessions *orchestrator.Registry
	origin   geo.Point
}

// NewHandler serves sessions from the registry. origin anchors searches for
// guests who do not share a location.
func NewHandler(backend Backend, sessions *orchestrator.Registry, origin geo.Point) *Handler {
	return &Handler{backend: backend, sessions: sessions, origin: origin}
}

// NewServer returns an echo instance with every route registered.
func NewServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURIPath: true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("http request")
			return nil
		},
	}))

	e.GET("/healthz", h.Health)

	v1 := e.Group("/v1")
	v1.POST("/sessions", h.OpenSession)
	v1.POST("/sessions/:customerID/messages", h.PostMessage)
	v1.POST("/sessions/:customerID/reset", h.ResetSession)
	v1.DELETE("/sessions/:customerID", h.CloseSession)
	v1.POST("/sessions/:customerID/reservations/:reservationID/pay", h.PayReservation)
	v1.GET("/customers/:customerID/conversations", h.CustomerConversation)
	v1.GET("/conversations", h.ConversationSummaries)
	v1.GET("/restaurants/:id/feedback", h.VenueFeedback)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
