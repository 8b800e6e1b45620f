package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/events"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/geo"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/store"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/validate"
)

// Gateway is the slice of the persistence layer the tools need.
type Gateway interface {
	FindVenues(ctx context.Context, f store.VenueFilter) ([]store.Venue, error)
	GetVenue(ctx context.Context, id int64) (*store.Venue, error)
	ActiveOffers(ctx context.Context, venueID int64, asOf string) ([]store.Offer, error)
	ActiveOfferTitles(ctx context.Context, asOf string) (map[int64][]string, error)
	Reserve(ctx context.Context, in store.NewReservation) (*store.Reservation, error)
	Cancel(ctx context.Context, id int64) (bool, error)
	GetReservation(ctx context.Context, id int64) (*store.Reservation, error)
	CustomerReservations(ctx context.Context, customerID int64, status string) ([]store.Booking, error)
	CreateFeedback(ctx context.Context, f *store.Feedback) error
}

var _ Gateway = (*store.Store)(nil)

// Ambient is the caller context every tool runs under. It never comes from
// model-supplied arguments.
type Ambient struct {
	CustomerID int64
	Origin     geo.Point
}

type handler func(ctx context.Context, args arguments) contractx.Envelope

// Executor runs the concierge tools for one customer.
type Executor struct {
	gateway   Gateway
	ambient   Ambient
	rules     Rules
	publisher events.Publisher
	now       func() time.Time
	timeout   time.Duration

	catalog  []*schema.ToolInfo
	handlers map[string]handler
}

var _ contractx.ToolGateway = (*Executor)(nil)

type Option func(*Executor)

func WithRules(r Rules) Option {
	return func(e *Executor) { e.rules = r }
}

func WithPublisher(p events.Publisher) Option {
	return func(e *Executor) {
		if p != nil {
			e.publisher = p
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithTimeout bounds each tool call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) { e.timeout = d }
}

func NewExecutor(gateway Gateway, ambient Ambient, opts ...Option) (*Executor, error) {
	if gateway == nil {
		return nil, errors.New("tool gateway is required")
	}
	if ambient.CustomerID <= 0 {
		return nil, fmt.Errorf("%w: customer id is required", contractx.ErrValidation)
	}

	e := &Executor{
		gateway:   gateway,
		ambient:   ambient,
		rules:     DefaultRules(),
		publisher: events.NopPublisher{},
		now:       time.Now,
		timeout:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.catalog = Catalog(e.rules)
	e.handlers = map[string]handler{
		ToolSearchByArea:      e.searchByArea,
		ToolSearchNearby:      e.searchNearby,
		ToolMakeReservation:   e.makeReservation,
		ToolCancelReservation: e.cancelReservation,
		ToolListBookings:      e.listBookings,
		ToolListOffers:        e.listOffers,
		ToolSubmitFeedback:    e.submitFeedback,
	}
	return e, nil
}

func (e *Executor) Catalog() []*schema.ToolInfo {
	return e.catalog
}

func (e *Executor) Execute(ctx context.Context, call contractx.ToolCall) contractx.ToolResult {
	return contractx.ToolResult{
		CallID: call.ID,
		Tool:   call.Name,
		Result: e.Run(ctx, call.Name, call.Arguments),
	}
}

// Run dispatches one tool by name. It always returns an envelope: unknown
// tools, malformed arguments, gateway failures and panics all become
// status "error".
func (e *Executor) Run(ctx context.Context, name, rawArgs string) (env contractx.Envelope) {
	h, ok := e.handlers[name]
	if !ok {
		return contractx.Failure(fmt.Sprintf("Unknown tool: %s", name))
	}

	args, err := parseArguments(rawArgs)
	if err != nil {
		return contractx.Failure(fmt.Sprintf("Invalid arguments for %s: %v", name, err))
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("tool", name).
				Int64("customer_id", e.ambient.CustomerID).
				Interface("panic", r).
				Msg("tool panicked")
			env = contractx.Failure(fmt.Sprintf("Error running %s: internal error", name))
		}
	}()

	env = h(ctx, args)
	log.Debug().
		Str("tool", name).
		Int64("customer_id", e.ambient.CustomerID).
		Str("status", env.Status()).
		Msg("tool executed")
	return env
}

func (e *Executor) today() string {
	return e.now().Format(validate.DateLayout)
}
