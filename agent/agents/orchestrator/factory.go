package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/events"
	"github.com/tanpawarit/Chative-Restaurant-Concierge/agent/geo"
	promptx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/prompt"
	statex "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/state"
	toolx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/tool"
)

// FactoryConfig holds what every session shares.
type FactoryConfig struct {
	Decider  einomodel.ToolCallingChatModel
	Narrator einomodel.BaseChatModel
	Gateway  toolx.Gateway
	Log      contractx.ConversationLog

	Rules     *toolx.Rules
	Publisher events.Publisher

	MaxHistoryTurns int
	ModelTimeout    time.Duration
	ToolTimeout     time.Duration
	ParallelTools   bool

	Now func() time.Time
}

// NewBuilder returns a Builder that wires a tool executor scoped to the
// profile's customer and location, and renders the system prompt for them.
func NewBuilder(cfg FactoryConfig) (Builder, error) {
	if cfg.Decider == nil {
		return nil, errors.New("decide model is required")
	}
	if cfg.Gateway == nil {
		return nil, errors.New("tool gateway is required")
	}

	rules := toolx.DefaultRules()
	if cfg.Rules != nil {
		rules = *cfg.Rules
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return func(ctx context.Context, p *statex.SessionProfile) (*Orchestrator, error) {
		exec, err := toolx.NewExecutor(cfg.Gateway,
			toolx.Ambient{CustomerID: p.CustomerID, Origin: geo.Point{Lat: p.Lat, Lon: p.Lon}},
			toolx.WithRules(rules),
			toolx.WithPublisher(cfg.Publisher),
			toolx.WithTimeout(cfg.ToolTimeout),
			toolx.WithClock(now),
		)
		if err != nil {
			return nil, fmt.Errorf("tool executor: %w", err)
		}

		system, err := promptx.Concierge(ctx,
			promptx.Guest{Name: p.Name, Phone: p.Phone},
			promptx.Settings{Brand: rules.Brand, ReservationFee: rules.ReservationFee},
			now(),
		)
		if err != nil {
			return nil, err
		}

		o, err := New(cfg.Decider, cfg.Narrator, exec, cfg.Log, Config{
			CustomerID:      p.CustomerID,
			SystemPrompt:    system,
			MaxHistoryTurns: cfg.MaxHistoryTurns,
			ModelTimeout:    cfg.ModelTimeout,
			ParallelTools:   cfg.ParallelTools,
		})
		if err != nil {
			return nil, err
		}
		for _, id := range p.PaidReservations {
			o.MarkPaid(id)
		}
		return o, nil
	}, nil
}
