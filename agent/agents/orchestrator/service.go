package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
	nodex "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/nodes"
	statex "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/state"
)

const DefaultMaxHistoryTurns = 3

// Config configures one session. MaxHistoryTurns of zero means the default;
// a negative value disables trimming.
type Config struct {
	CustomerID      int64
	SystemPrompt    string
	MaxHistoryTurns int
	ModelTimeout    time.Duration
	ParallelTools   bool
}

// Orchestrator runs the conversation of one customer. Turns are serialised.
type Orchestrator struct {
	mu   sync.Mutex
	deps nodex.Deps
	paid []int64

	graphRunner compose.Runnable[nodex.GraphInput, contractx.TurnResult]
	newTurnID   func() string
}

// New binds the tool catalogue to decider. narrator handles the summary
// call; nil reuses decider without tools.
func New(
	decider einomodel.ToolCallingChatModel,
	narrator einomodel.BaseChatModel,
	tools contractx.ToolGateway,
	log contractx.ConversationLog,
	cfg Config,
) (*Orchestrator, error) {
	if decider == nil {
		return nil, errors.New("decide model is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}
	if cfg.CustomerID <= 0 {
		return nil, fmt.Errorf("%w: customer id is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		return nil, contractx.ErrPromptMissing
	}
	if narrator == nil {
		narrator = decider
	}

	bound, err := decider.WithTools(tools.Catalog())
	if err != nil {
		return nil, fmt.Errorf("bind tools: %w", err)
	}

	turns := cfg.MaxHistoryTurns
	if turns == 0 {
		turns = DefaultMaxHistoryTurns
	}

	o := &Orchestrator{
		deps: nodex.Deps{
			Transcript:      statex.NewTranscript(cfg.SystemPrompt),
			Decider:         bound,
			Narrator:        narrator,
			Tools:           tools,
			Log:             log,
			CustomerID:      cfg.CustomerID,
			MaxHistoryTurns: turns,
			ModelTimeout:    cfg.ModelTimeout,
			ParallelTools:   cfg.ParallelTools,
		},
		newTurnID: uuid.NewString,
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleMessage runs one turn. Model failures come back as an apology in the
// result, not as an error.
func (o *Orchestrator) HandleMessage(ctx context.Context, text string) (contractx.TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return contractx.TurnResult{}, contractx.ErrInvalidMessage
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	return o.graphRunner.Invoke(ctx, nodex.GraphInput{
		TurnID: o.newTurnID(),
		Text:   text,
	})
}

// Reset clears the transcript back to the system instruction. The durable
// log is untouched.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deps.Transcript.Reset()
}

// History returns the current transcript, system instruction first.
func (o *Orchestrator) History() []*schema.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.deps.Transcript.Messages()
}

func (o *Orchestrator) CustomerID() int64 {
	return o.deps.CustomerID
}

// MarkPaid records a reservation as paid for this session. Payment is not
// processed; this only drives the UI state.
func (o *Orchestrator) MarkPaid(reservationID int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !slices.Contains(o.paid, reservationID) {
		o.paid = append(o.paid, reservationID)
	}
}

func (o *Orchestrator) IsPaid(reservationID int64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Contains(o.paid, reservationID)
}
