package orchestratornode

import (
	"context"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
	statex "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/state"
)

// Deps is everything the turn nodes touch. The transcript belongs to one
// session and the caller serialises turns.
type Deps struct {
	Transcript *statex.Transcript
	Decider    einomodel.BaseChatModel
	Narrator   einomodel.BaseChatModel
	Tools      contractx.ToolGateway
	Log        contractx.ConversationLog

	CustomerID      int64
	MaxHistoryTurns int
	ModelTimeout    time.Duration
	ParallelTools   bool
}

type GraphInput struct {
	TurnID string
	Text   string
}

type GraphState struct {
	TurnID string
	Text   string

	Decision    *schema.Message
	DecideErr   error
	ToolResults []contractx.ToolResult
}

// PrepareTurn records the user message in the transcript and the durable log.
// A log failure is reported and otherwise ignored.
func PrepareTurn(ctx context.Context, in GraphInput, d Deps) (*GraphState, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, contractx.ErrInvalidMessage
	}

	d.Transcript.Append(schema.UserMessage(text))
	d.Transcript.Trim(d.MaxHistoryTurns)
	appendLog(ctx, d, "user", text, "")

	return &GraphState{TurnID: in.TurnID, Text: text}, nil
}

func appendLog(ctx context.Context, d Deps, role, text, toolUsed string) {
	if d.Log == nil {
		return
	}
	if _, err := d.Log.AppendLogEntry(ctx, d.CustomerID, role, text, toolUsed); err != nil {
		log.Warn().Err(err).
			Int64("customer_id", d.CustomerID).
			Str("role", role).
			Msg("conversation log append failed")
	}
}

func withModelTimeout(ctx context.Context, d Deps) (context.Context, context.CancelFunc) {
	if d.ModelTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.ModelTimeout)
}
