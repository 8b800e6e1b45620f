package orchestratornode

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
)

// Respond finishes a turn in which the model answered without tools.
func Respond(ctx context.Context, in *GraphState, d Deps) (contractx.TurnResult, error) {
	if in == nil || in.Decision == nil {
		return contractx.TurnResult{}, fmt.Errorf("%w: decision is missing", contractx.ErrValidation)
	}

	text := in.Decision.Content
	d.Transcript.Append(schema.AssistantMessage(text, nil))
	appendLog(ctx, d, "assistant", text, "")
	d.Transcript.Trim(d.MaxHistoryTurns)

	return contractx.TurnResult{
		TurnID:  in.TurnID,
		Text:    text,
		Payload: ParsePayload(text),
	}, nil
}
