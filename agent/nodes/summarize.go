package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
)

// Summarize asks the narrator to explain the tool results. Tool mutations
// have already committed, so a failed narration falls back to the tool
// messages instead of failing the turn.
func Summarize(ctx context.Context, in *GraphState, d Deps) (contractx.TurnResult, error) {
	if in == nil {
		return contractx.TurnResult{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	result := contractx.TurnResult{
		TurnID:      in.TurnID,
		ToolResults: in.ToolResults,
	}

	callCtx, cancel := withModelTimeout(ctx, d)
	msg, err := d.Narrator.Generate(callCtx, d.Transcript.Messages())
	cancel()

	var text string
	switch {
	case err != nil:
		log.Error().Err(err).
			Str("turn_id", in.TurnID).
			Int64("customer_id", d.CustomerID).
			Msg("summary call failed")
		result.Error = err.Error()
	case msg != nil:
		text = msg.Content
	}
	if strings.TrimSpace(text) == "" {
		text = fallbackSummary(in.ToolResults)
	}

	d.Transcript.Append(schema.AssistantMessage(text, nil))
	appendLog(ctx, d, "assistant", text, toolNames(in.ToolResults))
	d.Transcript.Trim(d.MaxHistoryTurns)

	result.Text = text
	result.Payload = ParsePayload(text)
	result.Fields = ExtractFields(in.ToolResults)
	return result, nil
}

func fallbackSummary(results []contractx.ToolResult) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		if m := strings.TrimSpace(r.Result.Message()); m != "" {
			lines = append(lines, m)
		}
	}
	if len(lines) == 0 {
		return "I ran your request but could not put together a summary. Please try again."
	}
	return strings.Join(lines, "\n")
}

func toolNames(results []contractx.ToolResult) string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Tool)
	}
	return strings.Join(names, ", ")
}
