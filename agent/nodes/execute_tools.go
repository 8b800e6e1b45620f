package orchestratornode

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
)

const maxParallelTools = 4

// ExecuteTools runs every requested call and appends the request and one
// result entry per call to the transcript, in request order.
func ExecuteTools(ctx context.Context, in *GraphState, d Deps) (*GraphState, error) {
	if in == nil || in.Decision == nil {
		return nil, fmt.Errorf("%w: decision is missing", contractx.ErrValidation)
	}

	calls := in.Decision.ToolCalls
	d.Transcript.Append(&schema.Message{
		Role:      schema.Assistant,
		Content:   in.Decision.Content,
		ToolCalls: calls,
	})

	results := make([]contractx.ToolResult, len(calls))
	if d.ParallelTools && len(calls) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxParallelTools)
		for i, call := range calls {
			i, call := i, call
			g.Go(func() error {
				results[i] = d.Tools.Execute(gctx, toContractCall(call))
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, call := range calls {
			results[i] = d.Tools.Execute(ctx, toContractCall(call))
		}
	}

	for i, call := range calls {
		d.Transcript.Append(schema.ToolMessage(encodeEnvelope(results[i]), call.ID))
		log.Info().
			Str("turn_id", in.TurnID).
			Str("tool", results[i].Tool).
			Str("status", results[i].Result.Status()).
			Msg("tool call finished")
	}

	in.ToolResults = results
	return in, nil
}

func toContractCall(c schema.ToolCall) contractx.ToolCall {
	return contractx.ToolCall{ID: c.ID, Name: c.Function.Name, Arguments: c.Function.Arguments}
}

func encodeEnvelope(r contractx.ToolResult) string {
	raw, err := json.Marshal(r.Result)
	if err != nil {
		raw, _ = json.Marshal(contractx.Failure(fmt.Sprintf("Error encoding %s result: %v", r.Tool, err)))
	}
	return string(raw)
}
