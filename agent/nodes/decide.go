package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
)

const (
	RouteModelFailed  = "model_failed"
	RouteRespond      = "respond"
	RouteExecuteTools = "execute_tools"
)

// Decide asks the tool-bound model for its next move. A failed call is kept
// on the state rather than returned so the turn can still answer.
func Decide(ctx context.Context, in *GraphState, d Deps) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	callCtx, cancel := withModelTimeout(ctx, d)
	defer cancel()

	msg, err := d.Decider.Generate(callCtx, d.Transcript.Messages())
	if err == nil && msg == nil {
		err = fmt.Errorf("%w: empty decision", contractx.ErrModelInvoke)
	}
	if err != nil {
		log.Error().Err(err).
			Str("turn_id", in.TurnID).
			Int64("customer_id", d.CustomerID).
			Msg("decide call failed")
		in.DecideErr = err
		return in, nil
	}

	in.Decision = msg
	return in, nil
}

func Route(_ context.Context, in *GraphState) (string, error) {
	if in == nil {
		return "", fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	switch {
	case in.DecideErr != nil:
		return RouteModelFailed, nil
	case len(in.Decision.ToolCalls) > 0:
		return RouteExecuteTools, nil
	default:
		return RouteRespond, nil
	}
}

// ModelFailed answers with an apology and leaves the transcript untouched.
func ModelFailed(in *GraphState) (contractx.TurnResult, error) {
	if in == nil || in.DecideErr == nil {
		return contractx.TurnResult{}, fmt.Errorf("%w: no model error to report", contractx.ErrValidation)
	}
	return contractx.TurnResult{
		TurnID: in.TurnID,
		Text:   fmt.Sprintf("I apologize, but I encountered an error: %v. Please try again.", in.DecideErr),
		Error:  in.DecideErr.Error(),
	}, nil
}
