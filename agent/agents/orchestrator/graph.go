package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
	nodex "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/nodes"
)

func (o *Orchestrator) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, contractx.TurnResult], error) {
	graph := compose.NewGraph[nodex.GraphInput, contractx.TurnResult]()

	if err := graph.AddLambdaNode("prepare_turn",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.PrepareTurn(ctx, in, o.deps)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node prepare_turn: %w", err)
	}

	if err := graph.AddLambdaNode("decide",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Decide(ctx, in, o.deps)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node decide: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.RouteModelFailed,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (contractx.TurnResult, error) {
			return nodex.ModelFailed(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node model_failed: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.RouteRespond,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (contractx.TurnResult, error) {
			return nodex.Respond(ctx, in, o.deps)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node respond: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.RouteExecuteTools,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExecuteTools(ctx, in, o.deps)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_tools: %w", err)
	}

	if err := graph.AddLambdaNode("summarize",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (contractx.TurnResult, error) {
			return nodex.Summarize(ctx, in, o.deps)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node summarize: %w", err)
	}

	branch := compose.NewGraphBranch(nodex.Route, map[string]bool{
		nodex.RouteModelFailed:  true,
		nodex.RouteRespond:      true,
		nodex.RouteExecuteTools: true,
	})
	if err := graph.AddBranch("decide", branch); err != nil {
		return nil, fmt.Errorf("add decide branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "prepare_turn"},
		{"prepare_turn", "decide"},
		{nodex.RouteExecuteTools, "summarize"},
		{nodex.RouteModelFailed, compose.END},
		{nodex.RouteRespond, compose.END},
		{"summarize", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
