package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/toolscout-core/server/internal/agent/graph/nodes"
	"github.com/toolscout-core/server/internal/agent/graph/observers"
	"github.com/toolscout-core/server/internal/agent/model"
	logx "github.com/toolscout-core/server/pkg/logger"
)

// maxRunSteps covers the longest path: classify, branch, detail falling back to recommend, post_process.
const maxRunSteps = 10

// Runner executes the compiled routing graph for one turn.
type Runner interface {
	Invoke(ctx context.Context, in model.Turn) (model.Turn, error)
}

// GraphConfig holds everything the nodes need.
type GraphConfig struct {
	Deps *nodes.Deps
}

// GraphBuilder handles the construction of the routing graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.Turn, model.Turn]
	errs   []error
}

type graphRunner struct {
	runnable compose.Runnable[model.Turn, model.Turn]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.Turn) (model.Turn, error) {
	return r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
}

// BuildRunner compiles the graph and wraps it in a Runner.
func BuildRunner(ctx context.Context, config *GraphConfig) (Runner, error) {
	runnable, err := BuildGraph(ctx, config)
	if err != nil {
		return nil, err
	}
	logx.Debug().Msg("Routing graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled routing graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.Turn, model.Turn], error) {
	if config == nil || config.Deps == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	d := config.Deps
	if d.Classifier == nil || d.Router == nil {
		return nil, fmt.Errorf("classifier and router are required")
	}
	if d.Ranker == nil || d.Catalog == nil {
		return nil, fmt.Errorf("ranker and catalog are required")
	}
	if d.Synthesizer == nil || d.Processor == nil {
		return nil, fmt.Errorf("synthesizer and post-processor are required")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.Turn, model.Turn](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	builder.addNodes()
	builder.addEdges()
	if len(builder.errs) > 0 {
		logx.Error().Errs("errors", builder.errs).Msg("Error assembling graph")
		return nil, fmt.Errorf("error assembling graph: %w", builder.errs[0])
	}

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

func (b *GraphBuilder) collect(err error) {
	if err != nil {
		b.errs = append(b.errs, err)
	}
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() {
	d := b.config.Deps

	b.collect(b.graph.AddLambdaNode(nodes.NodeClassify,
		nodes.NewClassifyNode(d),
		compose.WithStatePreHandler(nodes.NewClassifyPreHandler()),
	))
	b.collect(b.graph.AddLambdaNode(nodes.NodeRecommend, nodes.NewRecommendNode(d)))
	b.collect(b.graph.AddLambdaNode(nodes.NodeDetail, nodes.NewDetailNode(d)))
	b.collect(b.graph.AddLambdaNode(nodes.NodeChat, nodes.NewChatNode(d)))
	b.collect(b.graph.AddLambdaNode(nodes.NodeSlotFill, nodes.NewSlotFillNode()))
	b.collect(b.graph.AddLambdaNode(nodes.NodeRedirect, nodes.NewRedirectNode(d.Synthesis.ServiceName)))
	b.collect(b.graph.AddLambdaNode(nodes.NodePostProcess,
		nodes.NewPostProcessNode(d),
		compose.WithStatePostHandler(nodes.NewPostProcessPostHandler()),
	))
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeClassify},
		{nodes.NodeRecommend, nodes.NodePostProcess},
		{nodes.NodeDetail, nodes.NodePostProcess},
		{nodes.NodeChat, nodes.NodePostProcess},
		{nodes.NodePostProcess, compose.END},
		{nodes.NodeSlotFill, compose.END},
		{nodes.NodeRedirect, compose.END},
	}

	for _, edge := range edges {
		b.collect(b.graph.AddEdge(edge[0], edge[1]))
	}
}

// addBranches creates the strategy fan-out after classification
func (b *GraphBuilder) addBranches() error {
	strategyBranch := compose.NewGraphBranch(
		nodes.NewStrategyCondition(),
		map[string]bool{
			nodes.NodeRecommend: true,
			nodes.NodeDetail:    true,
			nodes.NodeChat:      true,
			nodes.NodeSlotFill:  true,
			nodes.NodeRedirect:  true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeClassify, strategyBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding strategy branch")
		return fmt.Errorf("error adding strategy branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.Turn, model.Turn], error) {
	runnable, err := b.graph.Compile(ctx,
		compose.WithGraphName("toolscout_routing"),
		compose.WithMaxRunSteps(maxRunSteps),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
