package graph

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/cloudwego/eino/compose"
	"github.com/dyike/AdvisorGo/consts"
	"github.com/dyike/AdvisorGo/internal/agents"
	"github.com/dyike/AdvisorGo/internal/models"
	"github.com/dyike/AdvisorGo/internal/storage"
	"github.com/dyike/AdvisorGo/pkg/utils"
)

// Deps are the collaborators of one compiled advisor graph. ReportPath
// names the report directory; a task with an OutputFile writes its output
// there. With the default tasks the last one writes to ReportPath itself.
type Deps struct {
	Executor   agents.Executor
	Recorder   storage.Recorder
	Agents     []agents.Agent
	Tasks      []agents.Task
	ReportPath string
}

type builder struct {
	deps      Deps
	final     string
	outputDir string
}

// NewAdvisorGraph compiles the task DAG. Async tasks start from START; the
// others join on every task they name. The last task is the only sink and
// produces the run result.
func NewAdvisorGraph(ctx context.Context, deps Deps, genState compose.GenLocalState[*models.AdvisorState]) (compose.Runnable[*models.Inputs, *models.RunResult], error) {
	if deps.Executor == nil {
		return nil, fmt.Errorf("advisor graph: executor is required")
	}
	if deps.Recorder == nil {
		deps.Recorder = storage.Noop{}
	}
	if len(deps.Agents) == 0 {
		deps.Agents = agents.DefaultAgents()
	}
	if len(deps.Tasks) == 0 {
		deps.Tasks = agents.DefaultTasks()
		if deps.ReportPath != "" {
			deps.Tasks[len(deps.Tasks)-1].OutputFile = filepath.Base(deps.ReportPath)
		}
	}
	if err := agents.ValidateTasks(deps.Tasks, deps.Agents); err != nil {
		return nil, fmt.Errorf("advisor graph: %w", err)
	}

	b := &builder{deps: deps, final: deps.Tasks[len(deps.Tasks)-1].Name}
	if deps.ReportPath != "" {
		b.outputDir = filepath.Dir(deps.ReportPath)
	}
	if err := b.checkSinks(); err != nil {
		return nil, err
	}

	g := compose.NewGraph[*models.Inputs, *models.RunResult](
		compose.WithGenLocalState(genState),
	)

	for _, task := range deps.Tasks {
		task := task
		var err error
		switch {
		case task.Name == b.final:
			err = g.AddLambdaNode(task.Name, compose.InvokableLambda(func(ctx context.Context, _ map[string]any) (*models.RunResult, error) {
				return b.finish(ctx, task)
			}), compose.WithNodeName(task.Name))
		case len(task.Context) == 0:
			err = g.AddLambdaNode(task.Name, compose.InvokableLambda(func(ctx context.Context, _ *models.Inputs) (map[string]any, error) {
				return b.step(ctx, task)
			}), compose.WithNodeName(task.Name))
		default:
			err = g.AddLambdaNode(task.Name, compose.InvokableLambda(func(ctx context.Context, _ map[string]any) (map[string]any, error) {
				return b.step(ctx, task)
			}), compose.WithNodeName(task.Name))
		}
		if err != nil {
			return nil, fmt.Errorf("add node %s: %w", task.Name, err)
		}
	}

	for _, task := range deps.Tasks {
		if len(task.Context) == 0 {
			if err := g.AddEdge(compose.START, task.Name); err != nil {
				return nil, fmt.Errorf("add edge start->%s: %w", task.Name, err)
			}
			continue
		}
		for _, dep := range task.Context {
			if err := g.AddEdge(dep, task.Name); err != nil {
				return nil, fmt.Errorf("add edge %s->%s: %w", dep, task.Name, err)
			}
		}
	}
	if err := g.AddEdge(b.final, compose.END); err != nil {
		return nil, fmt.Errorf("add edge %s->end: %w", b.final, err)
	}

	// 汇合节点需要等待所有前驱完成
	r, err := g.Compile(ctx,
		compose.WithGraphName(consts.GraphName),
		compose.WithNodeTriggerMode(compose.AllPredecessor),
	)
	if err != nil {
		return nil, fmt.Errorf("compile advisor graph: %w", err)
	}
	return r, nil
}

// checkSinks makes sure every task other than the last one feeds another.
func (b *builder) checkSinks() error {
	used := map[string]bool{}
	for _, t := range b.deps.Tasks {
		for _, dep := range t.Context {
			used[dep] = true
		}
	}
	for _, t := range b.deps.Tasks {
		if t.Name != b.final && !used[t.Name] {
			return fmt.Errorf("advisor graph: task %s has no consumer", t.Name)
		}
		if t.Name == b.final && (used[t.Name] || len(t.Context) == 0) {
			return fmt.Errorf("advisor graph: final task %s must join upstream tasks and feed none", t.Name)
		}
	}
	return nil
}

// step runs a task and returns its output keyed by task name, so parallel
// predecessors merge at the join without collisions.
func (b *builder) step(ctx context.Context, task agents.Task) (map[string]any, error) {
	out, err := b.run(ctx, task)
	if err != nil {
		return nil, err
	}
	return map[string]any{task.Name: out.Text}, nil
}

func (b *builder) run(ctx context.Context, task agents.Task) (models.TaskOutput, error) {
	var (
		in       *models.Inputs
		runID    string
		upstream []models.TaskOutput
		missing  string
	)
	_ = compose.ProcessState[*models.AdvisorState](ctx, func(_ context.Context, state *models.AdvisorState) error {
		in, runID = state.Inputs, state.RunID
		for _, dep := range task.Context {
			out, ok := state.Output(dep)
			if !ok {
				missing = dep
				return nil
			}
			upstream = append(upstream, out)
		}
		return nil
	})
	if in == nil {
		return models.TaskOutput{}, fmt.Errorf("task %s: run inputs missing from state", task.Name)
	}
	if missing != "" {
		return models.TaskOutput{}, fmt.Errorf("task %s: upstream %s has no output", task.Name, missing)
	}

	agent, ok := agents.FindAgent(b.deps.Agents, task.Agent)
	if !ok {
		return models.TaskOutput{}, fmt.Errorf("task %s: unknown agent %s", task.Name, task.Agent)
	}
	rendered, err := agents.RenderTasks([]agents.Task{task}, in)
	if err != nil {
		return models.TaskOutput{}, err
	}
	system, err := agents.SystemPrompt(agent, in)
	if err != nil {
		return models.TaskOutput{}, err
	}

	log.Printf("[AdvisorGraph] %s started by %s", task.Name, agent.Name)
	out, err := b.deps.Executor.Execute(ctx, agents.TaskRequest{
		Task:         rendered[0],
		Agent:        agent,
		SystemPrompt: system,
		Context:      upstream,
	})
	if err != nil {
		return models.TaskOutput{}, err
	}
	out.Task, out.Agent = task.Name, agent.Name
	if task.OutputFile != "" && b.outputDir != "" {
		path, err := utils.WriteMarkdown(b.outputDir, task.OutputFile, out.Text)
		if err != nil {
			return models.TaskOutput{}, fmt.Errorf("task %s: write output: %w", task.Name, err)
		}
		out.OutputPath = path
	}

	_ = compose.ProcessState[*models.AdvisorState](ctx, func(_ context.Context, state *models.AdvisorState) error {
		state.Record(out)
		return nil
	})
	if err := b.deps.Recorder.RecordTask(ctx, runID, out); err != nil {
		return models.TaskOutput{}, fmt.Errorf("record %s: %w", task.Name, err)
	}
	return out, nil
}

func (b *builder) finish(ctx context.Context, task agents.Task) (*models.RunResult, error) {
	out, err := b.run(ctx, task)
	if err != nil {
		return nil, err
	}

	res := &models.RunResult{Text: out.Text, ReportPath: out.OutputPath}
	_ = compose.ProcessState[*models.AdvisorState](ctx, func(_ context.Context, state *models.AdvisorState) error {
		res.RunID = state.RunID
		res.ModelUsed = state.ModelUsed
		res.Tasks = state.Outputs()
		return nil
	})
	return res, nil
}
