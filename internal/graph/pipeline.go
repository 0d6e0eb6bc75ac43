package graph

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/dyike/AdvisorGo/config"
	"github.com/dyike/AdvisorGo/internal/agents"
	"github.com/dyike/AdvisorGo/internal/models"
	"github.com/dyike/AdvisorGo/internal/storage"
	"github.com/google/uuid"
)

// AdvisorPipeline runs the advisor graph once per call with a fresh state.
type AdvisorPipeline struct {
	deps      Deps
	modelUsed string
	handlers  []callbacks.Handler
	newID     func() string
}

func NewAdvisorPipeline(deps Deps, modelUsed string, handlers ...callbacks.Handler) *AdvisorPipeline {
	return &AdvisorPipeline{
		deps:      deps,
		modelUsed: modelUsed,
		handlers:  handlers,
		newID:     uuid.NewString,
	}
}

// Run records the run, executes every task and returns the advice result.
// History write failures on start or per task fail the run so the caller
// can decide to continue without history.
func (p *AdvisorPipeline) Run(ctx context.Context, in *models.Inputs) (*models.RunResult, error) {
	if in == nil {
		return nil, fmt.Errorf("run graph: inputs are required")
	}
	recorder := p.deps.Recorder
	if recorder == nil {
		recorder = storage.Noop{}
	}
	deps := p.deps
	deps.Recorder = recorder

	runID := p.newID()
	run := storage.RunRecord{
		ID:          runID,
		Ticker:      in.Ticker,
		CompanyName: in.CompanyName,
		Market:      in.Market,
		Model:       p.modelUsed,
	}
	if err := recorder.StartRun(ctx, run); err != nil {
		return nil, fmt.Errorf("start run: %w", err)
	}

	runnable, err := NewAdvisorGraph(ctx, deps, func(ctx context.Context) *models.AdvisorState {
		return models.NewAdvisorState(runID, in, p.modelUsed)
	})
	if err != nil {
		return nil, err
	}

	var opts []compose.Option
	if len(p.handlers) > 0 {
		opts = append(opts, compose.WithCallbacks(p.handlers...))
	}
	res, err := runnable.Invoke(ctx, in, opts...)
	if err != nil {
		run.Status, run.Error = storage.StatusError, err.Error()
		if ferr := recorder.FinishRun(ctx, run); ferr != nil {
			log.Printf("[AdvisorGraph] finish run %s: %v", runID, ferr)
		}
		return nil, fmt.Errorf("run graph: %w", err)
	}

	run.Status, run.ReportPath = storage.StatusDone, res.ReportPath
	if ferr := recorder.FinishRun(ctx, run); ferr != nil {
		log.Printf("[AdvisorGraph] finish run %s: %v", runID, ferr)
	}
	log.Printf("[AdvisorGraph] run %s finished with %s", runID, p.modelUsed)
	return res, nil
}

// Factory builds one pipeline per model candidate. The chat model is
// created once per call and shared by every agent.
type Factory struct {
	Tools      []tool.BaseTool
	ReportPath string
	Handlers   []callbacks.Handler
	NewModel   func(ctx context.Context, cfg config.LLMConfig) (model.ToolCallingChatModel, error)
}

func (f *Factory) New(ctx context.Context, llm config.LLMConfig, rec storage.Recorder) (*AdvisorPipeline, error) {
	newModel := f.NewModel
	if newModel == nil {
		newModel = agents.NewChatModel
	}
	cm, err := newModel(ctx, llm)
	if err != nil {
		return nil, err
	}
	exec, err := agents.NewReactExecutor(ctx, cm, f.Tools)
	if err != nil {
		return nil, err
	}
	deps := Deps{
		Executor:   exec,
		Recorder:   rec,
		ReportPath: f.ReportPath,
	}
	return NewAdvisorPipeline(deps, config.NormalizeModelID(llm.Model), f.Handlers...), nil
}
