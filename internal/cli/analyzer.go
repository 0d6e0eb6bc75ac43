package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/callbacks"
	"github.com/dyike/AdvisorGo/config"
	"github.com/dyike/AdvisorGo/internal/debug"
	"github.com/dyike/AdvisorGo/internal/graph"
	"github.com/dyike/AdvisorGo/internal/models"
	"github.com/dyike/AdvisorGo/internal/pipeline"
	"github.com/dyike/AdvisorGo/internal/report"
	"github.com/dyike/AdvisorGo/internal/storage"
	"github.com/dyike/AdvisorGo/internal/storage/sqlite"
)

const progressBufferSize = 100

// runAnalysis validates the configuration and the run, wires the tools,
// graph, history store and runner, then renders the recommendation.
func runAnalysis(ctx context.Context, cfg *config.Config, in *models.Inputs, ui *console) (*models.RunResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.ValidateRun(cfg.LLM, in); err != nil {
		return nil, err
	}
	ui.Header(in)

	if err := debug.NewEinoDebugger(cfg).Initialize(ctx); err != nil {
		log.Printf("[CLI] %v", err)
	}

	toolset, err := graph.NewToolset(cfg, in)
	if err != nil {
		return nil, err
	}

	buffer := models.NewMessageBuffer(progressBufferSize)
	progress := graph.NewProgressCallback(func(p models.Progress) {
		buffer.Add(p)
		ui.Progress(p)
	})
	gf := &graph.Factory{
		Tools:      toolset,
		ReportPath: cfg.ReportPath,
		Handlers:   []callbacks.Handler{progress},
	}

	rec, closeRec := sqlite.OpenRecorder(cfg.HistoryDBPath)
	defer func() {
		if err := closeRec(); err != nil {
			log.Printf("[History] close: %v", err)
		}
	}()

	runner := pipeline.NewRunner(&cfg.LLM, cfg.Runner.MaxAttempts, adaptFactory(gf),
		pipeline.WithRecorder(rec),
		pipeline.WithEventHandler(ui.Event),
	)

	res, err := runner.Run(ctx, in)
	ui.TaskBoard(buffer)
	if err != nil {
		ui.Sections(report.ErrorSections(err.Error()))
		return nil, err
	}
	ui.Sections(report.ParseSections(res.Text))
	ui.Success(fmt.Sprintf("Report written to %s", res.ReportPath))
	return res, nil
}

func adaptFactory(gf *graph.Factory) pipeline.PipelineFactory {
	return pipeline.FactoryFunc(func(ctx context.Context, llm config.LLMConfig, rec storage.Recorder) (pipeline.Pipeline, error) {
		p, err := gf.New(ctx, llm, rec)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}
