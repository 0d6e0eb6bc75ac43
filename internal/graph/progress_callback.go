package graph

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/dyike/AdvisorGo/consts"
	"github.com/dyike/AdvisorGo/internal/models"
)

const maxProgressContent = 200

// ProgressCallback turns graph node and tool events into models.Progress.
type ProgressCallback struct {
	callbacks.HandlerBuilder

	Out func(models.Progress)
}

func NewProgressCallback(out func(models.Progress)) *ProgressCallback {
	return &ProgressCallback{Out: out}
}

func (cb *ProgressCallback) push(p models.Progress) {
	if cb.Out != nil {
		cb.Out(p)
	}
}

func (cb *ProgressCallback) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if info == nil {
		return ctx
	}
	switch {
	case isTaskNode(info.Name):
		cb.push(models.Progress{Kind: models.ProgressNodeStart, Node: info.Name})
	case info.Component == components.ComponentOfTool:
		args := ""
		if in := tool.ConvCallbackInput(input); in != nil {
			args = in.ArgumentsInJSON
		}
		cb.push(models.Progress{Kind: models.ProgressToolCall, Node: info.Name, Content: clip(args)})
	}
	return ctx
}

func (cb *ProgressCallback) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if info == nil {
		return ctx
	}
	switch {
	case isTaskNode(info.Name):
		cb.push(models.Progress{Kind: models.ProgressNodeEnd, Node: info.Name})
	case info.Component == components.ComponentOfTool:
		resp := ""
		if out := tool.ConvCallbackOutput(output); out != nil {
			resp = out.Response
		}
		cb.push(models.Progress{Kind: models.ProgressToolResult, Node: info.Name, Content: clip(resp)})
	}
	return ctx
}

func (cb *ProgressCallback) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	name := ""
	if info != nil {
		name = info.Name
	}
	if err != nil && (name == "" || isTaskNode(name)) {
		cb.push(models.Progress{Kind: models.ProgressError, Node: name, Content: clip(err.Error())})
	}
	return ctx
}

func (cb *ProgressCallback) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	defer input.Close()
	return ctx
}

func (cb *ProgressCallback) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	defer output.Close()
	return ctx
}

func isTaskNode(name string) bool {
	switch name {
	case consts.TaskCompanyNews, consts.TaskCompanyFinancials, consts.TaskAnalyzeCompany, consts.TaskAdviseInvestment:
		return true
	}
	return false
}

func clip(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= maxProgressContent {
		return s
	}
	return string(r[:maxProgressContent]) + "..."
}
