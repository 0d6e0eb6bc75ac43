package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
	"github.com/dyike/AdvisorGo/internal/models"
)

const defaultMaxStep = 40

// TaskRequest carries a rendered task, its agent and the upstream outputs
// named by the task context.
type TaskRequest struct {
	Task         Task
	Agent        Agent
	SystemPrompt string
	Context      []models.TaskOutput
}

// Executor runs one task to completion.
type Executor interface {
	Execute(ctx context.Context, req TaskRequest) (models.TaskOutput, error)
}

// ReactExecutor runs tasks as eino ReAct agents on a shared model.
type ReactExecutor struct {
	model   model.ToolCallingChatModel
	tools   map[string]tool.BaseTool
	maxStep int
}

func NewReactExecutor(ctx context.Context, cm model.ToolCallingChatModel, tools []tool.BaseTool) (*ReactExecutor, error) {
	byName := make(map[string]tool.BaseTool, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		byName[info.Name] = t
	}
	return &ReactExecutor{model: cm, tools: byName, maxStep: defaultMaxStep}, nil
}

func (e *ReactExecutor) Execute(ctx context.Context, req TaskRequest) (models.TaskOutput, error) {
	out := models.TaskOutput{Task: req.Task.Name, Agent: req.Agent.Name}
	msgs, err := BuildMessages(ctx, req)
	if err != nil {
		return out, err
	}

	var reply *schema.Message
	if len(req.Agent.ToolNames) == 0 {
		reply, err = e.model.Generate(ctx, msgs)
	} else {
		agentTools := make([]tool.BaseTool, 0, len(req.Agent.ToolNames))
		for _, name := range req.Agent.ToolNames {
			t, ok := e.tools[name]
			if !ok {
				return out, fmt.Errorf("agent %s: tool %s not registered", req.Agent.Name, name)
			}
			agentTools = append(agentTools, t)
		}

		var agent *react.Agent
		agent, err = react.NewAgent(ctx, &react.AgentConfig{
			MaxStep:          e.maxStep,
			ToolCallingModel: e.model,
			ToolsConfig: compose.ToolsNodeConfig{
				Tools: agentTools,
			},
			StreamToolCallChecker: ToolCallChecker,
		})
		if err != nil {
			return out, fmt.Errorf("create agent %s: %w", req.Agent.Name, err)
		}
		reply, err = agent.Generate(ctx, msgs)
	}
	if err != nil {
		return out, fmt.Errorf("task %s: %w", req.Task.Name, err)
	}
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		return out, fmt.Errorf("task %s: model returned an empty response", req.Task.Name)
	}

	out.Text = strings.TrimSpace(reply.Content)
	log.Printf("[Agents] %s finished %s (%d chars)", req.Agent.Name, req.Task.Name, len(out.Text))
	return out, nil
}

// taskTemplate lays out every task prompt: the agent role, one message per
// upstream output, then the task brief. Values are substituted verbatim.
var taskTemplate = prompt.FromMessages(schema.FString,
	schema.SystemMessage("{system}"),
	schema.MessagesPlaceholder("upstream", true),
	schema.UserMessage("{task}"),
)

// BuildMessages renders the system role, the upstream context and the task
// brief with its expected sections.
func BuildMessages(ctx context.Context, req TaskRequest) ([]*schema.Message, error) {
	var b strings.Builder
	b.WriteString(req.Task.Description)
	if len(req.Task.ExpectedOutput) > 0 {
		b.WriteString("\n\nExpected output. Use these sections as markdown headings:\n")
		for _, s := range req.Task.ExpectedOutput {
			b.WriteString("- ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}

	upstream := make([]*schema.Message, 0, len(req.Context))
	for _, c := range req.Context {
		upstream = append(upstream, schema.UserMessage(fmt.Sprintf("Context from upstream task %s:\n\n%s", c.Task, c.Text)))
	}

	msgs, err := taskTemplate.Format(ctx, map[string]any{
		"system":   req.SystemPrompt,
		"upstream": upstream,
		"task":     strings.TrimSpace(b.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("task %s: format prompt: %w", req.Task.Name, err)
	}
	return msgs, nil
}
