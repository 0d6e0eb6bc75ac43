package agents

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dyike/AdvisorGo/config"
	"github.com/dyike/AdvisorGo/consts"
	"github.com/dyike/AdvisorGo/internal/models"
	"github.com/dyike/AdvisorGo/internal/utils"
)

const Disclaimer = "This is informational analysis, not financial advice."

// Agent is a role bound to the shared model and a set of tools.
type Agent struct {
	Name      string
	Prompt    string // embedded prompt path for the system message
	ToolNames []string
}

// Task is one node of the advisor graph. Context names the tasks whose
// outputs are handed to this one, in order; each must be declared earlier.
// Async tasks start together from the graph entry. OutputFile, when set,
// is the file name the task output is written to in the report directory.
type Task struct {
	Name           string
	Agent          string
	Prompt         string
	Description    string
	ExpectedOutput []string
	Context        []string
	Async          bool
	OutputFile     string
}

var (
	AnalysisSections = []string{
		"Executive Summary",
		"Investment Scorecard",
		"News Synthesis",
		"Financial Analysis",
		"Integrated Thesis",
		"Scenario Analysis",
		"Evidence Table",
		"Assumptions Ledger",
		"Key Risks",
		"Data Gaps",
	}

	RecommendationSections = []string{
		"Decision (Invest/Do Not Invest/Hold)",
		"Confidence (0-100)",
		"Time Horizon View (30/90/365 days)",
		"Bull Case",
		"Bear Case",
		"Key Risks",
		"Risk Controls",
		"Data Gaps",
		"Disclaimer",
	}

	AdvancedSections = []string{
		"Investment Scorecard",
		"Metrics Used in Decision",
		"Evidence Table",
		"Assumptions Ledger",
		"Catalyst Timeline",
		"Monitoring Triggers",
	}
)

func DefaultAgents() []Agent {
	return []Agent{
		{Name: consts.AgentNewsExplorer, Prompt: "agents/news_info_explorer", ToolNames: []string{consts.ToolSearchCompanyNews}},
		{Name: consts.AgentDataExplorer, Prompt: "agents/data_explorer", ToolNames: []string{consts.ToolGetCompanyInfo, consts.ToolGetFinancialStatement}},
		{Name: consts.AgentAnalyst, Prompt: "agents/analyst"},
		{Name: consts.AgentFinExpert, Prompt: "agents/fin_expert", ToolNames: []string{consts.ToolGetStockPrice}},
	}
}

func DefaultTasks() []Task {
	advice := append([]string{}, RecommendationSections...)
	advice = append(advice, AdvancedSections...)
	advice = append(advice, "Disclaimer text: "+Disclaimer)

	return []Task{
		{
			Name:   consts.TaskCompanyNews,
			Agent:  consts.AgentNewsExplorer,
			Prompt: "tasks/get_company_news",
			ExpectedOutput: []string{
				"Source Quality Summary",
				"Key Developments",
				"Sentiment Assessment",
				"Data Gaps",
			},
			Async: true,
		},
		{
			Name:   consts.TaskCompanyFinancials,
			Agent:  consts.AgentDataExplorer,
			Prompt: "tasks/get_company_financials",
			ExpectedOutput: []string{
				"Company Profile",
				"Statement Highlights",
				"Growth and Margin Trends",
				"Data Gaps",
			},
			Async: true,
		},
		{
			Name:           consts.TaskAnalyzeCompany,
			Agent:          consts.AgentAnalyst,
			Prompt:         "tasks/analyze_company",
			ExpectedOutput: append([]string{}, AnalysisSections...),
			Context:        []string{consts.TaskCompanyNews, consts.TaskCompanyFinancials},
		},
		{
			Name:           consts.TaskAdviseInvestment,
			Agent:          consts.AgentFinExpert,
			Prompt:         "tasks/advise_investment",
			ExpectedOutput: advice,
			Context:        []string{consts.TaskAnalyzeCompany},
			OutputFile:     config.ReportFileName,
		},
	}
}

// ValidateTasks checks that names are unique, agents exist, and every
// context entry refers to a task declared before it. Async tasks take no
// context, and when several tasks start the graph each must be async.
func ValidateTasks(tasks []Task, agents []Agent) error {
	known := make(map[string]bool, len(agents))
	for _, a := range agents {
		known[a.Name] = true
	}
	declared := make(map[string]bool, len(tasks))
	for i, t := range tasks {
		if t.Name == "" {
			return fmt.Errorf("task %d has no name", i)
		}
		if declared[t.Name] {
			return fmt.Errorf("task %s declared twice", t.Name)
		}
		if !known[t.Agent] {
			return fmt.Errorf("task %s: unknown agent %q", t.Name, t.Agent)
		}
		if t.Async && len(t.Context) > 0 {
			return fmt.Errorf("task %s: async task cannot join context", t.Name)
		}
		if f := t.OutputFile; f != "" && (filepath.Base(f) != f || f == "." || f == "..") {
			return fmt.Errorf("task %s: output file %q must be a plain file name", t.Name, f)
		}
		for _, dep := range t.Context {
			if !declared[dep] {
				return fmt.Errorf("task %s: context %q is not an earlier task", t.Name, dep)
			}
		}
		declared[t.Name] = true
	}

	var roots []Task
	for _, t := range tasks {
		if len(t.Context) == 0 {
			roots = append(roots, t)
		}
	}
	if len(roots) > 1 {
		for _, t := range roots {
			if !t.Async {
				return fmt.Errorf("task %s: parallel start task must be async", t.Name)
			}
		}
	}
	return nil
}

// PromptContext is the variable set substituted into every prompt.
func PromptContext(in *models.Inputs) map[string]string {
	return map[string]string{
		"Ticker":              in.Ticker,
		"CompanyName":         in.CompanyName,
		"Market":              in.Market,
		"ExchangePreference":  in.ExchangePreference,
		"InvestorProfile":     in.InvestorProfile,
		"AnalysisHorizonDays": strconv.Itoa(in.AnalysisHorizonDays),
		"NewsLookbackDays":    strconv.Itoa(in.NewsLookbackDays),
		"CurrentYear":         in.CurrentYear,
	}
}

// RenderTasks fills each task description from its prompt template.
func RenderTasks(tasks []Task, in *models.Inputs) ([]Task, error) {
	vars := PromptContext(in)
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		desc, err := utils.LoadPromptWithContext(t.Prompt, vars)
		if err != nil {
			return nil, fmt.Errorf("render task %s: %w", t.Name, err)
		}
		t.Description = desc
		out[i] = t
	}
	return out, nil
}

// SystemPrompt renders the role, goal and backstory of an agent.
func SystemPrompt(a Agent, in *models.Inputs) (string, error) {
	p, err := utils.LoadPromptWithContext(a.Prompt, PromptContext(in))
	if err != nil {
		return "", fmt.Errorf("render agent %s: %w", a.Name, err)
	}
	return p, nil
}

func FindAgent(agents []Agent, name string) (Agent, bool) {
	for _, a := range agents {
		if a.Name == name {
			return a, true
		}
	}
	return Agent{}, false
}
