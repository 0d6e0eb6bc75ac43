package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/dyike/AdvisorGo/consts"
	"github.com/dyike/AdvisorGo/internal/models"
	"github.com/dyike/AdvisorGo/internal/pipeline"
	"github.com/dyike/AdvisorGo/internal/report"
	"github.com/dyike/AdvisorGo/internal/storage"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#3B82F6")).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#10B981")).
		Padding(0, 2)

	fieldStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#F59E0B"))

	pendingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	inProgressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
	completedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	toolCallStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B5CF6"))
	infoStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
)

// console renders run progress. Graph callbacks arrive from parallel nodes,
// so writes are serialized.
type console struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsole(out io.Writer) *console {
	return &console{out: out}
}

func (c *console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}

func (c *console) Header(in *models.Inputs) {
	c.println(headerStyle.Render(fmt.Sprintf("Company: %s (%s) | Market: %s | Profile: %s | Horizon: %dd",
		in.CompanyName, in.Ticker, in.Market, in.InvestorProfile, in.AnalysisHorizonDays)))
}

func (c *console) Info(msg string)  { c.println(infoStyle.Render(msg)) }
func (c *console) Error(err error)  { c.println(errorStyle.Render("Error: " + err.Error())) }
func (c *console) Success(s string) { c.println(completedStyle.Render(s)) }

func (c *console) Progress(p models.Progress) {
	ts := p.Timestamp
	if ts == "" {
		ts = "--:--:--"
	}
	switch p.Kind {
	case models.ProgressNodeStart:
		c.println(fmt.Sprintf("[%s] %s", ts, inProgressStyle.Render(p.Node+" started")))
	case models.ProgressNodeEnd:
		c.println(fmt.Sprintf("[%s] %s", ts, completedStyle.Render(p.Node+" completed")))
	case models.ProgressToolCall:
		c.println(fmt.Sprintf("[%s] %s %s", ts, toolCallStyle.Render("tool "+p.Node), p.Content))
	case models.ProgressToolResult:
		c.println(fmt.Sprintf("[%s] %s %s", ts, toolCallStyle.Render("result "+p.Node), p.Content))
	case models.ProgressError:
		c.println(fmt.Sprintf("[%s] %s %s", ts, errorStyle.Render("failed "+p.Node), p.Content))
	}
}

func (c *console) Event(ev pipeline.Event) {
	switch ev.Type {
	case pipeline.EventAttempt:
		c.Info(fmt.Sprintf("Running crew with model %s (attempt %d/%d)", ev.Model, ev.Attempt, ev.MaxAttempts))
	case pipeline.EventSwitchModel:
		c.println(inProgressStyle.Render(fmt.Sprintf("Rate limit on %s. Switching to fallback model %s.", ev.Model, ev.NextModel)))
	case pipeline.EventPolicyBlocked:
		c.println(inProgressStyle.Render(fmt.Sprintf("Model %s is blocked by the OpenRouter data policy. Switching to %s.", ev.Model, ev.NextModel)))
	case pipeline.EventWaitRetry:
		c.println(inProgressStyle.Render(fmt.Sprintf("Rate limited. Retrying in %s (attempt %d/%d).", ev.Wait, ev.Attempt, ev.MaxAttempts)))
	case pipeline.EventStorageNoop:
		c.println(inProgressStyle.Render("History database is read-only. Retrying without task output storage."))
	case pipeline.EventFailed:
		c.println(errorStyle.Render("Run failed: " + ev.Message))
	case pipeline.EventSucceeded:
		c.Success(fmt.Sprintf("Crew finished with model %s.", ev.Model))
	}
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case consts.State_Running:
		return inProgressStyle
	case consts.State_Completed:
		return completedStyle
	case consts.State_Failed:
		return errorStyle
	default:
		return pendingStyle
	}
}

func (c *console) TaskBoard(buf *models.MessageBuffer) {
	order, status := buf.TaskStatus()
	var b strings.Builder
	b.WriteString(titleStyle.Render("Task Progress") + "\n")
	for _, task := range order {
		s := status[task]
		b.WriteString(fmt.Sprintf("  %-24s %s\n", task, statusStyle(s).Render(s)))
	}
	c.println(panelStyle.Render(strings.TrimRight(b.String(), "\n")))
}

func (c *console) Sections(s report.Sections) {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Recommendation") + "\n")
	for _, field := range report.Fields() {
		b.WriteString("\n" + fieldStyle.Render(field) + "\n")
		b.WriteString(s[field] + "\n")
	}
	c.println(panelStyle.Render(strings.TrimRight(b.String(), "\n")))
}

func (c *console) Runs(runs []storage.RunRecord) {
	if len(runs) == 0 {
		c.Info("No runs recorded yet.")
		return
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Recent Runs") + "\n")
	for _, r := range runs {
		line := fmt.Sprintf("%s  %-12s %-8s %-7s %s", r.CreatedAt.Format("2006-01-02 15:04"), r.Ticker, r.Market, r.Status, r.Model)
		if r.Error != "" {
			line += "  " + errorStyle.Render(pipeline.CompactError(r.Error))
		}
		b.WriteString(statusStyle(runStatus(r.Status)).Render(r.ID[:min(8, len(r.ID))]) + "  " + line + "\n")
	}
	c.println(panelStyle.Render(strings.TrimRight(b.String(), "\n")))
}

func runStatus(s string) string {
	switch s {
	case storage.StatusRunning:
		return consts.State_Running
	case storage.StatusDone:
		return consts.State_Completed
	case storage.StatusError:
		return consts.State_Failed
	}
	return consts.State_Pending
}
