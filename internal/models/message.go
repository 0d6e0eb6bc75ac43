package models

import (
	"container/list"
	"sync"
	"time"

	"github.com/dyike/AdvisorGo/consts"
)

const (
	ProgressNodeStart  = "node_start"
	ProgressNodeEnd    = "node_end"
	ProgressToolCall   = "tool_call"
	ProgressToolResult = "tool_result"
	ProgressError      = "error"
)

// Progress is one observable step of a run.
type Progress struct {
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
	Node      string `json:"node,omitempty"`
	Content   string `json:"content,omitempty"`
}

// MessageBuffer keeps the latest progress messages and the status of each
// task for display.
type MessageBuffer struct {
	mu         sync.Mutex
	messages   *list.List
	maxLength  int
	taskStatus map[string]string
	taskOrder  []string
}

func NewMessageBuffer(maxLength int) *MessageBuffer {
	order := []string{
		consts.TaskCompanyNews,
		consts.TaskCompanyFinancials,
		consts.TaskAnalyzeCompany,
		consts.TaskAdviseInvestment,
	}
	status := make(map[string]string, len(order))
	for _, t := range order {
		status[t] = consts.State_Pending
	}
	return &MessageBuffer{
		messages:   list.New(),
		maxLength:  maxLength,
		taskStatus: status,
		taskOrder:  order,
	}
}

// Add appends p, evicting the oldest message beyond maxLength, and updates
// the task status for node events.
func (m *MessageBuffer) Add(p Progress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.Timestamp == "" {
		p.Timestamp = time.Now().Format("15:04:05")
	}
	m.messages.PushBack(p)
	for m.maxLength > 0 && m.messages.Len() > m.maxLength {
		m.messages.Remove(m.messages.Front())
	}

	if _, tracked := m.taskStatus[p.Node]; !tracked {
		return
	}
	switch p.Kind {
	case ProgressNodeStart:
		m.taskStatus[p.Node] = consts.State_Running
	case ProgressNodeEnd:
		m.taskStatus[p.Node] = consts.State_Completed
	case ProgressError:
		m.taskStatus[p.Node] = consts.State_Failed
	}
}

func (m *MessageBuffer) Messages() []Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Progress, 0, m.messages.Len())
	for e := m.messages.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(Progress))
	}
	return out
}

// TaskStatus returns task names in graph order with their status.
func (m *MessageBuffer) TaskStatus() ([]string, map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := make(map[string]string, len(m.taskStatus))
	for k, v := range m.taskStatus {
		status[k] = v
	}
	return append([]string{}, m.taskOrder...), status
}
