package models

import "sync"

// AdvisorState is the graph-local state of one pipeline run. Node code
// reaches it through compose.ProcessState, which serializes access.
type AdvisorState struct {
	RunID     string  `json:"run_id"`
	Inputs    *Inputs `json:"inputs"`
	ModelUsed string  `json:"model_used"`

	outputs map[string]TaskOutput
	order   []string
	mu      sync.Mutex
}

func NewAdvisorState(runID string, in *Inputs, modelUsed string) *AdvisorState {
	return &AdvisorState{
		RunID:     runID,
		Inputs:    in,
		ModelUsed: modelUsed,
		outputs:   make(map[string]TaskOutput),
	}
}

// Record stores a task output, keeping completion order.
func (s *AdvisorState) Record(out TaskOutput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.outputs[out.Task]; !ok {
		s.order = append(s.order, out.Task)
	}
	s.outputs[out.Task] = out
}

func (s *AdvisorState) Output(task string) (TaskOutput, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, ok := s.outputs[task]
	return out, ok
}

// Outputs returns the recorded outputs in completion order.
func (s *AdvisorState) Outputs() []TaskOutput {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]TaskOutput, 0, len(s.order))
	for _, name := range s.order {
		res = append(res, s.outputs[name])
	}
	return res
}
