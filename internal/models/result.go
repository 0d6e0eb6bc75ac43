package models

// TaskOutput is the result of one task. Text is the only payload field;
// executors fill it with the final assistant message. OutputPath is set when
// the task wrote its output to a file.
type TaskOutput struct {
	Task       string `json:"task"`
	Agent      string `json:"agent"`
	Text       string `json:"text"`
	OutputPath string `json:"output_path,omitempty"`
}

// RunResult is what a successful pipeline run returns.
type RunResult struct {
	RunID      string       `json:"run_id"`
	Text       string       `json:"text"`
	Tasks      []TaskOutput `json:"tasks"`
	ModelUsed  string       `json:"model_used"`
	ReportPath string       `json:"report_path"`
}
