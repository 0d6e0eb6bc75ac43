package models

// Inputs are the normalized values a run is kicked off with. They are
// substituted into every task description.
type Inputs struct {
	Ticker              string `json:"ticker"`
	CompanyName         string `json:"company_name"`
	Market              string `json:"market"`
	ExchangePreference  string `json:"exchange_preference"`
	InvestorProfile     string `json:"investor_profile"`
	AnalysisHorizonDays int    `json:"analysis_horizon_days"`
	NewsLookbackDays    int    `json:"news_lookback_days"`
	CurrentYear         string `json:"current_year"`

	// TriggerPayload holds the raw payload when the run was started by a trigger.
	TriggerPayload map[string]any `json:"trigger_payload,omitempty"`
}
