package consts

const (
	Agent_NewsExplorer = "News Info Explorer"
	Agent_DataExplorer = "Data Explorer"
	Agent_Analyst      = "Analyst"
	Agent_FinExpert    = "Financial Expert"
)

const (
	State_Pending   = "pending"
	State_Running   = "running"
	State_Completed = "completed"
	State_Failed    = "failed"
)
