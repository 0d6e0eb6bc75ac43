package consts

const (
	// 任务节点
	TaskCompanyNews       = "get_company_news"
	TaskCompanyFinancials = "get_company_financials"
	TaskAnalyzeCompany    = "analyze_company"
	TaskAdviseInvestment  = "advise_investment"

	// Agent 角色
	AgentNewsExplorer = "news_info_explorer"
	AgentDataExplorer = "data_explorer"
	AgentAnalyst      = "analyst"
	AgentFinExpert    = "fin_expert"

	// 工具
	ToolSearchCompanyNews     = "search_company_news"
	ToolGetCompanyInfo        = "get_company_info"
	ToolGetFinancialStatement = "get_financial_statements"
	ToolGetStockPrice         = "get_current_stock_price"

	GraphName = "investment_advisor"
)
