package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultExaBaseURL        = "https://api.exa.ai"

	ProviderOpenRouter = "openrouter"
	ProviderDeepSeek   = "deepseek"

	SourceYahoo    = "yahoo"
	SourceLongport = "longport"

	ReportFileName = "report.md"
)

// LLMConfig selects the chat model used by every agent of a run.
type LLMConfig struct {
	Provider       string   `json:"provider"`
	Model          string   `json:"model"`
	APIKey         string   `json:"-"`
	BaseURL        string   `json:"base_url"`
	FallbackModels []string `json:"fallback_models"`
	Temperature    float32  `json:"temperature"`
	MaxTokens      int      `json:"max_tokens"`
	DeepSeekAPIKey string   `json:"-"`
}

type SearchConfig struct {
	ExaAPIKey  string `json:"-"`
	ExaBaseURL string `json:"exa_base_url"`
	// DockerBinary is the CLI used by the MCP bridge when no Exa key is set.
	DockerBinary string `json:"docker_binary"`
}

type RunnerConfig struct {
	MaxAttempts int `json:"max_attempts"`
}

type MarketDataConfig struct {
	Source              string `json:"source"`
	LongportAppKey      string `json:"-"`
	LongportAppSecret   string `json:"-"`
	LongportAccessToken string `json:"-"`
}

type Config struct {
	ProjectDir    string `json:"project_dir"`
	ResultsDir    string `json:"results_dir"`
	DataDir       string `json:"data_dir"`
	DataCacheDir  string `json:"data_cache_dir"`
	HistoryDBPath string `json:"history_db_path"`
	ReportPath    string `json:"report_path"`

	LLM        LLMConfig        `json:"llm"`
	Search     SearchConfig     `json:"search"`
	Runner     RunnerConfig     `json:"runner"`
	MarketData MarketDataConfig `json:"market_data"`

	// Raw run inputs as configured; normalized by BuildInputs.
	Ticker              string `json:"ticker"`
	CompanyName         string `json:"company_name"`
	Market              string `json:"market"`
	ExchangePreference  string `json:"exchange_preference"`
	InvestorProfile     string `json:"investor_profile"`
	AnalysisHorizonDays int    `json:"analysis_horizon_days"`
	NewsLookbackDays    int    `json:"news_lookback_days"`

	CacheEnabled bool `json:"cache_enabled"`
	Debug        bool `json:"debug"`

	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := newDefaults(currentDir)

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func newDefaults(projectDir string) *Config {
	return &Config{
		ProjectDir:    projectDir,
		ResultsDir:    filepath.Join(projectDir, "results"),
		DataDir:       filepath.Join(projectDir, "data"),
		DataCacheDir:  filepath.Join(projectDir, "data", "cache"),
		HistoryDBPath: filepath.Join(projectDir, "data", "history.db"),
		ReportPath:    filepath.Join(projectDir, ReportFileName),

		LLM: LLMConfig{
			Provider:    ProviderOpenRouter,
			BaseURL:     DefaultOpenRouterBaseURL,
			Temperature: 0.2,
			MaxTokens:   8192,
		},
		Search: SearchConfig{
			ExaBaseURL:   DefaultExaBaseURL,
			DockerBinary: "docker",
		},
		Runner: RunnerConfig{
			MaxAttempts: 3,
		},
		MarketData: MarketDataConfig{
			Source: SourceYahoo,
		},

		Market:              MarketGlobal,
		ExchangePreference:  ExchangeNSE,
		InvestorProfile:     "moderate",
		AnalysisHorizonDays: 365,
		NewsLookbackDays:    30,

		CacheEnabled:     true,
		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}
}

func (c *Config) loadFromEnv() {
	if val := env("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
		c.ReportPath = filepath.Join(val, ReportFileName)
	}
	if val := env("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}
	if val := env("DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := env("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}
	if val := env("HISTORY_DB_PATH"); val != "" {
		c.HistoryDBPath = val
	}
	if val := env("REPORT_PATH"); val != "" {
		c.ReportPath = val
	}

	if val := env("LLM_PROVIDER"); val != "" {
		c.LLM.Provider = strings.ToLower(val)
	}
	c.LLM.Model = env("OPENROUTER_MODEL")
	c.LLM.APIKey = env("OPENROUTER_API_KEY")
	if val := env("OPENROUTER_BASE_URL"); val != "" {
		c.LLM.BaseURL = val
	}
	c.LLM.FallbackModels = SplitCSV(env("OPENROUTER_MODEL_FALLBACKS"))
	c.LLM.MaxTokens = positiveInt("LLM_MAX_TOKENS", c.LLM.MaxTokens)
	c.LLM.DeepSeekAPIKey = env("DEEPSEEK_API_KEY")

	c.Runner.MaxAttempts = positiveInt("GUI_RATE_LIMIT_RETRIES", c.Runner.MaxAttempts)

	c.Search.ExaAPIKey = env("EXA_API_KEY")
	if val := env("EXA_BASE_URL"); val != "" {
		c.Search.ExaBaseURL = val
	}

	if val := env("MARKET_DATA_SOURCE"); val != "" {
		c.MarketData.Source = strings.ToLower(val)
	}
	c.MarketData.LongportAppKey = env("LONGPORT_APP_KEY")
	c.MarketData.LongportAppSecret = env("LONGPORT_APP_SECRET")
	c.MarketData.LongportAccessToken = env("LONGPORT_ACCESS_TOKEN")

	c.Ticker = env("COMPANY_TICKER")
	c.CompanyName = env("COMPANY_NAME")
	if val := env("MARKET"); val != "" {
		c.Market = val
	}
	if val := env("EXCHANGE_PREFERENCE"); val != "" {
		c.ExchangePreference = val
	}
	if val := env("INVESTOR_PROFILE"); val != "" {
		c.InvestorProfile = val
	}
	c.AnalysisHorizonDays = positiveInt("ANALYSIS_HORIZON_DAYS", c.AnalysisHorizonDays)
	c.NewsLookbackDays = positiveInt("NEWS_LOOKBACK_DAYS", c.NewsLookbackDays)

	if val := env("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := env("ADVISORGO_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
	if val := env("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := env("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.ResultsDir, c.DataDir, c.DataCacheDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

// positiveInt parses name from the environment, keeping def when the value
// is missing, malformed or not above zero.
func positiveInt(name string, def int) int {
	return PositiveInt(env(name), def)
}

func PositiveInt(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// SplitCSV splits a comma separated list, dropping blanks.
func SplitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
