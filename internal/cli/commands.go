package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/dyike/AdvisorGo/config"
	"github.com/dyike/AdvisorGo/internal/report"
	"github.com/dyike/AdvisorGo/internal/storage/sqlite"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(config.DefaultConfig())
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "advisorgo",
		Short: "AdvisorGo - AI-Powered Investment Research",
		Long: `AdvisorGo researches a public company with four cooperating agents and
writes a structured investment recommendation to report.md.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Debug = true
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveMode(cmdContext(cmd), cfg, cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newTriggerCmd(cfg))
	rootCmd.AddCommand(newSectionsCmd(cfg))
	rootCmd.AddCommand(newHistoryCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")

	return rootCmd
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [TICKER]",
		Short: "Run the investment analysis for a company",
		Long: `Run the four-agent investment analysis for a company.
Example: advisorgo analyze RELIANCE --company "Reliance Industries" --market india`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.Ticker = args[0]
			}
			flags := cmd.Flags()
			if flags.Changed("company") {
				cfg.CompanyName, _ = flags.GetString("company")
			}
			if flags.Changed("market") {
				cfg.Market, _ = flags.GetString("market")
			}
			if flags.Changed("exchange") {
				cfg.ExchangePreference, _ = flags.GetString("exchange")
			}
			if flags.Changed("profile") {
				cfg.InvestorProfile, _ = flags.GetString("profile")
			}
			if flags.Changed("horizon") {
				cfg.AnalysisHorizonDays, _ = flags.GetInt("horizon")
			}
			if flags.Changed("lookback") {
				cfg.NewsLookbackDays, _ = flags.GetInt("lookback")
			}

			ui := newConsole(cmd.OutOrStdout())
			_, err := runAnalysis(cmdContext(cmd), cfg, cfg.BuildInputs(), ui)
			return err
		},
	}

	cmd.Flags().String("company", "", "Company name")
	cmd.Flags().String("market", "", "Market: global or india")
	cmd.Flags().String("exchange", "", "Preferred Indian exchange: NSE or BSE")
	cmd.Flags().String("profile", "", "Investor profile")
	cmd.Flags().Int("horizon", 0, "Analysis horizon in days")
	cmd.Flags().Int("lookback", 0, "News lookback in days")

	return cmd
}

func newTriggerCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger <json>",
		Short: "Run with a JSON trigger payload overriding the configured inputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := config.ApplyTrigger(cfg.BuildInputs(), args[0])
			if err != nil {
				return err
			}
			_, err = runAnalysis(cmdContext(cmd), cfg, in, newConsole(cmd.OutOrStdout()))
			return err
		},
	}
}

func newSectionsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sections [file]",
		Short: "Parse a report into the recommendation fields",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.ReportPath
			if len(args) == 1 {
				path = args[0]
			}
			sections, err := report.ParseFile(path)
			if err != nil {
				return err
			}
			newConsole(cmd.OutOrStdout()).Sections(sections)
			return nil
		},
	}
}

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			store, err := sqlite.Open(cfg.HistoryDBPath)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(cmdContext(cmd), limit)
			if err != nil {
				return err
			}
			newConsole(cmd.OutOrStdout()).Runs(runs)
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Number of runs to show")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "AdvisorGo v%s\n", Version)
			fmt.Fprintln(cmd.OutOrStdout(), "AI-Powered Investment Research")
		},
	}
}

func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cmd.OutOrStdout(), cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration for a run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cmd.OutOrStdout(), cfg)
		},
	})

	return configCmd
}

func configured(v string) string {
	if v == "" {
		return "not configured"
	}
	return "configured"
}

func showConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, titleStyle.Render("Current AdvisorGo Configuration"))
	fmt.Fprintf(out, "Project Directory:    %s\n", cfg.ProjectDir)
	fmt.Fprintf(out, "Data Directory:       %s\n", cfg.DataDir)
	fmt.Fprintf(out, "Cache Directory:      %s\n", cfg.DataCacheDir)
	fmt.Fprintf(out, "History DB:           %s\n", cfg.HistoryDBPath)
	fmt.Fprintf(out, "Report Path:          %s\n", cfg.ReportPath)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "LLM Provider:         %s\n", cfg.LLM.Provider)
	fmt.Fprintf(out, "Model:                %s\n", cfg.LLM.Model)
	fmt.Fprintf(out, "Fallback Models:      %v\n", cfg.LLM.FallbackModels)
	fmt.Fprintf(out, "Base URL:             %s\n", cfg.LLM.BaseURL)
	fmt.Fprintf(out, "OpenRouter API Key:   %s\n", configured(cfg.LLM.APIKey))
	fmt.Fprintf(out, "DeepSeek API Key:     %s\n", configured(cfg.LLM.DeepSeekAPIKey))
	fmt.Fprintf(out, "Max Attempts:         %d\n", cfg.Runner.MaxAttempts)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Market Data Source:   %s\n", cfg.MarketData.Source)
	fmt.Fprintf(out, "Exa API Key:          %s\n", configured(cfg.Search.ExaAPIKey))
	fmt.Fprintf(out, "Cache Enabled:        %t\n", cfg.CacheEnabled)
	fmt.Fprintf(out, "Debug Mode:           %t\n", cfg.Debug)
	fmt.Fprintf(out, "Eino Debug:           %t\n", cfg.EinoDebugEnabled)
	if cfg.EinoDebugEnabled {
		fmt.Fprintf(out, "Eino Debug Port:      %d\n", cfg.EinoDebugPort)
	}
}

func validateConfig(out io.Writer, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(out, errorStyle.Render("Configuration invalid: "+err.Error()))
		return err
	}
	if err := config.ValidateRun(cfg.LLM, cfg.BuildInputs()); err != nil {
		fmt.Fprintln(out, errorStyle.Render(err.Error()))
		return err
	}
	if cfg.Search.ExaAPIKey == "" {
		fmt.Fprintln(out, inProgressStyle.Render("EXA_API_KEY not set; news search falls back to the Docker MCP gateway."))
	}
	fmt.Fprintln(out, completedStyle.Render("Configuration validation completed successfully!"))
	return nil
}

// runInteractiveMode prompts for the run inputs and starts the analysis.
func runInteractiveMode(ctx context.Context, cfg *config.Config, out io.Writer) error {
	ui := newConsole(out)
	fmt.Fprintln(out, titleStyle.Render("Welcome to AdvisorGo - AI-Powered Investment Research"))

	if err := PromptForRun(cfg, ui); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return nil
		}
		return err
	}
	ok, err := PromptForConfirmation("Start the analysis?")
	if err != nil || !ok {
		return err
	}
	_, err = runAnalysis(ctx, cfg, cfg.BuildInputs(), ui)
	return err
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
