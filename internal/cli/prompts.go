package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/dyike/AdvisorGo/config"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.&-]+$`)

// PromptForTicker prompts the user to enter a stock ticker symbol
func PromptForTicker(def string) (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: "Enter the stock ticker (e.g., MS, RELIANCE.NS):",
		Help:    "Indian tickers may carry the .NS or .BO suffix",
		Default: def,
	}
	err := survey.AskOne(prompt, &ticker, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(strings.ToUpper(val.(string)))
		if str == "" {
			return fmt.Errorf("ticker cannot be empty")
		}
		if !tickerPattern.MatchString(str) {
			return fmt.Errorf("invalid ticker format (use letters, numbers, dots, and hyphens only)")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.ToUpper(ticker)), nil
}

func PromptForCompany(def string) (string, error) {
	var company string
	prompt := &survey.Input{
		Message: "Enter the company name:",
		Default: def,
	}
	if err := survey.AskOne(prompt, &company, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return strings.TrimSpace(company), nil
}

// PromptForMarket offers the market with the suggested one preselected.
func PromptForMarket(suggested, note string) (string, error) {
	var market string
	prompt := &survey.Select{
		Message: "Select the market:",
		Options: []string{config.MarketGlobal, config.MarketIndia},
		Default: suggested,
		Help:    note,
	}
	if err := survey.AskOne(prompt, &market); err != nil {
		return "", err
	}
	return market, nil
}

func PromptForExchange(def string) (string, error) {
	var exchange string
	prompt := &survey.Select{
		Message: "Select the preferred Indian exchange:",
		Options: []string{config.ExchangeNSE, config.ExchangeBSE},
		Default: config.NormalizeExchange(def),
	}
	if err := survey.AskOne(prompt, &exchange); err != nil {
		return "", err
	}
	return exchange, nil
}

func PromptForProfile(def string) (string, error) {
	var profile string
	options := []string{"conservative", "moderate", "aggressive"}
	if def == "" {
		def = "moderate"
	}
	prompt := &survey.Select{
		Message: "Select the investor profile:",
		Options: options,
		Default: def,
	}
	if err := survey.AskOne(prompt, &profile); err != nil {
		return "", err
	}
	return profile, nil
}

func PromptForDays(message string, def int) (int, error) {
	var raw string
	prompt := &survey.Input{
		Message: message,
		Default: strconv.Itoa(def),
	}
	err := survey.AskOne(prompt, &raw, survey.WithValidator(func(val interface{}) error {
		if n, err := strconv.Atoi(strings.TrimSpace(val.(string))); err != nil || n <= 0 {
			return fmt.Errorf("enter a positive number of days")
		}
		return nil
	}))
	if err != nil {
		return 0, err
	}
	n, _ := strconv.Atoi(strings.TrimSpace(raw))
	return n, nil
}

func PromptForConfirmation(message string) (bool, error) {
	confirmed := false
	prompt := &survey.Confirm{
		Message: message,
		Default: true,
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, err
	}
	return confirmed, nil
}

// PromptForRun collects the run inputs into cfg.
func PromptForRun(cfg *config.Config, ui *console) error {
	ticker, err := PromptForTicker(cfg.Ticker)
	if err != nil {
		return err
	}
	company, err := PromptForCompany(cfg.CompanyName)
	if err != nil {
		return err
	}

	suggested, note := SuggestMarket(ticker, company, cfg.Market)
	ui.Info(note)
	market, err := PromptForMarket(suggested, note)
	if err != nil {
		return err
	}

	exchange := cfg.ExchangePreference
	if market == config.MarketIndia {
		if exchange, err = PromptForExchange(exchange); err != nil {
			return err
		}
	}

	profile, err := PromptForProfile(cfg.InvestorProfile)
	if err != nil {
		return err
	}
	horizon, err := PromptForDays("Analysis horizon (days):", cfg.AnalysisHorizonDays)
	if err != nil {
		return err
	}
	lookback, err := PromptForDays("News lookback (days):", cfg.NewsLookbackDays)
	if err != nil {
		return err
	}

	cfg.Ticker = ticker
	cfg.CompanyName = company
	cfg.Market = market
	cfg.ExchangePreference = exchange
	cfg.InvestorProfile = profile
	cfg.AnalysisHorizonDays = horizon
	cfg.NewsLookbackDays = lookback
	return nil
}
