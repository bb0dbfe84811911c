package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/loan-approval/internal/config"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/mikey/loan-approval/internal/factory"
	"github.com/mikey/loan-approval/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Application flags
	ApplicantName    string
	LoanAmount       int
	TermMonths       int
	EmploymentLength string
	AnnualIncome     string
	AcceptTerms      bool
	Decision         string

	// Service flags
	Provider     string
	DeploymentID string
	APIToken     string
	OpenAIAPIKey string

	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags(args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet("loan-score", flag.ContinueOnError)

	fs.StringVar(&flags.ApplicantName, "name", "", "Applicant name")
	fs.IntVar(&flags.LoanAmount, "amount", 5000, "Loan amount (5000, 15000, 20000)")
	fs.IntVar(&flags.TermMonths, "term", 36, "Repayment period in months (36, 60)")
	fs.StringVar(&flags.EmploymentLength, "employment", "0 - 5 years", "Employment years bucket")
	fs.StringVar(&flags.AnnualIncome, "income", "Below $30k", "Annual income bucket")
	fs.BoolVar(&flags.AcceptTerms, "accept-terms", true, "Applicant accepted the terms and conditions")
	fs.StringVar(&flags.Decision, "decision", "", "Draft an email for this decision (Approve, Reject)")

	fs.StringVar(&flags.Provider, "provider", "", "LLM provider (openai, gemini, bedrock)")
	fs.StringVar(&flags.DeploymentID, "deployment-id", "", "Scoring deployment ID")
	fs.StringVar(&flags.APIToken, "api-token", "", "Scoring API token")
	fs.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")

	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// RawApplication returns the application described by the flags
func (f *CLIFlags) RawApplication() core.RawApplication {
	return core.RawApplication{
		ApplicantName:    f.ApplicantName,
		LoanAmount:       f.LoanAmount,
		TermMonths:       f.TermMonths,
		EmploymentLength: f.EmploymentLength,
		AnnualIncome:     f.AnnualIncome,
		TermsAccepted:    f.AcceptTerms,
	}
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := loadCLIConfig(flags)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Info("Loaded configuration from file", zap.String("file", used))
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register loan service with no cache
	if err := container.Provide(func(f *factory.ScoringFactory, cf *factory.CacheFactory, scorer core.ScoringClient) (*core.LoanService, error) {
		return f.CreateLoanService(scorer, nil, cf)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// loadCLIConfig reads the config file, if any, then applies flag overrides
func loadCLIConfig(flags *CLIFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flags.ConfigFile != "" {
		cfg, err = config.NewFromFile(flags.ConfigFile)
	} else {
		cfg, err = config.New()
	}
	if err != nil {
		return nil, err
	}

	v := cfg.GetViper()
	v.Set("cache.enabled", false)
	if flags.Provider != "" {
		v.Set("llm.provider", flags.Provider)
	}
	if flags.DeploymentID != "" {
		v.Set("scoring.deployment_id", flags.DeploymentID)
	}
	if flags.APIToken != "" {
		v.Set("scoring.api_token", flags.APIToken)
	}
	if flags.OpenAIAPIKey != "" {
		v.Set("openai.api_key", flags.OpenAIAPIKey)
	}

	return cfg, nil
}
