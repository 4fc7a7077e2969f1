package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "eda-recipes"
	AppVersion = "1.0.0"

	// Raw dataset files
	DefaultRecipesFile      = "RAW_recipes.csv"
	DefaultInteractionsFile = "RAW_interactions.csv"

	// Directory layout, relative to the project root
	DefaultRawDir       = "data/raw"
	DefaultProcessedDir = "data/processed"
	DefaultReportsDir   = "data/reports"
	DefaultChartsDir    = "data/reports/charts"
	DefaultLogsDir      = "logs"

	// RootEnv overrides project root discovery
	RootEnv = "EDA_ROOT"

	// Rate Limiting
	DefaultRateLimitRPS   = 50 // requests per second
	DefaultRateLimitBurst = 100

	// Summaries
	DefaultTopK = 20

	// Timeouts
	DefaultHTTPTimeout = 30 * time.Second
	ProcessorTimeout   = 30 * time.Minute

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// API Endpoints
	APIBasePath     = "/api/v1"
	HealthEndpoint  = "/healthz"
	MetricsEndpoint = "/metrics"
)
