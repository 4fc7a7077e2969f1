// Package config provides centralized configuration management for the EDA
// toolkit. It loads settings from defaults, an optional YAML file and the
// environment, validates them, and resolves the project directory layout.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file ($EDA_CONFIG_FILE or config.yaml, configs/config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern EDA_<SECTION>_<FIELD>:
//
//	EDA_SERVER_PORT=8080
//	EDA_LOGGING_LEVEL=debug
//	EDA_PIPELINE_TEMPORAL_PARTS=year,month,dayofweek
//	EDA_PIPELINE_DROP_ORIGINAL_NUTRITION=true
//	EDA_ROOT=/srv/eda
//
// # Path Management
//
// Paths resolves every directory against a project root:
//
//	paths, err := config.GetPaths(cfg.Paths)
//	raw := paths.GetRawPath("RAW_recipes.csv")      // <root>/data/raw/RAW_recipes.csv
//	chart := paths.GetChartPath("minutes_hist.png") // <root>/data/reports/charts/...
//
// # Validation
//
// Struct tags are checked with go-playground/validator: port ranges, log
// levels, known temporal parts and exactly seven distinct nutrition outputs.
package config
