package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// Default values used when the environment does not set a key.
const (
	DefaultPort               = "8080"
	DefaultGCPProject         = "studious-union-470122-v7"
	DefaultBQDataset          = "finance"
	DefaultRecordStore        = RecordStoreBigQuery
	DefaultGeminiModel        = "gemini-2.5-flash"
	DefaultHorizonDays        = 365
	DefaultLogLevel           = "info"
	RecordStoreBigQuery       = "bigquery"
	RecordStorePostgres       = "postgres"
	envPort                   = "PORT"
	envGCPProject             = "GCP_PROJECT"
	envBQDataset              = "BQ_DATASET"
	envDatabaseURL            = "DATABASE_URL"
	envRecordStore            = "RECORD_STORE"
	envGCSBucket              = "GCS_BUCKET"
	envNotionToken            = "NOTION_TOKEN"
	envNotionForecastDatabase = "NOTION_FORECAST_DB_ID"
	envGeminiModel            = "GEMINI_MODEL"
	envHorizonDays            = "FORECAST_HORIZON_DAYS"
	envLogLevel               = "LOG_LEVEL"
)

// Load reads the configuration from environment variables, falling back to
// defaults. Malformed numeric values are logged and replaced by the default.
func Load(log zerolog.Logger) *Config {
	horizonDays := DefaultHorizonDays
	if raw := os.Getenv(envHorizonDays); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			log.Warn().
				Str("value", raw).
				Int("default", DefaultHorizonDays).
				Msg("Invalid value for FORECAST_HORIZON_DAYS, using default")
		} else {
			horizonDays = days
		}
	}

	return &Config{
		Port:               getenv(log, envPort, DefaultPort),
		GCPProject:         getenv(log, envGCPProject, DefaultGCPProject),
		BQDataset:          getenv(log, envBQDataset, DefaultBQDataset),
		RecordStore:        getenv(log, envRecordStore, DefaultRecordStore),
		DatabaseURL:        os.Getenv(envDatabaseURL),
		GCSBucket:          os.Getenv(envGCSBucket),
		NotionToken:        os.Getenv(envNotionToken),
		NotionForecastDBID: os.Getenv(envNotionForecastDatabase),
		GeminiModel:        getenv(log, envGeminiModel, DefaultGeminiModel),
		Horizon:            time.Duration(horizonDays) * 24 * time.Hour,
		LogLevel:           getenv(log, envLogLevel, DefaultLogLevel),
	}
}

// Validate checks combinations that Load cannot repair on its own.
func (c *Config) Validate() error {
	switch c.RecordStore {
	case RecordStoreBigQuery:
		if c.GCPProject == "" || c.BQDataset == "" {
			return fmt.Errorf("Validate: %s record store needs %s and %s", c.RecordStore, envGCPProject, envBQDataset)
		}
	case RecordStorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("Validate: %s record store needs %s", c.RecordStore, envDatabaseURL)
		}
	default:
		return fmt.Errorf("Validate: unknown %s %q", envRecordStore, c.RecordStore)
	}
	return nil
}

func getenv(log zerolog.Logger, key, def string) string {
	if v := os.Getenv(key); v != "" {
		log.Debug().Str("key", key).Str("value", v).Msg("Using value from environment variable")
		return v
	}
	log.Debug().Str("key", key).Str("value", def).Msg("Using default value")
	return def
}
