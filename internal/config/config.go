package config

import "time"

// Config holds the settings shared by every binary. Each binary may override
// individual fields with flags after Load.
type Config struct {
	Port string

	GCPProject string
	BQDataset  string

	// RecordStore selects where obligation records are read from:
	// "bigquery" or "postgres".
	RecordStore string
	DatabaseURL string

	GCSBucket string

	NotionToken        string
	NotionForecastDBID string

	GeminiModel string

	// Horizon is how far past "now" a forecast reaches when no explicit
	// window is given.
	Horizon time.Duration

	LogLevel string
}
