package config

import (
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{envPort, envRecordStore, envHorizonDays, envGeminiModel, envBQDataset} {
		t.Setenv(key, "")
	}

	cfg := Load(zerolog.New(io.Discard))

	if cfg.Port != DefaultPort {
		t.Errorf("Port = %q, want %q", cfg.Port, DefaultPort)
	}
	if cfg.RecordStore != RecordStoreBigQuery {
		t.Errorf("RecordStore = %q, want %q", cfg.RecordStore, RecordStoreBigQuery)
	}
	if cfg.Horizon != DefaultHorizonDays*24*time.Hour {
		t.Errorf("Horizon = %v", cfg.Horizon)
	}
	if cfg.GeminiModel != DefaultGeminiModel {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv(envPort, "9090")
	t.Setenv(envRecordStore, RecordStorePostgres)
	t.Setenv(envDatabaseURL, "postgres://localhost/forecast")
	t.Setenv(envHorizonDays, "30")

	cfg := Load(zerolog.New(io.Discard))

	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Horizon != 30*24*time.Hour {
		t.Errorf("Horizon = %v", cfg.Horizon)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_InvalidHorizonFallsBack(t *testing.T) {
	tests := []string{"abc", "0", "-5"}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			t.Setenv(envHorizonDays, raw)
			cfg := Load(zerolog.New(io.Discard))
			if cfg.Horizon != DefaultHorizonDays*24*time.Hour {
				t.Errorf("Horizon = %v, want default", cfg.Horizon)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "bigquery ok", cfg: Config{RecordStore: RecordStoreBigQuery, GCPProject: "p", BQDataset: "d"}},
		{name: "bigquery missing dataset", cfg: Config{RecordStore: RecordStoreBigQuery, GCPProject: "p"}, wantErr: true},
		{name: "postgres missing url", cfg: Config{RecordStore: RecordStorePostgres}, wantErr: true},
		{name: "unknown store", cfg: Config{RecordStore: "sqlite"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
