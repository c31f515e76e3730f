package app

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-forecast/internal/clock"
	"github.com/dvloznov/finance-forecast/internal/config"
	infraBQ "github.com/dvloznov/finance-forecast/internal/infra/bigquery"
)

func TestOpen_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{"unknown store", config.Config{RecordStore: "mongo"}},
		{"postgres without url", config.Config{RecordStore: config.RecordStorePostgres}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), &tt.cfg, clock.Real{}, zerolog.New(io.Discard))
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRunnerOptions(t *testing.T) {
	s := &Stack{}
	if got := len(s.runnerOptions()); got != 0 {
		t.Errorf("options = %d, want 0 with no outputs", got)
	}

	s.Sink = &infraBQ.ForecastSink{}
	if got := len(s.runnerOptions()); got != 1 {
		t.Errorf("options = %d, want 1", got)
	}
}
