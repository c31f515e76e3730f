package main

import (
	"testing"
	"time"
)

func TestParseWindow(t *testing.T) {
	now := time.Date(2024, time.June, 15, 13, 0, 0, 0, time.UTC)
	horizon := 10 * 24 * time.Hour

	tests := []struct {
		name     string
		from, to string
		wantFrom time.Time
		wantTo   time.Time
		wantErr  bool
	}{
		{
			name:     "defaults",
			wantFrom: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "from only",
			from:     "2024-01-01",
			wantFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "both",
			from:     "2024-01-01",
			to:       "2024-12-31",
			wantFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{name: "malformed", from: "2024/01/01", wantErr: true},
		{name: "reversed", from: "2024-02-01", to: "2024-01-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := parseWindow(now, tt.from, tt.to, horizon)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !from.Equal(tt.wantFrom) || !to.Equal(tt.wantTo) {
				t.Errorf("window = %s..%s, want %s..%s", from, to, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestOptional(t *testing.T) {
	if optional(-1) != nil {
		t.Error("optional(-1) should be nil")
	}
	if p := optional(0); p == nil || *p != 0 {
		t.Errorf("optional(0) = %v", p)
	}
}
