// Package export publishes forecasts as JSON objects in Cloud Storage.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dvloznov/finance-forecast/internal/forecast"
)

const contentTypeJSON = "application/json"

// Exporter writes forecasts under forecasts/<account>/<from>_<to>.json.
type Exporter struct {
	store  ObjectStore
	bucket string
}

// NewExporter creates an exporter writing into bucket.
func NewExporter(store ObjectStore, bucket string) *Exporter {
	return &Exporter{store: store, bucket: bucket}
}

// ObjectName is the object path of an account's forecast for a window.
func ObjectName(accountID string, from, to time.Time) string {
	return path.Join("forecasts", accountID,
		from.Format(time.DateOnly)+"_"+to.Format(time.DateOnly)+".json")
}

// UploadForecast stores fc and returns its gs:// URI.
func (e *Exporter) UploadForecast(ctx context.Context, fc *forecast.Forecast) (string, error) {
	if e.bucket == "" {
		return "", fmt.Errorf("UploadForecast: no bucket configured")
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("UploadForecast: marshal: %w", err)
	}

	object := ObjectName(fc.AccountID, fc.From, fc.To)
	if err := e.store.Write(ctx, e.bucket, object, contentTypeJSON, data); err != nil {
		return "", fmt.Errorf("UploadForecast: %w", err)
	}

	return "gs://" + e.bucket + "/" + object, nil
}

// FetchForecast reads back a forecast previously written by UploadForecast.
func (e *Exporter) FetchForecast(ctx context.Context, uri string) (*forecast.Forecast, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, fmt.Errorf("FetchForecast: %w", err)
	}

	data, err := e.store.Read(ctx, bucket, object)
	if err != nil {
		return nil, fmt.Errorf("FetchForecast: %w", err)
	}

	var fc forecast.Forecast
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("FetchForecast: unmarshal: %w", err)
	}
	return &fc, nil
}

// ParseURI splits gs://bucket/path/to/object into bucket and object.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}

	return parts[0], parts[1], nil
}
