// Package metrics records operation counts, latencies, errors and record
// counts for the jarvis data layer.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/dan-solli/jarvis-core/pkg/model"
	"github.com/dan-solli/jarvis-core/pkg/store"
)

// Collector is the interface for metrics collection.
// Implementations include the Prometheus-backed MetricsCollector and the
// no-op collector used when metrics are disabled.
type Collector interface {
	RecordOperation(ctx context.Context, operation string, status string, duration time.Duration)
	RecordStage(ctx context.Context, operation string, stage string, duration time.Duration)
	RecordError(ctx context.Context, operation string, errorType string)
	SetStorageCount(ctx context.Context, storageType string, count int64)
}

// Operation status labels
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error type labels for classification
const (
	ErrTypeNotFound   = "not_found"
	ErrTypeValidation = "validation"
	ErrTypeStorage    = "storage"
	ErrTypeCanceled   = "canceled"
)

// ClassifyError maps an error returned by the data layer to a label.
// Anything that is neither a lookup miss, rejected input nor cancellation
// is treated as an underlying storage failure.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, store.ErrNotFound):
		return ErrTypeNotFound
	case errors.Is(err, model.ErrInvalidData):
		return ErrTypeValidation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrTypeCanceled
	default:
		return ErrTypeStorage
	}
}

// Observe records the outcome and latency of an operation that started at
// start and finished with err.
func Observe(ctx context.Context, c Collector, operation string, start time.Time, err error) {
	duration := time.Since(start)
	status := StatusSuccess
	if err != nil {
		status = StatusError
		c.RecordError(ctx, operation, ClassifyError(err))
	}
	c.RecordOperation(ctx, operation, status, duration)
	c.RecordStage(ctx, operation, "total", duration)
}
