package jarvis

import (
	"github.com/dan-solli/jarvis-core/pkg/metrics"
	"github.com/dan-solli/jarvis-core/pkg/model"
	"github.com/dan-solli/jarvis-core/pkg/store"
)

// Sentinel errors re-exported for callers; test with errors.Is.
var (
	// ErrNotFound: a mutation addressed a record that does not exist.
	ErrNotFound = store.ErrNotFound

	// ErrInvalidData: input was rejected before any mutation.
	ErrInvalidData = model.ErrInvalidData
)

// Error type constants for classification
const (
	ErrTypeNotFound   = metrics.ErrTypeNotFound
	ErrTypeValidation = metrics.ErrTypeValidation
	ErrTypeStorage    = metrics.ErrTypeStorage
	ErrTypeCanceled   = metrics.ErrTypeCanceled
)

// ClassifyError inspects an error and returns its type classification.
// This enables grouping errors by category in metrics and API responses.
// Returns "" for a nil error.
func ClassifyError(err error) string {
	return metrics.ClassifyError(err)
}
