package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome labels shared by the form instruments
const (
	OutcomeSuccess    = "success"
	OutcomeInvalid    = "invalid"
	OutcomeConflict   = "conflict"
	OutcomeNotFound   = "not_found"
	OutcomeStoreError = "store_error"
)

// FormMetrics records field definition and submission activity.
// A nil *FormMetrics is valid and records nothing.
type FormMetrics struct {
	fieldOperations    metric.Int64Counter
	submissions        metric.Int64Counter
	validationFailures metric.Int64Counter
	submissionDuration metric.Float64Histogram
}

// NewFormMetrics registers the form instruments on meter
func NewFormMetrics(meter metric.Meter) (*FormMetrics, error) {
	mb := newMetricBuilder(meter)
	m := &FormMetrics{
		fieldOperations: mb.Int64Counter(
			"formfields_field_operations_total",
			"Field definition operations by operation and outcome", "{operation}"),
		submissions: mb.Int64Counter(
			"formfields_submissions_total",
			"Form submissions by outcome", "{submission}"),
		validationFailures: mb.Int64Counter(
			"formfields_submission_field_errors_total",
			"Individual field errors reported on rejected submissions", "{error}"),
		submissionDuration: mb.Float64Histogram(
			"formfields_submission_duration_seconds",
			"Time spent handling a submission", "s",
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}),
	}
	if err := mb.Error(); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordFieldOperation counts one field definition operation
func (m *FormMetrics) RecordFieldOperation(ctx context.Context, operation, outcome string) {
	if m == nil {
		return
	}
	m.fieldOperations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// RecordSubmission counts one submission and its duration. fieldErrors is
// the number of keys reported in the error collection.
func (m *FormMetrics) RecordSubmission(ctx context.Context, outcome string, fieldErrors int, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcomeAttr := metric.WithAttributes(attribute.String("outcome", outcome))
	m.submissions.Add(ctx, 1, outcomeAttr)
	m.submissionDuration.Record(ctx, elapsed.Seconds(), outcomeAttr)
	if fieldErrors > 0 {
		m.validationFailures.Add(ctx, int64(fieldErrors))
	}
}
