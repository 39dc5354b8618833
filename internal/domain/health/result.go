package health

import "time"

// Result is the immutable outcome of a single task invocation.
type Result struct {
	RunID           string         `json:"run_id,omitempty"`
	Success         bool           `json:"success"`
	Status          Status         `json:"status"`
	Message         string         `json:"message"`
	Data            map[string]any `json:"data,omitempty"`
	Errors          []string       `json:"errors,omitempty"`
	Warnings        []string       `json:"warnings,omitempty"`
	Suggestions     []string       `json:"suggestions,omitempty"`
	ExecutionTimeMS float64        `json:"execution_time_ms"`
	Timestamp       time.Time      `json:"timestamp"`
}

// OK builds a successful healthy Result.
func OK(message string) Result {
	return Result{
		Success:   true,
		Status:    StatusHealthy,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Failure builds a failed Result with the given severity.
func Failure(status Status, message string, errs ...string) Result {
	return Result{
		Success:   false,
		Status:    status,
		Message:   message,
		Errors:    errs,
		Timestamp: time.Now().UTC(),
	}
}
