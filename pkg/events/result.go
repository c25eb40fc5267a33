package events

import "strings"

// Error type classifiers carried by EventResult.ErrType.
const (
	ErrTypeHandlerError = "handler_error"
	ErrTypeHandlerPanic = "handler_exception"
	ErrTypeNoHandler    = "no_handler"
)

// EventResult is the outcome of handling a domain event. Handlers produce
// one per invocation; Combine folds many into one. Results are values, never
// persisted.
type EventResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Err     string `json:"error,omitempty"`
	ErrType string `json:"error_type,omitempty"`
}

// SuccessResult creates a successful result with an optional payload.
func SuccessResult(data any) EventResult {
	return EventResult{Success: true, Data: data}
}

// ErrorResult creates a failed result. An empty errType defaults to
// ErrTypeHandlerError.
func ErrorResult(msg, errType string) EventResult {
	if errType == "" {
		errType = ErrTypeHandlerError
	}
	return EventResult{Success: false, Err: msg, ErrType: errType}
}

// NoHandlerResult is the sentinel returned when no handler produced a result
// for an event. It is a reportable failure, not a silent no-op: emitters of
// business events are expected to notice when nobody reacted.
func NoHandlerResult() EventResult {
	return EventResult{
		Success: false,
		Err:     "no handler registered for event",
		ErrType: ErrTypeNoHandler,
	}
}

// Combine folds multiple handler results into one.
//
// An empty slice yields NoHandlerResult. If any result failed, the combined
// result fails with every failure message joined by "; " and the ErrType of
// the first failure. If all succeeded, the combined result succeeds and Data
// holds each non-nil success payload in handler order.
func Combine(results []EventResult) EventResult {
	if len(results) == 0 {
		return NoHandlerResult()
	}

	var errs []string
	errType := ""
	failed := false
	for _, r := range results {
		if r.Success {
			continue
		}
		// The combined type is always the first failure's, defaulted if
		// that failure carried none.
		if !failed {
			errType = r.ErrType
			if errType == "" {
				errType = ErrTypeHandlerError
			}
		}
		failed = true
		if r.Err != "" {
			errs = append(errs, r.Err)
		}
	}

	if failed {
		return ErrorResult(strings.Join(errs, "; "), errType)
	}

	data := make([]any, 0, len(results))
	for _, r := range results {
		if r.Data != nil {
			data = append(data, r.Data)
		}
	}
	return SuccessResult(data)
}
