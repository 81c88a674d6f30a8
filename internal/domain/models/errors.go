package models

import (
	"errors"
	"fmt"
)

// Stable, machine-matchable error codes.
const (
	ErrCodeInvalidMode         = "INVALID_MODE"
	ErrCodeInvalidScenario     = "INVALID_SCENARIO"
	ErrCodeInvalidThreshold    = "INVALID_THRESHOLD"
	ErrCodeMissingClock        = "MISSING_CLOCK"
	ErrCodeInvalidTimestamp    = "INVALID_TIMESTAMP"
	ErrCodeInvalidOrderSize    = "INVALID_ORDER_SIZE"
	ErrCodeInvalidADV          = "INVALID_ADV"
	ErrCodeInvalidFillRecord   = "INVALID_FILL_RECORD"
	ErrCodeStrictMissingID     = "STRICT_MISSING_FILL_ID"
	ErrCodeStrictFillsRequired = "STRICT_FILLS_REQUIRED"
	ErrCodeNetworkDisabled     = "NETWORK_DISABLED"
	ErrCodeInvalidMarketData   = "INVALID_MARKET_DATA"
	ErrCodePaperSessionFailed  = "PAPER_SESSION_FAILED"
	ErrCodeReportNotFound      = "REPORT_NOT_FOUND"
	ErrCodeSourceUnavailable   = "SOURCE_UNAVAILABLE"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
)

// CodedError carries a stable code next to a human message.
type CodedError struct {
	Code    string
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error { return e.Err }

// Is matches another CodedError by code, so errors.Is(err, &CodedError{Code: X}) works.
func (e *CodedError) Is(target error) bool {
	t, ok := target.(*CodedError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a coded error with a formatted message.
func NewError(code, format string, a ...interface{}) *CodedError {
	return &CodedError{Code: code, Message: fmt.Sprintf(format, a...)}
}

// WrapError creates a coded error around err.
func WrapError(code string, err error, format string, a ...interface{}) *CodedError {
	return &CodedError{Code: code, Message: fmt.Sprintf(format, a...), Err: err}
}

// CodeOf returns the code of the first CodedError in err's chain, or "".
func CodeOf(err error) string {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
