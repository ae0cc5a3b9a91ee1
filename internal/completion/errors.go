package completion

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
)

// Code is the stable machine-readable classification returned to chat clients.
type Code string

const (
	CodeParse      Code = "PARSE_ERROR"
	CodeValidation Code = "VALIDATION_ERROR"
	CodeConfig     Code = "CONFIG_ERROR"
	CodeTimeout    Code = "TIMEOUT"
	CodeRateLimit  Code = "RATE_LIMIT"
	CodeServer     Code = "SERVER_ERROR"
)

var (
	ErrMissingAPIKey   = errors.New("LLM API key is not configured")
	ErrRateLimited     = errors.New("completion service rate limit exceeded")
	ErrTimeout         = errors.New("completion request timed out")
	ErrInvalidResponse = errors.New("invalid response from completion service")
)

// Error is a classified gateway failure. It maps one-to-one onto the JSON
// error envelope {error, code, details}.
type Error struct {
	Code    Code
	Status  int
	Message string
	Details interface{}
	cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func newError(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Status: statusFor(code), Message: msg, cause: cause}
}

// ValidationError builds a VALIDATION_ERROR with the given message.
func ValidationError(msg string) *Error { return newError(CodeValidation, msg, nil) }

func statusFor(code Code) int {
	switch code {
	case CodeParse, CodeValidation:
		return http.StatusBadRequest
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

var (
	timedOutRe  = regexp.MustCompile(`(?i)timed?\s*out`)
	apiKeyRe    = regexp.MustCompile(`(?i)api[ _-]?key`)
	rateLimitRe = regexp.MustCompile(`(?i)rate[ _-]?limit|\brate\b|\blimit(ed|s)?\b|\b429\b|resource_exhausted`)
)

// Classify maps any failure to a gateway Error. Known sentinels win; otherwise
// the error text is inspected the same way upstream SDK messages are worded.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}
	msg := err.Error()
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return newError(CodeTimeout, "Request timed out", err)
	case errors.Is(err, ErrMissingAPIKey):
		return newError(CodeConfig, "Server configuration error: "+ErrMissingAPIKey.Error(), err)
	case errors.Is(err, ErrRateLimited):
		return newError(CodeRateLimit, "Rate limit exceeded, please try again later", err)
	case errors.Is(err, ErrInvalidResponse):
		return newError(CodeServer, ErrInvalidResponse.Error(), err)
	case timedOutRe.MatchString(msg):
		return newError(CodeTimeout, "Request timed out", err)
	case apiKeyRe.MatchString(msg):
		return newError(CodeConfig, "Server configuration error: "+strings.TrimSpace(msg), err)
	case rateLimitRe.MatchString(msg):
		return newError(CodeRateLimit, "Rate limit exceeded, please try again later", err)
	}
	return newError(CodeServer, "Failed to get completion: "+msg, err)
}
