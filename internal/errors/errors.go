// Package errors provides centralized error definitions and error handling utilities
// for rebuttal. It defines sentinel errors, typed errors for the API client and the
// debate session, and classification helpers used by the UI to decide how a failure
// is presented.
//
// # Error Types
//
// Transport and session errors:
//   - APIError: a non-2xx response or transport failure talking to the backend
//   - LoadError: the initial fetch of assignment or progress failed
//   - SubmissionError: a mutating action (post, position, challenge, advance) failed
//
// Semantic errors:
//   - NotFoundError: resource not found
//   - ValidationError: a client-side guard rejected the input or the current state
//   - TimeoutError: operation timed out
//
// # Usage
//
//	err := errors.NewAPIError(http.StatusBadGateway, "progress unavailable").WithEndpoint("GET /progress")
//	if errors.Is(err, errors.ErrServerUnavailable) { ... }
//
//	var subErr *errors.SubmissionError
//	if errors.As(err, &subErr) { ... }
//
//	if errors.IsUserFacing(err) { ... }
//
// Nothing in this package retries. IsRetryable only informs the message shown to
// the student ("try again") and never triggers an automatic retry.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// API sentinel errors
var (
	// ErrUnauthorized indicates the bearer token was missing, invalid or expired.
	ErrUnauthorized = New("not authorized")
	// ErrForbidden indicates the user may not access the assignment.
	ErrForbidden = New("access denied")
	// ErrNotFound indicates the backend does not know the requested resource.
	ErrNotFound = New("not found")
	// ErrServerUnavailable indicates a 5xx response or an unreachable backend.
	ErrServerUnavailable = New("server unavailable")
	// ErrBadResponse indicates the response body could not be decoded.
	ErrBadResponse = New("unreadable server response")
)

// Session sentinel errors
var (
	// ErrContentFlagged indicates the backend accepted the post for moderation
	// instead of publishing it.
	ErrContentFlagged = New("post flagged for review")
	// ErrWrongState indicates the action is not available in the current nextAction.
	ErrWrongState = New("action not available in the current state")
	// ErrSubmissionInFlight indicates another mutating request has not resolved yet.
	ErrSubmissionInFlight = New("a submission is already in progress")
	// ErrAdvanceInProgress indicates continue was already requested for this debate.
	ErrAdvanceInProgress = New("advance already requested")
	// ErrPositionChosen indicates a position was already selected for this debate.
	ErrPositionChosen = New("position already selected")
	// ErrWordCount indicates the statement length is outside the allowed range.
	ErrWordCount = New("statement word count out of range")
	// ErrChallengeUnavailable indicates the post cannot be challenged.
	ErrChallengeUnavailable = New("challenge not available for this post")
	// ErrMalformedProgress indicates the progress payload could not be interpreted.
	ErrMalformedProgress = New("malformed progress payload")
	// ErrStaleProgress indicates the server accepted a submission but the
	// progress refetch after it failed; nothing more is sent until a fetch succeeds.
	ErrStaleProgress = New("submission accepted but progress could not be refreshed")
	// ErrClosed indicates the session controller was closed.
	ErrClosed = New("session closed")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// RebuttalError is the base interface for all typed errors in this module.
type RebuttalError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if repeating the action by hand may succeed.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to students.
	IsUserFacing() bool
}

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error {
	return e.cause
}

func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

func (e *baseError) Severity() Severity {
	return e.severity
}

func (e *baseError) IsRetryable() bool {
	return e.retryable
}

func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Transport Errors
// -----------------------------------------------------------------------------

// APIError represents a failed request to the backend.
//
// Example:
//
//	err := errors.NewAPIError(404, "assignment not found").WithEndpoint("GET /api/debates/assignments/7")
//	fmt.Println(err) // "api error [status=404, endpoint=GET /api/debates/assignments/7]: assignment not found"
type APIError struct {
	baseError
	StatusCode int
	Code       string // machine-readable code from the response body, if any
	Endpoint   string
	RequestID  string
}

// NewAPIError creates an APIError for the given HTTP status. A status of 0 means
// the request never produced a response.
func NewAPIError(status int, message string) *APIError {
	e := &APIError{
		baseError: baseError{
			message:    message,
			severity:   SeverityError,
			userFacing: true,
		},
		StatusCode: status,
	}
	e.retryable = status == 0 || status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
	return e
}

// WithEndpoint records the method and path that failed.
func (e *APIError) WithEndpoint(endpoint string) *APIError {
	e.Endpoint = endpoint
	return e
}

// WithCode records the backend's machine-readable error code.
func (e *APIError) WithCode(code string) *APIError {
	e.Code = code
	return e
}

// WithRequestID records the X-Request-ID sent with the failed request.
func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

// WithCause adds a cause to the error.
func (e *APIError) WithCause(cause error) *APIError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *APIError) Error() string {
	var parts []string
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if e.Endpoint != "" {
		parts = append(parts, fmt.Sprintf("endpoint=%s", e.Endpoint))
	}

	prefix := "api error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("api error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is matches *APIError targets and the sentinel implied by the status code.
func (e *APIError) Is(target error) bool {
	if _, ok := target.(*APIError); ok {
		return true
	}
	switch {
	case target == ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case target == ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case target == ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case target == ErrServerUnavailable:
		return e.StatusCode == 0 || e.StatusCode >= http.StatusInternalServerError
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Session Errors
// -----------------------------------------------------------------------------

// LoadError represents a failure of the initial assignment/progress fetch.
// The UI renders it as a full-page error with a manual back action.
type LoadError struct {
	baseError
	AssignmentID string
}

// NewLoadError creates a new LoadError.
func NewLoadError(assignmentID string, cause error) *LoadError {
	return &LoadError{
		baseError: baseError{
			message:    "could not load debate",
			cause:      cause,
			severity:   SeverityError,
			retryable:  IsRetryable(cause),
			userFacing: true,
		},
		AssignmentID: assignmentID,
	}
}

// Error returns the formatted error message.
func (e *LoadError) Error() string {
	prefix := "load error"
	if e.AssignmentID != "" {
		prefix = fmt.Sprintf("load error [assignment=%s]", e.AssignmentID)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *LoadError) Is(target error) bool {
	if _, ok := target.(*LoadError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// SubmissionError represents a failed mutating action. The action name is one
// of "post", "position", "challenge" or "advance".
type SubmissionError struct {
	baseError
	Action string
}

// NewSubmissionError creates a new SubmissionError.
func NewSubmissionError(action string, cause error) *SubmissionError {
	return &SubmissionError{
		baseError: baseError{
			message:    fmt.Sprintf("%s failed", action),
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  IsRetryable(cause),
			userFacing: true,
		},
		Action: action,
	}
}

// Error returns the formatted error message.
func (e *SubmissionError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("submission error [action=%s]: %v", e.Action, e.cause)
	}
	return fmt.Sprintf("submission error [action=%s]", e.Action)
}

// Is checks if this error matches the target.
func (e *SubmissionError) Is(target error) bool {
	if _, ok := target.(*SubmissionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("post", "p-12")
//	fmt.Println(err) // "post 'p-12' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	if target == ErrNotFound {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents input or state rejected before any request is made.
//
// Example:
//
//	err := errors.NewValidationError("statement must be 75-300 words").
//		WithField("content").WithValue(42).WithCause(errors.ErrWordCount)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if target == ErrInvalidInput {
		return true
	}
	return e.baseError.Is(target)
}

// Message returns the validation message without the field/value prefix.
func (e *ValidationError) Message() string {
	return e.message
}

// TimeoutError represents an operation that timed out.
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if target == ErrTimeout {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if repeating the action by hand may succeed.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var rebuttalErr RebuttalError
	if As(err, &rebuttalErr) {
		return rebuttalErr.IsRetryable()
	}

	return Is(err, ErrTimeout)
}

// IsUserFacing returns true if the error message is safe to display to students.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var rebuttalErr RebuttalError
	if As(err, &rebuttalErr) {
		return rebuttalErr.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement RebuttalError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var rebuttalErr RebuttalError
	if As(err, &rebuttalErr) {
		return rebuttalErr.Severity()
	}
	return SeverityError
}

// UserMessage returns the text shown to a student for err. Flagged content gets a
// dedicated message; wrong-state and in-flight rejections read as guidance rather
// than failures.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrContentFlagged):
		return "Your post was flagged for review. A teacher will look at it before it counts."
	case Is(err, ErrUnauthorized):
		return "Your session has expired. Sign in again and reopen the debate."
	case Is(err, ErrCanceled):
		return "Canceled."
	case Is(err, ErrStaleProgress):
		return "Sent, but the debate could not be refreshed. Press r to refresh."
	case Is(err, ErrAdvanceInProgress):
		return "Already moving on to the next debate..."
	case Is(err, ErrSubmissionInFlight):
		return "Still sending your last action..."
	}

	var validation *ValidationError
	if As(err, &validation) {
		return validation.message
	}

	var notFound *NotFoundError
	if As(err, &notFound) {
		return fmt.Sprintf("No %s %q was found. Check the ID with your teacher.", notFound.ResourceType, notFound.ResourceID)
	}

	var apiErr *APIError
	if As(err, &apiErr) {
		if apiErr.StatusCode == 0 {
			return "Could not reach the server. Check your connection and try again."
		}
		if apiErr.IsRetryable() {
			return "The server had a problem. Try again in a moment."
		}
		return apiErr.message
	}

	if Is(err, ErrTimeout) {
		return "The request timed out. Try again."
	}
	if IsUserFacing(err) {
		return err.Error()
	}
	return "Something went wrong."
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
