// Package errors provides error types and logging utilities for jcommit.
package errors

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrorCode represents the category of an error.
type ErrorCode int

const (
	// User errors (Exit Code 1)
	ErrNoChanges ErrorCode = iota + 100
	ErrInvalidConfig
	ErrInvalidArguments
	ErrNotARepository
	ErrRevisionNotFound

	// System errors (Exit Code 2)
	ErrGitCommandFailed ErrorCode = iota + 200
	ErrCommitFailed
	ErrFileSystemError

	// External errors (Exit Code 3)
	ErrTransport ErrorCode = iota + 300
	ErrNetworkError
)

// ExitCode returns the appropriate exit code for an error code.
func (c ErrorCode) ExitCode() int {
	switch {
	case c >= 100 && c < 200:
		return 1 // User errors
	case c >= 200 && c < 300:
		return 2 // System errors
	case c >= 300:
		return 3 // External errors
	default:
		return 1
	}
}

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrNoChanges:
		return "NoChanges"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrInvalidArguments:
		return "InvalidArguments"
	case ErrNotARepository:
		return "NotARepository"
	case ErrRevisionNotFound:
		return "RevisionNotFound"
	case ErrGitCommandFailed:
		return "GitCommandFailed"
	case ErrCommitFailed:
		return "CommitFailed"
	case ErrFileSystemError:
		return "FileSystemError"
	case ErrTransport:
		return "TransportError"
	case ErrNetworkError:
		return "NetworkError"
	default:
		return "Unknown"
	}
}

// AppError represents an application error with context.
type AppError struct {
	Code       ErrorCode
	Message    string
	Cause      error
	Context    map[string]interface{}
	Suggestion string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError with the same code, so callers
// can match categories with errors.Is(err, errors.New(code, "")).
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Diagnostic returns the captured tool output, if any.
func (e *AppError) Diagnostic() string {
	if e.Context == nil {
		return ""
	}
	if out, ok := e.Context["output"].(string); ok {
		return out
	}
	return ""
}

// WithContext adds context to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion to the error.
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// TransportError is a non-success HTTP response from the completion endpoint.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	return fmt.Sprintf("http status %d: %s", e.StatusCode, body)
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with context.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// GetExitCode returns the appropriate exit code for an error.
func GetExitCode(err error) int {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code.ExitCode()
	}
	return 1 // Default to user error
}

// Common error constructors with suggestions

// NewNoChangesError creates an error for an empty change set.
func NewNoChangesError(summary bool) *AppError {
	if summary {
		return &AppError{
			Code:       ErrNoChanges,
			Message:    "no differences between base and HEAD",
			Suggestion: "Pick a base revision that HEAD has diverged from",
		}
	}
	return &AppError{
		Code:       ErrNoChanges,
		Message:    "no staged changes found",
		Suggestion: "Use 'git add <files>' to stage changes before generating a commit message",
	}
}

// NewInvalidArgumentsError creates an error for unusable command-line arguments.
func NewInvalidArgumentsError(message string) *AppError {
	return &AppError{
		Code:       ErrInvalidArguments,
		Message:    message,
		Suggestion: "Run 'jcommit --help' for usage",
	}
}

// NewInvalidConfigError creates an error for invalid configuration.
func NewInvalidConfigError(message string) *AppError {
	return &AppError{
		Code:       ErrInvalidConfig,
		Message:    message,
		Suggestion: "Run 'jcommit config init' to create a valid configuration file",
	}
}

// NewNotARepositoryError creates an error for a path outside any git working copy.
func NewNotARepositoryError(path string, err error) *AppError {
	return &AppError{
		Code:       ErrNotARepository,
		Message:    fmt.Sprintf("%s is not inside a git repository", path),
		Cause:      err,
		Suggestion: "Run jcommit from a git working copy or pass --path",
	}
}

// NewRevisionNotFoundError creates an error for an unresolvable base revision.
func NewRevisionNotFoundError(revision string) *AppError {
	return &AppError{
		Code:       ErrRevisionNotFound,
		Message:    fmt.Sprintf("revision %q not found as a commit, tag, or branch", revision),
		Suggestion: "Check the name with 'git branch -a' or 'git log'",
	}
}

// NewGitError creates an error for git command failures.
func NewGitError(err error, output string) *AppError {
	appErr := &AppError{
		Code:    ErrGitCommandFailed,
		Message: "git command failed",
		Cause:   err,
	}
	if output != "" {
		appErr.Context = map[string]interface{}{
			"output": output,
		}
	}
	return appErr
}

// NewCommitFailedError creates an error for a commit the git tool refused.
func NewCommitFailedError(err error, diagnostic string) *AppError {
	return &AppError{
		Code:    ErrCommitFailed,
		Message: "commit failed",
		Cause:   err,
		Context: map[string]interface{}{
			"output": diagnostic,
		},
	}
}

// NewTransportError creates an error for a non-success HTTP status.
func NewTransportError(statusCode int, body string) *AppError {
	appErr := &AppError{
		Code:    ErrTransport,
		Message: "completion request failed",
		Cause:   &TransportError{StatusCode: statusCode, Body: body},
	}
	switch {
	case statusCode == 401 || statusCode == 403:
		appErr.Suggestion = "Please check your API key is valid and has not expired"
	case statusCode == 404:
		appErr.Suggestion = "Please check api_endpoint, model and is_azure in your configuration"
	}
	return appErr
}

// NewNetworkError creates an error for network failures.
func NewNetworkError(err error) *AppError {
	return &AppError{
		Code:       ErrNetworkError,
		Message:    "network error occurred",
		Cause:      err,
		Suggestion: "Please check your network connection and try again",
	}
}

// FormatError formats an error for user display.
// API keys and other sensitive data are automatically masked.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(appErr.Message))

		if appErr.Cause != nil {
			sb.WriteString("\n  Cause: ")
			sb.WriteString(SanitizeErrorMessage(appErr.Cause.Error()))
		}

		if out := strings.TrimSpace(appErr.Diagnostic()); out != "" {
			sb.WriteString("\n  Output: ")
			sb.WriteString(SanitizeErrorMessage(out))
		}

		if appErr.Suggestion != "" {
			sb.WriteString("\n  Suggestion: ")
			sb.WriteString(appErr.Suggestion)
		}
	} else {
		sb.WriteString("Error: ")
		sb.WriteString(SanitizeErrorMessage(err.Error()))
	}

	return sb.String()
}

// FormatErrorVerbose formats an error with full details for verbose mode.
// API keys and other sensitive data are automatically masked.
func FormatErrorVerbose(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder

	appErr := GetAppError(err)
	if appErr != nil {
		sb.WriteString(fmt.Sprintf("Error [%s]: %s\n", appErr.Code.String(), SanitizeErrorMessage(appErr.Message)))

		if appErr.Cause != nil {
			sb.WriteString(fmt.Sprintf("  Cause: %v\n", SanitizeErrorMessage(appErr.Cause.Error())))
			sb.WriteString("  Error chain:\n")
			printErrorChain(&sb, appErr.Cause, 2)
		}

		if len(appErr.Context) > 0 {
			sb.WriteString("  Context:\n")
			for k, v := range appErr.Context {
				sb.WriteString(fmt.Sprintf("    %s: %v\n", k, SanitizeErrorMessage(fmt.Sprintf("%v", v))))
			}
		}

		if appErr.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("  Suggestion: %s\n", appErr.Suggestion))
		}
	} else {
		sb.WriteString(fmt.Sprintf("Error: %v\n", SanitizeErrorMessage(err.Error())))
		sb.WriteString("  Error chain:\n")
		printErrorChain(&sb, err, 2)
	}

	return sb.String()
}

// printErrorChain prints the error chain with indentation.
func printErrorChain(sb *strings.Builder, err error, indent int) {
	if err == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)
	errMsg := SanitizeErrorMessage(err.Error())
	sb.WriteString(fmt.Sprintf("%s- %T: %v\n", prefix, err, errMsg))

	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		printErrorChain(sb, unwrapped, indent+1)
	}
}

// SanitizeErrorMessage masks any API keys or sensitive data in error messages.
func SanitizeErrorMessage(msg string) string {
	return apiKeyPattern.ReplaceAllStringFunc(msg, func(match string) string {
		if len(match) <= 4 {
			return "****"
		}
		return strings.Repeat("*", len(match)-4) + match[len(match)-4:]
	})
}

// apiKeyPattern matches common API key patterns.
var apiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`)
