package templatr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ParseError reports a directive file that is not well-formed. It is returned
// before any document is touched.
type ParseError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString("parse error")
	if e.Path != "" {
		fmt.Fprintf(&sb, " in '%s'", e.Path)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new parse error
func NewParseError(path, message string, cause error) error {
	return &ParseError{
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}

// DocumentError represents an error while loading or saving a document package
type DocumentError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *DocumentError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("document error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("document error during %s of '%s'", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("document error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("document error during %s", e.Operation)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// NewDocumentError creates a new document error
func NewDocumentError(operation, path string, cause error) error {
	return &DocumentError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// MalformedDirectiveError reports a directive whose value does not have the
// shape its type requires.
type MalformedDirectiveError struct {
	// Path locates the directive in the data file, e.g. "items.2.value.0"
	Path        string
	Placeholder string
	Kind        Kind
	Message     string
	Cause       error
}

func (e *MalformedDirectiveError) Error() string {
	var sb strings.Builder
	sb.WriteString("malformed directive")
	if e.Placeholder != "" {
		fmt.Fprintf(&sb, " '%s'", e.Placeholder)
	}
	if e.Path != "" {
		fmt.Fprintf(&sb, " at %s", e.Path)
	}
	if e.Kind != KindUnknown {
		fmt.Fprintf(&sb, " (%s)", e.Kind)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

func (e *MalformedDirectiveError) Unwrap() error {
	return e.Cause
}

// NewMalformedDirectiveError creates a new malformed directive error
func NewMalformedDirectiveError(path, placeholder string, kind Kind, message string, cause error) error {
	return &MalformedDirectiveError{
		Path:        path,
		Placeholder: placeholder,
		Kind:        kind,
		Message:     message,
		Cause:       cause,
	}
}

// ResourceError reports an image that could not be read or decoded
type ResourceError struct {
	Path  string
	Cause error
}

func (e *ResourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resource error for '%s': %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("resource error for '%s'", e.Path)
}

func (e *ResourceError) Unwrap() error {
	return e.Cause
}

// NewResourceError creates a new resource error
func NewResourceError(path string, cause error) error {
	return &ResourceError{
		Path:  path,
		Cause: cause,
	}
}

// UnresolvedMarkerError reports a placeholder that was never found or stopped
// making progress. Without strict mode this is only logged as a warning.
type UnresolvedMarkerError struct {
	Placeholder string
	Kind        Kind
	Reason      string
}

func (e *UnresolvedMarkerError) Error() string {
	return fmt.Sprintf("unresolved marker '%s' (%s): %s", e.Placeholder, e.Kind, e.Reason)
}

// NewUnresolvedMarkerError creates a new unresolved marker error
func NewUnresolvedMarkerError(placeholder string, kind Kind, reason string) error {
	return &UnresolvedMarkerError{
		Placeholder: placeholder,
		Kind:        kind,
		Reason:      reason,
	}
}

// ValidationIssue represents a single validation problem
type ValidationIssue struct {
	Field   string
	Message string
}

// ValidationError represents multiple validation issues
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation error"
	}

	if len(e.Issues) == 1 {
		return fmt.Sprintf("validation error: %s - %s", e.Issues[0].Field, e.Issues[0].Message)
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d validation issues:", len(e.Issues)))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("  %s: %s", issue.Field, issue.Message))
	}
	return strings.Join(parts, "\n")
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.errors
}

// ContextError adds context to an existing error
type ContextError struct {
	Operation string
	Context   map[string]interface{}
	Cause     error
}

func (e *ContextError) Error() string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	contextParts := make([]string, 0, len(keys))
	for _, k := range keys {
		contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
	}

	if len(contextParts) > 0 {
		return fmt.Sprintf("%s [%s]: %v", e.Operation, strings.Join(contextParts, ", "), e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e *ContextError) Unwrap() error {
	return e.Cause
}

// WithContext wraps an error with additional context
func WithContext(err error, operation string, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ContextError{
		Operation: operation,
		Context:   context,
		Cause:     err,
	}
}

// RecoverError converts a panic recovery value to an error
func RecoverError(r interface{}) error {
	switch v := r.(type) {
	case error:
		return fmt.Errorf("panic recovered: %w", v)
	case string:
		return fmt.Errorf("panic recovered: %s", v)
	default:
		return fmt.Errorf("panic recovered: %v", v)
	}
}

// IsParseError checks if an error is, or wraps, a parse error
func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// IsDocumentError checks if an error is, or wraps, a document error
func IsDocumentError(err error) bool {
	var target *DocumentError
	return errors.As(err, &target)
}

// IsMalformedDirectiveError checks if an error is, or wraps, a malformed directive error
func IsMalformedDirectiveError(err error) bool {
	var target *MalformedDirectiveError
	return errors.As(err, &target)
}

// IsResourceError checks if an error is, or wraps, a resource error
func IsResourceError(err error) bool {
	var target *ResourceError
	return errors.As(err, &target)
}

// IsUnresolvedMarkerError checks if an error is, or wraps, an unresolved marker error
func IsUnresolvedMarkerError(err error) bool {
	var target *UnresolvedMarkerError
	return errors.As(err, &target)
}
