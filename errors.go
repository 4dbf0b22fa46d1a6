package alloy

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeRequired            = "required"
	CodeInvalidInteger      = "invalid_integer"
	CodeInvalidNumber       = "invalid_number"
	CodeInvalidBoolean      = "invalid_boolean"
	CodeInvalidEnum         = "invalid_enum"
	CodeDataElementRequired = "data_element_required"
	CodeInvalidJSON         = "invalid_json"
	CodeDuplicateKey        = "duplicate_key"
	CodeSchemaMismatch      = "schema_mismatch"
	CodeInvalidAnalyticsKey = "invalid_analytics_key"
	CodeEditorNotReady      = "editor_not_ready"
)

var (
	// ErrNodeNotFound is returned by tree edits addressing an unknown id.
	ErrNodeNotFound = errors.New("alloy: node not found")
	// ErrUnsupported is returned when an edit does not apply to the node kind.
	ErrUnsupported = errors.New("alloy: operation not supported for node")
)

// Issue is one validation finding, addressed by node path.
type Issue struct {
	Path    string // Dot path of the node ("" for the root).
	Code    string // One of the codes listed above.
	Message string
	// Params carries structured parameters (e.g., {"key": "a"}) for i18n.
	Params map[string]string
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		path := it.Path
		if path == "" {
			path = "(root)"
		}
		fmt.Fprintf(b, "%s at %s", it.Code, path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ReportableError is a recoverable failure worth showing to the user, such
// as a failed schema fetch. It keeps the error that caused it and an optional
// link to documentation.
type ReportableError struct {
	Message            string
	Originating        error
	AdditionalInfoURL  string
	AdditionalInfoText string
}

func (e *ReportableError) Error() string {
	if e.Originating == nil {
		return e.Message
	}
	return e.Message + ": " + e.Originating.Error()
}

func (e *ReportableError) Unwrap() error { return e.Originating }

// AsReportable extracts a ReportableError from err.
func AsReportable(err error) (*ReportableError, bool) {
	var re *ReportableError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsAbort reports whether err only signals that a request was cancelled,
// typically because a newer request replaced it. Such errors are not shown.
func IsAbort(err error) bool {
	return errors.Is(err, context.Canceled)
}
