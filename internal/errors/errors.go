package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// InputInvalid indicates the top-level input is not a list of context units
	InputInvalid ErrorCode = "INPUT_INVALID"
	// BudgetInfeasible indicates protected tokens alone exceed the budget.
	// Reported as a plan warning, never raised to the caller.
	BudgetInfeasible ErrorCode = "BUDGET_INFEASIBLE"
	// SignalUnavailable indicates git or filesystem signals could not be read.
	// The scorer degrades to content-only heuristics; never propagated.
	SignalUnavailable ErrorCode = "SIGNAL_UNAVAILABLE"
	// StorageError indicates the metrics/plan store failed
	StorageError ErrorCode = "STORAGE_ERROR"
	// ConfigInvalid indicates a malformed configuration file
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// GovError represents a ctxgov error with code, message, and suggestions
type GovError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// NewGovError creates a new GovError
func NewGovError(code ErrorCode, message string, cause error, suggestedFixes []FixAction) *GovError {
	return &GovError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes,
	}
}

// Error implements the error interface
func (e *GovError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *GovError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *GovError) WithDetails(details interface{}) *GovError {
	e.Details = details
	return e
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	InputInvalid: {
		{
			Type:        RunCommand,
			Command:     "ctxgov plan units.json",
			Safe:        true,
			Description: "Input must be a JSON array of context units or an object with a context_units array",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "ctxgov init --force",
			Safe:        false,
			Description: "Regenerate .ctxgov/config.json with defaults",
		},
	},
	StorageError: {
		{
			Type:        RunCommand,
			Command:     "ctxgov plan --no-metrics",
			Safe:        true,
			Description: "Plan without recording metrics when the store is unavailable",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
