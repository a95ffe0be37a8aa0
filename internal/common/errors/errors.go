// Package errors provides standardized error handling for the lead
// extraction pipeline.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeOdooAuthFailed       ErrorCode = "ODOO_AUTH_FAILED"
	ErrCodeOdooConnectionFailed ErrorCode = "ODOO_CONNECTION_FAILED"
	ErrCodeOdooFetchFailed      ErrorCode = "ODOO_FETCH_FAILED"
	ErrCodeOdooTimeout          ErrorCode = "ODOO_TIMEOUT"

	ErrCodeCatalogNotFound ErrorCode = "CATALOG_NOT_FOUND"
	ErrCodeCatalogInvalid  ErrorCode = "CATALOG_INVALID"

	ErrCodeEnrichmentFailed ErrorCode = "ENRICHMENT_FAILED"
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeReportWriteFailed  ErrorCode = "REPORT_WRITE_FAILED"
	ErrCodeEmailSendFailed    ErrorCode = "EMAIL_SEND_FAILED"
	ErrCodeAlertPublishFailed ErrorCode = "ALERT_PUBLISH_FAILED"

	ErrCodeMailingUpsertFailed ErrorCode = "MAILING_UPSERT_FAILED"
	ErrCodeMailingListMissing  ErrorCode = "MAILING_LIST_MISSING"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewOdooAuthFailedError creates a non-retryable authentication error.
// Odoo returns false for bad credentials rather than a fault, so retrying
// never helps.
func NewOdooAuthFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOdooAuthFailed,
		Message:   "Odoo authentication rejected",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOdooConnectionFailedError creates a retryable connection error.
func NewOdooConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOdooConnectionFailed,
		Message:   "Odoo connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewOdooFetchFailedError creates a retryable fetch error.
func NewOdooFetchFailedError(model string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOdooFetchFailed,
		Message:   "Odoo record fetch error",
		Details:   fmt.Sprintf("model: %s, error: %s", model, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewOdooTimeoutError creates a retryable timeout error.
func NewOdooTimeoutError(model string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOdooTimeout,
		Message:   "Odoo call timeout",
		Details:   fmt.Sprintf("model: %s", model),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogNotFoundError creates a non-retryable catalog path error.
func NewCatalogNotFoundError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogNotFound,
		Message:   "Signal catalog file not found",
		Details:   fmt.Sprintf("path: %s", path),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogInvalidError creates a non-retryable catalog validation error.
func NewCatalogInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Signal catalog failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnrichmentFailedError creates a retryable partner lookup error.
func NewEnrichmentFailedError(email string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnrichmentFailed,
		Message:   "Partner enrichment lookup error",
		Details:   fmt.Sprintf("email: %s, error: %s", email, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Enrichment cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportWriteFailedError creates a non-retryable report output error.
// A write failure usually means a bad path or permissions, not a transient
// fault.
func NewReportWriteFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportWriteFailed,
		Message:   "Report file write error",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmailSendFailedError creates a retryable email delivery error.
func NewEmailSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailSendFailed,
		Message:   "Report email delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertPublishFailedError creates a retryable alert publish error.
func NewAlertPublishFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertPublishFailed,
		Message:   "Alert publish failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMailingUpsertFailedError creates a retryable mailing contact error.
func NewMailingUpsertFailedError(batch int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMailingUpsertFailed,
		Message:   "Mailing contact batch create failed",
		Details:   fmt.Sprintf("batch: %d, error: %s", batch, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMailingListMissingError creates a non-retryable mailing list error.
func NewMailingListMissingError(listName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMailingListMissing,
		Message:   "Mailing list not found",
		Details:   fmt.Sprintf("list: %s", listName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry Policy
// ==========================

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeOdooConnectionFailed,
		ErrCodeOdooFetchFailed,
		ErrCodeEnrichmentFailed,
		ErrCodeEmailSendFailed,
		ErrCodeAlertPublishFailed,
		ErrCodeMailingUpsertFailed:
		return 3

	case ErrCodeOdooTimeout,
		ErrCodeCacheUnavailable:
		return 2

	default:
		return 0 // auth, catalog and report errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "ODOO"):
		return "ODOO"
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "ENRICHMENT") || strings.Contains(codeStr, "CACHE"):
		return "ENRICHMENT"
	case strings.Contains(codeStr, "REPORT") || strings.Contains(codeStr, "EMAIL") || strings.Contains(codeStr, "ALERT"):
		return "DELIVERY"
	case strings.Contains(codeStr, "MAILING"):
		return "MAILING"
	default:
		return "OTHER"
	}
}
