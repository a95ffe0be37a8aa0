package errors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name          string
		err           *StandardError
		wantCode      ErrorCode
		wantRetryable bool
	}{
		{"auth failed", NewOdooAuthFailedError("bad key"), ErrCodeOdooAuthFailed, false},
		{"connection failed", NewOdooConnectionFailedError(errors.New("refused")), ErrCodeOdooConnectionFailed, true},
		{"fetch failed", NewOdooFetchFailedError("discuss.channel", errors.New("boom")), ErrCodeOdooFetchFailed, true},
		{"timeout", NewOdooTimeoutError("mail.message"), ErrCodeOdooTimeout, true},
		{"catalog not found", NewCatalogNotFoundError("/tmp/missing.json"), ErrCodeCatalogNotFound, false},
		{"catalog invalid", NewCatalogInvalidError("missing intents"), ErrCodeCatalogInvalid, false},
		{"enrichment failed", NewEnrichmentFailedError("a@b.mx", errors.New("boom")), ErrCodeEnrichmentFailed, true},
		{"cache unavailable", NewCacheUnavailableError(errors.New("refused")), ErrCodeCacheUnavailable, true},
		{"report write failed", NewReportWriteFailedError("/out", errors.New("denied")), ErrCodeReportWriteFailed, false},
		{"email send failed", NewEmailSendFailedError(errors.New("throttled")), ErrCodeEmailSendFailed, true},
		{"mailing upsert failed", NewMailingUpsertFailedError(2, errors.New("rejected")), ErrCodeMailingUpsertFailed, true},
		{"mailing list missing", NewMailingListMissingError("Livechat Leads"), ErrCodeMailingListMissing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantRetryable, tt.err.Retryable)
			assert.NotEmpty(t, tt.err.Message)
			assert.False(t, tt.err.Timestamp.IsZero())
			assert.Contains(t, tt.err.Error(), string(tt.wantCode))
		})
	}
}

func TestGetRetryCount(t *testing.T) {
	assert.Equal(t, 3, GetRetryCount(ErrCodeOdooFetchFailed))
	assert.Equal(t, 3, GetRetryCount(ErrCodeMailingUpsertFailed))
	assert.Equal(t, 2, GetRetryCount(ErrCodeOdooTimeout))
	assert.Equal(t, 2, GetRetryCount(ErrCodeCacheUnavailable))
	assert.Equal(t, 0, GetRetryCount(ErrCodeOdooAuthFailed))
	assert.Equal(t, 0, GetRetryCount(ErrCodeReportWriteFailed))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeOdooConnectionFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeCatalogInvalid))
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{ErrCodeOdooAuthFailed, "ODOO"},
		{ErrCodeCatalogInvalid, "CATALOG"},
		{ErrCodeEnrichmentFailed, "ENRICHMENT"},
		{ErrCodeCacheUnavailable, "ENRICHMENT"},
		{ErrCodeReportWriteFailed, "DELIVERY"},
		{ErrCodeEmailSendFailed, "DELIVERY"},
		{ErrCodeMailingListMissing, "MAILING"},
		{"SOMETHING_ELSE", "OTHER"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetErrorCategory(tt.code), string(tt.code))
	}
}

type recordingLogger struct {
	warns  int
	errors int
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) { l.warns++ }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.errors++ }

func TestHandler_Normalize(t *testing.T) {
	h := NewErrorHandler(&recordingLogger{})

	std := NewOdooTimeoutError("mail.message")
	assert.Same(t, std, h.Normalize(std))

	wrapped := h.Normalize(errors.New("boom"))
	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), wrapped.Code)
	assert.False(t, wrapped.Retryable)
	assert.Equal(t, "boom", wrapped.Details)
}

func TestHandler_Run_SucceedsFirstTry(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	calls := 0
	err := h.Run(context.Background(), "task", func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, log.warns)
}

func TestHandler_Run_NonRetryableFailsImmediately(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	calls := 0
	err := h.Run(context.Background(), "task", func(ctx context.Context) error {
		calls++
		return NewOdooAuthFailedError("bad key")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, log.errors)

	var std *StandardError
	require.ErrorAs(t, err, &std)
	assert.Equal(t, ErrCodeOdooAuthFailed, std.Code)
}

func TestHandler_Run_RetriesUntilSuccess(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	calls := 0
	err := h.Run(context.Background(), "task", func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return NewOdooConnectionFailedError(errors.New("refused"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, log.warns)
}

func TestHandler_Run_ExhaustsRetryBudget(t *testing.T) {
	log := &recordingLogger{}
	h := NewErrorHandler(log)

	calls := 0
	err := h.Run(context.Background(), "task", func(ctx context.Context) error {
		calls++
		return NewOdooTimeoutError("mail.message")
	})

	require.Error(t, err)
	// Budget of 2 retries means three attempts in total.
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, log.warns)
	assert.Equal(t, 1, log.errors)
}

func TestHandler_Run_ContextCancelStopsBackoff(t *testing.T) {
	h := NewErrorHandler(&recordingLogger{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	calls := 0
	err := h.Run(ctx, "task", func(ctx context.Context) error {
		calls++
		return NewOdooConnectionFailedError(errors.New("refused"))
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls, "canceled before the first backoff elapsed")
}
