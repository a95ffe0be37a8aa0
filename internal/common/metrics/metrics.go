// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_tasks_completed_total",
			Help: "Total number of completed task runs",
		},
		[]string{"task"},
	)

	TasksFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_tasks_failed_total",
			Help: "Total number of failed task runs",
		},
		[]string{"task", "error_code"},
	)

	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "leads_task_duration_seconds",
			Help: "Duration of task runs in seconds",
		},
		[]string{"task"},
	)

	SessionsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_sessions_processed_total",
			Help: "Total number of chat sessions processed",
		},
	)

	LeadsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_extracted_total",
			Help: "Total number of leads extracted by priority tier",
		},
		[]string{"tier"},
	)

	EmailsCaptured = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_emails_captured_total",
			Help: "Total number of distinct emails captured",
		},
	)

	OdooRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_odoo_requests_total",
			Help: "Total number of Odoo RPC calls",
		},
		[]string{"model", "method", "status"},
	)

	OdooRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "leads_odoo_request_duration_seconds",
			Help: "Duration of Odoo RPC calls in seconds",
		},
		[]string{"model", "method"},
	)

	EnrichmentLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_enrichment_lookups_total",
			Help: "Partner enrichment lookups by outcome",
		},
		[]string{"outcome"}, // hit, miss, error
	)

	ReportsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_reports_written_total",
			Help: "Report files written by format",
		},
		[]string{"format"},
	)

	MailingContactsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_mailing_contacts_created_total",
			Help: "Mailing contacts created in Odoo",
		},
	)
)
