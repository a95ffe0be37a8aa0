package chatleads

import (
	"context"
	"time"

	"chatleads/internal/common/logger"
	"chatleads/internal/models"
)

type Input struct {
	// Since limits the fetch to sessions created at or after this time.
	// Zero means the full history.
	Since time.Time `json:"since,omitempty"`
	// OutputDir overrides the configured report directory when set.
	OutputDir string `json:"outputDir,omitempty"`
}

type Output struct {
	Success        bool `json:"success"`
	Sessions       int  `json:"sessions"`
	LeadsWithEmail int  `json:"leadsWithEmail"`
	// LeadsNoEmail counts every lead without an email; the actionable
	// subset (tier 3 or better) is what lands in the CSV.
	LeadsNoEmail           int       `json:"leadsNoEmail"`
	LeadsNoEmailActionable int       `json:"leadsNoEmailActionable"`
	TopPriority            int       `json:"topPriority"`
	Files                  []string  `json:"files"`
	EmailSent              bool      `json:"emailSent"`
	GeneratedAt            time.Time `json:"generatedAt"`
}

// SessionSource supplies livechat conversations. Implemented by the Odoo
// client.
type SessionSource interface {
	FetchSessions(ctx context.Context, since time.Time) ([]models.Conversation, error)
}

// Enricher resolves partner profiles for captured emails.
type Enricher interface {
	Profile(ctx context.Context, email string) *models.PartnerProfile
}

// Emailer delivers the run summary to the marketing recipients.
type Emailer interface {
	SendPlain(ctx context.Context, from string, to []string, subject, body string) error
}

type ServiceDependencies struct {
	Logger   logger.Logger
	Sessions SessionSource
	Enricher Enricher
	Emailer  Emailer
}
