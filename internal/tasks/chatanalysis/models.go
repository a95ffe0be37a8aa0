package chatanalysis

import (
	"context"
	"time"

	"chatleads/internal/common/logger"
	"chatleads/internal/models"
)

type Input struct {
	Since     time.Time `json:"since,omitempty"`
	OutputDir string    `json:"outputDir,omitempty"`
}

type Output struct {
	Success        bool      `json:"success"`
	Sessions       int       `json:"sessions"`
	Messages       int       `json:"messages"`
	EmailsCaptured int       `json:"emailsCaptured"`
	Files          []string  `json:"files"`
	GeneratedAt    time.Time `json:"generatedAt"`
}

// SessionSource supplies livechat conversations. Implemented by the Odoo
// client.
type SessionSource interface {
	FetchSessions(ctx context.Context, since time.Time) ([]models.Conversation, error)
}

type ServiceDependencies struct {
	Logger   logger.Logger
	Sessions SessionSource
}
