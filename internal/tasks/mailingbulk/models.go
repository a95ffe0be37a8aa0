package mailingbulk

import (
	"context"
	"time"

	"chatleads/internal/common/logger"
	"chatleads/internal/common/odoo"
)

type Input struct {
	// ListName overrides the configured mailing list when set.
	ListName string `json:"listName,omitempty"`
	// DryRun counts what would be created without writing anything.
	DryRun bool `json:"dryRun,omitempty"`
}

type Output struct {
	Success     bool      `json:"success"`
	ListID      int64     `json:"listId"`
	Candidates  int       `json:"candidates"`
	Created     int       `json:"created"`
	Skipped     int       `json:"skipped"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ContactStore is the mailing surface of the Odoo client.
type ContactStore interface {
	PartnersWithEmail(ctx context.Context) ([]odoo.MailingContact, error)
	FindMailingList(ctx context.Context, name string) (int64, error)
	ExistingMailingEmails(ctx context.Context, listID int64) (map[string]bool, error)
	CreateMailingContacts(ctx context.Context, listID int64, contacts []odoo.MailingContact, batchSize int) (int, error)
}

type ServiceDependencies struct {
	Logger logger.Logger
	Store  ContactStore
}
