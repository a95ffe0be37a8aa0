// Package mailingbulk implements the mailing-list sync task: load every
// partner carrying an email, clean the addresses and create the missing
// subscribers in batches.
package mailingbulk

import (
	"context"
	"strings"
	"time"

	"chatleads/internal/common/logger"
	"chatleads/internal/common/odoo"
)

type Service struct {
	config *Config
	logger logger.Logger
	store  ContactStore
	now    func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		logger: deps.Logger,
		store:  deps.Store,
		now:    time.Now,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	listName := input.ListName
	if listName == "" {
		listName = s.config.ListName
	}

	s.logger.Info("Executing mailing bulk sync", map[string]interface{}{
		"list":   listName,
		"dryRun": input.DryRun,
	})

	listID, err := s.store.FindMailingList(ctx, listName)
	if err != nil {
		return nil, err
	}

	partners, err := s.store.PartnersWithEmail(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.ExistingMailingEmails(ctx, listID)
	if err != nil {
		return nil, err
	}

	var pending []odoo.MailingContact
	skipped := 0
	for _, partner := range partners {
		email := CleanEmail(partner.Email)
		if email == "" || existing[strings.ToLower(email)] {
			skipped++
			continue
		}
		// claim the address so duplicate partner rows collapse to one
		existing[strings.ToLower(email)] = true
		pending = append(pending, odoo.MailingContact{Name: partner.Name, Email: email})
	}

	out := &Output{
		ListID:      listID,
		Candidates:  len(partners),
		Skipped:     skipped,
		GeneratedAt: s.now(),
	}

	if input.DryRun {
		out.Success = true
		out.Created = 0
		s.logger.Info("Dry run complete", map[string]interface{}{
			"wouldCreate": len(pending),
			"skipped":     skipped,
		})
		return out, nil
	}

	created, err := s.store.CreateMailingContacts(ctx, listID, pending, s.config.BatchSize)
	out.Created = created
	if err != nil {
		return out, err
	}

	out.Success = true
	s.logger.Info("Mailing bulk sync complete", map[string]interface{}{
		"created": created,
		"skipped": skipped,
	})
	return out, nil
}

// CleanEmail extracts one usable address from a raw partner email field,
// which may hold multiple addresses separated by newlines, commas or
// semicolons, sometimes with stray leading punctuation.
func CleanEmail(raw string) string {
	email := strings.TrimSpace(raw)
	if email == "" {
		return ""
	}
	for _, sep := range []string{"\n", ",", ";"} {
		email = strings.TrimSpace(strings.SplitN(email, sep, 2)[0])
	}
	email = strings.TrimLeft(email, ": ")
	if !strings.Contains(email, "@") {
		return ""
	}
	return email
}
