package odoo

import (
	"context"
	"strings"

	"chatleads/internal/common/errors"
	"chatleads/internal/common/metrics"
)

// MailingContact is one subscriber row to create in a mailing list.
type MailingContact struct {
	Name  string
	Email string
}

// PartnersWithEmail returns every partner carrying an email address, in
// ID order. Raw emails come back as stored, multi-address values included.
func (c *Client) PartnersWithEmail(ctx context.Context) ([]MailingContact, error) {
	domain := []interface{}{
		[]interface{}{"email", "!=", false},
	}
	records, err := c.SearchReadAll(ctx, "res.partner", domain, []string{"name", "email"}, "id asc")
	if err != nil {
		return nil, err
	}

	contacts := make([]MailingContact, 0, len(records))
	for _, rec := range records {
		contacts = append(contacts, MailingContact{
			Name:  rec.Str("name"),
			Email: rec.Str("email"),
		})
	}
	return contacts, nil
}

// FindMailingList resolves a mailing list ID by name.
func (c *Client) FindMailingList(ctx context.Context, name string) (int64, error) {
	domain := []interface{}{
		[]interface{}{"name", "=", name},
	}
	kwargs := map[string]interface{}{
		"fields": []string{"id"},
		"limit":  1,
	}

	var hits []Record
	if err := c.ExecuteKw(ctx, "mailing.list", "search_read", []interface{}{domain}, kwargs, &hits); err != nil {
		return 0, err
	}
	if len(hits) == 0 {
		return 0, errors.NewMailingListMissingError(name)
	}
	return hits[0].Int("id"), nil
}

// ExistingMailingEmails returns the lowercased set of emails already
// subscribed to the list.
func (c *Client) ExistingMailingEmails(ctx context.Context, listID int64) (map[string]bool, error) {
	domain := []interface{}{
		[]interface{}{"list_ids", "in", []int64{listID}},
	}
	contacts, err := c.SearchReadAll(ctx, "mailing.contact", domain, []string{"email"}, "")
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(contacts))
	for _, rec := range contacts {
		if email := rec.Str("email"); email != "" {
			existing[strings.ToLower(email)] = true
		}
	}
	return existing, nil
}

// CreateMailingContacts creates contacts in batches, subscribing each to
// the list. Returns the number created; a failed batch aborts the rest so
// a rerun can resume against the refreshed existing-email set.
func (c *Client) CreateMailingContacts(ctx context.Context, listID int64, contacts []MailingContact, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 50
	}

	created := 0
	for start := 0; start < len(contacts); start += batchSize {
		end := start + batchSize
		if end > len(contacts) {
			end = len(contacts)
		}

		values := make([]interface{}, 0, end-start)
		for _, contact := range contacts[start:end] {
			values = append(values, map[string]interface{}{
				"name":  contact.Name,
				"email": contact.Email,
				// command 6 replaces the subscription set with the target list
				"list_ids": []interface{}{[]interface{}{6, 0, []int64{listID}}},
			})
		}

		var ids []int64
		if err := c.ExecuteKw(ctx, "mailing.contact", "create", []interface{}{values}, nil, &ids); err != nil {
			return created, errors.NewMailingUpsertFailedError(start/batchSize, err)
		}
		created += len(values)
		metrics.MailingContactsCreated.Add(float64(len(values)))
	}
	return created, nil
}
