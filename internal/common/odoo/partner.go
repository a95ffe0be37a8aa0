package odoo

import (
	"context"

	"chatleads/internal/models"
)

var partnerFields = []string{
	"name", "phone", "mobile", "city", "state_id", "parent_id",
	"function", "is_company", "sale_order_count", "total_invoiced",
}

// LookupPartner finds the CRM partner whose email matches, case
// insensitively, taking the first hit. A nil profile with nil error means
// no partner exists for the address.
func (c *Client) LookupPartner(ctx context.Context, email string) (*models.PartnerProfile, error) {
	domain := []interface{}{
		[]interface{}{"email", "=ilike", email},
	}
	kwargs := map[string]interface{}{
		"fields": partnerFields,
		"limit":  1,
	}

	var hits []Record
	if err := c.ExecuteKw(ctx, "res.partner", "search_read", []interface{}{domain}, kwargs, &hits); err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	rec := hits[0]
	_, state := rec.Many2One("state_id")
	_, company := rec.Many2One("parent_id")
	return &models.PartnerProfile{
		Name:           rec.Str("name"),
		Phone:          rec.Str("phone"),
		Mobile:         rec.Str("mobile"),
		City:           rec.Str("city"),
		State:          state,
		Company:        company,
		Function:       rec.Str("function"),
		IsCompany:      rec.Bool("is_company"),
		SaleOrderCount: int(rec.Int("sale_order_count")),
		TotalInvoiced:  rec.Float("total_invoiced"),
	}, nil
}
