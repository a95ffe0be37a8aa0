package odoo

import (
	"context"
	"sort"
	"time"

	"chatleads/internal/models"
)

var (
	channelFields = []string{"id", "name", "create_date", "livechat_operator_id", "country_id", "livechat_active", "message_ids"}
	messageFields = []string{"id", "res_id", "author_id", "date", "body"}
)

// FetchSessions pulls livechat channels created since the given time along
// with their full message streams. Messages are read in batches and
// regrouped per channel; FetchIndex preserves the order the server
// returned them in, which later tie-breaks equal timestamps.
func (c *Client) FetchSessions(ctx context.Context, since time.Time) ([]models.Conversation, error) {
	domain := []interface{}{
		[]interface{}{"channel_type", "=", "livechat"},
	}
	if !since.IsZero() {
		domain = append(domain, []interface{}{"create_date", ">=", since.UTC().Format(odooTimeLayout)})
	}

	channels, err := c.SearchReadAll(ctx, "discuss.channel", domain, channelFields, "create_date asc")
	if err != nil {
		return nil, err
	}

	var messageIDs []int64
	for _, ch := range channels {
		if ids, ok := ch["message_ids"].([]interface{}); ok {
			for _, raw := range ids {
				if id, ok := toInt64(raw); ok {
					messageIDs = append(messageIDs, id)
				}
			}
		}
	}

	msgRecords, err := c.ReadAll(ctx, "mail.message", messageIDs, messageFields)
	if err != nil {
		return nil, err
	}

	convs := assembleConversations(channels, msgRecords)

	c.log.Info("Fetched livechat sessions", map[string]interface{}{
		"channels": len(convs),
		"messages": len(msgRecords),
	})
	return convs, nil
}

// assembleConversations regroups message records under their channels and
// decodes the channel rows.
func assembleConversations(channels, msgRecords []Record) []models.Conversation {
	byChannel := make(map[int64][]models.Message, len(channels))
	for i, rec := range msgRecords {
		channelID := rec.Int("res_id")
		authorID, authorName := rec.Many2One("author_id")
		byChannel[channelID] = append(byChannel[channelID], models.Message{
			ID:             rec.Int("id"),
			ConversationID: channelID,
			AuthorID:       authorID,
			AuthorName:     authorName,
			Timestamp:      rec.Time("date"),
			RawBody:        rec.Str("body"),
			FetchIndex:     i,
		})
	}

	convs := make([]models.Conversation, 0, len(channels))
	for _, ch := range channels {
		id := ch.Int("id")
		_, operator := ch.Many2One("livechat_operator_id")
		_, country := ch.Many2One("country_id")
		convs = append(convs, models.Conversation{
			ID:           id,
			StartedAt:    ch.Time("create_date"),
			OperatorName: operator,
			Country:      country,
			IsActive:     ch.Bool("livechat_active"),
			Messages:     byChannel[id],
		})
	}
	sort.Slice(convs, func(i, j int) bool { return convs[i].ID < convs[j].ID })
	return convs
}
