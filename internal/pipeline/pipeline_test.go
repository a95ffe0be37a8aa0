package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatleads/internal/analysis/classify"
	"chatleads/internal/analysis/segment"
	"chatleads/internal/common/logger"
	"chatleads/internal/models"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testPipeline(workers int) *Pipeline {
	return New(Config{
		Segment: segment.DefaultConfig(),
		Now:     now,
		Workers: workers,
	}, logger.NewNoOpLogger())
}

func visitorMsg(id int64, body string, offset time.Duration, idx int) models.Message {
	return models.Message{
		ID:         id,
		Timestamp:  now.Add(-48*time.Hour + offset),
		RawBody:    body,
		FetchIndex: idx,
	}
}

func operatorMsg(id int64, body string, offset time.Duration, idx int) models.Message {
	return models.Message{
		ID:         id,
		AuthorID:   2,
		AuthorName: "Laura",
		Timestamp:  now.Add(-48*time.Hour + offset),
		RawBody:    body,
		FetchIndex: idx,
	}
}

func hotConversation(id int64) models.Conversation {
	return models.Conversation{
		ID:        id,
		StartedAt: now.Add(-48 * time.Hour),
		Messages: []models.Message{
			operatorMsg(1, "<p>Hola, ¿en qué puedo ayudarle?</p>", 0, 0),
			visitorMsg(2, "<p>soy contratista, quiero cotización de mayoreo de varilla y cemento</p>", time.Minute, 1),
			visitorMsg(3, "<p>mi correo es Juan@Obra.MX</p>", 2*time.Minute, 2),
		},
	}
}

func TestProcessConversation_HotLead(t *testing.T) {
	p := testPipeline(1)

	res := p.ProcessConversation(hotConversation(42))
	require.NotNil(t, res.Lead)

	lead := res.Lead
	assert.Equal(t, int64(42), lead.ConversationID)
	assert.Equal(t, 2, lead.DaysSinceContact)
	assert.Equal(t, "juan@obra.mx", lead.PrimaryEmail)
	assert.Equal(t, classify.TypeContractor, lead.ClientType)
	// 40 recency + 15 email + 20 bulk + 15 contractor + 10 seeking + 10 products
	assert.Equal(t, 110, lead.Score)
	assert.Equal(t, 1, lead.PriorityTier)
	assert.Contains(t, lead.SummaryExcerpt, "contratista")
	assert.Contains(t, lead.FullTranscript, "[Laura]:")
	assert.Equal(t, 3, lead.MessageCount)
}

func TestNew_DefaultsSegmentation(t *testing.T) {
	// A zero Segment must not degrade into "everyone is a visitor".
	p := New(Config{Now: now, Workers: 1}, logger.NewNoOpLogger())

	operatorOnly := models.Conversation{
		ID:        7,
		StartedAt: now.Add(-48 * time.Hour),
		Messages: []models.Message{
			{ID: 1, AuthorID: 7, AuthorName: "Bot", Timestamp: now.Add(-48 * time.Hour), RawBody: "<p>Hola</p>", FetchIndex: 0},
			{ID: 2, AuthorID: 2, AuthorName: "Laura", Timestamp: now.Add(-47 * time.Hour), RawBody: "<p>¿Sigue ahí?</p>", FetchIndex: 1},
		},
	}
	res := p.ProcessConversation(operatorOnly)
	assert.Nil(t, res.Lead)
	assert.Empty(t, res.Turns.Visitor)

	noisy := hotConversation(8)
	noisy.Messages = append(noisy.Messages, visitorMsg(9, "<p>Reiniciando conversación...</p>", 3*time.Minute, 3))
	res = p.ProcessConversation(noisy)
	require.NotNil(t, res.Lead)
	assert.NotContains(t, res.Lead.SummaryExcerpt, "Reiniciando")
	assert.Len(t, res.Turns.Visitor, 2)
}

func TestProcessConversation_NoVisitorTurns(t *testing.T) {
	p := testPipeline(1)

	conv := models.Conversation{
		ID:        7,
		StartedAt: now.Add(-time.Hour),
		Messages: []models.Message{
			operatorMsg(1, "¿Hola?", 0, 0),
		},
	}

	res := p.ProcessConversation(conv)
	assert.Nil(t, res.Lead)
	assert.Equal(t, 1, res.Turns.MessageCount)
}

func TestProcessConversation_FutureTimestampClampsToToday(t *testing.T) {
	p := testPipeline(1)

	conv := models.Conversation{
		ID:        9,
		StartedAt: now.Add(6 * time.Hour),
		Messages: []models.Message{
			visitorMsg(1, "hola, busco cemento", 0, 0),
		},
	}

	res := p.ProcessConversation(conv)
	require.NotNil(t, res.Lead)
	assert.Equal(t, 0, res.Lead.DaysSinceContact)
}

func TestProcessConversation_Deterministic(t *testing.T) {
	p := testPipeline(1)
	conv := hotConversation(1)

	first := p.ProcessConversation(conv)
	second := p.ProcessConversation(conv)
	assert.Equal(t, first, second)
}

func TestRun(t *testing.T) {
	p := testPipeline(3)

	convs := make([]models.Conversation, 0, 10)
	for i := 0; i < 9; i++ {
		convs = append(convs, hotConversation(int64(i+1)))
	}
	convs = append(convs, models.Conversation{
		ID:        100,
		StartedAt: now.Add(-time.Hour),
		Messages:  []models.Message{operatorMsg(1, "¿Hola?", 0, 0)},
	})

	results, acc, err := p.Run(context.Background(), convs)
	require.NoError(t, err)
	require.Len(t, results, 10)

	// Results stay in input order regardless of which worker ran them.
	for i := 0; i < 10; i++ {
		assert.Equal(t, convs[i].ID, results[i].Conversation.ID, "index %d", i)
	}

	assert.Equal(t, 10, acc.Sessions)
	assert.Equal(t, 9, acc.LeadCandidates)
	assert.Equal(t, 1, acc.UniqueEmailCount())
}

func TestRun_ContextCanceled(t *testing.T) {
	p := testPipeline(2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	convs := []models.Conversation{hotConversation(1), hotConversation(2)}
	_, _, err := p.Run(ctx, convs)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Empty(t *testing.T) {
	p := testPipeline(2)

	results, acc, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, acc.Sessions)
}

func TestDaysSince(t *testing.T) {
	tests := []struct {
		hoursAgo float64
		expected int
	}{
		{0, 0},
		{23, 0},
		{24, 1},
		{49, 2},
		{-6, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%vh", tt.hoursAgo), func(t *testing.T) {
			then := now.Add(-time.Duration(tt.hoursAgo * float64(time.Hour)))
			assert.Equal(t, tt.expected, daysSince(now, then))
		})
	}
}

func TestSummarize(t *testing.T) {
	turns := []string{"uno", "dos", "tres", "cuatro", "cinco", "seis", "siete"}
	assert.Equal(t, "uno | dos | tres | cuatro | cinco | seis", summarize(turns))

	assert.Equal(t, "uno", summarize([]string{"uno"}))
	assert.Equal(t, "", summarize(nil))
}
