// Package pipeline runs the per-conversation analysis chain: segmentation,
// signal extraction, classification and scoring, plus corpus aggregation.
package pipeline

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"chatleads/internal/analysis/aggregate"
	"chatleads/internal/analysis/catalog"
	"chatleads/internal/analysis/classify"
	"chatleads/internal/analysis/extract"
	"chatleads/internal/analysis/score"
	"chatleads/internal/analysis/segment"
	"chatleads/internal/common/logger"
	"chatleads/internal/common/metrics"
	"chatleads/internal/models"
)

const summaryTurnLimit = 6

// Config carries everything the pipeline needs to stay deterministic:
// the rule catalog, segmentation settings, scoring weights and a fixed
// reference time for recency.
type Config struct {
	Catalog *catalog.Catalog
	Segment segment.Config
	Weights score.Weights
	Rules   []classify.Rule
	Now     time.Time
	Workers int
}

// Result is the full analysis output for one conversation. Lead is nil
// for conversations without visitor participation.
type Result struct {
	Conversation models.Conversation
	Turns        segment.Turns
	Signals      models.SignalSet
	Lead         *models.LeadRecord
}

type Pipeline struct {
	cfg Config
	log logger.Logger
}

func New(cfg Config, log logger.Logger) *Pipeline {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default()
	}
	if len(cfg.Rules) == 0 {
		cfg.Rules = classify.Cascade()
	}
	if cfg.Segment.NonVisitorAuthorIDs == nil {
		cfg.Segment = segment.DefaultConfig()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	return &Pipeline{cfg: cfg, log: log}
}

// ProcessConversation analyzes a single conversation. It is pure with
// respect to the configured reference time: the same conversation always
// yields the same result.
func (p *Pipeline) ProcessConversation(conv models.Conversation) Result {
	turns := segment.Split(conv, p.cfg.Segment)
	signals := extract.Signals(p.cfg.Catalog, turns.Visitor)

	res := Result{
		Conversation: conv,
		Turns:        turns,
		Signals:      signals,
	}
	if !turns.LeadCandidate() {
		return res
	}

	days := daysSince(p.cfg.Now, conv.StartedAt)
	clientType := classify.ClientType(p.cfg.Rules, signals, turns.VisitorJoined())
	total := p.cfg.Weights.Score(score.Input{
		DaysSinceContact: days,
		HasEmail:         signals.HasEmail(),
		Intents:          signals.Intents,
		ProductCount:     signals.ProductCount(),
		MessageCount:     turns.MessageCount,
	})
	tier, label := score.Tier(total)

	res.Lead = &models.LeadRecord{
		ConversationID:   conv.ID,
		ChatDate:         conv.StartedAt,
		DaysSinceContact: days,
		PrimaryEmail:     signals.PrimaryEmail(),
		ClientType:       clientType,
		Score:            total,
		PriorityTier:     tier,
		PriorityLabel:    label,
		Intents:          signals.IntentTags(),
		Products:         signals.ProductTags(),
		SummaryExcerpt:   summarize(turns.Visitor),
		FullTranscript:   strings.Join(turns.Transcript, "\n"),
		MessageCount:     turns.MessageCount,
	}
	return res
}

// Run processes conversations on a bounded worker pool. Each worker folds
// into its own accumulator; partials are merged after the pool drains so
// the tallies never race. Results come back in input order regardless of
// completion order.
func (p *Pipeline) Run(ctx context.Context, convs []models.Conversation) ([]Result, *aggregate.Accumulator, error) {
	results := make([]Result, len(convs))
	partials := make([]*aggregate.Accumulator, p.cfg.Workers)

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < p.cfg.Workers; w++ {
		partials[w] = aggregate.New()
		wg.Add(1)
		go func(acc *aggregate.Accumulator) {
			defer wg.Done()
			for idx := range jobs {
				res := p.ProcessConversation(convs[idx])
				results[idx] = res
				acc.AddSession(res.Conversation, res.Signals, res.Lead != nil)
				metrics.SessionsProcessed.Inc()
				if res.Lead != nil {
					metrics.LeadsExtracted.WithLabelValues(strconv.Itoa(res.Lead.PriorityTier)).Inc()
				}
			}
		}(partials[w])
	}

	var submitErr error
submit:
	for i := range convs {
		if err := ctx.Err(); err != nil {
			submitErr = err
			break
		}
		select {
		case <-ctx.Done():
			submitErr = ctx.Err()
			break submit
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if submitErr != nil {
		return nil, nil, submitErr
	}

	acc := aggregate.New()
	for _, partial := range partials {
		acc.Merge(partial)
	}

	p.log.Info("Pipeline run complete", map[string]interface{}{
		"sessions":        acc.Sessions,
		"lead_candidates": acc.LeadCandidates,
		"unique_emails":   acc.UniqueEmailCount(),
	})
	return results, acc, nil
}

// daysSince returns whole days elapsed, never negative. Conversations
// timestamped in the future count as today.
func daysSince(now, then time.Time) int {
	d := int(now.Sub(then).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

func summarize(visitorTurns []string) string {
	if len(visitorTurns) > summaryTurnLimit {
		visitorTurns = visitorTurns[:summaryTurnLimit]
	}
	return strings.Join(visitorTurns, " | ")
}
