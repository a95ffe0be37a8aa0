// Package chatleads implements the lead report task: fetch livechat
// sessions, run the analysis pipeline, enrich from the CRM and write the
// marketing follow-up files.
package chatleads

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"chatleads/internal/analysis/catalog"
	"chatleads/internal/common/errors"
	"chatleads/internal/common/logger"
	"chatleads/internal/common/metrics"
	"chatleads/internal/models"
	"chatleads/internal/pipeline"
	"chatleads/internal/report"
)

type Service struct {
	config   *Config
	logger   logger.Logger
	sessions SessionSource
	enricher Enricher
	emailer  Emailer
	catalog  *catalog.Catalog
	now      func() time.Time
}

func NewService(deps ServiceDependencies, config *Config, cat *catalog.Catalog) *Service {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Service{
		config:   config,
		logger:   deps.Logger,
		sessions: deps.Sessions,
		enricher: deps.Enricher,
		emailer:  deps.Emailer,
		catalog:  cat,
		now:      time.Now,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	now := s.now()
	outputDir := input.OutputDir
	if outputDir == "" {
		outputDir = s.config.OutputDir
	}

	s.logger.Info("Executing chat leads report", map[string]interface{}{
		"since":     input.Since,
		"outputDir": outputDir,
	})

	convs, err := s.sessions.FetchSessions(ctx, input.Since)
	if err != nil {
		return nil, err
	}

	pipe := pipeline.New(pipeline.Config{
		Catalog: s.catalog,
		Segment: s.config.Segment,
		Weights: s.config.Weights,
		Now:     now,
		Workers: s.config.Workers,
	}, s.logger)

	results, _, err := pipe.Run(ctx, convs)
	if err != nil {
		return nil, err
	}

	leads := s.collectLeads(ctx, results)

	// Tier first, then recency: urgent and fresh on top.
	sort.SliceStable(leads, func(i, j int) bool {
		if leads[i].PriorityTier != leads[j].PriorityTier {
			return leads[i].PriorityTier < leads[j].PriorityTier
		}
		return leads[i].DaysSinceContact < leads[j].DaysSinceContact
	})

	var withEmail, noEmail, actionable []models.LeadRecord
	for _, l := range leads {
		if l.PrimaryEmail != "" {
			withEmail = append(withEmail, l)
			continue
		}
		noEmail = append(noEmail, l)
		// Only leads with real buying intent are worth chasing without
		// a contact address.
		if l.PriorityTier <= 3 {
			actionable = append(actionable, l)
		}
	}

	files, err := s.writeReports(outputDir, withEmail, noEmail, actionable, now)
	if err != nil {
		return nil, err
	}

	out := &Output{
		Success:                true,
		Sessions:               len(convs),
		LeadsWithEmail:         len(withEmail),
		LeadsNoEmail:           len(noEmail),
		LeadsNoEmailActionable: len(actionable),
		TopPriority:            countTier(withEmail, 1),
		Files:                  files,
		GeneratedAt:            now,
	}

	if s.config.EmailEnabled && s.emailer != nil {
		if err := s.sendSummary(ctx, out); err != nil {
			// report files are already on disk; a failed mail is not fatal
			s.logger.Error("Summary email failed", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			out.EmailSent = true
		}
	}

	s.logger.Info("Chat leads report complete", map[string]interface{}{
		"sessions":       out.Sessions,
		"leadsWithEmail": out.LeadsWithEmail,
		"leadsNoEmail":   out.LeadsNoEmail,
		"topPriority":    out.TopPriority,
	})
	return out, nil
}

// collectLeads materializes lead records from pipeline results, attaching
// the outreach suggestion and the CRM profile.
func (s *Service) collectLeads(ctx context.Context, results []pipeline.Result) []models.LeadRecord {
	var leads []models.LeadRecord
	for _, res := range results {
		if res.Lead == nil {
			continue
		}
		lead := *res.Lead
		lead.SuggestedApproach = report.SuggestApproach(res.Signals, lead.ClientType)

		if s.enricher != nil && lead.PrimaryEmail != "" {
			if profile := s.enricher.Profile(ctx, lead.PrimaryEmail); profile != nil {
				lead.Profile = *profile
				lead.IsExistingCustomer = profile.ExistingCustomer()
			}
		}
		leads = append(leads, lead)
	}
	return leads
}

func (s *Service) writeReports(dir string, withEmail, noEmail, actionable []models.LeadRecord, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewReportWriteFailedError(dir, err)
	}

	files := []string{
		filepath.Join(dir, report.LeadsCSVName),
		filepath.Join(dir, report.ConversationsCSVName),
		filepath.Join(dir, report.NoEmailCSVName),
		filepath.Join(dir, report.MarketingReportName),
	}

	writers := []struct {
		path   string
		format string
		write  func(f *os.File) error
	}{
		{files[0], "csv", func(f *os.File) error { return report.WriteLeadsCSV(f, withEmail) }},
		{files[1], "csv", func(f *os.File) error { return report.WriteConversationsCSV(f, withEmail) }},
		{files[2], "csv", func(f *os.File) error { return report.WriteNoEmailCSV(f, actionable) }},
		{files[3], "markdown", func(f *os.File) error { return report.WriteMarketingReport(f, withEmail, noEmail, now) }},
	}

	for _, wr := range writers {
		if err := writeFile(wr.path, wr.write); err != nil {
			return nil, errors.NewReportWriteFailedError(wr.path, err)
		}
		metrics.ReportsWritten.WithLabelValues(wr.format).Inc()
	}
	return files, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *Service) sendSummary(ctx context.Context, out *Output) error {
	subject := fmt.Sprintf("🎯 Leads del Chat — %d prospectos (%d urgentes)", out.LeadsWithEmail, out.TopPriority)
	body := fmt.Sprintf(
		"Reporte de leads generado %s UTC\n\nSesiones analizadas: %d\nLeads con email: %d\nLeads sin email con intención: %d\nPrioridad máxima: %d\n\nArchivos en el directorio de reportes:\n- %s\n- %s\n- %s\n- %s\n",
		out.GeneratedAt.UTC().Format("2006-01-02 15:04"),
		out.Sessions, out.LeadsWithEmail, out.LeadsNoEmailActionable, out.TopPriority,
		report.LeadsCSVName, report.ConversationsCSVName, report.NoEmailCSVName, report.MarketingReportName,
	)

	if err := s.emailer.SendPlain(ctx, s.config.EmailFrom, s.config.EmailRecipients, subject, body); err != nil {
		return errors.NewEmailSendFailedError(err)
	}
	return nil
}

func countTier(leads []models.LeadRecord, tier int) int {
	n := 0
	for _, l := range leads {
		if l.PriorityTier == tier {
			n++
		}
	}
	return n
}
