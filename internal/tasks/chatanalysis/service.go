// Package chatanalysis implements the corpus analysis task: aggregate
// session statistics across the whole chat history and write the
// executive report files.
package chatanalysis

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"chatleads/internal/analysis/catalog"
	"chatleads/internal/common/errors"
	"chatleads/internal/common/logger"
	"chatleads/internal/common/metrics"
	"chatleads/internal/pipeline"
	"chatleads/internal/report"
)

type Service struct {
	config   *Config
	logger   logger.Logger
	sessions SessionSource
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

	s.logger.Info("Executing chat analysis", map[string]interface{}{
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
		Now:     now,
		Workers: s.config.Workers,
	}, s.logger)

	results, acc, err := pipe.Run(ctx, convs)
	if err != nil {
		return nil, err
	}

	rows := make([]report.DetailRow, 0, len(results))
	for _, res := range results {
		rows = append(rows, report.DetailRow{
			SessionID:       res.Conversation.ID,
			Date:            res.Conversation.StartedAt,
			Operator:        res.Conversation.OperatorName,
			Country:         res.Conversation.Country,
			Active:          res.Conversation.IsActive,
			MessageCount:    res.Turns.MessageCount,
			VisitorMessages: len(res.Turns.Visitor),
			Intents:         res.Signals.IntentTags(),
			Products:        res.Signals.ProductTags(),
			Emails:          res.Signals.Emails,
		})
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.NewReportWriteFailedError(outputDir, err)
	}

	files := []string{
		filepath.Join(outputDir, report.DetailCSVName),
		filepath.Join(outputDir, report.EmailsCSVName),
		filepath.Join(outputDir, report.MetricsCSVName),
		filepath.Join(outputDir, report.ExecutiveMDName),
	}

	writers := []struct {
		path   string
		format string
		write  func(f *os.File) error
	}{
		{files[0], "csv", func(f *os.File) error { return report.WriteDetailCSV(f, rows) }},
		{files[1], "csv", func(f *os.File) error { return report.WriteEmailsCSV(f, acc.SortedEmails()) }},
		{files[2], "csv", func(f *os.File) error { return report.WriteMetricsCSV(f, acc) }},
		{files[3], "markdown", func(f *os.File) error { return report.WriteExecutiveReport(f, acc, now) }},
	}
	for _, wr := range writers {
		if err := writeFile(wr.path, wr.write); err != nil {
			return nil, errors.NewReportWriteFailedError(wr.path, err)
		}
		metrics.ReportsWritten.WithLabelValues(wr.format).Inc()
	}
	metrics.EmailsCaptured.Add(float64(acc.UniqueEmailCount()))

	s.logger.Info("Chat analysis complete", map[string]interface{}{
		"sessions": acc.Sessions,
		"messages": acc.Messages,
		"emails":   acc.UniqueEmailCount(),
	})

	return &Output{
		Success:        true,
		Sessions:       acc.Sessions,
		Messages:       acc.Messages,
		EmailsCaptured: acc.UniqueEmailCount(),
		Files:          files,
		GeneratedAt:    now,
	}, nil
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
