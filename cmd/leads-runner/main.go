// cmd/leads-runner/main.go
package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"chatleads/internal/analysis/catalog"
	"chatleads/internal/analysis/segment"
	"chatleads/internal/common/aws"
	"chatleads/internal/common/config"
	"chatleads/internal/common/database"
	apperrors "chatleads/internal/common/errors"
	"chatleads/internal/common/logger"
	"chatleads/internal/common/metrics"
	"chatleads/internal/common/observability"
	"chatleads/internal/common/odoo"
	"chatleads/internal/enrich"
	"chatleads/internal/tasks/chatanalysis"
	"chatleads/internal/tasks/chatleads"
	"chatleads/internal/tasks/mailingbulk"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	taskFlag := flag.String("task", "all", "task to run: leads, analysis, mailing or all")
	sinceFlag := flag.String("since", "", "only analyze sessions created on/after this date (YYYY-MM-DD)")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	runID := uuid.NewString()
	log = log.WithFields(map[string]interface{}{"runId": runID})

	zapLog.Info("Starting leads runner...", zap.String("runId", runID), zap.String("task", *taskFlag))

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	var since time.Time
	if *sinceFlag != "" {
		since, err = time.Parse("2006-01-02", *sinceFlag)
		if err != nil {
			zapLog.Fatal("invalid -since date", zap.Error(err))
		}
	}

	obs := observability.New("leads-runner")
	defer obs.Shutdown()

	handler := apperrors.NewErrorHandler(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Metrics endpoint ---
	if cfg.Metrics.Enabled {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Endpoint(), nil); err != nil {
				zapLog.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		zapLog.Info("Metrics endpoint listening", zap.String("addr", cfg.Metrics.Endpoint()))
	}

	// --- Fatal alerting ---
	var alerts *aws.SNSClient
	if cfg.Alerts.Enabled {
		alerts, err = aws.NewSNSClient(ctx, cfg.Alerts.Region)
		if err != nil {
			zapLog.Warn("sns client init failed, alerts disabled", zap.Error(err))
			alerts = nil
		}
	}
	fatal := func(msg string, err error) {
		if alerts != nil {
			alertCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if pubErr := alerts.PublishAlert(alertCtx, cfg.Alerts.TopicARN, "leads-runner failure",
				fmt.Sprintf("run %s: %s: %v", runID, msg, err)); pubErr != nil {
				zapLog.Warn("alert publish failed", zap.Error(pubErr))
			}
			cancel()
		}
		zapLog.Fatal(msg, zap.Error(err))
	}

	// --- Signal catalog ---
	cat := catalog.Default()
	if cfg.Analysis.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.Analysis.CatalogPath)
		if err != nil {
			fatal("catalog load failed", err)
		}
		zapLog.Info("Signal catalog loaded", zap.String("path", cfg.Analysis.CatalogPath))
	}

	// --- Odoo client with auth retry ---
	odooClient, err := odoo.NewClient(cfg.Odoo, log)
	if err != nil {
		fatal("odoo client init failed", err)
	}
	err = retryWithBackoff(func() error {
		_, err := odooClient.Authenticate(ctx)
		return err
	}, 5, 2*time.Second, zapLog, "Odoo authentication")
	if err != nil {
		fatal("odoo authentication failed after retries", err)
	}

	// --- Enrichment (optional Redis cache) ---
	var enricher *enrich.Service
	if cfg.Enrichment.Enabled {
		var cache enrich.Cache
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("redis unavailable, enrichment runs uncached", zap.Error(err))
		} else {
			defer redis.Close()
			cache = redis
		}
		ttl := time.Duration(cfg.Enrichment.CacheTTLHours) * time.Hour
		enricher = enrich.New(odooClient, cache, ttl, log)
	}

	// --- Report email (optional SES) ---
	var emailer chatleads.Emailer
	if cfg.Email.Enabled {
		ses, err := aws.NewSESClient(ctx, cfg.Email.Region)
		if err != nil {
			zapLog.Warn("ses client init failed, summary email disabled", zap.Error(err))
		} else {
			emailer = ses
		}
	}

	segCfg := segment.NewConfig(cfg.Analysis.NonVisitorAuthorIDs, cfg.Analysis.NoiseMarkers)

	runLeads := *taskFlag == "leads" || *taskFlag == "all"
	runAnalysis := *taskFlag == "analysis" || *taskFlag == "all"
	runMailing := *taskFlag == "mailing" || *taskFlag == "all"
	if !runLeads && !runAnalysis && !runMailing {
		zapLog.Fatal("unknown task", zap.String("task", *taskFlag))
	}

	if runLeads && config.IsTaskEnabled(cfg, "chat-leads") {
		svc := chatleads.NewService(
			chatleads.ServiceDependencies{
				Logger:   log,
				Sessions: odooClient,
				Enricher: enricherOrNil(enricher),
				Emailer:  emailer,
			},
			&chatleads.Config{
				Enabled:         true,
				Timeout:         config.GetDuration(config.GetTaskConfig(cfg, "chat-leads").Timeout),
				OutputDir:       cfg.Reports.OutputDir,
				Workers:         cfg.Analysis.Workers,
				Segment:         segCfg,
				Weights:         cfg.Analysis.Weights,
				EmailEnabled:    cfg.Email.Enabled && emailer != nil,
				EmailFrom:       cfg.Email.FromEmail,
				EmailRecipients: cfg.Email.Recipients,
			},
			cat,
		)
		runTask(ctx, "chat-leads", config.GetDuration(config.GetTaskConfig(cfg, "chat-leads").Timeout), handler, fatal, func(taskCtx context.Context) error {
			out, err := svc.Execute(taskCtx, &chatleads.Input{Since: since})
			if err != nil {
				return err
			}
			zapLog.Info("chat-leads done",
				zap.Int("sessions", out.Sessions),
				zap.Int("leadsWithEmail", out.LeadsWithEmail),
				zap.Int("topPriority", out.TopPriority),
			)
			return nil
		})
	}

	if runAnalysis && config.IsTaskEnabled(cfg, "chat-analysis") {
		svc := chatanalysis.NewService(
			chatanalysis.ServiceDependencies{Logger: log, Sessions: odooClient},
			&chatanalysis.Config{
				Enabled:   true,
				Timeout:   config.GetDuration(config.GetTaskConfig(cfg, "chat-analysis").Timeout),
				OutputDir: cfg.Reports.OutputDir,
				Workers:   cfg.Analysis.Workers,
				Segment:   segCfg,
			},
			cat,
		)
		runTask(ctx, "chat-analysis", config.GetDuration(config.GetTaskConfig(cfg, "chat-analysis").Timeout), handler, fatal, func(taskCtx context.Context) error {
			out, err := svc.Execute(taskCtx, &chatanalysis.Input{Since: since})
			if err != nil {
				return err
			}
			zapLog.Info("chat-analysis done",
				zap.Int("sessions", out.Sessions),
				zap.Int("emailsCaptured", out.EmailsCaptured),
			)
			return nil
		})
	}

	if runMailing && config.IsTaskEnabled(cfg, "mailing-bulk") {
		svc := mailingbulk.NewService(
			mailingbulk.ServiceDependencies{Logger: log, Store: odooClient},
			&mailingbulk.Config{
				Enabled:   true,
				Timeout:   config.GetDuration(config.GetTaskConfig(cfg, "mailing-bulk").Timeout),
				ListName:  cfg.Mailing.ListName,
				BatchSize: cfg.Mailing.BatchSize,
			},
		)
		runTask(ctx, "mailing-bulk", config.GetDuration(config.GetTaskConfig(cfg, "mailing-bulk").Timeout), handler, fatal, func(taskCtx context.Context) error {
			out, err := svc.Execute(taskCtx, &mailingbulk.Input{})
			if err != nil {
				return err
			}
			zapLog.Info("mailing-bulk done",
				zap.Int("created", out.Created),
				zap.Int("skipped", out.Skipped),
			)
			return nil
		})
	}

	zapLog.Info("Leads runner finished", zap.String("runId", runID))
	os.Exit(0)
}

func runTask(ctx context.Context, name string, timeout time.Duration, handler *apperrors.ErrorHandler, fatal func(string, error), fn func(context.Context) error) {
	taskCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	err := handler.Run(taskCtx, name, fn)
	metrics.TaskDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TasksFailed.WithLabelValues(name, errorCode(err)).Inc()
		fatal(fmt.Sprintf("task %s failed", name), err)
	}
	metrics.TasksCompleted.WithLabelValues(name).Inc()
}

func errorCode(err error) string {
	var se *apperrors.StandardError
	if stderrors.As(err, &se) {
		return string(se.Code)
	}
	return "INTERNAL_ERROR"
}

// enricherOrNil avoids handing a typed-nil pointer to the interface field.
func enricherOrNil(s *enrich.Service) chatleads.Enricher {
	if s == nil {
		return nil
	}
	return s
}
