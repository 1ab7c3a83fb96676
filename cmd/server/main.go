package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"leadpipe/internal/common/aws"
	"leadpipe/internal/common/config"
	httpc "leadpipe/internal/common/http"
	"leadpipe/internal/common/logger"
	"leadpipe/internal/common/observability"
	"leadpipe/internal/identity"
	"leadpipe/internal/notify"
	"leadpipe/internal/server"
	"leadpipe/internal/sinks"
	"leadpipe/internal/storage"
	"leadpipe/internal/submission"
)

// retryWithBackoff retries an operation with exponential backoff.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var lastErr error
	delay := initialDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := operation(); err != nil {
			lastErr = err
			log.Warn("Operation failed, retrying",
				zap.String("operation", operationName),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("retry_delay", delay),
				zap.Error(err))

			if attempt < maxRetries {
				time.Sleep(delay)
				delay *= 2
			}
			continue
		}
		if attempt > 1 {
			log.Info("Operation succeeded after retry",
				zap.String("operation", operationName),
				zap.Int("attempt", attempt))
		}
		return nil
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, lastErr)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	log.Info("starting lead pipeline service", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	// Lead cache. Sink delivery and scoring keep working without it, so
	// a Redis outage degrades questionnaire score lookups rather than
	// failing the whole service.
	var leadCache submission.LeadCache
	if cfg.Redis.Enabled {
		redisClient := identity.NewRedisClient(cfg.Redis)
		store := identity.NewRedisStore(redisClient, cfg.Identity.StoragePrefix)
		err := retryWithBackoff(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return store.Ping(ctx)
		}, 3, 2*time.Second, zapLog, "redis_connect")
		if err != nil {
			log.Warn("redis unavailable, lead cache disabled", map[string]interface{}{
				"address": cfg.Redis.Address,
				"error":   err.Error(),
			})
		} else {
			leadCache = storage.NewLeadStore(redisClient, cfg.Redis.LeadCacheTTL())
			log.Info("redis lead cache connected", map[string]interface{}{
				"address": cfg.Redis.Address,
			})
		}
	}

	dispatcher := buildDispatcher(cfg, log)
	notifier := buildNotifier(cfg, log)

	limiter := submission.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
	handler := submission.NewHandler(cfg, limiter, dispatcher, leadCache, notifier, obs, log)

	router := server.NewRouter(handler, log)
	srv := server.New(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})
	case err := <-errCh:
		if err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Graceful shutdown failed", zap.Error(err))
	}
	log.Info("service stopped", nil)
}

// buildDispatcher assembles the enabled delivery sinks.
func buildDispatcher(cfg *config.Config, log logger.Logger) *sinks.Dispatcher {
	client := httpc.NewClient(cfg.Sinks.Timeout())
	policy := sinks.Policy{
		MaxAttempts: cfg.Sinks.MaxRetries,
		BaseDelay:   cfg.Sinks.RetryBaseDelay(),
	}

	var list []sinks.Sink
	if cfg.Sinks.CRM.Enabled {
		list = append(list, sinks.NewCRMSink(client, cfg.Sinks.CRM, policy))
	}
	if cfg.Sinks.MailerLite.Enabled {
		list = append(list, sinks.NewMailerLiteSink(client, cfg.Sinks.MailerLite, cfg.App.SiteURL, policy, log))
	}
	if cfg.Sinks.Segment.Enabled {
		list = append(list, sinks.NewSegmentSink(client, cfg.Sinks.Segment, cfg.App.SiteURL, policy))
	}
	if cfg.Sinks.GA4.Enabled {
		list = append(list, sinks.NewGA4Sink(client, cfg.Sinks.GA4, policy))
	}

	names := make([]string, 0, len(list))
	for _, s := range list {
		names = append(names, s.Name())
	}
	log.Info("sinks configured", map[string]interface{}{
		"sinks": names,
		"count": len(list),
	})

	return sinks.NewDispatcher(list, cfg.Sinks.Timeout(), log)
}

// buildNotifier wires the SES and SNS alert channels when enabled.
// Either client failing to initialize disables that channel only.
func buildNotifier(cfg *config.Config, log logger.Logger) *notify.Notifier {
	if !cfg.Notifications.Enabled {
		return notify.NewNotifier(nil, nil, cfg.Notifications, log)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var email notify.EmailSender
	if ses, err := aws.NewSESClient(ctx, cfg.Notifications.AWSRegion); err != nil {
		log.Warn("ses client init failed, email alerts disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		email = ses
	}

	var topic notify.TopicPublisher
	if sns, err := aws.NewSNSClient(ctx, cfg.Notifications.AWSRegion); err != nil {
		log.Warn("sns client init failed, sms alerts disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		topic = sns
	}

	return notify.NewNotifier(email, topic, cfg.Notifications, log)
}
