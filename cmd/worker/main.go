package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harshad-lohande/agentic-sales-copilot/common/id"
	"github.com/harshad-lohande/agentic-sales-copilot/common/llm"
	"github.com/harshad-lohande/agentic-sales-copilot/common/logger"
	"github.com/harshad-lohande/agentic-sales-copilot/common/otel"
	"github.com/harshad-lohande/agentic-sales-copilot/core/config"
	"github.com/harshad-lohande/agentic-sales-copilot/core/db"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/mailer"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/notify"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/prospect"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/queue"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/research"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/service"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/store"
	"github.com/harshad-lohande/agentic-sales-copilot/internal/worker"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	// The worker cannot run its pipeline without outbound mail and research
	if !cfg.SendGrid.Enabled() {
		slog.ErrorContext(ctx, "SENDGRID_API_KEY is required for the worker")
		os.Exit(1)
	}
	if !cfg.Tavily.Enabled() {
		slog.ErrorContext(ctx, "TAVILY_API_KEY is required for the worker")
		os.Exit(1)
	}

	slog.InfoContext(ctx, "copilot worker starting", "env", cfg.Env, "consumer", cfg.Pipeline.RedisConsumer)
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	stores := store.NewStores(database)
	if err := stores.Migrate(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Pipeline.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Pipeline.RedisStream)

	consumer, err := queue.NewRedisConsumer(redisClient, queue.ConsumerConfig{
		Stream:       cfg.Pipeline.RedisStream,
		Group:        cfg.Pipeline.RedisGroup,
		Consumer:     cfg.Pipeline.RedisConsumer,
		DLQStream:    cfg.Pipeline.RedisDLQStream,
		BatchSize:    1,
		Block:        5 * time.Second,
		MaxAttempts:  3,
		RequeueDelay: 1 * time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	classifierAgent, err := llm.NewChatClient(llm.Config{
		Provider: cfg.ClassifierLLM.Provider,
		APIKey:   cfg.ClassifierLLM.APIKey,
		BaseURL:  cfg.ClassifierLLM.BaseURL,
		Model:    cfg.ClassifierLLM.Model,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create classifier llm client", "error", err)
		os.Exit(1)
	}

	writerAgent, err := llm.NewChatClient(llm.Config{
		Provider: cfg.WriterLLM.Provider,
		APIKey:   cfg.WriterLLM.APIKey,
		BaseURL:  cfg.WriterLLM.BaseURL,
		Model:    cfg.WriterLLM.Model,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create writer llm client", "error", err)
		os.Exit(1)
	}

	researchClient, err := llm.New(llm.ClientConfig{
		APIKey:  cfg.ResearchLLM.APIKey,
		BaseURL: cfg.ResearchLLM.BaseURL,
		Model:   cfg.ResearchLLM.Model,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create research llm client", "error", err)
		os.Exit(1)
	}

	tavily := research.NewTavilyClient(research.TavilyClientOptions{
		BaseURL: cfg.Tavily.BaseURL,
		APIKey:  cfg.Tavily.APIKey,
	})
	researcher := research.NewResearcher(tavily, researchClient)

	directory := prospect.NewDirectory(cfg.Prospects.CSVPath)
	if err := directory.Load(); err != nil {
		slog.ErrorContext(ctx, "failed to load prospect directory", "error", err, "path", cfg.Prospects.CSVPath)
		os.Exit(1)
	}

	sender, err := mailer.New(mailer.Config{
		APIKey:       cfg.SendGrid.APIKey,
		SenderEmail:  cfg.SendGrid.SenderEmail,
		SenderName:   cfg.SendGrid.SenderName,
		ReplyToEmail: cfg.SendGrid.ReplyToEmail,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create mail sender", "error", err)
		os.Exit(1)
	}

	notifier := notify.NewSlackNotifier(cfg.Slack.BotToken, cfg.Slack.ChannelID)

	conversations := stores.Conversations()
	classifier := service.NewClassifier(classifierAgent)
	enricher := service.NewEnricher(conversations, directory, researcher, writerAgent)
	processor := service.NewInboundProcessor(conversations, classifier, enricher, notifier)

	w := worker.New(consumer, processor, sender, conversations, worker.Config{
		MaxAttempts: 3,
	})

	reclaimer := worker.NewRedisReclaimer(redisClient, worker.RedisReclaimerConfig{
		Stream:    cfg.Pipeline.RedisStream,
		Group:     cfg.Pipeline.RedisGroup,
		Consumer:  cfg.Pipeline.RedisConsumer + "-reclaimer",
		MinIdle:   5 * time.Minute,
		Interval:  1 * time.Minute,
		BatchSize: 10,
	}, consumer, w.ProcessMessage)

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx)
	}()
	go reclaimer.Run(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.InfoContext(ctx, "shutting down...")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker stopped with error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reclaimer.Stop()
	w.Stop()

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

const banner = `
 ██████╗ ██████╗ ██████╗ ██╗██╗      ██████╗ ████████╗    ██╗    ██╗ ██████╗ ██████╗ ██╗  ██╗███████╗██████╗
██╔════╝██╔═══██╗██╔══██╗██║██║     ██╔═══██╗╚══██╔══╝    ██║    ██║██╔═══██╗██╔══██╗██║ ██╔╝██╔════╝██╔══██╗
██║     ██║   ██║██████╔╝██║██║     ██║   ██║   ██║       ██║ █╗ ██║██║   ██║██████╔╝█████╔╝ █████╗  ██████╔╝
██║     ██║   ██║██╔═══╝ ██║██║     ██║   ██║   ██║       ██║███╗██║██║   ██║██╔══██╗██╔═██╗ ██╔══╝  ██╔══██╗
╚██████╗╚██████╔╝██║     ██║███████╗╚██████╔╝   ██║       ╚███╔███╔╝╚██████╔╝██║  ██║██║  ██╗███████╗██║  ██║
 ╚═════╝ ╚═════╝ ╚═╝     ╚═╝╚══════╝ ╚═════╝    ╚═╝        ╚══╝╚══╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝
`
