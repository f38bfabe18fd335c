package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"personal-assistant/config"
	_ "personal-assistant/docs" // Swagger docs
	gcaladapter "personal-assistant/internal/adapters/gcal"
	notionadapter "personal-assistant/internal/adapters/notion"
	"personal-assistant/internal/agent/orchestrator"
	"personal-assistant/internal/credentials"
	"personal-assistant/internal/gateway"
	"personal-assistant/internal/httpserver"
	"personal-assistant/pkg/gcalendar"
	"personal-assistant/pkg/llmprovider"
	"personal-assistant/pkg/log"
	"personal-assistant/pkg/notion"
)

// @title       Personal Assistant API
// @description Conversational assistant over Notion tasks, checklist, expenses, and Google Calendar.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Personal Assistant...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)

	// 3. LLM provider chain
	providers, err := llmprovider.InitializeProviders(&cfg.LLM)
	if err != nil {
		logger.Error(ctx, "Failed to initialize LLM providers: ", err)
		return
	}
	llm := llmprovider.NewManager(providers, &llmprovider.Config{
		FallbackEnabled: cfg.LLM.FallbackEnabled,
		RetryAttempts:   cfg.LLM.RetryAttempts,
		RetryDelay:      parseDuration(cfg.LLM.RetryDelay, 2*time.Second),
		MaxTotalTimeout: parseDuration(cfg.LLM.MaxTotalTimeout, 60*time.Second),
	}, logger)

	// 4. Tool gateway
	gw := gateway.New(gateway.Config{
		AdapterConcurrency:  cfg.Gateway.AdapterConcurrency,
		QueueWait:           cfg.Gateway.QueueWait,
		InvokeTimeout:       cfg.Agent.ToolTimeout,
		HealthCheckInterval: cfg.Gateway.HealthCheckInterval,
	}, logger)

	loc, err := time.LoadLocation(cfg.Agent.Timezone)
	if err != nil {
		logger.Warnf(ctx, "Invalid timezone %q, falling back to UTC: %v", cfg.Agent.Timezone, err)
		loc = time.UTC
	}

	// 5. Notion adapter
	if cfg.Notion.APIKey != "" {
		notionClient := notion.NewClient(cfg.Notion.APIKey)
		adapter := notionadapter.New(notionClient, notionadapter.Config{
			TaskDBID:      cfg.Notion.TaskDBID,
			ChecklistDBID: cfg.Notion.ChecklistDBID,
			ExpenseDBID:   cfg.Notion.ExpenseDBID,
		}, loc)
		if err := gw.Register(adapter); err != nil {
			logger.Error(ctx, "Failed to register Notion adapter: ", err)
			return
		}
		logger.Info(ctx, "Notion adapter registered")
	} else {
		logger.Warn(ctx, "Notion adapter skipped: NOTION_API_KEY is missing")
	}

	// 6. Google Calendar adapter (optional, needs one-time interactive authorization)
	if cfg.GoogleCalendar.ClientSecretPath != "" {
		credManager, credErr := credentials.NewManagerFromCredentialsFile(
			cfg.GoogleCalendar.ClientSecretPath, cfg.GoogleCalendar.TokenPath, logger)
		if credErr != nil {
			logger.Warnf(ctx, "Google Calendar not available (optional): %v", credErr)
		} else {
			if credManager.RequiresAuthorization() {
				logger.Warn(ctx, "→ Run `go run scripts/gcal-auth/main.go` to authorize Google Calendar")
			}
			calendarClient, calErr := gcalendar.NewClient(ctx, credManager.TokenSource(ctx))
			if calErr != nil {
				logger.Warnf(ctx, "Failed to create calendar client: %v", calErr)
			} else {
				adapter := gcaladapter.New(calendarClient, credManager, gcaladapter.Config{
					CalendarID:      cfg.GoogleCalendar.CalendarID,
					DefaultTimezone: cfg.Agent.Timezone,
				})
				if err := gw.Register(adapter); err != nil {
					logger.Error(ctx, "Failed to register calendar adapter: ", err)
					return
				}
				logger.Info(ctx, "✅ Google Calendar adapter registered")
			}
		}
	} else {
		logger.Warn(ctx, "Calendar adapter skipped: google_calendar.client_secret_path is missing")
	}

	go gw.Run(ctx)

	// 7. Orchestrator
	assistant := orchestrator.New(llm, gw, logger, orchestrator.Config{
		Timezone:          cfg.Agent.Timezone,
		MaxToolIterations: cfg.Agent.MaxToolIterations,
		SessionTTL:        cfg.Agent.SessionTTL,
		MaxSessions:       cfg.Agent.MaxSessions,
	})

	// 8. HTTP server
	httpServer, err := httpserver.New(httpserver.Config{
		Logger:      logger,
		Port:        cfg.HTTPServer.Port,
		Mode:        cfg.HTTPServer.Mode,
		Environment: cfg.Environment.Name,
		Agent:       assistant,
		Tools:       gw,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 9. Run
	if err := httpServer.Run(ctx); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
