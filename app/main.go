package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/svirin/newswatch/app/admission"
	"github.com/svirin/newswatch/app/api"
	"github.com/svirin/newswatch/app/cfg"
	"github.com/svirin/newswatch/app/database"
	"github.com/svirin/newswatch/app/dates"
	"github.com/svirin/newswatch/app/dedup"
	"github.com/svirin/newswatch/app/sources"
	"github.com/svirin/newswatch/app/tasks"
	"github.com/svirin/newswatch/app/telegram"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting newswatch", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrationVersion, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", migrationVersion, "dirty", dirty)

	postRepo := database.NewPostRepository(db)

	botClient := telegram.NewBotClient(appCfg.BotToken)
	sender := telegram.NewSender(botClient, appCfg.TargetChatID)

	cache := dedup.NewCache(appCfg.HistorySize, appCfg.CheckChars)
	seedCache(postRepo, cache, appCfg.HistorySize, appCfg.CheckChars)

	parser := dates.NewParser(time.Local)
	policy := admission.NewPolicy(parser, time.Now)
	pipeline := admission.NewPipeline(policy, cache, sender, postRepo, sender,
		appCfg.WindowHours, appCfg.StrictToday, appCfg.CheckChars)

	configCache := sources.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "count", configCache.GetConfigCount())

	registry := tasks.NewRegistry()
	scheduler := tasks.NewScheduler(pipeline, registry, sender)

	registerCollectors(scheduler, registry, configCache, botClient, appCfg)

	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(configCache, postRepo, cache, registry, appCfg.Version)
	server := api.NewServer(apiHandler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

// seedCache reloads the duplicate cache from the most recently delivered
// posts so a restart does not re-post recent items. Fingerprints are derived
// from the stored message text rather than taken from the fingerprint column,
// which keeps seeding correct when --check-chars changes between runs.
func seedCache(postRepo database.PostRepository, cache *dedup.Cache, historySize, checkChars int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	posts, err := postRepo.RecentPosts(ctx, historySize)
	if err != nil {
		slog.Warn("Failed to load post history, starting with an empty cache", "error", err)
		return
	}

	fingerprints := make([]string, 0, len(posts))
	for _, p := range posts {
		raw := p.Source + "\n" + p.Link + "\n" + p.Body
		if fp, ok := dedup.FingerprintFromPost(raw, checkChars); ok {
			fingerprints = append(fingerprints, fp)
		} else if p.Fingerprint != "" {
			fingerprints = append(fingerprints, p.Fingerprint)
		}
	}

	cache.Seed(fingerprints)
	slog.Info("Duplicate cache seeded from post history", "count", cache.Count())
}

// registerCollectors builds one collector per rss/page source and a single
// shared collector for all chat sources, since the bot's update stream is
// global per token. The shared collector polls at the smallest configured
// chat interval and reports its channel list through the status registry.
func registerCollectors(scheduler tasks.TaskSchedulerInterface, registry *tasks.Registry,
	configCache *sources.ConfigCache, botClient telegram.Client, appCfg *cfg.Cfg) {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	chatCollector := sources.NewChatCollector(botClient)

	for name, config := range configCache.GetEnabledConfigs() {
		interval := time.Duration(config.Settings.PollInterval) * time.Second

		switch config.Type {
		case sources.TypeRSS:
			scheduler.AddCollector(sources.NewRSSCollector(config, httpClient, appCfg.UserAgent), interval)
		case sources.TypePage:
			scheduler.AddCollector(sources.NewPageCollector(config, httpClient, appCfg.UserAgent), interval)
		case sources.TypeChat:
			if err := chatCollector.Register(config); err != nil {
				slog.Warn("Skipping chat source", "source", name, "error", err)
			}
		}
	}

	if chatCollector.SourceCount() > 0 {
		interval := chatCollector.MinPollInterval()
		if interval <= 0 {
			interval = appCfg.PollInterval
		}
		scheduler.AddCollector(chatCollector, time.Duration(interval)*time.Second)
		registry.SetChannels(chatCollector.Name(), chatCollector.Channels())
	}
}
