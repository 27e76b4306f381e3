package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fadedpez/trackbattle/internal/api"
	"github.com/fadedpez/trackbattle/internal/commands"
	"github.com/fadedpez/trackbattle/internal/config"
	idiscord "github.com/fadedpez/trackbattle/internal/discord"
	"github.com/fadedpez/trackbattle/internal/logging"
	"github.com/fadedpez/trackbattle/pkg/db"
	"github.com/fadedpez/trackbattle/pkg/discord"
	"github.com/fadedpez/trackbattle/pkg/lock"
	"github.com/fadedpez/trackbattle/pkg/metrics"
	"github.com/fadedpez/trackbattle/pkg/payments"
	"github.com/fadedpez/trackbattle/pkg/repositories/archive"
	battleRepo "github.com/fadedpez/trackbattle/pkg/repositories/battle"
	walletRepo "github.com/fadedpez/trackbattle/pkg/repositories/wallet"
	"github.com/fadedpez/trackbattle/pkg/retry"
	"github.com/fadedpez/trackbattle/pkg/scheduler"
	"github.com/fadedpez/trackbattle/pkg/services/battle"
	"github.com/fadedpez/trackbattle/pkg/services/notify"
	"github.com/fadedpez/trackbattle/pkg/services/voting"
	"github.com/fadedpez/trackbattle/pkg/services/wallet"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel))
	logging.Default = logger

	conn, err := db.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("Failed to open database at %s: %v", cfg.DBPath, err)
		os.Exit(1)
	}
	defer conn.Close()
	logger.Info("Using database %s", cfg.DBPath)

	m := metrics.New()
	policy := retry.Policy{
		MaxAttempts:    cfg.RetryMaxAttempts,
		InitialBackoff: cfg.RetryInitialBackoff,
		MaxBackoff:     cfg.RetryMaxBackoff,
		Multiplier:     2,
	}

	// Payments
	var providers []payments.Provider
	if cfg.PayPalClientID != "" && cfg.PayPalClientSecret != "" {
		providers = append(providers, payments.NewPayPal(payments.PayPalConfig{
			BaseURL:      cfg.PayPalBaseURL(),
			ClientID:     cfg.PayPalClientID,
			ClientSecret: cfg.PayPalClientSecret,
		}))
	}
	if cfg.StripeAPIKey != "" {
		providers = append(providers, payments.NewStripe(payments.StripeConfig{APIKey: cfg.StripeAPIKey}))
	}
	registry := payments.NewRegistry(providers...)
	if len(registry.Names()) == 0 {
		logger.Warn("No payment provider configured, buy-coins is disabled")
	}

	wallets := wallet.NewService(walletRepo.NewSQLiteRepository(conn, nil), wallet.Options{
		Payments: registry,
		Retry:    policy,
		Metrics:  m,
		Logger:   logger,
	})

	// Discord
	session, err := idiscord.NewSession(cfg.Token)
	if err != nil {
		logger.Error("Error creating Discord session: %v", err)
		os.Exit(1)
	}
	var notifier notify.Notifier = notify.Nop{}
	if cfg.BattleChannelID != "" || cfg.ResultsChannelID != "" {
		notifier = notify.NewRetrying(discord.NewNotifier(session, discord.NotifierOptions{
			BattleChannelID:  cfg.BattleChannelID,
			StatsChannelID:   cfg.StatsChannelID,
			ResultsChannelID: cfg.ResultsChannelID,
		}), policy, logger, m)
	} else {
		logger.Warn("No announcement channels configured, battle events are not posted")
	}

	var archiver battle.Archiver
	if cfg.ElasticsearchURL != "" {
		es, err := archive.NewElasticsearchArchive(archive.Config{
			URL:      cfg.ElasticsearchURL,
			Username: cfg.ElasticsearchUsername,
			Password: cfg.ElasticsearchPassword,
		}, logger)
		if err != nil {
			logger.Warn("Result archive disabled: %v", err)
		} else {
			archiver = es
		}
	}

	// Battles and voting share the per-battle locks
	battleLocks := lock.NewKeyed[int64]()
	battles := battleRepo.NewSQLiteRepository(conn)
	clock := scheduler.RealClock{}

	battleService := battle.NewService(battles, battle.Rules{
		Categories:     cfg.Categories,
		Tiers:          cfg.Tiers,
		VotingDuration: cfg.VotingDuration,
		EntryCooldown:  cfg.EntryCooldown,
		WinnerShare:    cfg.WinnerShare,
	}, battle.Options{
		Notifier: notifier,
		Archiver: archiver,
		Clock:    clock,
		Locks:    battleLocks,
		Metrics:  m,
		Logger:   logger,
	})
	votingService := voting.NewService(battles, voting.Options{
		Locks:   battleLocks,
		Now:     clock.Now,
		Metrics: m,
		Logger:  logger,
	})

	table := commands.NewTable(commands.Deps{
		Battles:    battleService,
		Voting:     votingService,
		Wallet:     wallets,
		Categories: battleService.Categories(),
		Tiers:      battleService.Tiers(),
		Providers:  registry.Names(),
		Metrics:    m,
		Logger:     logger,
	})

	bot := discord.NewBot(session, table, votingService, discord.Options{
		AppID:         cfg.AppID,
		GuildID:       cfg.GuildID,
		CleanupOnStop: cfg.IsDevelopment(),
		Logger:        logger,
	})
	if err := bot.Start(); err != nil {
		logger.Error("Error starting bot: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(clock, logger)
	sched.Metrics = m
	scheduler.RegisterSweeps(sched, battleService, scheduler.SweepIntervals{
		Deadline:  cfg.SweepInterval,
		Promotion: cfg.PromotionInterval,
		Stats:     cfg.StatsInterval,
	}, logger)
	sched.Start(ctx)

	var server *api.Server
	if cfg.AdminJWTSecret != "" {
		server = api.NewServer(api.Options{
			Addr:    cfg.HTTPAddr,
			Table:   table,
			Auth:    api.NewAuthenticator(cfg.AdminJWTSecret),
			Health:  conn.PingContext,
			Metrics: m,
			Logger:  logger,
		})
		go func() {
			if err := server.Start(); err != nil {
				logger.Error("Admin API stopped: %v", err)
			}
		}()
	} else {
		logger.Warn("ADMIN_JWT_SECRET not set, admin API is disabled")
	}

	logger.Info("Bot is running. Press Ctrl+C to exit")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down...")
	sched.Stop()
	if server != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Error stopping admin API: %v", err)
		}
		cancelShutdown()
	}
	if err := bot.Stop(); err != nil {
		logger.Warn("Error stopping bot: %v", err)
	}
}
