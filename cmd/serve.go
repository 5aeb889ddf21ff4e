package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/yelinaung/leverage/internal/api"
	"gitlab.com/yelinaung/leverage/internal/bot"
	"gitlab.com/yelinaung/leverage/internal/coach"
	"gitlab.com/yelinaung/leverage/internal/config"
	"gitlab.com/yelinaung/leverage/internal/database"
	"gitlab.com/yelinaung/leverage/internal/exchange"
	"gitlab.com/yelinaung/leverage/internal/gemini"
	"gitlab.com/yelinaung/leverage/internal/logger"
	"gitlab.com/yelinaung/leverage/internal/repository"
	"gitlab.com/yelinaung/leverage/internal/solvency"
	"gitlab.com/yelinaung/leverage/internal/telemetry"
	"gitlab.com/yelinaung/leverage/internal/wealth"
)

const shutdownTimeout = 10 * time.Second

var flagNoBot bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, when configured, the Telegram bot",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&flagNoBot, "no-bot", false, "Do not start the Telegram bot even if a token is set")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := logger.InitHashSalt(); err != nil {
		return err
	}

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Options{
		Exporter:    cfg.OTelExporter,
		ServiceName: cfg.OTelServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to flush telemetry")
		}
	}()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		return err
	}
	logger.Log.Info().Msg("Database initialized successfully")

	svc, store, err := newService(ctx, cfg, pool)
	if err != nil {
		return err
	}

	var telegramBot *bot.Bot
	if cfg.BotEnabled() && !flagNoBot {
		telegramBot, err = bot.New(cfg, svc, store.Users)
		if err != nil {
			return err
		}
	} else {
		logger.Log.Info().Msg("Telegram bot disabled")
	}

	server := api.NewServer(svc, api.Options{
		Version:        version,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		JWTSecret:      cfg.APIJWTSecret,
		DB:             pool,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Log.Info().Str("addr", cfg.HTTPAddr).Bool("auth", cfg.AuthEnabled()).Msg("HTTP API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server failed: %w", err)
		}
	}()

	if telegramBot != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			telegramBot.Start(ctx)
		}()
	}

	select {
	case <-ctx.Done():
		logger.Log.Info().Msg("Shutting down...")
	case err = <-errCh:
		logger.Log.Error().Err(err).Msg("Shutting down after failure")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Log.Warn().Err(shutdownErr).Msg("HTTP server did not shut down cleanly")
	}
	wg.Wait()
	return err
}

// newService wires the repositories, rate conversion and calorie estimation
// into a coach.Service.
func newService(ctx context.Context, cfg *config.Config, pool repository.Pool) (*coach.Service, *repository.Store, error) {
	store := repository.NewStore(pool)

	calc, err := wealth.NewCalculator(cfg.AnnualInterestRate)
	if err != nil {
		return nil, nil, err
	}

	deps := coach.Deps{
		Users:     store.Users,
		Profiles:  store,
		Expenses:  store.Expenses,
		Logs:      store.Logs,
		Converter: exchange.NewCachedService(exchange.NewFrankfurterClient(cfg.ExchangeRateBaseURL, cfg.ExchangeRateTimeout), cfg.ExchangeRateCacheTTL),
		Engine:    solvency.NewEngine(cfg.GrowthTaxAggressive),
		Wealth:    calc,
		Location:  cfg.Location(),
	}

	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, nil, err
		}
		deps.Estimator = client
		logger.Log.Info().Msg("Calorie estimation enabled")
	} else {
		logger.Log.Info().Msg("GEMINI_API_KEY not set, /eat needs explicit calories")
	}

	svc, err := coach.New(deps)
	if err != nil {
		return nil, nil, err
	}
	return svc, store, nil
}
