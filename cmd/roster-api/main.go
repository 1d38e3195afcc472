package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarcoPoloResearchLab/roster/internal/auth"
	"github.com/MarcoPoloResearchLab/roster/internal/config"
	"github.com/MarcoPoloResearchLab/roster/internal/database"
	"github.com/MarcoPoloResearchLab/roster/internal/logging"
	"github.com/MarcoPoloResearchLab/roster/internal/metrics"
	"github.com/MarcoPoloResearchLab/roster/internal/notify"
	"github.com/MarcoPoloResearchLab/roster/internal/server"
	"github.com/MarcoPoloResearchLab/roster/internal/users"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "roster-api",
		Short: "Roster user records service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)
	rootCmd.AddCommand(newUsersCommand())
	return rootCmd
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path (empty keeps records in memory)")
	cmd.PersistentFlags().Int("store-latency-ms", defaults.GetInt("store.latency_ms"), "Simulated latency of the in-memory store")
	cmd.PersistentFlags().Bool("seed", defaults.GetBool("store.seed"), "Seed the demo users")
	cmd.PersistentFlags().Int("token-ttl-minutes", defaults.GetInt("auth.token_ttl_minutes"), "API token TTL in minutes")
	cmd.PersistentFlags().Int("notify-ttl-ms", defaults.GetInt("notify.ttl_ms"), "Notification lifetime in milliseconds")
	cmd.PersistentFlags().StringSlice("allowed-origins", nil, "CORS origins allowed to call the API")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", defaults.GetString("log.format"), "Log format (json, console)")
	cmd.PersistentFlags().String("signing-secret", "", "API token signing secret (overrides env)")
	cmd.PersistentFlags().String("api-url", defaults.GetString("client.base_url"), "Base URL used by the users commands")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "store.latency_ms", "store-latency-ms")
	bindFlag(cmd, "store.seed", "seed")
	bindFlag(cmd, "auth.token_ttl_minutes", "token-ttl-minutes")
	bindFlag(cmd, "notify.ttl_ms", "notify-ttl-ms")
	bindFlag(cmd, "cors.allowed_origins", "allowed-origins")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.format", "log-format")
	bindFlag(cmd, "auth.signing_secret", "signing-secret")
	bindFlag(cmd, "client.base_url", "api-url")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel, appConfig.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	store, closeStore, err := openStore(appConfig, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	tokenManager, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(appConfig.SigningSecret),
		Issuer:        appConfig.TokenIssuer,
		Audience:      appConfig.TokenAudience,
		TokenTTL:      appConfig.TokenTTL,
	})
	if err != nil {
		return err
	}

	collectors := metrics.NewCollectors()
	feed := notify.NewFeed(notify.FeedConfig{
		TTL:    appConfig.NotificationTTL,
		Logger: logger,
	})

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Store:             metrics.InstrumentStore(store, collectors),
		Checker:           auth.NewDemoChecker(),
		TokenManager:      tokenManager,
		Feed:              feed,
		Metrics:           collectors,
		Logger:            logger,
		AllowedOrigins:    appConfig.AllowedOrigins,
		HeartbeatInterval: appConfig.HeartbeatInterval,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              appConfig.HTTPAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("address", appConfig.HTTPAddress),
			zap.Bool("memory_store", appConfig.UsesMemoryStore()),
		)
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// openStore picks the in-memory store when no database path is configured.
func openStore(appConfig config.AppConfig, logger *zap.Logger) (users.Store, func(), error) {
	ids := users.NewUUIDProvider()
	if appConfig.UsesMemoryStore() {
		var seed []users.Fields
		if appConfig.SeedDemoUsers {
			seed = users.DemoSeed()
		}
		store, err := users.NewMemoryStore(users.MemoryStoreConfig{
			Latency:    appConfig.StoreLatency,
			IDProvider: ids,
			Seed:       seed,
			Logger:     logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}

	db, err := database.OpenSQLite(appConfig.DatabasePath, database.Options{
		SeedDemoUsers: appConfig.SeedDemoUsers,
		IDProvider:    ids,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	store, err := users.NewSQLiteStore(users.SQLiteStoreConfig{
		Database:   db,
		IDProvider: ids,
		Logger:     logger,
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	return store, func() { _ = sqlDB.Close() }, nil
}
