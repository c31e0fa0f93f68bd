package main

//	@title						themeforge API
//	@version					0.1.0
//	@description				Theme configuration, presets and live token updates.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/HerbHall/themeforge/api/swagger"
	"github.com/HerbHall/themeforge/internal/auth"
	"github.com/HerbHall/themeforge/internal/config"
	"github.com/HerbHall/themeforge/internal/event"
	"github.com/HerbHall/themeforge/internal/live"
	"github.com/HerbHall/themeforge/internal/projector"
	"github.com/HerbHall/themeforge/internal/realtime"
	"github.com/HerbHall/themeforge/internal/seed"
	"github.com/HerbHall/themeforge/internal/server"
	"github.com/HerbHall/themeforge/internal/store"
	"github.com/HerbHall/themeforge/internal/theme"
	"github.com/HerbHall/themeforge/internal/themeapi"
	"github.com/HerbHall/themeforge/internal/themestore"
	"github.com/HerbHall/themeforge/internal/version"
	"github.com/HerbHall/themeforge/internal/webhook"
	"github.com/HerbHall/themeforge/internal/ws"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var subcommands = map[string]func(args []string) error{
	"seed":       runSeed,
	"export-css": runExportCSS,
	"token":      runToken,
	"watch":      runWatch,
}

func main() {
	// A missing .env is normal; only report files that exist but cannot be read.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	// Subcommand dispatch (before flag.Parse).
	if len(os.Args) > 1 {
		if os.Args[1] == "version" {
			fmt.Println(version.Info())
			return
		}
		if run, ok := subcommands[os.Args[1]]; ok {
			if err := run(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "themeforge %s: %v\n", os.Args[1], err)
				os.Exit(1)
			}
			return
		}
	}

	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if err := serve(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "themeforge: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, builds the logger and opens the migrated
// theme store. Callers close the returned database.
func bootstrap(configPath string) (*viper.Viper, *zap.Logger, *store.SQLiteStore, *themestore.Store, error) {
	v, err := server.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	logger, err := config.NewLogger(v)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("initialize logger: %w", err)
	}

	dbPath := v.GetString("database.path")
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := store.New(dbPath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("open database %s: %w", dbPath, err)
	}

	ctx := context.Background()
	if err := db.CheckVersion(ctx, version.Short()); err != nil {
		db.Close()
		return nil, nil, nil, nil, err
	}
	themes, err := themestore.Open(ctx, db, logger.Named("themestore"))
	if err != nil {
		db.Close()
		return nil, nil, nil, nil, err
	}
	logger.Info("database initialized",
		zap.String("component", "database"),
		zap.String("path", dbPath),
	)
	return v, logger, db, themes, nil
}

func serve(configPath string) error {
	v, logger, db, themeStore, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer db.Close()
	defer func() { _ = logger.Sync() }()

	logger.Info("themeforge server starting", zap.String("version", version.Short()))
	if f := v.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Warn("no configuration file found, using defaults",
			zap.String("component", "config"),
		)
	}

	srvCfg, err := server.ServerConfig(v)
	if err != nil {
		return err
	}
	cfg := config.New(v)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if v.GetBool("seed.presets") {
		if _, err := seed.Run(ctx, themeStore, logger.Named("seed")); err != nil {
			return err
		}
	}

	bus := event.NewBus(logger.Named("event"))
	themes := themestore.NewAdapter(themeStore, logger.Named("themestore"))

	// Live theme: project the stored default and follow the broadcast channel.
	var projOpts []projector.Option
	if v.GetBool("theme.glass_alias") {
		projOpts = append(projOpts, projector.WithThemeGlassAlias())
	}
	projOpts = append(projOpts, projector.WithLogger(logger.Named("projector")))
	ctrl := live.NewController(themes.DefaultTheme(ctx), projector.New(projector.NewMemorySink(), projOpts...), nil, logger.Named("live"))

	rtCfg := realtime.ConfigFrom(cfg.Sub("realtime"))
	manager := realtime.NewManager(realtime.NewBusTransport(bus, logger.Named("realtime")), rtCfg, logger.Named("realtime"))
	detach := ctrl.Attach(manager)
	defer detach()
	if err := manager.Start(ctx); err != nil {
		logger.Warn("live updates unavailable", zap.Error(err))
	}

	hookCfg := webhook.ConfigFrom(cfg.Sub("webhook"))
	if !cfg.IsSet("webhook.channel") {
		hookCfg.Channel = rtCfg.Channel
	}
	defer webhook.New(hookCfg, logger.Named("webhook")).Subscribe(bus)()

	service := theme.NewService(nil, themeStore, auth.Identity, logger.Named("usage"))
	editor := live.NewEditor(live.EditorConfig{
		Controller: ctrl,
		Themes:     themes,
		Service:    service,
		Publisher:  bus,
		Channel:    rtCfg.Channel,
		Logger:     logger.Named("editor"),
	})

	tokens, err := tokenService(v, logger)
	if err != nil {
		return err
	}

	apiHandler := themeapi.NewHandler(themeapi.Config{
		Themes:       themes,
		Service:      service,
		Live:         ctrl,
		Editor:       editor,
		Publisher:    bus,
		Channel:      rtCfg.Channel,
		EnforceRoles: tokens != nil,
		GlassAlias:   v.GetBool("theme.glass_alias"),
		Logger:       logger.Named("api"),
	})
	wsHandler := ws.NewHandler(ws.NewHub(bus, logger.Named("ws")), tokens, logger.Named("ws"))

	opts := server.Options{
		Addr:   srvCfg.Addr(),
		Logger: logger,
		Ready: func(ctx context.Context) error {
			return db.DB().PingContext(ctx)
		},
		DevMode:        srvCfg.DevMode,
		RateLimitRPS:   v.GetFloat64("server.rate_limit_rps"),
		RateLimitBurst: v.GetInt("server.rate_limit_burst"),
	}
	if tokens != nil {
		opts.Auth = auth.AuthMiddleware(tokens)
	}
	srv := server.New(opts, apiHandler, wsHandler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	logger.Info("themeforge server ready", zap.String("addr", srvCfg.Addr()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	manager.Stop()
	service.Wait()

	logger.Info("themeforge server stopped")
	return nil
}

// tokenService returns nil when authentication is disabled.
func tokenService(v *viper.Viper, logger *zap.Logger) (*auth.TokenService, error) {
	if !v.GetBool("auth.enabled") {
		logger.Warn("authentication disabled; every API caller is anonymous",
			zap.String("component", "auth"),
		)
		return nil, nil
	}

	secret := v.GetString("auth.jwt_secret")
	if secret == "" {
		// Tokens signed with an ephemeral secret do not survive restarts.
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate JWT secret: %w", err)
		}
		secret = hex.EncodeToString(b)
		logger.Info("using auto-generated JWT secret (set auth.jwt_secret to keep tokens valid across restarts)",
			zap.String("component", "auth"),
		)
	}
	ttl := v.GetDuration("auth.access_token_ttl")
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	logger.Info("auth initialized",
		zap.String("component", "auth"),
		zap.Duration("access_token_ttl", ttl),
	)
	return auth.NewTokenService([]byte(secret), ttl), nil
}
