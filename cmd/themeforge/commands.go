package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/HerbHall/themeforge/internal/auth"
	"github.com/HerbHall/themeforge/internal/config"
	"github.com/HerbHall/themeforge/internal/live"
	"github.com/HerbHall/themeforge/internal/projector"
	"github.com/HerbHall/themeforge/internal/realtime"
	"github.com/HerbHall/themeforge/internal/seed"
	"github.com/HerbHall/themeforge/internal/server"
	"github.com/HerbHall/themeforge/internal/theme"
	"github.com/HerbHall/themeforge/internal/themestore"
	"go.uber.org/zap"
)

// runSeed inserts the built-in presets and exits.
func runSeed(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	_, logger, db, themeStore, err := bootstrap(*configPath)
	if err != nil {
		return err
	}
	defer db.Close()
	defer func() { _ = logger.Sync() }()

	n, err := seed.Run(context.Background(), themeStore, logger.Named("seed"))
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d preset(s)\n", n)
	return nil
}

// runExportCSS resolves the theme for a route and prints it as a stylesheet.
func runExportCSS(args []string) error {
	fs := flag.NewFlagSet("export-css", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to configuration file")
	path := fs.String("path", "/", "route path to resolve")
	themeID := fs.String("theme", "", "export this theme ID instead of resolving a path")
	selector := fs.String("selector", "", "CSS selector (default :root)")
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v, logger, db, themeStore, err := bootstrap(*configPath)
	if err != nil {
		return err
	}
	defer db.Close()
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	themes := themestore.NewAdapter(themeStore, logger.Named("themestore"))
	var t *theme.Theme
	if *themeID != "" {
		t = themes.LoadThemeByID(ctx, *themeID)
	} else {
		t = themes.LoadThemeForPath(ctx, *path)
	}

	var opts []projector.Option
	if v.GetBool("theme.glass_alias") {
		opts = append(opts, projector.WithThemeGlassAlias())
	}
	sink := projector.NewMemorySink()
	projector.New(sink, opts...).Apply(t)
	css := projector.RenderCSS(sink, *selector)

	if *out == "" {
		_, err = io.WriteString(os.Stdout, css)
		return err
	}
	if err := os.WriteFile(*out, []byte(css), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	logger.Info("stylesheet written",
		zap.String("theme_id", t.ID),
		zap.String("file", *out),
	)
	return nil
}

// runToken issues an access token signed with auth.jwt_secret.
func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to configuration file")
	user := fs.String("user", "", "username")
	role := fs.String("role", string(auth.RoleViewer), "role: admin, editor or viewer")
	ttl := fs.Duration("ttl", 0, "token lifetime (default auth.access_token_ttl)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		return fmt.Errorf("-user is required")
	}
	r, err := auth.ParseRole(*role)
	if err != nil {
		return err
	}

	v, err := server.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	secret := v.GetString("auth.jwt_secret")
	if secret == "" {
		return fmt.Errorf("auth.jwt_secret is not set; a server with a generated secret cannot verify issued tokens")
	}
	if *ttl <= 0 {
		*ttl = v.GetDuration("auth.access_token_ttl")
	}

	token, err := auth.NewTokenService([]byte(secret), *ttl).IssueAccessToken(auth.Principal{
		UserID:   *user,
		Username: *user,
		Role:     r,
	})
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

// runWatch follows a server's broadcast channel and prints the projected
// stylesheet after every applied batch.
func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to configuration file")
	baseURL := fs.String("url", "http://localhost:8080", "themeforge server URL")
	token := fs.String("token", os.Getenv("TF_TOKEN"), "access token")
	selector := fs.String("selector", "", "CSS selector (default :root)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	v, err := server.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(v)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initial, err := fetchDefaultTheme(ctx, *baseURL, *token)
	if err != nil {
		logger.Warn("could not fetch default theme, starting from built-in", zap.Error(err))
		initial = theme.Default()
	}

	sink := projector.NewMemorySink()
	var opts []projector.Option
	if v.GetBool("theme.glass_alias") {
		opts = append(opts, projector.WithThemeGlassAlias())
	}
	ctrl := live.NewController(initial, projector.New(sink, opts...), nil, logger.Named("live"))
	fmt.Print(projector.RenderCSS(sink, *selector))

	rtCfg := realtime.ConfigFrom(config.New(v).Sub("realtime"))
	transport := realtime.NewWebSocketTransport(*baseURL, *token, logger.Named("realtime"))
	manager := realtime.NewManager(transport, rtCfg, logger.Named("realtime"))
	defer ctrl.Attach(manager)()
	defer manager.OnUpdate(func(u realtime.Update) {
		fmt.Printf("/* %s %s from %s */\n", u.Type, strings.Join(u.Path, "."), u.Source)
		fmt.Print(projector.RenderCSS(sink, *selector))
	})()

	if err := manager.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	manager.Stop()
	return nil
}

func fetchDefaultTheme(ctx context.Context, baseURL, token string) (*theme.Theme, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(baseURL, "/")+"/api/v1/themes/default", http.NoBody)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET default theme: %s", resp.Status)
	}

	var t theme.Theme
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode default theme: %w", err)
	}
	if t.Configuration == nil {
		return nil, fmt.Errorf("default theme has no configuration")
	}
	return &t, nil
}
