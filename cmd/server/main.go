package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/aetherhyt/HyStreamAlerts/internal/app"
	"github.com/aetherhyt/HyStreamAlerts/internal/botrix"
	"github.com/aetherhyt/HyStreamAlerts/internal/connector"
	"github.com/aetherhyt/HyStreamAlerts/internal/kick"
	"github.com/aetherhyt/HyStreamAlerts/internal/platform/config"
	"github.com/aetherhyt/HyStreamAlerts/internal/platform/logging"
	"github.com/aetherhyt/HyStreamAlerts/internal/registry"
	"github.com/aetherhyt/HyStreamAlerts/internal/server"
	"github.com/aetherhyt/HyStreamAlerts/internal/store"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupStore(cfg *config.Config) *store.Store {
	st := store.New(cfg.DataFile)
	if err := st.Load(); err != nil {
		slog.Error("Failed to load subscriber config", "path", cfg.DataFile, "error", err)
		os.Exit(1)
	}
	return st
}

func setupProviders(cfg *config.Config, clock clockwork.Clock) (*registry.Registry, *kick.Provider) {
	alerts := botrix.NewAlertProvider(&connector.WebsocketDialer{URL: cfg.BotrixWSURL}, clock)

	var chatOpts []botrix.ChatOption
	if templates := cfg.ChannelTemplates(); templates != nil {
		chatOpts = append(chatOpts, botrix.WithChannelNamer(botrix.TemplateNamer(templates)))
	}
	chat := botrix.NewChatProvider(&connector.WebsocketDialer{URL: cfg.PusherWSURL}, clock, chatOpts...)

	webhook := kick.NewProvider()

	sink := app.LogHandler{}
	alerts.SetAlertHandler(sink)
	webhook.SetAlertHandler(sink)
	chat.SetChatHandler(sink)

	reg := registry.New()
	reg.RegisterAlert("botrix", alerts)
	reg.RegisterChat("botrix", chat)
	reg.RegisterAlert("kick", webhook)
	return reg, webhook
}

func runGracefulShutdown(srv *server.Server, application *app.App) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		application.Shutdown()
		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()
	logging.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	st := setupStore(cfg)
	reg, webhook := setupProviders(cfg, clock)
	application := app.New(reg, st)

	srv := server.NewServer(cfg, application, webhook)
	done := runGracefulShutdown(srv, application)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
