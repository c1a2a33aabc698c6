package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/agent"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/config"
	httpapi "github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/http"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/service"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "corey-backend").Logger()

	store := session.New()
	settings := session.NewSettings(cfg.Settings())

	var invoker agent.Invoker
	if cfg.AgentBaseURL == "" {
		invoker = agent.MockInvoker{
			SupportAgentID:  cfg.SupportAgentID,
			ApprovalAgentID: cfg.ApprovalAgentID,
		}
		logger.Info().Msg("using mock agent invoker")
	} else {
		invoker = agent.HTTPInvoker{BaseURL: cfg.AgentBaseURL, APIKey: cfg.AgentAPIKey}
	}

	chat := &service.ChatService{
		Store:          store,
		Settings:       settings,
		Agent:          invoker,
		SupportAgentID: cfg.SupportAgentID,
		Logger:         logger,
	}
	approvals := &service.ApprovalService{
		Store:           store,
		Agent:           invoker,
		ApprovalAgentID: cfg.ApprovalAgentID,
		Logger:          logger,
	}

	router := httpapi.Router(cfg, store, settings, chat, approvals, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("session_id", store.SessionID()).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
