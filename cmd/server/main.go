// Command server runs the canvas MCP server: an SSE session transport
// exposing the render, script-injection, and notification tools.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/agentcanvas/canvas-mcp-server/internal/domain"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/config"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/logging"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/server"
	"github.com/agentcanvas/canvas-mcp-server/internal/infrastructure/window"
	"github.com/agentcanvas/canvas-mcp-server/internal/usecases"
	"github.com/agentcanvas/canvas-mcp-server/internal/usecases/content"
	"github.com/agentcanvas/canvas-mcp-server/internal/usecases/notify"
	"github.com/agentcanvas/canvas-mcp-server/internal/usecases/tools"
)

const serverInstructions = "This server renders content on the host display. " +
	"Use render-content to show HTML, markdown, URLs, or images; inject-script to run " +
	"JavaScript in a window; get-rendered-content to re-read what was rendered."

func main() {
	var (
		configPath = flag.String("config", "", "Path to the yaml config file")
		addr       = flag.String("addr", "", "Listen address, overrides the config file")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", logging.Fields{"error": err.Error()})
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewRealClock()

	var host domain.WindowHost
	if cfg.Window.BridgeURL != "" {
		host = window.NewBridge(cfg.Window.BridgeURL, cfg.Window.Timeout.Std(), logger)
	} else {
		logger.Warn("no window bridge configured, render tools will fail with guidance")
	}

	var classifier domain.Classifier
	if cfg.Content.ClassifierEnabled {
		apiKey := os.Getenv(cfg.Content.APIKeyEnv)
		if apiKey != "" {
			classifier = content.NewAnthropicClassifier(apiKey, cfg.Content.ClassifierModel, logger)
		} else {
			logger.Warn("classifier enabled but api key missing, auto content falls back to html", logging.Fields{
				"env": cfg.Content.APIKeyEnv,
			})
		}
	}

	resolver := content.NewResolver(classifier, cfg.Content.StrictAuto, logger)
	cache := content.NewRenderCache()
	scheduler := notify.NewScheduler(clock, logger)

	sessions := server.NewSessionRegistry(logger)
	sessions.StartReaper(ctx, clock, cfg.Server.SessionTimeout.Std(), cfg.Server.SessionTimeout.Std()/4)

	registry := tools.NewRegistry(cfg.Tools.DispatchTimeout.Std(), logger)
	for _, handler := range []tools.Handler{
		tools.NewRenderContentTool(resolver, cache, host, logger),
		tools.NewInjectScriptTool(host),
		tools.NewStartNotificationStreamTool(scheduler, sessions),
		tools.NewCancelNotificationStreamTool(scheduler),
		tools.NewGetRenderedContentTool(cache),
	} {
		if err := registry.Register(handler); err != nil {
			return err
		}
	}

	if err := registry.InitializeAll(ctx); err != nil {
		return err
	}
	defer func() {
		if err := registry.CleanupAll(context.Background()); err != nil {
			logger.Warn("tool cleanup failed", logging.Fields{"error": err.Error()})
		}
	}()

	dispatcher := usecases.NewDispatcher(cfg.Server.Name, cfg.Server.Version, serverInstructions, registry, logger)
	httpServer := server.NewHTTPServer(cfg.Server.Name, cfg.Server.Version, sessions, dispatcher.HandleMessage, cfg.Server.EventBufferSize, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", logging.Fields{"addr": cfg.Server.Addr})
		errCh <- httpServer.Start(cfg.Server.Addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", logging.Fields{"signal": sig.String()})
	case err := <-errCh:
		return err
	}

	scheduler.CancelAll()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newLogger(cfg config.LogConfig) (*logging.Logger, error) {
	logCfg := logging.DefaultConfig()
	logCfg.Development = cfg.Development
	switch cfg.Level {
	case "debug":
		logCfg.Level = logging.DebugLevel
	case "", "info":
		logCfg.Level = logging.InfoLevel
	case "warn":
		logCfg.Level = logging.WarnLevel
	case "error":
		logCfg.Level = logging.ErrorLevel
	default:
		return nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}
	return logging.New(logCfg)
}
