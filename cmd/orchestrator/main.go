// Command orchestrator boots the LM workflow orchestration engine: it wires
// the file watcher, agent registry, workflow engine, job manager and async
// dispatcher together explicitly (no DI container, no global state beyond
// the process-wide caches each component owns itself) and serves the
// reference HTTP binding from engine/httpapi.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/flowmesh/orchestrator/engine/dispatch"
	"github.com/flowmesh/orchestrator/engine/discovery"
	"github.com/flowmesh/orchestrator/engine/httpapi"
	"github.com/flowmesh/orchestrator/engine/job"
	"github.com/flowmesh/orchestrator/engine/model"
	"github.com/flowmesh/orchestrator/engine/registry"
	"github.com/flowmesh/orchestrator/engine/watcher"
	"github.com/flowmesh/orchestrator/engine/workflow"
	"github.com/flowmesh/orchestrator/pkg/config"
	"github.com/flowmesh/orchestrator/pkg/logger"
	"github.com/gin-gonic/gin"
)

const (
	workflowChangeBuffer = 64
	dispatchConcurrency  = 8
	startProbeDelay      = 200 * time.Millisecond
	shutdownTimeout      = 10 * time.Second
)

func main() {
	log := logger.NewLogger(nil)
	ctx := logger.ContextWithLogger(context.Background(), log)

	if err := run(ctx, log); err != nil {
		log.Error("orchestrator exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log logger.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	agentsRoot := filepath.Join(cfg.BasePath, "agents")
	workflowsRoot := filepath.Join(cfg.BasePath, "workflows")

	agents := registry.NewAgentRegistry(agentsRoot, "**/*.yaml")
	if err := agents.Reload(); err != nil {
		log.Warn("some agent files failed to load at startup", "error", err)
	}

	models := model.NewFactory(cfg)
	engine := workflow.NewEngine(workflowsRoot, agents, workflow.FactoryAdapter{Factory: models}, log.With("component", "engine"))
	if err := engine.LoadAll(); err != nil {
		log.Warn("some workflow files failed to load at startup", "error", err)
	}

	workflowChanges := make(chan workflow.WorkflowFileChanged, workflowChangeBuffer)
	go engine.Run(ctx, workflowChanges)

	dispatcher := registry.NewDispatcher(agents, workflowChanges, log.With("component", "dispatcher"))
	fileWatcher, err := watcher.New(ctx, cfg.BasePath, []string{".yaml", ".yml", ".md"}, dispatcher.HandleEvent)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fileWatcher.Start(); err != nil {
		log.Warn("file watcher failed to start, hot reload is disabled", "error", err)
	} else {
		defer func() {
			if err := fileWatcher.Stop(); err != nil {
				log.Warn("file watcher failed to stop cleanly", "error", err)
			}
		}()
	}

	jobs := job.NewManager()
	asyncDispatcher := dispatch.New(jobs, engine, dispatchConcurrency, log.With("component", "async-dispatcher"))
	discoverySvc := discovery.NewService(agents, engine)

	router := buildRouter(log, httpapi.Dependencies{
		Submitter: asyncDispatcher,
		Jobs:      jobs,
		Discovery: discoverySvc,
	})

	return serve(ctx, cancel, log, router)
}

func buildRouter(log logger.Logger, deps httpapi.Dependencies) *gin.Engine {
	if logger.IsTestEnvironment() {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), httpapi.RequestLogger(log))
	httpapi.Register(r.Group("/api"), deps)
	return r
}

func serve(ctx context.Context, cancel context.CancelFunc, log logger.Logger, handler http.Handler) error {
	addr := listenAddr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		BaseContext:  func(net.Listener) context.Context { return ctx },
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "address", "http://"+addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
			return
		}
		errChan <- nil
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-time.After(startProbeDelay):
	case err := <-errChan:
		cancel()
		return err
	}

	select {
	case <-quit:
		log.Info("received shutdown signal")
	case err := <-errChan:
		cancel()
		return err
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("server shutdown completed successfully")
	return nil
}

func listenAddr() string {
	host := os.Getenv("ORCHESTRATOR_HOST")
	if host == "" {
		host = "0.0.0.0"
	}
	port := os.Getenv("ORCHESTRATOR_PORT")
	if port == "" {
		port = "8080"
	}
	return net.JoinHostPort(host, port)
}
