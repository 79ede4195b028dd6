/*
Package main is the entry point for the groundchat server.

It loads configuration (optionally from a .env file), initializes the global logger,
wires the user store, session registry, search retriever and completion client into the
HTTP router, and shuts the server down gracefully on SIGINT or SIGTERM.
*/
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"groundchat/internal/app/chat"
	"groundchat/internal/app/completion"
	"groundchat/internal/app/db"
	"groundchat/internal/app/prompt"
	"groundchat/internal/app/search"
	"groundchat/internal/app/session"
	"groundchat/internal/app/user"
	"groundchat/internal/configs"
	"groundchat/internal/handler"
	"groundchat/internal/pkg/logx"
	"groundchat/internal/pkg/metrics"
)

func main() {
	if err := configs.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to read .env file: %v\n", err)
		os.Exit(1)
	}

	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(logx.Options{Development: cfg.IsDevelopment(), Level: cfg.LogLevel})
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("session_store", cfg.SessionStore).
		Str("search_provider", cfg.SearchProvider).
		Str("llm_model", cfg.LLMModel).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// User store
	var store user.Store
	if cfg.DatabaseDSN != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logx.Fatal(err, "Failed to initialize database")
		}
		defer pool.Close()
		store = user.NewPostgresStore(pool)
		logx.Info("Using PostgreSQL user store")
	} else {
		store = user.NewMemoryStore()
		logx.Warn("DATABASE_URL not set; accounts are kept in memory and lost on restart")
	}
	credentials := user.NewCredentials(store)

	// Session registry
	var registry session.Registry
	var registryCloser io.Closer
	switch cfg.SessionStore {
	case "redis":
		client, err := session.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logx.Fatal(err, "Failed to connect to Redis")
		}
		registry, registryCloser = session.NewRedisRegistry(client), client
	default:
		memory := session.NewMemoryRegistry(time.Minute)
		registry, registryCloser = memory, memory
	}
	guard := session.NewGuard(credentials, registry, cfg.SessionSecret, cfg.SessionTTL)

	// Chat pipeline
	provider, err := search.NewProvider(search.Kind(cfg.SearchProvider), cfg.SearchAPIKey, &http.Client{})
	if err != nil {
		logx.Fatal(err, "Failed to configure search provider")
	}
	retriever := search.NewRetriever(provider,
		search.WithTimeout(cfg.SearchTimeout),
		search.WithRateLimit(cfg.SearchRatePerSecond, cfg.SearchRateBurst),
		search.WithFailureObserver(metrics.ObserveSearchFailure),
	)

	completer := completion.NewClient(completion.Config{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	}, completion.WithObserver(metrics.ObserveCompletion))

	chatService := chat.NewService(guard, retriever, prompt.Assembler{AsOf: cfg.PromptAsOf}, completer)

	pages, err := handler.NewPages()
	if err != nil {
		logx.Fatal(err, "Failed to parse page templates")
	}

	// Setup HTTP server and routes
	router := handler.Router(&handler.AppDeps{
		Config:      cfg,
		Credentials: credentials,
		Guard:       guard,
		Chat:        chatService,
		Pages:       pages,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.SearchTimeout + cfg.LLMTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("groundchat server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	if err := registryCloser.Close(); err != nil {
		logx.Error(err, "Failed to close session registry")
	}

	logx.Info("Server gracefully stopped.")
}
