package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zenwell/zenchat/backend/internal/auth"
	"github.com/zenwell/zenchat/backend/internal/config"
	"github.com/zenwell/zenchat/backend/internal/handler"
	"github.com/zenwell/zenchat/backend/internal/rules"
	"github.com/zenwell/zenchat/backend/internal/service/ai"
	"github.com/zenwell/zenchat/backend/internal/service/conversation"
	"github.com/zenwell/zenchat/backend/internal/service/stream"
	"github.com/zenwell/zenchat/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	st := openStore(cfg.Store)
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("warning: failed to close store: %v", err)
		}
	}()

	var identity conversation.IdentityResolver
	authClient := auth.NewClient(cfg.Auth.BaseURL, cfg.Auth.Token)
	if authClient.Enabled() {
		identity = authClient
		log.Println("Auth client initialized successfully")
	} else {
		log.Println("Auth credentials not configured, sessions stay local-only")
	}

	var aiSvc *ai.Service
	if cfg.AI.Enabled() {
		aiSvc, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality")
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, skipping AI initialization")
	}

	manager := conversation.NewManager(conversation.Deps{
		Classifier: rules.NewClassifier(rules.DefaultRules()),
		Engine:     rules.NewEngine(rules.DefaultRules()),
		Store:      st,
		Auth:       identity,
	}, newResponderFactory(cfg, aiSvc))

	router := handler.NewRouter(manager, aiSvc, st)

	startServer(ctx, cfg.Server, router)
	manager.CloseAll()
}

// newResponderFactory selects the best available streaming backend,
// stepping down from the websocket gateway to the chat model to the
// offline canned responder.
func newResponderFactory(cfg *config.Config, aiSvc *ai.Service) func() conversation.Responder {
	switch {
	case cfg.Stream.Enabled():
		log.Printf("Streaming via gateway %s", cfg.Stream.GatewayURL)
		return func() conversation.Responder {
			return stream.NewResponder(stream.Config{
				GatewayURL:   cfg.Stream.GatewayURL,
				AppID:        cfg.Stream.AppID,
				SystemPrompt: ai.SystemDirective,
				ReadTimeout:  cfg.Stream.ReadTimeout,
			})
		}
	case aiSvc != nil:
		log.Println("Streaming via chat model")
		return func() conversation.Responder { return aiSvc }
	default:
		log.Println("No AI backend configured, using offline responder")
		return func() conversation.Responder { return conversation.NewLocalResponder() }
	}
}

func openStore(cfg config.StoreConfig) store.Store {
	if cfg.SQLitePath == "" {
		log.Println("SQLITE_PATH not set, using in-memory store")
		return store.NewMemory()
	}

	st, err := store.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		log.Printf("warning: failed to open sqlite store at %s: %v", cfg.SQLitePath, err)
		log.Println("falling back to in-memory store")
		return store.NewMemory()
	}
	log.Printf("SQLite store opened at %s", cfg.SQLitePath)
	return st
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Zen Chat backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
