// File: cmd/server/main.go
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/rfaizy/govassist/internal/config"
	"github.com/rfaizy/govassist/internal/domain"
	"github.com/rfaizy/govassist/internal/handlers"
	"github.com/rfaizy/govassist/internal/middleware"
	"github.com/rfaizy/govassist/internal/ratelimit"
	messagerepo "github.com/rfaizy/govassist/internal/repository/message"
	sessionrepo "github.com/rfaizy/govassist/internal/repository/session"
	"github.com/rfaizy/govassist/internal/services"
	"github.com/rfaizy/govassist/internal/services/assistant"
	"github.com/rfaizy/govassist/internal/services/gate"
	"github.com/rfaizy/govassist/internal/services/markdown"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg := config.Load()
	logger := services.NewLogger("govassist")

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	// A missing or empty database file is not an error: it just means an
	// empty session collection.
	if err := db.AutoMigrate(&domain.ChatSession{}, &domain.ChatMessage{}, &domain.Citation{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	sessionRepository := sessionrepo.NewSessionRepository(db)
	messageRepository := messagerepo.NewMessageRepository(db)

	// --- Remote assistant client ---
	assistantConfig := assistant.DefaultConfig()
	assistantConfig.BaseURL = cfg.AssistantBaseURL
	assistantConfig.Timeout = time.Duration(cfg.AssistantTimeout) * time.Second
	assistantConfig.MaxRetries = cfg.AssistantRetries
	assistantConfig.HistoryLimit = cfg.HistoryLimit
	if err := assistantConfig.Validate(); err != nil {
		log.Fatalf("FATAL: Invalid assistant configuration: %v", err)
	}
	provider := assistant.WithRetry(
		assistant.NewHTTPProvider(assistantConfig),
		&assistant.RetryConfig{MaxAttempts: assistantConfig.MaxRetries, Delay: assistantConfig.RetryDelay},
	)

	// --- Action gate ---
	rules, err := loadGateRules(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to load gate rules: %v", err)
	}
	actionGate := gate.NewGate(rules)

	// --- Session store ---
	store, err := services.NewSessionStore(sessionRepository, messageRepository, provider, actionGate, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize session store: %v", err)
	}
	if err := store.Load(context.Background()); err != nil {
		log.Fatalf("FATAL: Failed to load session collection: %v", err)
	}

	// --- Handlers ---
	tokenSecret := []byte(cfg.ClientTokenSecret)
	sessionHandler := handlers.NewSessionHandler(store, markdown.NewRenderer())
	pageHandler := handlers.NewPageHandler(tokenSecret)

	// --- Router Setup ---
	r := mux.NewRouter()
	clientMiddleware := middleware.NewClientTokenMiddleware(tokenSecret)
	sendLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultSendConfig())
	defer sendLimiter.Close()

	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	// --- Public Routes ---
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	r.HandleFunc("/health", healthHandler(db, provider)).Methods("GET")
	r.HandleFunc("/", pageHandler.ShowChatPage).Methods("GET")
	r.HandleFunc("/source/{label}", pageHandler.ShowSourcePage).Methods("GET")

	// --- API Routes (client token required) ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(clientMiddleware)
	api.HandleFunc("/log", handlers.LogFrontendEvent).Methods("POST")
	api.HandleFunc("/sessions", sessionHandler.GetSessions).Methods("GET")
	api.HandleFunc("/sessions/new", sessionHandler.StartNewSession).Methods("POST")
	api.HandleFunc("/sessions/{id}/select", sessionHandler.SelectSession).Methods("POST")
	api.HandleFunc("/sessions/{id}/title/edit", sessionHandler.BeginTitleEdit).Methods("POST")
	api.HandleFunc("/sessions/{id}/title/cancel", sessionHandler.CancelTitleEdit).Methods("POST")
	api.HandleFunc("/sessions/{id}/title", sessionHandler.RenameSession).Methods("PUT")
	api.HandleFunc("/sessions/{id}/delete", sessionHandler.RequestDelete).Methods("POST")
	api.HandleFunc("/sessions/{id}/delete/confirm", sessionHandler.ConfirmDelete).Methods("POST")
	api.HandleFunc("/sessions/{id}/delete/cancel", sessionHandler.CancelDelete).Methods("POST")
	api.HandleFunc("/messages", sessionHandler.GetMessages).Methods("GET")
	api.Handle("/messages",
		middleware.RateLimitMiddleware(sendLimiter, "send")(http.HandlerFunc(sessionHandler.SendMessage))).
		Methods("POST")
	api.HandleFunc("/actions", sessionHandler.RunAction).Methods("POST")

	// --- Custom Error Handlers ---
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		pageHandler.ShowErrorPage(w, "404", "Page Not Found", "The page you are looking for does not exist.")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		pageHandler.ShowErrorPage(w, "405", "Method Not Allowed", "The method is not allowed for this resource.")
	})

	// --- Server Configuration ---
	port := ":8080"
	if cfg.ServerPort != "" {
		port = ":" + cfg.ServerPort
	}
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("GovAssist chat client starting on port %s", port)
	log.Printf("Assistant backend: %s", cfg.AssistantBaseURL)

	// --- Start Server in Goroutine ---
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}

func loadGateRules(cfg *config.Config) (*gate.Rules, error) {
	if cfg.GateRulesPath != "" {
		return gate.LoadRules(cfg.GateRulesPath)
	}
	return gate.DefaultRules()
}

// healthHandler reports the state of the two dependencies the chat flow
// needs: the local database and the remote assistant service.
func healthHandler(db *gorm.DB, provider assistant.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := map[string]string{"status": "healthy", "database": "connected", "assistant": "reachable"}
		code := http.StatusOK

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
		if err := provider.HealthCheck(ctx); err != nil {
			status["status"] = "degraded"
			status["assistant"] = "unreachable"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(status)
	}
}
