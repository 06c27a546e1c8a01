package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/ads-advisor/internal/advisor"
	"github.com/ignite/ads-advisor/internal/api"
	"github.com/ignite/ads-advisor/internal/config"
	"github.com/ignite/ads-advisor/internal/session"
	"github.com/ignite/ads-advisor/internal/store"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

// buildBackends constructs the advisory fallback chain in config order.
func buildBackends(ctx context.Context, entries []config.BackendConfig) []advisor.Backend {
	var backends []advisor.Backend
	for _, entry := range entries {
		if !entry.Enabled {
			continue
		}
		switch entry.Provider {
		case "openai":
			b := advisor.NewOpenAIBackend(entry.APIKey, entry.Model, entry.BaseURL)
			backends = append(backends, api.InstrumentBackend(b))
			log.Printf("Backend registered: %s", b.Name())
		case "bedrock":
			b, err := advisor.NewBedrockBackend(ctx, entry.Model, entry.Region)
			if err != nil {
				log.Printf("Warning: Bedrock backend init failed: %v", err)
				continue
			}
			backends = append(backends, api.InstrumentBackend(b))
			log.Printf("Backend registered: %s", b.Name())
		default:
			log.Printf("Warning: unknown backend provider %q, skipping", entry.Provider)
		}
	}
	return backends
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  Ads Advisor Server (cmd/server/main.go)                   ║")
	log.Println("║  Campaign analysis API with streaming AI advisory          ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	ctx, cancel := context.WithCancel(context.Background())

	// Advisory pipeline over the configured backend chain
	backends := buildBackends(ctx, cfg.Backends)
	if len(backends) == 0 {
		log.Println("Warning: no model backends configured, advisory requests will report failure")
	}
	pipeline := advisor.NewPipeline(backends, cfg.Advisor.Timeout())
	pipeline.SetGeneration(cfg.Advisor.MaxTokens, cfg.Advisor.Temperature)
	registry := advisor.NewStreamRegistry()

	// Conversation store: Redis when configured, in-memory otherwise
	var sessions session.Store = session.NewMemoryStore(cfg.Advisor.HistoryTurns)
	var redisClient *redis.Client
	if cfg.Redis.Enabled && cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v, using in-memory session store", cfg.Redis.Addr, err)
			redisClient.Close()
			redisClient = nil
		} else {
			sessions = session.NewRedisStore(redisClient, cfg.Advisor.HistoryTurns, cfg.Redis.SessionTTL())
			log.Printf("Redis connected: %s (conversation history persisted)", cfg.Redis.Addr)
		}
		pingCancel()
	} else {
		log.Println("Redis not configured, conversation history is in-memory only")
	}

	handlers := api.NewHandlers(pipeline, registry, sessions)
	handlers.SetHistoryTurns(cfg.Advisor.HistoryTurns)

	// Account store: optional Postgres
	var db *sql.DB
	if cfg.Database.Enabled && cfg.Database.URL != "" {
		db, err = sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Printf("Warning: Failed to open accounts database: %v", err)
			db = nil
		} else {
			pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
			if err := db.PingContext(pingCtx); err != nil {
				log.Printf("Warning: accounts database unreachable: %v, account endpoints disabled", err)
				db.Close()
				db = nil
			} else {
				handlers.SetAccountRepo(store.NewAccountRepo(db))
				log.Println("Accounts database connected")
			}
			pingCancel()
		}
	} else {
		log.Println("Accounts database not configured (account endpoints disabled)")
	}

	server := api.NewServer(cfg.Server, handlers)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Printf("All services initialized, server is ready (%d model backends)", len(backends))

	<-done
	log.Println("Shutting down...")

	// Cancel in-flight advisory streams
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if db != nil {
		db.Close()
	}

	log.Println("Server stopped")
}
