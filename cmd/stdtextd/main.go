package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/cognicore/stdtext/internal/api"
	"github.com/cognicore/stdtext/internal/llm"
	"github.com/cognicore/stdtext/pkg/stdtext"
	"github.com/cognicore/stdtext/pkg/stdtext/config"
	"github.com/cognicore/stdtext/pkg/stdtext/entities"
	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
	"github.com/cognicore/stdtext/pkg/stdtext/store/sqlite"
	"github.com/cognicore/stdtext/pkg/stdtext/vocab"
)

const customWordsKey = "stdtext:custom_words"

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file (optional, defaults apply without one)")
		addr       = flag.String("addr", "", "Listen address override")
	)
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Service.Addr = *addr
	}

	ctx := context.Background()

	// Load the base vocabulary and the city gazetteer. Both are optional:
	// without them the corpus model alone drives correction.
	var vocabulary *vocab.Table
	if cfg.Dictionary.Path != "" {
		table, err := vocab.Load(cfg.Dictionary.Path)
		if err != nil {
			log.Printf("WARNING: no base dictionary at %s: %v", cfg.Dictionary.Path, err)
		} else {
			vocabulary = table
			log.Printf("Loaded %d dictionary words from %s", table.Len(), cfg.Dictionary.Path)
		}
	}

	var cities []string
	if cfg.Dictionary.CitiesPath != "" {
		loaded, err := entities.LoadCities(cfg.Dictionary.CitiesPath)
		if err != nil {
			log.Printf("WARNING: no city gazetteer at %s: %v", cfg.Dictionary.CitiesPath, err)
		} else {
			cities = loaded
			log.Printf("Loaded %d cities from %s", len(cities), cfg.Dictionary.CitiesPath)
		}
	}

	// Custom dictionary words live in redis so they survive restarts and
	// are shared between instances.
	var words vocab.CustomStore
	redisAddr := getenv("STDTEXT_REDIS_ADDR", cfg.Dictionary.RedisAddr)
	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("STDTEXT_REDIS_PASSWORD"),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("WARNING: redis at %s not reachable yet: %v", redisAddr, err)
		}
		words = vocab.NewRedisStore(client, customWordsKey)
		log.Printf("Custom dictionary words backed by redis at %s", redisAddr)
	}

	modelStore, err := sqlite.Open(ctx, cfg.Model.StorePath)
	if err != nil {
		log.Fatalf("Failed to open model store %s: %v", cfg.Model.StorePath, err)
	}

	rewriter := stdtext.New(stdtext.Options{
		Config:     cfg,
		Vocabulary: vocabulary,
		Words:      words,
		Cities:     cities,
		Store:      modelStore,
	})
	defer rewriter.Close()

	if err := rewriter.Restore(ctx); err != nil {
		if errors.Is(err, internalerr.ErrNotFound) {
			log.Println("No model snapshot yet; serving unfitted until the first rebuild")
		} else {
			log.Printf("WARNING: restoring model snapshot: %v", err)
		}
	} else {
		info := rewriter.ModelInfo()
		log.Printf("✓ Model restored: %d records, built %s", info.Records, info.BuiltAt.Format(time.RFC3339))
	}

	if words != nil {
		if err := rewriter.SyncWords(ctx); err != nil {
			log.Printf("WARNING: syncing custom words: %v", err)
		}
	}

	var polisher api.Polisher
	if cfg.Polish.Enabled {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			log.Println("WARNING: polish enabled but OPENAI_API_KEY is not set; serving rule-based rewrites only")
		} else {
			polisher = llm.New(llm.Options{
				BaseURL:       cfg.Polish.BaseURL,
				APIKey:        apiKey,
				Model:         cfg.Polish.Model,
				Timeout:       time.Duration(cfg.Polish.TimeoutSeconds) * time.Second,
				RatePerSecond: cfg.Polish.RatePerSecond,
				Burst:         cfg.Polish.Burst,
			})
			log.Printf("Polish enabled via %s (%s)", cfg.Polish.BaseURL, cfg.Polish.Model)
		}
	}

	server := api.New(rewriter, polisher)
	srv := &http.Server{
		Addr:    cfg.Service.Addr,
		Handler: server.Handler(),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Printf("✓ stdtextd listening on %s", cfg.Service.Addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutdown signal received, draining connections...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Service.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
		log.Println("✓ Server stopped")
	}
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
