package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/clockguard/adapters/events"
	"github.com/layer-3/clockguard/adapters/random"
	"github.com/layer-3/clockguard/adapters/render"
	"github.com/layer-3/clockguard/adapters/store"
	"github.com/layer-3/clockguard/adapters/tokenizer"
	"github.com/layer-3/clockguard/internal/config"
	"github.com/layer-3/clockguard/internal/logger"
	"github.com/layer-3/clockguard/ports"
	"github.com/layer-3/clockguard/service"
	transport "github.com/layer-3/clockguard/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(config.AppName, cfg.LogLevel)
	log := logger.Logger

	policy, err := cfg.Policy()
	if err != nil {
		log.Fatalf("Failed to load difficulty policy: %v", err)
	}
	if err := policy.Validate(); err != nil {
		log.Fatalf("Invalid difficulty policy: %v", err)
	}
	difficulty, err := cfg.Difficulty()
	if err != nil {
		log.Fatalf("Invalid default difficulty: %v", err)
	}

	signKey, err := loadSigningKey(cfg.ClearanceKeyFile)
	if err != nil {
		log.Fatalf("Failed to load clearance key: %v", err)
	}

	// Redis backs both sessions and verdict events when configured
	var sessionStore ports.SessionStore
	var publisher message.Publisher
	wmLogger := logger.NewWatermillAdapter(log)
	storeOpts := []store.Option{store.WithRetention(cfg.Retention), store.WithLogger(log)}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)

		redisStore, err := store.NewRedisStore(redisClient, cfg.KeyPrefix, storeOpts...)
		if err != nil {
			log.Fatalf("Failed to create Redis store: %v", err)
		}
		defer redisStore.Close()
		sessionStore = redisStore

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			wmLogger,
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}
		log.Info("Using Redis session store")
	} else {
		sessionStore = store.NewMemoryStore(storeOpts...)
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		log.Info("Using in-memory session store")
	}
	defer publisher.Close()

	rnd := random.New()
	captchaService := service.NewCaptchaService(
		rnd,
		render.NewSVGRenderer(rnd),
		sessionStore,
		policy,
		service.WithDefaultDifficulty(difficulty),
		service.WithTokenizer(tokenizer.NewJWTTokenizer(signKey), cfg.ClearanceTTL),
		service.WithEventPublisher(events.NewWatermillPublisher(publisher)),
	)

	sweeper := service.NewSweeper(sessionStore, cfg.SweepInterval, cfg.SweepTimeout)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Setup Gin router
	router := transport.SetupRouter(captchaService)
	handler := cors.New(transport.CORSOptions(cfg.AllowedOrigins)).Handler(router)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
}

// loadSigningKey reads a PEM EC key, or generates one valid until restart
func loadSigningKey(path string) (*ecdsa.PrivateKey, error) {
	if path == "" {
		logger.Logger.Warn("CLEARANCE_KEY_FILE not set, clearance tokens will not survive a restart")
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseECPrivateKeyFromPEM(data)
}
