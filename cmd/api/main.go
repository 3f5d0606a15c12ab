package main

import (
	"log"
	"net/http"
	"time"

	"pet-reunite/internal/adapters/auth/odin"
	"pet-reunite/internal/adapters/describe/cached"
	"pet-reunite/internal/adapters/describe/gemini"
	notifyamqp "pet-reunite/internal/adapters/notify/amqp"
	"pet-reunite/internal/adapters/vision/recognition"
	"pet-reunite/internal/domain/matching/metrics"
	"pet-reunite/internal/platform/config"
	"pet-reunite/internal/platform/logger"
	"pet-reunite/internal/ports/auth"
	"pet-reunite/internal/ports/describe"
	"pet-reunite/internal/ports/notify"
	"pet-reunite/internal/ports/vision"
	"pet-reunite/internal/router"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.FromEnv()
	lg := logger.NewFromEnv()

	var verifier auth.AuthVerifier
	if cfg.OdinBaseURL != "" && cfg.OdinAPIKey != "" {
		verifier = odin.NewVerifier(odin.NewClient(odin.Config{
			BaseURL: cfg.OdinBaseURL,
			APIKey:  cfg.OdinAPIKey,
		}))
	} else {
		lg.Warn("odin not configured; running in dev auth mode", nil)
	}

	var recognizer vision.Recognizer
	if cfg.RecognitionBaseURL != "" && cfg.RecognitionAPIKey != "" {
		client, err := recognition.NewClient(recognition.Config{
			BaseURL: cfg.RecognitionBaseURL,
			APIKey:  cfg.RecognitionAPIKey,
			Timeout: cfg.Matching.SignalTimeout,
		})
		if err != nil {
			log.Fatalf("recognition client: %v", err)
		}
		recognizer = client
	} else {
		lg.Warn("recognition not configured; visual signal disabled", nil)
	}

	var describer describe.Describer
	if cfg.GeminiAPIKey != "" {
		var rdb *redis.Client
		if cfg.RedisURL != "" {
			opts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				log.Fatalf("redis url: %v", err)
			}
			rdb = redis.NewClient(opts)
		}
		describer = cached.New(
			gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Matching.SignalTimeout),
			rdb, 0, lg,
		)
	} else {
		lg.Warn("gemini not configured; semantic signal disabled", nil)
	}

	var notifier notify.Sink
	if cfg.AMQPURL != "" {
		pub, err := notifyamqp.Dial(cfg.AMQPURL, "")
		if err != nil {
			log.Fatalf("amqp: %v", err)
		}
		defer pub.Close()
		notifier = pub
	} else {
		lg.Warn("amqp not configured; notifications disabled", nil)
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Recognizer:   recognizer,
		Describer:    describer,
		Notifier:     notifier,
		Log:          lg,
		Metrics:      metrics.New(),
		Matching:     cfg.Matching,
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 45 * time.Second, // el auto-match sincrónico puede tardar hasta el deadline
	}

	log.Printf("starting server on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
