package config

import (
	"os"
	"strconv"
	"time"
)

// Matching agrupa los knobs del motor de matching.
// Todos tienen default razonable; env solo para override.
type Matching struct {
	// Radio (km) para el score geo con corte duro.
	MatchRadiusKm  float64
	SearchRadiusKm float64

	// Concurrencia del pool de scoring por candidato.
	Concurrency int

	// Timeout por llamada externa (visión / descripción).
	SignalTimeout time.Duration

	// Deadline global del auto-match sincrónico.
	MatchDeadline time.Duration
}

// Server es la config del proceso HTTP + adapters.
type Server struct {
	Addr string

	DBDSN string

	OdinBaseURL string
	OdinAPIKey  string

	RecognitionBaseURL string
	RecognitionAPIKey  string

	GeminiAPIKey string
	GeminiModel  string

	RedisURL string
	AMQPURL  string

	Matching Matching
}

// FromEnv arma la config desde env vars para que main quede chico.
func FromEnv() Server {
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-1.5-flash"
	}

	return Server{
		Addr:               addr,
		DBDSN:              os.Getenv("DB_DSN"),
		OdinBaseURL:        os.Getenv("ODIN_BASE_URL"),
		OdinAPIKey:         os.Getenv("ODIN_API_KEY"),
		RecognitionBaseURL: os.Getenv("RECOGNITION_BASE_URL"),
		RecognitionAPIKey:  os.Getenv("RECOGNITION_API_KEY"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        model,
		RedisURL:           os.Getenv("REDIS_URL"),
		AMQPURL:            os.Getenv("AMQP_URL"),
		Matching: Matching{
			MatchRadiusKm:  envFloat("MATCH_RADIUS_KM", 25),
			SearchRadiusKm: envFloat("SEARCH_RADIUS_KM", 50),
			Concurrency:    envInt("MATCH_CONCURRENCY", 4),
			SignalTimeout:  envDuration("SIGNAL_TIMEOUT", 15*time.Second),
			MatchDeadline:  envDuration("MATCH_DEADLINE", 30*time.Second),
		},
	}
}

func envFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
