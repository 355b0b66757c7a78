package worker

import (
	"os"
	"strconv"
	"time"

	"github.com/domino14/brassgrade/config"
)

// WorkerConfig holds configuration for the simulation worker
type WorkerConfig struct {
	// NATS server to connect to
	NatsURL string

	// Subject to answer simulation requests on
	Subject string

	// Largest samples-per-band a request may ask for
	MaxSamplesPerBand int

	// Threads used for each simulation
	Threads int

	// How long a single simulation may run before its partial result is sent
	SimTimeout time.Duration

	// How many times to try connecting to NATS, and the base delay between tries
	ConnectAttempts uint
	ConnectDelay    time.Duration
}

// DefaultWorkerConfig creates a WorkerConfig from the given settings, with
// the worker-only knobs read from the environment.
func DefaultWorkerConfig(cfg *config.Config) *WorkerConfig {
	return &WorkerConfig{
		NatsURL:           cfg.GetString(config.ConfigNatsURL),
		Subject:           cfg.GetString(config.ConfigNatsSubject),
		MaxSamplesPerBand: cfg.GetInt(config.ConfigMaxSamplesPerBand),
		Threads:           cfg.GetInt(config.ConfigThreads),
		SimTimeout:        getEnvDuration("BRASSGRADE_WORKER_SIM_TIMEOUT", 30*time.Second),
		ConnectAttempts:   uint(getEnvInt("BRASSGRADE_WORKER_CONNECT_ATTEMPTS", 10)),
		ConnectDelay:      getEnvDuration("BRASSGRADE_WORKER_CONNECT_DELAY", 500*time.Millisecond),
	}
}

// getEnvInt gets an integer from an environment variable or returns a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration from an environment variable or returns a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
