package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress        string
	DatabaseURI       string
	DelegationAddress string
	DelegationTimeout time.Duration
	APIKeyHash        string
	RedisAddress      string
	OrderLockTTL      time.Duration
	EventPollInterval time.Duration
	WorkerPoolSize    int
	EventBatchSize    int
	ShutdownTimeout   time.Duration
	LogLevel          string
}

const (
	defaultRunAddress        = ":8080"
	defaultDelegationTimeout = 30 * time.Second
	defaultOrderLockTTL      = 2 * time.Minute
	defaultEventPollInterval = 2 * time.Second
	defaultWorkerPoolSize    = 4
	defaultEventBatchSize    = 16
	defaultShutdownTimeout   = 10 * time.Second
	defaultLogLevel          = "info"
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

type durationFlag struct {
	name   string
	target *time.Duration
	raw    string
	def    time.Duration
}

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		DelegationAddress: getString(lookup, "DELEGATION_SERVICE_ADDRESS", ""),
		DelegationTimeout: getDuration(lookup, "DELEGATION_TIMEOUT", defaultDelegationTimeout),
		APIKeyHash:        getString(lookup, "API_KEY_HASH", ""),
		RedisAddress:      getString(lookup, "REDIS_ADDRESS", ""),
		OrderLockTTL:      getDuration(lookup, "ORDER_LOCK_TTL", defaultOrderLockTTL),
		EventPollInterval: getDuration(lookup, "EVENT_POLL_INTERVAL", defaultEventPollInterval),
		WorkerPoolSize:    getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		EventBatchSize:    getInt(lookup, "EVENT_BATCH_SIZE", defaultEventBatchSize),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:          getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	fs := flag.NewFlagSet("flashrent", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	durations := []*durationFlag{
		{name: "delegation timeout", target: &cfg.DelegationTimeout, def: defaultDelegationTimeout},
		{name: "lock ttl", target: &cfg.OrderLockTTL, def: defaultOrderLockTTL},
		{name: "poll interval", target: &cfg.EventPollInterval, def: defaultEventPollInterval},
		{name: "shutdown timeout", target: &cfg.ShutdownTimeout, def: defaultShutdownTimeout},
	}
	for _, d := range durations {
		d.raw = d.target.String()
	}

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.DelegationAddress, "g", cfg.DelegationAddress, "Energy delegation service base URL")
	fs.StringVar(&durations[0].raw, "delegation-timeout", durations[0].raw, "Timeout of a single delegation call")
	fs.StringVar(&cfg.APIKeyHash, "api-key-hash", cfg.APIKeyHash, "bcrypt hash of the API key")
	fs.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address for distributed order locks")
	fs.StringVar(&durations[1].raw, "lock-ttl", durations[1].raw, "Order lock expiry")
	fs.StringVar(&durations[2].raw, "poll-interval", durations[2].raw, "Interval between payment event polls")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent payment workers")
	fs.IntVar(&cfg.EventBatchSize, "poll-batch", cfg.EventBatchSize, "Maximum payment events per polling batch")
	fs.StringVar(&durations[3].raw, "shutdown-timeout", durations[3].raw, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	for _, d := range durations {
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		if parsed <= 0 {
			parsed = d.def
		}
		*d.target = parsed
	}

	if hashFile, ok := lookup("API_KEY_HASH_FILE"); ok && hashFile != "" {
		content, err := os.ReadFile(hashFile)
		if err != nil {
			return nil, fmt.Errorf("read api key hash file: %w", err)
		}
		cfg.APIKeyHash = strings.TrimSpace(string(content))
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.EventBatchSize <= 0 {
		cfg.EventBatchSize = defaultEventBatchSize
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.DelegationAddress == "" {
		return nil, fmt.Errorf("delegation service address must be provided")
	}

	if cfg.APIKeyHash == "" {
		return nil, fmt.Errorf("api key hash must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
