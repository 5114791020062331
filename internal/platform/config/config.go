// Package config builds the server configuration from the environment so
// main stays lean.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	id "chainpass/pkg/domain"
)

// Network describes one activity source.
type Network struct {
	Name        string
	ExplorerURL string
	Mainnet     bool
}

// Redis captures cache connection settings.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Config is the full server configuration.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration

	// Authority is the only address allowed to append registry entries.
	Authority id.Address
	// AuthorityKeyHash is a bcrypt hash; empty disables key-based access.
	AuthorityKeyHash string

	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string

	StrictContentRefs bool

	Networks      []Network
	SourceTimeout time.Duration

	Redis    Redis
	ScoreTTL time.Duration

	PostgresDSN  string
	KafkaBrokers []string
}

// FromEnv reads configuration from environment variables. Only the
// authority address is mandatory; everything else has a development
// default or degrades a feature when absent.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:            envOr("CHAINPASS_ADDR", ":8080"),
		ShutdownTimeout: envDuration("CHAINPASS_SHUTDOWN_TIMEOUT", 10*time.Second),

		AuthorityKeyHash: os.Getenv("CHAINPASS_AUTHORITY_KEY_HASH"),

		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     envOr("JWT_ISSUER", "chainpass"),
		JWTAudience:   envOr("JWT_AUDIENCE", "chainpass-api"),

		StrictContentRefs: os.Getenv("CHAINPASS_STRICT_CONTENT_REFS") == "true",

		SourceTimeout: envDuration("CHAINPASS_SOURCE_TIMEOUT", 5*time.Second),
		ScoreTTL:      envDuration("CHAINPASS_SCORE_TTL", 5*time.Minute),

		PostgresDSN: os.Getenv("CHAINPASS_POSTGRES_DSN"),

		Redis: Redis{
			URL:          os.Getenv("CHAINPASS_REDIS_URL"),
			PoolSize:     envInt("CHAINPASS_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("CHAINPASS_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("CHAINPASS_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("CHAINPASS_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("CHAINPASS_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}

	authority, err := id.ParseAddress(os.Getenv("CHAINPASS_AUTHORITY"))
	if err != nil {
		return Config{}, fmt.Errorf("CHAINPASS_AUTHORITY: %w", err)
	}
	cfg.Authority = authority

	cfg.Networks, err = parseNetworks(os.Getenv("CHAINPASS_NETWORKS"))
	if err != nil {
		return Config{}, err
	}

	if brokers := os.Getenv("CHAINPASS_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	return cfg, nil
}

// parseNetworks parses "name=url,name=url!mainnet". At most one network may
// be flagged mainnet.
func parseNetworks(raw string) ([]Network, error) {
	if raw == "" {
		return nil, nil
	}
	var networks []Network
	var mainnetSeen bool
	for _, part := range strings.Split(raw, ",") {
		name, rest, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || name == "" || rest == "" {
			return nil, fmt.Errorf("CHAINPASS_NETWORKS: malformed entry %q", part)
		}
		url, flag := strings.CutSuffix(rest, "!mainnet")
		if flag {
			if mainnetSeen {
				return nil, fmt.Errorf("CHAINPASS_NETWORKS: more than one mainnet network")
			}
			mainnetSeen = true
		}
		networks = append(networks, Network{Name: name, ExplorerURL: url, Mainnet: flag})
	}
	return networks, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
