package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "attestry/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr            string
	PostgresURL     string
	Redis           RedisConfig
	KafkaBrokers    []string
	AuditTopic      string
	AuthorityName   string
	JWTSigningKey   string
	VerifyRateLimit RateLimitConfig
}

// RateLimitConfig caps how many verification requests one caller may make
// per window.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// RedisConfig holds the degree cache connection settings. An empty URL
// disables the cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DegreeCacheTTL bounds how long a cached degree lookup may serve reads.
var DegreeCacheTTL = 5 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("ATTESTRY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authorityName := os.Getenv("ATTESTRY_AUTHORITY_NAME")
	if authorityName == "" {
		authorityName = "Attestation Authority"
	}

	auditTopic := os.Getenv("ATTESTRY_AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "attestry.audit.events"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:            addr,
		PostgresURL:     os.Getenv("ATTESTRY_POSTGRES_URL"),
		Redis:           redisFromEnv(),
		KafkaBrokers:    splitList(os.Getenv("ATTESTRY_KAFKA_BROKERS")),
		AuditTopic:      auditTopic,
		AuthorityName:   authorityName,
		JWTSigningKey:   jwtSigningKey,
		VerifyRateLimit: rateLimitFromEnv(),
	}
}

func rateLimitFromEnv() RateLimitConfig {
	requests := 60
	if raw := os.Getenv("ATTESTRY_VERIFY_RATE_LIMIT"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			requests = parsed
		}
	}
	return RateLimitConfig{Requests: requests, Window: time.Minute}
}

func redisFromEnv() RedisConfig {
	return RedisConfig{
		URL:          os.Getenv("ATTESTRY_REDIS_URL"),
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	return platformstrings.DedupeAndTrim(strings.Split(raw, ","))
}
