package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/lib/pq"

	"attestry/internal/audit"
	audithandler "attestry/internal/audit/handler"
	auditstore "attestry/internal/audit/store"
	orghandler "attestry/internal/organization/handler"
	orgservice "attestry/internal/organization/service"
	orgstore "attestry/internal/organization/store"
	"attestry/internal/platform/config"
	"attestry/internal/platform/httpserver"
	"attestry/internal/platform/kafka"
	"attestry/internal/platform/logger"
	platformmetrics "attestry/internal/platform/metrics"
	platformredis "attestry/internal/platform/redis"
	"attestry/internal/ratelimit"
	reghandler "attestry/internal/registry/handler"
	regservice "attestry/internal/registry/service"
	regstore "attestry/internal/registry/store"
	httptransport "attestry/internal/transport/http"
	"attestry/internal/verification"
	verifyhandler "attestry/internal/verification/handler"
	vmetrics "attestry/internal/verification/metrics"

	jwttoken "attestry/internal/jwt_token"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	var (
		orgs    orgservice.OrganizationStore
		degrees regstore.DegreeStore
		events  audit.Store
	)
	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			log.Error("failed to reach postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		orgs = orgstore.NewPostgres(db)
		degrees = regstore.NewPostgres(db)
		events = auditstore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		orgs = orgstore.NewInMemory()
		degrees = regstore.NewInMemory()
		events = auditstore.NewInMemory()
		log.Info("using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		degrees = regstore.NewRedisCache(degrees, redisClient.Client, config.DegreeCacheTTL)
		log.Info("degree lookups cached in redis")
	}

	producer, err := kafka.NewProducer(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
	if err != nil {
		log.Error("failed to connect to kafka", "error", err)
		os.Exit(1)
	}

	metrics := platformmetrics.New()

	trailOpts := []audit.Option{
		audit.WithLogger(log),
		audit.WithMetrics(metrics),
	}
	if producer != nil {
		defer producer.Close()
		trailOpts = append(trailOpts, audit.WithPublisher(producer))
		log.Info("audit events fanned out to kafka", "topic", cfg.AuditTopic)
	}
	trail := audit.NewTrail(events, trailOpts...)

	authorityID, err := orgstore.EnsureAuthority(ctx, orgs, cfg.AuthorityName)
	if err != nil {
		log.Error("failed to bootstrap attestation authority", "error", err)
		os.Exit(1)
	}
	log.Info("attestation authority resolved",
		"org_id", authorityID.String(),
		"name", cfg.AuthorityName,
	)

	directory := orgservice.NewDirectory(orgs, authorityID,
		orgservice.WithLogger(log),
		orgservice.WithMetrics(metrics),
	)
	registry := regservice.NewRegistry(degrees, directory, trail,
		regservice.WithLogger(log),
		regservice.WithMetrics(metrics),
	)
	engine := verification.NewEngine(registry, directory, trail,
		verification.WithLogger(log),
		verification.WithMetrics(vmetrics.New()),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "attestry", "attestry")
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	var limiterStore ratelimit.Store = ratelimit.NewInMemory()
	if redisClient != nil {
		limiterStore = ratelimit.NewFailover(
			ratelimit.NewRedis(redisClient.Client),
			ratelimit.NewInMemory(),
			log,
		)
	}
	limiter := ratelimit.NewMiddleware(limiterStore,
		cfg.VerifyRateLimit.Requests, cfg.VerifyRateLimit.Window, log)

	router := httptransport.NewRouter(httptransport.Handlers{
		Organizations: orghandler.New(directory, log),
		Degrees:       reghandler.New(registry, log),
		Verification:  verifyhandler.New(engine, log),
		Audit:         audithandler.New(trail, log),
	}, validator, limiter, log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting attestry", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("attestry stopped")
}
