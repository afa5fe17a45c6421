package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	invoiceHandler "tradeinvoice/internal/invoice/handler"
	invoiceMetrics "tradeinvoice/internal/invoice/metrics"
	"tradeinvoice/internal/invoice/models"
	"tradeinvoice/internal/invoice/ports"
	"tradeinvoice/internal/invoice/service"
	"tradeinvoice/internal/invoice/store/hashcache"
	invoiceMemory "tradeinvoice/internal/invoice/store/memory"
	invoicePostgres "tradeinvoice/internal/invoice/store/postgres"
	jwttoken "tradeinvoice/internal/jwt_token"
	"tradeinvoice/internal/platform/config"
	"tradeinvoice/internal/platform/httpserver"
	"tradeinvoice/internal/platform/kafka"
	"tradeinvoice/internal/platform/logger"
	"tradeinvoice/internal/platform/metrics"
	"tradeinvoice/internal/platform/postgres"
	platformRedis "tradeinvoice/internal/platform/redis"
	httptransport "tradeinvoice/internal/transport/http"
	"tradeinvoice/pkg/platform/audit"
	"tradeinvoice/pkg/platform/audit/publisher"
	auditMemory "tradeinvoice/pkg/platform/audit/store/memory"
	auditPostgres "tradeinvoice/pkg/platform/audit/store/postgres"
	"tradeinvoice/pkg/platform/audit/worker"
	"tradeinvoice/pkg/platform/circuit"
)

// main wires dependencies and runs the HTTP server and the audit worker
// until SIGINT or SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.UsesDevSigningKey() {
		log.Warn("using the development JWT signing key; set JWT_SIGNING_KEY outside local runs")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	invMetrics := invoiceMetrics.New(reg)
	health := map[string]httptransport.HealthChecker{}

	initial := models.RegistryState{Admin: cfg.InitialAdmin(), Oracle: cfg.InitialOracle()}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	var store ports.Store
	if db != nil {
		defer db.Close()
		if store, err = postgresStore(ctx, db, initial, log); err != nil {
			return err
		}
		health["postgres"] = httptransport.HealthCheckFunc(func(ctx context.Context) error {
			return postgres.Health(ctx, db)
		})
	} else {
		log.Info("no database configured, registry kept in memory")
		store = invoiceMemory.New(initial)
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(invMetrics),
	}

	redisCfg := cfg.Redis
	if db == nil && redisCfg.URL != "" {
		log.Warn("redis configured without a database, hash cache disabled for the in-memory registry")
		redisCfg.URL = ""
	}
	redisClient, err := platformRedis.New(ctx, redisCfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		cache := hashcache.NewGuarded(
			hashcache.NewRedisCache(redisClient.Client, hashcache.WithNamespace(cfg.Redis.Namespace)),
			circuit.New("redis-hash-cache"),
			log,
		)
		opts = append(opts, service.WithHashCache(cache))
		health["redis"] = redisClient
	}

	sink, closeSink, err := auditSink(ctx, cfg.Kafka, db, log)
	if err != nil {
		return err
	}
	defer closeSink()
	if checker, ok := sink.(httptransport.HealthChecker); ok {
		health["kafka"] = checker
	}

	pub := publisher.NewPublisher(sink,
		publisher.WithAsyncBuffer(cfg.Audit.BufferSize),
		publisher.WithDropCounter(invMetrics),
		publisher.WithLogger(log),
	)
	opts = append(opts, service.WithAuditPublisher(pub))

	svc := service.New(store, opts...)
	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)

	router := httptransport.NewRouter(httptransport.Deps{
		Invoices:       invoiceHandler.New(svc, log),
		TokenValidator: jwttoken.NewJWTServiceAdapter(tokens),
		Logger:         log,
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
		RequestTimeout: cfg.Server.RequestTimeout,
		HealthChecks:   health,
	})
	srv := httpserver.New(cfg.Server, router)

	var runWorker func(context.Context) error
	if inbox := pub.Inbox(); inbox != nil {
		runWorker = worker.NewWorker(sink, inbox, log).Run
	}
	log.Info("starting tradeinvoice", "addr", cfg.Server.Addr)
	return serve(ctx, srv, runWorker, cfg.Server.ShutdownTimeout, log)
}

func postgresStore(ctx context.Context, db *sql.DB, initial models.RegistryState, log *slog.Logger) (ports.Store, error) {
	if err := invoicePostgres.Migrate(ctx, db); err != nil {
		return nil, err
	}
	created, err := invoicePostgres.Bootstrap(ctx, db, initial)
	if err != nil {
		return nil, err
	}
	if created {
		log.Info("registry created", "admin", initial.Admin, "oracle", initial.Oracle)
	} else {
		log.Info("registry loaded from database; initial role settings ignored")
	}
	return invoicePostgres.New(db), nil
}

// auditSink picks Kafka when brokers are configured, then the events table
// when a database is configured, and an in-memory store otherwise.
func auditSink(ctx context.Context, cfg config.Kafka, db *sql.DB, log *slog.Logger) (audit.Store, func(), error) {
	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, nil, err
	}
	if producer != nil {
		if err := producer.EnsureTopic(ctx, -1, -1); err != nil {
			producer.Close(context.WithoutCancel(ctx))
			return nil, nil, err
		}
		return producer, func() { producer.Close(context.WithoutCancel(ctx)) }, nil
	}
	if db != nil {
		if err := auditPostgres.Migrate(ctx, db); err != nil {
			return nil, nil, err
		}
		log.Info("no kafka brokers configured, lifecycle events written to postgres")
		return auditPostgres.New(db), func() {}, nil
	}
	log.Info("no kafka brokers configured, lifecycle events kept in memory")
	return auditMemory.NewInMemoryStore(), func() {}, nil
}
