package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"roster/internal/platform/config"
	"roster/internal/platform/database"
	platformmetrics "roster/internal/platform/metrics"
	"roster/internal/platform/redis"
	"roster/internal/record/allocator"
	"roster/internal/record/handler"
	recordmetrics "roster/internal/record/metrics"
	"roster/internal/record/service"
	"roster/internal/record/store"
	httptransport "roster/internal/transport/http"
	audit "roster/pkg/platform/audit"
	"roster/pkg/platform/audit/publisher"
	"roster/pkg/platform/audit/publishers/kafka"
	auditmemory "roster/pkg/platform/audit/store/memory"
	auditpostgres "roster/pkg/platform/audit/store/postgres"
)

const auditBuffer = 1024

// recordStore is what the service, allocator and health check need.
type recordStore interface {
	service.Store
	allocator.MaxFinder
	Ping(ctx context.Context) error
}

type app struct {
	router  http.Handler
	closers []func()
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func build(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	a := &app{}
	var checks []httptransport.Checker

	st, pgdb, err := openStore(ctx, cfg.Store, a)
	if err != nil {
		a.close()
		return nil, err
	}
	checks = append(checks, httptransport.Checker{Name: "store", Check: st.Ping})
	log.Info("record store ready", "driver", cfg.Store.Driver)

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		a.close()
		return nil, err
	}
	if rdb != nil {
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		checks = append(checks, httptransport.Checker{Name: "redis", Check: rdb.Health})
	}

	var alloc service.Allocator = allocator.NewStoreMax(st)
	if cfg.Records.Allocator == config.AllocatorRedis {
		seq := allocator.NewRedisSequence(rdb)
		floor, err := seq.SeedFromStore(ctx, st)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("seed identifier sequence: %w", err)
		}
		log.Info("identifier sequence seeded", "floor", floor)
		alloc = seq
	}

	var sink audit.Store = auditmemory.NewInMemoryStore()
	switch {
	case len(cfg.Kafka.Brokers) > 0:
		ks, err := kafka.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("kafka audit sink: %w", err)
		}
		a.closers = append(a.closers, ks.Close)
		checks = append(checks, httptransport.Checker{Name: "kafka", Check: ks.Ping})
		sink = ks
	case pgdb != nil:
		ps, err := auditpostgres.New(ctx, pgdb)
		if err != nil {
			a.close()
			return nil, err
		}
		sink = ps
	}
	pub := publisher.NewPublisher(sink, publisher.WithAsyncBuffer(auditBuffer), publisher.WithLogger(log))
	a.closers = append(a.closers, pub.Close)

	svc, err := service.New(st, alloc,
		service.WithLogger(log),
		service.WithMetrics(recordmetrics.New()),
		service.WithAuditPublisher(pub),
		service.WithAllocationAttempts(cfg.Records.AllocationAttempts),
		service.WithEmptyListOK(cfg.Records.EmptyListOK),
	)
	if err != nil {
		a.close()
		return nil, err
	}

	httpMetrics := platformmetrics.New()
	a.router = httptransport.NewRouter(httptransport.RouterConfig{
		Logger:         log,
		Metrics:        httpMetrics,
		Gatherer:       prometheus.DefaultGatherer,
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		Checks:         checks,
	}, handler.New(svc, log, httpMetrics))
	return a, nil
}

// openStore returns the record store and, for postgres, the pool it uses so
// the audit store can share it.
func openStore(ctx context.Context, cfg config.StoreConfig, a *app) (recordStore, *sql.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		s, err := store.NewPostgres(ctx, db)
		if err != nil {
			return nil, nil, err
		}
		return s, db, nil
	case config.DriverSQLite:
		s, err := store.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		return s, nil, nil
	default:
		return store.NewInMemory(), nil, nil
	}
}
