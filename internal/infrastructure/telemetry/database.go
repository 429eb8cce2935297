package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig controls how GORM is instrumented.
type DBConfig struct {
	TraceEnabled bool
	// LogFullSQL keeps bound variables in span statements.
	LogFullSQL         bool
	DBName             string
	SlowQueryThreshold time.Duration // default 200ms
	PoolStatsInterval  time.Duration // default 15s
}

// DBInstrumentation adds spans, query metrics and slow query warnings to a
// GORM connection.
type DBInstrumentation struct {
	config DBConfig
	logger *zap.Logger
	sqlDB  *sql.DB

	queryTotal     *Counter
	queryDuration  *Histogram
	slowQueryTotal *Counter
	poolConns      *Gauge
	poolConnsMax   *Gauge

	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

type queryStartKey struct{}

// InstrumentDB installs otelgorm when tracing is enabled and registers the
// timing callbacks. meter may be nil, in which case no metrics are recorded.
func InstrumentDB(db *gorm.DB, meter metric.Meter, cfg DBConfig, logger *zap.Logger) (*DBInstrumentation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.PoolStatsInterval <= 0 {
		cfg.PoolStatsInterval = 15 * time.Second
	}
	if cfg.DBName == "" {
		cfg.DBName = "postgresql"
	}

	d := &DBInstrumentation{config: cfg, logger: logger, stopCh: make(chan struct{})}

	if meter != nil {
		if err := d.createInstruments(meter); err != nil {
			return nil, err
		}
	}

	if cfg.TraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
		if !cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return nil, err
		}
	}

	if err := d.registerCallbacks(db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	d.sqlDB = sqlDB

	logger.Info("Database instrumentation registered",
		zap.Bool("tracing", cfg.TraceEnabled),
		zap.Bool("metrics", meter != nil),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold),
	)
	return d, nil
}

func (d *DBInstrumentation) createInstruments(meter metric.Meter) error {
	var err error
	if d.queryTotal, err = NewCounter(meter, "db_query_total", "Database queries by operation", "{query}"); err != nil {
		return err
	}
	if d.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return err
	}
	if d.slowQueryTotal, err = NewCounter(meter, "db_slow_query_total", "Queries slower than the configured threshold", "{query}"); err != nil {
		return err
	}
	if d.poolConns, err = NewGauge(meter, "db_pool_connections", "Pool connections by state", "{connection}"); err != nil {
		return err
	}
	d.poolConnsMax, err = NewGauge(meter, "db_pool_connections_max", "Maximum open connections", "{connection}")
	return err
}

func (d *DBInstrumentation) registerCallbacks(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("pf_db:before_create", d.before),
		cb.Query().Before("gorm:query").Register("pf_db:before_query", d.before),
		cb.Update().Before("gorm:update").Register("pf_db:before_update", d.before),
		cb.Delete().Before("gorm:delete").Register("pf_db:before_delete", d.before),
		cb.Row().Before("gorm:row").Register("pf_db:before_row", d.before),
		cb.Raw().Before("gorm:raw").Register("pf_db:before_raw", d.before),

		cb.Create().After("gorm:create").Register("pf_db:after_create", d.after("INSERT")),
		cb.Query().After("gorm:query").Register("pf_db:after_query", d.after("SELECT")),
		cb.Update().After("gorm:update").Register("pf_db:after_update", d.after("UPDATE")),
		cb.Delete().After("gorm:delete").Register("pf_db:after_delete", d.after("DELETE")),
		cb.Row().After("gorm:row").Register("pf_db:after_row", d.after("")),
		cb.Raw().After("gorm:raw").Register("pf_db:after_raw", d.after("")),
	)
}

func (d *DBInstrumentation) before(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	db.Statement.Context = context.WithValue(ctx, queryStartKey{}, time.Now())
}

func (d *DBInstrumentation) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}
		op := operation
		if op == "" {
			op = detectOperationType(db.Statement.SQL.String())
		}
		var elapsed time.Duration
		if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
			elapsed = time.Since(start)
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		slow := elapsed > d.config.SlowQueryThreshold

		d.annotateSpan(ctx, db, table, elapsed, slow)
		d.RecordQuery(ctx, op, table, elapsed)

		if slow {
			d.logger.Warn("Slow query",
				zap.String("operation", op),
				zap.String("table", table),
				zap.Duration("duration", elapsed),
			)
		}
	}
}

func (d *DBInstrumentation) annotateSpan(ctx context.Context, db *gorm.DB, table string, elapsed time.Duration, slow bool) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
		attribute.String("db.sql.table", table),
	)
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}
	if slow {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}

// RecordQuery records one query's count and latency. No-op without a meter.
func (d *DBInstrumentation) RecordQuery(ctx context.Context, operation, table string, elapsed time.Duration) {
	if d.queryTotal == nil {
		return
	}
	d.queryTotal.Inc(ctx, AttrDBOperation.String(operation))
	d.queryDuration.RecordDuration(ctx, elapsed, AttrDBOperation.String(operation))
	if elapsed > d.config.SlowQueryThreshold {
		d.slowQueryTotal.Inc(ctx, AttrDBTable.String(table))
	}
}

// StartPoolStatsCollection records connection pool gauges every
// PoolStatsInterval until ctx is done or Stop is called.
func (d *DBInstrumentation) StartPoolStatsCollection(ctx context.Context) {
	if d.poolConns == nil || d.sqlDB == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.config.PoolStatsInterval)
		defer ticker.Stop()

		d.collectPoolStats(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.stopCh:
				return
			case <-ticker.C:
				d.collectPoolStats(ctx)
			}
		}
	}()
}

func (d *DBInstrumentation) collectPoolStats(ctx context.Context) {
	stats := d.sqlDB.Stats()
	d.poolConnsMax.Record(ctx, int64(stats.MaxOpenConnections))
	d.poolConns.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	d.poolConns.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	d.poolConns.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
}

// Stop ends pool stats collection. Safe to call more than once.
func (d *DBInstrumentation) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
		d.wg.Wait()
	})
}

func detectOperationType(statement string) string {
	statement = strings.ToUpper(strings.TrimSpace(statement))
	for _, op := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(statement, op) {
			return op
		}
	}
	if strings.HasPrefix(statement, "WITH") {
		return "SELECT"
	}
	return "OTHER"
}
