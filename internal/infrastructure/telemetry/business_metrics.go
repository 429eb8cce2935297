package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics records estimate and inventory figures
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	estimatesCreated   *Counter
	estimatesCompleted *Counter
	inventoryDeducted  metric.Float64Counter
	renderDuration     *Histogram
	lowStockItems      *Gauge

	lowStock LowStockCounter

	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// LowStockCounter reports how many inventory items sit below their minimum
type LowStockCounter interface {
	CountLowStock(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig configures BusinessMetrics
type BusinessMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	LowStock LowStockCounter
}

// NewBusinessMetrics creates the business instruments on cfg.Meter
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	created, err := NewCounter(cfg.Meter, "pf_estimate_created_total", "Estimates created by initial status", "{estimate}")
	if err != nil {
		return nil, err
	}
	completed, err := NewCounter(cfg.Meter, "pf_estimate_completed_total", "Estimates marked as completed", "{estimate}")
	if err != nil {
		return nil, err
	}
	deducted, err := cfg.Meter.Float64Counter("pf_inventory_deducted_total",
		metric.WithDescription("Stock deducted on job completion, in the item's own unit"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return nil, err
	}
	render, err := NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "pf_document_render_duration_seconds",
		Description: "Time spent rendering estimate and invoice PDFs",
		Unit:        "s",
		Boundaries:  []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
	if err != nil {
		return nil, err
	}
	lowStock, err := NewGauge(cfg.Meter, "pf_inventory_low_stock_count", "Inventory items below their minimum stock", "{item}")
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		meter:              cfg.Meter,
		logger:             logger,
		estimatesCreated:   created,
		estimatesCompleted: completed,
		inventoryDeducted:  deducted,
		renderDuration:     render,
		lowStockItems:      lowStock,
		lowStock:           cfg.LowStock,
		stopCh:             make(chan struct{}),
	}, nil
}

// RecordEstimateCreated counts a new estimate
func (bm *BusinessMetrics) RecordEstimateCreated(ctx context.Context, status string) {
	bm.estimatesCreated.Inc(ctx, AttrEstimateStatus.String(status))
}

// RecordEstimateCompleted counts an estimate reaching voltooid
func (bm *BusinessMetrics) RecordEstimateCompleted(ctx context.Context) {
	bm.estimatesCompleted.Inc(ctx)
}

// RecordInventoryDeducted adds the applied deduction for one item
func (bm *BusinessMetrics) RecordInventoryDeducted(ctx context.Context, itemName string, amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}
	bm.inventoryDeducted.Add(ctx, amount.InexactFloat64(), metric.WithAttributes(AttrItemName.String(itemName)))
}

// RecordDocumentRendered records how long a PDF took to build
func (bm *BusinessMetrics) RecordDocumentRendered(ctx context.Context, variant string, d time.Duration) {
	bm.renderDuration.RecordDuration(ctx, d, AttrDocumentVariant.String(variant))
}

// RecordLowStockCount sets the low stock gauge
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, count int64) {
	bm.lowStockItems.Record(ctx, count)
}

// StartPeriodicCollection polls the low stock count every interval until
// ctx is done or Stop is called. Without a LowStockCounter it does nothing.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	if bm.lowStock == nil {
		bm.logger.Debug("No low stock source configured, skipping inventory gauge collection")
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	bm.wg.Add(1)
	go func() {
		defer bm.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		bm.collectLowStock(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-bm.stopCh:
				return
			case <-ticker.C:
				bm.collectLowStock(ctx)
			}
		}
	}()
}

func (bm *BusinessMetrics) collectLowStock(ctx context.Context) {
	count, err := bm.lowStock.CountLowStock(ctx)
	if err != nil {
		bm.logger.Warn("Failed to collect low stock count", zap.Error(err))
		return
	}
	bm.RecordLowStockCount(ctx, count)
}

// Stop ends periodic collection. Safe to call more than once.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopCh)
		bm.wg.Wait()
	})
}

// ErrMeterNil is returned when a metrics constructor gets no meter
var ErrMeterNil = &MetricsError{Message: "meter cannot be nil"}

// MetricsError is a metrics setup error
type MetricsError struct {
	Message string
}

func (e *MetricsError) Error() string {
	return e.Message
}
