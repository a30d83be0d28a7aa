package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/observability"
	"github.com/aretw0/lattice/pkg/ports"
)

// Store operation results recorded by the metrics middleware.
const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultError    = "error"
)

type metricsMiddleware struct {
	next    ports.SnapshotStore
	metrics *observability.Metrics
}

// NewMetricsMiddleware records the count, result and duration of every store
// operation.
func NewMetricsMiddleware(m *observability.Metrics) Middleware {
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &metricsMiddleware{next: next, metrics: m}
	}
}

func (m *metricsMiddleware) observe(op string, start time.Time, err error) {
	result := resultOK
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		result = resultNotFound
	case err != nil:
		result = resultError
	}
	m.metrics.StoreOpsTotal.WithLabelValues(op, result).Inc()
	m.metrics.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *metricsMiddleware) Save(ctx context.Context, snap *domain.Snapshot) error {
	start := time.Now()
	err := m.next.Save(ctx, snap)
	m.observe("save", start, err)
	return err
}

func (m *metricsMiddleware) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	start := time.Now()
	snap, err := m.next.Load(ctx, id)
	m.observe("load", start, err)
	return snap, err
}

func (m *metricsMiddleware) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := m.next.Delete(ctx, id)
	m.observe("delete", start, err)
	return err
}

func (m *metricsMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	ids, err := m.next.List(ctx)
	m.observe("list", start, err)
	return ids, err
}
