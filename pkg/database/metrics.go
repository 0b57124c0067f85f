package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterPoolMetrics exposes pool occupancy gauges for pool on reg.
func RegisterPoolMetrics(reg prometheus.Registerer, pool *pgxpool.Pool) error {
	gauges := map[string]struct {
		help string
		fn   func(*pgxpool.Stat) float64
	}{
		"acquired_connections": {"Connections currently checked out.", func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }},
		"idle_connections":     {"Idle connections.", func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }},
		"total_connections":    {"All open connections.", func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }},
		"max_connections":      {"Pool size limit.", func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }},
	}

	for name, g := range gauges {
		fn := g.fn
		collector := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "db_pool",
			Name:      name,
			Help:      g.help,
		}, func() float64 { return fn(pool.Stat()) })
		if err := reg.Register(collector); err != nil {
			return err
		}
	}
	return nil
}
