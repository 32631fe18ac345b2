package collector

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"system_exporter/internal/config"
	"system_exporter/metrics"
)

// Set groups the system collector with the optional runtime collectors.
type Set struct {
	system     *metrics.SystemCollector
	collectors []prometheus.Collector
}

func New(cfg *config.Config, logger *zap.Logger) *Set {
	system := metrics.NewSystemCollector(metrics.SystemCollectorOpts{
		Namespace: cfg.Namespace,
		ProcDir:   cfg.ProcDir,
		Logger:    logger,
	})

	s := &Set{
		system:     system,
		collectors: []prometheus.Collector{system},
	}
	if cfg.GoCollector {
		s.collectors = append(s.collectors, collectors.NewGoCollector())
	}
	if cfg.ProcessCollector {
		s.collectors = append(s.collectors, collectors.NewProcessCollector(collectors.ProcessCollectorOpts{
			Namespace: cfg.Namespace,
		}))
	}
	return s
}

// RegisterMetrics registers every collector of the set. On failure the
// collectors registered so far are removed again.
func (s *Set) RegisterMetrics(reg prometheus.Registerer) error {
	for i, c := range s.collectors {
		if err := reg.Register(c); err != nil {
			for _, done := range s.collectors[:i] {
				reg.Unregister(done)
			}
			return fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return nil
}

func (s *Set) Unregister(reg prometheus.Registerer) {
	for _, c := range s.collectors {
		reg.Unregister(c)
	}
}

func (s *Set) Available() bool {
	return s.system.Available()
}

var _ Interface = (*Set)(nil)
