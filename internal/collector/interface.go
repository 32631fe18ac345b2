package collector

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Interface interface {
	RegisterMetrics(reg prometheus.Registerer) error
	Unregister(reg prometheus.Registerer)
	Available() bool
}
