package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	DefaultProcDir    = "/proc"
	DefaultClockTicks = 100.0
)

// memInfoFields maps /proc/meminfo labels to metric name suffixes.
// Labels missing from this table are ignored.
var memInfoFields = map[string]string{
	"MemTotal":     "mem_total",
	"MemFree":      "mem_free",
	"MemAvailable": "mem_available",
	"SwapTotal":    "swap_total",
	"SwapFree":     "swap_free",
}

// memInfoOrder keeps Describe output stable.
var memInfoOrder = []string{"MemTotal", "MemFree", "MemAvailable", "SwapTotal", "SwapFree"}

func metricPrefix(namespace string) string {
	if namespace == "" {
		return "system_"
	}
	return namespace + "_system_"
}

func newCPUUserDesc(prefix string) *prometheus.Desc {
	return prometheus.NewDesc(
		prefix+"cpu_user_seconds_total",
		"Total user and system CPU time spent in seconds (user).",
		nil, nil,
	)
}

func newCPUSystemDesc(prefix string) *prometheus.Desc {
	return prometheus.NewDesc(
		prefix+"cpu_system_seconds_total",
		"Total system CPU time spent in seconds (system).",
		nil, nil,
	)
}

func newMemInfoDesc(prefix, label, unit string) *prometheus.Desc {
	return prometheus.NewDesc(
		prefix+memInfoFields[label],
		memInfoHelp(label, unit),
		nil, nil,
	)
}

func memInfoHelp(label, unit string) string {
	if unit == "" {
		return "Total memory usage (" + label + ")"
	}
	return "Total memory usage in " + unit + " (" + label + ")"
}
