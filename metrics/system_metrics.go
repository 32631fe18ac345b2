package metrics

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// SystemCollectorOpts configures a SystemCollector.
type SystemCollectorOpts struct {
	// Namespace is prepended to every metric name as "<Namespace>_system_".
	Namespace string
	// ProcDir is the procfs root. Defaults to DefaultProcDir.
	ProcDir string
	// ClockTicks reports USER_HZ. Defaults to sysconf(SC_CLK_TCK).
	ClockTicks func() (int64, error)
	Logger     *zap.Logger
}

// SystemCollector exports CPU time and memory figures read from procfs.
//
// Whether procfs is usable is decided once in NewSystemCollector. An
// unavailable collector never reports anything. Every Collect call reads
// stat and meminfo again; nothing is cached between calls.
type SystemCollector struct {
	prefix    string
	procDir   string
	ticks     float64
	available bool

	cpuUser   *prometheus.Desc
	cpuSystem *prometheus.Desc
	errDesc   *prometheus.Desc
}

// NewSystemCollector probes <ProcDir>/stat for the boot time record and
// returns a collector. It never fails: an unreadable stats source leaves the
// collector permanently inert. The collector is not registered anywhere.
func NewSystemCollector(opts SystemCollectorOpts) *SystemCollector {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	procDir := opts.ProcDir
	if procDir == "" {
		procDir = DefaultProcDir
	}

	prefix := metricPrefix(opts.Namespace)
	c := &SystemCollector{
		prefix:    prefix,
		procDir:   procDir,
		ticks:     resolveClockTicks(opts.ClockTicks),
		cpuUser:   newCPUUserDesc(prefix),
		cpuSystem: newCPUSystemDesc(prefix),
		errDesc: prometheus.NewDesc(
			prefix+"collector_error",
			"Error while reading system statistics.",
			nil, nil,
		),
	}

	btime, err := bootTime(procDir)
	switch {
	case err != nil:
		logger.Warn("system statistics unavailable, collector disabled",
			zap.String("proc_dir", procDir), zap.Error(err))
	case btime == 0:
		logger.Warn("no boot time record found, collector disabled",
			zap.String("proc_dir", procDir))
	default:
		c.available = true
		logger.Debug("system collector ready",
			zap.String("proc_dir", procDir),
			zap.Float64("clock_ticks", c.ticks),
			zap.Float64("boot_time", btime))
	}

	return c
}

// Available reports the outcome of the construction-time probe.
func (c *SystemCollector) Available() bool {
	return c.available
}

// Describe implements prometheus.Collector.
func (c *SystemCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cpuUser
	ch <- c.cpuSystem
	for _, label := range memInfoOrder {
		ch <- newMemInfoDesc(c.prefix, label, "")
	}
}

// Collect implements prometheus.Collector. A read or parse failure is
// reported as an invalid metric so that the registry's Gather fails.
func (c *SystemCollector) Collect(ch chan<- prometheus.Metric) {
	metrics, err := c.Metrics()
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.errDesc, err)
		return
	}
	for _, m := range metrics {
		ch <- m
	}
}

// Metrics reads the stats source and returns cpu_user, cpu_system and then
// one gauge per tracked meminfo line in file order. An unavailable collector
// returns nil without touching the filesystem.
func (c *SystemCollector) Metrics() ([]prometheus.Metric, error) {
	if !c.available {
		return nil, nil
	}

	cpu, err := c.readCPU()
	if err != nil {
		return nil, err
	}
	result := []prometheus.Metric{
		prometheus.MustNewConstMetric(c.cpuUser, prometheus.CounterValue, cpu.user),
		prometheus.MustNewConstMetric(c.cpuSystem, prometheus.CounterValue, cpu.system),
	}

	mem, err := c.readMemInfo()
	if err != nil {
		return nil, err
	}
	for _, line := range mem {
		result = append(result, prometheus.MustNewConstMetric(
			newMemInfoDesc(c.prefix, line.label, line.unit),
			prometheus.GaugeValue,
			line.value,
		))
	}

	return result, nil
}

func (c *SystemCollector) readCPU() (cpuSeconds, error) {
	path := filepath.Join(c.procDir, "stat")
	line, err := readFirstLine(path)
	if err != nil {
		return cpuSeconds{}, err
	}
	cpu, err := parseCPUSeconds(line, c.ticks)
	if err != nil {
		return cpuSeconds{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cpu, nil
}

func (c *SystemCollector) readMemInfo() ([]memInfoLine, error) {
	path := filepath.Join(c.procDir, "meminfo")
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []memInfoLine
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line, ok, err := parseMemInfoLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if ok {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}
