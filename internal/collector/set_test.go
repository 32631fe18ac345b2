package collector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"system_exporter/internal/config"
)

func procFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stat"),
		[]byte("cpu  10132153 290696 3084719 46828483\nbtime 1700000000\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meminfo"),
		[]byte("MemTotal: 16089840 kB\nMemFree: 1 kB\n"), 0o644))
	return dir
}

func familyNames(t *testing.T, reg *prometheus.Registry) []string {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	return names
}

func TestSetRegistersSystemCollector(t *testing.T) {
	cfg := config.Default()
	cfg.ProcDir = procFixture(t)
	cfg.Namespace = "app"

	set := New(cfg, zap.NewNop())
	require.True(t, set.Available())

	reg := prometheus.NewRegistry()
	require.NoError(t, set.RegisterMetrics(reg))
	assert.Equal(t, []string{
		"app_system_cpu_system_seconds_total",
		"app_system_cpu_user_seconds_total",
		"app_system_mem_free",
		"app_system_mem_total",
	}, familyNames(t, reg))

	set.Unregister(reg)
	assert.Empty(t, familyNames(t, reg))
}

func TestSetGoCollector(t *testing.T) {
	cfg := config.Default()
	cfg.ProcDir = procFixture(t)
	cfg.GoCollector = true

	reg := prometheus.NewRegistry()
	require.NoError(t, New(cfg, zap.NewNop()).RegisterMetrics(reg))

	var goMetrics int
	for _, name := range familyNames(t, reg) {
		if strings.HasPrefix(name, "go_") {
			goMetrics++
		}
	}
	assert.NotZero(t, goMetrics)
}

func TestSetInertWithoutProcfs(t *testing.T) {
	cfg := config.Default()
	cfg.ProcDir = t.TempDir()

	set := New(cfg, zap.NewNop())
	assert.False(t, set.Available())

	reg := prometheus.NewRegistry()
	require.NoError(t, set.RegisterMetrics(reg))
	assert.Empty(t, familyNames(t, reg))
}

func TestSetRegisterConflictRollsBack(t *testing.T) {
	cfg := config.Default()
	cfg.ProcDir = procFixture(t)
	cfg.GoCollector = true

	reg := prometheus.NewRegistry()
	first := New(cfg, zap.NewNop())
	require.NoError(t, first.RegisterMetrics(reg))

	cfg.Namespace = "other"
	second := New(cfg, zap.NewNop())
	require.Error(t, second.RegisterMetrics(reg))

	first.Unregister(reg)
	assert.Empty(t, familyNames(t, reg))
}
