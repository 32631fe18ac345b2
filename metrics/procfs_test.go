package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootTime(t *testing.T) {
	dir := t.TempDir()
	writeProcFixture(t, dir, fixtureStat, "")

	btime, err := bootTime(dir)
	require.NoError(t, err)
	assert.Equal(t, 1700000000.0, btime)
}

func TestBootTimeMissingRecord(t *testing.T) {
	dir := t.TempDir()
	writeProcFixture(t, dir, "cpu 1 2 3 4\nctxt 5\n", "")

	btime, err := bootTime(dir)
	require.NoError(t, err)
	assert.Zero(t, btime)
}

func TestBootTimeAfterLongIntrLine(t *testing.T) {
	var intr strings.Builder
	intr.WriteString("intr 123456789")
	for intr.Len() < 96*1024 {
		intr.WriteString(" 0")
	}

	dir := t.TempDir()
	writeProcFixture(t, dir, "cpu  1 2 3 4\n"+intr.String()+"\nctxt 400\nbtime 1700000000\n", "")

	btime, err := bootTime(dir)
	require.NoError(t, err)
	assert.Equal(t, 1700000000.0, btime)

	c := NewSystemCollector(SystemCollectorOpts{ProcDir: dir, ClockTicks: fixedTicks(100)})
	assert.True(t, c.Available())
}

func TestBootTimeWithoutTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	writeProcFixture(t, dir, "cpu 1 2 3 4\nbtime 42", "")

	btime, err := bootTime(dir)
	require.NoError(t, err)
	assert.Equal(t, 42.0, btime)
}

func TestBootTimeMissingFile(t *testing.T) {
	_, err := bootTime(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBootTimeMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stat"), []byte("btime soon\n"), 0o644))

	_, err := bootTime(dir)
	assert.Error(t, err)
}

func TestParseCPUSeconds(t *testing.T) {
	got, err := parseCPUSeconds("cpu  10132153 290696 3084719 46828483 16683 0 25195 0 175628 0", 100)
	require.NoError(t, err)
	assert.Equal(t, 101321.53, got.user)
	assert.Equal(t, 30847.19, got.system)

	_, err = parseCPUSeconds("cpu 1 2", 100)
	assert.Error(t, err)
	_, err = parseCPUSeconds("", 100)
	assert.Error(t, err)
}

func TestParseMemInfoLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    memInfoLine
		ok      bool
		wantErr bool
	}{
		{name: "tracked", line: "MemTotal:       16089840 kB", want: memInfoLine{label: "MemTotal", value: 16089840, unit: "kB"}, ok: true},
		{name: "untracked", line: "Buffers:          123456 kB"},
		{name: "untracked short", line: "HugePages_Total:       0"},
		{name: "blank", line: "   "},
		{name: "tracked label without colon", line: "MemTotal 5 kB"},
		{name: "tracked label without colon short", line: "MemFree"},
		{name: "tracked short", line: "SwapTotal: 2097148", wantErr: true},
		{name: "tracked non numeric", line: "SwapFree: n/a kB", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := parseMemInfoLine(tt.line)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetricPrefix(t *testing.T) {
	assert.Equal(t, "system_", metricPrefix(""))
	assert.Equal(t, "app_system_", metricPrefix("app"))
}
