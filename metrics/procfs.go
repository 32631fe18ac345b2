package metrics

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	cpuUserField   = 1
	cpuSystemField = 3
)

type cpuSeconds struct {
	user   float64
	system float64
}

type memInfoLine struct {
	label string
	value float64
	unit  string
}

// bootTime reads the btime record from <procDir>/stat.
// A stat file without a btime line yields 0 and no error.
func bootTime(procDir string) (float64, error) {
	path := filepath.Join(procDir, "stat")
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	// The intr line precedes btime and can exceed bufio.Scanner's token limit.
	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if strings.HasPrefix(line, "btime ") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return 0, fmt.Errorf("malformed btime line in %s: %q", path, line)
			}
			value, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return 0, fmt.Errorf("parse btime in %s: %w", path, err)
			}
			return value, nil
		}
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", path, err)
		}
	}
}

// readFirstLine returns the first line of the file without its newline.
func readFirstLine(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	line, err := bufio.NewReader(file).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// parseCPUSeconds converts the aggregate "cpu" line of /proc/stat into seconds.
//
//	cpu  10132153 290696 3084719 46828483 16683 0 25195 0 175628 0
//
// Fields are USER_HZ ticks: user, nice, system, idle, ...
func parseCPUSeconds(line string, ticks float64) (cpuSeconds, error) {
	fields := strings.Fields(line)
	if len(fields) <= cpuSystemField {
		return cpuSeconds{}, fmt.Errorf("cpu line has %d fields, need at least %d: %q", len(fields), cpuSystemField+1, line)
	}

	user, err := strconv.ParseFloat(fields[cpuUserField], 64)
	if err != nil {
		return cpuSeconds{}, fmt.Errorf("parse cpu user ticks: %w", err)
	}
	system, err := strconv.ParseFloat(fields[cpuSystemField], 64)
	if err != nil {
		return cpuSeconds{}, fmt.Errorf("parse cpu system ticks: %w", err)
	}

	return cpuSeconds{user: user / ticks, system: system / ticks}, nil
}

// parseMemInfoLine parses a line like `MemTotal:       16089840 kB`.
// ok is false when the label is not tracked or lacks its colon; such lines
// are never an error.
func parseMemInfoLine(line string) (memInfoLine, bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return memInfoLine{}, false, nil
	}

	label, found := strings.CutSuffix(fields[0], ":")
	if !found {
		return memInfoLine{}, false, nil
	}
	if _, tracked := memInfoFields[label]; !tracked {
		return memInfoLine{}, false, nil
	}
	if len(fields) < 3 {
		return memInfoLine{}, false, fmt.Errorf("meminfo field %s has %d tokens, need 3: %q", label, len(fields), line)
	}

	value, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return memInfoLine{}, false, fmt.Errorf("parse meminfo field %s: %w", label, err)
	}

	return memInfoLine{label: label, value: value, unit: fields[2]}, true, nil
}
