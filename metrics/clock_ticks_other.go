//go:build !linux

package metrics

import (
	"fmt"
	"runtime"
)

func hostClockTicks() (int64, error) {
	return 0, fmt.Errorf("clock tick lookup not implemented for %s", runtime.GOOS)
}
