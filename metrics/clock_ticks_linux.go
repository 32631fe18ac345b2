//go:build linux

package metrics

import "github.com/tklauser/go-sysconf"

// hostClockTicks returns the host USER_HZ value.
func hostClockTicks() (int64, error) {
	return sysconf.Sysconf(sysconf.SC_CLK_TCK)
}
