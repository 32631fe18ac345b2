package metrics

// resolveClockTicks falls back to DefaultClockTicks whenever the lookup
// fails or reports a non-positive rate.
func resolveClockTicks(lookup func() (int64, error)) float64 {
	if lookup == nil {
		lookup = hostClockTicks
	}
	ticks, err := lookup()
	if err != nil || ticks <= 0 {
		return DefaultClockTicks
	}
	return float64(ticks)
}
