package monitor

import "time"

// AlignedWait returns how long to sleep until the next multiple of the
// polling interval counted from local midnight in the reference timezone.
// Independently started monitors therefore converge onto the same
// sampling ticks instead of drifting apart.
func AlignedWait(now time.Time, interval time.Duration, loc *time.Location) time.Duration {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	elapsed := local.Sub(midnight)
	next := midnight.Add(elapsed.Truncate(interval) + interval)
	return next.Sub(local)
}

// BackoffDelay expands the wait for the given consecutive failure count:
// min(base * 2^(errors-1), cap). errors below 1 is treated as 1.
func BackoffDelay(base, cap time.Duration, errors int) time.Duration {
	if errors < 1 {
		errors = 1
	}
	delay := base
	for i := 1; i < errors; i++ {
		delay *= 2
		if delay >= cap {
			return cap
		}
	}
	if delay > cap {
		return cap
	}
	return delay
}
