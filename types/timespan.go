package types

// TimeSpan is a half-open [Started, Ended) interval of wall time,
// expressed in milliseconds on the runtime's logical clock. Ended is nil
// while the span is open (the timer is currently running).
type TimeSpan struct {
	Started int64
	Ended   *int64
}

// OpenSpan starts a new span at the given instant.
func OpenSpan(startMs int64) TimeSpan {
	return TimeSpan{Started: startMs}
}

// IsOpen reports whether the span has not yet been closed.
func (s TimeSpan) IsOpen() bool {
	return s.Ended == nil
}

// Close returns a copy of the span closed at endMs. Closing an
// already-closed span is a no-op that returns the span unchanged, so
// double-pause leaves exactly one closed span (spec.md §8).
func (s TimeSpan) Close(endMs int64) TimeSpan {
	if s.Ended != nil {
		return s
	}
	end := endMs
	s.Ended = &end
	return s
}

// ElapsedAt returns min(end, now) - start for this span at the given
// instant, i.e. the span's contribution to elapsed time. now is only
// used when the span is still open.
func (s TimeSpan) ElapsedAt(nowMs int64) int64 {
	end := nowMs
	if s.Ended != nil {
		end = *s.Ended
	}
	return end - s.Started
}

// SumElapsed computes Σ(min(end_i, now) - start_i) across spans — the
// canonical pause-aware elapsed computation (spec.md §4.4, §8 invariant 8).
func SumElapsed(spans []TimeSpan, nowMs int64) int64 {
	var total int64
	for _, s := range spans {
		total += s.ElapsedAt(nowMs)
	}
	return total
}

// SumTotal computes lastEnd - firstStart across spans, including paused
// gaps (the "total" derived value for a TimerState).
func SumTotal(spans []TimeSpan, nowMs int64) int64 {
	if len(spans) == 0 {
		return 0
	}
	first := spans[0].Started
	last := nowMs
	lastSpan := spans[len(spans)-1]
	if lastSpan.Ended != nil {
		last = *lastSpan.Ended
	}
	return last - first
}
