package sandbox

import (
	"time"

	"golang.org/x/sys/unix"
)

// armWatchdog installs a real-time interval timer that delivers SIGALRM
// to the child after d elapses, as the innermost of the three layered
// time budgets (the other two are RLIMIT_CPU and the parent's wait4
// watchdog goroutine).
func armWatchdog(d time.Duration) error {
	tv := unix.Itimerval{
		Value: unix.Timeval{
			Sec:  int64(d / time.Second),
			Usec: int64((d % time.Second) / time.Microsecond),
		},
	}
	return unix.Setitimer(unix.ITIMER_REAL, &tv, nil)
}

// childWatchdogDuration is the child's setitimer(ITIMER_REAL) interval:
// (ceil(time limit in seconds) + 2), doubled.
func childWatchdogDuration(timeLimitMs int64) time.Duration {
	seconds := ceilSeconds(timeLimitMs)
	return 2 * (time.Duration(seconds+2) * time.Second)
}

// parentWatchdogDuration is the parent's wait4 deadline: the outermost
// of the three layered time budgets, guaranteeing the parent never
// blocks forever: (ceil(time limit in seconds) + 1), doubled.
func parentWatchdogDuration(timeLimitMs int64) time.Duration {
	seconds := ceilSeconds(timeLimitMs)
	return 2 * (time.Duration(seconds+1) * time.Second)
}

// ceilSeconds rounds a millisecond duration up to whole seconds.
func ceilSeconds(ms int64) int64 {
	if ms <= 0 {
		return 0
	}
	return (ms + 999) / 1000
}
