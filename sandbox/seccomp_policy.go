package sandbox

// x86_64 syscall numbers used by the judge's policies. Adapted from the
// teacher runtime's syscall name table, trimmed to the subset the
// sandbox actually references.
const (
	sysRead            = 0
	sysWrite           = 1
	sysOpen            = 2
	sysClose           = 3
	sysStat            = 4
	sysFstat           = 5
	sysLstat           = 6
	sysLseek           = 8
	sysMprotect        = 10
	sysBrk             = 12
	sysRtSigaction     = 13
	sysRtSigprocmask   = 14
	sysRtSigreturn     = 15
	sysIoctl           = 16
	sysReadlink        = 89
	sysMmap            = 9
	sysMunmap          = 11
	sysAccess          = 21
	sysDup             = 32
	sysDup2            = 33
	sysGetpid          = 39
	sysSocket          = 41
	sysClone           = 56
	sysFork            = 57
	sysVfork           = 58
	sysExecve          = 59
	sysExit            = 60
	sysWait4           = 61
	sysUname           = 63
	sysFcntl           = 72
	sysGetcwd          = 79
	sysMkdir           = 83
	sysRename          = 82
	sysUnlink          = 87
	sysChmod           = 90
	sysGetuid          = 102
	sysGetgid          = 104
	sysGeteuid         = 107
	sysGetegid         = 108
	sysSigaltstack     = 131
	sysArchPrctl       = 158
	sysUmask           = 95
	sysGetrlimit       = 97
	sysGetrusage       = 98
	sysSysinfo         = 99
	sysGettid          = 186
	sysFutex           = 202
	sysSetTidAddress   = 218
	sysClockGettime    = 228
	sysExitGroup       = 231
	sysMremap          = 25
	sysGetdents        = 78
	sysSelect          = 23
	sysSetRobustList   = 273
	sysGetrandom       = 318
	sysOpenat          = 257
	sysPrlimit64       = 302
	sysWritev          = 20
)

// baseAllowed is the syscall set RuntimePolicy allows outright: the
// standard POSIX set a compiled submission needs to start up and run,
// including brk/mmap/munmap/mremap for normal dynamic-linker and
// runtime memory management. TracePolicy allows all of it except those
// four, which it traces instead.
var baseAllowed = []int{
	sysAccess, sysArchPrctl, sysBrk, sysChmod, sysClockGettime, sysClone,
	sysClose, sysDup, sysDup2, sysExecve, sysExit, sysExitGroup,
	sysFcntl, sysFork, sysFstat, sysFutex, sysGetcwd, sysGetdents,
	sysGetegid, sysGeteuid, sysGetgid, sysGetpid, sysGettid,
	sysGetrandom, sysGetrlimit, sysGetrusage, sysGetuid, sysIoctl,
	sysLseek, sysLstat, sysMkdir, sysMmap, sysMprotect, sysMremap,
	sysMunmap, sysOpen, sysOpenat, sysPrlimit64, sysRead, sysReadlink,
	sysRename, sysRtSigaction, sysRtSigprocmask, sysRtSigreturn,
	sysSelect, sysSetRobustList, sysSetTidAddress, sysSigaltstack,
	sysStat, sysSysinfo, sysUmask, sysUname, sysUnlink, sysVfork,
	sysWait4, sysWrite, sysWritev,
}

// RuntimePolicy is the seccomp program applied around a submission's
// executable while it is running: a fixed syscall allow list, default
// deny-by-kill for everything else. Grounded on the judge's reference
// allow-list of roughly fifty syscalls sufficient to run a compiled
// submission under the sandbox's rootfs, rlimits, and cgroup.
func RuntimePolicy() *SeccompProgram {
	return programFrom(baseAllowed, nil)
}

// TracePolicy is RuntimePolicy with brk, mmap, munmap, and mremap moved
// from Allow to Trace(traceTag). Spawn attaches no tracer to the child,
// so nothing in this package observes or limits these traced calls.
const traceTag = 42

func TracePolicy() *SeccompProgram {
	traced := []int{sysBrk, sysMmap, sysMunmap, sysMremap}
	allowed := make([]int, 0, len(baseAllowed)-len(traced))
	for _, nr := range baseAllowed {
		switch nr {
		case sysBrk, sysMmap, sysMunmap, sysMremap:
			continue
		}
		allowed = append(allowed, nr)
	}
	return programFrom(allowed, traced)
}

func programFrom(allowed, traced []int) *SeccompProgram {
	rules := make([]Rule, 0, len(allowed)+len(traced))
	for _, nr := range allowed {
		rules = append(rules, Rule{Syscall: nr, Action: Allow()})
	}
	for _, nr := range traced {
		rules = append(rules, Rule{Syscall: nr, Action: Trace(traceTag)})
	}
	return &SeccompProgram{DefaultAction: Kill(), Rules: rules}
}
