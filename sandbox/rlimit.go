package sandbox

import "syscall"

// setRlimit sets both the soft and hard limit of resource to value.
func setRlimit(resource int, value uint64) error {
	return syscall.Setrlimit(resource, &syscall.Rlimit{Cur: value, Max: value})
}

// applyRlimits installs the child-side resource ceilings for one run:
// RLIMIT_CPU in seconds (rounded up from the millisecond time limit,
// plus one second of slack), RLIMIT_AS/RLIMIT_DATA in bytes when a
// memory limit is configured, and RLIMIT_FSIZE in bytes. A zero limit
// leaves the corresponding rlimit untouched.
func applyRlimits(cpuSeconds uint64, memoryLimitKB int64, fileSizeLimitKB int64, skipAddressSpace bool) error {
	if cpuSeconds > 0 {
		if err := setRlimit(syscall.RLIMIT_CPU, cpuSeconds); err != nil {
			return err
		}
	}
	if memoryLimitKB > 0 && !skipAddressSpace {
		bytes := uint64(memoryLimitKB) * 1024
		if err := setRlimit(syscall.RLIMIT_AS, bytes); err != nil {
			return err
		}
		if err := setRlimit(syscall.RLIMIT_DATA, bytes); err != nil {
			return err
		}
	}
	if fileSizeLimitKB > 0 {
		if err := setRlimit(syscall.RLIMIT_FSIZE, uint64(fileSizeLimitKB)*1024); err != nil {
			return err
		}
	}
	return nil
}
