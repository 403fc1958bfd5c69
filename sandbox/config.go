package sandbox

// StdinSentinel marks a SandboxConfig with no stdin redirection.
const StdinSentinel = "/STDIN/"

// SandboxConfig is the full set of inputs to one Sandbox run.
type SandboxConfig struct {
	Command   string    `json:"command"`
	EnvPolicy EnvPolicy `json:"env_policy"`
	Workdir   string    `json:"workdir"`
	Rootfs    string    `json:"rootfs"`

	ResultFile string `json:"result_file"`
	StdinPath  string `json:"stdin_path"`
	StdoutPath string `json:"stdout_path"`
	StderrPath string `json:"stderr_path"`

	TimeLimitMs     int64 `json:"time_limit_ms"`
	MemoryLimitKB   int64 `json:"memory_limit_kb"`
	FileSizeLimitKB int64 `json:"file_size_limit_kb"`
	PidsLimit       int64 `json:"pids_limit"`

	UseCgroup bool `json:"use_cgroup"`

	// SkipAddressSpaceLimit leaves RLIMIT_AS and RLIMIT_DATA unset instead
	// of applying the real memory limit, for VM-hosted language runtimes
	// (Java, Go, JS, TS, C#) that reserve address space far beyond what
	// they actually touch. The cgroup memory limit still applies.
	SkipAddressSpaceLimit bool `json:"skip_address_space_limit"`

	// Trace selects TracePolicy over RuntimePolicy for the seccomp
	// filter installed before exec.
	Trace bool `json:"trace"`
}

// hasStdin reports whether StdinPath names a real file to redirect, as
// opposed to the no-redirection sentinel.
func (c *SandboxConfig) hasStdin() bool {
	return c.StdinPath != "" && c.StdinPath != StdinSentinel
}

// cpuLimitSeconds is the RLIMIT_CPU value: ceil(time limit) + 1 second.
func (c *SandboxConfig) cpuLimitSeconds() uint64 {
	return uint64(ceilSeconds(c.TimeLimitMs) + 1)
}

// ExitStatus reports the outcome of one Sandbox run.
type ExitStatus struct {
	TimeUsedMs    int64 `json:"time_used_ms"`
	MemoryUsedKB  int64 `json:"memory_used_kb"`
	ExitCode      int64 `json:"exit_code"`
	RawStatus     int64 `json:"raw_status"`
	Signal        int64 `json:"signal"`
}

// systemErrorStatus builds the sentinel ExitStatus the parent reports
// when the child self-terminated before exec (a negative signal flags
// an internal judge error to the verdict layer).
func systemErrorStatus() *ExitStatus {
	return &ExitStatus{Signal: -1}
}
