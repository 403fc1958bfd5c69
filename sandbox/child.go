package sandbox

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"syscall"
	"time"
)

// childSyncFD is the file descriptor the sync pipe's child end arrives
// on: cmd.ExtraFiles[0] lands at fd 3, after stdin/stdout/stderr.
const childSyncFD = 3

// ChildMain is the entry point for the re-exec'd "sandbox-init"
// subcommand. It never returns on success: step 11 of the child setup
// order execve's into the submission's process image. Any failure
// anywhere in this function self-SIGKILLs so the parent observes a
// deterministic signal instead of an ambiguous exit code.
func ChildMain() {
	if err := runChild(); err != nil {
		selfDestruct()
	}
}

func runChild() error {
	pipe := os.NewFile(uintptr(childSyncFD), "river-syncpipe-w")
	defer pipe.Close()

	cfg, err := readConfig(pipe)
	if err != nil {
		return err
	}

	// Block until the parent has attached this process to its cgroup
	// and applied memory/pids limits.
	if err := waitForRelease(pipe); err != nil {
		return err
	}

	// 1. chmod workdir so the unprivileged sandbox user can write.
	if err := os.Chmod(cfg.Workdir, 0777); err != nil {
		return err
	}
	// 2. Make the mount namespace private.
	if err := makePrivate("/"); err != nil {
		return err
	}
	// 3. Bind-mount workdir onto <rootfs>/tmp.
	if err := bindMountWorkdir(cfg.Workdir, cfg.Rootfs); err != nil {
		return err
	}
	// 4. chdir(rootfs) -> chroot(".") -> chdir("/tmp").
	if err := chrootInto(cfg.Rootfs); err != nil {
		return err
	}
	// 5. Fixed, non-identifying hostname/domainname.
	if err := setHostname("sandbox"); err != nil {
		return err
	}
	if err := setDomainname("sandbox"); err != nil {
		return err
	}
	// 6. Drop privileges to nobody.
	if err := dropPrivileges(); err != nil {
		return err
	}
	// 7. Redirect stdio.
	if err := redirectStdio(cfg); err != nil {
		return err
	}
	// 8. Arm the in-child wall-clock watchdog.
	if err := armWatchdog(childWatchdogDuration(cfg.TimeLimitMs)); err != nil {
		return err
	}
	// 9. RLIMIT_CPU / RLIMIT_AS / RLIMIT_DATA / RLIMIT_FSIZE.
	if err := applyRlimits(cfg.cpuLimitSeconds(), cfg.MemoryLimitKB, cfg.FileSizeLimitKB, cfg.SkipAddressSpaceLimit); err != nil {
		return err
	}
	// 10. Install the seccomp filter.
	policy := RuntimePolicy()
	if cfg.Trace {
		policy = TracePolicy()
	}
	if err := policy.Apply(); err != nil {
		return err
	}

	// 11. execve. If execProcess returns at all, it failed.
	spec, err := BuildExecSpec(cfg.Command, cfg.EnvPolicy, os.Environ())
	if err != nil {
		return err
	}
	return execProcess(spec.Path, spec.Args, spec.Env)
}

// readConfig reads the 4-byte big-endian length prefix and the
// JSON-encoded SandboxConfig that follows it.
func readConfig(pipe *os.File) (*SandboxConfig, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(pipe, lenBuf[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(lenBuf[:])
	data := make([]byte, size)
	if _, err := io.ReadFull(pipe, data); err != nil {
		return nil, err
	}
	var cfg SandboxConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// waitForRelease performs a blocking read of the one-byte handshake
// that follows the config on the same pipe.
func waitForRelease(pipe *os.File) error {
	buf := make([]byte, 1)
	_, err := pipe.Read(buf)
	return err
}

// redirectStdio wires stdin (if configured), stdout, and stderr to the
// paths named in cfg. stdin is opened read-only and only if it exists;
// stdout/stderr are created (or truncated) 0644.
func redirectStdio(cfg *SandboxConfig) error {
	if cfg.hasStdin() {
		in, err := os.OpenFile(cfg.StdinPath, os.O_RDONLY, 0)
		if err != nil {
			if !os.IsNotExist(err) {
				return err
			}
		} else if err := dup2(int(in.Fd()), 0); err != nil {
			return err
		}
	}
	out, err := os.OpenFile(cfg.StdoutPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if err := dup2(int(out.Fd()), 1); err != nil {
		return err
	}
	errFile, err := os.OpenFile(cfg.StderrPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	return dup2(int(errFile.Fd()), 2)
}

func dup2(oldfd, newfd int) error {
	return syscall.Dup2(oldfd, newfd)
}

// selfDestruct sends SIGKILL to the current process, the deterministic
// failure signature the parent watches for when any child setup step
// fails before exec.
func selfDestruct() {
	syscall.Kill(os.Getpid(), syscall.SIGKILL)
	// Kill is asynchronous from the sender's point of view; block so we
	// never fall through to returning into caller code.
	time.Sleep(time.Second)
	os.Exit(1)
}
