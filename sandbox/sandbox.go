// Package sandbox implements the judge's one-shot isolated process
// launcher: namespace isolation, filesystem confinement, privilege
// drop, layered time/memory limits, a seccomp filter, and collection of
// exit status and resource usage for a single submission run.
package sandbox

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"river-go/cerrors"
)

// ReexecSubcommand is the hidden CLI subcommand name the judge process
// re-execs itself under to run ChildMain inside the new namespaces.
const ReexecSubcommand = "sandbox-init"

// Spawn launches config.Command under full sandbox isolation and blocks
// until it exits (or is killed by the watchdog), returning its
// ExitStatus. self is the absolute path to the judge's own executable,
// used to re-exec for the child side (Go cannot safely fork a
// multithreaded process and run further Go code before exec).
func Spawn(self string, id string, config *SandboxConfig) (*ExitStatus, error) {
	pipe, err := newSyncPipe()
	if err != nil {
		return nil, cerrors.Wrap(err, cerrors.ErrSandboxSetup, "create sync pipe")
	}
	defer pipe.Close()

	cmd := exec.Command(self, ReexecSubcommand)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.ExtraFiles = []*os.File{pipe.childFile()}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: namespaceCloneFlags(),
	}

	var cgroup *CgroupHandle
	if config.UseCgroup {
		cgroup, err = NewCgroupHandle(id, config.PidsLimit > 0)
		if err != nil {
			return nil, err
		}
	}

	if err := cmd.Start(); err != nil {
		if cgroup != nil {
			cgroup.Destroy()
		}
		return nil, cerrors.Wrap(err, cerrors.ErrSandboxSetup, "start sandbox-init")
	}
	pid := cmd.Process.Pid

	cleanup := func() {
		if cgroup != nil {
			cgroup.Destroy()
		}
	}

	// Hand the SandboxConfig across the re-exec boundary over the
	// inherited pipe, length-prefixed since it rides the same fd as the
	// release handshake below.
	if err := pipe.sendConfig(config); err != nil {
		killAndReap(cmd)
		cleanup()
		return nil, cerrors.Wrap(err, cerrors.ErrSandboxSetup, "send sandbox config")
	}

	if cgroup != nil {
		if err := cgroup.Attach(pid); err != nil {
			killAndReap(cmd)
			cleanup()
			return nil, err
		}
		if err := cgroup.SetMemoryLimitKB(config.MemoryLimitKB); err != nil {
			killAndReap(cmd)
			cleanup()
			return nil, err
		}
		if err := cgroup.SetPidsMax(config.PidsLimit); err != nil {
			killAndReap(cmd)
			cleanup()
			return nil, err
		}
	}

	// Release the child: cgroup attach/limits are in place, it may now
	// proceed through the rest of its setup and exec.
	if err := pipe.signal(); err != nil {
		killAndReap(cmd)
		cleanup()
		return nil, cerrors.Wrap(err, cerrors.ErrSandboxSetup, "release sandboxed child")
	}

	status, waitErr := waitWithWatchdog(cmd, parentWatchdogDuration(config.TimeLimitMs))
	if waitErr != nil {
		cleanup()
		return nil, waitErr
	}

	if cgroup != nil {
		if usageKB, err := cgroup.MemoryMaxUsageKB(); err == nil && usageKB < status.MemoryUsedKB {
			status.MemoryUsedKB = usageKB
		}
	}
	cleanup()
	return status, nil
}

// killAndReap SIGKILLs and reaps the child, used on every parent-side
// error path after the child has started: an in-flight child must
// never outlive the failed Spawn call.
func killAndReap(cmd *exec.Cmd) {
	if cmd.Process != nil {
		cmd.Process.Kill()
	}
	cmd.Wait()
}

// waitWithWatchdog waits for cmd to exit, forcibly killing it if
// timeout elapses first: the outermost of the three layered time
// budgets, guaranteeing the parent never blocks forever on wait4.
func waitWithWatchdog(cmd *exec.Cmd, timeout time.Duration) (*ExitStatus, error) {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-time.After(timeout):
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
		waitErr = <-done
	}

	state := cmd.ProcessState
	if state == nil {
		return nil, cerrors.Wrap(waitErr, cerrors.ErrSandboxRuntime, "wait4")
	}

	status := &ExitStatus{}
	rusage, _ := state.SysUsage().(*syscall.Rusage)
	if rusage != nil {
		status.TimeUsedMs = rusageMillis(rusage)
		status.MemoryUsedKB = rusage.Maxrss
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok {
		status.RawStatus = int64(ws)
		if ws.Exited() {
			status.ExitCode = int64(ws.ExitStatus())
		}
		if ws.Signaled() {
			status.Signal = int64(ws.Signal())
		} else if ws.Stopped() {
			status.Signal = int64(ws.StopSignal())
		}
	}
	return status, nil
}

// rusageMillis sums user and system CPU time from rusage into whole
// milliseconds.
func rusageMillis(r *syscall.Rusage) int64 {
	userMs := r.Utime.Sec*1000 + int64(r.Utime.Usec)/1000
	sysMs := r.Stime.Sec*1000 + int64(r.Stime.Usec)/1000
	return userMs + sysMs
}

// syncPipe carries the SandboxConfig handoff and the one-byte release
// handshake from the parent (writer) to the sandboxed child (reader).
type syncPipe struct {
	mu    sync.Mutex
	write *os.File // held by the parent
	read  *os.File // inherited by the child via ExtraFiles
}

func newSyncPipe() (*syncPipe, error) {
	fds := make([]int, 2)
	if err := syscall.Pipe(fds); err != nil {
		return nil, err
	}
	return &syncPipe{
		read:  os.NewFile(uintptr(fds[0]), "river-syncpipe-r"),
		write: os.NewFile(uintptr(fds[1]), "river-syncpipe-w"),
	}, nil
}

func (p *syncPipe) childFile() *os.File { return p.read }

// sendConfig writes a 4-byte big-endian length prefix followed by the
// JSON-encoded config.
func (p *syncPipe) sendConfig(config *SandboxConfig) error {
	data, err := json.Marshal(config)
	if err != nil {
		return err
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := p.write.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err = p.write.Write(data)
	return err
}

func (p *syncPipe) signal() error {
	_, err := p.write.Write([]byte{0})
	return err
}

func (p *syncPipe) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.write.Close()
	p.read.Close()
}
