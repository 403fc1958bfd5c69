package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"river-go/cerrors"
)

// cgroupMemoryRoot and cgroupPidsRoot are the cgroup v1 controller mounts
// the judge attaches CgroupHandle directories beneath.
const (
	cgroupMemoryRoot = "/sys/fs/cgroup/memory"
	cgroupPidsRoot    = "/sys/fs/cgroup/pids"
)

// memorySlackMultiplier converts a configured memory limit in kilobytes
// to the byte value written to memory.limit_in_bytes: 1536 instead of the
// naive 1024, giving the kernel 1.5x slack so the OOM killer fires
// slightly above the advertised limit. This lets the verdict layer read
// a clean MemoryLimitExceeded from the cgroup's usage counter instead of
// an ambiguous SIGKILL racing the process's own allocation.
const memorySlackMultiplier = 1536

// validCgroupKey matches a bare cgroup control file name, guarding
// CgroupHandle.Set against path traversal through a crafted key.
var validCgroupKey = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z][a-zA-Z0-9_]*)*$`)

// CgroupHandle owns a uniquely-named directory beneath the memory (and
// optionally pids) cgroup v1 controller mount for the lifetime of one
// sandboxed run.
type CgroupHandle struct {
	memoryPath string
	pidsPath   string
}

// NewCgroupHandle creates a cgroup directory named id beneath the memory
// controller, and beneath the pids controller if withPids is true.
func NewCgroupHandle(id string, withPids bool) (*CgroupHandle, error) {
	memoryPath := filepath.Join(cgroupMemoryRoot, "river", id)
	if err := os.MkdirAll(memoryPath, 0755); err != nil {
		return nil, cerrors.WrapDetail(err, cerrors.ErrSandboxSetup, "cgroup create", memoryPath)
	}

	h := &CgroupHandle{memoryPath: memoryPath}

	if withPids {
		pidsPath := filepath.Join(cgroupPidsRoot, "river", id)
		if err := os.MkdirAll(pidsPath, 0755); err != nil {
			os.Remove(memoryPath)
			return nil, cerrors.WrapDetail(err, cerrors.ErrSandboxSetup, "cgroup create", pidsPath)
		}
		h.pidsPath = pidsPath
	}

	return h, nil
}

// Attach writes pid to cgroup.procs in every controller this handle owns.
func (h *CgroupHandle) Attach(pid int) error {
	if err := h.set(h.memoryPath, "cgroup.procs", strconv.Itoa(pid)); err != nil {
		return err
	}
	if h.pidsPath != "" {
		if err := h.set(h.pidsPath, "cgroup.procs", strconv.Itoa(pid)); err != nil {
			return err
		}
	}
	return nil
}

// SetMemoryLimitKB writes memory.limit_in_bytes, applying the judge's
// slack multiplier per spec.
func (h *CgroupHandle) SetMemoryLimitKB(limitKB int64) error {
	if limitKB <= 0 {
		return nil
	}
	bytes := limitKB * memorySlackMultiplier
	return h.set(h.memoryPath, "memory.limit_in_bytes", strconv.FormatInt(bytes, 10))
}

// SetPidsMax writes pids.max, if this handle was created with a pids
// controller.
func (h *CgroupHandle) SetPidsMax(limit int64) error {
	if h.pidsPath == "" || limit <= 0 {
		return nil
	}
	return h.set(h.pidsPath, "pids.max", strconv.FormatInt(limit, 10))
}

// MemoryMaxUsageKB reads memory.max_usage_in_bytes and converts to KiB.
func (h *CgroupHandle) MemoryMaxUsageKB() (int64, error) {
	data, err := h.read(h.memoryPath, "memory.max_usage_in_bytes")
	if err != nil {
		return 0, err
	}
	bytes, err := strconv.ParseInt(strings.TrimSpace(data), 10, 64)
	if err != nil {
		return 0, cerrors.WrapDetail(err, cerrors.ErrSandboxRuntime, "parse memory.max_usage_in_bytes", data)
	}
	return bytes / 1024, nil
}

// set validates key and writes value to the control file dir/key.
func (h *CgroupHandle) set(dir, key, value string) error {
	if err := validateCgroupKey(key); err != nil {
		return cerrors.WrapDetail(err, cerrors.ErrSandboxSetup, "cgroup set", key)
	}
	path := filepath.Join(dir, key)
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return cerrors.WrapDetail(err, cerrors.ErrSandboxSetup, "cgroup write", path)
	}
	return nil
}

// read validates key and reads the control file dir/key.
func (h *CgroupHandle) read(dir, key string) (string, error) {
	if err := validateCgroupKey(key); err != nil {
		return "", cerrors.WrapDetail(err, cerrors.ErrSandboxRuntime, "cgroup read", key)
	}
	path := filepath.Join(dir, key)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", cerrors.WrapDetail(err, cerrors.ErrSandboxRuntime, "cgroup read", path)
	}
	return string(data), nil
}

// Destroy removes the cgroup directories. Safe to call when the cgroup
// is already empty; the caller must ensure no process remains attached.
func (h *CgroupHandle) Destroy() error {
	var firstErr error
	if h.pidsPath != "" {
		if err := os.Remove(h.pidsPath); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := os.Remove(h.memoryPath); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		return cerrors.WrapDetail(firstErr, cerrors.ErrSandboxRuntime, "cgroup destroy", h.memoryPath)
	}
	return nil
}

// validateCgroupKey guards against path traversal through a crafted
// control file name.
func validateCgroupKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty cgroup key")
	}
	if strings.ContainsAny(key, "/\\") {
		return fmt.Errorf("cgroup key contains path separator")
	}
	if key == "." || key == ".." {
		return fmt.Errorf("cgroup key is a relative path component")
	}
	if !validCgroupKey.MatchString(key) {
		return fmt.Errorf("cgroup key %q does not match expected pattern", key)
	}
	return nil
}
