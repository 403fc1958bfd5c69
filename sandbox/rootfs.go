package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

const (
	msBind    = syscall.MS_BIND
	msRec     = syscall.MS_REC
	msPrivate = syscall.MS_PRIVATE
)

// sandboxTmp is the well-known mount point inside rootfs that workdir is
// bind-mounted onto.
const sandboxTmp = "/tmp"

// makePrivate makes the mount tree at path private, preventing mount
// propagation back to the host. Step 2 of the child setup order.
func makePrivate(path string) error {
	return syscall.Mount("", path, "", msRec|msPrivate, "")
}

// bindMountWorkdir bind-mounts workdir onto <rootfs>/tmp as a private
// mount. Step 3 of the child setup order.
func bindMountWorkdir(workdir, rootfs string) error {
	target := filepath.Join(rootfs, "tmp")
	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("mkdir bind target: %w", err)
	}
	if err := syscall.Mount(workdir, target, "", msBind, ""); err != nil {
		return fmt.Errorf("bind mount workdir: %w", err)
	}
	if err := syscall.Mount("", target, "", msPrivate, ""); err != nil {
		return fmt.Errorf("make bind mount private: %w", err)
	}
	return nil
}

// chrootInto performs chdir(rootfs) -> chroot(".") -> chdir("/tmp"), step 4
// of the child setup order. Deliberately chroot, not pivot_root: the judge
// has no need to retain access to the old root from inside the sandbox,
// and the simpler flow avoids managing an .old_root mount teardown.
func chrootInto(rootfs string) error {
	if err := syscall.Chdir(rootfs); err != nil {
		return fmt.Errorf("chdir rootfs: %w", err)
	}
	if err := syscall.Chroot("."); err != nil {
		return fmt.Errorf("chroot: %w", err)
	}
	if err := syscall.Chdir(sandboxTmp); err != nil {
		return fmt.Errorf("chdir tmp: %w", err)
	}
	return nil
}
