package sandbox

import "syscall"

// nobodyUID is the conventional unprivileged uid/gid the sandbox drops
// into after chroot.
const nobodyUID = 65534

// execProcess executes a process; does not return on success.
func execProcess(path string, args []string, env []string) error {
	return syscall.Exec(path, args, env)
}

// setUid sets the user ID.
func setUid(uid int) error {
	return syscall.Setuid(uid)
}

// setGid sets the group ID.
func setGid(gid int) error {
	return syscall.Setgid(gid)
}

// dropPrivileges sets gid then uid to nobody, in that order: gid must be
// dropped first or the process loses the privilege needed to change it.
func dropPrivileges() error {
	if err := setGid(nobodyUID); err != nil {
		return err
	}
	return setUid(nobodyUID)
}
