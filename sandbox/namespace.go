package sandbox

import "syscall"

// CgroupNamespace (CLONE_NEWCGROUP) has no constant in the syscall
// package on every supported arch; it's stable across Linux and safe to
// hardcode.
const cloneNewCgroup = 0x02000000

// namespaceCloneFlags returns the fixed set of namespaces the sandbox
// child is cloned into: new UTS, network, mount, IPC, PID, and cgroup
// namespaces. A new user namespace is deliberately never used — the
// judge runs with privilege and drops uid/gid after chroot instead.
func namespaceCloneFlags() uintptr {
	return syscall.CLONE_NEWNS |
		syscall.CLONE_NEWUTS |
		syscall.CLONE_NEWIPC |
		syscall.CLONE_NEWPID |
		syscall.CLONE_NEWNET |
		cloneNewCgroup
}

// setHostname sets the hostname in the UTS namespace to a fixed,
// non-identifying value.
func setHostname(name string) error {
	return syscall.Sethostname([]byte(name))
}

// setDomainname sets the domain name in the UTS namespace to a fixed,
// non-identifying value.
func setDomainname(name string) error {
	return syscall.Setdomainname([]byte(name))
}
