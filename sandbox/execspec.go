package sandbox

import (
	"strings"

	"river-go/cerrors"
)

// EnvPolicy controls what environment a sandboxed process sees.
type EnvPolicy int

const (
	// EnvEmpty gives the process no environment variables at all.
	EnvEmpty EnvPolicy = iota
	// EnvInherit passes the judge service's own environment through.
	EnvInherit
)

// ExecSpec is the fully-resolved description of the single process a
// Sandbox will fork, configure, and exec.
type ExecSpec struct {
	Path string
	Args []string
	Env  []string
}

// BuildExecSpec parses cmd (a shell-style space-separated command line,
// with no quoting or escaping support) into an ExecSpec, resolving its
// environment according to envPolicy and hostEnv (the judge service's
// own os.Environ(), passed in so callers can exercise this
// deterministically in tests).
func BuildExecSpec(cmd string, envPolicy EnvPolicy, hostEnv []string) (*ExecSpec, error) {
	if strings.ContainsRune(cmd, 0) {
		return nil, cerrors.New(cerrors.ErrSandboxSetup, "build exec spec", "command string contains a NUL byte")
	}
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return nil, cerrors.New(cerrors.ErrSandboxSetup, "build exec spec", "command string is empty")
	}

	var env []string
	switch envPolicy {
	case EnvInherit:
		env = append(env, hostEnv...)
	case EnvEmpty:
		env = nil
	}

	return &ExecSpec{
		Path: fields[0],
		Args: fields,
		Env:  env,
	}, nil
}
