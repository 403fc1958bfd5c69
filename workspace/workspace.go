// Package workspace manages the per-submission temporary directory that
// the sandbox bind-mounts as the judged program's working area.
package workspace

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"river-go/cerrors"
)

const (
	StdinFile  = "stdin.txt"
	StdoutFile = "stdout.txt"
	StderrFile = "stderr.txt"
	ResultFile = "result.txt"
)

// Workspace is a unique directory under a configured judge root, holding
// the source file, compiled artifacts, and the stdin/stdout/stderr/result
// files for one submission. Exclusively owns its directory: nothing else
// creates or removes it.
type Workspace struct {
	dir string
}

// Manager creates and tears down Workspace directories beneath a fixed
// judge root.
type Manager struct {
	root string
}

// NewManager returns a Manager rooted at root. The root need not exist
// yet: Create makes it, along with the workspace directory, if missing.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Create makes a new uniquely-named directory beneath the manager's root
// and returns a Workspace bound to it.
func (m *Manager) Create() (*Workspace, error) {
	name := uuid.New().String()
	dir := filepath.Join(m.root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, cerrors.WrapDetail(err, cerrors.ErrWorkspace, "create", dir)
	}
	return &Workspace{dir: dir}, nil
}

// Path returns the workspace's directory.
func (w *Workspace) Path() string {
	return w.dir
}

// File joins name onto the workspace directory.
func (w *Workspace) File(name string) string {
	return filepath.Join(w.dir, name)
}

// SourcePath returns the path where the submission source should be
// written, named per the language's configured code file.
func (w *Workspace) SourcePath(codeFile string) string {
	return w.File(codeFile)
}

// ClearRunArtifacts removes stdout.txt, stderr.txt, and result.txt from a
// prior run so a fresh test case starts clean. Missing files are not an
// error.
func (w *Workspace) ClearRunArtifacts() error {
	for _, name := range []string{StdoutFile, StderrFile, ResultFile} {
		if err := os.Remove(w.File(name)); err != nil && !os.IsNotExist(err) {
			return cerrors.WrapDetail(err, cerrors.ErrWorkspace, "clear run artifacts", w.File(name))
		}
	}
	return nil
}

// Remove recursively deletes the workspace directory. Safe to call more
// than once.
func (w *Workspace) Remove() error {
	if err := os.RemoveAll(w.dir); err != nil {
		return cerrors.WrapDetail(err, cerrors.ErrWorkspace, "remove", w.dir)
	}
	return nil
}
