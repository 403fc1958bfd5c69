// Package config loads the judge's static configuration: the data/judge
// directories, cgroup/rootfs settings, and the per-language command table
// the verdict pipeline consults but never mutates.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"river-go/cerrors"
)

// LanguageEntry is the read-only, user-provided command table for one
// supported language. Fields mirror spec §3's LanguageEntry exactly.
type LanguageEntry struct {
	CodeFile   string `yaml:"code_file"`
	CompileCmd string `yaml:"compile_cmd,omitempty"`
	RunCmd     string `yaml:"run_cmd"`
	Version    string `yaml:"version,omitempty"`
}

// SkipsCompile reports whether this language has no compile step
// (e.g. interpreted languages): the pipeline should go straight to
// CompileSuccess without invoking the Sandbox. Carried over from
// the original judger's Node-language shortcut, generalized to any
// language whose compile_cmd is empty.
func (l LanguageEntry) SkipsCompile() bool {
	return strings.TrimSpace(l.CompileCmd) == ""
}

// JudgeConfig is the top-level configuration loaded once at startup and
// treated as read-only for the lifetime of the process.
type JudgeConfig struct {
	DataDir   string                   `yaml:"data_dir"`
	JudgeDir  string                   `yaml:"judge_dir"`
	UseCgroup bool                     `yaml:"cgroup"`
	Rootfs    string                   `yaml:"rootfs"`
	CPULimit  int                      `yaml:"cpu_limit,omitempty"`
	Languages map[string]LanguageEntry `yaml:"languages"`
}

// TestCase is one input/answer pair discovered under DataDir.
type TestCase struct {
	In  string
	Out string
}

// Load reads and validates the YAML judge config at path.
func Load(path string) (*JudgeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.WrapDetail(err, cerrors.ErrConfig, "load", "read config file")
	}

	var cfg JudgeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cerrors.WrapDetail(err, cerrors.ErrConfig, "load", "parse config yaml")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.CPULimit <= 0 {
		cfg.CPULimit = runtime.NumCPU()
	}

	return &cfg, nil
}

func (c *JudgeConfig) validate() error {
	if c.DataDir == "" {
		return cerrors.New(cerrors.ErrConfig, "validate", "data_dir is required")
	}
	if c.JudgeDir == "" {
		return cerrors.New(cerrors.ErrConfig, "validate", "judge_dir is required")
	}
	if len(c.Languages) == 0 {
		return cerrors.New(cerrors.ErrConfig, "validate", "languages table must not be empty")
	}
	for name, entry := range c.Languages {
		if entry.CodeFile == "" {
			return cerrors.New(cerrors.ErrConfig, "validate",
				fmt.Sprintf("language %q missing code_file", name))
		}
		if entry.RunCmd == "" {
			return cerrors.New(cerrors.ErrConfig, "validate",
				fmt.Sprintf("language %q missing run_cmd", name))
		}
	}
	return nil
}

// LanguageConfig returns the language table as a stable, name-sorted slice,
// suitable for serving over the LanguageConfig RPC.
func (c *JudgeConfig) LanguageConfig() []LanguageEntry {
	names := make([]string, 0, len(c.Languages))
	for name := range c.Languages {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]LanguageEntry, 0, len(names))
	for _, name := range names {
		out = append(out, c.Languages[name])
	}
	return out
}

// Language looks up a single language entry by name.
func (c *JudgeConfig) Language(name string) (LanguageEntry, bool) {
	entry, ok := c.Languages[name]
	return entry, ok
}

// ListTestCases scans <data_dir>/<problem_id> for data<N>.in / data<N>.out
// pairs and returns them in ascending N order.
func ListTestCases(dataDir, problemID string) ([]TestCase, error) {
	dir := filepath.Join(dataDir, problemID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, cerrors.WrapDetail(err, cerrors.ErrIO, "list test cases", dir)
	}

	seen := map[string]bool{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".in") {
			seen[strings.TrimSuffix(name, ".in")] = true
		}
	}

	stems := make([]string, 0, len(seen))
	for stem := range seen {
		stems = append(stems, stem)
	}
	sort.Slice(stems, func(i, j int) bool {
		a, b := stems[i], stems[j]
		pa, pb := strings.TrimRight(a, "0123456789"), strings.TrimRight(b, "0123456789")
		if pa != pb {
			return pa < pb
		}
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})

	cases := make([]TestCase, 0, len(stems))
	for _, stem := range stems {
		in := filepath.Join(dir, stem+".in")
		out := filepath.Join(dir, stem+".out")
		if _, err := os.Stat(out); err != nil {
			continue
		}
		cases = append(cases, TestCase{In: in, Out: out})
	}
	return cases, nil
}
