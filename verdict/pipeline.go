package verdict

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/semaphore"

	"river-go/cerrors"
	"river-go/compare"
	"river-go/config"
	"river-go/sandbox"
	"river-go/workspace"
)

// JudgeType selects how a run step's output is scored.
type JudgeType int

const (
	Standard JudgeType = iota
	Special
)

// CompileRequest is the compile-step request variant.
type CompileRequest struct {
	Language string
	Code     string
}

// JudgeRequest is the run-step request variant.
type JudgeRequest struct {
	InFile, OutFile, SpjFile   string
	TimeLimitMs, MemoryLimitKB int64
	JudgeType                  JudgeType
}

type pipelineState int

const (
	stateInit pipelineState = iota
	stateCompiled
)

// compileBudgetMs and compileMemoryKB bound the compile step
// independently of any per-submission run limit.
const (
	compileBudgetMs = 8000
	compileMemoryKB = 1 << 20 // 1 GiB
	captureLimit    = 2048
)

// vmLanguages names the virtual-machine-hosted language runtimes, which
// reserve address space far beyond what they touch. Run sets
// SkipAddressSpaceLimit for them, so no RLIMIT_AS/RLIMIT_DATA cap is
// applied while cgroup memory accounting stays at the real configured
// limit and RSS remains the meaningful reading. vmLanguageAddressSpaceKB
// is not passed to the sandbox by any step.
const vmLanguageAddressSpaceKB = 1 << 20 // 1 GiB

var vmLanguages = map[string]bool{
	"java": true, "go": true, "js": true, "javascript": true,
	"ts": true, "typescript": true, "csharp": true, "c#": true,
}

// EmitFunc receives each event in order: Pending, Running, then a
// terminal result.
type EmitFunc func(Verdict)

// Pipeline drives one submission's stream: compile once, then any
// number of run-and-judge steps, gated by a process-wide CPU-count
// semaphore.
type Pipeline struct {
	cfg     *config.JudgeConfig
	sem     *semaphore.Weighted
	selfExe string
	ws      *workspace.Workspace

	state          pipelineState
	language       string
	languageEntry  config.LanguageEntry
	compileSuccess bool
}

// New creates a Pipeline with a freshly-created Workspace. The caller
// must call Close when the stream ends.
func New(cfg *config.JudgeConfig, sem *semaphore.Weighted, selfExe string, wsManager *workspace.Manager) (*Pipeline, error) {
	ws, err := wsManager.Create()
	if err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg, sem: sem, selfExe: selfExe, ws: ws}, nil
}

// Close removes the pipeline's workspace. Safe to call once at stream
// end, on every exit path.
func (p *Pipeline) Close() error {
	return p.ws.Remove()
}

// SubmissionID returns the workspace's unique directory name, used to tag
// every log line the stream produces.
func (p *Pipeline) SubmissionID() string {
	return filepath.Base(p.ws.Path())
}

// Compile runs the compile step: writes source, invokes Sandbox with
// the language's compile command, and emits Pending, Running, then
// CompileSuccess or CompileError.
func (p *Pipeline) Compile(ctx context.Context, req CompileRequest, emit EmitFunc) error {
	// The first CompileData locks the language for the rest of the
	// stream; later CompileData messages recompile under that same
	// language regardless of what they name.
	language := req.Language
	if p.language != "" {
		language = p.language
	}

	entry, ok := p.cfg.Language(language)
	if !ok {
		return p.fail(emit, cerrors.New(cerrors.ErrConfig, "compile", fmt.Sprintf("unknown language %q", language)))
	}
	p.language = language
	p.languageEntry = entry
	p.compileSuccess = false
	p.state = stateInit

	emit(pending())

	sourcePath := p.ws.SourcePath(entry.CodeFile)
	if err := os.WriteFile(sourcePath, []byte(req.Code), 0644); err != nil {
		return p.fail(emit, cerrors.WrapDetail(err, cerrors.ErrIO, "write source", sourcePath))
	}

	if entry.SkipsCompile() {
		p.compileSuccess = true
		p.state = stateCompiled
		emit(running())
		emit(compileSuccess())
		return nil
	}

	emit(running())

	if err := p.acquire(ctx); err != nil {
		return p.fail(emit, err)
	}
	defer p.sem.Release(1)

	status, err := sandbox.Spawn(p.selfExe, p.ws.Path(), &sandbox.SandboxConfig{
		Command:       entry.CompileCmd,
		EnvPolicy:     sandbox.EnvInherit,
		Workdir:       p.ws.Path(),
		Rootfs:        p.cfg.Rootfs,
		ResultFile:    p.ws.File(workspace.ResultFile),
		StdinPath:     sandbox.StdinSentinel,
		StdoutPath:    p.ws.File(workspace.StdoutFile),
		StderrPath:    p.ws.File(workspace.StderrFile),
		TimeLimitMs:   compileBudgetMs,
		MemoryLimitKB: compileMemoryKB,
		UseCgroup:     p.cfg.UseCgroup,
	})
	if err != nil {
		return p.fail(emit, err)
	}

	if status.Signal != 0 || status.ExitCode != 0 {
		// A compile that hit its own time or memory budget is reported
		// with an empty message; other failures carry the compiler output.
		message := ""
		if status.TimeUsedMs <= compileBudgetMs && status.MemoryUsedKB <= compileMemoryKB {
			message = p.captureOutput()
		}
		emit(compileError(message))
		return nil
	}

	p.compileSuccess = true
	p.state = stateCompiled
	emit(compileSuccess())
	return nil
}

// Run executes one test case: clears prior run artifacts, invokes
// Sandbox with the language's run command and the test's limits, and
// emits Pending, Running, then the discriminated verdict.
func (p *Pipeline) Run(ctx context.Context, req JudgeRequest, emit EmitFunc) error {
	if p.state != stateCompiled || !p.compileSuccess {
		emit(systemError("not compiled"))
		return nil
	}

	emit(pending())
	emit(running())

	if err := p.ws.ClearRunArtifacts(); err != nil {
		return p.fail(emit, err)
	}

	if err := p.acquire(ctx); err != nil {
		return p.fail(emit, err)
	}

	skipAS := vmLanguages[p.language]
	status, err := sandbox.Spawn(p.selfExe, p.ws.Path(), &sandbox.SandboxConfig{
		Command:               p.languageEntry.RunCmd,
		EnvPolicy:             sandbox.EnvEmpty,
		Workdir:               p.ws.Path(),
		Rootfs:                p.cfg.Rootfs,
		ResultFile:            p.ws.File(workspace.ResultFile),
		StdinPath:             req.InFile,
		StdoutPath:            p.ws.File(workspace.StdoutFile),
		StderrPath:            p.ws.File(workspace.StderrFile),
		TimeLimitMs:           req.TimeLimitMs,
		MemoryLimitKB:         req.MemoryLimitKB,
		UseCgroup:             p.cfg.UseCgroup,
		SkipAddressSpaceLimit: skipAS,
	})
	p.sem.Release(1)
	if err != nil {
		return p.fail(emit, err)
	}

	emit(p.discriminate(status, req))
	return nil
}

// discriminate applies the run-step verdict ordering from the judge's
// component design: time, then memory, then signal, then exit code,
// then output comparison (or special judge).
func (p *Pipeline) discriminate(status *sandbox.ExitStatus, req JudgeRequest) Verdict {
	base := Verdict{TimeUsedMs: status.TimeUsedMs, MemoryUsedKB: status.MemoryUsedKB}

	switch {
	case status.TimeUsedMs > req.TimeLimitMs:
		base.Code = TimeLimitExceeded
		return base
	case status.MemoryUsedKB > req.MemoryLimitKB:
		base.Code = MemoryLimitExceeded
		return base
	case status.Signal != 0:
		base.Code = RuntimeError
		base.Message = fmt.Sprintf("Program was interrupted by signal: %d", status.Signal)
		return base
	case status.ExitCode != 0:
		base.Code = RuntimeError
		base.Message = fmt.Sprintf("Exceptional program return code: %d", status.ExitCode)
		return base
	}

	switch req.JudgeType {
	case Standard:
		return p.judgeStandard(base, req)
	case Special:
		return p.judgeSpecial(base, req)
	default:
		base.Code = SystemError
		base.Message = "Unknown JudgeType"
		return base
	}
}

func (p *Pipeline) judgeStandard(base Verdict, req JudgeRequest) Verdict {
	out, err := os.ReadFile(p.ws.File(workspace.StdoutFile))
	if err != nil {
		base.Code = SystemError
		base.Message = err.Error()
		return base
	}
	ans, err := os.ReadFile(req.OutFile)
	if err != nil {
		base.Code = SystemError
		base.Message = err.Error()
		return base
	}
	if compare.Compare(out, ans) == compare.Accepted {
		base.Code = Accepted
	} else {
		base.Code = WrongAnswer
	}
	return base
}

// judgeSpecial stages the special-judge binary and its inputs inside
// the workspace, runs it in a fresh sandbox under conservative limits,
// and maps its exit code: 0 ⇒ Accepted, nonzero ⇒ WrongAnswer.
func (p *Pipeline) judgeSpecial(base Verdict, req JudgeRequest) Verdict {
	const (
		spjTimeLimitMs   = 5000
		spjMemoryLimitKB = 1 << 20
	)

	spjPath := p.ws.File("spj")
	if err := copyFile(req.SpjFile, spjPath, 0755); err != nil {
		base.Code = SystemError
		base.Message = fmt.Sprintf("stage special judge: %v", err)
		return base
	}
	spjInput := p.ws.File("spj_input.txt")
	if err := copyFile(req.InFile, spjInput, 0644); err != nil {
		base.Code = SystemError
		base.Message = fmt.Sprintf("stage spj input: %v", err)
		return base
	}
	spjAnswer := p.ws.File("spj_answer.txt")
	if err := copyFile(req.OutFile, spjAnswer, 0644); err != nil {
		base.Code = SystemError
		base.Message = fmt.Sprintf("stage spj answer: %v", err)
		return base
	}
	userOutput := p.ws.File(workspace.StdoutFile)

	command := fmt.Sprintf("%s %s %s %s", spjPath, spjInput, userOutput, spjAnswer)
	status, err := sandbox.Spawn(p.selfExe, p.ws.Path()+"-spj", &sandbox.SandboxConfig{
		Command:       command,
		EnvPolicy:     sandbox.EnvEmpty,
		Workdir:       p.ws.Path(),
		Rootfs:        p.cfg.Rootfs,
		ResultFile:    p.ws.File("spj_result.txt"),
		StdinPath:     sandbox.StdinSentinel,
		StdoutPath:    p.ws.File("spj_stdout.txt"),
		StderrPath:    p.ws.File("spj_stderr.txt"),
		TimeLimitMs:   spjTimeLimitMs,
		MemoryLimitKB: spjMemoryLimitKB,
		UseCgroup:     p.cfg.UseCgroup,
	})
	if err != nil {
		base.Code = SystemError
		base.Message = fmt.Sprintf("special judge: %v", err)
		return base
	}

	if status.ExitCode == 0 {
		base.Code = Accepted
	} else {
		base.Code = WrongAnswer
	}
	base.Message = p.captureSpecialJudgeOutput()
	return base
}

// captureOutput reads up to captureLimit bytes each from stdout and
// stderr and concatenates them, for a CompileError message.
func (p *Pipeline) captureOutput() string {
	return concatCapture(p.ws.File(workspace.StdoutFile), p.ws.File(workspace.StderrFile))
}

func (p *Pipeline) captureSpecialJudgeOutput() string {
	return concatCapture(p.ws.File("spj_stdout.txt"), p.ws.File("spj_stderr.txt"))
}

func concatCapture(paths ...string) string {
	var out string
	for _, path := range paths {
		data, err := readCapped(path, captureLimit)
		if err != nil {
			continue
		}
		out += string(data)
	}
	return out
}

func readCapped(path string, limit int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, limit)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return nil, err
	}
	return buf[:n], nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, mode)
}

// acquire takes the process-wide CPU-count permit, just before invoking
// Sandbox.
func (p *Pipeline) acquire(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return cerrors.Wrap(err, cerrors.ErrSandboxRuntime, "acquire cpu permit")
	}
	return nil
}

func (p *Pipeline) fail(emit EmitFunc, err error) error {
	emit(systemError(err.Error()))
	return err
}

