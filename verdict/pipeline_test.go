package verdict

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sync/semaphore"

	"river-go/config"
	"river-go/sandbox"
	"river-go/workspace"
)

func newTestPipeline(t *testing.T, cfg *config.JudgeConfig) *Pipeline {
	t.Helper()
	root := t.TempDir()
	mgr := workspace.NewManager(root)
	sem := semaphore.NewWeighted(2)
	p, err := New(cfg, sem, "/usr/bin/river-go", mgr)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func baseConfig() *config.JudgeConfig {
	return &config.JudgeConfig{
		DataDir:  "/data",
		JudgeDir: "/judge",
		Rootfs:   "/srv/rootfs",
		Languages: map[string]config.LanguageEntry{
			"python": {CodeFile: "main.py", RunCmd: "/usr/bin/python3 main.py"},
			"c":      {CodeFile: "main.c", CompileCmd: "/bin/gcc main.c -o a.out", RunCmd: "./a.out"},
		},
	}
}

func TestCompile_UnknownLanguage(t *testing.T) {
	p := newTestPipeline(t, baseConfig())
	var events []Verdict
	err := p.Compile(context.Background(), CompileRequest{Language: "cobol", Code: "x"}, func(v Verdict) {
		events = append(events, v)
	})
	if err == nil {
		t.Fatal("expected error for unknown language")
	}
	if len(events) != 1 || events[0].Code != SystemError {
		t.Errorf("events = %+v, want single SystemError", events)
	}
}

func TestCompile_SkipsCompileForInterpretedLanguage(t *testing.T) {
	p := newTestPipeline(t, baseConfig())
	var events []Verdict
	err := p.Compile(context.Background(), CompileRequest{Language: "python", Code: "print('hi')"}, func(v Verdict) {
		events = append(events, v)
	})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %+v, want [Pending, Running, CompileSuccess]", events)
	}
	if events[0].Code != Pending || events[1].Code != Running || events[2].Code != CompileSuccess {
		t.Errorf("events = %+v", events)
	}
	if !p.compileSuccess {
		t.Error("compileSuccess should be true after a compile-skipping language")
	}

	source, err := os.ReadFile(p.ws.SourcePath("main.py"))
	if err != nil {
		t.Fatalf("source not written: %v", err)
	}
	if string(source) != "print('hi')" {
		t.Errorf("source = %q", source)
	}
}

func TestCompile_LanguageLockedAfterFirstCall(t *testing.T) {
	p := newTestPipeline(t, baseConfig())
	var events []Verdict
	emit := func(v Verdict) { events = append(events, v) }

	if err := p.Compile(context.Background(), CompileRequest{Language: "python", Code: "a"}, emit); err != nil {
		t.Fatalf("first Compile() error = %v", err)
	}
	if err := p.Compile(context.Background(), CompileRequest{Language: "c", Code: "b"}, emit); err != nil {
		t.Fatalf("second Compile() error = %v", err)
	}
	if p.language != "python" {
		t.Errorf("language = %q, want locked to python", p.language)
	}
}

func TestRun_RejectsBeforeCompile(t *testing.T) {
	p := newTestPipeline(t, baseConfig())
	var events []Verdict
	err := p.Run(context.Background(), JudgeRequest{TimeLimitMs: 1000, MemoryLimitKB: 65536}, func(v Verdict) {
		events = append(events, v)
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(events) != 1 || events[0].Code != SystemError || events[0].Message != "not compiled" {
		t.Errorf("events = %+v, want single SystemError(\"not compiled\")", events)
	}
}

func TestDiscriminate_Ordering(t *testing.T) {
	p := newTestPipeline(t, baseConfig())
	req := JudgeRequest{TimeLimitMs: 1000, MemoryLimitKB: 65536, JudgeType: Standard}

	tests := []struct {
		name   string
		status *sandbox.ExitStatus
		want   Code
	}{
		{"time limit wins over everything", &sandbox.ExitStatus{TimeUsedMs: 2000, MemoryUsedKB: 999999, Signal: 9, ExitCode: 7}, TimeLimitExceeded},
		{"memory limit before signal", &sandbox.ExitStatus{TimeUsedMs: 500, MemoryUsedKB: 999999, Signal: 9, ExitCode: 7}, MemoryLimitExceeded},
		{"signal before exit code", &sandbox.ExitStatus{TimeUsedMs: 500, MemoryUsedKB: 100, Signal: 9, ExitCode: 7}, RuntimeError},
		{"exit code alone", &sandbox.ExitStatus{TimeUsedMs: 500, MemoryUsedKB: 100, Signal: 0, ExitCode: 7}, RuntimeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.discriminate(tt.status, req)
			if got.Code != tt.want {
				t.Errorf("discriminate() = %v, want %v", got.Code, tt.want)
			}
		})
	}
}

func TestDiscriminate_UnknownJudgeType(t *testing.T) {
	p := newTestPipeline(t, baseConfig())
	status := &sandbox.ExitStatus{TimeUsedMs: 1, MemoryUsedKB: 1}
	got := p.discriminate(status, JudgeRequest{TimeLimitMs: 1000, MemoryLimitKB: 65536, JudgeType: JudgeType(99)})
	if got.Code != SystemError || got.Message != "Unknown JudgeType" {
		t.Errorf("discriminate() = %+v", got)
	}
}

func TestJudgeStandard_AcceptedAndWrongAnswer(t *testing.T) {
	p := newTestPipeline(t, baseConfig())

	if err := os.WriteFile(p.ws.File(workspace.StdoutFile), []byte("Hello\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ansPath := filepath.Join(t.TempDir(), "expected.out")
	if err := os.WriteFile(ansPath, []byte("Hello\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := Verdict{}
	got := p.judgeStandard(base, JudgeRequest{OutFile: ansPath})
	if got.Code != Accepted {
		t.Errorf("judgeStandard() = %v, want Accepted", got.Code)
	}

	if err := os.WriteFile(ansPath, []byte("World\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got = p.judgeStandard(base, JudgeRequest{OutFile: ansPath})
	if got.Code != WrongAnswer {
		t.Errorf("judgeStandard() = %v, want WrongAnswer", got.Code)
	}
}

func TestConcatCapture_MissingFilesIgnored(t *testing.T) {
	if got := concatCapture("/no/such/file/a", "/no/such/file/b"); got != "" {
		t.Errorf("concatCapture() = %q, want empty", got)
	}
}
