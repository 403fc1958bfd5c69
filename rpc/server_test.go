package rpc

import (
	"testing"

	"river-go/rpc/river"
	"river-go/verdict"
)

func TestToResponse_StatusEvents(t *testing.T) {
	for _, code := range []verdict.Code{verdict.Pending, verdict.Running} {
		resp := toResponse(verdict.Verdict{Code: code})
		if resp.Status == nil {
			t.Fatalf("code %v: expected Status set", code)
		}
	}
}

func TestToResponse_TerminalEvents(t *testing.T) {
	v := verdict.Verdict{Code: verdict.Accepted, TimeUsedMs: 12, MemoryUsedKB: 34, Message: "ok"}
	resp := toResponse(v)
	if resp.Status != nil {
		t.Fatal("terminal response should not carry Status")
	}
	if resp.Code != river.VerdictAccepted || resp.TimeUsedMs != 12 || resp.MemoryUsedKb != 34 || resp.Outmsg != "ok" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestWireCodeFor_Mapping(t *testing.T) {
	tests := []struct {
		in   verdict.Code
		want river.VerdictCode
	}{
		{verdict.CompileSuccess, river.VerdictCompileSuccess},
		{verdict.CompileError, river.VerdictCompileError},
		{verdict.Accepted, river.VerdictAccepted},
		{verdict.WrongAnswer, river.VerdictWrongAnswer},
		{verdict.TimeLimitExceeded, river.VerdictTimeLimitExceeded},
		{verdict.MemoryLimitExceeded, river.VerdictMemoryLimitExceeded},
		{verdict.RuntimeError, river.VerdictRuntimeError},
		{verdict.SystemError, river.VerdictSystemError},
	}
	for _, tt := range tests {
		if got := wireCodeFor(tt.in); got != tt.want {
			t.Errorf("wireCodeFor(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestErrmsgAndOutmsg(t *testing.T) {
	ce := verdict.Verdict{Code: verdict.CompileError, Message: "boom"}
	if errmsgFor(ce) != "boom" || outmsgFor(ce) != "" {
		t.Errorf("compile error routing wrong: %+v", ce)
	}
	ac := verdict.Verdict{Code: verdict.Accepted, Message: "diff clean"}
	if outmsgFor(ac) != "diff clean" || errmsgFor(ac) != "" {
		t.Errorf("accepted routing wrong: %+v", ac)
	}
}

func TestLanguageName_UnknownFallsBack(t *testing.T) {
	if got := languageName(river.Language(99)); got != "unknown" {
		t.Errorf("languageName(99) = %q, want unknown", got)
	}
	if got := languageName(river.LanguagePython); got != "python" {
		t.Errorf("languageName(python) = %q", got)
	}
}

func TestJudgeTypeFromWire(t *testing.T) {
	if judgeTypeFromWire(river.JudgeTypeSpecial) != verdict.Special {
		t.Error("special judge type not mapped")
	}
	if judgeTypeFromWire(river.JudgeTypeStandard) != verdict.Standard {
		t.Error("standard judge type not mapped")
	}
}
