package verdict

import "testing"

func TestCode_String(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{Pending, "Pending"},
		{Running, "Running"},
		{CompileSuccess, "CompileSuccess"},
		{CompileError, "CompileError"},
		{Accepted, "Accepted"},
		{WrongAnswer, "WrongAnswer"},
		{TimeLimitExceeded, "TimeLimitExceeded"},
		{MemoryLimitExceeded, "MemoryLimitExceeded"},
		{RuntimeError, "RuntimeError"},
		{SystemError, "SystemError"},
		{Code(999), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("Code(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestVerdictConstructors(t *testing.T) {
	if got := pending(); got.Code != Pending {
		t.Errorf("pending() = %+v", got)
	}
	if got := running(); got.Code != Running {
		t.Errorf("running() = %+v", got)
	}
	if got := compileSuccess(); got.Code != CompileSuccess {
		t.Errorf("compileSuccess() = %+v", got)
	}
	if got := compileError("bad"); got.Code != CompileError || got.Message != "bad" {
		t.Errorf("compileError() = %+v", got)
	}
	if got := systemError("oops"); got.Code != SystemError || got.Message != "oops" {
		t.Errorf("systemError() = %+v", got)
	}
}
