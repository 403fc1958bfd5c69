// Package river defines the judge's wire contract: the request/response
// message types carried over the Judge gRPC stream and the two unary
// auxiliary endpoints. There is no .proto/protoc step — messages are
// plain Go structs encoded with encoding/gob (see rpc/codec).
package river

// Language is the closed set of source languages the judge accepts.
type Language int32

const (
	LanguageC Language = iota
	LanguageCpp
	LanguagePython
	LanguageRust
	LanguageNode
	LanguageTypeScript
	LanguageGo
	LanguageJava
	LanguageCSharp
)

// JudgeType selects how a run step's output is scored.
type JudgeType int32

const (
	JudgeTypeStandard JudgeType = iota
	JudgeTypeSpecial
)

// CompileData is the compile-step request variant.
type CompileData struct {
	Language Language
	Code     string
}

// JudgeData is the run-step request variant.
type JudgeData struct {
	InFile, OutFile, SpjFile   string
	TimeLimitMs, MemoryLimitKb int32
	JudgeType                  JudgeType
}

// Request is a tagged union: exactly one of Compile or Judge is set.
type Request struct {
	Compile *CompileData
	Judge   *JudgeData
}

// StatusCode is an in-flight (non-terminal) response state.
type StatusCode int32

const (
	StatusPending StatusCode = iota
	StatusRunning
	StatusCompiling
)

// VerdictCode mirrors verdict.Code across the wire.
type VerdictCode int32

const (
	VerdictPending VerdictCode = iota
	VerdictRunning
	VerdictCompileSuccess
	VerdictCompileError
	VerdictAccepted
	VerdictWrongAnswer
	VerdictTimeLimitExceeded
	VerdictMemoryLimitExceeded
	VerdictRuntimeError
	VerdictSystemError
)

// Response is a tagged union: Status is set for in-flight events, the
// remaining fields are populated for a terminal Result event.
type Response struct {
	Status *StatusCode

	TimeUsedMs   int64
	MemoryUsedKb int64
	Code         VerdictCode
	ExitCode     int64
	Errmsg       string
	Outmsg       string
}

// LanguageEntry is one row of the LanguageConfig response.
type LanguageEntry struct {
	Name    string
	Compile string
	Run     string
	Version string
}

// Empty is the argument to the LanguageConfig unary RPC.
type Empty struct{}

// LanguageList is the LanguageConfig response.
type LanguageList struct {
	Languages []LanguageEntry
}

// ProblemID is the argument to the List unary RPC.
type ProblemID struct {
	ID string
}

// TestCaseRef names one discovered test case pair.
type TestCaseRef struct {
	In  string
	Out string
}

// TestCaseList is the List response.
type TestCaseList struct {
	Cases []TestCaseRef
}
