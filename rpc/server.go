// Package rpc implements the judge's bidirectional streaming Judge RPC
// and its two unary auxiliary endpoints against a hand-registered
// google.golang.org/grpc ServiceDesc, skipping protoc codegen per the
// judge's gob wire codec (rpc/codec).
package rpc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"

	_ "river-go/rpc/codec" // registers the gob codec with grpc/encoding
	"river-go/rpc/river"

	"river-go/cerrors"
	"river-go/config"
	"river-go/logging"
	"river-go/verdict"
	"river-go/workspace"
)

// Server implements the judge's RPC surface: one bidirectional Judge
// stream per submission, plus the read-only LanguageConfig and List
// lookups.
type Server struct {
	cfg     *config.JudgeConfig
	sem     *semaphore.Weighted
	selfExe string
}

// NewServer builds a Server sized to cfg.CPULimit concurrent sandbox
// runs.
func NewServer(cfg *config.JudgeConfig, selfExe string) *Server {
	return &Server{
		cfg:     cfg,
		sem:     semaphore.NewWeighted(int64(cfg.CPULimit)),
		selfExe: selfExe,
	}
}

// Register attaches the judge's hand-rolled ServiceDesc to s.
func Register(s *grpc.Server, server *Server) {
	s.RegisterService(&serviceDesc, server)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: "river.Judge",
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "LanguageConfig", Handler: languageConfigHandler},
		{MethodName: "List", Handler: listHandler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Judge",
			Handler:       judgeStreamHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "river.proto",
}

func judgeStreamHandler(srv any, stream grpc.ServerStream) error {
	return srv.(*Server).Judge(stream)
}

func languageConfigHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(river.Empty)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).LanguageConfig(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/river.Judge/LanguageConfig"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).LanguageConfig(ctx, req.(*river.Empty))
	}
	return interceptor(ctx, req, info, handler)
}

func listHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(river.ProblemID)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(*Server).List(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/river.Judge/List"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(*Server).List(ctx, req.(*river.ProblemID))
	}
	return interceptor(ctx, req, info, handler)
}

// Judge drives one client's compile/run stream end to end: a fresh
// Workspace for the submission's lifetime, one VerdictPipeline, and a
// Response per emitted Verdict.
func (s *Server) Judge(stream grpc.ServerStream) error {
	mgr := workspace.NewManager(s.cfg.JudgeDir)
	pipeline, err := verdict.New(s.cfg, s.sem, s.selfExe, mgr)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	log := logging.WithSubmission(logging.FromContext(stream.Context()), pipeline.SubmissionID())
	ctx := logging.ContextWithLogger(stream.Context(), log)

	for {
		var req river.Request
		if err := stream.RecvMsg(&req); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		emit := func(v verdict.Verdict) {
			if sendErr := stream.SendMsg(toResponse(v)); sendErr != nil {
				log.Error("send response", "error", sendErr)
			}
		}

		switch {
		case req.Compile != nil:
			name := languageName(req.Compile.Language)
			if err := pipeline.Compile(ctx, verdict.CompileRequest{Language: name, Code: req.Compile.Code}, emit); err != nil {
				logStepError(log, "compile step", err)
			}
		case req.Judge != nil:
			jr := verdict.JudgeRequest{
				InFile:        req.Judge.InFile,
				OutFile:       req.Judge.OutFile,
				SpjFile:       req.Judge.SpjFile,
				TimeLimitMs:   int64(req.Judge.TimeLimitMs),
				MemoryLimitKB: int64(req.Judge.MemoryLimitKb),
				JudgeType:     judgeTypeFromWire(req.Judge.JudgeType),
			}
			if err := pipeline.Run(ctx, jr, emit); err != nil {
				logStepError(log, "run step", err)
			}
		default:
			return fmt.Errorf("river: request carries neither Compile nor Judge")
		}
	}
}

// logStepError logs a pipeline failure with its cerrors.ErrorKind attached
// when the error carries one, so an operator can grep logs by kind without
// parsing message text.
func logStepError(log *slog.Logger, msg string, err error) {
	if kind, ok := cerrors.GetKind(err); ok {
		log.Error(msg, "error", err, "kind", kind.String())
		return
	}
	log.Error(msg, "error", err)
}

// LanguageConfig serves the judge's static language command table.
func (s *Server) LanguageConfig(ctx context.Context, _ *river.Empty) (*river.LanguageList, error) {
	out := make([]river.LanguageEntry, 0, len(s.cfg.Languages))
	for name, entry := range s.cfg.Languages {
		out = append(out, river.LanguageEntry{
			Name:    name,
			Compile: entry.CompileCmd,
			Run:     entry.RunCmd,
			Version: entry.Version,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return &river.LanguageList{Languages: out}, nil
}

// List enumerates the test cases discovered for a problem ID.
func (s *Server) List(ctx context.Context, req *river.ProblemID) (*river.TestCaseList, error) {
	cases, err := config.ListTestCases(s.cfg.DataDir, req.ID)
	if err != nil {
		return nil, err
	}
	out := make([]river.TestCaseRef, 0, len(cases))
	for _, c := range cases {
		out = append(out, river.TestCaseRef{In: c.In, Out: c.Out})
	}
	return &river.TestCaseList{Cases: out}, nil
}

// toResponse translates a verdict.Verdict into its wire Response.
func toResponse(v verdict.Verdict) *river.Response {
	if status, ok := statusCodeFor(v.Code); ok {
		return &river.Response{Status: &status}
	}
	return &river.Response{
		Code:         wireCodeFor(v.Code),
		TimeUsedMs:   v.TimeUsedMs,
		MemoryUsedKb: v.MemoryUsedKB,
		Errmsg:       errmsgFor(v),
		Outmsg:       outmsgFor(v),
	}
}

func statusCodeFor(c verdict.Code) (river.StatusCode, bool) {
	switch c {
	case verdict.Pending:
		return river.StatusPending, true
	case verdict.Running:
		return river.StatusRunning, true
	}
	return 0, false
}

func wireCodeFor(c verdict.Code) river.VerdictCode {
	switch c {
	case verdict.CompileSuccess:
		return river.VerdictCompileSuccess
	case verdict.CompileError:
		return river.VerdictCompileError
	case verdict.Accepted:
		return river.VerdictAccepted
	case verdict.WrongAnswer:
		return river.VerdictWrongAnswer
	case verdict.TimeLimitExceeded:
		return river.VerdictTimeLimitExceeded
	case verdict.MemoryLimitExceeded:
		return river.VerdictMemoryLimitExceeded
	case verdict.RuntimeError:
		return river.VerdictRuntimeError
	default:
		return river.VerdictSystemError
	}
}

func errmsgFor(v verdict.Verdict) string {
	switch v.Code {
	case verdict.CompileError, verdict.SystemError, verdict.RuntimeError:
		return v.Message
	}
	return ""
}

func outmsgFor(v verdict.Verdict) string {
	if v.Code == verdict.Accepted || v.Code == verdict.WrongAnswer {
		return v.Message
	}
	return ""
}

var languageNames = map[river.Language]string{
	river.LanguageC:          "c",
	river.LanguageCpp:        "cpp",
	river.LanguagePython:     "python",
	river.LanguageRust:       "rust",
	river.LanguageNode:       "node",
	river.LanguageTypeScript: "typescript",
	river.LanguageGo:         "go",
	river.LanguageJava:       "java",
	river.LanguageCSharp:     "csharp",
}

func languageName(l river.Language) string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return "unknown"
}

func judgeTypeFromWire(jt river.JudgeType) verdict.JudgeType {
	if jt == river.JudgeTypeSpecial {
		return verdict.Special
	}
	return verdict.Standard
}
