package api

import "testing"

func TestProcessorFuncs_NilFuncsReportSuccess(t *testing.T) {
	var p ProcessorFuncs

	if got := p.PreProcess(); got != Success {
		t.Fatalf("PreProcess=%v, want Success", got)
	}
	if got := p.Process(Operation{ID: 1}); got != Success {
		t.Fatalf("Process=%v, want Success", got)
	}
	if got := p.PostProcess(); got != Success {
		t.Fatalf("PostProcess=%v, want Success", got)
	}
}

func TestProcessorFuncs_ForwardsToFuncs(t *testing.T) {
	var gotOp Operation
	p := ProcessorFuncs{
		PreFunc: func() Result { return RetryableError },
		ProcessFunc: func(op Operation) Result {
			gotOp = op
			return FatalError
		},
		PostFunc: func() Result { return Success },
	}

	if got := p.PreProcess(); got != RetryableError {
		t.Fatalf("PreProcess=%v, want RetryableError", got)
	}
	if got := p.Process(Operation{ID: 42, Payload: "p"}); got != FatalError {
		t.Fatalf("Process=%v, want FatalError", got)
	}
	if gotOp.ID != 42 {
		t.Fatalf("Process received op %+v, want ID 42", gotOp)
	}
	if got := p.PostProcess(); got != Success {
		t.Fatalf("PostProcess=%v, want Success", got)
	}
}

func TestResult_String(t *testing.T) {
	if Success.String() != "success" {
		t.Fatalf("Success.String()=%q", Success.String())
	}
	if RetryableError.String() != "retryable" {
		t.Fatalf("RetryableError.String()=%q", RetryableError.String())
	}
	if FatalError.String() != "fatal" {
		t.Fatalf("FatalError.String()=%q", FatalError.String())
	}
	if got := Result(0).String(); got != "unrecognized(0)" {
		t.Fatalf("Result(0).String()=%q", got)
	}
}
