package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/docpull/docpull/internal/model"
)

// recordingStep logs its execution order and returns a scripted error.
type recordingStep struct {
	name  string
	err   error
	calls *[]string
}

func (s *recordingStep) Name() string { return s.name }

func (s *recordingStep) Do(_ context.Context, _ *model.RunReport) error {
	*s.calls = append(*s.calls, s.name)
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestPipeline_Execute verifies in-order execution and step tracking.
func TestPipeline_Execute(t *testing.T) {
	t.Parallel()

	var calls []string
	p := New(WithLogger(discardLogger()))
	p.AddSteps(
		&recordingStep{name: "crawl", calls: &calls},
		&recordingStep{name: "save_frontier", calls: &calls},
		&recordingStep{name: "fetch", calls: &calls},
	)

	if p.StepCount() != 3 {
		t.Errorf("expected 3 steps, got %d", p.StepCount())
	}

	report := model.NewRunReport("https://portal.example/Laws.aspx")
	if err := p.Execute(t.Context(), report); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	want := []string{"crawl", "save_frontier", "fetch"}
	if len(calls) != len(want) {
		t.Fatalf("expected %d calls, got %d", len(want), len(calls))
	}
	for i, name := range want {
		if calls[i] != name {
			t.Errorf("call %d: expected %s, got %s", i, name, calls[i])
		}
		if report.PerformedSteps[i] != name {
			t.Errorf("performed step %d: expected %s, got %s", i, name, report.PerformedSteps[i])
		}
	}
}

// TestPipeline_Execute_stopsOnError verifies that a failing step ends the
// run by default and that the error lands in the report.
func TestPipeline_Execute_stopsOnError(t *testing.T) {
	t.Parallel()

	stepErr := errors.New("no session")
	var calls []string
	p := New(WithLogger(discardLogger()))
	p.AddSteps(
		&recordingStep{name: "crawl", err: stepErr, calls: &calls},
		&recordingStep{name: "fetch", calls: &calls},
	)

	report := model.NewRunReport("https://portal.example/Laws.aspx")
	if err := p.Execute(t.Context(), report); !errors.Is(err, stepErr) {
		t.Fatalf("expected the step error, got %v", err)
	}
	if len(calls) != 1 {
		t.Errorf("expected execution to stop after the failed step, got calls %v", calls)
	}
	if report.Error != stepErr.Error() {
		t.Errorf("expected report error %q, got %q", stepErr.Error(), report.Error)
	}
}

// TestPipeline_Execute_continueOnError verifies that the option lets later
// steps run after a failure.
func TestPipeline_Execute_continueOnError(t *testing.T) {
	t.Parallel()

	var calls []string
	p := New(WithLogger(discardLogger()), WithContinueOnError(true))
	p.AddSteps(
		&recordingStep{name: "crawl", err: errors.New("no session"), calls: &calls},
		&recordingStep{name: "fetch", calls: &calls},
	)

	report := model.NewRunReport("https://portal.example/Laws.aspx")
	if err := p.Execute(t.Context(), report); err != nil {
		t.Fatalf("expected nil error with continueOnError, got %v", err)
	}
	if len(calls) != 2 {
		t.Errorf("expected both steps to run, got calls %v", calls)
	}
	if len(report.PerformedSteps) != 2 {
		t.Errorf("expected 2 performed steps, got %v", report.PerformedSteps)
	}
}

// TestPipeline_Execute_cancelled verifies that a cancelled context stops
// the run before the next step.
func TestPipeline_Execute_cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var calls []string
	p := New(WithLogger(discardLogger()))
	p.AddStep(&recordingStep{name: "crawl", calls: &calls})

	report := model.NewRunReport("https://portal.example/Laws.aspx")
	if err := p.Execute(ctx, report); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(calls) != 0 {
		t.Errorf("expected no steps to run, got %v", calls)
	}
	if report.Error == "" {
		t.Error("expected the cancellation to be recorded in the report")
	}
}
