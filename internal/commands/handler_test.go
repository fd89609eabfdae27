package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog/internal/logging"
)

type testMessage struct{ Name string }

func (testMessage) Type() string { return "blog.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "blog.test.invalid" }

func (invalidMessage) Validate() error { return errors.New("invalid") }

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler(func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler(func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler(func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled to be preserved, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	h := NewHandler(func(ctx context.Context, msg testMessage) error {
		return errors.New("boom")
	})

	err := h.Execute(context.Background(), testMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestHandlerKeepsCategorisedErrors(t *testing.T) {
	notFound := goerrors.Wrap(errors.New("missing"), goerrors.CategoryNotFound, "blog missing")
	h := NewHandler(func(ctx context.Context, msg testMessage) error {
		return notFound
	})

	err := h.Execute(context.Background(), testMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found category to survive, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler(func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestHandlerTelemetryReceivesFields(t *testing.T) {
	var got TelemetryInfo
	h := NewHandler(func(ctx context.Context, msg testMessage) error {
		return nil
	},
		WithOperation[testMessage]("test.run"),
		WithMessageFields(func(msg testMessage) map[string]any {
			return map[string]any{"name": msg.Name}
		}),
		WithTelemetry(func(_ context.Context, _ testMessage, info TelemetryInfo) {
			got = info
		}),
	)

	if err := h.Execute(context.Background(), testMessage{Name: "alpha"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got.Status != TelemetryStatusSuccess || got.Operation != "test.run" {
		t.Fatalf("unexpected telemetry %#v", got)
	}
	if got.Command != "blog.test.message" || got.Fields["name"] != "alpha" {
		t.Fatalf("unexpected telemetry fields %#v", got.Fields)
	}
}

func TestHandlerTelemetryFailureStatus(t *testing.T) {
	var status TelemetryStatus
	h := NewHandler(func(ctx context.Context, msg testMessage) error {
		return errors.New("boom")
	}, WithTelemetry(func(_ context.Context, _ testMessage, info TelemetryInfo) {
		status = info.Status
	}))

	_ = h.Execute(context.Background(), testMessage{})
	if status != TelemetryStatusFailed {
		t.Fatalf("expected failed status, got %q", status)
	}
}

func TestHandlerExecuteAnnotatesContext(t *testing.T) {
	var fields map[string]any
	h := NewHandler(func(ctx context.Context, msg testMessage) error {
		fields = logging.ContextFields(ctx)
		return nil
	}, WithOperation[testMessage]("rebuild"), WithMessageFields(func(msg testMessage) map[string]any {
		return map[string]any{"name": msg.Name}
	}))

	if err := h.Execute(context.Background(), testMessage{Name: "hello"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if fields["command"] != "blog.test.message" || fields["operation"] != "rebuild" || fields["name"] != "hello" {
		t.Fatalf("unexpected context fields %v", fields)
	}
}
