package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

type rebuildPostCommand struct {
	ID string
}

func (rebuildPostCommand) Type() string { return "blog.test.rebuild_post" }

func (cmd rebuildPostCommand) Validate() error {
	if cmd.ID == "" {
		return errors.New("id required")
	}
	return nil
}

type statusRecorder struct {
	mu       sync.Mutex
	statuses []TelemetryStatus
}

func (r *statusRecorder) telemetry() Telemetry[rebuildPostCommand] {
	return func(_ context.Context, _ rebuildPostCommand, info TelemetryInfo) {
		r.mu.Lock()
		r.statuses = append(r.statuses, info.Status)
		r.mu.Unlock()
	}
}

func TestDispatcherRetriesTransientRenderFailure(t *testing.T) {
	var (
		attempts int
		rec      statusRecorder
	)
	handler := NewHandler(func(ctx context.Context, msg rebuildPostCommand) error {
		attempts++
		if attempts == 1 {
			return errors.New("render " + msg.ID + ": transient")
		}
		return nil
	}, WithTimeout[rebuildPostCommand](time.Second), WithTelemetry(rec.telemetry()))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), rebuildPostCommand{ID: "hello"}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if len(rec.statuses) != 2 || rec.statuses[0] != TelemetryStatusFailed || rec.statuses[1] != TelemetryStatusSuccess {
		t.Fatalf("unexpected telemetry statuses %v", rec.statuses)
	}
}

func TestDispatcherSurfacesValidationFailure(t *testing.T) {
	var attempts int
	handler := NewHandler(func(context.Context, rebuildPostCommand) error {
		attempts++
		return nil
	})

	sub := dispatcher.SubscribeCommand(handler)
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), rebuildPostCommand{}); err == nil {
		t.Fatal("expected validation error for a blank id")
	}
	if attempts != 0 {
		t.Fatalf("expected handler not to run, got %d attempts", attempts)
	}
}
