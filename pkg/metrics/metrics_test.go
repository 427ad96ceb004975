package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/petrijr/fundo/pkg/api"
)

func TestObserver_CountsEngineEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewObserver(reg)
	ctx := context.Background()

	obs.OnReplay(ctx, 7)
	obs.OnOperationCompleted(ctx, api.Operation{ID: 1, Payload: "a"}, 2, 150*time.Millisecond)
	obs.OnOperationCompleted(ctx, api.Operation{ID: 2, Payload: "b"}, 0, 10*time.Millisecond)
	obs.OnProgress(ctx, api.Progress{Processed: 2, Remaining: 5})
	obs.OnWarning(ctx, "late arrival", nil)
	obs.OnFault(ctx, "boom", errors.New("bad block"))

	if got := testutil.ToFloat64(obs.replayed); got != 7 {
		t.Fatalf("fundo_operations_replayed_total = %v, want 7", got)
	}
	if got := testutil.ToFloat64(obs.completed); got != 2 {
		t.Fatalf("fundo_operations_completed_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(obs.retries); got != 2 {
		t.Fatalf("fundo_operation_retries_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(obs.warnings); got != 1 {
		t.Fatalf("fundo_warnings_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.faults); got != 1 {
		t.Fatalf("fundo_faults_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.queueDepth); got != 5 {
		t.Fatalf("fundo_queue_depth = %v, want 5 after the progress event", got)
	}
	if got := testutil.CollectAndCount(obs.duration); got != 1 {
		t.Fatalf("expected the duration histogram to collect, got %d metrics", got)
	}
}

func TestObserver_QueueDepthFollowsReplay(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewObserver(reg)

	obs.OnReplay(context.Background(), 3)
	if got := testutil.ToFloat64(obs.queueDepth); got != 3 {
		t.Fatalf("fundo_queue_depth = %v after replay, want 3", got)
	}
}
