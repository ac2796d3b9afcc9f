package events

import (
	"context"
	"testing"
)

type countingEmitter struct {
	progress  int
	complete  int
	errored   int
	cancelled int
}

func (c *countingEmitter) ExportProgress(context.Context, ProgressEvent)   { c.progress++ }
func (c *countingEmitter) ExportComplete(context.Context, CompleteEvent)   { c.complete++ }
func (c *countingEmitter) ExportError(context.Context, ErrorEvent)         { c.errored++ }
func (c *countingEmitter) ExportCancelled(context.Context, CancelledEvent) { c.cancelled++ }

func TestFanoutSkipsNilAndBroadcasts(t *testing.T) {
	first := &countingEmitter{}
	second := &countingEmitter{}
	emitter := Fanout(nil, first, nil, second)

	ctx := context.Background()
	emitter.ExportProgress(ctx, ProgressEvent{JobID: "a"})
	emitter.ExportComplete(ctx, CompleteEvent{JobID: "a"})
	emitter.ExportError(ctx, ErrorEvent{JobID: "a"})
	emitter.ExportCancelled(ctx, CancelledEvent{JobID: "a"})

	for _, c := range []*countingEmitter{first, second} {
		if c.progress != 1 || c.complete != 1 || c.errored != 1 || c.cancelled != 1 {
			t.Fatalf("expected each event delivered once, got %+v", c)
		}
	}
}

func TestFanoutEmptyIsNoop(t *testing.T) {
	if _, ok := Fanout().(Noop); !ok {
		t.Fatalf("expected Noop for empty fanout, got %T", Fanout())
	}
}

func TestFanoutSingleReturnsEmitter(t *testing.T) {
	only := &countingEmitter{}
	if got := Fanout(only); got != Emitter(only) {
		t.Fatalf("expected single emitter passthrough, got %T", got)
	}
}
