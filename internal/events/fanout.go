package events

import "context"

// Fanout multiplexes events to several emitters. Nil entries are skipped;
// with zero live emitters a Noop is returned.
func Fanout(emitters ...Emitter) Emitter {
	live := make([]Emitter, 0, len(emitters))
	for _, emitter := range emitters {
		if emitter != nil {
			live = append(live, emitter)
		}
	}
	switch len(live) {
	case 0:
		return Noop{}
	case 1:
		return live[0]
	default:
		return fanout(live)
	}
}

type fanout []Emitter

func (f fanout) ExportProgress(ctx context.Context, event ProgressEvent) {
	for _, emitter := range f {
		emitter.ExportProgress(ctx, event)
	}
}

func (f fanout) ExportComplete(ctx context.Context, event CompleteEvent) {
	for _, emitter := range f {
		emitter.ExportComplete(ctx, event)
	}
}

func (f fanout) ExportError(ctx context.Context, event ErrorEvent) {
	for _, emitter := range f {
		emitter.ExportError(ctx, event)
	}
}

func (f fanout) ExportCancelled(ctx context.Context, event CancelledEvent) {
	for _, emitter := range f {
		emitter.ExportCancelled(ctx, event)
	}
}
