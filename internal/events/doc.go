// Package events defines the side-channel contract the export supervisor
// publishes job notifications through, plus the stock emitters (noop, fanout,
// slog-backed).
package events
