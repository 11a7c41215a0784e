package routing

import (
	"io"
	"log/slog"
)

// CallEvent records one routing backend call.
type CallEvent struct {
	Operation string // "matrix", "geocode", "timezone"
	Pairs     int    // legs requested, matrix calls only
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives call events for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver logs call events through slog, one line per call.
type LogObserver struct {
	logger *slog.Logger
}

func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{logger: slog.New(slog.NewTextHandler(w, nil))}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	attrs := []any{
		"op", event.Operation,
		"latency_ms", event.LatencyMs,
	}
	if event.Pairs > 0 {
		attrs = append(attrs, "pairs", event.Pairs)
	}
	if !event.Success {
		attrs = append(attrs, "error_code", event.ErrorCode)
		o.logger.Error("routing_call", attrs...)
		return
	}
	o.logger.Info("routing_call", attrs...)
}

// NoopObserver drops everything.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
