package realtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/dispatchly/smartsched/internal/domain"
	"github.com/dispatchly/smartsched/internal/repository"
)

// PublishEvent captures the outcome of publishing one domain event.
type PublishEvent struct {
	EventType string
	Groups    int
	Logged    int
	Err       error
}

// PublishObserver receives publish outcomes.
type PublishObserver interface {
	ObservePublish(ctx context.Context, event PublishEvent)
}

// NoopPublishObserver ignores all events.
type NoopPublishObserver struct{}

func (NoopPublishObserver) ObservePublish(context.Context, PublishEvent) {}

type logPublishObserver struct {
	logger *slog.Logger
}

// NewLogPublishObserver writes publish outcomes to the provided writer.
func NewLogPublishObserver(w io.Writer) PublishObserver {
	if w == nil {
		return NoopPublishObserver{}
	}
	return &logPublishObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logPublishObserver) ObservePublish(ctx context.Context, event PublishEvent) {
	attrs := []any{
		"event", event.EventType,
		"groups", event.Groups,
		"logged", event.Logged,
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.ErrorContext(ctx, "realtime_publish", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "realtime_publish", attrs...)
}

// Publisher turns committed domain events into group broadcasts plus one
// event-log row per delivered group.
type Publisher struct {
	broadcaster Broadcaster
	log         repository.EventLogRepo
	observer    PublishObserver
}

// NewPublisher creates a Publisher. A nil observer discards outcomes.
func NewPublisher(broadcaster Broadcaster, log repository.EventLogRepo, observer PublishObserver) *Publisher {
	if observer == nil {
		observer = NoopPublishObserver{}
	}
	return &Publisher{broadcaster: broadcaster, log: log, observer: observer}
}

// Publish fans out the events in order. It never fails the caller:
// broadcast and event-log errors are reported to the observer and
// swallowed, and a failed log append does not undo the broadcast it
// followed.
func (p *Publisher) Publish(ctx context.Context, events []domain.Event) {
	for _, e := range events {
		p.publishOne(ctx, e)
	}
}

func (p *Publisher) publishOne(ctx context.Context, e domain.Event) {
	out, err := encode(e)
	if err != nil {
		p.observer.ObservePublish(ctx, PublishEvent{EventType: e.EventType(), Err: err})
		return
	}

	var errs *multierror.Error
	logged := 0
	for _, group := range out.groups {
		if err := p.broadcaster.Broadcast(ctx, group, out.name, out.payload); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("broadcast to %s: %w", group, err))
			continue
		}
		entry := &domain.EventLogEntry{
			ID:          uuid.NewString(),
			EventType:   out.name,
			PayloadJSON: string(out.payload),
			PublishedAt: time.Now().UTC(),
			PublishedTo: []string{group},
		}
		if err := p.log.Append(ctx, entry); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("event log for %s: %w", group, err))
			continue
		}
		logged++
	}

	p.observer.ObservePublish(ctx, PublishEvent{
		EventType: out.name,
		Groups:    len(out.groups),
		Logged:    logged,
		Err:       errs.ErrorOrNil(),
	})
}
