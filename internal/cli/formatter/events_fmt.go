package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/dispatchly/smartsched/internal/domain"
	"github.com/dispatchly/smartsched/internal/realtime"
)

// FormatEventLogList renders recent event-log rows, newest first.
func FormatEventLogList(entries []*domain.EventLogEntry) string {
	if len(entries) == 0 {
		return Dim("No events recorded.") + "\n"
	}

	headers := []string{"WHEN", "EVENT", "GROUPS", "PAYLOAD"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.PublishedAt.UTC().Format("2006-01-02 15:04:05Z"),
			eventBadge(e.EventType),
			strings.Join(e.PublishedTo, ", "),
			truncPayload(e.PayloadJSON, 48),
		})
	}

	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("Event Log (%d)", len(entries))))
	b.WriteString("\n\n")
	b.WriteString(RenderTable(headers, rows))
	return b.String()
}

// FormatEventLine renders one live message for the tail stream.
func FormatEventLine(msg realtime.Message) string {
	return fmt.Sprintf("%s %s %s %s",
		Dim(nowClock()),
		eventBadge(msg.EventName),
		Dim(msg.Group),
		string(msg.Payload),
	)
}

func nowClock() string {
	return time.Now().Format("15:04:05")
}

func eventBadge(eventType string) string {
	switch eventType {
	case domain.EventRecommendationReady:
		return StyleBlue.Render(eventType)
	case domain.EventJobAssigned:
		return StyleGreen.Render(eventType)
	case domain.EventJobRescheduled:
		return StyleYellow.Render(eventType)
	case domain.EventJobCancelled:
		return StyleRed.Render(eventType)
	default:
		return eventType
	}
}

func truncPayload(payload string, max int) string {
	payload = strings.TrimSpace(payload)
	if len(payload) <= max {
		return Dim(payload)
	}
	return Dim(payload[:max-1] + "…")
}
