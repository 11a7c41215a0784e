package domain

import "time"

// EventLogEntry is one append-only record of an outbound realtime publish.
// One entry is written per (event, group) pair so PublishedTo always holds a
// single group name.
type EventLogEntry struct {
	ID          string
	EventType   string
	PayloadJSON string
	PublishedAt time.Time
	PublishedTo []string
}
