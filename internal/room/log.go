package room

import "time"

type EntryKind string

const (
	EntryKindUser   EntryKind = "user"
	EntryKindSystem EntryKind = "system"
)

type LogEntry struct {
	Kind        EntryKind
	MemberId    string
	DisplayName string
	Text        string
	Timestamp   time.Time
}

// activityLog is a fixed-capacity ring buffer; appending beyond capacity
// evicts the oldest entry.
type activityLog struct {
	entries []LogEntry
	head    int
	size    int
}

func newActivityLog(capacity int) *activityLog {
	return &activityLog{entries: make([]LogEntry, capacity)}
}

func (l *activityLog) append(e LogEntry) {
	if len(l.entries) == 0 {
		return
	}

	l.entries[(l.head+l.size)%len(l.entries)] = e
	if l.size < len(l.entries) {
		l.size++
	} else {
		l.head = (l.head + 1) % len(l.entries)
	}
}

func (l *activityLog) len() int {
	return l.size
}

// tail returns the newest n entries, oldest first.
func (l *activityLog) tail(n int) []LogEntry {
	if n > l.size {
		n = l.size
	}

	out := make([]LogEntry, 0, n)
	for i := l.size - n; i < l.size; i++ {
		out = append(out, l.entries[(l.head+i)%len(l.entries)])
	}

	return out
}
