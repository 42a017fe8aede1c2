package room

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityLogEviction(t *testing.T) {
	l := newActivityLog(50)
	now := time.Now()

	for i := 0; i < 51; i++ {
		l.append(LogEntry{
			Kind:      EntryKindUser,
			Text:      fmt.Sprintf("message %d", i),
			Timestamp: now,
		})
	}

	assert.Equal(t, 50, l.len())

	tail := l.tail(50)
	require.Len(t, tail, 50)
	// the very first entry was evicted
	assert.Equal(t, "message 1", tail[0].Text)
	assert.Equal(t, "message 50", tail[49].Text)
}

func TestActivityLogTail(t *testing.T) {
	l := newActivityLog(50)
	now := time.Now()

	for i := 0; i < 5; i++ {
		l.append(LogEntry{Text: fmt.Sprintf("message %d", i), Timestamp: now})
	}

	tail := l.tail(3)
	require.Len(t, tail, 3)
	assert.Equal(t, "message 2", tail[0].Text)
	assert.Equal(t, "message 4", tail[2].Text)

	assert.Len(t, l.tail(10), 5)
	assert.Empty(t, l.tail(0))
}

func TestActivityLogZeroCapacity(t *testing.T) {
	l := newActivityLog(0)

	l.append(LogEntry{Text: "dropped"})

	assert.Equal(t, 0, l.len())
	assert.Empty(t, l.tail(10))
}
