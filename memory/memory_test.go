package memory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zolawuzhigang/Research-Agent/memory"
)

func TestAppendAndCapacity(t *testing.T) {
	m := memory.New(3)
	for i := 0; i < 5; i++ {
		m.Append(memory.Entry{Role: memory.RoleUser, Content: string(rune('a' + i)), Timestamp: time.Now()})
	}
	require.Equal(t, 3, m.Len())
	recent := m.Recent(0, false)
	require.Equal(t, []string{"c", "d", "e"}, []string{recent[0].Content, recent[1].Content, recent[2].Content})
}

func TestDefaultCapacity(t *testing.T) {
	m := memory.New(0)
	for i := 0; i < 150; i++ {
		m.Append(memory.Entry{Role: memory.RoleAssistant, Content: "x"})
	}
	require.Equal(t, 100, m.Len())
}

func TestSnapshotIsolatesInFlightQuestion(t *testing.T) {
	m := memory.New(10)
	m.Append(memory.Entry{Role: memory.RoleUser, Content: "what is 2+2"})
	m.Append(memory.Entry{Role: memory.RoleAssistant, Content: "4"})

	m.CreateSnapshot()
	m.Append(memory.Entry{Role: memory.RoleUser, Content: "and now?"})

	snap := m.Recent(0, true)
	require.Len(t, snap, 2)

	live := m.Recent(0, false)
	require.Len(t, live, 3)

	last, ok := m.LastUser(true)
	require.True(t, ok)
	require.Equal(t, "what is 2+2", last.Content)

	m.ClearSnapshot()
	require.False(t, m.HasSnapshot())
}

func TestLastUserNoneFound(t *testing.T) {
	m := memory.New(5)
	m.Append(memory.Entry{Role: memory.RoleAssistant, Content: "hi"})
	_, ok := m.LastUser(false)
	require.False(t, ok)
}
