package app

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionRegistry_IdentifyAndLookup(t *testing.T) {
	registry := NewSessionRegistry()

	replaced := registry.Identify("u1", "phone", "s1", newFakeChannel())
	assert.False(t, replaced)
	registry.Identify("u1", "laptop", "s2", newFakeChannel())
	registry.Identify("u2", "phone", "s3", newFakeChannel())

	sessions := registry.SessionsByUser("u1")
	assert.Len(t, sessions, 2)
	assert.Equal(t, 3, registry.Count())
}

func TestSessionRegistry_ReconnectSameDeviceReplaces(t *testing.T) {
	registry := NewSessionRegistry()

	registry.Identify("u1", "phone", "s1", newFakeChannel())
	replaced := registry.Identify("u1", "phone", "s2", newFakeChannel())

	assert.True(t, replaced)
	sessions := registry.SessionsByUser("u1")
	assert.Len(t, sessions, 1)
	assert.Equal(t, "s2", sessions[0].SessionID)
}

func TestSessionRegistry_RemoveStaleSessionKeepsReconnect(t *testing.T) {
	registry := NewSessionRegistry()

	registry.Identify("u1", "phone", "s1", newFakeChannel())
	registry.Identify("u1", "phone", "s2", newFakeChannel())

	// the old connection closes after the reconnect already took the slot
	registry.Remove("s1")

	sessions := registry.SessionsByUser("u1")
	assert.Len(t, sessions, 1)
	assert.Equal(t, "s2", sessions[0].SessionID)

	registry.Remove("s2")
	assert.Empty(t, registry.SessionsByUser("u1"))
}

func TestSessionRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewSessionRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%26))
			registry.Identify("u1", id, id, newFakeChannel())
			registry.SessionsByUser("u1")
			registry.Remove(id)
		}(i)
	}
	wg.Wait()
}
