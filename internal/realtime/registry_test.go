package realtime_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/printhub/realtime-api/internal/realtime"
	"github.com/printhub/realtime-api/pkg/logger"
)

func newRegistry() *realtime.RoomRegistry {
	return realtime.NewRoomRegistry(logger.NewLogger("error"))
}

func TestJoinIsIdempotent(t *testing.T) {
	registry := newRegistry()
	session := realtime.NewSession()

	registry.Join("shop-1", session)
	registry.Join("shop-1", session)
	registry.Join("shop-1", session)

	assert.Len(t, registry.MembersOf("shop-1"), 1)
}

func TestLeaveIsIdempotent(t *testing.T) {
	registry := newRegistry()
	session := realtime.NewSession()

	registry.Join("shop-1", session)
	registry.Leave("shop-1", session)
	registry.Leave("shop-1", session)

	assert.Empty(t, registry.MembersOf("shop-1"))

	// leaving a room never joined is a no-op
	registry.Leave("shop-2", session)
	assert.Empty(t, registry.MembersOf("shop-2"))
}

func TestDropSessionRemovesFromAllRooms(t *testing.T) {
	registry := newRegistry()
	session := realtime.NewSession()
	other := realtime.NewSession()

	registry.Join("shop-1", session)
	registry.Join("order-up-1a2b3c4d", session)
	registry.Join("shop-1", other)

	registry.DropSession(session)
	registry.DropSession(session) // redundant teardown path

	assert.Empty(t, registry.Rooms(session))
	assert.Len(t, registry.MembersOf("shop-1"), 1)
	assert.Same(t, other, registry.MembersOf("shop-1")[0])
	assert.Empty(t, registry.MembersOf("order-up-1a2b3c4d"))
}

func TestMembersOfReturnsSnapshot(t *testing.T) {
	registry := newRegistry()
	session := realtime.NewSession()

	registry.Join("shop-1", session)

	snapshot := registry.MembersOf("shop-1")
	snapshot[0] = nil

	assert.Same(t, session, registry.MembersOf("shop-1")[0])
}

func TestRoomIsolation(t *testing.T) {
	registry := newRegistry()
	a := realtime.NewSession()
	b := realtime.NewSession()

	registry.Join("order-A", a)
	registry.Join("order-B", b)

	membersA := registry.MembersOf("order-A")
	assert.Len(t, membersA, 1)
	assert.Same(t, a, membersA[0])

	membersB := registry.MembersOf("order-B")
	assert.Len(t, membersB, 1)
	assert.Same(t, b, membersB[0])
}

func TestConcurrentJoinLeave(t *testing.T) {
	registry := newRegistry()

	var wg sync.WaitGroup
	sessions := make([]*realtime.Session, 50)

	for i := range sessions {
		sessions[i] = realtime.NewSession()
		wg.Add(1)

		go func(s *realtime.Session) {
			defer wg.Done()
			registry.Join("shop-1", s)
			registry.Join("shop-1", s)
			registry.MembersOf("shop-1")
		}(sessions[i])
	}

	wg.Wait()
	assert.Len(t, registry.MembersOf("shop-1"), 50)

	for _, s := range sessions {
		wg.Add(1)
		go func(s *realtime.Session) {
			defer wg.Done()
			registry.DropSession(s)
		}(s)
	}

	wg.Wait()
	assert.Empty(t, registry.MembersOf("shop-1"))
}
