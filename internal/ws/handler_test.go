package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinami/bancho-backend/internal/multiplayer"
	"github.com/kirinami/bancho-backend/internal/packet"
	"github.com/kirinami/bancho-backend/internal/registry"
	"github.com/kirinami/bancho-backend/internal/session"
)

// dispatch is exercised with real sessions whose write loop never runs; the
// outbox just buffers whatever the match sends.
func newTestSession(userID int32) *session.Session {
	return session.New(userID, "player", nil, 64, nil)
}

func TestDispatchCreateJoinAndPlay(t *testing.T) {
	reg := registry.New(nil)
	host := newTestSession(1)
	guest := newTestSession(2)

	ok := dispatch(reg, host, ClientMessage{
		Type:     "create",
		Settings: &packet.MatchData{Name: "room"},
	})
	require.True(t, ok)

	m := host.CurrentMatch()
	require.NotNil(t, m)
	assert.Equal(t, int32(1), m.Data().HostID, "creator becomes host")

	ok = dispatch(reg, guest, ClientMessage{Type: "join", MatchID: m.ID()})
	require.True(t, ok)
	require.Same(t, m, guest.CurrentMatch())

	dispatch(reg, guest, ClientMessage{Type: "ready"})
	assert.Equal(t, int32(multiplayer.SlotStatusReady), m.Data().SlotStatus[1])

	dispatch(reg, guest, ClientMessage{Type: "not_ready"})
	assert.Equal(t, int32(multiplayer.SlotStatusNotReady), m.Data().SlotStatus[1])

	dispatch(reg, guest, ClientMessage{Type: "status", Status: int32(multiplayer.SlotStatusReady)})
	assert.Equal(t, int32(multiplayer.SlotStatusReady), m.Data().SlotStatus[1])

	dispatch(reg, host, ClientMessage{Type: "start"})
	assert.True(t, m.Data().InProgress)

	dispatch(reg, host, ClientMessage{Type: "abort"})
	assert.False(t, m.Data().InProgress)

	dispatch(reg, guest, ClientMessage{Type: "leave"})
	assert.Nil(t, guest.CurrentMatch())
	dispatch(reg, host, ClientMessage{Type: "leave"})
	assert.Nil(t, reg.Match(m.ID()))
}

func TestDispatchJoinUnknownMatchFails(t *testing.T) {
	reg := registry.New(nil)
	s := newTestSession(1)

	ok := dispatch(reg, s, ClientMessage{Type: "join", MatchID: 404})
	require.True(t, ok)
	assert.Nil(t, s.CurrentMatch())
}

func TestDispatchUnknownType(t *testing.T) {
	reg := registry.New(nil)
	s := newTestSession(1)

	assert.False(t, dispatch(reg, s, ClientMessage{Type: "nonsense"}))
}

func TestDispatchMatchOpsWithoutMatchAreIgnored(t *testing.T) {
	reg := registry.New(nil)
	s := newTestSession(1)

	for _, typ := range []string{
		"leave", "start", "abort", "ready", "not_ready", "status", "mods", "team", "move",
		"lock", "kick", "password", "transfer_host", "clear_host",
		"loaded", "skip", "completed", "failed", "timer_stop",
	} {
		assert.True(t, dispatch(reg, s, ClientMessage{Type: typ}), typ)
	}
}

func TestDispatchHostOnlyGuards(t *testing.T) {
	reg := registry.New(nil)
	host := newTestSession(1)
	guest := newTestSession(2)

	dispatch(reg, host, ClientMessage{Type: "create", Settings: &packet.MatchData{Name: "room"}})
	m := host.CurrentMatch()
	require.NotNil(t, m)
	dispatch(reg, guest, ClientMessage{Type: "join", MatchID: m.ID()})

	dispatch(reg, guest, ClientMessage{Type: "start"})
	assert.False(t, m.Data().InProgress, "guest cannot start the game")

	dispatch(reg, guest, ClientMessage{Type: "timer_start", Seconds: 60})
	m.StopTimer()

	dispatch(reg, host, ClientMessage{Type: "start"})
	assert.True(t, m.Data().InProgress)
}
