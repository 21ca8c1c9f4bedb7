package multiplayer

import "github.com/kirinami/bancho-backend/internal/packet"

// Endpoint is one seated player's connection. Implementations deliver
// packets without blocking the caller; a slow or dead connection is the
// endpoint's problem, never the match's.
type Endpoint interface {
	UserID() int32
	WritePacket(t packet.Type, data any)

	SendMatchJoinSuccess(data *packet.MatchData)
	SendMatchJoinFail()
	SendNotification(text string)

	// CurrentMatch is the connection's room back-reference, nil when the
	// player is not seated anywhere. The match owns writes to it.
	CurrentMatch() *Match
	SetCurrentMatch(m *Match)
}

// Registry is the match's view of whatever tracks live rooms.
type Registry interface {
	RemoveMatch(matchID int32)
	WriteUpdateToLobby(m *Match)
}
