package registry

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kirinami/bancho-backend/internal/multiplayer"
	"github.com/kirinami/bancho-backend/internal/packet"
)

// Registry tracks every live match and the sessions watching the lobby
// listing. It is the concrete collaborator behind the match's RemoveMatch /
// WriteUpdateToLobby calls, which arrive while the calling match holds its
// own lock; nothing here may call back into a locking match method (the
// lock-free LobbyData snapshot exists for exactly that).
type Registry struct {
	log      *zap.Logger
	emptyTTL time.Duration

	mu       sync.RWMutex
	matches  map[int32]*multiplayer.Match
	watchers map[int32]multiplayer.Endpoint
	nextID   int32
}

// emptyMatchTTL is how long a freshly created match may sit with no seated
// player before it is reaped from the listing.
const emptyMatchTTL = 30 * time.Second

func New(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		log:      log,
		emptyTTL: emptyMatchTTL,
		matches:  make(map[int32]*multiplayer.Match),
		watchers: make(map[int32]multiplayer.Endpoint),
	}
}

// CreateMatch assigns the next match id, builds the match and announces it
// to the lobby. A match nobody joins within the empty-room TTL is reaped;
// rooms that empty after being joined deregister themselves.
func (r *Registry) CreateMatch(data packet.MatchData) *multiplayer.Match {
	r.mu.Lock()
	r.nextID++
	data.ID = r.nextID
	m := multiplayer.NewMatch(data, r, r.log)
	r.matches[data.ID] = m
	r.mu.Unlock()

	time.AfterFunc(r.emptyTTL, func() {
		if m.CloseIfEmpty() {
			r.log.Info("reaping never-joined match", zap.Int32("matchID", m.ID()))
			r.RemoveMatch(m.ID())
		}
	})

	r.log.Info("match created", zap.Int32("matchID", data.ID), zap.String("name", data.Name))

	lobbyData := m.LobbyData()
	for _, w := range r.watcherSnapshot() {
		w.WritePacket(packet.MatchNew, &lobbyData)
	}
	return m
}

// Match returns the live match with the given id, or nil.
func (r *Registry) Match(id int32) *multiplayer.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.matches[id]
}

// Matches returns all live matches ordered by id.
func (r *Registry) Matches() []*multiplayer.Match {
	r.mu.RLock()
	out := make([]*multiplayer.Match, 0, len(r.matches))
	for _, m := range r.matches {
		out = append(out, m)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// RemoveMatch drops a match from the listing and tells lobby watchers it is
// gone. Called by the match itself the moment it empties.
func (r *Registry) RemoveMatch(matchID int32) {
	r.mu.Lock()
	_, ok := r.matches[matchID]
	delete(r.matches, matchID)
	r.mu.Unlock()
	if !ok {
		return
	}

	r.log.Info("match removed", zap.Int32("matchID", matchID))
	for _, w := range r.watcherSnapshot() {
		w.WritePacket(packet.MatchDisband, matchID)
	}
}

// WriteUpdateToLobby pushes a match's current descriptor to every lobby
// watcher.
func (r *Registry) WriteUpdateToLobby(m *multiplayer.Match) {
	data := m.LobbyData()
	for _, w := range r.watcherSnapshot() {
		w.WritePacket(packet.MatchUpdate, &data)
	}
}

// JoinLobby registers a session as a lobby watcher and backfills the
// current listing.
func (r *Registry) JoinLobby(e multiplayer.Endpoint) {
	r.mu.Lock()
	r.watchers[e.UserID()] = e
	r.mu.Unlock()

	for _, m := range r.Matches() {
		data := m.LobbyData()
		e.WritePacket(packet.MatchNew, &data)
	}
}

// PartLobby deregisters a lobby watcher.
func (r *Registry) PartLobby(userID int32) {
	r.mu.Lock()
	delete(r.watchers, userID)
	r.mu.Unlock()
}

func (r *Registry) watcherSnapshot() []multiplayer.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]multiplayer.Endpoint, 0, len(r.watchers))
	for _, w := range r.watchers {
		out = append(out, w)
	}
	return out
}
