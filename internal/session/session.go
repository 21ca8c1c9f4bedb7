package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kirinami/bancho-backend/internal/multiplayer"
	"github.com/kirinami/bancho-backend/internal/packet"
)

const writeTimeout = 3 * time.Second

// Session is one connected player: the websocket, a buffered outbox drained
// by a single writer goroutine, and the back-reference to the match the
// player is seated in (if any). It implements multiplayer.Endpoint.
type Session struct {
	id       string
	userID   int32
	username string

	conn   *websocket.Conn
	outbox chan packet.Frame
	log    *zap.Logger

	closeOnce sync.Once
	closed    chan struct{}

	mu    sync.Mutex
	match *multiplayer.Match
}

func New(userID int32, username string, conn *websocket.Conn, outboxSize int, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	return &Session{
		id:       id,
		userID:   userID,
		username: username,
		conn:     conn,
		outbox:   make(chan packet.Frame, outboxSize),
		log:      log.With(zap.String("sessionID", id), zap.Int32("userID", userID)),
		closed:   make(chan struct{}),
	}
}

func (s *Session) ID() string       { return s.id }
func (s *Session) UserID() int32    { return s.userID }
func (s *Session) Username() string { return s.username }

// WritePacket queues one frame for delivery. It never blocks: a full outbox
// means the client stopped reading, and such a client is closed rather than
// allowed to stall a broadcast.
func (s *Session) WritePacket(t packet.Type, data any) {
	select {
	case <-s.closed:
	case s.outbox <- packet.Frame{ID: t, Data: data}:
	default:
		s.log.Warn("outbox full, dropping session")
		s.Close()
	}
}

func (s *Session) SendMatchJoinSuccess(data *packet.MatchData) {
	s.WritePacket(packet.MatchJoinSuccess, data)
}

func (s *Session) SendMatchJoinFail() {
	s.WritePacket(packet.MatchJoinFail, nil)
}

func (s *Session) SendNotification(text string) {
	s.WritePacket(packet.Notification, text)
}

// CurrentMatch returns the room this session is seated in, nil when lobby
// bound. Written only by match synchronize.
func (s *Session) CurrentMatch() *multiplayer.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match
}

func (s *Session) SetCurrentMatch(m *multiplayer.Match) {
	s.mu.Lock()
	s.match = m
	s.mu.Unlock()
}

// Close tears the session down. Idempotent; the write loop exits on its own.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// Closed is signalled when the session is torn down.
func (s *Session) Closed() <-chan struct{} { return s.closed }

// WriteLoop drains the outbox onto the socket until the session closes or
// the connection dies. Run it on its own goroutine, one per session.
func (s *Session) WriteLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		case frame := <-s.outbox:
			payload, err := json.Marshal(frame)
			if err != nil {
				s.log.Error("marshal frame", zap.Error(err), zap.Int("packet", int(frame.ID)))
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = s.conn.Write(wctx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				s.Close()
				return
			}
		}
	}
}
