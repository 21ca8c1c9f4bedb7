package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/kirinami/bancho-backend/internal/multiplayer"
	"github.com/kirinami/bancho-backend/internal/registry"
	"github.com/kirinami/bancho-backend/internal/session"
)

const readTimeout = 60 * time.Second

// Handler upgrades a connection and services it as one player session.
// Identity comes from the query string; authentication proper lives in a
// different layer.
func Handler(reg *registry.Registry, outboxSize int, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 32)
		if err != nil || userID < 0 {
			http.Error(w, "missing or bad user_id", http.StatusBadRequest)
			return
		}
		username := r.URL.Query().Get("username")
		if username == "" {
			http.Error(w, "missing username", http.StatusBadRequest)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		s := session.New(int32(userID), username, conn, outboxSize, log)
		defer func() {
			if m := s.CurrentMatch(); m != nil {
				m.RemovePlayer(s, false)
			}
			reg.PartLobby(s.UserID())
			s.Close()
		}()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go s.WriteLoop(writeCtx)

		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var msg ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}
			if !dispatch(reg, s, msg) {
				writeError(r.Context(), conn, "unknown type")
			}
		}
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, text string) {
	payload, _ := json.Marshal(ErrorMessage{Type: "Error", Error: text})
	_ = conn.Write(ctx, websocket.MessageText, payload)
}

// dispatch maps one client message onto one registry or match operation.
// Returns false for an unknown message type. Match operations issued while
// not seated anywhere are silently ignored, matching the engine's
// precondition rules.
func dispatch(reg *registry.Registry, s *session.Session, msg ClientMessage) bool {
	switch msg.Type {
	case "lobby_join":
		reg.JoinLobby(s)
	case "lobby_part":
		reg.PartLobby(s.UserID())

	case "create":
		if msg.Settings == nil {
			return true
		}
		settings := *msg.Settings
		settings.HostID = s.UserID()
		m := reg.CreateMatch(settings)
		m.AddPlayer(s, msg.Password)
	case "join":
		m := reg.Match(msg.MatchID)
		if m == nil {
			s.SendMatchJoinFail()
			return true
		}
		m.AddPlayer(s, msg.Password)
	case "leave":
		if m := s.CurrentMatch(); m != nil {
			m.RemovePlayer(s, false)
		}

	case "settings":
		if m := s.CurrentMatch(); m != nil && msg.Settings != nil {
			m.UpdateMatchSettings(*msg.Settings, s)
		}
	case "start":
		if m := s.CurrentMatch(); m != nil && m.HasHostPrivileges(s.UserID()) {
			m.StartGame()
		}
	case "abort":
		if m := s.CurrentMatch(); m != nil && m.HasHostPrivileges(s.UserID()) {
			m.EndGame(true)
		}

	case "ready":
		if m := s.CurrentMatch(); m != nil {
			m.UpdatePlayerStatus(s, multiplayer.SlotStatusReady)
		}
	case "not_ready":
		if m := s.CurrentMatch(); m != nil {
			m.UpdatePlayerStatus(s, multiplayer.SlotStatusNotReady)
		}
	case "status":
		if m := s.CurrentMatch(); m != nil {
			m.UpdatePlayerStatus(s, multiplayer.SlotStatus(msg.Status))
		}
	case "mods":
		if m := s.CurrentMatch(); m != nil {
			m.ChangeMods(s, multiplayer.Mods(msg.Mods))
		}
	case "team":
		if m := s.CurrentMatch(); m != nil {
			var team *multiplayer.SlotTeam
			if msg.Team != nil {
				t := multiplayer.SlotTeam(*msg.Team)
				team = &t
			}
			m.ChangeTeam(s, team, false)
		}
	case "move":
		if m := s.CurrentMatch(); m != nil {
			m.MovePlayer(s, msg.SlotID, false)
		}
	case "lock":
		if m := s.CurrentMatch(); m != nil {
			m.LockSlot(s, msg.SlotID)
		}
	case "kick":
		if m := s.CurrentMatch(); m != nil {
			m.KickPlayer(s, msg.SlotID)
		}
	case "password":
		if m := s.CurrentMatch(); m != nil {
			m.ChangePassword(s, msg.NewPassword)
		}
	case "transfer_host":
		if m := s.CurrentMatch(); m != nil {
			m.TransferHost(s, msg.SlotID)
		}
	case "clear_host":
		if m := s.CurrentMatch(); m != nil {
			m.ClearHost(s)
		}

	case "loaded":
		if m := s.CurrentMatch(); m != nil {
			m.SetPlayerLoaded(s)
		}
	case "skip":
		if m := s.CurrentMatch(); m != nil {
			m.SetPlayerSkipped(s)
		}
	case "completed":
		if m := s.CurrentMatch(); m != nil {
			m.SetPlayerCompleted(s)
		}
	case "score":
		if m := s.CurrentMatch(); m != nil && msg.Frame != nil {
			m.SendPlayerScoreUpdate(s, *msg.Frame)
		}
	case "failed":
		if m := s.CurrentMatch(); m != nil {
			m.SendPlayerFailed(s)
		}

	case "timer_start":
		m := s.CurrentMatch()
		if m == nil || !m.HasHostPrivileges(s.UserID()) || msg.Seconds <= 0 {
			return true
		}
		m.StartTimer(msg.Seconds, "Match starting in %d seconds", func() {
			m.NotifyAll("Good luck, have fun!")
			m.StartGame()
		})
	case "timer_stop":
		if m := s.CurrentMatch(); m != nil && m.HasHostPrivileges(s.UserID()) {
			m.StopTimer()
		}

	default:
		return false
	}
	return true
}
