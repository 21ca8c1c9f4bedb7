package ws

import "github.com/kirinami/bancho-backend/internal/packet"

// ClientMessage is the JSON envelope clients send over the websocket. Type
// selects the operation; the remaining fields are operation-specific.
type ClientMessage struct {
	Type string `json:"type"`

	MatchID  int32  `json:"match_id,omitempty"`
	Password string `json:"password,omitempty"`

	SlotID  int32  `json:"slot_id,omitempty"`
	Status  int32  `json:"status,omitempty"`
	Mods    int32  `json:"mods,omitempty"`
	Team    *int32 `json:"team,omitempty"`
	Seconds int    `json:"seconds,omitempty"`

	Settings    *packet.MatchData  `json:"settings,omitempty"`
	NewPassword *string            `json:"new_password,omitempty"`
	Frame       *packet.ScoreFrame `json:"frame,omitempty"`
}

// ErrorMessage is sent back for unparseable or unknown client messages.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
