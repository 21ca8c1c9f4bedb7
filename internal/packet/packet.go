package packet

// Server -> client message kinds. The ids are the classic Bancho packet ids
// so a real binary codec can sit in front of this layer without a mapping
// table.
type Type int

const (
	Notification          Type = 24
	MatchUpdate           Type = 26
	MatchNew              Type = 27
	MatchDisband          Type = 28
	MatchJoinSuccess      Type = 36
	MatchJoinFail         Type = 37
	MatchStart            Type = 46
	MatchScoreUpdate      Type = 48
	MatchTransferHost     Type = 50
	MatchAllPlayersLoaded Type = 53
	MatchPlayerFailed     Type = 57
	MatchComplete         Type = 58
	MatchSkip             Type = 61
	MatchPlayerSkipped    Type = 81
	MatchChangePassword   Type = 91
	MatchAbort            Type = 106
)

// Frame is the unit written to a connection: packet id plus payload.
type Frame struct {
	ID   Type `json:"id"`
	Data any  `json:"data,omitempty"`
}
