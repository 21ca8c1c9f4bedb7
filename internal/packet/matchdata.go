package packet

// MaxSlots is the fixed seat count of every match; the four per-seat arrays
// below are index-aligned with it.
const MaxSlots = 16

// MatchData is the wire-visible match descriptor. Seat arrays are parallel:
// index i in every array describes seat i.
type MatchData struct {
	ID         int32   `json:"id"`
	Name       string  `json:"name"`
	Password   *string `json:"password,omitempty"`
	InProgress bool    `json:"in_progress"`

	TeamType     int32 `json:"team_type"`
	SpecialModes int32 `json:"special_modes"`
	ActiveMods   int32 `json:"active_mods"`
	WinCondition int32 `json:"win_condition"`

	HostID int32 `json:"host_id"`

	BeatmapID       int32  `json:"beatmap_id"`
	BeatmapChecksum string `json:"beatmap_checksum"`
	BeatmapName     string `json:"beatmap_name"`
	Mode            int32  `json:"mode"`

	SlotID     [MaxSlots]int32 `json:"slot_id"`
	SlotStatus [MaxSlots]int32 `json:"slot_status"`
	SlotMods   [MaxSlots]int32 `json:"slot_mods"`
	SlotTeam   [MaxSlots]int32 `json:"slot_team"`
}

// ScoreFrame is a live gameplay score report relayed between players of one
// match. SlotID is stamped by the server, never trusted from the client.
type ScoreFrame struct {
	SlotID       int32   `json:"slot_id"`
	Time         int32   `json:"time"`
	Count300     int32   `json:"count_300"`
	Count100     int32   `json:"count_100"`
	Count50      int32   `json:"count_50"`
	CountGeki    int32   `json:"count_geki"`
	CountKatu    int32   `json:"count_katu"`
	CountMiss    int32   `json:"count_miss"`
	TotalScore   int32   `json:"total_score"`
	MaxCombo     int32   `json:"max_combo"`
	CurrentCombo int32   `json:"current_combo"`
	Perfect      bool    `json:"perfect"`
	HP           int32   `json:"hp"`
	TagByte      int32   `json:"tag_byte"`
	ScoreV2      bool    `json:"score_v2,omitempty"`
	ComboPortion float64 `json:"combo_portion,omitempty"`
	BonusPortion float64 `json:"bonus_portion,omitempty"`
}
