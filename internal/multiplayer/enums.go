package multiplayer

// SlotStatus is the per-seat status bitmask used on the wire.
type SlotStatus int32

const (
	SlotStatusOpen     SlotStatus = 1
	SlotStatusLocked   SlotStatus = 2
	SlotStatusNotReady SlotStatus = 4
	SlotStatusReady    SlotStatus = 8
	SlotStatusNoMap    SlotStatus = 16
	SlotStatusPlaying  SlotStatus = 32
	SlotStatusComplete SlotStatus = 64
)

// HasPlayer reports whether the status describes a seated occupant rather
// than an empty or locked seat.
func (s SlotStatus) HasPlayer() bool {
	return s&(SlotStatusNotReady|SlotStatusReady|SlotStatusNoMap|SlotStatusPlaying|SlotStatusComplete) != 0
}

type SlotTeam int32

const (
	SlotTeamNeutral SlotTeam = 0
	SlotTeamBlue    SlotTeam = 1
	SlotTeamRed     SlotTeam = 2
)

type TeamType int32

const (
	TeamTypeHeadToHead TeamType = 0
	TeamTypeTagCoop    TeamType = 1
	TeamTypeTeamVs     TeamType = 2
	TeamTypeTagTeamVs  TeamType = 3
)

// UsesTeams reports whether seats carry a meaningful Blue/Red assignment.
func (t TeamType) UsesTeams() bool {
	return t == TeamTypeTeamVs || t == TeamTypeTagTeamVs
}

type WinCondition int32

const (
	WinConditionScore    WinCondition = 0
	WinConditionAccuracy WinCondition = 1
	WinConditionCombo    WinCondition = 2
	WinConditionScoreV2  WinCondition = 3
)

type SpecialMode int32

const (
	SpecialModeNone    SpecialMode = 0
	SpecialModeFreeMod SpecialMode = 1
)

type GameMode int32

const (
	GameModeStandard GameMode = 0
	GameModeTaiko    GameMode = 1
	GameModeCatch    GameMode = 2
	GameModeMania    GameMode = 3
)

// Mods is the gameplay modifier bitmask.
type Mods int32

const (
	ModNone        Mods = 0
	ModNoFail      Mods = 1 << 0
	ModEasy        Mods = 1 << 1
	ModTouchDevice Mods = 1 << 2
	ModHidden      Mods = 1 << 3
	ModHardRock    Mods = 1 << 4
	ModSuddenDeath Mods = 1 << 5
	ModDoubleTime  Mods = 1 << 6
	ModRelax       Mods = 1 << 7
	ModHalfTime    Mods = 1 << 8
	ModNightcore   Mods = 1 << 9
	ModFlashlight  Mods = 1 << 10
	ModAutoplay    Mods = 1 << 11
	ModSpunOut     Mods = 1 << 12
)

// SpeedChangingMods is the subset that stays room-wide while free mod is
// active: everybody has to play at the same rate.
const SpeedChangingMods = ModDoubleTime | ModNightcore | ModHalfTime
