package multiplayer

// NoUser marks an unoccupied seat.
const NoUser int32 = -1

// Slot is one seat in a match. Slots are created with their match and live
// for its whole lifetime; RemovePlayer resets them instead of destroying
// them. All methods are plain mutations; the owning match serializes access.
type Slot struct {
	UserID    int32
	Status    SlotStatus
	Mods      Mods
	Team      SlotTeam
	IsLoaded  bool
	IsSkipped bool
}

func NewSlot() *Slot {
	return &Slot{UserID: NoUser, Status: SlotStatusOpen}
}

// AddPlayer seats a user. The caller is responsible for picking an
// unoccupied seat.
func (s *Slot) AddPlayer(userID int32, status ...SlotStatus) {
	s.UserID = userID
	s.Status = SlotStatusNotReady
	if len(status) > 0 {
		s.Status = status[0]
	}
}

// CopyFrom copies the full state of another slot onto this one, for
// seat-to-seat moves. The source is left untouched.
func (s *Slot) CopyFrom(other *Slot) {
	s.UserID = other.UserID
	s.Status = other.Status
	s.Mods = other.Mods
	s.Team = other.Team
	s.IsLoaded = other.IsLoaded
	s.IsSkipped = other.IsSkipped
}

// RemovePlayer resets the seat to empty and open.
func (s *Slot) RemovePlayer() {
	s.UserID = NoUser
	s.Status = SlotStatusOpen
	s.Mods = ModNone
	s.Team = SlotTeamNeutral
	s.IsLoaded = false
	s.IsSkipped = false
}

// UpdateLock toggles between Locked and Open, or forces the given state.
// Locking always evicts: a forced-open seat clears its occupant too.
func (s *Slot) UpdateLock(toLock ...bool) {
	lock := s.Status != SlotStatusLocked
	if len(toLock) > 0 {
		lock = toLock[0]
	}
	s.UserID = NoUser
	if lock {
		s.Status = SlotStatusLocked
	} else {
		s.Status = SlotStatusOpen
	}
	s.Mods = ModNone
	s.Team = SlotTeamNeutral
	s.IsLoaded = false
	s.IsSkipped = false
}

func (s *Slot) UpdateStatus(status SlotStatus) {
	s.Status = status
}

func (s *Slot) UpdateMods(mods Mods) {
	s.Mods = mods
}

// UpdateTeam toggles Blue and Red when called without an argument. Neutral
// is only ever entered through a team-mode change, never by toggling.
func (s *Slot) UpdateTeam(team ...SlotTeam) {
	if len(team) > 0 {
		s.Team = team[0]
		return
	}
	if s.Team == SlotTeamBlue {
		s.Team = SlotTeamRed
	} else {
		s.Team = SlotTeamBlue
	}
}

func (s *Slot) UpdateIsLoaded(loaded ...bool) {
	if len(loaded) > 0 {
		s.IsLoaded = loaded[0]
		return
	}
	s.IsLoaded = !s.IsLoaded
}

func (s *Slot) UpdateIsSkipped(skipped ...bool) {
	if len(skipped) > 0 {
		s.IsSkipped = skipped[0]
		return
	}
	s.IsSkipped = !s.IsSkipped
}

// HasPlayer reports whether the seat is occupied.
func (s *Slot) HasPlayer() bool {
	return s.UserID != NoUser
}
