package multiplayer

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/kirinami/bancho-backend/internal/packet"
)

// Match is one multiplayer room: sixteen slots, the connections currently
// seated in them, and the wire descriptor the protocol layer broadcasts.
// The slots are the source of truth; the descriptor's per-seat arrays are
// regenerated from them on every synchronize.
//
// Every public method acquires mu for its full duration, so multi-step
// operations are atomic relative to each other even though callers run on
// independent connection goroutines.
type Match struct {
	mu sync.Mutex

	data      packet.MatchData
	creatorID int32
	slots     [packet.MaxSlots]*Slot
	players   map[int32]Endpoint
	removed   bool

	// snapshot is the descriptor copy published by the last synchronize.
	// The registry reads it while the match mutex is held by the caller,
	// so it must not require the lock.
	snapshot atomic.Pointer[packet.MatchData]

	registry Registry
	log      *zap.Logger

	// timerMu serializes StartTimer/StopTimer, which join the old timer's
	// goroutine. It is never taken while holding mu, and timer callbacks
	// never take it.
	timerMu sync.Mutex
	timer   *CountdownTimer
}

// NewMatch builds a room from an initial descriptor. Seats flagged Locked in
// the descriptor's status array start locked; everything else starts open.
func NewMatch(data packet.MatchData, registry Registry, log *zap.Logger) *Match {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Match{
		data:      data,
		creatorID: data.HostID,
		players:   make(map[int32]Endpoint),
		registry:  registry,
		log:       log.With(zap.Int32("matchID", data.ID)),
	}
	for i := range m.slots {
		m.slots[i] = NewSlot()
		if SlotStatus(data.SlotStatus[i]) == SlotStatusLocked {
			m.slots[i].UpdateLock(true)
		}
	}
	m.refreshSlotArrays()
	initial := m.data
	m.snapshot.Store(&initial)
	return m
}

// ID returns the match id.
func (m *Match) ID() int32 {
	return m.data.ID
}

// Data returns a copy of the current descriptor, seat arrays refreshed.
func (m *Match) Data() packet.MatchData {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshSlotArrays()
	return m.data
}

// LobbyData returns the descriptor copy published by the last synchronize.
// Unlike Data it never takes the match lock, so the registry may call it
// from inside a broadcast triggered by this match.
func (m *Match) LobbyData() packet.MatchData {
	return *m.snapshot.Load()
}

// PlayerCount returns how many connections are seated.
func (m *Match) PlayerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.players)
}

// CloseIfEmpty marks a match nobody is seated in as dead, so the registry
// can reap rooms that were created but never joined. Reports whether the
// match was closed by this call; a seated player or an earlier close keeps
// it alive. Further join attempts on a closed match fail.
func (m *Match) CloseIfEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removed || len(m.players) > 0 {
		return false
	}
	m.removed = true
	return true
}

// HasHostPrivileges reports whether the user may issue host-only commands:
// the current host, or the user who created the room. Creator privilege
// survives transferring host away.
func (m *Match) HasHostPrivileges(userID int32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasHostPrivileges(userID)
}

func (m *Match) hasHostPrivileges(userID int32) bool {
	return userID == m.data.HostID || userID == m.creatorID
}

// AddPlayer seats the endpoint's user in the first open slot. Refused (with
// a join-fail signal, no state change) when the user is already seated here,
// already in another match, the password does not match, or no slot is open.
func (m *Match) AddPlayer(e Endpoint, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.removed {
		e.SendMatchJoinFail()
		return
	}
	userID := e.UserID()
	if _, seated := m.players[userID]; seated || e.CurrentMatch() != nil {
		e.SendMatchJoinFail()
		return
	}
	if m.data.Password != nil && *m.data.Password != password {
		e.SendMatchJoinFail()
		return
	}

	slot := m.firstOpenSlot()
	if slot == nil {
		e.SendMatchJoinFail()
		return
	}

	m.players[userID] = e
	slot.AddPlayer(userID)

	m.refreshSlotArrays()
	data := m.data
	e.SendMatchJoinSuccess(&data)

	m.log.Debug("player joined", zap.Int32("userID", userID))
	m.synchronize(true)
}

// RemovePlayer unseats the endpoint's user. No-op when the user holds no
// seat here. A forced removal (kick) additionally notifies the endpoint and
// sends a join-fail so the client drops back to the lobby.
func (m *Match) RemovePlayer(e Endpoint, forced bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removePlayer(e, forced)
}

// KickPlayer forcibly removes whoever occupies the given seat. Host only;
// the host cannot kick themselves this way.
func (m *Match) KickPlayer(e Endpoint, slotID int32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasHostPrivileges(e.UserID()) {
		return
	}
	if slotID < 0 || slotID >= packet.MaxSlots {
		return
	}
	slot := m.slots[slotID]
	if !slot.HasPlayer() || slot.UserID == e.UserID() {
		return
	}
	target, ok := m.players[slot.UserID]
	if !ok {
		return
	}
	m.removePlayer(target, true)
}

func (m *Match) removePlayer(e Endpoint, forced bool) {
	userID := e.UserID()
	slot := m.slotByUser(userID)
	if slot == nil {
		return
	}

	if m.data.HostID == userID {
		m.data.HostID = m.nextHost(userID)
	}
	slot.RemovePlayer()

	if forced {
		e.SendNotification("You have been removed from the match.")
		e.SendMatchJoinFail()
	}

	m.log.Debug("player left", zap.Int32("userID", userID), zap.Bool("forced", forced))
	m.synchronize(true)
}

// nextHost picks a replacement host from the remaining seated players, or
// NoUser when nobody is left.
func (m *Match) nextHost(leaving int32) int32 {
	for _, s := range m.slots {
		if s.HasPlayer() && s.UserID != leaving {
			return s.UserID
		}
	}
	return NoUser
}

// UpdateMatchSettings replaces the descriptor. Requires the match id to
// agree and the requester to hold host privileges; the password field of the
// incoming descriptor is ignored (ChangePassword is the only way to change
// it). Handles the free-mod transitions and team reassignment on team-type
// change.
func (m *Match) UpdateMatchSettings(newData packet.MatchData, e Endpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if newData.ID != m.data.ID || !m.hasHostPrivileges(e.UserID()) {
		return
	}

	newData.Password = m.data.Password

	prevFree := SpecialMode(m.data.SpecialModes) == SpecialModeFreeMod
	nextFree := SpecialMode(newData.SpecialModes) == SpecialModeFreeMod
	switch {
	case nextFree && !prevFree:
		// Each seat inherits the room mods minus the speed-changing part,
		// which stays room-wide so everybody plays at one rate.
		roomMods := Mods(m.data.ActiveMods)
		for _, s := range m.slots {
			if s.HasPlayer() {
				s.UpdateMods(roomMods &^ SpeedChangingMods)
			}
		}
		newData.ActiveMods = int32(roomMods & SpeedChangingMods)
	case prevFree && !nextFree:
		// The host's per-seat speed mods fold back into the room set and
		// individual choices are discarded.
		if hostSlot := m.slotByUser(newData.HostID); hostSlot != nil {
			newData.ActiveMods = int32(Mods(newData.ActiveMods) | hostSlot.Mods&SpeedChangingMods)
		}
		for _, s := range m.slots {
			s.UpdateMods(ModNone)
		}
	}

	if newData.TeamType != m.data.TeamType {
		usesTeams := TeamType(newData.TeamType).UsesTeams()
		for i, s := range m.slots {
			if !s.HasPlayer() {
				continue
			}
			if !usesTeams {
				s.UpdateTeam(SlotTeamNeutral)
			} else if i%2 == 0 {
				s.UpdateTeam(SlotTeamBlue)
			} else {
				s.UpdateTeam(SlotTeamRed)
			}
		}
	}

	m.data = newData
	m.synchronize(true)
}

// StartGame moves every occupied seat that has the map into Playing and
// broadcasts the start signal to those players. Duplicate start signals
// while a game is running are ignored.
func (m *Match) StartGame() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startGame()
}

func (m *Match) startGame() {
	if m.data.InProgress && m.anySlotPlaying() {
		return
	}

	for _, s := range m.slots {
		s.UpdateIsLoaded(false)
		s.UpdateIsSkipped(false)
		if s.HasPlayer() && s.Status != SlotStatusNoMap {
			s.UpdateStatus(SlotStatusPlaying)
		}
	}
	m.data.InProgress = true

	m.refreshSlotArrays()
	data := m.data
	for _, s := range m.slots {
		if s.Status != SlotStatusPlaying {
			continue
		}
		if e, ok := m.players[s.UserID]; ok {
			e.WritePacket(packet.MatchStart, &data)
		}
	}

	m.log.Info("game started")
	m.synchronize(true)
}

// EndGame resets every playing seat to NotReady and clears the in-progress
// flag. A forced end broadcasts the abort signal plus a notification instead
// of the normal finish signal.
func (m *Match) EndGame(forced bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endGame(forced)
}

func (m *Match) endGame(forced bool) {
	for _, s := range m.slots {
		s.UpdateIsLoaded(false)
		s.UpdateIsSkipped(false)
		if s.HasPlayer() && s.Status != SlotStatusNoMap {
			s.UpdateStatus(SlotStatusNotReady)
		}
	}
	m.data.InProgress = false

	if forced {
		m.writeToAllPlayers(packet.MatchAbort, nil)
		for _, e := range m.players {
			e.SendNotification("The match was aborted.")
		}
	} else {
		m.writeToAllPlayers(packet.MatchComplete, nil)
	}

	m.log.Info("game ended", zap.Bool("forced", forced))
	m.synchronize(true)
}

// ChangeTeam toggles or sets the caller's team. Only meaningful in team
// modes; refused while the game is running unless forced. The lobby listing
// is not poked for this, it is a cosmetic change.
func (m *Match) ChangeTeam(e Endpoint, team *SlotTeam, force bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !TeamType(m.data.TeamType).UsesTeams() {
		return
	}
	if m.data.InProgress && !force {
		return
	}
	slot := m.slotByUser(e.UserID())
	if slot == nil {
		return
	}
	if team != nil {
		slot.UpdateTeam(*team)
	} else {
		slot.UpdateTeam()
	}
	m.synchronize(false)
}

// ChangeMods applies a mod selection. Outside free mod only the host may
// set mods and they apply room-wide. Under free mod each seated player owns
// their per-seat mods, while the room keeps only the speed-changing subset,
// which the host alone controls.
func (m *Match) ChangeMods(e Endpoint, mods Mods) {
	m.mu.Lock()
	defer m.mu.Unlock()

	userID := e.UserID()
	if SpecialMode(m.data.SpecialModes) != SpecialModeFreeMod {
		if !m.hasHostPrivileges(userID) {
			return
		}
		m.data.ActiveMods = int32(mods)
		m.synchronize(true)
		return
	}

	slot := m.slotByUser(userID)
	if slot == nil {
		return
	}
	if m.hasHostPrivileges(userID) {
		m.data.ActiveMods = int32(mods & SpeedChangingMods)
	}
	slot.UpdateMods(mods &^ SpeedChangingMods)
	m.synchronize(true)
}

// MovePlayer moves the caller to another seat, which must be empty and not
// locked. Refused while the game is running unless forced.
func (m *Match) MovePlayer(e Endpoint, slotID int32, force bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data.InProgress && !force {
		return
	}
	if slotID < 0 || slotID >= packet.MaxSlots {
		return
	}
	src := m.slotByUser(e.UserID())
	if src == nil {
		return
	}
	dst := m.slots[slotID]
	if dst == src || dst.HasPlayer() || dst.Status == SlotStatusLocked {
		return
	}
	dst.CopyFrom(src)
	src.RemovePlayer()
	m.synchronize(true)
}

// UpdatePlayerStatus sets the caller's seat status. Clients may only report
// NotReady, Ready or NoMap; Open/Locked would fake an empty seat and
// Playing/Complete belong to the game lifecycle, so anything else is
// ignored.
func (m *Match) UpdatePlayerStatus(e Endpoint, status SlotStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch status {
	case SlotStatusNotReady, SlotStatusReady, SlotStatusNoMap:
	default:
		return
	}

	slot := m.slotByUser(e.UserID())
	if slot == nil {
		return
	}
	slot.UpdateStatus(status)
	m.synchronize(true)
}

// ChangePassword sets or clears the room password. Host only. Every seated
// player is told the new password so reconnects keep working.
func (m *Match) ChangePassword(e Endpoint, password *string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasHostPrivileges(e.UserID()) {
		return
	}
	m.data.Password = password

	announced := ""
	if password != nil {
		announced = *password
	}
	m.writeToAllPlayers(packet.MatchChangePassword, announced)
	m.synchronize(true)
}

// TransferHost hands host to the occupant of the given seat. Host only.
func (m *Match) TransferHost(e Endpoint, slotID int32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasHostPrivileges(e.UserID()) {
		return
	}
	if slotID < 0 || slotID >= packet.MaxSlots {
		return
	}
	target := m.slots[slotID]
	if !target.HasPlayer() {
		return
	}
	m.data.HostID = target.UserID
	if newHost, ok := m.players[target.UserID]; ok {
		newHost.WritePacket(packet.MatchTransferHost, nil)
	}
	m.synchronize(true)
}

// ClearHost removes the host outright, leaving the room hostless. Only the
// room's creator may do this.
func (m *Match) ClearHost(e Endpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.UserID() != m.creatorID {
		return
	}
	m.data.HostID = NoUser
	m.synchronize(true)
}

// LockSlot toggles a seat between locked and open, evicting any occupant.
// Host only; the seat currently holding the host cannot be locked.
func (m *Match) LockSlot(e Endpoint, slotID int32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasHostPrivileges(e.UserID()) {
		return
	}
	if slotID < 0 || slotID >= packet.MaxSlots {
		return
	}
	slot := m.slots[slotID]
	if slot.HasPlayer() && slot.UserID == m.data.HostID {
		return
	}
	slot.UpdateLock()
	m.synchronize(true)
}

// SetPlayerLoaded marks the caller's seat loaded; once every playing seat is
// loaded, all players get the all-loaded signal.
func (m *Match) SetPlayerLoaded(e Endpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot := m.slotByUser(e.UserID())
	if slot == nil {
		return
	}
	slot.UpdateIsLoaded(true)

	for _, s := range m.slots {
		if s.Status == SlotStatusPlaying && !s.IsLoaded {
			m.synchronize(false)
			return
		}
	}
	m.refreshSlotArrays()
	data := m.data
	m.writeToAllPlayers(packet.MatchAllPlayersLoaded, &data)
	m.synchronize(false)
}

// SetPlayerSkipped marks the caller's seat as wanting to skip. Everyone is
// told which seat skipped; once every playing seat has skipped, the skip
// itself is broadcast.
func (m *Match) SetPlayerSkipped(e Endpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot := m.slotByUser(e.UserID())
	if slot == nil {
		return
	}
	slot.UpdateIsSkipped(true)

	if idx := m.slotIndexByUser(e.UserID()); idx >= 0 {
		m.writeToAllPlayers(packet.MatchPlayerSkipped, idx)
	}
	for _, s := range m.slots {
		if s.Status == SlotStatusPlaying && !s.IsSkipped {
			m.synchronize(false)
			return
		}
	}
	m.writeToAllPlayers(packet.MatchSkip, nil)
	m.synchronize(false)
}

// SetPlayerCompleted marks the caller's seat complete; when no seat is left
// playing, the game ends.
func (m *Match) SetPlayerCompleted(e Endpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot := m.slotByUser(e.UserID())
	if slot == nil {
		return
	}
	slot.UpdateStatus(SlotStatusComplete)

	if m.anySlotPlaying() {
		m.synchronize(false)
		return
	}
	m.endGame(false)
}

// SendPlayerScoreUpdate relays a live score frame to everyone in the match,
// stamped with the sender's seat. Pure relay, no state change.
func (m *Match) SendPlayerScoreUpdate(e Endpoint, frame packet.ScoreFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.slotIndexByUser(e.UserID())
	if idx < 0 {
		return
	}
	frame.SlotID = idx
	m.writeToAllPlayers(packet.MatchScoreUpdate, &frame)
}

// SendPlayerFailed relays a fail signal tagged with the sender's seat.
func (m *Match) SendPlayerFailed(e Endpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.slotIndexByUser(e.UserID())
	if idx < 0 {
		return
	}
	m.writeToAllPlayers(packet.MatchPlayerFailed, idx)
}

// StartTimer begins a countdown on this match, stopping any previous one
// first. Alerts are broadcast to seated players as notifications; onFinish
// runs when the countdown reaches zero.
func (m *Match) StartTimer(seconds int, template string, onFinish func()) {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()

	m.stopTimer()
	t := NewCountdownTimer(seconds, template,
		func(message string) { m.NotifyAll(message) },
		func() {
			m.detachTimer()
			if onFinish != nil {
				onFinish()
			}
		})
	m.mu.Lock()
	m.timer = t
	m.mu.Unlock()
}

// StopTimer cancels the active countdown, if any. No callback fires after it
// returns.
func (m *Match) StopTimer() {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()
	m.stopTimer()
}

func (m *Match) stopTimer() {
	m.mu.Lock()
	t := m.timer
	m.timer = nil
	m.mu.Unlock()
	if t != nil {
		t.Stop()
	}
}

func (m *Match) detachTimer() {
	m.mu.Lock()
	m.timer = nil
	m.mu.Unlock()
}

// NotifyAll sends a chat-style notification to every seated player.
func (m *Match) NotifyAll(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.players {
		e.SendNotification(text)
	}
}

// FindSlot looks a seat up by exactly one of seat id or user id; pass NoUser
// (or a negative seat id) for the criterion not in use. Asking by both or by
// neither is a caller bug and panics; an out-of-range seat or an unseated
// user is a runtime condition and returns nil.
func (m *Match) FindSlot(slotID, userID int32) *Slot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if (slotID >= 0) == (userID >= 0) {
		panic("multiplayer: slot lookup requires exactly one of slot id or user id")
	}
	if slotID >= 0 {
		if slotID >= packet.MaxSlots {
			return nil
		}
		return m.slots[slotID]
	}
	return m.slotByUser(userID)
}

func (m *Match) slotByUser(userID int32) *Slot {
	for _, s := range m.slots {
		if s.UserID == userID && s.HasPlayer() {
			return s
		}
	}
	return nil
}

func (m *Match) slotIndexByUser(userID int32) int32 {
	for i, s := range m.slots {
		if s.UserID == userID && s.HasPlayer() {
			return int32(i)
		}
	}
	return -1
}

func (m *Match) firstOpenSlot() *Slot {
	for _, s := range m.slots {
		if s.Status == SlotStatusOpen {
			return s
		}
	}
	return nil
}

func (m *Match) anySlotPlaying() bool {
	for _, s := range m.slots {
		if s.Status == SlotStatusPlaying {
			return true
		}
	}
	return false
}

// refreshSlotArrays rewrites the descriptor's four parallel arrays from slot
// state. Slots stay the single source of truth; the arrays are never
// mutated directly anywhere else.
func (m *Match) refreshSlotArrays() {
	for i, s := range m.slots {
		m.data.SlotID[i] = s.UserID
		m.data.SlotStatus[i] = int32(s.Status)
		m.data.SlotMods[i] = int32(s.Mods)
		m.data.SlotTeam[i] = int32(s.Team)
	}
}

// synchronize reconciles descriptor, slots and the player map after a
// mutation, then broadcasts the updated descriptor. When the last player is
// gone the match deregisters itself instead. notifyLobby is false for
// cosmetic changes the lobby listing does not care about.
func (m *Match) synchronize(notifyLobby bool) {
	if m.removed {
		return
	}

	m.refreshSlotArrays()

	seated := make(map[int32]struct{}, packet.MaxSlots)
	for _, s := range m.slots {
		if s.HasPlayer() {
			seated[s.UserID] = struct{}{}
			if e, ok := m.players[s.UserID]; ok && e.CurrentMatch() != m {
				e.SetCurrentMatch(m)
			}
		}
	}
	for userID, e := range m.players {
		if _, ok := seated[userID]; !ok {
			delete(m.players, userID)
			e.SetCurrentMatch(nil)
		}
	}

	data := m.data
	m.snapshot.Store(&data)

	if len(m.players) == 0 {
		m.removed = true
		m.registry.RemoveMatch(m.data.ID)
		m.log.Debug("match emptied, deregistered")
		return
	}

	m.writeToAllPlayers(packet.MatchUpdate, &data)
	if notifyLobby {
		m.registry.WriteUpdateToLobby(m)
	}
}

// writeToAllPlayers delivers one packet to every seated connection. Delivery
// is per-endpoint and non-blocking; one bad connection never stalls the
// rest.
func (m *Match) writeToAllPlayers(t packet.Type, data any) {
	for _, e := range m.players {
		e.WritePacket(t, data)
	}
}
