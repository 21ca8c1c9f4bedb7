package multiplayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotLifecycle(t *testing.T) {
	s := NewSlot()
	assert.Equal(t, NoUser, s.UserID)
	assert.Equal(t, SlotStatusOpen, s.Status)
	assert.False(t, s.HasPlayer())

	s.AddPlayer(7)
	assert.Equal(t, int32(7), s.UserID)
	assert.Equal(t, SlotStatusNotReady, s.Status)
	assert.True(t, s.HasPlayer())

	s.UpdateStatus(SlotStatusReady)
	s.UpdateMods(ModHidden)
	s.UpdateTeam(SlotTeamRed)
	s.UpdateIsLoaded(true)
	s.UpdateIsSkipped(true)

	s.RemovePlayer()
	assert.Equal(t, NoUser, s.UserID)
	assert.Equal(t, SlotStatusOpen, s.Status)
	assert.Equal(t, ModNone, s.Mods)
	assert.Equal(t, SlotTeamNeutral, s.Team)
	assert.False(t, s.IsLoaded)
	assert.False(t, s.IsSkipped)
}

func TestSlotAddPlayerExplicitStatus(t *testing.T) {
	s := NewSlot()
	s.AddPlayer(3, SlotStatusNoMap)
	assert.Equal(t, SlotStatusNoMap, s.Status)
}

func TestSlotCopyFromLeavesSourceIntact(t *testing.T) {
	src := NewSlot()
	src.AddPlayer(5)
	src.UpdateMods(ModHardRock)
	src.UpdateTeam(SlotTeamBlue)

	dst := NewSlot()
	dst.CopyFrom(src)

	assert.Equal(t, int32(5), dst.UserID)
	assert.Equal(t, ModHardRock, dst.Mods)
	assert.Equal(t, SlotTeamBlue, dst.Team)
	assert.Equal(t, int32(5), src.UserID, "copy must not clear the source")
}

func TestSlotLockToggleEvicts(t *testing.T) {
	s := NewSlot()
	s.AddPlayer(9)

	s.UpdateLock()
	assert.Equal(t, SlotStatusLocked, s.Status)
	assert.Equal(t, NoUser, s.UserID)

	s.UpdateLock()
	assert.Equal(t, SlotStatusOpen, s.Status)

	s.AddPlayer(9)
	s.UpdateLock(false)
	assert.Equal(t, SlotStatusOpen, s.Status)
	assert.Equal(t, NoUser, s.UserID, "forcing open clears the occupant")
}

func TestSlotTeamToggle(t *testing.T) {
	s := NewSlot()
	s.AddPlayer(1)

	s.UpdateTeam()
	assert.Equal(t, SlotTeamBlue, s.Team, "neutral toggles to blue first")
	s.UpdateTeam()
	assert.Equal(t, SlotTeamRed, s.Team)
	s.UpdateTeam()
	assert.Equal(t, SlotTeamBlue, s.Team)
}

func TestSlotFlagToggles(t *testing.T) {
	s := NewSlot()
	s.AddPlayer(1)

	s.UpdateIsLoaded()
	assert.True(t, s.IsLoaded)
	s.UpdateIsLoaded()
	assert.False(t, s.IsLoaded)

	s.UpdateIsSkipped()
	assert.True(t, s.IsSkipped)
	s.UpdateIsSkipped(false)
	assert.False(t, s.IsSkipped)
}

func TestSlotStatusHasPlayer(t *testing.T) {
	assert.False(t, SlotStatusOpen.HasPlayer())
	assert.False(t, SlotStatusLocked.HasPlayer())
	assert.True(t, SlotStatusNotReady.HasPlayer())
	assert.True(t, SlotStatusReady.HasPlayer())
	assert.True(t, SlotStatusNoMap.HasPlayer())
	assert.True(t, SlotStatusPlaying.HasPlayer())
	assert.True(t, SlotStatusComplete.HasPlayer())
}
