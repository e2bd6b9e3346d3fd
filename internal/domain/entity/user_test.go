package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewUser_StartsInMainMenu(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	u := NewUser(1, 10, now)
	require.Equal(t, StateMainMenu, u.State)
	require.Equal(t, int64(10), u.ChatID)
	require.Equal(t, now, u.UpdatedAt)
}

func TestUser_SetStateRejectsUnknown(t *testing.T) {
	u := NewUser(7, 70, time.Time{})
	err := u.SetState("uploading", time.Now())
	require.True(t, IsValidation(err))
	require.Equal(t, StateMainMenu, u.State)

	later := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, u.SetState(StateAwaitingLocation, later))
	require.Equal(t, StateAwaitingLocation, u.State)
	require.Equal(t, later, u.UpdatedAt)
}

func TestUser_Busy(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	u := NewUser(1, 1, start)
	require.False(t, u.Busy(start, time.Minute))

	require.NoError(t, u.SetState(StateProcessing, start))
	require.True(t, u.Busy(start.Add(30*time.Second), time.Minute))
	require.False(t, u.Busy(start.Add(2*time.Minute), time.Minute))
}
