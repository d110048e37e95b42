package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conexao-adventure/booking-api/internal/model"
)

func openEvent(date time.Time) *model.AdventureEvent {
	return &model.AdventureEvent{
		Date:            date,
		StartTime:       "08:00:00",
		MaxParticipants: 10,
		Status:          model.EventScheduled,
		IsActive:        true,
	}
}

func TestAvailableSpots(t *testing.T) {
	ev := &model.AdventureEvent{MaxParticipants: 10, CurrentParticipants: 7}
	require.Equal(t, int64(3), AvailableSpots(ev))
	require.False(t, IsFull(ev))

	ev.CurrentParticipants = 10
	require.True(t, IsFull(ev))

	// Staff shrank capacity below the approved headcount.
	ev.MaxParticipants = 5
	require.Equal(t, int64(-5), AvailableSpots(ev))
	require.True(t, IsFull(ev))
}

func TestRegistrationOpen(t *testing.T) {
	now := time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC)
	future := time.Date(2026, time.May, 20, 0, 0, 0, 0, time.UTC)
	adv := &model.Adventure{IsActive: true}

	open, _ := RegistrationOpen(adv, openEvent(future), now, time.UTC)
	require.True(t, open)

	t.Run("inactive adventure", func(t *testing.T) {
		open, reason := RegistrationOpen(&model.Adventure{}, openEvent(future), now, time.UTC)
		require.False(t, open)
		require.Equal(t, ClosedAdventureInactive, reason)
	})

	t.Run("inactive event", func(t *testing.T) {
		ev := openEvent(future)
		ev.IsActive = false
		open, reason := RegistrationOpen(adv, ev, now, time.UTC)
		require.False(t, open)
		require.Equal(t, ClosedEventInactive, reason)
	})

	t.Run("not scheduled", func(t *testing.T) {
		ev := openEvent(future)
		ev.Status = model.EventCancelled
		open, reason := RegistrationOpen(adv, ev, now, time.UTC)
		require.False(t, open)
		require.Equal(t, ClosedEventNotScheduled, reason)
	})

	t.Run("deadline passed", func(t *testing.T) {
		ev := openEvent(future)
		deadline := now.Add(-time.Hour)
		ev.RegistrationDeadline = &deadline
		open, reason := RegistrationOpen(adv, ev, now, time.UTC)
		require.False(t, open)
		require.Equal(t, ClosedDeadlinePassed, reason)
	})

	t.Run("same day after start time", func(t *testing.T) {
		// now is 12:00 on the event date, four hours past the 08:00
		// start; walk-ups on the day itself still register.
		ev := openEvent(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
		open, _ := RegistrationOpen(adv, ev, now, time.UTC)
		require.True(t, open)
	})

	t.Run("event date passed", func(t *testing.T) {
		ev := openEvent(time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC))
		open, reason := RegistrationOpen(adv, ev, now, time.UTC)
		require.False(t, open)
		require.Equal(t, ClosedEventDatePassed, reason)
	})

	t.Run("deadline alone bounds the window", func(t *testing.T) {
		// An explicit future deadline keeps registration open even
		// though the event date is already behind.
		ev := openEvent(time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC))
		deadline := now.Add(time.Hour)
		ev.RegistrationDeadline = &deadline
		open, _ := RegistrationOpen(adv, ev, now, time.UTC)
		require.True(t, open)
	})

	t.Run("date compared in business timezone", func(t *testing.T) {
		loc, err := time.LoadLocation("America/Sao_Paulo")
		require.NoError(t, err)
		// 01:00 UTC on May 2 is still 22:00 on May 1 in Sao Paulo.
		late := time.Date(2026, time.May, 2, 1, 0, 0, 0, time.UTC)
		ev := openEvent(time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
		open, _ := RegistrationOpen(adv, ev, late, loc)
		require.True(t, open)

		open, reason := RegistrationOpen(adv, ev, late, time.UTC)
		require.False(t, open)
		require.Equal(t, ClosedEventDatePassed, reason)
	})

	t.Run("full", func(t *testing.T) {
		ev := openEvent(future)
		ev.CurrentParticipants = ev.MaxParticipants
		open, reason := RegistrationOpen(adv, ev, now, time.UTC)
		require.False(t, open)
		require.Equal(t, ClosedEventFull, reason)
	})
}

func TestCanCancel(t *testing.T) {
	start := time.Date(2026, time.May, 20, 8, 0, 0, 0, time.UTC)
	ev := openEvent(time.Date(2026, time.May, 20, 0, 0, 0, 0, time.UTC))

	cases := []struct {
		name   string
		status string
		now    time.Time
		want   bool
	}{
		{"pending well before", model.BookingPending, start.Add(-48 * time.Hour), true},
		{"approved well before", model.BookingApproved, start.Add(-48 * time.Hour), true},
		{"inside 24h window", model.BookingApproved, start.Add(-23 * time.Hour), false},
		{"exactly 24h", model.BookingApproved, start.Add(-24 * time.Hour), false},
		{"already cancelled", model.BookingCancelled, start.Add(-48 * time.Hour), false},
		{"completed", model.BookingCompleted, start.Add(-48 * time.Hour), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &model.Booking{Status: tc.status}
			require.Equal(t, tc.want, CanCancel(b, ev, tc.now, time.UTC))
		})
	}
}

func TestStartInstantTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	ev := openEvent(time.Date(2026, time.May, 20, 0, 0, 0, 0, time.UTC))
	got := ev.StartInstant(loc)
	require.Equal(t, 8, got.Hour())
	require.Equal(t, loc, got.Location())
}
