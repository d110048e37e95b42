package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conexao-adventure/booking-api/internal/model"
)

func TestTransitionAllowed(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{model.BookingPending, model.BookingApproved, true},
		{model.BookingPending, model.BookingRejected, true},
		{model.BookingPending, model.BookingCancelled, true},
		{model.BookingPending, model.BookingCompleted, false},
		{model.BookingApproved, model.BookingCancelled, true},
		{model.BookingApproved, model.BookingCompleted, true},
		{model.BookingApproved, model.BookingRejected, false},
		{model.BookingApproved, model.BookingPending, false},
		{model.BookingRejected, model.BookingApproved, false},
		{model.BookingCancelled, model.BookingApproved, false},
		{model.BookingCompleted, model.BookingCancelled, false},
		{"", model.BookingApproved, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, transitionAllowed(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
