package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cimillas/eventhub/internal/domain"
	"github.com/cimillas/eventhub/internal/storage/memory"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func addUser(t *testing.T, store *memory.Store, username string, staff bool) domain.User {
	t.Helper()
	user := domain.User{
		ID:        newID(),
		Username:  username,
		Email:     username + "@example.com",
		IsStaff:   staff,
		CreatedAt: now,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func hallA() VenueInput {
	addr := "Main street 1"
	return VenueInput{Name: "Hall A", Address: &addr, Capacity: 2}
}

func meetup(date time.Time, maxParticipants int) EventInput {
	return EventInput{
		Name:            "Go Meetup",
		Description:     "Monthly meetup",
		Date:            date,
		StartTime:       domain.NewTimeOfDay(9, 0),
		EndTime:         domain.NewTimeOfDay(10, 0),
		IsPublic:        true,
		Location:        "Downtown",
		MaxParticipants: maxParticipants,
	}
}
