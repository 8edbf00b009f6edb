package domain

import (
	"strings"
	"time"
)

type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusUpcoming, EventStatusOngoing, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

// Event is an organized happening with a bounded number of tickets.
type Event struct {
	ID              string
	Name            string
	Description     string
	Date            time.Time
	StartTime       TimeOfDay
	EndTime         TimeOfDay
	IsPublic        bool
	Location        string
	MaxParticipants int
	OrganizerID     string
	VenueID         string
	Venue           Venue
	PubDate         time.Time
	Status          EventStatus
}

const maxEventNameLen = 200

// Validate checks the event's own fields, including the time range.
func (e Event) Validate() error {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return Invalid("name", "required")
	}
	if len(name) > maxEventNameLen {
		return Invalid("name", "too long")
	}
	if e.Date.IsZero() {
		return Invalid("date", "required")
	}
	if !e.StartTime.Valid() {
		return Invalid("start_time", "out of range")
	}
	if !e.EndTime.Valid() {
		return Invalid("end_time", "out of range")
	}
	if e.MaxParticipants <= 0 {
		return Invalid("max_participants", "must be a positive integer")
	}
	if !e.Status.Valid() {
		return Invalid("status", "unknown status")
	}
	return ValidateTimeRange(e.StartTime, e.EndTime)
}

// IsOrganizedBy reports whether userID owns the event.
func (e Event) IsOrganizedBy(userID string) bool {
	return userID != "" && e.OrganizerID == userID
}

// IsPast reports whether the event's date is strictly before today.
func (e Event) IsPast(today time.Time) bool {
	return DateOnly(today).After(DateOnly(e.Date))
}

// ValidateTimeRange fails with ErrInvalidRange unless start < end.
func ValidateTimeRange(start, end TimeOfDay) error {
	if start >= end {
		return ErrInvalidRange
	}
	return nil
}

// RemainingCapacity is the number of tickets still available, never negative.
func RemainingCapacity(e Event, issued int) int {
	remaining := e.MaxParticipants - issued
	if remaining < 0 {
		return 0
	}
	return remaining
}
