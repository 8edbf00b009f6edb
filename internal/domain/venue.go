package domain

import "strings"

// Venue is where an Event takes place. Each venue is owned by exactly one event.
type Venue struct {
	ID                 string
	Name               string
	IsVirtual          bool
	Address            *string
	Capacity           int
	VirtualMeetingLink *string
}

// Validate checks the venue's own fields.
func (v Venue) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return Invalid("venue_name", "required")
	}
	if v.Capacity <= 0 {
		return Invalid("capacity", "must be a positive integer")
	}
	if !v.IsVirtual && (v.Address == nil || strings.TrimSpace(*v.Address) == "") {
		return Invalid("address", "required for a physical venue")
	}
	return nil
}
