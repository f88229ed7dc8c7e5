package models

import "time"

// Status is the display label shown next to a bus. The labels are opaque:
// nothing reacts to a bus being Delayed or Arriving Soon.
type Status string

const (
	StatusOnRoute      Status = "On Route"
	StatusAtStop       Status = "At Stop"
	StatusArrivingSoon Status = "Arriving Soon"
	StatusDelayed      Status = "Delayed"
)

// Statuses lists every label a bus can carry.
func Statuses() []Status {
	return []Status{StatusOnRoute, StatusAtStop, StatusArrivingSoon, StatusDelayed}
}

// IsValidStatus checks if a status is one of the known labels
func IsValidStatus(status Status) bool {
	switch status {
	case StatusOnRoute, StatusAtStop, StatusArrivingSoon, StatusDelayed:
		return true
	default:
		return false
	}
}

// Bus represents one school bus and its simulated position.
type Bus struct {
	ID         int       `json:"id"`
	Driver     string    `json:"driver"`
	Phone      string    `json:"phone,omitempty"`
	Route      string    `json:"route"`
	Location   Location  `json:"location"`
	Status     Status    `json:"status"`
	LastUpdate time.Time `json:"last_update"`
}

// CopyBuses returns a copy of buses that shares nothing with the input.
func CopyBuses(buses []Bus) []Bus {
	if buses == nil {
		return nil
	}
	out := make([]Bus, len(buses))
	copy(out, buses)
	return out
}
