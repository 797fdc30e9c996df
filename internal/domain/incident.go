package domain

import (
	"time"

	"github.com/google/uuid"

	"helphop/internal/geo"
)

type IncidentStatus string

const (
	IncidentPending     IncidentStatus = "pending"
	IncidentBroadcasted IncidentStatus = "broadcasted"
	IncidentAccepted    IncidentStatus = "accepted"
	IncidentRejected    IncidentStatus = "rejected"
	IncidentResolved    IncidentStatus = "resolved"
)

// Terminal reports whether no further transition is allowed out of s.
func (s IncidentStatus) Terminal() bool {
	return s == IncidentResolved || s == IncidentRejected
}

// Incident is a single accepted SOS report. DistanceKm and Direction are
// computed against the rescue center once at creation and never recomputed.
type Incident struct {
	ID         uuid.UUID      `json:"id"`
	UserID     string         `json:"user_id"`
	Type       string         `json:"type,omitempty"`
	Message    string         `json:"message,omitempty"`
	Location   geo.Point      `json:"location"`
	DistanceKm float64        `json:"distance_km"`
	Direction  string         `json:"direction"`
	Status     IncidentStatus `json:"status"`
	RescuerID  string         `json:"rescuer_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
