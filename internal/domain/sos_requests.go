package domain

import "helphop/internal/geo"

// Location is a pointer so an absent field is distinguishable from a
// genuine {0,0} report: absence is a validation failure, {0,0} goes
// through the radius policy like any other coordinate.
type SubmitSOSRequest struct {
	UserID   string     `json:"user_id" validate:"required"`
	Type     string     `json:"type" validate:"omitempty,max=64"`
	Message  string     `json:"message" validate:"omitempty,max=2048"`
	Location *geo.Point `json:"location" validate:"required"`
}

// SubmitSOSResult is the intake outcome. Rejected is a business outcome,
// not an error: the reporter is outside the rescue radius and nothing was
// stored or broadcast.
type SubmitSOSResult struct {
	Rejected   bool
	Reason     string
	DistanceKm float64
	Direction  string
	Incident   *Incident
}

type AssignRescuerRequest struct {
	IncidentID string `json:"incident_id" validate:"required,uuid"`
	RescuerID  string `json:"rescuer_id" validate:"required"`
}
