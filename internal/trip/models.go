package trip

import "time"

const (
	StatusPending    = "pending"
	StatusAccepted   = "accepted"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

type Trip struct {
	ID          string  `json:"id"`
	PassengerID string  `json:"passenger_id"`
	DriverID    *string `json:"driver_id"`

	StartLocationName string  `json:"start_location_name"`
	StartLatitude     float64 `json:"start_latitude"`
	StartLongitude    float64 `json:"start_longitude"`
	EndLocationName   string  `json:"end_location_name"`
	EndLatitude       float64 `json:"end_latitude"`
	EndLongitude      float64 `json:"end_longitude"`

	Status               string   `json:"status"`
	DistanceKm           *float64 `json:"distance_km"`
	EstimatedDurationMin *int     `json:"estimated_duration_minutes"`
	Fare                 *float64 `json:"fare"`

	RequestedAt time.Time  `json:"requested_at"`
	AcceptedAt  *time.Time `json:"accepted_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`

	PassengerNotes string `json:"passenger_notes"`
	DriverNotes    string `json:"driver_notes"`
	PassengerCount int    `json:"number_of_passengers"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateRequest struct {
	StartLocationName string  `json:"start_location_name"`
	StartLatitude     float64 `json:"start_latitude"`
	StartLongitude    float64 `json:"start_longitude"`
	EndLocationName   string  `json:"end_location_name"`
	EndLatitude       float64 `json:"end_latitude"`
	EndLongitude      float64 `json:"end_longitude"`
	PassengerNotes    string  `json:"passenger_notes"`
	PassengerCount    int     `json:"number_of_passengers"`
}

// Event is the payload broadcast on a trip's stream channel after a
// successful transition.
type Event struct {
	TripID   string     `json:"trip_id"`
	Status   string     `json:"status"`
	DriverID *string    `json:"driver_id,omitempty"`
	At       *time.Time `json:"at,omitempty"`
}
