package review

import "time"

const (
	RolePassenger = "passenger"
	RoleDriver    = "driver"
)

type Review struct {
	ID           string `json:"id"`
	TripID       string `json:"trip_id"`
	ReviewerID   string `json:"reviewer_id"`
	ReviewedID   string `json:"reviewed_id"`
	ReviewerRole string `json:"reviewer_role"`

	Rating              int  `json:"rating"`
	PunctualityRating   *int `json:"punctuality_rating"`
	CommunicationRating *int `json:"communication_rating"`
	SafetyRating        *int `json:"safety_rating"`
	CleanlinessRating   *int `json:"cleanliness_rating"`

	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateRequest struct {
	TripID              string `json:"trip_id"`
	Rating              int    `json:"rating"`
	PunctualityRating   *int   `json:"punctuality_rating"`
	CommunicationRating *int   `json:"communication_rating"`
	SafetyRating        *int   `json:"safety_rating"`
	CleanlinessRating   *int   `json:"cleanliness_rating"`
	Comment             string `json:"comment"`
}

// Summary aggregates the reviews a user has received. Average is nil until
// the first review arrives; the histogram always carries all five buckets.
type Summary struct {
	UserID    string      `json:"user_id"`
	Count     int         `json:"count"`
	Average   *float64    `json:"average"`
	Histogram map[int]int `json:"histogram"`
}

// PendingReview is a completed trip the user has not reviewed yet.
type PendingReview struct {
	TripID            string     `json:"trip_id"`
	StartLocationName string     `json:"start_location_name"`
	EndLocationName   string     `json:"end_location_name"`
	CompletedAt       *time.Time `json:"completed_at"`
	UserToReview      string     `json:"user_to_review"`
	Username          string     `json:"username"`
	YourRole          string     `json:"your_role"`
}
