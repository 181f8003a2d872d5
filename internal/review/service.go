package review

import (
	"context"
	"errors"
	"math"

	"github.com/b-marinov/euro-bakshish/internal/apperrors"
	"github.com/b-marinov/euro-bakshish/internal/db"
	"github.com/b-marinov/euro-bakshish/internal/trip"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const reviewColumns = `
	id, trip_id, reviewer_id, reviewed_id, reviewer_role,
	rating, punctuality_rating, communication_rating, safety_rating, cleanliness_rating,
	comment, created_at`

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Counterpart returns the other participant of a trip and the role the actor
// held on it.
func Counterpart(t trip.Trip, actorID string) (counterpartID, actorRole string, err error) {
	switch {
	case t.PassengerID == actorID:
		if t.DriverID == nil {
			return "", "", apperrors.Precondition("trip has no driver to review")
		}
		return *t.DriverID, RolePassenger, nil
	case t.DriverID != nil && *t.DriverID == actorID:
		return t.PassengerID, RoleDriver, nil
	default:
		return "", "", apperrors.Authorization("trip does not involve you")
	}
}

// Record stores a review for the actor's counterpart on a completed trip and
// then recomputes the reviewed user's average for the role they held. The two
// steps are deliberate: the insert settles who gets reviewed, the recompute
// folds it into the profile.
func (s *Service) Record(ctx context.Context, reviewerID string, req CreateRequest) (Review, error) {
	if req.TripID == "" {
		return Review{}, apperrors.Validation("trip_id required")
	}
	if err := validRating(req.Rating); err != nil {
		return Review{}, err
	}
	for _, sub := range []*int{req.PunctualityRating, req.CommunicationRating, req.SafetyRating, req.CleanlinessRating} {
		if sub == nil {
			continue
		}
		if err := validRating(*sub); err != nil {
			return Review{}, err
		}
	}

	t, err := s.loadTrip(ctx, req.TripID)
	if err != nil {
		return Review{}, err
	}
	if t.Status != trip.StatusCompleted {
		return Review{}, apperrors.Precondition("only completed trips can be reviewed")
	}

	reviewedID, role, err := Counterpart(t, reviewerID)
	if err != nil {
		return Review{}, err
	}
	if reviewedID == reviewerID {
		return Review{}, apperrors.Validation("cannot review yourself")
	}

	r := Review{
		ID:                  uuid.NewString(),
		TripID:              req.TripID,
		ReviewerID:          reviewerID,
		ReviewedID:          reviewedID,
		ReviewerRole:        role,
		Rating:              req.Rating,
		PunctualityRating:   req.PunctualityRating,
		CommunicationRating: req.CommunicationRating,
		SafetyRating:        req.SafetyRating,
		CleanlinessRating:   req.CleanlinessRating,
		Comment:             req.Comment,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO reviews
			(id, trip_id, reviewer_id, reviewed_id, reviewer_role,
			 rating, punctuality_rating, communication_rating, safety_rating, cleanliness_rating,
			 comment)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at
	`, r.ID, r.TripID, r.ReviewerID, r.ReviewedID, r.ReviewerRole,
		r.Rating, r.PunctualityRating, r.CommunicationRating, r.SafetyRating, r.CleanlinessRating,
		r.Comment)
	if err := row.Scan(&r.CreatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return Review{}, apperrors.Precondition("you already reviewed this trip")
		}
		return Review{}, err
	}

	if _, err := s.RecomputeAverage(ctx, reviewedID, oppositeRole(role)); err != nil {
		return Review{}, err
	}
	return r, nil
}

// RecomputeAverage recalculates a user's average rating for one role from the
// reviews they received in it and writes it to the matching profile. The
// returned value is nil when the user has no reviews in that role.
func (s *Service) RecomputeAverage(ctx context.Context, userID, role string) (*float64, error) {
	var table string
	switch role {
	case RolePassenger:
		table = "passenger_profiles"
	case RoleDriver:
		table = "driver_profiles"
	default:
		return nil, apperrors.Validation("role must be passenger or driver")
	}

	// A user's driver rating comes from passengers, and vice versa.
	var avg *float64
	err := s.db.QueryRow(ctx, `
		SELECT AVG(rating)::float8 FROM reviews
		WHERE reviewed_id=$1 AND reviewer_role=$2
	`, userID, oppositeRole(role)).Scan(&avg)
	if err != nil {
		return nil, err
	}
	if avg != nil {
		rounded := round2(*avg)
		avg = &rounded
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE `+table+` SET average_rating=$2, updated_at=now() WHERE user_id=$1
	`, userID, avg); err != nil {
		return nil, err
	}
	return avg, nil
}

// Summary returns the count, mean and star histogram of the reviews a user
// has received across both roles.
func (s *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT rating, COUNT(*) FROM reviews
		WHERE reviewed_id=$1
		GROUP BY rating
	`, userID)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()

	sum := Summary{UserID: userID, Histogram: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	total := 0
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return Summary{}, err
		}
		sum.Histogram[rating] = count
		sum.Count += count
		total += rating * count
	}
	if sum.Count > 0 {
		avg := round2(float64(total) / float64(sum.Count))
		sum.Average = &avg
	}
	return sum, nil
}

// PendingReviews lists the user's completed trips that still await their
// review, newest first.
func (s *Service) PendingReviews(ctx context.Context, userID string) ([]PendingReview, error) {
	rows, err := s.db.Query(ctx, `
		SELECT t.id, t.start_location_name, t.end_location_name, t.completed_at,
		       u.id, u.username,
		       CASE WHEN t.passenger_id=$1 THEN 'passenger' ELSE 'driver' END
		FROM trips t
		JOIN users u ON u.id = CASE WHEN t.passenger_id=$1 THEN t.driver_id ELSE t.passenger_id END
		WHERE t.status='completed'
		  AND (t.passenger_id=$1 OR t.driver_id=$1)
		  AND NOT EXISTS (SELECT 1 FROM reviews r WHERE r.trip_id=t.id AND r.reviewer_id=$1)
		ORDER BY t.completed_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []PendingReview
	for rows.Next() {
		var p PendingReview
		if err := rows.Scan(&p.TripID, &p.StartLocationName, &p.EndLocationName, &p.CompletedAt,
			&p.UserToReview, &p.Username, &p.YourRole); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, nil
}

// Given lists the reviews the user wrote.
func (s *Service) Given(ctx context.Context, userID string) ([]Review, error) {
	return s.list(ctx, `
		SELECT`+reviewColumns+`
		FROM reviews WHERE reviewer_id=$1
		ORDER BY created_at DESC
	`, userID)
}

// Received lists the reviews written about the user.
func (s *Service) Received(ctx context.Context, userID string) ([]Review, error) {
	return s.list(ctx, `
		SELECT`+reviewColumns+`
		FROM reviews WHERE reviewed_id=$1
		ORDER BY created_at DESC
	`, userID)
}

func (s *Service) list(ctx context.Context, query string, args ...any) ([]Review, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.TripID, &r.ReviewerID, &r.ReviewedID, &r.ReviewerRole,
			&r.Rating, &r.PunctualityRating, &r.CommunicationRating, &r.SafetyRating, &r.CleanlinessRating,
			&r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, nil
}

func (s *Service) loadTrip(ctx context.Context, tripID string) (trip.Trip, error) {
	var t trip.Trip
	err := s.db.QueryRow(ctx, `
		SELECT id, passenger_id, driver_id, status FROM trips WHERE id=$1
	`, tripID).Scan(&t.ID, &t.PassengerID, &t.DriverID, &t.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return trip.Trip{}, apperrors.NotFound("trip not found")
	}
	if err != nil {
		return trip.Trip{}, err
	}
	return t, nil
}

func validRating(r int) error {
	if r < 1 || r > 5 {
		return apperrors.Validation("ratings must be between 1 and 5")
	}
	return nil
}

func oppositeRole(role string) string {
	if role == RolePassenger {
		return RoleDriver
	}
	return RolePassenger
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
