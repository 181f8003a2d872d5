package trip

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/b-marinov/euro-bakshish/internal/apperrors"
	"github.com/b-marinov/euro-bakshish/internal/db"
	"github.com/b-marinov/euro-bakshish/internal/shared/geo"
	"github.com/b-marinov/euro-bakshish/internal/stream"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Fare model: flat pickup charge plus a per-km rate, estimated at request
// time from the straight-line distance.
const (
	baseFareEUR  = 1.50
	perKmEUR     = 0.90
	avgSpeedKmph = 35.0
)

const tripColumns = `
	id, passenger_id, driver_id,
	start_location_name, start_latitude, start_longitude,
	end_location_name, end_latitude, end_longitude,
	status, distance_km, estimated_duration_minutes, fare,
	requested_at, accepted_at, started_at, completed_at, cancelled_at,
	passenger_notes, driver_notes, number_of_passengers,
	created_at, updated_at`

type Service struct {
	db  db.Querier
	hub *stream.Hub
}

func NewService(db db.Querier, hub *stream.Hub) *Service {
	return &Service{db: db, hub: hub}
}

// Create requests a new trip for the passenger. The trip starts out pending
// with no driver; distance, duration and fare are estimates.
func (s *Service) Create(ctx context.Context, passengerID string, req CreateRequest) (Trip, error) {
	if req.PassengerCount == 0 {
		req.PassengerCount = 1
	}
	if req.PassengerCount < 1 {
		return Trip{}, apperrors.Validation("number_of_passengers must be at least 1")
	}
	if req.StartLocationName == "" || req.EndLocationName == "" {
		return Trip{}, apperrors.Validation("start and end location names required")
	}
	if !validCoords(req.StartLatitude, req.StartLongitude) || !validCoords(req.EndLatitude, req.EndLongitude) {
		return Trip{}, apperrors.Validation("coordinates out of range")
	}

	distance := round2(geo.HaversineKm(req.StartLatitude, req.StartLongitude, req.EndLatitude, req.EndLongitude))
	duration := int(math.Ceil(distance / avgSpeedKmph * 60))
	fare := round2(baseFareEUR + distance*perKmEUR)

	t := Trip{
		ID:                   uuid.NewString(),
		PassengerID:          passengerID,
		StartLocationName:    req.StartLocationName,
		StartLatitude:        req.StartLatitude,
		StartLongitude:       req.StartLongitude,
		EndLocationName:      req.EndLocationName,
		EndLatitude:          req.EndLatitude,
		EndLongitude:         req.EndLongitude,
		Status:               StatusPending,
		DistanceKm:           &distance,
		EstimatedDurationMin: &duration,
		Fare:                 &fare,
		PassengerNotes:       req.PassengerNotes,
		PassengerCount:       req.PassengerCount,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO trips
			(id, passenger_id, start_location_name, start_latitude, start_longitude,
			 end_location_name, end_latitude, end_longitude, status,
			 distance_km, estimated_duration_minutes, fare,
			 passenger_notes, number_of_passengers)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING requested_at, created_at, updated_at
	`, t.ID, t.PassengerID, t.StartLocationName, t.StartLatitude, t.StartLongitude,
		t.EndLocationName, t.EndLatitude, t.EndLongitude, t.Status,
		distance, duration, fare, t.PassengerNotes, t.PassengerCount)
	if err := row.Scan(&t.RequestedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Trip{}, err
	}
	return t, nil
}

// Get returns a trip to one of its participants.
func (s *Service) Get(ctx context.Context, tripID, actorID string) (Trip, error) {
	t, err := s.load(ctx, tripID)
	if err != nil {
		return Trip{}, err
	}
	if !isParticipant(t, actorID) {
		return Trip{}, apperrors.Authorization("trip does not involve you")
	}
	return t, nil
}

// Accept assigns the trip to a driver. The status check happens in the
// UPDATE itself so two drivers racing for the same trip cannot both win.
func (s *Service) Accept(ctx context.Context, tripID, driverID string) (Trip, error) {
	hasProfile, err := s.hasDriverProfile(ctx, driverID)
	if err != nil {
		return Trip{}, err
	}
	if !hasProfile {
		return Trip{}, apperrors.Authorization("only drivers can accept trips")
	}

	row := s.db.QueryRow(ctx, `
		UPDATE trips
		SET driver_id=$2, status='accepted', accepted_at=now(), updated_at=now()
		WHERE id=$1 AND status='pending' AND driver_id IS NULL
		RETURNING`+tripColumns+`
	`, tripID, driverID)
	t, err := scanTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Trip{}, s.acceptFailure(ctx, tripID)
	}
	if err != nil {
		return Trip{}, err
	}

	s.broadcast(t, t.AcceptedAt)
	return t, nil
}

// Start moves an accepted trip to in_progress. Only the assigned driver may
// start it.
func (s *Service) Start(ctx context.Context, tripID, actorID string) (Trip, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE trips
		SET status='in_progress', started_at=now(), updated_at=now()
		WHERE id=$1 AND status='accepted' AND driver_id=$2
		RETURNING`+tripColumns+`
	`, tripID, actorID)
	t, err := scanTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Trip{}, s.driverTransitionFailure(ctx, tripID, actorID, StatusAccepted, "start")
	}
	if err != nil {
		return Trip{}, err
	}

	s.broadcast(t, t.StartedAt)
	return t, nil
}

// Complete finishes an in_progress trip and bumps both participants' trip
// counters. The status update and the counter increments commit together,
// so a repeated completion can never double-count.
func (s *Service) Complete(ctx context.Context, tripID, actorID string) (Trip, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Trip{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		UPDATE trips
		SET status='completed', completed_at=now(), updated_at=now()
		WHERE id=$1 AND status='in_progress' AND driver_id=$2
		RETURNING`+tripColumns+`
	`, tripID, actorID)
	t, err := scanTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Trip{}, s.driverTransitionFailure(ctx, tripID, actorID, StatusInProgress, "complete")
	}
	if err != nil {
		return Trip{}, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE passenger_profiles SET total_trips = total_trips + 1, updated_at=now()
		WHERE user_id=$1
	`, t.PassengerID); err != nil {
		return Trip{}, err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE driver_profiles SET total_trips = total_trips + 1, updated_at=now()
		WHERE user_id=$1
	`, actorID); err != nil {
		return Trip{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Trip{}, err
	}

	s.broadcast(t, t.CompletedAt)
	return t, nil
}

// Cancel aborts a non-terminal trip. Either participant may cancel.
func (s *Service) Cancel(ctx context.Context, tripID, actorID string) (Trip, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE trips
		SET status='cancelled', cancelled_at=now(), updated_at=now()
		WHERE id=$1 AND status NOT IN ('completed','cancelled')
		  AND (passenger_id=$2 OR driver_id=$2)
		RETURNING`+tripColumns+`
	`, tripID, actorID)
	t, err := scanTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Trip{}, s.cancelFailure(ctx, tripID, actorID)
	}
	if err != nil {
		return Trip{}, err
	}

	s.broadcast(t, t.CancelledAt)
	return t, nil
}

// MyTrips lists the actor's active (non-terminal) trips.
func (s *Service) MyTrips(ctx context.Context, userID string) ([]Trip, error) {
	return s.list(ctx, `
		SELECT`+tripColumns+`
		FROM trips
		WHERE (passenger_id=$1 OR driver_id=$1)
		  AND status NOT IN ('completed','cancelled')
		ORDER BY requested_at DESC
	`, userID)
}

// History lists the actor's completed trips, optionally scoped to the role
// they held.
func (s *Service) History(ctx context.Context, userID, role string) ([]Trip, error) {
	switch role {
	case "passenger":
		return s.list(ctx, `
			SELECT`+tripColumns+`
			FROM trips
			WHERE passenger_id=$1 AND status='completed'
			ORDER BY completed_at DESC
		`, userID)
	case "driver":
		return s.list(ctx, `
			SELECT`+tripColumns+`
			FROM trips
			WHERE driver_id=$1 AND status='completed'
			ORDER BY completed_at DESC
		`, userID)
	case "", "all":
		return s.list(ctx, `
			SELECT`+tripColumns+`
			FROM trips
			WHERE (passenger_id=$1 OR driver_id=$1) AND status='completed'
			ORDER BY completed_at DESC
		`, userID)
	default:
		return nil, apperrors.Validation("role must be passenger, driver or all")
	}
}

// Pending lists unassigned trips for drivers to pick from.
func (s *Service) Pending(ctx context.Context, driverID string) ([]Trip, error) {
	hasProfile, err := s.hasDriverProfile(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !hasProfile {
		return nil, apperrors.Authorization("only drivers can view pending trips")
	}
	return s.list(ctx, `
		SELECT`+tripColumns+`
		FROM trips
		WHERE status='pending'
		ORDER BY requested_at
	`)
}

func (s *Service) list(ctx context.Context, query string, args ...any) ([]Trip, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, nil
}

func (s *Service) load(ctx context.Context, tripID string) (Trip, error) {
	row := s.db.QueryRow(ctx, `SELECT`+tripColumns+` FROM trips WHERE id=$1`, tripID)
	t, err := scanTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Trip{}, apperrors.NotFound("trip not found")
	}
	return t, err
}

func (s *Service) hasDriverProfile(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM driver_profiles WHERE user_id=$1)
	`, userID).Scan(&exists)
	return exists, err
}

// acceptFailure explains a lost accept: the trip vanished, someone else got
// there first, or the trip already reached a terminal state.
func (s *Service) acceptFailure(ctx context.Context, tripID string) error {
	t, err := s.load(ctx, tripID)
	if err != nil {
		return err
	}
	switch t.Status {
	case StatusAccepted, StatusInProgress:
		return apperrors.Conflict("trip no longer available")
	default:
		return apperrors.Precondition("trip is %s and cannot be accepted", t.Status)
	}
}

func (s *Service) driverTransitionFailure(ctx context.Context, tripID, actorID, wantStatus, op string) error {
	t, err := s.load(ctx, tripID)
	if err != nil {
		return err
	}
	if t.DriverID == nil || *t.DriverID != actorID {
		return apperrors.Authorization("only the assigned driver can %s this trip", op)
	}
	return apperrors.Precondition("trip must be %s to %s, currently %s", wantStatus, op, t.Status)
}

func (s *Service) cancelFailure(ctx context.Context, tripID, actorID string) error {
	t, err := s.load(ctx, tripID)
	if err != nil {
		return err
	}
	if !isParticipant(t, actorID) {
		return apperrors.Authorization("only the passenger or assigned driver can cancel this trip")
	}
	return apperrors.Precondition("cannot cancel a %s trip", t.Status)
}

func (s *Service) broadcast(t Trip, at *time.Time) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(Event{
		TripID:   t.ID,
		Status:   t.Status,
		DriverID: t.DriverID,
		At:       at,
	})
	s.hub.Broadcast(t.ID, payload)
}

func isParticipant(t Trip, userID string) bool {
	if t.PassengerID == userID {
		return true
	}
	return t.DriverID != nil && *t.DriverID == userID
}

func validCoords(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func scanTrip(row pgx.Row) (Trip, error) {
	var t Trip
	err := row.Scan(&t.ID, &t.PassengerID, &t.DriverID,
		&t.StartLocationName, &t.StartLatitude, &t.StartLongitude,
		&t.EndLocationName, &t.EndLatitude, &t.EndLongitude,
		&t.Status, &t.DistanceKm, &t.EstimatedDurationMin, &t.Fare,
		&t.RequestedAt, &t.AcceptedAt, &t.StartedAt, &t.CompletedAt, &t.CancelledAt,
		&t.PassengerNotes, &t.DriverNotes, &t.PassengerCount,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return Trip{}, err
	}
	return t, nil
}
