package user

import (
	"context"
	"errors"
	"math"

	"github.com/b-marinov/euro-bakshish/internal/apperrors"
	"github.com/b-marinov/euro-bakshish/internal/db"

	"github.com/jackc/pgx/v5"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Get loads a user with whichever role profiles exist for them.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, username, full_name, phone_number, user_type, is_active, created_at, updated_at
		FROM users WHERE id=$1
	`, userID)

	var p Profile
	if err := row.Scan(&p.ID, &p.Email, &p.Username, &p.FullName, &p.Phone,
		&p.UserType, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, apperrors.NotFound("user not found")
		}
		return Profile{}, err
	}

	passenger, err := s.passengerProfile(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	p.Passenger = passenger

	driver, err := s.driverProfile(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	p.Driver = driver

	p.AverageRating = combinedAverage(p.Passenger, p.Driver)
	return p, nil
}

// Update patches the mutable contact fields; role and credentials are fixed.
func (s *Service) Update(ctx context.Context, userID string, patch UpdateRequest) (Profile, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if patch.Email != "" {
		current.Email = patch.Email
	}
	if patch.FullName != "" {
		current.FullName = patch.FullName
	}
	if patch.Phone != "" {
		current.Phone = patch.Phone
	}

	_, err = s.db.Exec(ctx, `
		UPDATE users
		SET email=$2, full_name=$3, phone_number=$4, updated_at=now()
		WHERE id=$1
	`, userID, current.Email, current.FullName, current.Phone)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Profile{}, apperrors.Validation("email already taken")
		}
		return Profile{}, err
	}
	return current, nil
}

// Deactivate soft-disables the account. User rows are never hard-deleted;
// trips and reviews keep referencing them.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET is_active=false, updated_at=now() WHERE id=$1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}

// ToggleAvailability flips the driver's availability flag and returns the
// new value.
func (s *Service) ToggleAvailability(ctx context.Context, userID string) (bool, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE driver_profiles
		SET is_available = NOT is_available, updated_at=now()
		WHERE user_id=$1
		RETURNING is_available
	`, userID)
	var available bool
	if err := row.Scan(&available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NotFound("driver profile not found")
		}
		return false, err
	}
	return available, nil
}

// AvailableDrivers lists verified drivers currently accepting trips.
func (s *Service) AvailableDrivers(ctx context.Context) ([]AvailableDriver, error) {
	rows, err := s.db.Query(ctx, `
		SELECT d.user_id, u.username, u.full_name, d.vehicle_make, d.vehicle_model,
		       d.vehicle_color, d.vehicle_plate_number, d.vehicle_capacity,
		       d.total_trips, d.average_rating
		FROM driver_profiles d
		JOIN users u ON u.id = d.user_id
		WHERE d.is_available AND d.is_verified AND u.is_active
		ORDER BY d.average_rating DESC NULLS LAST
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []AvailableDriver
	for rows.Next() {
		var d AvailableDriver
		if err := rows.Scan(&d.UserID, &d.Username, &d.FullName, &d.VehicleMake, &d.VehicleModel,
			&d.VehicleColor, &d.VehiclePlate, &d.Capacity, &d.TotalTrips, &d.AverageRating); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, nil
}

func (s *Service) passengerProfile(ctx context.Context, userID string) (*PassengerProfile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, preferred_payment_method, emergency_contact_name, emergency_contact_phone,
		       total_trips, average_rating, created_at, updated_at
		FROM passenger_profiles WHERE user_id=$1
	`, userID)
	var p PassengerProfile
	if err := row.Scan(&p.UserID, &p.PreferredPaymentMethod, &p.EmergencyContactName, &p.EmergencyContactPhone,
		&p.TotalTrips, &p.AverageRating, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) driverProfile(ctx context.Context, userID string) (*DriverProfile, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, license_number, license_expiry, vehicle_make, vehicle_model, vehicle_year,
		       vehicle_color, vehicle_plate_number, vehicle_capacity, insurance_number, insurance_expiry,
		       is_verified, is_available, total_trips, average_rating, created_at, updated_at
		FROM driver_profiles WHERE user_id=$1
	`, userID)
	var d DriverProfile
	if err := row.Scan(&d.UserID, &d.LicenseNumber, &d.LicenseExpiry, &d.VehicleMake, &d.VehicleModel,
		&d.VehicleYear, &d.VehicleColor, &d.VehiclePlate, &d.VehicleCapacity, &d.InsuranceNumber,
		&d.InsuranceExpiry, &d.IsVerified, &d.IsAvailable, &d.TotalTrips, &d.AverageRating,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// combinedAverage mirrors the upstream behavior: the overall rating is the
// unweighted mean of the role averages, not weighted by review count.
func combinedAverage(p *PassengerProfile, d *DriverProfile) *float64 {
	var ratings []float64
	if p != nil && p.AverageRating != nil {
		ratings = append(ratings, *p.AverageRating)
	}
	if d != nil && d.AverageRating != nil {
		ratings = append(ratings, *d.AverageRating)
	}
	if len(ratings) == 0 {
		return nil
	}
	sum := 0.0
	for _, r := range ratings {
		sum += r
	}
	avg := math.Round(sum/float64(len(ratings))*100) / 100
	return &avg
}
