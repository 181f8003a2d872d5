package user

import "time"

type PassengerProfile struct {
	UserID                 string    `json:"user_id"`
	PreferredPaymentMethod string    `json:"preferred_payment_method"`
	EmergencyContactName   string    `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone  string    `json:"emergency_contact_phone,omitempty"`
	TotalTrips             int       `json:"total_trips"`
	AverageRating          *float64  `json:"average_rating"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

type DriverProfile struct {
	UserID          string    `json:"user_id"`
	LicenseNumber   string    `json:"license_number"`
	LicenseExpiry   string    `json:"license_expiry"`
	VehicleMake     string    `json:"vehicle_make"`
	VehicleModel    string    `json:"vehicle_model"`
	VehicleYear     int       `json:"vehicle_year"`
	VehicleColor    string    `json:"vehicle_color"`
	VehiclePlate    string    `json:"vehicle_plate_number"`
	VehicleCapacity int       `json:"vehicle_capacity"`
	InsuranceNumber string    `json:"insurance_number"`
	InsuranceExpiry string    `json:"insurance_expiry"`
	IsVerified      bool      `json:"is_verified"`
	IsAvailable     bool      `json:"is_available"`
	TotalTrips      int       `json:"total_trips"`
	AverageRating   *float64  `json:"average_rating"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Profile is the full view of a user with both role profiles attached.
type Profile struct {
	ID            string            `json:"id"`
	Email         string            `json:"email"`
	Username      string            `json:"username"`
	FullName      string            `json:"full_name"`
	Phone         string            `json:"phone_number"`
	UserType      string            `json:"user_type"`
	IsActive      bool              `json:"is_active"`
	Passenger     *PassengerProfile `json:"passenger_profile,omitempty"`
	Driver        *DriverProfile    `json:"driver_profile,omitempty"`
	AverageRating *float64          `json:"average_rating"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type UpdateRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone_number"`
}

// AvailableDriver is the listing entry passengers see when looking for a ride.
type AvailableDriver struct {
	UserID        string   `json:"user_id"`
	Username      string   `json:"username"`
	FullName      string   `json:"full_name"`
	VehicleMake   string   `json:"vehicle_make"`
	VehicleModel  string   `json:"vehicle_model"`
	VehicleColor  string   `json:"vehicle_color"`
	VehiclePlate  string   `json:"vehicle_plate_number"`
	Capacity      int      `json:"vehicle_capacity"`
	TotalTrips    int      `json:"total_trips"`
	AverageRating *float64 `json:"average_rating"`
}
