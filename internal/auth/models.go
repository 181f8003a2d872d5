package auth

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone_number"`
	UserType     string    `json:"user_type"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type DriverProfileInput struct {
	LicenseNumber   string `json:"license_number"`
	LicenseExpiry   string `json:"license_expiry"`
	VehicleMake     string `json:"vehicle_make"`
	VehicleModel    string `json:"vehicle_model"`
	VehicleYear     int    `json:"vehicle_year"`
	VehicleColor    string `json:"vehicle_color"`
	VehiclePlate    string `json:"vehicle_plate_number"`
	VehicleCapacity int    `json:"vehicle_capacity"`
	InsuranceNumber string `json:"insurance_number"`
	InsuranceExpiry string `json:"insurance_expiry"`
}

type RegisterRequest struct {
	Email         string              `json:"email"`
	Username      string              `json:"username"`
	Password      string              `json:"password"`
	FullName      string              `json:"full_name"`
	Phone         string              `json:"phone_number"`
	UserType      string              `json:"user_type"`
	DriverProfile *DriverProfileInput `json:"driver_profile,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
