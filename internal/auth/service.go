package auth

import (
	"context"
	"errors"
	"time"

	"github.com/b-marinov/euro-bakshish/internal/apperrors"
	"github.com/b-marinov/euro-bakshish/internal/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

const (
	UserTypePassenger = "passenger"
	UserTypeDriver    = "driver"
	UserTypeBoth      = "both"
)

type Service struct {
	secret []byte
	db     db.Querier
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func NewService(secret string, db db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		db:     db,
	}
}

// Register creates the user row plus the profile rows implied by user_type.
// Driver registrations must carry license and vehicle details.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, TokenResponse, error) {
	if req.Email == "" || req.Username == "" || req.Password == "" {
		return User{}, TokenResponse{}, apperrors.Validation("email, username, password required")
	}
	if req.UserType == "" {
		req.UserType = UserTypePassenger
	}
	if req.UserType != UserTypePassenger && req.UserType != UserTypeDriver && req.UserType != UserTypeBoth {
		return User{}, TokenResponse{}, apperrors.Validation("user_type must be passenger, driver or both")
	}
	isDriver := req.UserType == UserTypeDriver || req.UserType == UserTypeBoth
	if isDriver {
		if req.DriverProfile == nil {
			return User{}, TokenResponse{}, apperrors.Validation("driver_profile required for driver accounts")
		}
		dp := req.DriverProfile
		if dp.LicenseNumber == "" || dp.VehiclePlate == "" || dp.VehicleMake == "" || dp.VehicleModel == "" {
			return User{}, TokenResponse{}, apperrors.Validation("license_number, vehicle make, model and plate required")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, TokenResponse{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Phone:        req.Phone,
		UserType:     req.UserType,
		IsActive:     true,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, email, username, password_hash, full_name, phone_number, user_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at, updated_at
	`, user.ID, user.Email, user.Username, user.PasswordHash, user.FullName, user.Phone, user.UserType)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, TokenResponse{}, apperrors.Validation("username or email already taken")
		}
		return User{}, TokenResponse{}, err
	}

	if req.UserType == UserTypePassenger || req.UserType == UserTypeBoth {
		_, err := s.db.Exec(ctx, `
			INSERT INTO passenger_profiles (user_id)
			VALUES ($1)
		`, user.ID)
		if err != nil {
			return User{}, TokenResponse{}, err
		}
	}

	if isDriver {
		dp := req.DriverProfile
		capacity := dp.VehicleCapacity
		if capacity <= 0 {
			capacity = 4
		}
		_, err := s.db.Exec(ctx, `
			INSERT INTO driver_profiles
				(user_id, license_number, license_expiry, vehicle_make, vehicle_model,
				 vehicle_year, vehicle_color, vehicle_plate_number, vehicle_capacity,
				 insurance_number, insurance_expiry)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`, user.ID, dp.LicenseNumber, dp.LicenseExpiry, dp.VehicleMake, dp.VehicleModel,
			dp.VehicleYear, dp.VehicleColor, dp.VehiclePlate, capacity,
			dp.InsuranceNumber, dp.InsuranceExpiry)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return User{}, TokenResponse{}, apperrors.Validation("license or plate number already registered")
			}
			return User{}, TokenResponse{}, err
		}
	}

	tokens, err := s.GenerateTokens(ctx, user.ID)
	if err != nil {
		return User{}, TokenResponse{}, err
	}
	return user, tokens, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (User, TokenResponse, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, username, password_hash, full_name, phone_number, user_type, is_active, created_at, updated_at
		FROM users WHERE email = $1
	`, req.Email)

	var user User
	if err := row.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.FullName,
		&user.Phone, &user.UserType, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return User{}, TokenResponse{}, errors.New("invalid credentials")
	}
	if !user.IsActive {
		return User{}, TokenResponse{}, errors.New("account deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return User{}, TokenResponse{}, errors.New("invalid credentials")
	}

	tokens, err := s.GenerateTokens(ctx, user.ID)
	if err != nil {
		return User{}, TokenResponse{}, err
	}
	return user, tokens, nil
}

func (s *Service) GenerateTokens(ctx context.Context, userID string) (TokenResponse, error) {
	access, err := s.signToken(userID, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	refresh, err := s.signToken(userID, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	if err := s.saveRefreshToken(ctx, refresh, userID, refreshTokenTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}

	userID, expiresAt, err := s.lookupRefreshToken(ctx, token)
	if err != nil || userID != claims.UserID || time.Now().After(expiresAt) {
		return "", errors.New("refresh token invalid")
	}
	return claims.UserID, nil
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (s *Service) signToken(userID string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

func (s *Service) saveRefreshToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), userID, token, time.Now().Add(ttl))
	return err
}

func (s *Service) lookupRefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, expires_at
		FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	var userID string
	var expiresAt time.Time
	if err := row.Scan(&userID, &expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return userID, expiresAt, nil
}
