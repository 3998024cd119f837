package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"
	"backend/pkg/location"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Staff registering a worker must be physically near the building.
const registrationRadiusMeters = 100

// --- DTOs ---

type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=4"`
	BuildingID string `json:"building_id" binding:"required"`
}

type CreateStaffRequest struct {
	Email      string          `json:"email" binding:"required,email"`
	Password   string          `json:"password" binding:"required,min=4"`
	BuildingID string          `json:"building_id" binding:"required"`
	Location   *location.Point `json:"location"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type UserResponse struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	BuildingID *string `json:"building_id,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// --- Interface ---

// UserService covers account registration and credential exchange. Requesters
// self-register; managers register workers for their own building after a
// geofence check; operators register managers.
type UserService interface {
	RegisterRequester(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	CreateWorker(ctx context.Context, principal model.Principal, req CreateStaffRequest) (*UserResponse, error)
	CreateManager(ctx context.Context, principal model.Principal, req CreateStaffRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	ListStaff(ctx context.Context, principal model.Principal, role string) ([]UserResponse, error)
}

type userService struct {
	users     repository.UserRepository
	buildings repository.BuildingRepository
	gateway   Notifier
	secret    []byte
	tokenTTL  time.Duration
}

// Notifier is the outbound message gateway slice the services need.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}

// NewUserService returns a new instance of UserService. gateway may be nil.
func NewUserService(users repository.UserRepository, buildings repository.BuildingRepository, gateway Notifier, secret string, tokenTTL time.Duration) UserService {
	return &userService{
		users:     users,
		buildings: buildings,
		gateway:   gateway,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
	}
}

// --- Implementation ---

func (s *userService) RegisterRequester(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	return s.register(ctx, req.Email, req.Password, model.RoleRequester, req.BuildingID)
}

func (s *userService) CreateWorker(ctx context.Context, principal model.Principal, req CreateStaffRequest) (*UserResponse, error) {
	if principal.Role != model.RoleManager && principal.Role != model.RoleOperator {
		return nil, apperror.Auth("no access rights")
	}

	buildingID, err := uuid.Parse(req.BuildingID)
	if err != nil {
		return nil, apperror.Validation("invalid building id")
	}
	if principal.Role == model.RoleManager && !principal.SameBuilding(buildingID) {
		return nil, apperror.Validation("tenant mismatch: manager cannot staff another building")
	}

	building, err := s.buildings.GetByID(ctx, buildingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("building %s not found", buildingID)
		}
		return nil, fmt.Errorf("failed to load building: %w", err)
	}

	if req.Location == nil {
		return nil, apperror.Validation("location is required for worker registration")
	}
	here := location.Point{Lat: building.Lat, Lon: building.Lon}
	if !location.WithinRadius(here, *req.Location, registrationRadiusMeters) {
		return nil, apperror.Validation("the user is located outside the building")
	}

	user, err := s.register(ctx, req.Email, req.Password, model.RoleWorker, req.BuildingID)
	if err != nil {
		return nil, err
	}
	s.sendWelcome(user.Email, "worker")
	return user, nil
}

func (s *userService) CreateManager(ctx context.Context, principal model.Principal, req CreateStaffRequest) (*UserResponse, error) {
	if principal.Role != model.RoleOperator {
		return nil, apperror.Auth("no access rights")
	}

	user, err := s.register(ctx, req.Email, req.Password, model.RoleManager, req.BuildingID)
	if err != nil {
		return nil, err
	}
	s.sendWelcome(user.Email, "manager")
	return user, nil
}

func (s *userService) register(ctx context.Context, email, password, role, buildingID string) (*UserResponse, error) {
	if len(password) < 4 {
		return nil, apperror.Validation("password must be at least 4 characters")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.Validation("a user with this email already exists")
	}

	parsed, err := uuid.Parse(buildingID)
	if err != nil {
		return nil, apperror.Validation("invalid building id")
	}
	if _, err := s.buildings.GetByID(ctx, parsed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("building %s not found", parsed)
		}
		return nil, fmt.Errorf("failed to load building: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:      email,
		Password:   string(hashed),
		Role:       role,
		BuildingID: &parsed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapUserResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Auth("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.Auth("invalid email or password")
	}
	return s.issueTokens(ctx, user)
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	stored, err := s.users.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, apperror.Auth("invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.users.DeleteRefreshToken(ctx, refreshToken)
		return nil, apperror.Auth("refresh token expired")
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, apperror.Auth("unknown principal")
	}

	// Rotate: the presented token is single-use.
	if err := s.users.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return s.issueTokens(ctx, user)
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	return s.users.DeleteRefreshToken(ctx, refreshToken)
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user %s not found", id)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return mapUserResponse(user), nil
}

func (s *userService) ListStaff(ctx context.Context, principal model.Principal, role string) ([]UserResponse, error) {
	if principal.Role != model.RoleManager && principal.Role != model.RoleOperator {
		return nil, apperror.Auth("no access rights")
	}
	if role == "" {
		role = model.RoleWorker
	}
	if !model.ValidRole(role) {
		return nil, apperror.Validation("unknown role %q", role)
	}

	// Managers only see staff of their own building.
	var buildingID *uuid.UUID
	if principal.Role == model.RoleManager {
		buildingID = principal.BuildingID
	}

	users, err := s.users.ListByRole(ctx, role, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	result := make([]UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *mapUserResponse(&users[i]))
	}
	return result, nil
}

// --- Helpers ---

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenResponse, error) {
	building := ""
	if user.BuildingID != nil {
		building = user.BuildingID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID.String(),
		"role":     user.Role,
		"building": building,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	refresh := &model.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
	if err := s.users.CreateRefreshToken(ctx, refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenResponse{Token: signed, RefreshToken: refresh.Token}, nil
}

func (s *userService) sendWelcome(email, role string) {
	if s.gateway == nil {
		return
	}
	go func() {
		subject := "Registering with realty-service"
		body := fmt.Sprintf("The %s %s was created successfully.", role, email)
		if err := s.gateway.Notify(context.Background(), email, subject, body); err != nil {
			log.WithError(err).Warn("failed to send welcome mail to ", email)
		}
	}()
}

func mapUserResponse(user *model.User) *UserResponse {
	resp := &UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
	if user.BuildingID != nil {
		b := user.BuildingID.String()
		resp.BuildingID = &b
	}
	return resp
}
