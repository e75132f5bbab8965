package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the slice of the user repository the service depends on.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// ErrRegistrationClosed is returned by the public bootstrap endpoint once
// the first account exists; further accounts are created by an admin.
var ErrRegistrationClosed = errors.New("registration closed")

// UserService handles admin account registration and authentication.
type UserService struct {
	repo UserStore
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore) *UserService {
	return &UserService{repo: repo}
}

// RegisterUser handles the public bootstrap endpoint: it creates the
// first admin account and nothing else. Once any account exists it
// refuses with ErrRegistrationClosed; new accounts are then minted by an
// existing admin through CreateUser.
func (s *UserService) RegisterUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %v", err)
	}
	if count > 0 {
		logrus.Warn("Bootstrap registration attempted after first account")
		return nil, ErrRegistrationClosed
	}

	return s.CreateUser(ctx, user, password)
}

// CreateUser creates an account with a bcrypt-hashed password. Callers
// are responsible for authorization; main only routes here behind the
// admin role.
func (s *UserService) CreateUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	if user.Email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	existing, err := s.repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %v", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("user with email %s already exists", user.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}
	user.HashedPassword = string(hashed)
	if user.Role == "" {
		user.Role = "admin"
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %v", err)
	}

	logrus.WithField("userID", created.ID.Hex()).Info("User registered in service layer")
	return created, nil
}

// AuthenticateUser checks credentials and returns the matching user.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}
	if user == nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}
	return s.repo.GetUserByID(ctx, objID)
}
