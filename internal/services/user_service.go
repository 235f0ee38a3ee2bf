package services

import (
	"errors"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lendstock/internal/models"
	"lendstock/internal/repositories"
)

var (
	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser is returned when the username or email is already taken.
	ErrDuplicateUser = errors.New("username or email already exists")
)

// UserService defines registration and listing of users.
type UserService interface {
	Register(username, firstName, lastName, email, password string) (*models.User, error)
	ListUsers() ([]models.User, error)
}

type userService struct {
	db       *gorm.DB
	userRepo repositories.UserRepository
}

// NewUserService wires up the user service.
func NewUserService(db *gorm.DB, userRepo repositories.UserRepository) UserService {
	return &userService{db: db, userRepo: userRepo}
}

// Register creates a user with a bcrypt-hashed password. The plaintext is
// never stored and the hash never leaves this package in serialized form.
func (s *userService) Register(username, firstName, lastName, email, password string) (*models.User, error) {
	if _, err := s.userRepo.GetByUsernameOrEmail(nil, username, email); err == nil {
		log.Printf("[WARN] Register: duplicate username=%q or email=%q", username, email)
		return nil, ErrDuplicateUser
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[ERROR] Register: failed to hash password for %q: %v", username, err)
		return nil, err
	}

	user := &models.User{
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  string(hash),
	}
	if err := s.userRepo.Create(nil, user); err != nil {
		// The unique indexes on username/email are the backstop for the
		// pre-insert check racing a concurrent registration.
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		log.Printf("[ERROR] Register: failed to create user %q: %v", username, err)
		return nil, err
	}
	log.Printf("[INFO] Register: created user %q (id=%d)", username, user.ID)
	return user, nil
}

// ListUsers returns every registered user.
func (s *userService) ListUsers() ([]models.User, error) {
	return s.userRepo.List(nil)
}

// isUniqueViolation checks for a unique-constraint error. PostgreSQL reports
// error code 23505; SQLite (used in tests) reports "UNIQUE constraint failed".
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "UNIQUE constraint")
}
