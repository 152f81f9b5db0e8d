package service

import (
	"context"                              // Context for store operations
	"errors"                               // Error matching
	"fmt"                                  // Error wrapping
	"freelance_market/internal/domain"     // Domain models
	"freelance_market/internal/media"      // Picture errors
	"freelance_market/internal/repository" // Data access
	"freelance_market/internal/utils"      // JWT helpers
	"io"                                   // Upload streams
	"strings"                              // Input normalization
	"time"                                 // Token lifetime

	"github.com/google/uuid"     // Identifiers
	"golang.org/x/crypto/bcrypt" // Password hashing
)

const (
	minPasswordLen = 8  // Shortest accepted password
	maxPasswordLen = 64 // Longest accepted password
)

// PictureStore persists processed profile pictures and returns their public path
type PictureStore interface {
	SaveProfilePicture(r io.Reader, originalName string) (string, error)
}

// RegisterInput holds the fields of a new account
type RegisterInput struct {
	FirstName   string // Required
	LastName    string // Required
	Email       string // Required, stored lower-cased
	Password    string // Plain text, hashed before storage
	Bio         string // Optional
	AccessLevel int    // 0 means freelancer
}

// UserPage is one page of the user directory
type UserPage struct {
	Users      []domain.User `json:"users"`       // Users on this page
	Page       int           `json:"page"`        // Current page
	PageSize   int           `json:"page_size"`   // Page size
	Total      int           `json:"total"`       // Total number of users
	TotalPages int           `json:"total_pages"` // Total pages
}

// UserService is the user directory: accounts, credentials and profiles
type UserService struct {
	users    repository.UserRepository // User store
	pictures PictureStore              // Processed picture storage
	secret   string                    // JWT signing secret
	tokenTTL time.Duration             // Token lifetime
}

// NewUserService creates the user directory. Tokens are signed with secret and live for tokenTTL.
func NewUserService(users repository.UserRepository, pictures PictureStore, secret string, tokenTTL time.Duration) *UserService {
	return &UserService{users: users, pictures: pictures, secret: secret, tokenTTL: tokenTTL}
}

func validPassword(p string) bool {
	return len(p) >= minPasswordLen && len(p) <= maxPasswordLen
}

// Register creates an account with a bcrypt-hashed password
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.FirstName == "" || in.LastName == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: firstName, lastName and email are required", ErrValidation)
	}
	if !strings.Contains(in.Email, "@") {
		return nil, fmt.Errorf("%w: email is malformed", ErrValidation)
	}
	if !validPassword(in.Password) {
		return nil, fmt.Errorf("%w: password must be %d-%d characters", ErrValidation, minPasswordLen, maxPasswordLen)
	}
	role := domain.RoleFreelancer // Default role
	if in.AccessLevel != 0 {
		role = domain.Role(in.AccessLevel)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown access level %d", ErrValidation, in.AccessLevel)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost) // Hash the password
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:          uuid.New(),                // Server-assigned ID
		FirstName:   in.FirstName,              // First name
		LastName:    in.LastName,               // Last name
		Email:       in.Email,                  // Normalized email
		Password:    string(hash),              // Hashed password
		Bio:         strings.TrimSpace(in.Bio), // Optional bio
		AccessLevel: role,                      // Role
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail // Unique email index
		}
		return nil, err
	}
	return user, nil
}

// SignIn checks credentials and returns a signed token for the user
func (s *UserService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials // Same answer as a bad password
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := utils.GenerateJWT(user.ID, int(user.AccessLevel), s.secret, s.tokenTTL) // Sign the access token
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// GetUser returns one user
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: user does not exist", ErrNotFound)
	}
	return user, err
}

// ListUsers returns a page of users ordered by registration time
func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20 // Default page size
	}
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	res := &UserPage{
		Users:      []domain.User{},                      // Empty past the last page
		Page:       page,                                 // Current page
		PageSize:   pageSize,                             // Page size
		Total:      len(all),                             // Total number of users
		TotalPages: (len(all) + pageSize - 1) / pageSize, // Rounded up
	}
	start := (page - 1) * pageSize // Offset of the first user
	if start < len(all) {
		end := min(start+pageSize, len(all))
		res.Users = all[start:end]
	}
	return res, nil
}

// UpdateBio replaces the bio. An empty bio leaves it unchanged.
func (s *UserService) UpdateBio(ctx context.Context, id uuid.UUID, bio string) (*domain.User, error) {
	if bio = strings.TrimSpace(bio); bio != "" {
		if err := s.users.Update(ctx, id, repository.UserUpdate{Bio: &bio}); err != nil {
			return nil, s.userError(err)
		}
	}
	return s.GetUser(ctx, id)
}

// UpdatePassword sets a new password
func (s *UserService) UpdatePassword(ctx context.Context, id uuid.UUID, password string) error {
	if !validPassword(password) {
		return fmt.Errorf("%w: password must be %d-%d characters", ErrValidation, minPasswordLen, maxPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	h := string(hash)
	return s.userError(s.users.Update(ctx, id, repository.UserUpdate{Password: &h}))
}

// DeleteUser removes an account
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.userError(s.users.Delete(ctx, id))
}

// SetProfilePicture stores a resized picture and records its path on the user
func (s *UserService) SetProfilePicture(ctx context.Context, id uuid.UUID, r io.Reader, name string) (*domain.User, error) {
	if _, err := s.GetUser(ctx, id); err != nil {
		return nil, err
	}
	path, err := s.pictures.SaveProfilePicture(r, name)
	if errors.Is(err, media.ErrInvalidImage) {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, id, repository.UserUpdate{ProfilePicture: &path}); err != nil {
		return nil, s.userError(err)
	}
	return s.GetUser(ctx, id)
}

// userError maps a missing user onto ErrNotFound
func (s *UserService) userError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: user does not exist", ErrNotFound)
	}
	return err
}
