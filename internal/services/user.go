package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfiez/wallpaper/internal/image"
	"github.com/wolfiez/wallpaper/internal/store"
	"github.com/wolfiez/wallpaper/types"
	"golang.org/x/crypto/bcrypt"
)

// DefaultRole is granted to every user on registration.
const DefaultRole = "USER"

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user types.User, roleName string) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id int) error
	Search(ctx context.Context, keyword string) ([]types.User, error)
	ListByRole(ctx context.Context, roleName string) ([]types.User, error)
}

// ProfileUpdate carries the fields of a profile update. Name and Email
// always replace the stored values; Image and NewPassword are applied only
// when non-empty.
type ProfileUpdate struct {
	Name        string
	Email       string
	Image       image.Upload
	NewPassword string
}

// UserService encapsulates user use-cases: registration, credential
// verification, and profile management.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register creates a user with a hashed password and the default role.
func (s *UserService) Register(ctx context.Context, name, email, password string) (types.User, error) {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return types.User{}, err
	}
	if exists {
		return types.User{}, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Active:       true,
	}, DefaultRole)
	if err != nil {
		// Lost the race against a concurrent registration.
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, err
	}
	return user, nil
}

// Authenticate verifies email and password and checks the active flag.
// Unknown email and wrong password yield the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}

	if !user.Active {
		return types.User{}, ErrAccountDisabled
	}

	return user, nil
}

// UpdateProfile merges the update into the stored user. The image is
// replaced only when a non-empty upload was supplied, the password only
// when a non-empty new password was supplied.
func (s *UserService) UpdateProfile(ctx context.Context, userID int, in ProfileUpdate) (types.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return types.User{}, err
	}

	if in.Email != user.Email {
		exists, err := s.repo.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return types.User{}, err
		}
		if exists {
			return types.User{}, ErrEmailTaken
		}
	}

	user.Name = in.Name
	user.Email = in.Email

	if !in.Image.Empty() {
		encoded, err := image.ProcessForStorage(in.Image)
		if err != nil {
			return types.User{}, fmt.Errorf("failed to process profile image: %w", err)
		}
		user.ProfileImage = encoded
	}

	if in.NewPassword != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return types.User{}, err
		}
		user.PasswordHash = string(hashed)
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, err
	}
	updated.Roles = user.Roles
	return updated, nil
}

// SetProfileImage validates, encodes, and stores the upload as the user's
// profile image.
func (s *UserService) SetProfileImage(ctx context.Context, userID int, upload image.Upload) (types.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return types.User{}, err
	}

	encoded, err := image.ProcessForStorage(upload)
	if err != nil {
		return types.User{}, err
	}
	user.ProfileImage = encoded

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return types.User{}, err
	}
	updated.Roles = user.Roles
	return updated, nil
}

// ProfileImage returns the decoded image bytes, or nil when the user has
// no profile image.
func (s *UserService) ProfileImage(ctx context.Context, userID int) ([]byte, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return image.Decode(user.ProfileImage)
}

func (s *UserService) RemoveProfileImage(ctx context.Context, userID int) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.ProfileImage = ""
	_, err = s.repo.Update(ctx, user)
	return err
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *UserService) Search(ctx context.Context, keyword string) ([]types.User, error) {
	return s.repo.Search(ctx, keyword)
}

func (s *UserService) ListByRole(ctx context.Context, roleName string) ([]types.User, error) {
	return s.repo.ListByRole(ctx, roleName)
}
