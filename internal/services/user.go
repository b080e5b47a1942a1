package services

import (
	"context"

	"github.com/uppath-hq/apiserver/internal/store"
	"github.com/uppath-hq/apiserver/internal/validate"
	"github.com/uppath-hq/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, in types.UserInput) (types.User, error)
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
	Update(ctx context.Context, id int, in types.UserInput) error
	Delete(ctx context.Context, id int) error
	EmailExists(ctx context.Context, email string, excludeID int) (bool, error)
}

// UserService encapsulates user use-cases. Field validation and the
// email duplicate pre-check happen here; defaulting, birth-date
// normalization and password carry-forward are the repository's job.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Create(ctx context.Context, in types.UserInput) (types.User, error) {
	cleaned, err := validateUserInput(in, true)
	if err != nil {
		return types.User{}, err
	}

	exists, err := s.repo.EmailExists(ctx, cleaned.Email, 0)
	if err != nil {
		return types.User{}, err
	}
	if exists {
		return types.User{}, store.ErrConflict
	}

	return s.repo.Create(ctx, cleaned)
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

// Update validates and applies the new field values. The password is
// optional here: a blank digest tells the repository to keep the stored
// one, so callers can update other fields without resetting the
// password.
func (s *UserService) Update(ctx context.Context, id int, in types.UserInput) error {
	cleaned, err := validateUserInput(in, false)
	if err != nil {
		return err
	}

	exists, err := s.repo.EmailExists(ctx, cleaned.Email, id)
	if err != nil {
		return err
	}
	if exists {
		return store.ErrConflict
	}

	return s.repo.Update(ctx, id, cleaned)
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *UserService) EmailExists(ctx context.Context, email string, excludeID int) (bool, error) {
	return s.repo.EmailExists(ctx, email, excludeID)
}

func validateUserInput(in types.UserInput, digestRequired bool) (types.UserInput, error) {
	fullName, err := validate.RequiredString("full_name", in.FullName, validate.MaxName)
	if err != nil {
		return types.UserInput{}, err
	}
	if err := validate.Email("email", in.Email); err != nil {
		return types.UserInput{}, err
	}
	if digestRequired && in.PasswordDigest == "" {
		return types.UserInput{}, &validate.Error{Field: "password", Message: "must not be empty"}
	}
	careerLevel, err := validate.OptionalString("career_level", in.CareerLevel, validate.MaxCareerLevel, "")
	if err != nil {
		return types.UserInput{}, err
	}
	occupation, err := validate.OptionalString("occupation", in.Occupation, validate.MaxOccupation, "")
	if err != nil {
		return types.UserInput{}, err
	}
	gender, err := validate.OptionalString("gender", in.Gender, validate.MaxGender, "")
	if err != nil {
		return types.UserInput{}, err
	}
	// A supplied but unparsable date is rejected here; an absent one is
	// the repository's cue to substitute or preserve.
	if _, err := validate.Date("birth_date", in.BirthDate); err != nil {
		return types.UserInput{}, err
	}

	cleaned := in
	cleaned.FullName = fullName
	cleaned.CareerLevel = careerLevel
	cleaned.Occupation = occupation
	cleaned.Gender = gender
	return cleaned, nil
}
