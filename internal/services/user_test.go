package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uppath-hq/apiserver/internal/store"
	"github.com/uppath-hq/apiserver/internal/validate"
	"github.com/uppath-hq/apiserver/types"
)

type fakeUserRepo struct {
	createCalled bool
	updateCalled bool
	existing     bool

	gotInput     types.UserInput
	gotExcludeID int
}

func (f *fakeUserRepo) Create(_ context.Context, in types.UserInput) (types.User, error) {
	f.createCalled = true
	f.gotInput = in
	return types.User{ID: 1, FullName: in.FullName, Email: in.Email}, nil
}

func (f *fakeUserRepo) GetByID(context.Context, int) (types.User, error) {
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(context.Context, string) (types.User, error) {
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) List(context.Context) ([]types.User, error) {
	return []types.User{}, nil
}

func (f *fakeUserRepo) Update(_ context.Context, _ int, in types.UserInput) error {
	f.updateCalled = true
	f.gotInput = in
	return nil
}

func (f *fakeUserRepo) Delete(context.Context, int) error {
	return nil
}

func (f *fakeUserRepo) EmailExists(_ context.Context, _ string, excludeID int) (bool, error) {
	f.gotExcludeID = excludeID
	return f.existing, nil
}

func validUserInput() types.UserInput {
	return types.UserInput{
		FullName:       "Ana Silva",
		Email:          "ana@uppath.com.br",
		PasswordDigest: "$2a$10$digest",
	}
}

func TestUserServiceCreate(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := NewUserService(repo)

	user, err := svc.Create(context.Background(), validUserInput())
	require.NoError(t, err)
	assert.True(t, repo.createCalled)
	assert.Equal(t, "Ana Silva", user.FullName)
}

func TestUserServiceCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.UserInput)
		field  string
	}{
		{"empty full name", func(in *types.UserInput) { in.FullName = "  " }, "full_name"},
		{"bad email", func(in *types.UserInput) { in.Email = "ana@" }, "email"},
		{"empty password", func(in *types.UserInput) { in.PasswordDigest = "" }, "password"},
		{"unparsable birth date", func(in *types.UserInput) { in.BirthDate = "31-12-2000" }, "birth_date"},
		{"overlong career level", func(in *types.UserInput) {
			in.CareerLevel = "Especialista Sênior em Transformação Organizacional Digital"
		}, "career_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUserRepo{}
			svc := NewUserService(repo)

			in := validUserInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), in)

			var vErr *validate.Error
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.False(t, repo.createCalled)
		})
	}
}

func TestUserServiceCreateBlankBirthDateAccepted(t *testing.T) {
	// An absent birth date is not a validation failure; the repository
	// substitutes the sentinel value.
	repo := &fakeUserRepo{}
	svc := NewUserService(repo)

	in := validUserInput()
	in.BirthDate = ""
	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, repo.gotInput.BirthDate)
}

func TestUserServiceCreateBlankOptionalFieldsPassThrough(t *testing.T) {
	// Blank optional fields stay blank at this layer; the repository
	// applies the unspecified label on write.
	repo := &fakeUserRepo{}
	svc := NewUserService(repo)

	_, err := svc.Create(context.Background(), validUserInput())
	require.NoError(t, err)
	assert.Empty(t, repo.gotInput.CareerLevel)
	assert.Empty(t, repo.gotInput.Occupation)
	assert.Empty(t, repo.gotInput.Gender)
}

func TestUserServiceUpdateWithoutPassword(t *testing.T) {
	// The API never returns the stored digest, so a caller updating only
	// profile fields cannot resupply it. A blank digest is accepted on
	// update and passed through for the repository to carry forward.
	repo := &fakeUserRepo{}
	svc := NewUserService(repo)

	in := validUserInput()
	in.PasswordDigest = ""
	in.Occupation = "Designer"
	err := svc.Update(context.Background(), 7, in)
	require.NoError(t, err)
	assert.True(t, repo.updateCalled)
	assert.Empty(t, repo.gotInput.PasswordDigest)
	assert.Equal(t, "Designer", repo.gotInput.Occupation)
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	repo := &fakeUserRepo{existing: true}
	svc := NewUserService(repo)

	_, err := svc.Create(context.Background(), validUserInput())
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.False(t, repo.createCalled)
}

func TestUserServiceUpdateExcludesSelf(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := NewUserService(repo)

	err := svc.Update(context.Background(), 7, validUserInput())
	require.NoError(t, err)
	assert.True(t, repo.updateCalled)
	assert.Equal(t, 7, repo.gotExcludeID)
}

func TestUserServiceUpdateDuplicateEmail(t *testing.T) {
	repo := &fakeUserRepo{existing: true}
	svc := NewUserService(repo)

	err := svc.Update(context.Background(), 7, validUserInput())
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.False(t, repo.updateCalled)
}
