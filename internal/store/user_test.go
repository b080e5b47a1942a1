package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uppath-hq/apiserver/internal/validate"
	"github.com/uppath-hq/apiserver/types"
)

func newUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db, NewIDAllocator(testLogger()), testLogger()), mock
}

var userTestColumns = []string{
	"id", "company_id", "full_name", "email", "password_digest",
	"career_level", "occupation", "gender", "birth_date", "created_at", "is_admin",
}

func TestUserCreateDefaultsAndSentinelDate(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectBegin()
	expectNextID(mock, EntityUser, 1)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(
			1,
			nil,
			"Ana Silva",
			"ana@x.com",
			"digest",
			types.Unspecified,
			types.Unspecified,
			types.Unspecified,
			types.SentinelBirthDate,
			sqlmock.AnyArg(),
			false,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, err := repo.Create(context.Background(), types.UserInput{
		FullName:       "Ana Silva",
		Email:          "ana@x.com",
		PasswordDigest: "digest",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.Nil(t, user.CompanyID)
	assert.Equal(t, types.Unspecified, user.CareerLevel)
	assert.Equal(t, types.SentinelBirthDate, user.BirthDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateParsesBrazilianDate(t *testing.T) {
	repo, mock := newUserRepo(t)
	companyID := 1
	want := time.Date(1995, time.March, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	expectNextID(mock, EntityUser, 2)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(
			2,
			companyID,
			"Bruno Costa",
			"bruno@x.com",
			"digest",
			"Pleno",
			"Engenheiro",
			types.Unspecified,
			want,
			sqlmock.AnyArg(),
			false,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, err := repo.Create(context.Background(), types.UserInput{
		CompanyID:      &companyID,
		FullName:       "Bruno Costa",
		Email:          "bruno@x.com",
		PasswordDigest: "digest",
		CareerLevel:    "Pleno",
		Occupation:     "Engenheiro",
		BirthDate:      "15/03/1995",
	})
	require.NoError(t, err)
	assert.Equal(t, want, user.BirthDate)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectBegin()
	expectNextID(mock, EntityUser, 3)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "users_email_uk"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), types.UserInput{
		FullName:       "Ana Clone",
		Email:          "ana@x.com",
		PasswordDigest: "digest",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserCreateMissingCompany(t *testing.T) {
	repo, mock := newUserRepo(t)
	companyID := 999

	mock.ExpectBegin()
	expectNextID(mock, EntityUser, 4)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation, Constraint: "users_companies_fk"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), types.UserInput{
		CompanyID:      &companyID,
		FullName:       "Carlos",
		Email:          "carlos@x.com",
		PasswordDigest: "digest",
	})
	assert.ErrorIs(t, err, ErrReferential)
}

func TestUserUpdatePreservesStoredBirthDate(t *testing.T) {
	repo, mock := newUserRepo(t)
	stored := time.Date(1995, time.March, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT birth_date FROM users WHERE id = $1`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"birth_date"}).AddRow(stored))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs(
			nil,
			"Ana Silva",
			"ana@x.com",
			"digest",
			"Pleno",
			"Designer",
			types.Unspecified,
			stored,
			false,
			1,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), 1, types.UserInput{
		FullName:       "Ana Silva",
		Email:          "ana@x.com",
		PasswordDigest: "digest",
		CareerLevel:    "Pleno",
		Occupation:     "Designer",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateNullStoredBirthDateBecomesSentinel(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT birth_date FROM users WHERE id = $1`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"birth_date"}).AddRow(nil))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs(
			nil,
			"Ana Silva",
			"ana@x.com",
			"digest",
			types.Unspecified,
			types.Unspecified,
			types.Unspecified,
			types.SentinelBirthDate,
			false,
			1,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), 1, types.UserInput{
		FullName:       "Ana Silva",
		Email:          "ana@x.com",
		PasswordDigest: "digest",
	})
	require.NoError(t, err)
}

func TestUserUpdatePreservesStoredPasswordDigest(t *testing.T) {
	repo, mock := newUserRepo(t)
	stored := time.Date(1995, time.March, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT birth_date FROM users WHERE id = $1`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"birth_date"}).AddRow(stored))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT password_digest FROM users WHERE id = $1`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"password_digest"}).AddRow("stored-digest"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs(
			nil,
			"Ana Silva",
			"ana@x.com",
			"stored-digest",
			"Pleno",
			"Designer",
			types.Unspecified,
			stored,
			false,
			1,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), 1, types.UserInput{
		FullName:    "Ana Silva",
		Email:       "ana@x.com",
		CareerLevel: "Pleno",
		Occupation:  "Designer",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateReplacesPasswordDigest(t *testing.T) {
	repo, mock := newUserRepo(t)

	// A supplied digest is written as-is, with no re-read.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs(
			nil,
			"Ana Silva",
			"ana@x.com",
			"new-digest",
			types.Unspecified,
			types.Unspecified,
			types.Unspecified,
			time.Date(2000, time.December, 31, 0, 0, 0, 0, time.UTC),
			false,
			1,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), 1, types.UserInput{
		FullName:       "Ana Silva",
		Email:          "ana@x.com",
		PasswordDigest: "new-digest",
		BirthDate:      "2000-12-31",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateReplacesBirthDate(t *testing.T) {
	repo, mock := newUserRepo(t)
	want := time.Date(2000, time.December, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs(
			nil,
			"Ana Silva",
			"ana@x.com",
			"digest",
			types.Unspecified,
			types.Unspecified,
			types.Unspecified,
			want,
			false,
			1,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), 1, types.UserInput{
		FullName:       "Ana Silva",
		Email:          "ana@x.com",
		PasswordDigest: "digest",
		BirthDate:      "2000-12-31",
	})
	require.NoError(t, err)
}

func TestUserUpdateRejectsUnparsableBirthDate(t *testing.T) {
	repo, mock := newUserRepo(t)

	// No re-read and no UPDATE may run: the whole update is rejected.
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.Update(context.Background(), 1, types.UserInput{
		FullName:       "Ana Silva",
		Email:          "ana@x.com",
		PasswordDigest: "digest",
		BirthDate:      "not-a-date",
	})
	var vErr *validate.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "birth_date", vErr.Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByIDMapsNullsToDefaults(t *testing.T) {
	repo, mock := newUserRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT id, company_id, full_name`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(userTestColumns).
			AddRow(1, nil, "Ana", "ana@x.com", "digest", "Júnior", "Dev", "Feminino", nil, now, false))

	user, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, user.CompanyID)
	assert.Equal(t, types.SentinelBirthDate, user.BirthDate)
}

func TestUserGetByIDNotFound(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery(`SELECT id, company_id, full_name`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(userTestColumns))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserDeleteNotFound(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserEmailExists(t *testing.T) {
	t.Run("without excludeID", func(t *testing.T) {
		repo, mock := newUserRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(1) FROM users WHERE email = $1`)).
			WithArgs("ana@x.com").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.EmailExists(context.Background(), "ana@x.com", 0)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("own email excluded returns false", func(t *testing.T) {
		repo, mock := newUserRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(1) FROM users WHERE email = $1 AND id <> $2`)).
			WithArgs("ana@x.com", 1).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.EmailExists(context.Background(), "ana@x.com", 1)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
