package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/uppath-hq/apiserver/internal/validate"
	"github.com/uppath-hq/apiserver/types"
)

// UserRepository handles persistence for users. It owns the only
// read/write path to the users table, including optional-field defaulting
// and birth-date normalization.
type UserRepository struct {
	db        *sql.DB
	allocator *IDAllocator
	log       *slog.Logger
}

func NewUserRepository(db *sql.DB, allocator *IDAllocator, log *slog.Logger) *UserRepository {
	return &UserRepository{db: db, allocator: allocator, log: log}
}

const userColumns = `id, company_id, full_name, email, password_digest,
		career_level, occupation, gender, birth_date, created_at, is_admin`

// Create inserts a user and returns it with its allocated identifier.
// Career level, occupation and gender default to the unspecified label
// when blank; an absent or unparsable birth date is replaced with the
// sentinel date rather than failing the create. A missing company
// reference surfaces as ErrReferential, a duplicate email as ErrConflict.
func (r *UserRepository) Create(ctx context.Context, in types.UserInput) (types.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.User{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	id, err := r.allocator.NextID(ctx, tx, EntityUser)
	if err != nil {
		return types.User{}, err
	}

	birthDate, ok := parseBirthDate(in.BirthDate)
	if !ok {
		birthDate = types.SentinelBirthDate
		r.log.Warn("birth date absent or unparsable, storing sentinel date",
			"email", in.Email, "sentinel", birthDate.Format("2006-01-02"))
	}

	user := types.User{
		ID:             id,
		CompanyID:      in.CompanyID,
		FullName:       in.FullName,
		Email:          in.Email,
		PasswordDigest: in.PasswordDigest,
		CareerLevel:    defaultIfBlank(in.CareerLevel),
		Occupation:     defaultIfBlank(in.Occupation),
		Gender:         defaultIfBlank(in.Gender),
		BirthDate:      birthDate,
		CreatedAt:      time.Now(),
		IsAdmin:        in.IsAdmin,
	}

	const query = `
		INSERT INTO users (id, company_id, full_name, email, password_digest,
			career_level, occupation, gender, birth_date, created_at, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := tx.ExecContext(
		ctx,
		query,
		user.ID,
		nullableCompanyID(user.CompanyID),
		user.FullName,
		user.Email,
		user.PasswordDigest,
		user.CareerLevel,
		user.Occupation,
		user.Gender,
		user.BirthDate,
		user.CreatedAt,
		user.IsAdmin,
	); err != nil {
		return types.User{}, mapConstraintError(err)
	}

	if err := tx.Commit(); err != nil {
		return types.User{}, mapConstraintError(err)
	}

	r.log.Info("user created", "id", user.ID, "email", user.Email)
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// List returns every user ordered by identifier.
func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Update overwrites the user's mutable fields. The birth date and the
// password digest are field-preserving: when the payload leaves either
// blank, the currently stored value is re-read and written back
// unchanged; a supplied but unparsable birth date rejects the whole
// update.
func (r *UserRepository) Update(ctx context.Context, id int, in types.UserInput) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var birthDate time.Time
	if in.BirthDate == "" {
		stored, err := r.storedBirthDate(ctx, tx, id)
		if err != nil {
			return err
		}
		birthDate = stored
	} else {
		parsed, ok := parseBirthDate(in.BirthDate)
		if !ok {
			return &validate.Error{Field: "birth_date", Message: "invalid date, use YYYY-MM-DD or DD/MM/YYYY"}
		}
		birthDate = parsed
	}

	digest := in.PasswordDigest
	if digest == "" {
		stored, err := r.storedPasswordDigest(ctx, tx, id)
		if err != nil {
			return err
		}
		digest = stored
	}

	const query = `
		UPDATE users
		SET company_id = $1,
			full_name = $2,
			email = $3,
			password_digest = $4,
			career_level = $5,
			occupation = $6,
			gender = $7,
			birth_date = $8,
			is_admin = $9
		WHERE id = $10`
	result, err := tx.ExecContext(
		ctx,
		query,
		nullableCompanyID(in.CompanyID),
		in.FullName,
		in.Email,
		digest,
		defaultIfBlank(in.CareerLevel),
		defaultIfBlank(in.Occupation),
		defaultIfBlank(in.Gender),
		birthDate,
		in.IsAdmin,
		id,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return mapConstraintError(err)
	}
	r.log.Info("user updated", "id", id)
	return nil
}

// Delete hard-deletes a user.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM users WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return mapConstraintError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		r.log.Warn("no user found to delete", "id", id)
		return ErrNotFound
	}
	r.log.Info("user deleted", "id", id)
	return nil
}

// EmailExists reports whether another user already holds the given email.
// excludeID, when positive, leaves that user out of the check so a user
// can keep their own email on update.
func (r *UserRepository) EmailExists(ctx context.Context, email string, excludeID int) (bool, error) {
	query := `SELECT COUNT(1) FROM users WHERE email = $1`
	args := []any{email}
	if excludeID > 0 {
		query += ` AND id <> $2`
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) storedPasswordDigest(ctx context.Context, q Querier, id int) (string, error) {
	var digest string
	err := q.QueryRowContext(ctx, `SELECT password_digest FROM users WHERE id = $1`, id).Scan(&digest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return digest, nil
}

func (r *UserRepository) storedBirthDate(ctx context.Context, q Querier, id int) (time.Time, error) {
	var stored sql.NullTime
	err := q.QueryRowContext(ctx, `SELECT birth_date FROM users WHERE id = $1`, id).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, err
	}
	if !stored.Valid {
		// Legacy rows predating the sentinel convention.
		return types.SentinelBirthDate, nil
	}
	return stored.Time, nil
}

// parseBirthDate tries the accepted layouts in order. The boolean is
// false when the value is blank or matches no layout.
func parseBirthDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range validate.BirthDateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func defaultIfBlank(value string) string {
	if value == "" {
		return types.Unspecified
	}
	return value
}

func nullableCompanyID(id *int) any {
	if id == nil {
		return nil
	}
	return *id
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (types.User, error) {
	var user types.User
	var companyID sql.NullInt64
	var birthDate sql.NullTime
	if err := row.Scan(
		&user.ID,
		&companyID,
		&user.FullName,
		&user.Email,
		&user.PasswordDigest,
		&user.CareerLevel,
		&user.Occupation,
		&user.Gender,
		&birthDate,
		&user.CreatedAt,
		&user.IsAdmin,
	); err != nil {
		return types.User{}, err
	}
	if companyID.Valid {
		id := int(companyID.Int64)
		user.CompanyID = &id
	}
	if birthDate.Valid {
		user.BirthDate = birthDate.Time
	} else {
		user.BirthDate = types.SentinelBirthDate
	}
	return user, nil
}
