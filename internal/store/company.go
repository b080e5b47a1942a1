package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/uppath-hq/apiserver/types"
)

// CompanyRepository handles persistence for companies. It owns the only
// read/write path to the companies table.
type CompanyRepository struct {
	db        *sql.DB
	allocator *IDAllocator
	log       *slog.Logger
}

func NewCompanyRepository(db *sql.DB, allocator *IDAllocator, log *slog.Logger) *CompanyRepository {
	return &CompanyRepository{db: db, allocator: allocator, log: log}
}

// Create inserts a company and returns it with its allocated identifier
// and registration timestamp. Identifier allocation and the insert run in
// one transaction; a constraint violation surfaces as ErrConflict.
func (r *CompanyRepository) Create(ctx context.Context, in types.CompanyInput) (types.Company, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Company{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	id, err := r.allocator.NextID(ctx, tx, EntityCompany)
	if err != nil {
		return types.Company{}, err
	}

	company := types.Company{
		ID:           id,
		Name:         in.Name,
		TaxID:        in.TaxID,
		ContactEmail: in.ContactEmail,
		CreatedAt:    time.Now(),
	}

	const query = `
		INSERT INTO companies (id, name, tax_id, contact_email, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(
		ctx,
		query,
		company.ID,
		company.Name,
		company.TaxID,
		company.ContactEmail,
		company.CreatedAt,
	); err != nil {
		return types.Company{}, mapConstraintError(err)
	}

	if err := tx.Commit(); err != nil {
		return types.Company{}, mapConstraintError(err)
	}

	r.log.Info("company created", "id", company.ID, "name", company.Name)
	return company, nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int) (types.Company, error) {
	const query = `
		SELECT id, name, tax_id, contact_email, created_at
		FROM companies
		WHERE id = $1`
	var company types.Company
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.TaxID,
		&company.ContactEmail,
		&company.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Company{}, ErrNotFound
		}
		return types.Company{}, err
	}
	return company, nil
}

// List returns every company ordered by identifier.
func (r *CompanyRepository) List(ctx context.Context) ([]types.Company, error) {
	const query = `
		SELECT id, name, tax_id, contact_email, created_at
		FROM companies
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := make([]types.Company, 0)
	for rows.Next() {
		var company types.Company
		if err := rows.Scan(
			&company.ID,
			&company.Name,
			&company.TaxID,
			&company.ContactEmail,
			&company.CreatedAt,
		); err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return companies, nil
}

// Update overwrites all three mutable fields with the caller-supplied
// values. The caller carries forward values it does not mean to change.
func (r *CompanyRepository) Update(ctx context.Context, id int, in types.CompanyInput) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
		UPDATE companies
		SET name = $1,
			tax_id = $2,
			contact_email = $3
		WHERE id = $4`
	result, err := tx.ExecContext(ctx, query, in.Name, in.TaxID, in.ContactEmail, id)
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
	r.log.Info("company updated", "id", id)
	return nil
}

// Delete hard-deletes a company. Deleting a company that still has users
// violates the users foreign key and surfaces as ErrReferential.
func (r *CompanyRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM companies WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return mapConstraintError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		r.log.Warn("no company found to delete", "id", id)
		return ErrNotFound
	}
	r.log.Info("company deleted", "id", id)
	return nil
}

// TaxIDOrEmailExists reports whether another company already holds the
// given tax id or contact email. excludeID, when positive, leaves that
// company out of the check so a company can keep its own values on update.
func (r *CompanyRepository) TaxIDOrEmailExists(ctx context.Context, taxID, contactEmail string, excludeID int) (bool, error) {
	if taxID != "" {
		exists, err := r.exists(ctx, `tax_id`, taxID, excludeID)
		if err != nil || exists {
			return exists, err
		}
	}
	if contactEmail != "" {
		return r.exists(ctx, `contact_email`, contactEmail, excludeID)
	}
	return false, nil
}

func (r *CompanyRepository) exists(ctx context.Context, column, value string, excludeID int) (bool, error) {
	query := `SELECT COUNT(1) FROM companies WHERE ` + column + ` = $1`
	args := []any{value}
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
