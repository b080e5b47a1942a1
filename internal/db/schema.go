package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Tables are created with IF NOT EXISTS so repeated bootstrap runs are
// no-ops. Order matters: users references companies, everything else
// references users or tracks.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id INTEGER NOT NULL,
		name VARCHAR(60) NOT NULL,
		tax_id VARCHAR(18) NOT NULL,
		contact_email VARCHAR(60) NOT NULL,
		created_at TIMESTAMPTZ DEFAULT now() NOT NULL,
		CONSTRAINT companies_pk PRIMARY KEY (id),
		CONSTRAINT companies_tax_id_uk UNIQUE (tax_id),
		CONSTRAINT companies_email_uk UNIQUE (contact_email)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER NOT NULL,
		company_id INTEGER,
		full_name VARCHAR(60) NOT NULL,
		email VARCHAR(60) NOT NULL,
		password_digest VARCHAR(80) NOT NULL,
		career_level VARCHAR(30) NOT NULL,
		occupation VARCHAR(30) NOT NULL,
		gender VARCHAR(15) NOT NULL,
		birth_date DATE,
		created_at TIMESTAMPTZ DEFAULT now() NOT NULL,
		is_admin BOOLEAN DEFAULT false NOT NULL,
		CONSTRAINT users_pk PRIMARY KEY (id),
		CONSTRAINT users_email_uk UNIQUE (email),
		CONSTRAINT users_companies_fk FOREIGN KEY (company_id) REFERENCES companies (id)
	)`,
	`CREATE TABLE IF NOT EXISTS tracks (
		id INTEGER NOT NULL,
		name VARCHAR(60) NOT NULL,
		CONSTRAINT tracks_pk PRIMARY KEY (id)
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id INTEGER NOT NULL,
		track_id INTEGER NOT NULL,
		name VARCHAR(60) NOT NULL,
		CONSTRAINT courses_pk PRIMARY KEY (id),
		CONSTRAINT courses_tracks_fk FOREIGN KEY (track_id) REFERENCES tracks (id)
	)`,
	`CREATE TABLE IF NOT EXISTS track_enrollments (
		user_id INTEGER NOT NULL,
		track_id INTEGER NOT NULL,
		progress_pct NUMERIC(5,2) DEFAULT 0 NOT NULL,
		status VARCHAR(20) DEFAULT 'in_progress' NOT NULL,
		CONSTRAINT track_enrollments_pk PRIMARY KEY (user_id, track_id),
		CONSTRAINT track_enrollments_users_fk FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT track_enrollments_tracks_fk FOREIGN KEY (track_id) REFERENCES tracks (id)
	)`,
	`CREATE TABLE IF NOT EXISTS wellbeing_records (
		id INTEGER GENERATED BY DEFAULT AS IDENTITY,
		user_id INTEGER NOT NULL,
		recorded_at DATE NOT NULL,
		stress_level SMALLINT NOT NULL,
		motivation_level SMALLINT NOT NULL,
		sleep_quality SMALLINT NOT NULL,
		CONSTRAINT wellbeing_records_pk PRIMARY KEY (id),
		CONSTRAINT wellbeing_records_users_fk FOREIGN KEY (user_id) REFERENCES users (id)
	)`,
	`CREATE TABLE IF NOT EXISTS recommendations (
		id INTEGER GENERATED BY DEFAULT AS IDENTITY,
		user_id INTEGER NOT NULL,
		kind VARCHAR(10) NOT NULL,
		reference_id INTEGER NOT NULL,
		reason VARCHAR(200),
		recommended_at DATE NOT NULL,
		CONSTRAINT recommendations_pk PRIMARY KEY (id),
		CONSTRAINT recommendations_kind_ck CHECK (kind IN ('course', 'track')),
		CONSTRAINT recommendations_users_fk FOREIGN KEY (user_id) REFERENCES users (id)
	)`,
}

// identifier sequences managed alongside the tables they feed.
var schemaSequences = []struct {
	name  string
	table string
}{
	{name: "companies_seq", table: "companies"},
	{name: "users_seq", table: "users"},
}

// SchemaManager bootstraps the relational schema.
type SchemaManager struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSchemaManager(db *sql.DB, log *slog.Logger) *SchemaManager {
	return &SchemaManager{db: db, log: log}
}

// EnsureSchema creates the tables and identifier sequences if absent.
// It is idempotent and safe to call at every process start. A sequence
// created against a table that already holds rows starts at
// max(existing id)+1 so pre-sequence rows are never collided with. All
// DDL runs in one transaction; any failure rolls the whole call back.
func (m *SchemaManager) EnsureSchema(ctx context.Context) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	for _, seq := range schemaSequences {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT to_regclass($1) IS NOT NULL`, seq.name).Scan(&exists); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		if exists {
			continue
		}

		var start int
		countQuery := fmt.Sprintf(`SELECT COALESCE(MAX(id), 0) + 1 FROM %s`, seq.table)
		if err := tx.QueryRowContext(ctx, countQuery).Scan(&start); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}

		create := fmt.Sprintf(`CREATE SEQUENCE %s START WITH %d INCREMENT BY 1`, seq.name, start)
		if _, err := tx.ExecContext(ctx, create); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		m.log.Info("sequence created", "sequence", seq.name, "start", start)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	m.log.Info("schema verified")
	return nil
}
