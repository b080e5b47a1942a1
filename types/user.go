package types

import "time"

// Unspecified is the value stored for optional profile fields the caller
// left blank. The backing columns are non-null, so blanks are never
// persisted as-is.
const Unspecified = "Não especificado"

// SentinelBirthDate is stored when no birth date is supplied, to satisfy
// callers that expect a date without failing the operation.
var SentinelBirthDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// User represents a member of a company (or an unaffiliated person).
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// CompanyID references the owning company. Nil means no affiliation.
	CompanyID *int `json:"company_id" db:"company_id"`

	// FullName is the user's full name.
	FullName string `json:"full_name" db:"full_name"`

	// Email is the user's email address. Unique across users.
	Email string `json:"email" db:"email"`

	// PasswordDigest stores the one-way digest of the user's password.
	// This field is never exposed in API responses.
	PasswordDigest string `json:"-" db:"password_digest"`

	// CareerLevel is a free-text seniority label (e.g. "Júnior", "Sênior").
	CareerLevel string `json:"career_level" db:"career_level"`

	// Occupation is the user's occupation label.
	Occupation string `json:"occupation" db:"occupation"`

	// Gender is the user's self-reported gender label.
	Gender string `json:"gender" db:"gender"`

	// BirthDate is the user's birth date, or SentinelBirthDate when it
	// was never supplied.
	BirthDate time.Time `json:"birth_date" db:"birth_date"`

	// CreatedAt is the server-assigned registration timestamp. Immutable.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// IsAdmin marks administrators.
	IsAdmin bool `json:"is_admin" db:"is_admin"`
}

// UserInput carries the caller-supplied fields for creating or updating a
// user. BirthDate is textual ("YYYY-MM-DD" or "DD/MM/YYYY"); an empty
// string means "not supplied": on create the sentinel date is stored, on
// update the currently stored date is preserved.
type UserInput struct {
	CompanyID      *int   `json:"company_id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	PasswordDigest string `json:"-"`
	CareerLevel    string `json:"career_level"`
	Occupation     string `json:"occupation"`
	Gender         string `json:"gender"`
	BirthDate      string `json:"birth_date"`
	IsAdmin        bool   `json:"is_admin"`
}
