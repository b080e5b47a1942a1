package types

import "time"

// Company represents an organization registered in the system.
type Company struct {
	// ID is the unique identifier of the company.
	ID int `json:"id" db:"id"`

	// Name is the company's legal name.
	Name string `json:"name" db:"name"`

	// TaxID is the company's tax identifier. Unique across companies.
	TaxID string `json:"tax_id" db:"tax_id"`

	// ContactEmail is the company's contact address. Unique across companies.
	ContactEmail string `json:"contact_email" db:"contact_email"`

	// CreatedAt is the server-assigned registration timestamp. Immutable.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CompanyInput carries the caller-supplied fields for creating or
// updating a company. Updates overwrite all three fields; the caller
// carries forward values it does not mean to change.
type CompanyInput struct {
	Name         string `json:"name"`
	TaxID        string `json:"tax_id"`
	ContactEmail string `json:"contact_email"`
}
