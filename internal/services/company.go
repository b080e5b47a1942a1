package services

import (
	"context"

	"github.com/uppath-hq/apiserver/internal/store"
	"github.com/uppath-hq/apiserver/internal/validate"
	"github.com/uppath-hq/apiserver/types"
)

// CompanyRepository defines persistence operations for companies.
type CompanyRepository interface {
	Create(ctx context.Context, in types.CompanyInput) (types.Company, error)
	GetByID(ctx context.Context, id int) (types.Company, error)
	List(ctx context.Context) ([]types.Company, error)
	Update(ctx context.Context, id int, in types.CompanyInput) error
	Delete(ctx context.Context, id int) error
	TaxIDOrEmailExists(ctx context.Context, taxID, contactEmail string, excludeID int) (bool, error)
}

// CompanyService encapsulates company use-cases. Input validation and the
// duplicate pre-check happen here, before anything reaches the store; the
// store's unique constraints remain the final backstop.
type CompanyService struct {
	repo CompanyRepository
}

func NewCompanyService(repo CompanyRepository) *CompanyService {
	return &CompanyService{repo: repo}
}

func (s *CompanyService) Create(ctx context.Context, in types.CompanyInput) (types.Company, error) {
	cleaned, err := validateCompanyInput(in)
	if err != nil {
		return types.Company{}, err
	}

	exists, err := s.repo.TaxIDOrEmailExists(ctx, cleaned.TaxID, cleaned.ContactEmail, 0)
	if err != nil {
		return types.Company{}, err
	}
	if exists {
		return types.Company{}, store.ErrConflict
	}

	return s.repo.Create(ctx, cleaned)
}

func (s *CompanyService) GetByID(ctx context.Context, id int) (types.Company, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CompanyService) List(ctx context.Context) ([]types.Company, error) {
	return s.repo.List(ctx)
}

func (s *CompanyService) Update(ctx context.Context, id int, in types.CompanyInput) error {
	cleaned, err := validateCompanyInput(in)
	if err != nil {
		return err
	}

	exists, err := s.repo.TaxIDOrEmailExists(ctx, cleaned.TaxID, cleaned.ContactEmail, id)
	if err != nil {
		return err
	}
	if exists {
		return store.ErrConflict
	}

	return s.repo.Update(ctx, id, cleaned)
}

func (s *CompanyService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func validateCompanyInput(in types.CompanyInput) (types.CompanyInput, error) {
	name, err := validate.RequiredString("name", in.Name, validate.MaxName)
	if err != nil {
		return types.CompanyInput{}, err
	}
	taxID, err := validate.RequiredString("tax_id", in.TaxID, validate.MaxTaxID)
	if err != nil {
		return types.CompanyInput{}, err
	}
	if err := validate.Email("contact_email", in.ContactEmail); err != nil {
		return types.CompanyInput{}, err
	}
	return types.CompanyInput{
		Name:         name,
		TaxID:        taxID,
		ContactEmail: in.ContactEmail,
	}, nil
}
