package service

import (
	"context"

	"awardregistry/internal/registry/models"
	"awardregistry/internal/registry/state"
	id "awardregistry/pkg/domain"
	audit "awardregistry/pkg/platform/audit"
	"awardregistry/pkg/requestcontext"
)

// CreateCompany adds a company. Owner only; names need not be unique.
func (s *Service) CreateCompany(ctx context.Context, name string) (company *models.Company, err error) {
	ctx, finish := s.startOperation(ctx, opCreateCompany)
	defer func() { finish(err) }()

	caller := requestcontext.Caller(ctx)
	var created models.Company
	err = s.store.Execute(ctx, func(st *state.State) error {
		c, err := st.CanCreateCompany(caller, name)
		if err != nil {
			return err
		}
		st.ApplyCreateCompany(c)
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.Event{
		Action:    string(audit.EventCompanyCreated),
		Actor:     caller,
		CompanyID: created.ID,
	})
	s.metrics.IncrementCompaniesCreated()
	return &created, nil
}

// GetCompany returns the company with a copy of its member list.
func (s *Service) GetCompany(ctx context.Context, companyID id.CompanyID) (details *models.CompanyDetails, err error) {
	ctx, finish := s.startOperation(ctx, opGetCompany, companyAttr(companyID))
	defer func() { finish(err) }()

	err = s.store.View(ctx, func(st *state.State) error {
		d, err := st.Company(companyID)
		if err != nil {
			return err
		}
		details = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// ListCompanies returns every company in creation order.
func (s *Service) ListCompanies(ctx context.Context) (companies []models.Company, err error) {
	ctx, finish := s.startOperation(ctx, opListCompanies)
	defer func() { finish(err) }()

	err = s.store.View(ctx, func(st *state.State) error {
		companies = st.Companies()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return companies, nil
}
