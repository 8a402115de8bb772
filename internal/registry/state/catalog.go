package state

import (
	"awardregistry/internal/registry/models"
	id "awardregistry/pkg/domain"
	dErrors "awardregistry/pkg/domain-errors"
)

// CanCreateCompany checks the caller holds ownership and returns the company
// that ApplyCreateCompany will append, carrying the next id.
func (s *State) CanCreateCompany(caller id.Address, name string) (models.Company, error) {
	if err := s.ownership.RequireOwner(caller); err != nil {
		return models.Company{}, err
	}
	return models.NewCompany(id.CompanyID(s.companyUniqueID+1), name)
}

// ApplyCreateCompany allocates the id and records the company's position.
func (s *State) ApplyCreateCompany(c models.Company) {
	s.companyUniqueID = uint64(c.ID)
	s.companies = append(s.companies, c)
	s.companyIndex[c.ID] = len(s.companies) - 1
}

// Company returns the company with a copy of its member list.
func (s *State) Company(companyID id.CompanyID) (*models.CompanyDetails, error) {
	pos := s.companyPosition(companyID)
	i, ok := pos.Index()
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "company not found")
	}
	members := append([]models.Member{}, s.members[companyID]...)
	return &models.CompanyDetails{Company: s.companies[i], Members: members}, nil
}

// Companies returns all companies in creation order.
func (s *State) Companies() []models.Company {
	return append([]models.Company{}, s.companies...)
}

func (s *State) requireCompany(companyID id.CompanyID) error {
	if s.companyPosition(companyID).IsAbsent() {
		return dErrors.New(dErrors.CodeNotFound, "company not found")
	}
	return nil
}
