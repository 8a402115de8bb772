package models

import (
	"fmt"

	id "awardregistry/pkg/domain"
	dErrors "awardregistry/pkg/domain-errors"
)

// MaxFieldLength caps the size of a stored name or contact. Values are kept
// byte for byte; empty values are allowed.
const MaxFieldLength = 64 << 10

// Company is created only through the catalog and is never deleted or renamed.
// Names carry no uniqueness constraint.
type Company struct {
	ID   id.CompanyID `json:"id"`
	Name string       `json:"name"`
}

// CompanyDetails is a company together with a snapshot of its member list.
type CompanyDetails struct {
	Company
	Members []Member `json:"members"`
}

func NewCompany(companyID id.CompanyID, name string) (Company, error) {
	if companyID.IsNil() {
		return Company{}, dErrors.New(dErrors.CodeInvariantViolation, "company id must be positive")
	}
	if err := checkFieldLength("company name", name); err != nil {
		return Company{}, err
	}
	return Company{ID: companyID, Name: name}, nil
}

func checkFieldLength(field, value string) error {
	if len(value) > MaxFieldLength {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds %d bytes", field, MaxFieldLength))
	}
	return nil
}
