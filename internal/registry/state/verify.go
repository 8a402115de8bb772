package state

import (
	"fmt"

	dErrors "awardregistry/pkg/domain-errors"
)

// Verify checks that every index map agrees with the lists it points into.
func (s *State) Verify() error {
	if len(s.companyIndex) != len(s.companies) {
		return violation("company index has %d entries for %d companies", len(s.companyIndex), len(s.companies))
	}
	for i, c := range s.companies {
		if got, ok := s.companyIndex[c.ID]; !ok || got != i {
			return violation("company %s indexed at %d, stored at %d", c.ID, got, i)
		}
		if uint64(c.ID) > s.companyUniqueID {
			return violation("company %s beyond counter %d", c.ID, s.companyUniqueID)
		}
	}

	total := 0
	for companyID, list := range s.members {
		if s.companyPosition(companyID).IsAbsent() {
			return violation("members stored for unknown company %s", companyID)
		}
		for i, m := range list {
			total++
			if m.CompanyID != companyID {
				return violation("user %s in list of company %s claims company %s", m.ID, companyID, m.CompanyID)
			}
			if got, ok := s.userCompany[m.ID]; !ok || got != companyID {
				return violation("user %s company index is %s, want %s", m.ID, got, companyID)
			}
			if got, ok := s.userPosition[m.ID]; !ok || got != i {
				return violation("user %s position index is %d, want %d", m.ID, got, i)
			}
			if uint64(m.ID) > s.userUniqueID {
				return violation("user %s beyond counter %d", m.ID, s.userUniqueID)
			}
		}
	}
	if len(s.userCompany) != total || len(s.userPosition) != total {
		return violation("user indices hold %d/%d entries for %d members", len(s.userCompany), len(s.userPosition), total)
	}
	return nil
}

func violation(format string, args ...any) error {
	return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf(format, args...))
}
