package domain

import (
	"strconv"
	"strings"

	dErrors "awardregistry/pkg/domain-errors"
)

// CompanyID identifies a company. Ids start at 1 and are never reused.
type CompanyID uint64

// UserID identifies a registered member. Ids start at 1 and are never reused.
type UserID uint64

func (c CompanyID) String() string { return strconv.FormatUint(uint64(c), 10) }

// IsNil reports whether the id is the zero value, which is never allocated.
func (c CompanyID) IsNil() bool { return c == 0 }

func (u UserID) String() string { return strconv.FormatUint(uint64(u), 10) }

// IsNil reports whether the id is the zero value, which is never allocated.
func (u UserID) IsNil() bool { return u == 0 }

// ParseCompanyID parses a positive decimal company id.
func ParseCompanyID(s string) (CompanyID, error) {
	v, err := parsePositive(s, "company")
	return CompanyID(v), err
}

// ParseUserID parses a positive decimal user id.
func ParseUserID(s string) (UserID, error) {
	v, err := parsePositive(s, "user")
	return UserID(v), err
}

func parsePositive(s, kind string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if v == 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, kind+" id must be positive")
	}
	return v, nil
}
