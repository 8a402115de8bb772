// Package state is the registry's state machine: the company list, per-company
// member lists, the index maps that locate them, the id counters and the
// pooled fee balance.
//
// State is not safe for concurrent use; the store serializes every call. Each
// mutating operation is split into a CanX step that validates and plans
// without touching state, and an ApplyX step that cannot fail. Callers perform
// any external transfer between the two so a failed transfer leaves nothing
// applied.
package state

import (
	"awardregistry/internal/access"
	"awardregistry/internal/registry/models"
	id "awardregistry/pkg/domain"
	dErrors "awardregistry/pkg/domain-errors"
)

// Position is an optional slot index. The zero value is Absent, which is
// distinct from slot 0.
type Position struct {
	index int
	ok    bool
}

// Absent is the position of something not stored.
var Absent = Position{}

// At returns the position of slot i.
func At(i int) Position { return Position{index: i, ok: true} }

// Index returns the slot and whether it is present.
func (p Position) Index() (int, bool) { return p.index, p.ok }

func (p Position) IsAbsent() bool { return !p.ok }

// State is the aggregate. Construct with New.
type State struct {
	ownership access.Ownership
	fee       id.Amount

	companies    []models.Company
	companyIndex map[id.CompanyID]int
	members      map[id.CompanyID][]models.Member
	userCompany  map[id.UserID]id.CompanyID
	userPosition map[id.UserID]int

	companyUniqueID uint64
	userUniqueID    uint64

	pooled id.Amount
}

// New creates an empty registry owned by owner that charges fee per registration.
func New(owner id.Address, fee id.Amount) (*State, error) {
	ownership, err := access.NewOwnership(owner)
	if err != nil {
		return nil, err
	}
	if fee.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "registration fee must be positive")
	}
	return &State{
		ownership:    ownership,
		fee:          fee,
		companyIndex: make(map[id.CompanyID]int),
		members:      make(map[id.CompanyID][]models.Member),
		userCompany:  make(map[id.UserID]id.CompanyID),
		userPosition: make(map[id.UserID]int),
	}, nil
}

func (s *State) Owner() id.Address { return s.ownership.Owner() }

func (s *State) RegistrationFee() id.Amount { return s.fee }

func (s *State) PooledBalance() id.Amount { return s.pooled }

// CompanyCount and UserCount report the id counters, i.e. how many companies
// and users were ever created.
func (s *State) CompanyCount() uint64 { return s.companyUniqueID }

func (s *State) UserCount() uint64 { return s.userUniqueID }

// CanTransferOwnership validates an ownership handoff.
func (s *State) CanTransferOwnership(caller, next id.Address) error {
	return s.ownership.CanTransfer(caller, next)
}

func (s *State) ApplyTransferOwnership(next id.Address) {
	s.ownership.ApplyTransfer(next)
}

func (s *State) companyPosition(companyID id.CompanyID) Position {
	if i, ok := s.companyIndex[companyID]; ok {
		return At(i)
	}
	return Absent
}

// userSlot locates a member: owning company and position in its list.
func (s *State) userSlot(userID id.UserID) (id.CompanyID, Position) {
	companyID, ok := s.userCompany[userID]
	if !ok {
		return 0, Absent
	}
	if i, ok := s.userPosition[userID]; ok {
		return companyID, At(i)
	}
	return 0, Absent
}
