package state

import (
	"awardregistry/internal/access"
	"awardregistry/internal/registry/models"
	id "awardregistry/pkg/domain"
	dErrors "awardregistry/pkg/domain-errors"
)

// RegistrationPlan is a validated registration awaiting its refund transfer.
type RegistrationPlan struct {
	Member   models.Member
	Retained id.Amount
	Refund   id.Amount
}

// CanRegister validates a self-registration paid with payment.
func (s *State) CanRegister(caller id.Address, req models.RegisterRequest, payment id.Amount) (RegistrationPlan, error) {
	if caller.IsZero() {
		return RegistrationPlan{}, dErrors.New(dErrors.CodeUnauthorized, "caller identity is required")
	}
	if err := s.requireCompany(req.CompanyID); err != nil {
		return RegistrationPlan{}, err
	}
	if payment.Cmp(s.fee) < 0 {
		return RegistrationPlan{}, dErrors.New(dErrors.CodeInsufficientPayment, "payment is below the registration fee")
	}
	member, err := models.NewMember(id.UserID(s.userUniqueID+1), req.CompanyID, req.Name, req.Contact, caller)
	if err != nil {
		return RegistrationPlan{}, err
	}
	return RegistrationPlan{
		Member:   member,
		Retained: s.fee,
		Refund:   payment.Sub(s.fee),
	}, nil
}

// ApplyRegister appends the member at the tail of its company list, points
// both user indices at that slot and retains the fee.
func (s *State) ApplyRegister(plan RegistrationPlan) {
	m := plan.Member
	s.userUniqueID = uint64(m.ID)
	s.members[m.CompanyID] = append(s.members[m.CompanyID], m)
	s.userCompany[m.ID] = m.CompanyID
	s.userPosition[m.ID] = len(s.members[m.CompanyID]) - 1
	s.pooled = s.pooled.Add(plan.Retained)
}

// Member returns a copy of the member record.
func (s *State) Member(userID id.UserID) (models.Member, error) {
	companyID, pos := s.userSlot(userID)
	i, ok := pos.Index()
	if !ok {
		return models.Member{}, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return s.members[companyID][i], nil
}

// CanUpdateUser checks existence then identity, and returns the updated record.
func (s *State) CanUpdateUser(caller id.Address, userID id.UserID, req models.UpdateUserRequest) (models.Member, error) {
	m, err := s.Member(userID)
	if err != nil {
		return models.Member{}, err
	}
	if err := access.RequireSelf(caller, m.PaymentIdentity); err != nil {
		return models.Member{}, err
	}
	if err := m.ApplyProfile(req.Name, req.Contact); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// ApplyUpdateUser writes the record back into its slot. Only the mutable
// profile fields are taken from updated.
func (s *State) ApplyUpdateUser(updated models.Member) {
	companyID, pos := s.userSlot(updated.ID)
	i, ok := pos.Index()
	if !ok {
		return
	}
	slot := &s.members[companyID][i]
	slot.Name = updated.Name
	slot.Contact = updated.Contact
}

// DeletionPlan describes a validated swap-delete.
type DeletionPlan struct {
	Member   models.Member
	Position int
	// Moved is the tail member that will fill the vacated slot, nil when the
	// removed member is the tail.
	Moved *models.Member
}

// CanDeleteUser checks existence then identity and plans the swap.
func (s *State) CanDeleteUser(caller id.Address, userID id.UserID) (DeletionPlan, error) {
	m, err := s.Member(userID)
	if err != nil {
		return DeletionPlan{}, err
	}
	if err := access.RequireSelf(caller, m.PaymentIdentity); err != nil {
		return DeletionPlan{}, err
	}
	list := s.members[m.CompanyID]
	pos := s.userPosition[userID]
	plan := DeletionPlan{Member: m, Position: pos}
	if last := len(list) - 1; pos != last {
		moved := list[last]
		plan.Moved = &moved
	}
	return plan, nil
}

// ApplyDeleteUser moves the tail into the vacated slot, updates the moved
// member's position, truncates the list and clears the removed member's indices.
func (s *State) ApplyDeleteUser(plan DeletionPlan) {
	companyID := plan.Member.CompanyID
	list := s.members[companyID]
	last := len(list) - 1
	if plan.Moved != nil {
		list[plan.Position] = list[last]
		s.userPosition[list[plan.Position].ID] = plan.Position
	}
	list[last] = models.Member{}
	s.members[companyID] = list[:last]
	delete(s.userCompany, plan.Member.ID)
	delete(s.userPosition, plan.Member.ID)
}
