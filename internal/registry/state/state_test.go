package state

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/suite"

	"awardregistry/internal/registry/models"
	id "awardregistry/pkg/domain"
	dErrors "awardregistry/pkg/domain-errors"
)

type StateSuite struct {
	suite.Suite
	owner   id.Address
	alice   id.Address
	bob     id.Address
	fee     id.Amount
	state   *State
	acmeID  id.CompanyID
}

func TestStateSuite(t *testing.T) {
	suite.Run(t, new(StateSuite))
}

func (s *StateSuite) SetupTest() {
	s.owner = id.MustParseAddress("0x00000000000000000000000000000000000000f0")
	s.alice = id.MustParseAddress("0x00000000000000000000000000000000000000a1")
	s.bob = id.MustParseAddress("0x00000000000000000000000000000000000000b2")
	s.fee = id.Ether(1)

	st, err := New(s.owner, s.fee)
	s.Require().NoError(err)
	s.state = st
	s.acmeID = s.createCompany("Acme")
}

func (s *StateSuite) TearDownTest() {
	s.Require().NoError(s.state.Verify())
}

func (s *StateSuite) createCompany(name string) id.CompanyID {
	c, err := s.state.CanCreateCompany(s.owner, name)
	s.Require().NoError(err)
	s.state.ApplyCreateCompany(c)
	return c.ID
}

func (s *StateSuite) register(caller id.Address, companyID id.CompanyID, name string, payment id.Amount) RegistrationPlan {
	plan, err := s.state.CanRegister(caller, models.RegisterRequest{CompanyID: companyID, Name: name, Contact: "555"}, payment)
	s.Require().NoError(err)
	s.state.ApplyRegister(plan)
	return plan
}

func (s *StateSuite) deleteUser(caller id.Address, userID id.UserID) DeletionPlan {
	plan, err := s.state.CanDeleteUser(caller, userID)
	s.Require().NoError(err)
	s.state.ApplyDeleteUser(plan)
	return plan
}

func (s *StateSuite) memberIDs(companyID id.CompanyID) []id.UserID {
	details, err := s.state.Company(companyID)
	s.Require().NoError(err)
	ids := make([]id.UserID, 0, len(details.Members))
	for _, m := range details.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

func (s *StateSuite) TestConstruction() {
	s.Run("zero owner rejected", func() {
		_, err := New(id.Address{}, s.fee)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("zero fee rejected", func() {
		_, err := New(s.owner, id.Zero)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

// TestCatalog verifies company creation, lookup and id allocation.
func (s *StateSuite) TestCatalog() {
	s.Run("first company resolves to itself", func() {
		details, err := s.state.Company(s.acmeID)
		s.Require().NoError(err)
		s.Equal(id.CompanyID(1), details.ID)
		s.Equal("Acme", details.Name)
		s.Empty(details.Members)
	})

	s.Run("ids strictly increase and each company is retrievable", func() {
		names := []string{"Globex", "Initech", "Umbrella", "Hooli"}
		prev := s.acmeID
		created := map[id.CompanyID]string{}
		for _, name := range names {
			cid := s.createCompany(name)
			s.Greater(cid, prev)
			prev = cid
			created[cid] = name
		}
		for cid, name := range created {
			details, err := s.state.Company(cid)
			s.Require().NoError(err)
			s.Equal(name, details.Name)
			s.Empty(details.Members)
		}
		s.Len(s.state.Companies(), len(names)+1)
	})

	s.Run("duplicate names are allowed", func() {
		a := s.createCompany("Same")
		b := s.createCompany("Same")
		s.NotEqual(a, b)
	})

	s.Run("only the owner creates companies", func() {
		before := s.state.CompanyCount()
		_, err := s.state.CanCreateCompany(s.alice, "Rogue")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal(before, s.state.CompanyCount())
	})

	s.Run("unknown company is not found", func() {
		_, err := s.state.Company(999)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		_, err = s.state.Company(0)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestRegistration verifies fee retention, refunds and index placement.
// TestFieldsStoredAsGiven verifies names and contacts are never rewritten or
// refused for being empty.
func (s *StateSuite) TestFieldsStoredAsGiven() {
	s.Run("padded company name round trips", func() {
		padded := s.createCompany("  Acme  ")
		details, err := s.state.Company(padded)
		s.Require().NoError(err)
		s.Equal("  Acme  ", details.Name)
	})

	s.Run("empty company name is accepted", func() {
		c, err := s.state.CanCreateCompany(s.owner, "")
		s.Require().NoError(err)
		s.Empty(c.Name)
	})

	s.Run("empty member name registers", func() {
		plan, err := s.state.CanRegister(s.alice, models.RegisterRequest{CompanyID: s.acmeID, Name: ""}, s.fee)
		s.Require().NoError(err)
		s.state.ApplyRegister(plan)

		m, err := s.state.Member(plan.Member.ID)
		s.Require().NoError(err)
		s.Empty(m.Name)
		s.Empty(m.Contact)
	})
}

func (s *StateSuite) TestRegistration() {
	s.Run("exact fee retains the fee and refunds nothing", func() {
		before := s.state.PooledBalance()
		plan := s.register(s.alice, s.acmeID, "Alice", s.fee)
		s.True(plan.Retained.Equal(s.fee))
		s.True(plan.Refund.IsZero())
		s.True(s.state.PooledBalance().Equal(before.Add(s.fee)))

		m, err := s.state.Member(plan.Member.ID)
		s.Require().NoError(err)
		s.Equal(s.alice, m.PaymentIdentity)
		s.Equal(s.acmeID, m.CompanyID)
	})

	s.Run("overpayment refunds the excess and retains only the fee", func() {
		before := s.state.PooledBalance()
		extra := id.NewAmount(12345)
		plan := s.register(s.bob, s.acmeID, "Bob", s.fee.Add(extra))
		s.True(plan.Refund.Equal(extra))
		s.True(s.state.PooledBalance().Equal(before.Add(s.fee)))
	})

	s.Run("underpayment leaves state unchanged", func() {
		balance := s.state.PooledBalance()
		users := s.state.UserCount()
		members := s.memberIDs(s.acmeID)

		_, err := s.state.CanRegister(s.alice, models.RegisterRequest{CompanyID: s.acmeID, Name: "Cheap"}, s.fee.Sub(id.NewAmount(1)))
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientPayment))
		s.True(s.state.PooledBalance().Equal(balance))
		s.Equal(users, s.state.UserCount())
		s.Equal(members, s.memberIDs(s.acmeID))
	})

	s.Run("unknown company checked before payment", func() {
		_, err := s.state.CanRegister(s.alice, models.RegisterRequest{CompanyID: 77, Name: "Lost"}, id.Zero)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("anonymous caller rejected", func() {
		_, err := s.state.CanRegister(id.Address{}, models.RegisterRequest{CompanyID: s.acmeID, Name: "Ghost"}, s.fee)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

// TestUpdateUser verifies self-service profile updates.
func (s *StateSuite) TestUpdateUser() {
	plan := s.register(s.alice, s.acmeID, "Alice", s.fee)
	userID := plan.Member.ID

	s.Run("stranger cannot update", func() {
		_, err := s.state.CanUpdateUser(s.bob, userID, models.UpdateUserRequest{Name: "Mallory"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		m, _ := s.state.Member(userID)
		s.Equal("Alice", m.Name)
	})

	s.Run("unknown user is not found before identity check", func() {
		_, err := s.state.CanUpdateUser(s.bob, 404, models.UpdateUserRequest{Name: "X"})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("owner of the record updates name and contact only", func() {
		updated, err := s.state.CanUpdateUser(s.alice, userID, models.UpdateUserRequest{Name: "Alice B", Contact: "alice@acme.test"})
		s.Require().NoError(err)
		s.state.ApplyUpdateUser(updated)

		m, err := s.state.Member(userID)
		s.Require().NoError(err)
		s.Equal("Alice B", m.Name)
		s.Equal("alice@acme.test", m.Contact)
		s.Equal(s.alice, m.PaymentIdentity)
		s.Equal(s.acmeID, m.CompanyID)
		s.Equal(userID, m.ID)
	})
}

// TestSwapDelete verifies index bookkeeping when removing members.
func (s *StateSuite) TestSwapDelete() {
	carol := id.MustParseAddress("0x00000000000000000000000000000000000000c3")
	a := s.register(s.alice, s.acmeID, "Alice", s.fee).Member.ID
	b := s.register(s.bob, s.acmeID, "Bob", s.fee).Member.ID
	c := s.register(carol, s.acmeID, "Carol", s.fee).Member.ID

	s.Run("stranger cannot delete", func() {
		_, err := s.state.CanDeleteUser(s.bob, a)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal([]id.UserID{a, b, c}, s.memberIDs(s.acmeID))
	})

	s.Run("deleting a non-tail member moves the tail into its slot", func() {
		plan := s.deleteUser(s.alice, a)
		s.Require().NotNil(plan.Moved)
		s.Equal(c, plan.Moved.ID)
		s.Equal([]id.UserID{c, b}, s.memberIDs(s.acmeID))
		s.Equal(0, s.state.userPosition[c])

		_, err := s.state.Member(a)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		for _, uid := range []id.UserID{b, c} {
			m, err := s.state.Member(uid)
			s.Require().NoError(err)
			s.Equal(uid, m.ID)
		}
	})

	s.Run("deleting the tail moves nothing", func() {
		plan := s.deleteUser(s.bob, b)
		s.Nil(plan.Moved)
		s.Equal([]id.UserID{c}, s.memberIDs(s.acmeID))
	})

	s.Run("deleted ids are never reused", func() {
		next := s.register(s.alice, s.acmeID, "Alice again", s.fee).Member.ID
		s.Greater(next, c)
	})

	s.Run("deleting twice is not found", func() {
		_, err := s.state.CanDeleteUser(s.alice, a)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestTreasury verifies withdrawal preconditions and the pool reset.
func (s *StateSuite) TestTreasury() {
	s.Run("empty pool cannot be withdrawn", func() {
		_, err := s.state.CanWithdraw(s.owner, s.owner)
		s.True(dErrors.HasCode(err, dErrors.CodeZeroBalance))
	})

	s.register(s.alice, s.acmeID, "Alice", s.fee.Mul(3))
	s.register(s.bob, s.acmeID, "Bob", s.fee)

	s.Run("only the owner withdraws", func() {
		_, err := s.state.CanWithdraw(s.alice, s.alice)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("withdrawal releases the whole pool", func() {
		amount, err := s.state.CanWithdraw(s.owner, s.owner)
		s.Require().NoError(err)
		s.True(amount.Equal(s.fee.Mul(2)))
		s.state.ApplyWithdraw()
		s.True(s.state.PooledBalance().IsZero())
	})
}

// TestAwardPreconditions verifies the award validation order.
func (s *StateSuite) TestAwardPreconditions() {
	prize := id.NewAmount(10)

	_, err := s.state.CanDistribute(s.alice, s.acmeID, prize)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.state.CanDistribute(s.owner, s.acmeID, id.Zero)
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientPayment))

	_, err = s.state.CanDistribute(s.owner, 55, prize)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.state.CanDistribute(s.owner, s.acmeID, prize)
	s.True(dErrors.HasCode(err, dErrors.CodeEmptyCollection))

	s.register(s.alice, s.acmeID, "Alice", s.fee)
	count, err := s.state.CanDistribute(s.owner, s.acmeID, prize)
	s.Require().NoError(err)
	s.Equal(1, count)

	m, err := s.state.MemberAt(s.acmeID, 0)
	s.Require().NoError(err)
	s.Equal(s.alice, m.PaymentIdentity)
	_, err = s.state.MemberAt(s.acmeID, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

// TestOwnershipTransfer verifies the capability moves with the state.
func (s *StateSuite) TestOwnershipTransfer() {
	s.Require().NoError(s.state.CanTransferOwnership(s.owner, s.alice))
	s.state.ApplyTransferOwnership(s.alice)
	s.Equal(s.alice, s.state.Owner())

	_, err := s.state.CanCreateCompany(s.owner, "Old owner")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	_, err = s.state.CanCreateCompany(s.alice, "New owner")
	s.NoError(err)
}

// TestRandomOperationsKeepIndicesConsistent drives a random mix of
// registrations and deletions across companies and checks every invariant
// after each step.
func (s *StateSuite) TestRandomOperationsKeepIndicesConsistent() {
	rng := rand.New(rand.NewSource(7))
	companies := []id.CompanyID{s.acmeID, s.createCompany("Globex"), s.createCompany("Initech")}
	live := map[id.UserID]id.Address{}
	seen := map[id.UserID]bool{}
	retained := id.Zero

	for step := 0; step < 500; step++ {
		if len(live) == 0 || rng.Intn(3) > 0 {
			caller := id.Address{byte(rng.Intn(250) + 1)}
			extra := id.NewAmount(int64(rng.Intn(3)))
			plan := s.register(caller, companies[rng.Intn(len(companies))], fmt.Sprintf("user-%d", step), s.fee.Add(extra))
			s.Require().False(seen[plan.Member.ID], "id reused")
			seen[plan.Member.ID] = true
			live[plan.Member.ID] = caller
			retained = retained.Add(s.fee)
		} else {
			for uid, caller := range live {
				s.deleteUser(caller, uid)
				delete(live, uid)
				break
			}
		}
		s.Require().NoError(s.state.Verify(), "step %d", step)
		s.Require().True(s.state.PooledBalance().Equal(retained), "step %d", step)
	}

	for uid := range live {
		_, err := s.state.Member(uid)
		s.Require().NoError(err)
	}
}
