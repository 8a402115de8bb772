package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"awardregistry/internal/award"
	"awardregistry/internal/registry/metrics"
	"awardregistry/internal/registry/models"
	"awardregistry/internal/registry/service/mocks"
	"awardregistry/internal/registry/state"
	"awardregistry/internal/registry/store"
	id "awardregistry/pkg/domain"
	dErrors "awardregistry/pkg/domain-errors"
	audit "awardregistry/pkg/platform/audit"
	"awardregistry/pkg/platform/sentinel"
	"awardregistry/pkg/testutil"
)

// =============================================================================
// Registry Service Test Suite
// =============================================================================
// Justification for unit tests: the service sequences validation, external
// transfers and state mutation under one lock. Collaborators are mocked so
// tests can fail transfers and audit delivery at exact points and assert that
// nothing was committed.

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	ledger  *mocks.MockLedger
	audit   *mocks.MockAuditPublisher
	entropy *mocks.MockEntropySource
	oracle  *mocks.MockPriceOracle
	store   *store.InMemory
	service *Service

	owner id.Address
	alice id.Address
	bob   id.Address
	fee   id.Amount
	now   time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ledger = mocks.NewMockLedger(s.ctrl)
	s.audit = mocks.NewMockAuditPublisher(s.ctrl)
	s.entropy = mocks.NewMockEntropySource(s.ctrl)
	s.oracle = mocks.NewMockPriceOracle(s.ctrl)

	s.owner = testutil.Address(0xf0)
	s.alice = testutil.Address(0xa1)
	s.bob = testutil.Address(0xb2)
	s.fee = id.NewAmount(1000)
	s.now = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	st, err := state.New(s.owner, s.fee)
	s.Require().NoError(err)
	s.store = store.NewInMemory(st)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service, err = New(s.store, s.ledger,
		WithLogger(logger),
		WithAuditPublisher(s.audit),
		WithEntropy(s.entropy),
		WithPriceOracle(s.oracle),
		WithMetrics(metrics.New(prometheus.NewRegistry())),
	)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
	s.Require().NoError(s.store.View(context.Background(), func(st *state.State) error {
		return st.Verify()
	}))
}

func (s *ServiceSuite) as(caller id.Address) context.Context {
	return testutil.AsCallerAt(caller, s.now, "req-"+caller.String()[38:])
}

func (s *ServiceSuite) expectAudit(action audit.AuditEvent) *gomock.Call {
	return s.audit.EXPECT().Emit(gomock.Any(), gomock.Cond(func(e audit.Event) bool {
		return e.Action == string(action)
	})).Return(nil)
}

func amountIs(want id.Amount) gomock.Matcher {
	return gomock.Cond(func(got id.Amount) bool { return got.Equal(want) })
}

func (s *ServiceSuite) createCompany(name string) id.CompanyID {
	s.expectAudit(audit.EventCompanyCreated)
	c, err := s.service.CreateCompany(s.as(s.owner), name)
	s.Require().NoError(err)
	return c.ID
}

func (s *ServiceSuite) register(caller id.Address, companyID id.CompanyID, name string) id.UserID {
	s.expectAudit(audit.EventUserRegistered)
	reg, err := s.service.RegisterUser(s.as(caller), companyID, name, "555-0100", s.fee)
	s.Require().NoError(err)
	return reg.Member.ID
}

func (s *ServiceSuite) pooled() id.Amount {
	balance, err := s.service.PooledBalance(context.Background())
	s.Require().NoError(err)
	return balance
}

// =============================================================================
// Constructor Tests (Invariant Enforcement)
// =============================================================================

func (s *ServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, s.ledger)
		s.Error(err)
		s.Contains(err.Error(), "store is required")
	})

	s.Run("nil ledger returns error", func() {
		_, err := New(s.store, nil)
		s.Error(err)
		s.Contains(err.Error(), "ledger is required")
	})

	s.Run("with options applies options", func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		svc, err := New(s.store, s.ledger, WithLogger(logger), WithAuditPublisher(s.audit))
		s.NoError(err)
		s.Equal(logger, svc.logger)
		s.Equal(s.audit, svc.auditPublisher)
		s.Nil(svc.entropy)
	})
}

// =============================================================================
// Company Catalog
// =============================================================================

func (s *ServiceSuite) TestCreateCompany() {
	s.Run("owner creates company and the event names it", func() {
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventCompanyCreated), e.Action)
			s.Equal(s.owner, e.Actor)
			s.Equal(id.CompanyID(1), e.CompanyID)
			s.Equal(s.now, e.Timestamp)
			s.NotEmpty(e.RequestID)
			return nil
		})

		c, err := s.service.CreateCompany(s.as(s.owner), "  Acme  ")
		s.Require().NoError(err)
		s.Equal(id.CompanyID(1), c.ID)
		s.Equal("  Acme  ", c.Name)
	})

	s.Run("first company is retrievable by its id with its original name", func() {
		details, err := s.service.GetCompany(context.Background(), 1)
		s.Require().NoError(err)
		s.Equal("  Acme  ", details.Name)
		s.Empty(details.Members)
	})

	s.Run("non-owner is unauthorized", func() {
		_, err := s.service.CreateCompany(s.as(s.alice), "Rogue")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("missing caller is unauthorized", func() {
		_, err := s.service.CreateCompany(context.Background(), "Nobody")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("name beyond the size cap is rejected", func() {
		_, err := s.service.CreateCompany(s.as(s.owner), strings.Repeat("x", models.MaxFieldLength+1))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("failed creations consume no ids", func() {
		id2 := s.createCompany("Globex")
		s.Equal(id.CompanyID(2), id2)
	})

	s.Run("empty name is a valid name", func() {
		id3 := s.createCompany("")
		details, err := s.service.GetCompany(context.Background(), id3)
		s.Require().NoError(err)
		s.Empty(details.Name)
	})
}

func (s *ServiceSuite) TestGetAndListCompanies() {
	first := s.createCompany("Acme")
	second := s.createCompany("Acme")
	s.NotEqual(first, second, "names need not be unique")

	companies, err := s.service.ListCompanies(context.Background())
	s.Require().NoError(err)
	s.Require().Len(companies, 2)
	s.Equal(first, companies[0].ID)
	s.Equal(second, companies[1].ID)

	_, err = s.service.GetCompany(context.Background(), 99)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// =============================================================================
// Membership Registry
// =============================================================================

func (s *ServiceSuite) TestRegisterUser() {
	acme := s.createCompany("Acme")

	s.Run("exact fee is retained with no refund transfer", func() {
		s.expectAudit(audit.EventUserRegistered)
		reg, err := s.service.RegisterUser(s.as(s.alice), acme, "Alice", "alice@acme.test", s.fee)
		s.Require().NoError(err)
		s.Equal(id.UserID(1), reg.Member.ID)
		s.Equal(s.alice, reg.Member.PaymentIdentity)
		s.True(reg.Refunded.IsZero())
		s.True(s.pooled().Equal(s.fee))
	})

	s.Run("overpayment refunds exactly the excess to the caller", func() {
		s.ledger.EXPECT().Transfer(gomock.Any(), s.bob, amountIs(s.fee)).Return(nil)
		s.expectAudit(audit.EventUserRegistered)

		reg, err := s.service.RegisterUser(s.as(s.bob), acme, "Bob", "", s.fee.Mul(2))
		s.Require().NoError(err)
		s.True(reg.Retained.Equal(s.fee))
		s.True(reg.Refunded.Equal(s.fee))
		s.True(s.pooled().Equal(s.fee.Mul(2)), "pool grows by one fee per registration")
	})

	s.Run("underpayment changes nothing", func() {
		_, err := s.service.RegisterUser(s.as(s.bob), acme, "Cheap", "", s.fee.Sub(id.NewAmount(1)))
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientPayment))
		s.True(s.pooled().Equal(s.fee.Mul(2)))
		details, err := s.service.GetCompany(context.Background(), acme)
		s.Require().NoError(err)
		s.Len(details.Members, 2)
	})

	s.Run("unknown company is not found", func() {
		_, err := s.service.RegisterUser(s.as(s.bob), 42, "Lost", "", s.fee)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		_, err = s.service.RegisterUser(s.as(s.bob), 0, "Lost", "", s.fee)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("failed refund rolls back the whole registration", func() {
		s.ledger.EXPECT().Transfer(gomock.Any(), s.bob, gomock.Any()).
			Return(errors.Join(sentinel.ErrTransfer, errors.New("insufficient gas")))

		_, err := s.service.RegisterUser(s.as(s.bob), acme, "Bob again", "", s.fee.Add(id.NewAmount(1)))
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
		s.ErrorIs(err, sentinel.ErrTransfer)
		s.True(s.pooled().Equal(s.fee.Mul(2)))

		_, err = s.service.GetUser(context.Background(), 3)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "id 3 was not allocated")
		next := s.register(s.bob, acme, "Bob again")
		s.Equal(id.UserID(3), next)
	})
}

func (s *ServiceSuite) TestUpdateUser() {
	acme := s.createCompany("Acme")
	alice := s.register(s.alice, acme, "Alice")

	s.Run("stranger cannot update", func() {
		_, err := s.service.UpdateUser(s.as(s.bob), alice, "Mallory", "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		m, err := s.service.GetUser(context.Background(), alice)
		s.Require().NoError(err)
		s.Equal("Alice", m.Name)
	})

	s.Run("unknown user is not found", func() {
		_, err := s.service.UpdateUser(s.as(s.alice), 77, "Alice", "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("member updates own profile", func() {
		s.expectAudit(audit.EventUserUpdated)
		m, err := s.service.UpdateUser(s.as(s.alice), alice, "Alice Liddell", "+1 555 0100")
		s.Require().NoError(err)
		s.Equal("Alice Liddell", m.Name)
		s.Equal("+1 555 0100", m.Contact)
		s.Equal(s.alice, m.PaymentIdentity)
	})
}

func (s *ServiceSuite) TestDeleteUser() {
	acme := s.createCompany("Acme")
	alice := s.register(s.alice, acme, "Alice")
	bob := s.register(s.bob, acme, "Bob")

	s.Run("stranger cannot delete", func() {
		err := s.service.DeleteUser(s.as(s.bob), alice)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("member deletes self and the tail fills the slot", func() {
		s.expectAudit(audit.EventUserDeleted)
		s.Require().NoError(s.service.DeleteUser(s.as(s.alice), alice))

		_, err := s.service.GetUser(context.Background(), alice)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		details, err := s.service.GetCompany(context.Background(), acme)
		s.Require().NoError(err)
		s.Require().Len(details.Members, 1)
		s.Equal(bob, details.Members[0].ID)
	})

	s.Run("fees are not refunded on delete", func() {
		s.True(s.pooled().Equal(s.fee.Mul(2)))
	})
}

func (s *ServiceSuite) TestRegisterUserStoresFieldsVerbatim() {
	acme := s.createCompany("Acme")

	s.Run("empty name and contact register", func() {
		s.expectAudit(audit.EventUserRegistered)
		reg, err := s.service.RegisterUser(s.as(s.alice), acme, "", "", s.fee)
		s.Require().NoError(err)

		m, err := s.service.GetUser(context.Background(), reg.Member.ID)
		s.Require().NoError(err)
		s.Empty(m.Name)
		s.Empty(m.Contact)
	})

	s.Run("padding survives registration and update", func() {
		s.expectAudit(audit.EventUserRegistered)
		reg, err := s.service.RegisterUser(s.as(s.bob), acme, " Bob ", "\t42\n", s.fee)
		s.Require().NoError(err)
		s.Equal(" Bob ", reg.Member.Name)
		s.Equal("\t42\n", reg.Member.Contact)

		s.expectAudit(audit.EventUserUpdated)
		m, err := s.service.UpdateUser(s.as(s.bob), reg.Member.ID, "  ", " bob@acme.test")
		s.Require().NoError(err)
		s.Equal("  ", m.Name)
		s.Equal(" bob@acme.test", m.Contact)
	})
}

// =============================================================================
// Fee Treasury
// =============================================================================

func (s *ServiceSuite) TestWithdrawRegistrationCharge() {
	acme := s.createCompany("Acme")

	s.Run("empty pool is rejected", func() {
		_, err := s.service.WithdrawRegistrationCharge(s.as(s.owner), s.owner)
		s.True(dErrors.HasCode(err, dErrors.CodeZeroBalance))
	})

	s.register(s.alice, acme, "Alice")
	s.register(s.bob, acme, "Bob")

	s.Run("non-owner is unauthorized", func() {
		_, err := s.service.WithdrawRegistrationCharge(s.as(s.alice), s.alice)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("failed transfer leaves the pool intact", func() {
		s.ledger.EXPECT().Transfer(gomock.Any(), s.owner, amountIs(s.fee.Mul(2))).Return(sentinel.ErrTransfer)
		_, err := s.service.WithdrawRegistrationCharge(s.as(s.owner), s.owner)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
		s.True(s.pooled().Equal(s.fee.Mul(2)))
	})

	s.Run("owner withdraws everything to the recipient", func() {
		treasury := testutil.Address(0x7e)
		s.ledger.EXPECT().Transfer(gomock.Any(), treasury, amountIs(s.fee.Mul(2))).Return(nil)
		s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventRegistrationChargeWithdrawn), e.Action)
			s.Equal(treasury, e.Counterparty)
			s.True(e.Amount.Equal(s.fee.Mul(2)))
			return nil
		})

		amount, err := s.service.WithdrawRegistrationCharge(s.as(s.owner), treasury)
		s.Require().NoError(err)
		s.True(amount.Equal(s.fee.Mul(2)))
		s.True(s.pooled().IsZero())
	})
}

// =============================================================================
// Award Distribution
// =============================================================================

func (s *ServiceSuite) TestDistributeAward() {
	acme := s.createCompany("Acme")
	empty := s.createCompany("Empty")
	prize := id.NewAmount(5000)

	s.Run("non-owner is unauthorized", func() {
		_, err := s.service.DistributeAward(s.as(s.alice), acme, prize)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("zero prize is insufficient", func() {
		_, err := s.service.DistributeAward(s.as(s.owner), acme, id.Zero)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientPayment))
	})

	s.Run("unknown company is not found", func() {
		_, err := s.service.DistributeAward(s.as(s.owner), 404, prize)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("company without members is empty", func() {
		_, err := s.service.DistributeAward(s.as(s.owner), empty, prize)
		s.True(dErrors.HasCode(err, dErrors.CodeEmptyCollection))
	})

	carol := testutil.Address(0xc3)
	members := map[id.UserID]id.Address{
		s.register(s.alice, acme, "Alice"): s.alice,
		s.register(s.bob, acme, "Bob"):     s.bob,
		s.register(carol, acme, "Carol"):   carol,
	}

	s.Run("entropy failure pays nothing", func() {
		s.entropy.EXPECT().Seed(gomock.Any()).Return(award.Seed{}, errors.New("node syncing"))
		_, err := s.service.DistributeAward(s.as(s.owner), acme, prize)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	seed := award.Seed{Height: 812345, Time: s.now, Difficulty: 7}
	want, err := award.Select(seed, len(members))
	s.Require().NoError(err)

	s.Run("pays the member at the selected position", func() {
		s.entropy.EXPECT().Seed(gomock.Any()).Return(seed, nil)
		s.ledger.EXPECT().Transfer(gomock.Any(), gomock.Any(), amountIs(prize)).Return(nil)
		s.expectAudit(audit.EventAwardDistributed)

		result, err := s.service.DistributeAward(s.as(s.owner), acme, prize)
		s.Require().NoError(err)
		s.Equal(want, result.Position)
		s.Equal(3, result.MemberCount)
		s.Equal(members[result.Winner.ID], result.Winner.PaymentIdentity)
	})

	s.Run("same seed selects the same member", func() {
		var first, second id.Address
		s.entropy.EXPECT().Seed(gomock.Any()).Return(seed, nil).Times(2)
		s.expectAudit(audit.EventAwardDistributed).Times(2)
		gomock.InOrder(
			s.ledger.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, to id.Address, _ id.Amount) error { first = to; return nil }),
			s.ledger.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, to id.Address, _ id.Amount) error { second = to; return nil }),
		)

		_, err := s.service.DistributeAward(s.as(s.owner), acme, prize)
		s.Require().NoError(err)
		_, err = s.service.DistributeAward(s.as(s.owner), acme, prize)
		s.Require().NoError(err)
		s.Equal(first, second)
	})

	s.Run("failed prize transfer is surfaced", func() {
		s.entropy.EXPECT().Seed(gomock.Any()).Return(seed, nil)
		s.ledger.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any()).Return(sentinel.ErrTransfer)
		_, err := s.service.DistributeAward(s.as(s.owner), acme, prize)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("no entropy source configured", func() {
		svc, err := New(s.store, s.ledger)
		s.Require().NoError(err)

		_, err = svc.DistributeAward(s.as(s.alice), acme, prize)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "ownership is checked first")
		_, err = svc.DistributeAward(s.as(s.owner), acme, id.Zero)
		s.True(dErrors.HasCode(err, dErrors.CodeInsufficientPayment))
		_, err = svc.DistributeAward(s.as(s.owner), 404, prize)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		_, err = svc.DistributeAward(s.as(s.owner), empty, prize)
		s.True(dErrors.HasCode(err, dErrors.CodeEmptyCollection))

		_, err = svc.DistributeAward(s.as(s.owner), acme, prize)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable), "only a valid distribution reaches the seed")
	})
}

// =============================================================================
// Access Control
// =============================================================================

func (s *ServiceSuite) TestTransferOwnership() {
	next := testutil.Address(0x0e)

	s.Run("non-owner cannot transfer", func() {
		err := s.service.TransferOwnership(s.as(s.alice), s.alice)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("zero address is rejected", func() {
		err := s.service.TransferOwnership(s.as(s.owner), id.Address{})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("owner hands over the capability", func() {
		s.expectAudit(audit.EventOwnershipTransferred)
		s.Require().NoError(s.service.TransferOwnership(s.as(s.owner), next))

		owner, err := s.service.Owner(context.Background())
		s.Require().NoError(err)
		s.Equal(next, owner)

		_, err = s.service.CreateCompany(s.as(s.owner), "Old regime")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

		s.expectAudit(audit.EventCompanyCreated)
		_, err = s.service.CreateCompany(s.as(next), "New regime")
		s.NoError(err)
	})
}

// =============================================================================
// Price Oracle and Cross-cutting Behaviour
// =============================================================================

func (s *ServiceSuite) TestGetEthPrice() {
	s.Run("delegates to the oracle", func() {
		s.oracle.EXPECT().GetEthPrice(gomock.Any()).Return(int64(312_345_000_000), nil)
		price, err := s.service.GetEthPrice(context.Background())
		s.Require().NoError(err)
		s.Equal(int64(312_345_000_000), price)
	})

	s.Run("oracle errors pass through", func() {
		s.oracle.EXPECT().GetEthPrice(gomock.Any()).Return(int64(0), dErrors.New(dErrors.CodeUnavailable, "feed down"))
		_, err := s.service.GetEthPrice(context.Background())
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("no oracle configured", func() {
		svc, err := New(s.store, s.ledger)
		s.Require().NoError(err)
		_, err = svc.GetEthPrice(context.Background())
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func (s *ServiceSuite) TestAuditFailureDoesNotFailCommittedOperation() {
	s.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("audit store down"))

	c, err := s.service.CreateCompany(s.as(s.owner), "Acme")
	s.Require().NoError(err)

	_, err = s.service.GetCompany(context.Background(), c.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.as(s.owner))
	cancel()

	_, err := s.service.CreateCompany(ctx, "Acme")
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))

	companies, err := s.service.ListCompanies(context.Background())
	s.Require().NoError(err)
	s.Empty(companies)
}
