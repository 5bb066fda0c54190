package integration

import (
	"context"
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/houseit/internal/cart"
	"github.com/vladislavdragonenkov/houseit/internal/catalog"
	"github.com/vladislavdragonenkov/houseit/internal/domain"
	"github.com/vladislavdragonenkov/houseit/internal/notify"
	"github.com/vladislavdragonenkov/houseit/internal/storage/memory"
)

// BookingLifecycleTestSuite тестирует полный путь от каталога до заявки.
type BookingLifecycleTestSuite struct {
	suite.Suite
	catalog  *catalog.Catalog
	carts    *failingCartStore
	requests domain.RequestStore
	outbox   domain.OutboxRepository
	notifier *notify.Channel
	registry *cart.Registry
}

// failingCartStore оборачивает in-memory хранилище и умеет ронять
// следующий вызов.
type failingCartStore struct {
	domain.CartStore
	inner interface {
		domain.CartStore
		FailNext(err error)
	}
}

func newFailingCartStore() *failingCartStore {
	inner := memory.NewCartStore()
	return &failingCartStore{CartStore: inner, inner: inner}
}

func (s *failingCartStore) FailNext(err error) {
	s.inner.FailNext(err)
}

func (s *BookingLifecycleTestSuite) SetupTest() {
	cat, err := catalog.Default()
	require.NoError(s.T(), err)

	s.catalog = cat
	s.carts = newFailingCartStore()
	s.requests = memory.NewRequestStore()
	s.outbox = memory.NewOutboxRepository()
	s.notifier = notify.NewChannel()
	s.registry = cart.NewRegistry(
		s.carts,
		s.requests,
		s.notifier,
		log.WithField("component", "integration-test"),
		cart.WithOutbox(s.outbox),
	)
}

func (s *BookingLifecycleTestSuite) state() domain.IdentityState {
	return domain.IdentityState{User: &domain.Identity{UserID: "user-1", Email: "user-1@example.com"}}
}

func (s *BookingLifecycleTestSuite) session() cart.Session {
	provider, ok := s.catalog.Provider("electrician", 1)
	require.True(s.T(), ok)
	return cart.Session{CategoryKey: "electrician", ProviderID: provider.ID, ProviderName: provider.Name}
}

func (s *BookingLifecycleTestSuite) TestHappyPath() {
	ctx := context.Background()
	engine := s.registry.For("user-1", s.session())

	outlet, ok := s.catalog.Item("electrician", 1, 1)
	require.True(s.T(), ok)
	fixture, ok := s.catalog.Item("electrician", 1, 2)
	require.True(s.T(), ok)

	require.NoError(s.T(), engine.AddItem(ctx, s.state(), outlet))
	require.NoError(s.T(), engine.AddItem(ctx, s.state(), outlet))
	require.NoError(s.T(), engine.AddItem(ctx, s.state(), fixture))
	require.Equal(s.T(), int64(2*4500+6500), engine.TotalMinor())

	request, err := engine.Checkout(ctx, s.state())
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(15500), request.TotalMinor)

	// заявка читается из хранилища, корзина пуста с обеих сторон
	stored, err := s.requests.Get(ctx, "user-1", request.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), domain.BookingStatusPending, stored.Status)

	lines, err := s.carts.ListAll(ctx, "user-1")
	require.NoError(s.T(), err)
	require.Empty(s.T(), lines)
	require.Empty(s.T(), engine.Lines())

	// checkout положил событие в outbox
	pending, err := s.outbox.PullPending(10)
	require.NoError(s.T(), err)
	require.Len(s.T(), pending, 1)
	require.Equal(s.T(), "BookingRequestCreated", pending[0].EventType)

	// подтверждающий алерт виден, закрытие очищает канал
	alert, visible := s.notifier.Current()
	require.True(s.T(), visible)
	require.Equal(s.T(), "Booking Confirmed!", alert.Title)
	s.notifier.Hide()
	_, visible = s.notifier.Current()
	require.False(s.T(), visible)
}

func (s *BookingLifecycleTestSuite) TestPersistenceFailureKeepsLocalCartIntact() {
	ctx := context.Background()
	engine := s.registry.For("user-1", s.session())

	outlet, ok := s.catalog.Item("electrician", 1, 1)
	require.True(s.T(), ok)
	require.NoError(s.T(), engine.AddItem(ctx, s.state(), outlet))

	s.carts.FailNext(errors.New("network down"))
	err := engine.AddItem(ctx, s.state(), outlet)
	require.ErrorIs(s.T(), err, domain.ErrPersistenceFailed)

	require.Len(s.T(), engine.Lines(), 1)
	require.Equal(s.T(), 1, engine.Lines()[0].Quantity)

	alert, visible := s.notifier.Current()
	require.True(s.T(), visible)
	require.Equal(s.T(), domain.AlertKindError, alert.Kind)
}

func (s *BookingLifecycleTestSuite) TestCheckoutRetryAfterClearFailure() {
	ctx := context.Background()
	engine := s.registry.For("user-1", s.session())

	outlet, ok := s.catalog.Item("electrician", 1, 1)
	require.True(s.T(), ok)
	require.NoError(s.T(), engine.AddItem(ctx, s.state(), outlet))

	s.carts.FailNext(errors.New("network down"))
	_, err := engine.Checkout(ctx, s.state())
	require.ErrorIs(s.T(), err, domain.ErrCheckoutFailed)

	created, err := s.requests.ListAll(ctx, "user-1")
	require.NoError(s.T(), err)
	require.Len(s.T(), created, 1)

	request, err := engine.Checkout(ctx, s.state())
	require.NoError(s.T(), err)
	require.Equal(s.T(), created[0].ID, request.ID)

	after, err := s.requests.ListAll(ctx, "user-1")
	require.NoError(s.T(), err)
	require.Len(s.T(), after, 1, "retry must not create a duplicate request")
}

func TestBookingLifecycleSuite(t *testing.T) {
	suite.Run(t, new(BookingLifecycleTestSuite))
}
