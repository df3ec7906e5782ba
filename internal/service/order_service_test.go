package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cheertaboi/shop-microservices/internal/auth"
	"github.com/Cheertaboi/shop-microservices/internal/logging"
	"github.com/Cheertaboi/shop-microservices/internal/models"
	"github.com/Cheertaboi/shop-microservices/internal/repository"
)

type fakeCarts struct {
	view     models.CartView
	err      error
	clearErr error
	cleared  int
	clearCtx context.Context
}

func (f *fakeCarts) Cart(ctx context.Context, credential string) (models.CartView, error) {
	return f.view, f.err
}

func (f *fakeCarts) ClearCart(ctx context.Context, credential string) error {
	f.cleared++
	f.clearCtx = ctx
	return f.clearErr
}

type fakeProfiles struct {
	user *models.User
	err  error
}

func (f *fakeProfiles) Profile(ctx context.Context, credential string) (*models.User, error) {
	return f.user, f.err
}

type stockCall struct {
	productID string
	delta     int
}

type fakeInventory struct {
	calls []stockCall
	err   error
}

func (f *fakeInventory) AdjustStock(ctx context.Context, credential, productID string, delta int) error {
	f.calls = append(f.calls, stockCall{productID, delta})
	return f.err
}

type failingOrders struct {
	*repository.MemoryOrderRepo
}

func (failingOrders) Create(ctx context.Context, o *models.Order) error {
	return errors.New("disk full")
}

var (
	alice    = auth.Principal{ID: "u1", Role: models.RoleUser}
	homeAddr = models.Address{Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "US"}
	twoLines = models.CartView{
		Items: []models.CartItem{
			{ProductID: "p1", Name: "Lamp", Price: 10, Quantity: 2},
			{ProductID: "p2", Name: "Mug", Price: 5, Quantity: 1},
		},
		Total: 25,
	}
)

type orderFixture struct {
	svc       *OrderService
	orders    *repository.MemoryOrderRepo
	carts     *fakeCarts
	profiles  *fakeProfiles
	inventory *fakeInventory
}

func newOrderFixture() *orderFixture {
	addr := homeAddr
	f := &orderFixture{
		orders:    repository.NewMemoryOrderRepo(),
		carts:     &fakeCarts{view: twoLines},
		profiles:  &fakeProfiles{user: &models.User{ID: "u1", Address: &addr}},
		inventory: &fakeInventory{},
	}
	f.svc = NewOrderService(f.orders, f.carts, f.profiles, f.inventory, logging.Discard())
	return f
}

func TestCreateOrder_Success(t *testing.T) {
	f := newOrderFixture()

	o, err := f.svc.CreateOrder(context.Background(), alice, "tok", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, 25.0, o.Total)
	assert.Equal(t, models.StatusPending, o.Status)
	assert.Equal(t, homeAddr, o.ShippingAddress)
	assert.Equal(t, twoLines.Items, o.Items)

	assert.Equal(t, 1, f.carts.cleared)
	assert.Equal(t, []stockCall{{"p1", -2}, {"p2", -1}}, f.inventory.calls)

	stored, err := f.orders.ByID(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 25.0, stored.Total)
}

func TestCreateOrder_OverrideAddressWins(t *testing.T) {
	f := newOrderFixture()
	override := models.Address{Street: "9 Elm", City: "Shelbyville", State: "IL", ZipCode: "62565", Country: "US"}

	o, err := f.svc.CreateOrder(context.Background(), alice, "tok", &override)
	require.NoError(t, err)
	assert.Equal(t, override, o.ShippingAddress)
}

func TestCreateOrder_IncompleteOverride(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.CreateOrder(context.Background(), alice, "tok", &models.Address{Street: "9 Elm"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "shippingAddress")
	assert.Zero(t, f.carts.cleared)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	f := newOrderFixture()
	f.carts.view = models.CartView{Items: []models.CartItem{}}

	_, err := f.svc.CreateOrder(context.Background(), alice, "tok", nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	all, _ := f.orders.ListAll(context.Background())
	assert.Empty(t, all)
	assert.Empty(t, f.inventory.calls)
}

func TestCreateOrder_CartUnavailable(t *testing.T) {
	f := newOrderFixture()
	f.carts.err = errors.New("connection refused")

	_, err := f.svc.CreateOrder(context.Background(), alice, "tok", nil)
	assert.ErrorIs(t, err, ErrCartUnavailable)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestCreateOrder_MissingAddress(t *testing.T) {
	for name, u := range map[string]*models.User{
		"nil address":        {ID: "u1"},
		"incomplete address": {ID: "u1", Address: &models.Address{Street: "1 Main St", City: "Springfield"}},
	} {
		t.Run(name, func(t *testing.T) {
			f := newOrderFixture()
			f.profiles.user = u

			_, err := f.svc.CreateOrder(context.Background(), alice, "tok", nil)
			assert.ErrorIs(t, err, ErrMissingAddress)

			all, _ := f.orders.ListAll(context.Background())
			assert.Empty(t, all)
		})
	}
}

func TestCreateOrder_UserUnavailable(t *testing.T) {
	f := newOrderFixture()
	f.profiles.err = errors.New("timeout")

	_, err := f.svc.CreateOrder(context.Background(), alice, "tok", nil)
	assert.ErrorIs(t, err, ErrUserUnavailable)
}

func TestCreateOrder_PersistenceFailure(t *testing.T) {
	f := newOrderFixture()
	f.svc.orders = failingOrders{f.orders}

	_, err := f.svc.CreateOrder(context.Background(), alice, "tok", nil)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Zero(t, f.carts.cleared)
	assert.Empty(t, f.inventory.calls)
}

func TestCreateOrder_BestEffortFailuresAreSwallowed(t *testing.T) {
	f := newOrderFixture()
	f.carts.clearErr = errors.New("cart service down")
	f.inventory.err = errors.New("product service down")

	o, err := f.svc.CreateOrder(context.Background(), alice, "tok", nil)
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Len(t, f.inventory.calls, 2)
}

func TestCreateOrder_PostCommitSurvivesCancellation(t *testing.T) {
	f := newOrderFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := f.svc.CreateOrder(ctx, alice, "tok", nil)
	require.NoError(t, err)
	cancel()

	require.NotNil(t, f.carts.clearCtx)
	assert.NoError(t, f.carts.clearCtx.Err())
}

func TestGetOrder_Access(t *testing.T) {
	f := newOrderFixture()
	o, err := f.svc.CreateOrder(context.Background(), alice, "tok", nil)
	require.NoError(t, err)

	got, err := f.svc.GetOrder(context.Background(), alice, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.svc.GetOrder(context.Background(), auth.Principal{ID: "u2", Role: models.RoleUser}, o.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetOrder(context.Background(), auth.Principal{ID: "a1", Role: models.RoleAdmin}, o.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetOrder(context.Background(), alice, "nope")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetOrderStatus(t *testing.T) {
	f := newOrderFixture()
	o, err := f.svc.CreateOrder(context.Background(), alice, "tok", nil)
	require.NoError(t, err)

	_, err = f.svc.SetOrderStatus(context.Background(), o.ID, "teleported")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Invalid status"}, verr.Fields["status"])

	stored, _ := f.orders.ByID(context.Background(), o.ID)
	assert.Equal(t, models.StatusPending, stored.Status)

	updated, err := f.svc.SetOrderStatus(context.Background(), o.ID, "delivered")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)

	_, err = f.svc.SetOrderStatus(context.Background(), "nope", "shipped")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrders(t *testing.T) {
	f := newOrderFixture()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	f.svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first, err := f.svc.CreateOrder(context.Background(), alice, "tok", nil)
	require.NoError(t, err)
	second, err := f.svc.CreateOrder(context.Background(), alice, "tok", nil)
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(context.Background(), auth.Principal{ID: "u2"}, "tok2", nil)
	require.NoError(t, err)

	mine, err := f.svc.ListOrdersForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	all, err := f.svc.ListAllOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
