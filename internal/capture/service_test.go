package capture

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"pos-terminal/internal/checkout"
	"pos-terminal/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderAPI struct {
	mock.Mock
}

func (m *MockOrderAPI) CreateOrder(ctx context.Context, payload *model.OrderPayload) (*model.OrderAck, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderAck), args.Error(1)
}

type MockOrderQueue struct {
	mock.Mock
}

func (m *MockOrderQueue) Add(ctx context.Context, payload *model.OrderPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockOrderQueue) GetAll(ctx context.Context) ([]model.QueueEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.QueueEntry), args.Error(1)
}

func (m *MockOrderQueue) Remove(ctx context.Context, offlineUUID string) error {
	args := m.Called(ctx, offlineUUID)
	return args.Error(0)
}

func (m *MockOrderQueue) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderQueue) Reject(ctx context.Context, entry model.QueueEntry, reason string) error {
	args := m.Called(ctx, entry, reason)
	return args.Error(0)
}

func (m *MockOrderQueue) Rejected(ctx context.Context) ([]model.RejectedOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RejectedOrder), args.Error(1)
}

var testTerminal = model.TerminalContext{
	UserID:         7,
	LocationID:     3,
	OrderTypeID:    1,
	TerminalNumber: "POS-01",
}

func newTestService(api OrderAPI, queue *MockOrderQueue) (*Service, *checkout.Cart) {
	cart := checkout.NewCart()
	cart.Add(101, "Burger", decimal.NewFromInt(120))
	cart.Add(101, "Burger", decimal.NewFromInt(120))
	cart.Add(205, "Iced Tea", decimal.NewFromInt(40))
	return NewService(api, queue, cart, testTerminal, zerolog.Nop()), cart
}

func TestCheckout_DirectSuccessClearsCart(t *testing.T) {
	api := new(MockOrderAPI)
	queue := new(MockOrderQueue)
	svc, cart := newTestService(api, queue)

	api.On("CreateOrder", mock.Anything, mock.AnythingOfType("*model.OrderPayload")).
		Return(&model.OrderAck{OrderNumber: "ORD-0042", ServerID: 42}, nil)

	result, err := svc.Checkout(context.Background(), "table 4")

	require.NoError(t, err)
	assert.False(t, result.Queued)
	assert.Equal(t, "ORD-0042", result.OrderNumber)
	assert.NotEmpty(t, result.OfflineUUID)
	assert.True(t, cart.Empty(), "a submitted order must clear the cart")
	queue.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestCheckout_PayloadStampedBeforeNetwork(t *testing.T) {
	api := new(MockOrderAPI)
	queue := new(MockOrderQueue)
	svc, _ := newTestService(api, queue)

	var seen *model.OrderPayload
	api.On("CreateOrder", mock.Anything, mock.AnythingOfType("*model.OrderPayload")).
		Run(func(args mock.Arguments) {
			seen = args.Get(1).(*model.OrderPayload)
		}).
		Return(&model.OrderAck{OrderNumber: "ORD-1"}, nil)

	result, err := svc.Checkout(context.Background(), "memo text")

	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, result.OfflineUUID, seen.OfflineUUID,
		"the UUID handed to the backend is the one reported back")
	assert.Equal(t, testTerminal.UserID, seen.UserID)
	assert.Equal(t, testTerminal.LocationID, seen.LocationID)
	assert.Equal(t, testTerminal.OrderTypeID, seen.OrderTypeID)
	assert.Equal(t, "POS-01", seen.POSTerminalNumber)
	assert.Equal(t, "memo text", seen.Memo)
	assert.False(t, seen.CreatedAt.IsZero())

	require.Len(t, seen.Items, 2)
	assert.Equal(t, 2, seen.Items[0].Quantity)
	// 2x120 + 1x40 = 280 subtotal, 12% VAT on top.
	assert.True(t, decimal.NewFromInt(280).Equal(seen.Subtotal), "got %s", seen.Subtotal)
	assert.True(t, decimal.RequireFromString("313.60").Equal(seen.Total), "got %s", seen.Total)
	assert.False(t, seen.IsSenior)
	assert.False(t, seen.IsPWD)
}

func TestCheckout_SeniorFlagsCarried(t *testing.T) {
	api := new(MockOrderAPI)
	queue := new(MockOrderQueue)
	svc, cart := newTestService(api, queue)
	cart.SetDiscount(checkout.SeniorDiscount())

	var seen *model.OrderPayload
	api.On("CreateOrder", mock.Anything, mock.AnythingOfType("*model.OrderPayload")).
		Run(func(args mock.Arguments) {
			seen = args.Get(1).(*model.OrderPayload)
		}).
		Return(&model.OrderAck{OrderNumber: "ORD-2"}, nil)

	_, err := svc.Checkout(context.Background(), "")

	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.True(t, seen.IsSenior)
	assert.False(t, seen.IsPWD)
	assert.True(t, seen.TaxAmount.IsZero(), "regulatory orders carry no tax")
	for _, item := range seen.Items {
		assert.True(t, item.TaxPercentage.IsZero())
	}
}

func TestCheckout_UnreachableBackendQueuesSamePayload(t *testing.T) {
	api := new(MockOrderAPI)
	queue := new(MockOrderQueue)
	svc, cart := newTestService(api, queue)

	var attempted *model.OrderPayload
	api.On("CreateOrder", mock.Anything, mock.AnythingOfType("*model.OrderPayload")).
		Run(func(args mock.Arguments) {
			attempted = args.Get(1).(*model.OrderPayload)
		}).
		Return(nil, errors.New("dial tcp: connection refused"))

	var queued *model.OrderPayload
	queue.On("Add", mock.Anything, mock.AnythingOfType("*model.OrderPayload")).
		Run(func(args mock.Arguments) {
			queued = args.Get(1).(*model.OrderPayload)
		}).
		Return(nil)

	result, err := svc.Checkout(context.Background(), "")

	require.NoError(t, err)
	assert.True(t, result.Queued)
	assert.Empty(t, result.OrderNumber)
	require.NotNil(t, queued)
	assert.Equal(t, attempted.OfflineUUID, queued.OfflineUUID,
		"the queued payload reuses the UUID from the failed direct attempt")
	assert.True(t, cart.Empty(), "a queued order also clears the cart")
}

func TestCheckout_RejectionNotQueued(t *testing.T) {
	api := new(MockOrderAPI)
	queue := new(MockOrderQueue)
	svc, cart := newTestService(api, queue)

	api.On("CreateOrder", mock.Anything, mock.AnythingOfType("*model.OrderPayload")).
		Return(nil, &model.RejectionError{StatusCode: http.StatusUnprocessableEntity, Body: "unknown item"})

	result, err := svc.Checkout(context.Background(), "")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, model.IsRejection(err))
	assert.False(t, cart.Empty(), "a rejected cart stays put for the operator to fix")
	queue.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestCheckout_QueueWriteFailureIsSurfaced(t *testing.T) {
	api := new(MockOrderAPI)
	queue := new(MockOrderQueue)
	svc, cart := newTestService(api, queue)

	api.On("CreateOrder", mock.Anything, mock.AnythingOfType("*model.OrderPayload")).
		Return(nil, errors.New("dial tcp: connection refused"))
	queue.On("Add", mock.Anything, mock.AnythingOfType("*model.OrderPayload")).
		Return(errors.New("database is locked"))

	result, err := svc.Checkout(context.Background(), "")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, model.ErrQueueWriteFailed)
	assert.False(t, cart.Empty(), "an unsaved order must not silently vanish from the cart")
}

func TestCheckout_EmptyCart(t *testing.T) {
	api := new(MockOrderAPI)
	queue := new(MockOrderQueue)
	svc := NewService(api, queue, checkout.NewCart(), testTerminal, zerolog.Nop())

	result, err := svc.Checkout(context.Background(), "")

	require.ErrorIs(t, err, model.ErrEmptyCart)
	assert.Nil(t, result)
	api.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCheckout_EachOrderGetsFreshUUID(t *testing.T) {
	api := new(MockOrderAPI)
	queue := new(MockOrderQueue)
	svc, cart := newTestService(api, queue)

	api.On("CreateOrder", mock.Anything, mock.AnythingOfType("*model.OrderPayload")).
		Return(&model.OrderAck{OrderNumber: "ORD-A"}, nil)

	first, err := svc.Checkout(context.Background(), "")
	require.NoError(t, err)

	cart.Add(101, "Burger", decimal.NewFromInt(120))
	second, err := svc.Checkout(context.Background(), "")
	require.NoError(t, err)

	assert.NotEqual(t, first.OfflineUUID, second.OfflineUUID)
}
