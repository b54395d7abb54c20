package handler

import (
	"context"

	"storefront/internal/cart"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockProductResolver is a mock implementation of service.ProductResolver.
type MockProductResolver struct {
	mock.Mock
}

func (m *MockProductResolver) Resolve(ctx context.Context, category, productID string) ([]model.Product, error) {
	args := m.Called(ctx, category, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductResolver) Categories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockProductResolver) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockAttributeResolver is a mock implementation of service.AttributeResolver.
type MockAttributeResolver struct {
	mock.Mock
}

func (m *MockAttributeResolver) Resolve(ctx context.Context, productID string, kind model.AttributeKind) ([]model.AttributeValue, error) {
	args := m.Called(ctx, productID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AttributeValue), args.Error(1)
}

func (m *MockAttributeResolver) ResolveAll(ctx context.Context, productID string) (*model.AttributeSet, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AttributeSet), args.Error(1)
}

// MockOrderComposer is a mock implementation of service.OrderComposer.
type MockOrderComposer struct {
	mock.Mock
}

func (m *MockOrderComposer) Submit(ctx context.Context, sub *model.OrderSubmission) (int64, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderComposer) Checkout(ctx context.Context, c service.CheckoutCart) (*model.CheckoutResult, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResult), args.Error(1)
}

func (m *MockOrderComposer) GetByID(ctx context.Context, id int64) (*model.OrderDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetails), args.Error(1)
}

// MockCartService is a mock implementation of service.CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, name string) (*cart.Snapshot, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Snapshot), args.Error(1)
}

func (m *MockCartService) AddProduct(ctx context.Context, name string, req *model.AddToCartRequest) (*cart.Snapshot, error) {
	args := m.Called(ctx, name, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Snapshot), args.Error(1)
}

func (m *MockCartService) AdjustQuantity(ctx context.Context, name string, req *model.AdjustQuantityRequest) (*cart.Snapshot, error) {
	args := m.Called(ctx, name, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Snapshot), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, name string) (*cart.Snapshot, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Snapshot), args.Error(1)
}

func (m *MockCartService) Checkout(ctx context.Context, name string) (*model.CheckoutResult, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResult), args.Error(1)
}
