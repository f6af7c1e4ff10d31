package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront-backend/internal/identity"
	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"
)

type OrderService interface {
	GetOrders(ctx context.Context, buyer identity.BuyerIdentity) ([]*model.Order, error)
	GetOrder(ctx context.Context, orderID uint) (*model.Order, error)
}

type orderServiceImpl struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(
	orderRepo repository.OrderRepository,
) OrderService {
	return &orderServiceImpl{
		orderRepo: orderRepo,
	}
}

func (s *orderServiceImpl) GetOrders(ctx context.Context, buyer identity.BuyerIdentity) ([]*model.Order, error) {
	return s.orderRepo.FindByBuyerIdentity(ctx, buyer.Key())
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return order, nil
}
