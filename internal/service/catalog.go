package service

import (
	"context"

	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"
)

type CatalogService interface {
	GetProducts(ctx context.Context) ([]*model.Product, error)
	GetProduct(ctx context.Context, productID uint) (*model.Product, error)
	GetCategories(ctx context.Context) ([]*model.Category, error)
}

type catalogServiceImpl struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(
	productRepo repository.ProductRepository,
) CatalogService {
	return &catalogServiceImpl{
		productRepo: productRepo,
	}
}

func (s *catalogServiceImpl) GetProducts(ctx context.Context) ([]*model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, productID uint) (*model.Product, error) {
	return s.productRepo.FindByID(ctx, productID)
}

func (s *catalogServiceImpl) GetCategories(ctx context.Context) ([]*model.Category, error) {
	return s.productRepo.FindAllCategories(ctx)
}
