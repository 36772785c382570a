package services

import (
	"context"

	"erpcore/internal/models"
	"erpcore/internal/repositories"

	"github.com/google/uuid"
)

type CreateCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
}

type CategoryService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateCategoryRequest) (*models.Category, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type categoryService struct {
	categories repositories.CategoryRepository
}

func NewCategoryService(categories repositories.CategoryRepository) CategoryService {
	return &categoryService{categories: categories}
}

func (s *categoryService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateCategoryRequest) (*models.Category, error) {
	color := req.Color
	if color == "" {
		color = "#6b7280"
	}
	category := &models.Category{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		Color:       color,
		IsActive:    true,
		CreatedBy:   userID,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Category, error) {
	return s.categories.GetByID(ctx, tenantID, id)
}

func (s *categoryService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Category, error) {
	return s.categories.List(ctx, tenantID)
}

func (s *categoryService) Update(ctx context.Context, category *models.Category) error {
	return s.categories.Update(ctx, category)
}

func (s *categoryService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.categories.Delete(ctx, tenantID, id)
}
