package catalog

import (
	"context"

	"github.com/ecom/backend/internal/domain/catalog"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService handles category management
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	cache        BrowseCache
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	cache BrowseCache,
	logger *zap.Logger,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
		logger:       logger,
	}
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*CategoryInfo, error) {
	category, err := catalog.NewCategory(input.Name)
	if err != nil {
		return nil, err
	}

	exists, err := s.categoryRepo.ExistsBySlug(ctx, category.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A category with this name already exists")
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	s.invalidateBrowseCache(ctx)

	info := toCategoryInfo(category)
	return &info, nil
}

// Update renames a category. The slug is re-derived from the new name.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryInfo, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldSlug := category.Slug
	if err := category.Rename(input.Name); err != nil {
		return nil, err
	}

	if category.Slug != oldSlug {
		exists, err := s.categoryRepo.ExistsBySlug(ctx, category.Slug)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A category with this name already exists")
		}
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	s.invalidateBrowseCache(ctx)

	info := toCategoryInfo(category)
	return &info, nil
}

// Delete removes a category. Refused while any product still references it,
// regardless of product status.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.productRepo.Count(ctx, shared.Filter{
		Filters: map[string]interface{}{"category_id": category.ID},
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CONFLICT", "Cannot delete a category that still has products")
	}

	if err := s.categoryRepo.Delete(ctx, category.ID); err != nil {
		return err
	}

	s.logger.Info("Category deleted",
		zap.String("category_id", category.ID.String()),
		zap.String("slug", category.Slug))

	s.invalidateBrowseCache(ctx)
	return nil
}

// List returns all categories ordered by name
func (s *CategoryService) List(ctx context.Context) ([]CategoryInfo, error) {
	categories, err := s.categoryRepo.FindAll(ctx, shared.Filter{
		OrderBy:  "name",
		OrderDir: "asc",
	})
	if err != nil {
		return nil, err
	}

	infos := make([]CategoryInfo, len(categories))
	for i := range categories {
		infos[i] = toCategoryInfo(&categories[i])
	}
	return infos, nil
}

// GetBySlug retrieves a category by slug
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*CategoryInfo, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	info := toCategoryInfo(category)
	return &info, nil
}

// invalidateBrowseCache drops cached browse responses after a write.
// Cache failures never fail the write.
func (s *CategoryService) invalidateBrowseCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate browse cache", zap.Error(err))
	}
}
