package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ecom/backend/internal/domain/catalog"
	"github.com/ecom/backend/internal/domain/shared"
	"github.com/ecom/backend/internal/domain/shared/valueobject"
	"github.com/ecom/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Storefront pagination bounds
const (
	DefaultStorePageSize = 6
	MaxStorePageSize     = 100
)

// DefaultRelatedLimit caps the related-products endpoint
const DefaultRelatedLimit = 3

// ProductServiceConfig contains configuration for the product service
type ProductServiceConfig struct {
	CacheTTL    time.Duration // browse cache entry lifetime
	PhotoURLTTL time.Duration // presigned photo URL lifetime
}

// DefaultProductServiceConfig returns default configuration
func DefaultProductServiceConfig() ProductServiceConfig {
	return ProductServiceConfig{
		CacheTTL:    60 * time.Second,
		PhotoURLTTL: 15 * time.Minute,
	}
}

// ProductService handles product management and storefront browsing
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	storage      ObjectStorageService
	cache        BrowseCache
	metrics      *telemetry.StoreMetrics
	config       ProductServiceConfig
	logger       *zap.Logger
}

// NewProductService creates a new ProductService. The cache and metrics are
// optional; pass nil to disable them.
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	storage ObjectStorageService,
	cache BrowseCache,
	metrics *telemetry.StoreMetrics,
	config ProductServiceConfig,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		storage:      storage,
		cache:        cache,
		metrics:      metrics,
		config:       config,
		logger:       logger,
	}
}

// Create creates a new product, uploading the photo when one is attached
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*ProductInfo, error) {
	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY_ID", "Category not found")
	}

	product, err := catalog.NewProduct(
		input.Name,
		input.Description,
		valueobject.NewMoneyUSD(input.Price),
		input.CategoryID,
		input.Quantity,
		input.Shipping,
	)
	if err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsBySlug(ctx, product.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A product with this name already exists")
	}

	if input.Photo != nil {
		if err := s.storePhoto(ctx, product, input.Photo); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		s.cleanupPhoto(ctx, product.PhotoKey)
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug))

	s.invalidateBrowseCache(ctx)

	info := toProductInfo(product)
	return &info, nil
}

// Update applies the non-nil fields of the input to an existing product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductInfo, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		oldSlug := product.Slug
		if err := product.Rename(*input.Name); err != nil {
			return nil, err
		}
		if product.Slug != oldSlug {
			exists, err := s.productRepo.ExistsBySlug(ctx, product.Slug)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewDomainError("ALREADY_EXISTS", "A product with this name already exists")
			}
		}
	}
	if input.Description != nil {
		if err := product.SetDescription(*input.Description); err != nil {
			return nil, err
		}
	}
	if input.Price != nil {
		if err := product.SetPrice(valueobject.NewMoneyUSD(*input.Price)); err != nil {
			return nil, err
		}
	}
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, shared.NewDomainError("INVALID_CATEGORY_ID", "Category not found")
		}
		if err := product.SetCategory(*input.CategoryID); err != nil {
			return nil, err
		}
	}
	if input.Quantity != nil {
		if err := product.SetQuantity(*input.Quantity); err != nil {
			return nil, err
		}
	}
	if input.Shipping != nil {
		product.SetShipping(*input.Shipping)
	}

	var oldPhotoKey string
	if input.Photo != nil {
		oldPhotoKey = product.PhotoKey
		if err := s.storePhoto(ctx, product, input.Photo); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	if oldPhotoKey != "" && oldPhotoKey != product.PhotoKey {
		s.cleanupPhoto(ctx, oldPhotoKey)
	}

	s.invalidateBrowseCache(ctx)

	info := toProductInfo(product)
	return &info, nil
}

// Delete removes a product and its stored photo.
// Order lines keep their own name and price snapshots, so order history
// survives the deletion.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, product.ID); err != nil {
		return err
	}

	if product.HasPhoto() {
		s.cleanupPhoto(ctx, product.PhotoKey)
	}

	s.logger.Info("Product deleted",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug))

	s.invalidateBrowseCache(ctx)
	return nil
}

// GetBySlug retrieves a single product by slug
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*ProductInfo, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	info := toProductInfo(product)
	return &info, nil
}

// PhotoURL returns a presigned download URL for the product photo
func (s *ProductService) PhotoURL(ctx context.Context, slug string) (string, time.Time, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return "", time.Time{}, err
	}
	if !product.HasPhoto() {
		return "", time.Time{}, shared.ErrNotFound
	}

	return s.storage.GenerateDownloadURL(ctx, product.PhotoKey, s.config.PhotoURLTTL)
}

// List returns the storefront product listing, newest first.
// Responses are cached briefly; writes invalidate the cache.
func (s *ProductService) List(ctx context.Context, input ListProductsInput) (*shared.Paginated[ProductInfo], error) {
	page, pageSize := normalizePage(input.Page, input.PageSize)

	cacheKey := fmt.Sprintf("list:%d:%d", page, pageSize)
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		return cached, nil
	}

	filter := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}

	products, err := s.productRepo.FindActive(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(toProductInfos(products), total, page, pageSize)
	s.cacheSet(ctx, cacheKey, &result)
	return &result, nil
}

// ListAll returns every product including inactive ones, for the admin panel
func (s *ProductService) ListAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[ProductInfo], error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
		filter.OrderDir = "desc"
	}

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	result := shared.NewPaginated(toProductInfos(products), total, page, filter.Limit())
	return &result, nil
}

// CountActive returns the number of active products
func (s *ProductService) CountActive(ctx context.Context) (int64, error) {
	return s.productRepo.CountActive(ctx)
}

// Search returns active products whose name or description contains the
// keyword, case-insensitively
func (s *ProductService) Search(ctx context.Context, keyword string) ([]ProductInfo, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []ProductInfo{}, nil
	}

	products, err := s.productRepo.Search(ctx, keyword, shared.Filter{
		OrderBy:  "created_at",
		OrderDir: "desc",
	})
	if err != nil {
		return nil, err
	}
	return toProductInfos(products), nil
}

// Related returns up to three other active products in the same category
func (s *ProductService) Related(ctx context.Context, slug string) ([]ProductInfo, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	related, err := s.productRepo.FindRelated(ctx, product.ID, product.CategoryID, DefaultRelatedLimit)
	if err != nil {
		return nil, err
	}
	return toProductInfos(related), nil
}

// ByCategory returns the category and its active products
func (s *ProductService) ByCategory(ctx context.Context, categorySlug string) (*CategoryProductsResult, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.FindByCategory(ctx, category.ID, shared.Filter{
		OrderBy:  "created_at",
		OrderDir: "desc",
	})
	if err != nil {
		return nil, err
	}

	return &CategoryProductsResult{
		Category: toCategoryInfo(category),
		Products: toProductInfos(products),
	}, nil
}

// Browse returns active products matching the filter form
func (s *ProductService) Browse(ctx context.Context, input BrowseInput) ([]ProductInfo, error) {
	cacheKey := browseCacheKey(input)
	if s.cache != nil {
		payload, hit, err := s.cache.Get(ctx, cacheKey)
		if err != nil {
			s.logger.Warn("Browse cache read failed", zap.Error(err))
		} else if hit {
			var infos []ProductInfo
			if err := json.Unmarshal(payload, &infos); err == nil {
				s.recordCache(ctx, "hit")
				return infos, nil
			}
			s.logger.Warn("Discarding undecodable browse cache entry", zap.String("key", cacheKey))
		}
		s.recordCache(ctx, "miss")
	}

	query := catalog.BrowseQuery{
		CategoryIDs: input.CategoryIDs,
		Price: catalog.PriceRange{
			Min: input.PriceMin,
			Max: input.PriceMax,
		},
	}

	products, err := s.productRepo.Browse(ctx, query, shared.Filter{
		OrderBy:  "created_at",
		OrderDir: "desc",
	})
	if err != nil {
		return nil, err
	}

	infos := toProductInfos(products)
	if s.cache != nil {
		if payload, err := json.Marshal(infos); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.config.CacheTTL); err != nil {
				s.logger.Warn("Browse cache write failed", zap.Error(err))
			}
		}
	}
	return infos, nil
}

// storePhoto validates and uploads a photo, then attaches it to the product
func (s *ProductService) storePhoto(ctx context.Context, product *catalog.Product, photo *PhotoUpload) error {
	if len(photo.Data) == 0 {
		return shared.NewDomainError("INVALID_PHOTO", "Photo is empty")
	}
	if len(photo.Data) > catalog.MaxPhotoSize {
		return shared.NewDomainError("PHOTO_TOO_LARGE", "Photo cannot exceed 1 MiB")
	}
	if !catalog.AllowedPhotoTypes[photo.ContentType] {
		return shared.NewDomainError("INVALID_PHOTO", "Photo must be JPEG, PNG, or WebP")
	}

	key := photoKey(product.ID, photo.ContentType)
	if err := s.storage.Upload(ctx, key, photo.Data, photo.ContentType); err != nil {
		s.logger.Error("Photo upload failed",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
		return shared.NewDomainError("STORAGE_ERROR", "Failed to store product photo")
	}

	return product.AttachPhoto(key, photo.ContentType)
}

// cleanupPhoto best-effort deletes an orphaned photo object
func (s *ProductService) cleanupPhoto(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("Failed to delete photo object",
			zap.String("key", key),
			zap.Error(err))
	}
}

func (s *ProductService) invalidateBrowseCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate browse cache", zap.Error(err))
	}
}

// cacheGet reads a cached paginated listing. Misses, read errors, and
// undecodable payloads all fall through to the database.
func (s *ProductService) cacheGet(ctx context.Context, key string) (*shared.Paginated[ProductInfo], bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Browse cache read failed", zap.Error(err))
		return nil, false
	}
	if !hit {
		s.recordCache(ctx, "miss")
		return nil, false
	}
	var result shared.Paginated[ProductInfo]
	if err := json.Unmarshal(payload, &result); err != nil {
		s.logger.Warn("Discarding undecodable browse cache entry", zap.String("key", key))
		s.recordCache(ctx, "miss")
		return nil, false
	}
	s.recordCache(ctx, "hit")
	return &result, true
}

func (s *ProductService) cacheSet(ctx context.Context, key string, result *shared.Paginated[ProductInfo]) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.config.CacheTTL); err != nil {
		s.logger.Warn("Browse cache write failed", zap.Error(err))
	}
}

func (s *ProductService) recordCache(ctx context.Context, result string) {
	if s.metrics != nil {
		s.metrics.RecordBrowseCache(ctx, result)
	}
}

// normalizePage clamps storefront pagination parameters
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultStorePageSize
	}
	if pageSize > MaxStorePageSize {
		pageSize = MaxStorePageSize
	}
	return page, pageSize
}

// browseCacheKey derives a stable cache key from the filter form
func browseCacheKey(input BrowseInput) string {
	var b strings.Builder
	b.WriteString("browse:")
	for i, id := range input.CategoryIDs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(id.String())
	}
	b.WriteByte(':')
	if input.PriceMin != nil {
		b.WriteString(input.PriceMin.String())
	}
	b.WriteByte('-')
	if input.PriceMax != nil {
		b.WriteString(input.PriceMax.String())
	}
	return b.String()
}

// photoKey builds the object storage key for a product photo
func photoKey(productID uuid.UUID, contentType string) string {
	ext := "jpg"
	switch contentType {
	case "image/png":
		ext = "png"
	case "image/webp":
		ext = "webp"
	}
	return fmt.Sprintf("products/%s.%s", productID.String(), ext)
}
