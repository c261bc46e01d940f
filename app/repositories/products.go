package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/sampleapp/app/models"
	"github.com/shashiranjanraj/sampleapp/pkg/cache"
	"github.com/shashiranjanraj/sampleapp/pkg/logger"
	"github.com/shashiranjanraj/sampleapp/pkg/metrics"
)

const productTTL = 10 * time.Minute

// ProductRepository reads products through the cache.
type ProductRepository struct {
	db    *gorm.DB
	store cache.Store
}

func NewProductRepository(db *gorm.DB, store cache.Store) *ProductRepository {
	if store == nil {
		store = cache.Nop{}
	}
	return &ProductRepository{db: db, store: store}
}

func productKey(id uint) string { return fmt.Sprintf("product:%d", id) }

// All returns every product ordered by id.
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var products []models.Product
	err := r.db.WithContext(ctx).Order("id").Find(&products).Error
	return products, err
}

// Find returns one product, from the cache when possible.
func (r *ProductRepository) Find(ctx context.Context, id uint) (models.Product, error) {
	var product models.Product
	if r.store.Get(ctx, productKey(id), &product) {
		return product, nil
	}

	start := time.Now()
	err := r.db.WithContext(ctx).First(&product, id).Error
	metrics.ObserveDBQuery("select", start)
	if err != nil {
		return product, notFound(err)
	}

	if err := r.store.Set(ctx, productKey(id), product, productTTL); err != nil {
		logger.WithCtx(ctx).Warn("product cache write failed", "id", id, "error", err)
	}
	return product, nil
}

// Create inserts product and drops any stale cache entry for its id.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	start := time.Now()
	err := r.db.WithContext(ctx).Create(product).Error
	metrics.ObserveDBQuery("insert", start)
	if err != nil {
		return err
	}
	_ = r.store.Del(ctx, productKey(product.ID))
	return nil
}
