package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/redis/go-redis/v9"

	"catalog-service/internal/es"
	"catalog-service/internal/logging"
	"catalog-service/internal/models"
	"catalog-service/internal/mykafka"
	"catalog-service/internal/repo"
	"catalog-service/internal/transport"
)

// ErrValidation marks request data that must not reach the store.
var ErrValidation = errors.New("validation failed")

const (
	productEventsTopic = "product_events"
	publishTimeout     = 5 * time.Second
	cacheTTL           = time.Minute
)

// Producer, Cache and ES are optional: a nil field disables that
// collaborator.
type CatalogService struct {
	Repo     *repo.GormRepo
	Producer *mykafka.Producer
	Cache    *redis.Client
	ES       *elasticsearch.Client
	ESIndex  string
}

func validate(name string, price float64) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	if prod := s.cacheGet(ctx, id); prod != nil {
		return prod, nil
	}

	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, prod)
	return prod, nil
}

func (s *CatalogService) GetProducts(ctx context.Context) ([]models.Product, error) {
	return s.Repo.GetProducts(ctx)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if err := validate(req.Name, req.Price); err != nil {
		return nil, err
	}

	prod, err := s.Repo.CreateProduct(ctx, &models.Product{Name: req.Name, Price: req.Price})
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, prod)
	s.indexProduct(ctx, prod)
	s.publish(ctx, prod.ID, map[string]interface{}{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	return prod, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req transport.UpdateProductRequest) (*models.Product, error) {
	if err := validate(req.Name, req.Price); err != nil {
		return nil, err
	}

	prod, err := s.Repo.UpdateProduct(ctx, id, req.Name, req.Price)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, prod)
	s.indexProduct(ctx, prod)
	s.publish(ctx, prod.ID, map[string]interface{}{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.cacheDel(ctx, id)
	s.dropFromIndex(ctx, id)
	s.publish(ctx, id, map[string]interface{}{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	if s.ES != nil {
		return es.Search(ctx, s.ES, s.ESIndex, q, offset, limit)
	}
	return s.Repo.SearchProducts(ctx, q, offset, limit)
}

// publish is best effort: broker trouble is logged, never returned.
func (s *CatalogService) publish(ctx context.Context, id uint, event map[string]interface{}) {
	if s.Producer == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	key := strconv.FormatUint(uint64(id), 10)
	if err := s.Producer.PublishEvent(pubCtx, productEventsTopic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "topic", productEventsTopic, "error", err)
	}
}

func (s *CatalogService) indexProduct(ctx context.Context, prod *models.Product) {
	if s.ES == nil {
		return
	}
	if err := es.IndexProduct(ctx, s.ES, s.ESIndex, prod); err != nil {
		logging.FromContext(ctx).Error("index update failed", "product_id", prod.ID, "error", err)
	}
}

func (s *CatalogService) dropFromIndex(ctx context.Context, id uint) {
	if s.ES == nil {
		return
	}
	if err := es.DeleteProduct(ctx, s.ES, s.ESIndex, id); err != nil {
		logging.FromContext(ctx).Error("index delete failed", "product_id", id, "error", err)
	}
}

func cacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *CatalogService) cacheGet(ctx context.Context, id uint) *models.Product {
	if s.Cache == nil {
		return nil
	}
	data, err := s.Cache.Get(ctx, cacheKey(id)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.FromContext(ctx).Warn("cache get failed", "product_id", id, "error", err)
		}
		return nil
	}
	var prod models.Product
	if err := json.Unmarshal([]byte(data), &prod); err != nil {
		logging.FromContext(ctx).Warn("cache entry unreadable", "product_id", id, "error", err)
		return nil
	}
	return &prod
}

func (s *CatalogService) cacheSet(ctx context.Context, prod *models.Product) {
	if s.Cache == nil {
		return
	}
	data, err := json.Marshal(prod)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, cacheKey(prod.ID), data, cacheTTL).Err(); err != nil {
		logging.FromContext(ctx).Warn("cache set failed", "product_id", prod.ID, "error", err)
	}
}

func (s *CatalogService) cacheDel(ctx context.Context, id uint) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, cacheKey(id)).Err(); err != nil {
		logging.FromContext(ctx).Warn("cache delete failed", "product_id", id, "error", err)
	}
}
