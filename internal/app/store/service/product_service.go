package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"onlinestore/internal/app/store/entity"
	"onlinestore/internal/app/store/repository"
	"onlinestore/pkg/logger"
	"onlinestore/pkg/metrics"
)

const (
	serviceName     = "online-store"
	productCacheTTL = time.Hour
)

// ProductService обрабатывает бизнес-логику товаров
// Координирует работу репозитория, Redis кеша и Kafka producer
type ProductService struct {
	productRepo   repository.ProductRepository
	cache         ProductCache
	kafkaProducer MessagePublisher
}

// NewProductService создает новый сервис товаров с внедрением зависимостей
func NewProductService(
	productRepo repository.ProductRepository,
	cache ProductCache,
	kafkaProducer MessagePublisher,
) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		cache:         cache,
		kafkaProducer: kafkaProducer,
	}
}

// GetAllProducts получает все товары с кешированием в Redis
// Сначала проверяет кеш, если нет - загружает из БД и кеширует
func (s *ProductService) GetAllProducts(ctx context.Context) ([]entity.Product, error) {
	products, err := s.cache.GetProducts(ctx)
	if err == nil && products != nil {
		metrics.RecordCacheHit(serviceName, "products")
		return products, nil
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read products cache")
	}
	metrics.RecordCacheMiss(serviceName, "products")

	products, err = s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	if err := s.cache.SetProducts(ctx, products, productCacheTTL); err != nil {
		// Данные получены из БД, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("Failed to cache products")
	}

	return products, nil
}

// GetProduct получает товар по ID
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// ExistsProduct проверяет существование товара без загрузки строки
// Используется сервисом отзывов перед выборкой
func (s *ProductService) ExistsProduct(ctx context.Context, id int64) (bool, error) {
	exists, err := s.productRepo.Exists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to check product existence: %w", err)
	}
	return exists, nil
}

// CreateProduct создает новый товар, ID присваивает база данных
// Валидация title и price выполняется на границе HTTP до вызова сервиса
func (s *ProductService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error) {
	product := &entity.Product{
		Title: req.Title,
		Price: req.Price,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateProductsCache(ctx)
	metrics.ProductsCreated.Inc()

	return product, nil
}

// UpdateProduct полностью заменяет title и price товара
// При изменении цены отправляет событие PRODUCT_UPDATED в Kafka
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, req *entity.UpdateProductRequest) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	oldPrice := product.Price
	product.Title = req.Title
	product.Price = req.Price

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidateProductsCache(ctx)

	if product.Price != oldPrice {
		event := entity.ProductEvent{
			EventType: "PRODUCT_UPDATED",
			ProductID: product.ID,
			Title:     product.Title,
			Price:     product.Price,
			Timestamp: time.Now(),
		}
		if err := s.publishProductEvent(ctx, event); err != nil {
			// Товар уже обновлен, проблемы с Kafka не критичны
			logger.Warn().Err(err).Int64("product_id", product.ID).
				Msg("Failed to publish product updated event")
		}
	}

	return nil
}

// DeleteProduct удаляет товар вместе с отзывами
// Идемпотентно: повторное удаление того же ID не является ошибкой
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if deleted > 0 {
		s.invalidateProductsCache(ctx)
		metrics.ProductsDeleted.Inc()
	}

	return nil
}

func (s *ProductService) invalidateProductsCache(ctx context.Context) {
	if err := s.cache.DeleteProducts(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate products cache")
	}
}

// publishProductEvent отправляет событие о товаре в Kafka
// Key - это ProductID для партиционирования
func (s *ProductService) publishProductEvent(ctx context.Context, event entity.ProductEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}

	key := strconv.FormatInt(event.ProductID, 10)
	if err := s.kafkaProducer.PublishMessage(ctx, key, eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
