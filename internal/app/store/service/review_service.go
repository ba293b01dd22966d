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

// ReviewService обрабатывает бизнес-логику отзывов
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	productRepo   repository.ProductRepository
	cache         ProductCache
	kafkaProducer MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	cache ProductCache,
	kafkaProducer MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		productRepo:   productRepo,
		cache:         cache,
		kafkaProducer: kafkaProducer,
	}
}

// CreateReview создает отзыв от имени покупателя, разрешённого на границе запроса.
// Автор передаётся явным аргументом, а не извлекается из ambient-контекста.
// Товар проверяется на существование до вставки; createdAt проставляет сервер
func (s *ReviewService) CreateReview(ctx context.Context, customer *entity.Customer, productID int64, req *entity.CreateReviewRequest) (*entity.Review, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	review := &entity.Review{
		ProductID:     product.ID,
		CustomerID:    customer.ID,
		Customer:      customer,
		Rating:        req.Rating,
		CreatedAt:     time.Now(),
		Advantages:    req.Advantages,
		Disadvantages: req.Disadvantages,
		Comment:       req.Comment,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewsCreated.WithLabelValues(strconv.Itoa(review.Rating)).Inc()

	event := entity.ReviewEvent{
		EventType:  "REVIEW_CREATED",
		ReviewID:   review.ID,
		ProductID:  review.ProductID,
		CustomerID: review.CustomerID,
		Rating:     review.Rating,
		Timestamp:  time.Now(),
	}
	if err := s.publishReviewEvent(ctx, event); err != nil {
		// Отзыв уже создан, проблемы с Kafka не критичны
		logger.Warn().Err(err).Int64("review_id", review.ID).
			Msg("Failed to publish review created event")
	}

	return review, nil
}

// GetAllProductReviews получает все отзывы товара в порядке вставки.
// Существование товара проверяется отдельно от выборки: пустой список отзывов
// и отсутствующий товар - разные ответы для клиента
func (s *ReviewService) GetAllProductReviews(ctx context.Context, productID int64) ([]entity.Review, error) {
	exists, err := s.productRepo.Exists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to check product existence: %w", err)
	}
	if !exists {
		return nil, ErrProductNotFound
	}

	reviews, err := s.reviewRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	return reviews, nil
}

// RefreshProductRatings пересчитывает средние рейтинги всех товаров
// и сохраняет их в Redis. Вызывается фоновым планировщиком
func (s *ReviewService) RefreshProductRatings(ctx context.Context) error {
	ratings, err := s.reviewRepo.GetAverageRatings(ctx)
	if err != nil {
		return fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	if err := s.cache.SetRatings(ctx, ratings); err != nil {
		return fmt.Errorf("failed to cache ratings: %w", err)
	}

	logger.Debug().Int("products", len(ratings)).Msg("Refreshed product ratings")
	return nil
}

// publishReviewEvent отправляет событие об отзыве в Kafka
func (s *ReviewService) publishReviewEvent(ctx context.Context, event entity.ReviewEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal review event: %w", err)
	}

	key := strconv.FormatInt(event.ReviewID, 10)
	if err := s.kafkaProducer.PublishMessage(ctx, key, eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
