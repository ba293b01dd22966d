package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"onlinestore/internal/app/store/entity"
	"onlinestore/internal/app/store/repository"
	"onlinestore/internal/app/store/repository/mocks"
)

func TestCreateReview_Success(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockProductCache)
	kafkaProducer := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, cache, kafkaProducer)

	ctx := context.Background()
	customer := &entity.Customer{ID: uuid.New(), Username: "alice"}
	product := &entity.Product{ID: 1, Title: "Чайник", Price: 49.50}
	req := &entity.CreateReviewRequest{Rating: 5, Advantages: "Быстро греет", Comment: "Отличный чайник"}

	productRepo.On("GetByID", ctx, int64(1)).Return(product, nil)
	reviewRepo.On("Create", ctx, mock.AnythingOfType("*entity.Review")).Return(nil).
		Run(func(args mock.Arguments) {
			review := args.Get(1).(*entity.Review)
			review.ID = 10
		})
	kafkaProducer.On("PublishMessage", ctx, "10", mock.Anything).Return(nil)

	result, err := service.CreateReview(ctx, customer, 1, req)

	assert.NoError(t, err)
	assert.Equal(t, int64(10), result.ID)
	assert.Equal(t, customer.ID, result.CustomerID)
	assert.Equal(t, 5, result.Rating)
	assert.WithinDuration(t, time.Now(), result.CreatedAt, time.Minute)
	kafkaProducer.AssertExpectations(t)
}

func TestCreateReview_ProductNotFound(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockProductCache)
	kafkaProducer := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, cache, kafkaProducer)

	ctx := context.Background()
	customer := &entity.Customer{ID: uuid.New(), Username: "alice"}
	req := &entity.CreateReviewRequest{Rating: 5}

	productRepo.On("GetByID", ctx, int64(42)).Return(nil, repository.ErrProductNotFound)

	result, err := service.CreateReview(ctx, customer, 42, req)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrProductNotFound)
	reviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_RepoError(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockProductCache)
	kafkaProducer := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, cache, kafkaProducer)

	ctx := context.Background()
	customer := &entity.Customer{ID: uuid.New(), Username: "alice"}
	product := &entity.Product{ID: 1, Title: "Чайник", Price: 49.50}
	req := &entity.CreateReviewRequest{Rating: 4}

	productRepo.On("GetByID", ctx, int64(1)).Return(product, nil)
	reviewRepo.On("Create", ctx, mock.Anything).Return(errors.New("db error"))

	result, err := service.CreateReview(ctx, customer, 1, req)

	assert.Error(t, err)
	assert.Nil(t, result)
	kafkaProducer.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

// Отзыв уже создан, проблемы с Kafka не отменяют операцию
func TestCreateReview_KafkaErrorIgnored(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockProductCache)
	kafkaProducer := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, cache, kafkaProducer)

	ctx := context.Background()
	customer := &entity.Customer{ID: uuid.New(), Username: "alice"}
	product := &entity.Product{ID: 1, Title: "Чайник", Price: 49.50}
	req := &entity.CreateReviewRequest{Rating: 3}

	productRepo.On("GetByID", ctx, int64(1)).Return(product, nil)
	reviewRepo.On("Create", ctx, mock.Anything).Return(nil).
		Run(func(args mock.Arguments) {
			review := args.Get(1).(*entity.Review)
			review.ID = 10
		})
	kafkaProducer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(errors.New("kafka error"))

	result, err := service.CreateReview(ctx, customer, 1, req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
}

func TestGetAllProductReviews_Success(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockProductCache)
	kafkaProducer := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, cache, kafkaProducer)

	ctx := context.Background()
	reviews := []entity.Review{
		{ID: 10, ProductID: 1, Rating: 5},
		{ID: 11, ProductID: 1, Rating: 3},
	}

	productRepo.On("Exists", ctx, int64(1)).Return(true, nil)
	reviewRepo.On("GetByProductID", ctx, int64(1)).Return(reviews, nil)

	result, err := service.GetAllProductReviews(ctx, 1)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
}

// Товар без отзывов и отсутствующий товар - разные исходы
func TestGetAllProductReviews_EmptyList(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockProductCache)
	kafkaProducer := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, cache, kafkaProducer)

	ctx := context.Background()
	productRepo.On("Exists", ctx, int64(1)).Return(true, nil)
	reviewRepo.On("GetByProductID", ctx, int64(1)).Return([]entity.Review{}, nil)

	result, err := service.GetAllProductReviews(ctx, 1)

	assert.NoError(t, err)
	assert.Empty(t, result)
}

func TestGetAllProductReviews_ProductNotFound(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockProductCache)
	kafkaProducer := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, cache, kafkaProducer)

	ctx := context.Background()
	productRepo.On("Exists", ctx, int64(42)).Return(false, nil)

	result, err := service.GetAllProductReviews(ctx, 42)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrProductNotFound)
	reviewRepo.AssertNotCalled(t, "GetByProductID", mock.Anything, mock.Anything)
}

func TestRefreshProductRatings_Success(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockProductCache)
	kafkaProducer := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, cache, kafkaProducer)

	ctx := context.Background()
	ratings := map[int64]float64{1: 4.5, 2: 3.0}

	reviewRepo.On("GetAverageRatings", ctx).Return(ratings, nil)
	cache.On("SetRatings", ctx, ratings).Return(nil)

	err := service.RefreshProductRatings(ctx)

	assert.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestRefreshProductRatings_RepoError(t *testing.T) {
	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	cache := new(mocks.MockProductCache)
	kafkaProducer := new(mocks.MockMessagePublisher)
	service := NewReviewService(reviewRepo, productRepo, cache, kafkaProducer)

	ctx := context.Background()
	reviewRepo.On("GetAverageRatings", ctx).Return(nil, errors.New("db error"))

	err := service.RefreshProductRatings(ctx)

	assert.Error(t, err)
	cache.AssertNotCalled(t, "SetRatings", mock.Anything, mock.Anything)
}
