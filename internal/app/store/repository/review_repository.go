package repository

import (
	"context"
	"fmt"

	"onlinestore/internal/app/store/entity"
	"onlinestore/pkg/metrics"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository создает новый репозиторий отзывов
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create создает новый отзыв
// Связанные сущности не затрагиваются: покупатель и товар уже существуют
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	result := r.db.WithContext(ctx).Omit(clause.Associations).Create(review)
	if result.Error != nil {
		return fmt.Errorf("failed to create review: %w", result.Error)
	}
	return nil
}

// GetByProductID получает все отзывы товара вместе с авторами
// Порядок вставки сохраняется (сортировка по id)
func (r *reviewRepository) GetByProductID(ctx context.Context, productID int64) ([]entity.Review, error) {
	var reviews []entity.Review
	result := r.db.WithContext(ctx).
		Preload("Customer").
		Where("product_id = ?", productID).
		Order("id").
		Find(&reviews)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", result.Error)
	}

	return reviews, nil
}

// GetAverageRatings считает средний рейтинг по каждому товару с отзывами
// Используется фоновым пересчётом рейтингов
func (r *reviewRepository) GetAverageRatings(ctx context.Context) (map[int64]float64, error) {
	var rows []struct {
		ProductID int64
		Avg       float64
	}

	timer := metrics.NewDbTimer("online-store", metrics.DbOpSelect, "reviews")
	result := r.db.WithContext(ctx).
		Raw("SELECT product_id, AVG(rating) AS avg FROM reviews GROUP BY product_id").
		Scan(&rows)
	timer.ObserveDuration()

	if result.Error != nil {
		metrics.RecordDbError("online-store", metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to aggregate ratings: %w", result.Error)
	}

	ratings := make(map[int64]float64, len(rows))
	for _, row := range rows {
		ratings[row.ProductID] = row.Avg
	}

	return ratings, nil
}
