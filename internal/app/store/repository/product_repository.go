package repository

import (
	"context"
	"errors"

	"onlinestore/internal/app/store/entity"

	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create создает новый товар, ID присваивается базой данных
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Create(product)
	return result.Error
}

// GetByID получает товар по ID
func (r *productRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, result.Error
	}

	return &product, nil
}

// GetAll получает все товары
func (r *productRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	result := r.db.WithContext(ctx).Order("id").Find(&products)

	if result.Error != nil {
		return nil, result.Error
	}

	return products, nil
}

// Exists проверяет существование товара без загрузки строки
func (r *productRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&entity.Product{}).Where("id = ?", id).Count(&count)

	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// Update обновляет title и price товара целиком
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"title": product.Title,
			"price": product.Price,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete удаляет товар и его отзывы в одной транзакции
// Отсутствие товара не считается ошибкой: удаление по первичному ключу идемпотентно
func (r *productRepository) Delete(ctx context.Context, id int64) (int64, error) {
	var deleted int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&entity.Review{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&entity.Product{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}

		deleted = result.RowsAffected
		return nil
	})

	if err != nil {
		return 0, err
	}

	return deleted, nil
}
