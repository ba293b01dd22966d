package repository

import (
	"context"
	"errors"

	"onlinestore/internal/app/store/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrProductNotFound  = errors.New("product not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrLinkNotFound     = errors.New("oidc link not found")
	ErrLinkExists       = errors.New("oidc link already exists")
)

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetAll(ctx context.Context) ([]entity.Product, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, product *entity.Product) error
	// Delete удаляет товар вместе с его отзывами в одной транзакции.
	// Возвращает число удалённых строк товара (0, если товара уже нет - это не ошибка).
	Delete(ctx context.Context, id int64) (int64, error)
}

// CustomerRepository работает с покупателями и таблицей связей
// покупатель - OIDC-пользователь. Связь доступна только через две явные
// операции, а не через поле сущности Customer
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) error
	FindCustomerIDBySubject(ctx context.Context, subjectID uuid.UUID) (uuid.UUID, error)
	LinkCustomerToSubject(ctx context.Context, customerID, subjectID uuid.UUID) error
	// Transaction выполняет fn в одной транзакции БД; все вызовы репозитория
	// внутри fn идут через переданный транзакционный экземпляр
	Transaction(ctx context.Context, fn func(r CustomerRepository) error) error
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	// GetByProductID возвращает отзывы товара в порядке вставки (по id)
	GetByProductID(ctx context.Context, productID int64) ([]entity.Review, error)
	// GetAverageRatings возвращает средний рейтинг по каждому товару, у которого есть отзывы
	GetAverageRatings(ctx context.Context) (map[int64]float64, error)
}
