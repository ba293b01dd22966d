package repository

import (
	"context"
	"errors"
	"fmt"

	"onlinestore/internal/app/store/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Код unique_violation в PostgreSQL
const pgUniqueViolation = "23505"

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository создает новый репозиторий покупателей
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

// Create создает нового покупателя с заранее сгенерированным UUID
func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	result := r.db.WithContext(ctx).Create(customer)
	if result.Error != nil {
		return fmt.Errorf("failed to create customer: %w", result.Error)
	}
	return nil
}

// GetByID получает покупателя по ID
func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	result := r.db.WithContext(ctx).First(&customer, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, result.Error
	}

	return &customer, nil
}

// UpdateUsername обновляет только отображаемое имя покупателя
func (r *customerRepository) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	result := r.db.WithContext(ctx).Model(&entity.Customer{}).Where("id = ?", id).
		Update("username", username)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}

	return nil
}

// FindCustomerIDBySubject ищет ID покупателя по subject внешнего identity provider
// Таблица связей опрашивается явным SQL, а не через ORM-связи
func (r *customerRepository) FindCustomerIDBySubject(ctx context.Context, subjectID uuid.UUID) (uuid.UUID, error) {
	var customerID uuid.UUID
	result := r.db.WithContext(ctx).
		Raw("SELECT customer_id FROM customer_oidc_links WHERE subject_id = ?", subjectID).
		Scan(&customerID)

	if result.Error != nil {
		return uuid.Nil, result.Error
	}

	if result.RowsAffected == 0 {
		return uuid.Nil, ErrLinkNotFound
	}

	return customerID, nil
}

// LinkCustomerToSubject создает связь покупатель - OIDC-пользователь
// Нарушение уникальности (гонка двух первых запросов одного subject)
// возвращается как ErrLinkExists для идемпотентной обработки в service layer
func (r *customerRepository) LinkCustomerToSubject(ctx context.Context, customerID, subjectID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Exec("INSERT INTO customer_oidc_links (subject_id, customer_id) VALUES (?, ?)", subjectID, customerID)

	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrLinkExists
		}
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrLinkExists
		}
		return fmt.Errorf("failed to link customer to subject: %w", result.Error)
	}

	return nil
}

// Transaction выполняет fn в одной транзакции БД
func (r *customerRepository) Transaction(ctx context.Context, fn func(r CustomerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&customerRepository{db: tx})
	})
}
