package service

import (
	"context"
	"errors"
	"fmt"

	"onlinestore/internal/app/store/entity"
	"onlinestore/internal/app/store/repository"
	"onlinestore/pkg/metrics"

	"github.com/google/uuid"
)

// CustomerService синхронизирует локальных покупателей с пользователями
// внешнего identity provider
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService создает новый сервис покупателей
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// SyncCustomer гарантирует, что для subject внешнего identity provider
// существует локальный покупатель с актуальным отображаемым именем.
// Повторный вызов с теми же subject и именем не выполняет ни одной записи.
//
// Гонка двух одновременных первых запросов одного subject проявляется как
// нарушение уникальности при вставке связи; проигравшая сторона повторяет
// синхронизацию один раз и попадает в ветку "связь уже есть"
func (s *CustomerService) SyncCustomer(ctx context.Context, subjectID uuid.UUID, username string) (*entity.Customer, error) {
	customer, err := s.syncOnce(ctx, subjectID, username)
	if errors.Is(err, repository.ErrLinkExists) {
		customer, err = s.syncOnce(ctx, subjectID, username)
	}
	return customer, err
}

func (s *CustomerService) syncOnce(ctx context.Context, subjectID uuid.UUID, username string) (*entity.Customer, error) {
	customerID, err := s.customerRepo.FindCustomerIDBySubject(ctx, subjectID)

	switch {
	case err == nil:
		return s.refreshExisting(ctx, subjectID, customerID, username)

	case errors.Is(err, repository.ErrLinkNotFound):
		return s.createAndLink(ctx, subjectID, username)

	default:
		return nil, fmt.Errorf("failed to resolve subject link: %w", err)
	}
}

// refreshExisting загружает покупателя по найденной связи и обновляет имя,
// если claim preferred_username изменился
func (s *CustomerService) refreshExisting(ctx context.Context, subjectID, customerID uuid.UUID, username string) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, fmt.Errorf("%w: subject %s linked to missing customer %s",
				ErrIntegrityFault, subjectID, customerID)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	if customer.Username == username {
		metrics.CustomersSynced.WithLabelValues("unchanged").Inc()
		return customer, nil
	}

	if err := s.customerRepo.UpdateUsername(ctx, customerID, username); err != nil {
		return nil, fmt.Errorf("failed to update customer username: %w", err)
	}

	customer.Username = username
	metrics.CustomersSynced.WithLabelValues("updated").Inc()
	return customer, nil
}

// createAndLink создает покупателя и связь с subject в одной транзакции:
// частично выполненная синхронизация не видна другим запросам
func (s *CustomerService) createAndLink(ctx context.Context, subjectID uuid.UUID, username string) (*entity.Customer, error) {
	customer := &entity.Customer{
		ID:       uuid.New(),
		Username: username,
	}

	err := s.customerRepo.Transaction(ctx, func(r repository.CustomerRepository) error {
		if err := r.Create(ctx, customer); err != nil {
			return err
		}
		return r.LinkCustomerToSubject(ctx, customer.ID, subjectID)
	})

	if err != nil {
		if errors.Is(err, repository.ErrLinkExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create customer for subject %s: %w", subjectID, err)
	}

	metrics.CustomersSynced.WithLabelValues("created").Inc()
	return customer, nil
}
