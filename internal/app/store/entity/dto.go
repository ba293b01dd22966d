package entity

import (
	"time"

	"github.com/google/uuid"
)

// CreateProductRequest - запрос на создание товара
type CreateProductRequest struct {
	Title string  `json:"title" validate:"required,notblank,max=50"`
	Price float64 `json:"price" validate:"required,gt=0"`
}

// UpdateProductRequest - запрос на обновление товара
// Обновление полное (title и price заменяются целиком), валидация как при создании
type UpdateProductRequest struct {
	Title string  `json:"title" validate:"required,notblank,max=50"`
	Price float64 `json:"price" validate:"required,gt=0"`
}

// CreateReviewRequest - запрос на создание отзыва
type CreateReviewRequest struct {
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	Advantages    string `json:"advantages"`
	Disadvantages string `json:"disadvantages"`
	Comment       string `json:"comment"`
}

// CustomerPayload - представление покупателя в ответах API
type CustomerPayload struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// ReviewPayload - представление отзыва в ответах API
type ReviewPayload struct {
	ID            int64           `json:"id"`
	CreatedBy     CustomerPayload `json:"createdBy"`
	Rating        int             `json:"rating"`
	CreatedAt     time.Time       `json:"createdAt"`
	Advantages    string          `json:"advantages"`
	Disadvantages string          `json:"disadvantages"`
	Comment       string          `json:"comment"`
}

// ToReviewPayload преобразует отзыв в формат ответа API
func ToReviewPayload(review *Review) ReviewPayload {
	payload := ReviewPayload{
		ID:            review.ID,
		Rating:        review.Rating,
		CreatedAt:     review.CreatedAt,
		Advantages:    review.Advantages,
		Disadvantages: review.Disadvantages,
		Comment:       review.Comment,
	}
	if review.Customer != nil {
		payload.CreatedBy = CustomerPayload{
			ID:       review.Customer.ID,
			Username: review.Customer.Username,
		}
	}
	return payload
}

// ToReviewPayloads преобразует список отзывов в формат ответа API
// Всегда возвращает не-nil срез, чтобы пустой список сериализовался как []
func ToReviewPayloads(reviews []Review) []ReviewPayload {
	payloads := make([]ReviewPayload, 0, len(reviews))
	for i := range reviews {
		payloads = append(payloads, ToReviewPayload(&reviews[i]))
	}
	return payloads
}

// ProblemDetail - структурированный ответ об ошибке в стиле problem-detail
type ProblemDetail struct {
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
}

// ValidationErrorResponse - ответ с перечнем ошибок валидации
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}
