package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"onlinestore/internal/app/store/entity"
	"onlinestore/internal/app/store/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, customer *entity.Customer, productID int64, req *entity.CreateReviewRequest) (*entity.Review, error)
	GetAllProductReviews(ctx context.Context, productID int64) ([]entity.Review, error)
}

type ReviewHandler struct {
	reviewService ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     newValidator(),
	}
}

// GetProductReviews обрабатывает GET /products/:productId/reviews
// Отсутствующий товар и товар без отзывов - разные ответы (404 против пустого списка)
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	reviews, err := h.reviewService.GetAllProductReviews(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondProblem(c, http.StatusNotFound, "product not found")
			return
		}
		respondProblem(c, http.StatusInternalServerError, "failed to get reviews")
		return
	}

	c.JSON(http.StatusOK, entity.ToReviewPayloads(reviews))
}

// CreateReview обрабатывает POST /products/:productId/reviews
// Автор отзыва - покупатель, разрешённый middleware синхронизации
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	customer, ok := currentCustomer(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	var req entity.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ValidationErrorResponse{
			Errors: []string{"invalid request body"},
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondValidationErrors(c, err)
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), customer, productID, &req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondProblem(c, http.StatusNotFound, "product not found")
			return
		}
		respondProblem(c, http.StatusInternalServerError, "failed to create review")
		return
	}

	c.Header("Location", fmt.Sprintf("/products/%d/reviews/%d", productID, review.ID))
	c.JSON(http.StatusCreated, entity.ToReviewPayload(review))
}
