package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"onlinestore/internal/app/store/entity"
	"onlinestore/internal/app/store/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ProductServiceInterface interface {
	GetAllProducts(ctx context.Context) ([]entity.Product, error)
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)
	CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *entity.UpdateProductRequest) error
	DeleteProduct(ctx context.Context, id int64) error
}

type ProductHandler struct {
	productService ProductServiceInterface
	validator      *validator.Validate
}

func NewProductHandler(productService ProductServiceInterface) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      newValidator(),
	}
}

// GetAllProducts обрабатывает GET /products
func (h *ProductHandler) GetAllProducts(c *gin.Context) {
	products, err := h.productService.GetAllProducts(c.Request.Context())
	if err != nil {
		respondProblem(c, http.StatusInternalServerError, "failed to get products")
		return
	}

	if products == nil {
		products = []entity.Product{}
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct обрабатывает GET /products/:productId
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondProblem(c, http.StatusNotFound, "product not found")
			return
		}
		respondProblem(c, http.StatusInternalServerError, "failed to get product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct обрабатывает POST /products
// Валидация выполняется на границе; сервис получает уже проверенный запрос
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest
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

	product, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondProblem(c, http.StatusInternalServerError, "failed to create product")
		return
	}

	c.Header("Location", fmt.Sprintf("/products/%d", product.ID))
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct обрабатывает PATCH /products/:productId
// Обновление полное: title и price заменяются целиком, успех - 204 без тела
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	var req entity.UpdateProductRequest
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

	if err := h.productService.UpdateProduct(c.Request.Context(), productID, &req); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondProblem(c, http.StatusNotFound, "product not found")
			return
		}
		respondProblem(c, http.StatusInternalServerError, "failed to update product")
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteProduct обрабатывает DELETE /products/:productId
// Идемпотентно: 204 и для уже отсутствующего товара
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), productID); err != nil {
		respondProblem(c, http.StatusInternalServerError, "failed to delete product")
		return
	}

	c.Status(http.StatusNoContent)
}

// parseProductID разбирает числовой ID из пути
// Нечисловой ID означает несуществующий ресурс, а не плохой запрос
func parseProductID(c *gin.Context) (int64, bool) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		respondProblem(c, http.StatusNotFound, "product not found")
		return 0, false
	}
	return productID, true
}
