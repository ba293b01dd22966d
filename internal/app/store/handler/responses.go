package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"onlinestore/internal/app/store/entity"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// newValidator создает валидатор с дополнительным правилом notblank:
// строка из одних пробелов не проходит, в отличие от required
func newValidator() *validator.Validate {
	v := validator.New()
	// Ошибка регистрации возможна только при пустом имени тега
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// respondProblem отправляет ошибку в формате problem-detail
func respondProblem(c *gin.Context, status int, detail string) {
	c.JSON(status, entity.ProblemDetail{
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: c.Request.URL.Path,
	})
}

// abortProblem прерывает цепочку middleware с ошибкой в формате problem-detail
func abortProblem(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, entity.ProblemDetail{
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: c.Request.URL.Path,
	})
}

// respondValidationErrors отправляет 400 с перечнем человекочитаемых сообщений
func respondValidationErrors(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, entity.ValidationErrorResponse{
		Errors: validationMessages(err),
	})
}

// validationMessages превращает ошибки валидатора в список сообщений,
// по одному на каждое нарушенное ограничение
func validationMessages(err error) []string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []string{"validation failed"}
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		field := strings.ToLower(fe.Field())

		switch fe.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		case "notblank":
			messages = append(messages, field+" is blank")
		case "min":
			if fe.Kind() == reflect.String {
				messages = append(messages, field+" is too short")
			} else {
				messages = append(messages, field+" below min")
			}
		case "max":
			if fe.Kind() == reflect.String {
				messages = append(messages, field+" is too long")
			} else {
				messages = append(messages, field+" above max")
			}
		case "gt":
			messages = append(messages, field+" must be positive")
		default:
			messages = append(messages, field+" is invalid")
		}
	}

	return messages
}
