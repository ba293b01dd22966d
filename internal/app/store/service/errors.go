package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrProductNotFound = errors.New("product not found")

	// ErrIntegrityFault означает, что связь subject - покупатель указывает
	// на отсутствующую строку покупателя. Это повреждение данных:
	// ошибка логируется и уходит клиенту как общая серверная, без повторов
	ErrIntegrityFault = errors.New("customer link integrity fault")
)
