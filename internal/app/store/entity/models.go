package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product представляет товар магазина
type Product struct {
	ID    int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Title string  `json:"title" gorm:"size:50;not null"`
	Price float64 `json:"price" gorm:"not null"`
}

// Customer представляет покупателя, связанного с пользователем внешнего identity provider
// Связь с OIDC-пользователем хранится в отдельной таблице customer_oidc_links
// и никогда не моделируется полем Customer
type Customer struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username string    `json:"username" gorm:"not null"`
}

// Review представляет отзыв на товар
// Принадлежит ровно одному товару и ровно одному покупателю
type Review struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID     int64     `json:"-" gorm:"not null;index"`
	CustomerID    uuid.UUID `json:"-" gorm:"type:uuid;not null"`
	Customer      *Customer `json:"-" gorm:"foreignKey:CustomerID"`
	Rating        int       `json:"rating" gorm:"not null"`
	CreatedAt     time.Time `json:"createdAt"` // Проставляется сервером при создании, неизменяемо
	Advantages    string    `json:"advantages"`
	Disadvantages string    `json:"disadvantages"`
	Comment       string    `json:"comment"`
}

// ProductEvent представляет событие изменения товара для Kafka
type ProductEvent struct {
	EventType string    `json:"event_type"` // PRODUCT_UPDATED
	ProductID int64     `json:"product_id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// ReviewEvent представляет событие создания отзыва для Kafka
type ReviewEvent struct {
	EventType  string    `json:"event_type"` // REVIEW_CREATED
	ReviewID   int64     `json:"review_id"`
	ProductID  int64     `json:"product_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Rating     int       `json:"rating"`
	Timestamp  time.Time `json:"timestamp"`
}
