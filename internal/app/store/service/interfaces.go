package service

import (
	"context"
	"time"

	"onlinestore/internal/app/store/entity"
)

// ProductCache - операции кеширования, реализуемые util.RedisClient
type ProductCache interface {
	GetProducts(ctx context.Context) ([]entity.Product, error)
	SetProducts(ctx context.Context, products []entity.Product, ttl time.Duration) error
	DeleteProducts(ctx context.Context) error
	SetRatings(ctx context.Context, ratings map[int64]float64) error
}

// MessagePublisher - отправка событий, реализуется util.KafkaProducer
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
}
