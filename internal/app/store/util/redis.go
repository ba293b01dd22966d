package util

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"onlinestore/internal/app/store/entity"
	"onlinestore/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	serviceName = "online-store"

	productsCacheKey = "products:all"
	ratingsCacheKey  = "products:ratings"
)

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// SetProducts кеширует полный список товаров
func (r *RedisClient) SetProducts(ctx context.Context, products []entity.Product, ttl time.Duration) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}

	if err := r.client.Set(ctx, productsCacheKey, data, ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, "set")
		return fmt.Errorf("failed to set products in cache: %w", err)
	}

	return nil
}

// GetProducts возвращает закешированный список товаров
// (nil, nil) означает cache miss
func (r *RedisClient) GetProducts(ctx context.Context) ([]entity.Product, error) {
	data, err := r.client.Get(ctx, productsCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		metrics.RecordRedisError(serviceName, "get")
		return nil, fmt.Errorf("failed to get products from cache: %w", err)
	}

	var products []entity.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal products: %w", err)
	}

	return products, nil
}

// DeleteProducts инвалидирует кеш списка товаров после любой мутации
func (r *RedisClient) DeleteProducts(ctx context.Context) error {
	if err := r.client.Del(ctx, productsCacheKey).Err(); err != nil {
		metrics.RecordRedisError(serviceName, "del")
		return fmt.Errorf("failed to delete products from cache: %w", err)
	}
	return nil
}

// SetRatings сохраняет агрегированные рейтинги товаров в hash
// product_id -> средний рейтинг
func (r *RedisClient) SetRatings(ctx context.Context, ratings map[int64]float64) error {
	if len(ratings) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(ratings))
	for productID, rating := range ratings {
		fields[strconv.FormatInt(productID, 10)] = rating
	}

	if err := r.client.HSet(ctx, ratingsCacheKey, fields).Err(); err != nil {
		metrics.RecordRedisError(serviceName, "hset")
		return fmt.Errorf("failed to set ratings in cache: %w", err)
	}

	return nil
}

// GetRating возвращает средний рейтинг товара
// (0, false, nil) означает, что рейтинг ещё не посчитан
func (r *RedisClient) GetRating(ctx context.Context, productID int64) (float64, bool, error) {
	value, err := r.client.HGet(ctx, ratingsCacheKey, strconv.FormatInt(productID, 10)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		metrics.RecordRedisError(serviceName, "hget")
		return 0, false, fmt.Errorf("failed to get rating from cache: %w", err)
	}

	rating, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse cached rating: %w", err)
	}

	return rating, true, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
