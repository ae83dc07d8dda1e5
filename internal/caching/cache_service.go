package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"adminportal/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Company directory caching
	GetCompany(ctx context.Context, code uuid.UUID) (*models.Company, error)
	SetCompany(ctx context.Context, company *models.Company, ttl time.Duration) error
	GetCompanyList(ctx context.Context) ([]*models.Company, error)
	SetCompanyList(ctx context.Context, companies []*models.Company, ttl time.Duration) error

	// Rate limiting (fixed window)
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port as well as bare host:port.
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetCompany(ctx context.Context, code uuid.UUID) (*models.Company, error) {
	key := fmt.Sprintf("adminportal:company:%s", code.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var company models.Company
	if err := json.Unmarshal(data, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *redisCacheService) SetCompany(ctx context.Context, company *models.Company, ttl time.Duration) error {
	key := fmt.Sprintf("adminportal:company:%s", company.Code.String())
	data, err := json.Marshal(company)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetCompanyList(ctx context.Context) ([]*models.Company, error) {
	data, err := r.client.Get(ctx, "adminportal:companies").Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var companies []*models.Company
	if err := json.Unmarshal(data, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *redisCacheService) SetCompanyList(ctx context.Context, companies []*models.Company, ttl time.Duration) error {
	data, err := json.Marshal(companies)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, "adminportal:companies", data, ttl).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("adminportal:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
