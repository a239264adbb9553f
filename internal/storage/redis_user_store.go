package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"snippet_bot/internal/model"
)

const userKeyPrefix = "user:"

// RedisUserStore implements UserStore on a Redis hash-per-record layout:
// JSON values under "user:<name>".
type RedisUserStore struct {
	client *redis.Client
}

// NewRedisUserStore creates a new RedisUserStore instance
func NewRedisUserStore(client *redis.Client) *RedisUserStore {
	return &RedisUserStore{client: client}
}

func (s *RedisUserStore) Get(ctx context.Context, name string) (*model.User, error) {
	data, err := s.client.Get(ctx, userKeyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", name, err)
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user %q: %w", name, err)
	}
	return &user, nil
}

func (s *RedisUserStore) List(ctx context.Context) ([]*model.User, error) {
	var users []*model.User

	iter := s.client.Scan(ctx, 0, userKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			// deleted between SCAN and GET
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get user %q: %w", iter.Val(), err)
		}

		var user model.User
		if err := json.Unmarshal(data, &user); err != nil {
			return nil, fmt.Errorf("failed to decode user %q: %w", iter.Val(), err)
		}
		users = append(users, &user)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}

	return users, nil
}

func (s *RedisUserStore) Save(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user %q: %w", user.Name, err)
	}
	if err := s.client.Set(ctx, userKeyPrefix+user.Name, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save user %q: %w", user.Name, err)
	}
	return nil
}
