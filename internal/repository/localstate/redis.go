package localstate

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type redisRepo struct {
	client *redis.Client
	logger logrus.FieldLogger
}

// NewRedis stores entries as string keys of the form storefront:<session>:<name>.
func NewRedis(client *redis.Client, logger logrus.FieldLogger) Repository {
	return &redisRepo{client: client, logger: componentLogger(logger, "redis")}
}

func redisKey(session, name string) string {
	return fmt.Sprintf("storefront:%s:%s", session, name)
}

func (r *redisRepo) Get(ctx context.Context, session, name string) ([]byte, error) {
	value, err := r.client.Get(ctx, redisKey(session, name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		r.logger.WithError(err).WithField("key", redisKey(session, name)).Error("get entry failed")
		return nil, err
	}
	return value, nil
}

func (r *redisRepo) Put(ctx context.Context, session, name string, value []byte) error {
	if err := r.client.Set(ctx, redisKey(session, name), value, 0).Err(); err != nil {
		r.logger.WithError(err).WithField("key", redisKey(session, name)).Error("put entry failed")
		return err
	}
	return nil
}

func (r *redisRepo) Delete(ctx context.Context, session, name string) error {
	if err := r.client.Del(ctx, redisKey(session, name)).Err(); err != nil {
		r.logger.WithError(err).WithField("key", redisKey(session, name)).Error("delete entry failed")
		return err
	}
	return nil
}
