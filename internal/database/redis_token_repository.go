package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"prompt-manager/internal/interfaces"
	"prompt-manager/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure redisTokenRepository implements TokenRepository
var _ interfaces.TokenRepository = (*redisTokenRepository)(nil)

const (
	accessKeyPrefix  = "access_uuid:"
	refreshKeyPrefix = "refresh_uuid:"
	userSetPrefix    = "user_tokens:"
)

type redisTokenRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTokenRepository creates a new Redis-backed TokenRepository.
func NewRedisTokenRepository(client *redis.Client, logger *zap.Logger) interfaces.TokenRepository {
	return &redisTokenRepository{
		client: client,
		logger: logger.Named("RedisTokenRepo"),
	}
}

func userSetKey(userID uuid.UUID) string {
	return userSetPrefix + userID.String()
}

// SetToken сохраняет пары access_uuid:<id> -> userID и refresh_uuid:<id> -> userID
// с их TTL и добавляет идентификаторы в множество user_tokens:<userID>.
func (r *redisTokenRepository) SetToken(ctx context.Context, userID uuid.UUID, td *models.TokenDetails) error {
	now := time.Now()
	accessTTL := time.Unix(td.AtExpires, 0).Sub(now)
	refreshTTL := time.Unix(td.RtExpires, 0).Sub(now)
	userIDStr := userID.String()

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, accessKeyPrefix+td.AccessUUID, userIDStr, accessTTL)
	pipe.Set(ctx, refreshKeyPrefix+td.RefreshUUID, userIDStr, refreshTTL)
	pipe.SAdd(ctx, userSetKey(userID), "access:"+td.AccessUUID, "refresh:"+td.RefreshUUID)
	// Множество живет не дольше последнего refresh-токена
	pipe.Expire(ctx, userSetKey(userID), refreshTTL)

	r.logger.Debug("Setting tokens in Redis",
		zap.String("userID", userIDStr),
		zap.String("accessUUID", td.AccessUUID),
		zap.String("refreshUUID", td.RefreshUUID),
		zap.Duration("accessTTL", accessTTL),
		zap.Duration("refreshTTL", refreshTTL),
	)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to set token details in redis", zap.Error(err), zap.String("userID", userIDStr))
		return fmt.Errorf("failed to set token details in redis: %w", err)
	}
	return nil
}

// DeleteTokens removes the given token UUIDs and their identifiers from the user's set.
func (r *redisTokenRepository) DeleteTokens(ctx context.Context, userID uuid.UUID, accessUUID, refreshUUID string) (int64, error) {
	var keys []string
	var identifiers []interface{}
	if accessUUID != "" {
		keys = append(keys, accessKeyPrefix+accessUUID)
		identifiers = append(identifiers, "access:"+accessUUID)
	}
	if refreshUUID != "" {
		keys = append(keys, refreshKeyPrefix+refreshUUID)
		identifiers = append(identifiers, "refresh:"+refreshUUID)
	}
	if len(keys) == 0 {
		r.logger.Warn("DeleteTokens called with no UUIDs", zap.String("userID", userID.String()))
		return 0, nil
	}

	pipe := r.client.TxPipeline()
	delCmd := pipe.Del(ctx, keys...)
	pipe.SRem(ctx, userSetKey(userID), identifiers...)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to delete tokens", zap.Error(err), zap.String("userID", userID.String()))
		return 0, fmt.Errorf("failed to delete tokens: %w", err)
	}

	deleted := delCmd.Val()
	r.logger.Info("Tokens deleted from Redis", zap.String("userID", userID.String()), zap.Int64("deletedCount", deleted))
	return deleted, nil
}

func (r *redisTokenRepository) lookup(ctx context.Context, key string) (uuid.UUID, error) {
	userIDStr, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Token not found in Redis", zap.String("key", key))
			return uuid.Nil, models.ErrTokenNotFound
		}
		r.logger.Error("Failed to get token from redis", zap.Error(err), zap.String("key", key))
		return uuid.Nil, fmt.Errorf("failed to get token from redis: %w", err)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		// Данные в Redis повреждены
		r.logger.Error("Failed to parse userID from redis", zap.Error(err), zap.String("key", key), zap.String("value", userIDStr))
		return uuid.Nil, fmt.Errorf("corrupted userID data in redis for key %s: %w", key, err)
	}
	return userID, nil
}

func (r *redisTokenRepository) GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (uuid.UUID, error) {
	return r.lookup(ctx, accessKeyPrefix+accessUUID)
}

func (r *redisTokenRepository) GetUserIDByRefreshUUID(ctx context.Context, refreshUUID string) (uuid.UUID, error) {
	return r.lookup(ctx, refreshKeyPrefix+refreshUUID)
}

// DeleteTokensByUserID removes all tokens associated with a user ID using the user-specific set.
func (r *redisTokenRepository) DeleteTokensByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	log := r.logger.With(zap.String("userID", userID.String()))
	setKey := userSetKey(userID)

	identifiers, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Error("Failed to get token identifiers from user set", zap.Error(err))
		return 0, fmt.Errorf("failed to retrieve token identifiers for user %s: %w", userID, err)
	}

	keys := make([]string, 0, len(identifiers))
	for _, identifier := range identifiers {
		tokType, tokUUID, ok := strings.Cut(identifier, ":")
		if !ok {
			log.Warn("Malformed token identifier found in user set", zap.String("identifier", identifier))
			continue
		}
		switch tokType {
		case "access":
			keys = append(keys, accessKeyPrefix+tokUUID)
		case "refresh":
			keys = append(keys, refreshKeyPrefix+tokUUID)
		default:
			log.Warn("Unknown token type in user set", zap.String("identifier", identifier))
		}
	}

	pipe := r.client.TxPipeline()
	var delCmd *redis.IntCmd
	if len(keys) > 0 {
		delCmd = pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, setKey)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error("Failed to delete tokens and set", zap.Error(err))
		return 0, fmt.Errorf("failed to delete tokens for user %s: %w", userID, err)
	}

	var deleted int64
	if delCmd != nil {
		deleted = delCmd.Val()
	}
	log.Info("Deleted all tokens for user", zap.Int64("deletedTokenKeys", deleted), zap.Int("identifiersFound", len(identifiers)))
	return deleted, nil
}
