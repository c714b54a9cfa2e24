package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chatsphere/backend/internal/model"

	"github.com/redis/go-redis/v9"
)

const summaryCacheTTL = time.Minute

// SummaryCacheRepository keeps rendered chat-summary pages in redis so the
// list endpoint does not hit postgres on every poll.
type SummaryCacheRepository interface {
	GetSummaries(ctx context.Context, userID uint, page, size int) ([]model.ChatSummary, bool, error)
	SaveSummaries(ctx context.Context, userID uint, page, size int, summaries []model.ChatSummary) error
	Invalidate(ctx context.Context, userIDs ...uint) error
}

type summaryCacheRepository struct {
	rdb *redis.Client
}

func NewSummaryCacheRepository(rdb *redis.Client) SummaryCacheRepository {
	return &summaryCacheRepository{rdb: rdb}
}

func (r *summaryCacheRepository) pageKey(userID uint, page, size int) string {
	return fmt.Sprintf("user:%d:summaries:%d:%d", userID, page, size)
}

func (r *summaryCacheRepository) userPattern(userID uint) string {
	return fmt.Sprintf("user:%d:summaries:*", userID)
}

func (r *summaryCacheRepository) GetSummaries(ctx context.Context, userID uint, page, size int) ([]model.ChatSummary, bool, error) {
	data, err := r.rdb.Get(ctx, r.pageKey(userID, page, size)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get summaries from redis: %w", err)
	}

	var summaries []model.ChatSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached summaries: %w", err)
	}
	return summaries, true, nil
}

func (r *summaryCacheRepository) SaveSummaries(ctx context.Context, userID uint, page, size int, summaries []model.ChatSummary) error {
	data, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("failed to marshal summaries: %w", err)
	}
	return r.rdb.Set(ctx, r.pageKey(userID, page, size), data, summaryCacheTTL).Err()
}

// Invalidate drops every cached page for the given users.
func (r *summaryCacheRepository) Invalidate(ctx context.Context, userIDs ...uint) error {
	for _, userID := range userIDs {
		iter := r.rdb.Scan(ctx, 0, r.userPattern(userID), 0).Iterator()
		for iter.Next(ctx) {
			if err := r.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return fmt.Errorf("failed to drop cached summaries: %w", err)
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to scan cached summaries: %w", err)
		}
	}
	return nil
}
