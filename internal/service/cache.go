package service

import (
	"context"
	"log"

	"chatsphere/backend/internal/model"
	"chatsphere/backend/internal/repository"
)

// invalidateSummaries drops cached summary pages for every member of the chat.
// Cache failures are logged, never surfaced: the cache is an optimization.
func invalidateSummaries(ctx context.Context, cache repository.SummaryCacheRepository, chat *model.Chat) {
	if cache == nil || chat == nil {
		return
	}

	ids := make([]uint, 0, len(chat.Users))
	for _, u := range chat.Users {
		ids = append(ids, u.ID)
	}

	if err := cache.Invalidate(ctx, ids...); err != nil {
		log.Printf("failed to invalidate summary cache for chat %d: %v", chat.ID, err)
	}
}
