package cache

import (
	"context"
	"log/slog"
)

// SafeDelete deletes cache keys, logging instead of failing the caller. Cache
// invalidation must never break a scoring pass.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if helper == nil {
		return
	}
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateStudentViews drops all cached read-side views for one student.
// Called after each committed scoring pass.
func InvalidateStudentViews(ctx context.Context, cm *CacheManager, studentID string) {
	if cm == nil {
		return
	}
	SafeDelete(ctx, cm.Analysis, studentID)
	SafeDelete(ctx, cm.Progress, studentID)
}
