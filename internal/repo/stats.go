// Package repo implements the data persistence layer for the forms domain,
// backed by GORM. This file provides small aggregate queries used primarily
// for conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/studsovet/go-forms-backend/internal/domain"
)

// UserResponsesStats returns aggregate metadata for a responder's
// submissions: the total number of rows and the most recent CreatedAt among
// them. When the responder has never submitted, the count is 0 and
// maxCreatedAt is nil.
func UserResponsesStats(ctx context.Context, db *gorm.DB, responderID string) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Response{}).Where("responder_id = ?", responderID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
