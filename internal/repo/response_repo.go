// Package repo implements the data persistence layer for the forms domain,
// backed by GORM. This file provides repository functions for responses and
// their per-field answer rows.
//
// Responses are write-once: CreateResponse and CreateResponseFields are only
// ever called inside the submission transaction, and nothing here updates or
// deletes a committed response.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/studsovet/go-forms-backend/internal/domain"
)

// UserResponse is the projection returned for a responder's submission
// history: the response joined with its form's title.
type UserResponse struct {
	ID        int64     `json:"id"`
	FormID    int64     `json:"form_id"`
	FormTitle string    `json:"form_title"`
	CreatedAt time.Time `json:"created_at"`
}

// HasResponse reports whether a response already exists for the given
// (formID, responderID) pair.
func HasResponse(ctx context.Context, db *gorm.DB, formID int64, responderID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Response{}).
		Where("form_id = ? AND responder_id = ?", formID, responderID).
		Count(&n).Error
	return n > 0, err
}

// CompletedFormIDs returns the set of form ids the responder has already
// submitted to. Used to annotate form listings with per-user status.
func CompletedFormIDs(ctx context.Context, db *gorm.DB, responderID string) (map[int64]struct{}, error) {
	var ids []int64
	err := db.WithContext(ctx).
		Model(&domain.Response{}).
		Distinct("form_id").
		Where("responder_id = ?", responderID).
		Pluck("form_id", &ids).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// CreateResponse inserts a response row for (formID, responderID) with
// CreatedAt set to UTC now and returns it with the generated id. A racing
// duplicate surfaces as a unique-constraint error from the driver.
func CreateResponse(ctx context.Context, db *gorm.DB, formID int64, responderID string) (*domain.Response, error) {
	r := &domain.Response{
		FormID:      formID,
		ResponderID: responderID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// CreateResponseFields inserts the answer rows of a response in one batch.
// Callers must invoke it in the same transaction as CreateResponse.
func CreateResponseFields(ctx context.Context, db *gorm.DB, rows []domain.ResponseField) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&rows).Error
}

// ListUserResponses returns the responder's submissions joined with form
// titles, newest first.
func ListUserResponses(ctx context.Context, db *gorm.DB, responderID string) ([]UserResponse, error) {
	var out []UserResponse
	err := db.WithContext(ctx).
		Model(&domain.Response{}).
		Select("responses.id, responses.form_id, forms.title AS form_title, responses.created_at").
		Joins("JOIN forms ON forms.id = responses.form_id").
		Where("responses.responder_id = ?", responderID).
		Order("responses.created_at DESC").
		Scan(&out).Error
	return out, err
}
