// Package repo implements the data persistence layer for the forms domain,
// backed by GORM. This file provides repository functions for forms and
// their field definitions.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only
// persistence and query composition. Field definitions are strictly
// read-only here; the one mutation a submission performs on a form
// (the active→inprocess transition) lives in MarkFormInProcess.
//
// Error semantics:
//   - When a form is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/studsovet/go-forms-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ListForms returns every form ordered by id ascending. It returns an empty
// slice when no forms exist. On DB error, it returns the error.
func ListForms(ctx context.Context, db *gorm.DB) ([]domain.Form, error) {
	var out []domain.Form
	err := db.WithContext(ctx).
		Order("id").
		Find(&out).Error
	return out, err
}

// GetForm fetches a single form by id, or ErrNotFound if missing.
func GetForm(ctx context.Context, db *gorm.DB, formID int64) (*domain.Form, error) {
	var f domain.Form
	if err := db.WithContext(ctx).First(&f, "id = ?", formID).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFormFields returns the field definitions of a form ordered by explicit
// position, then id. Option lists are decoded from their JSON column as part
// of the scan.
func ListFormFields(ctx context.Context, db *gorm.DB, formID int64) ([]domain.FormField, error) {
	var out []domain.FormField
	err := db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("position, id").
		Find(&out).Error
	return out, err
}

// MarkFormInProcess transitions a form from "active" to "inprocess".
// It is a no-op when the form is in any other status, and reports whether
// the transition happened.
func MarkFormInProcess(ctx context.Context, db *gorm.DB, formID int64) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Form{}).
		Where("id = ? AND status = ?", formID, domain.StatusActive).
		Update("status", domain.StatusInProcess)
	return res.RowsAffected > 0, res.Error
}
