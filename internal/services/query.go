// Package services – QueryService
//
// Read paths over forms and responses: listing forms with the responder's
// completion status, fetching form metadata and field definitions, and the
// responder's submission history. Thin composition over the repo layer, no
// writes.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/studsovet/go-forms-backend/internal/domain"
	"github.com/studsovet/go-forms-backend/internal/repo"
)

// FormSummary is a form annotated with the requesting responder's own
// completion status. UserStatus reflects only whether that responder has
// submitted, independent of the form's global status.
type FormSummary struct {
	domain.Form
	UserStatus string `json:"user_status"`
}

// QueryService implements the read-only use-cases of the forms API.
type QueryService struct {
	// DB is the database handle used for all read operations.
	DB *gorm.DB
}

// ListForms returns every form ordered by id, each annotated with the
// responder's completion status.
func (s *QueryService) ListForms(ctx context.Context, responderID string) ([]FormSummary, error) {
	forms, err := repo.ListForms(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	completed, err := repo.CompletedFormIDs(ctx, s.DB, responderID)
	if err != nil {
		return nil, err
	}

	out := make([]FormSummary, 0, len(forms))
	for _, f := range forms {
		status := domain.UserStatusNotCompleted
		if _, ok := completed[f.ID]; ok {
			status = domain.UserStatusCompleted
		}
		out = append(out, FormSummary{Form: f, UserStatus: status})
	}
	return out, nil
}

// GetFormMeta returns one form with the responder's completion status, or
// ErrFormNotFound.
func (s *QueryService) GetFormMeta(ctx context.Context, formID int64, responderID string) (*FormSummary, error) {
	form, err := repo.GetForm(ctx, s.DB, formID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}

	has, err := repo.HasResponse(ctx, s.DB, formID, responderID)
	if err != nil {
		return nil, err
	}
	status := domain.UserStatusNotCompleted
	if has {
		status = domain.UserStatusCompleted
	}
	return &FormSummary{Form: *form, UserStatus: status}, nil
}

// GetFormFields returns the form's field definitions ordered by position,
// then id. A form with no fields yields an empty slice.
func (s *QueryService) GetFormFields(ctx context.Context, formID int64) ([]domain.FormField, error) {
	return repo.ListFormFields(ctx, s.DB, formID)
}

// ListUserResponses returns the responder's submissions, newest first.
func (s *QueryService) ListUserResponses(ctx context.Context, responderID string) ([]repo.UserResponse, error) {
	return repo.ListUserResponses(ctx, s.DB, responderID)
}

// ResponsesStats returns the responder's submission count and latest
// submission time, used by the HTTP layer for conditional responses.
func (s *QueryService) ResponsesStats(ctx context.Context, responderID string) (int64, *time.Time, error) {
	return repo.UserResponsesStats(ctx, s.DB, responderID)
}
