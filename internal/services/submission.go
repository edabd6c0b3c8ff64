// Package services – SubmissionService
//
// This file implements the response submission engine: it validates a
// candidate response against the form's field definitions (membership,
// required coverage, choice options), enforces at-most-one response per
// (form, responder), and commits the response with all its field values in
// a single transaction. Service-level errors (UnknownFieldError,
// MissingRequiredFieldError, InvalidChoiceError, ErrAlreadyResponded,
// ErrFormNotFound) are returned for predictable cases so handlers can map
// them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/studsovet/go-forms-backend/internal/domain"
	"github.com/studsovet/go-forms-backend/internal/repo"
)

// MaxValueLen is the cap applied to answer values. Longer values are
// truncated, not rejected.
const MaxValueLen = 10000

// Answer is one field's submitted value. A nil Value records an optional
// field that was deliberately left blank.
type Answer struct {
	FieldID string
	Value   *string
}

// SubmissionService validates and persists form responses atomically.
// It is safe for concurrent use; every Submit call runs in its own
// transaction on the provided GORM handle.
type SubmissionService struct {
	// DB is the database handle used for all submission operations.
	DB *gorm.DB
}

// Submit validates answers against formID's field set and, if valid,
// commits the response on behalf of responderID. It returns the generated
// response id.
//
// Validation runs in order, first violation wins:
//  1. the form must exist (ErrFormNotFound);
//  2. every answer must reference a field of the form (UnknownFieldError);
//  3. every required field must have a non-blank answer
//     (MissingRequiredFieldError);
//  4. answered choice fields must use one of the field's options
//     (InvalidChoiceError);
//  5. the responder must not have responded before (ErrAlreadyResponded).
//
// Concurrency & atomicity:
//   - Checks and writes share one transaction, so no partial state is ever
//     visible. Two concurrent submissions from the same responder cannot
//     both succeed: the loser of the race hits the unique
//     (form_id, responder_id) index and is reported as ErrAlreadyResponded.
//
// Side effects on success: one responses row, one response_fields row per
// answer (values truncated at MaxValueLen), and the form's status advanced
// from "active" to "inprocess" on the first accepted response.
func (s *SubmissionService) Submit(ctx context.Context, formID int64, answers []Answer, responderID string) (int64, error) {
	if len(answers) == 0 {
		return 0, ErrNoAnswers
	}

	var responseID int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetForm(ctx, tx, formID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrFormNotFound
			}
			return err
		}

		fields, err := repo.ListFormFields(ctx, tx, formID)
		if err != nil {
			return err
		}
		fieldSet := make(map[string]*domain.FormField, len(fields))
		for i := range fields {
			fieldSet[strconv.FormatInt(fields[i].ID, 10)] = &fields[i]
		}

		// 2) Membership: answers may only reference the form's own fields.
		for _, a := range answers {
			if _, ok := fieldSet[a.FieldID]; !ok {
				return &UnknownFieldError{FieldID: a.FieldID}
			}
		}

		// 3) Required coverage. Fields arrive ordered (position, id), so the
		// first violation is deterministic.
		answered := make(map[string]*string, len(answers))
		for _, a := range answers {
			answered[a.FieldID] = a.Value
		}
		for i := range fields {
			if !fields[i].IsRequired {
				continue
			}
			key := strconv.FormatInt(fields[i].ID, 10)
			v, ok := answered[key]
			if !ok || v == nil || strings.TrimSpace(*v) == "" {
				return &MissingRequiredFieldError{FieldID: key}
			}
		}

		// 4) Choice validity, only for non-blank answered values.
		for _, a := range answers {
			if a.Value == nil || *a.Value == "" {
				continue
			}
			f := fieldSet[a.FieldID]
			if f.FieldType == domain.FieldTypeChoice && !f.FieldOptions.Contains(*a.Value) {
				return &InvalidChoiceError{FieldID: a.FieldID, Value: *a.Value}
			}
		}

		// 5) At most one response per (form, responder).
		exists, err := repo.HasResponse(ctx, tx, formID, responderID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyResponded
		}

		resp, err := repo.CreateResponse(ctx, tx, formID, responderID)
		if err != nil {
			// A racing submission from the same responder trips the unique
			// index between the check above and this insert.
			if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicate(err) {
				return ErrAlreadyResponded
			}
			return err
		}

		rows := make([]domain.ResponseField, 0, len(answers))
		for _, a := range answers {
			rows = append(rows, domain.ResponseField{
				ResponseID:  resp.ID,
				FieldID:     fieldSet[a.FieldID].ID,
				Value:       truncateValue(a.Value),
				ResponderID: responderID,
			})
		}
		if err := repo.CreateResponseFields(ctx, tx, rows); err != nil {
			return err
		}

		// First accepted response moves the form out of "active".
		if _, err := repo.MarkFormInProcess(ctx, tx, formID); err != nil {
			return err
		}

		responseID = resp.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return responseID, nil
}

// truncateValue caps an answer value at MaxValueLen runes without splitting
// a code point. NULL stays NULL.
func truncateValue(v *string) *string {
	if v == nil {
		return nil
	}
	if len(*v) <= MaxValueLen {
		return v
	}
	runes := []rune(*v)
	if len(runes) <= MaxValueLen {
		return v
	}
	t := string(runes[:MaxValueLen])
	return &t
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
