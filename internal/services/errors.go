// Package services defines the business logic for form reads and response
// submission. This file centralizes service-level error values so that they
// can be consistently returned by service methods and checked by callers.
//
// Validation errors carry the offending field so callers can tell the
// respondent exactly what to correct. Translation into HTTP status codes is
// performed at the handler layer.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrFormNotFound indicates that the referenced form does not exist.
	ErrFormNotFound = errors.New("form not found")

	// ErrAlreadyResponded is returned when the responder has already
	// submitted a response to this form. It is a conflict, not a validation
	// failure: resubmitting the same payload will never succeed.
	ErrAlreadyResponded = errors.New("already responded to this form")

	// ErrNoAnswers is returned when a submission carries no answers at all.
	ErrNoAnswers = errors.New("submission has no answers")
)

// UnknownFieldError reports an answer referencing a field that does not
// belong to the form.
type UnknownFieldError struct {
	FieldID string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("field %s does not belong to the form", e.FieldID)
}

// MissingRequiredFieldError reports a required field left unanswered or
// answered with a blank value.
type MissingRequiredFieldError struct {
	FieldID string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("required field %s is missing or empty", e.FieldID)
}

// InvalidChoiceError reports a choice-field answer outside the field's
// option set.
type InvalidChoiceError struct {
	FieldID string
	Value   string
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("invalid choice for field %s: %s", e.FieldID, e.Value)
}
