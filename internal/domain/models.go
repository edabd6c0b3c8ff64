// Package domain defines the persistence models for forms, form fields, and
// submitted responses. These types are mapped with GORM and form the core
// data layer of the forms backend.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Form statuses the submission core cares about. Forms may carry other
// statuses (managed by the authoring tool); the core passes those through
// untouched and only ever flips StatusActive to StatusInProcess.
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusInProcess = "inprocess"
	StatusClosed    = "closed"
)

// Per-user completion markers attached to form reads.
const (
	UserStatusCompleted    = "completed"
	UserStatusNotCompleted = "not_completed"
)

// FieldTypeChoice marks fields whose answers must come from a fixed option set.
const FieldTypeChoice = "choice"

// StringList is an ordered sequence of strings stored as a JSON array in a
// single text column. Field options are decoded once when the field row is
// loaded, never re-parsed per answer.
type StringList []string

// Scan implements sql.Scanner, decoding the JSON array column.
func (s *StringList) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("field_options: unsupported column type")
	}
	if len(raw) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(raw, s)
}

// Value implements driver.Valuer, encoding the list as a JSON array.
// A nil list is stored as SQL NULL.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Contains reports whether v is a member of the list.
func (s StringList) Contains(v string) bool {
	for _, o := range s {
		if o == v {
			return true
		}
	}
	return false
}

// Form represents a dynamically defined form. Forms are authored by an
// external tool; this backend reads them and advances the status on the
// first accepted response.
//
// Fields:
//   - ID: positive integer primary key (assigned by the authoring tool).
//   - Title: human-readable form title (1..255 chars).
//   - Status: lifecycle status (draft, active, inprocess, closed, ...).
type Form struct {
	ID     int64  `json:"id"     gorm:"primaryKey"`
	Title  string `json:"title"  gorm:"type:varchar(255);not null"`
	Status string `json:"status" gorm:"type:varchar(32);not null;default:'draft'"`
}

// TableName returns the database table name for Form.
func (Form) TableName() string { return "forms" }

// FormField is a single field definition inside a form. Field rows are
// read-only from this backend's perspective.
//
// Fields:
//   - ID: positive integer primary key.
//   - FormID: foreign key to the owning form (indexed).
//   - FieldType: field kind, e.g. "text" or "choice".
//   - FieldLabel: label shown to the respondent (1..255 chars).
//   - IsRequired: whether an answer must be provided.
//   - FieldOptions: allowed values, only meaningful when FieldType is "choice".
//   - Description: optional helper text.
//   - Position: explicit ordering within the form (ties broken by id).
type FormField struct {
	ID           int64      `json:"id"                    gorm:"primaryKey"`
	FormID       int64      `json:"form_id"               gorm:"not null;index:idx_form_fields_form"`
	FieldType    string     `json:"type"                  gorm:"column:field_type;type:varchar(32);not null"`
	FieldLabel   string     `json:"label"                 gorm:"column:field_label;type:varchar(255);not null"`
	IsRequired   bool       `json:"required"              gorm:"column:is_required;not null"`
	FieldOptions StringList `json:"options,omitempty"     gorm:"column:field_options;type:text"`
	Description  *string    `json:"description,omitempty" gorm:"type:text"`
	Position     int        `json:"position"              gorm:"not null;default:0"`

	// Form is the owning form. Field definitions disappear with their form.
	Form Form `json:"-" gorm:"foreignKey:FormID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for FormField.
func (FormField) TableName() string { return "form_fields" }

// Response records that a responder submitted a form. At most one response
// exists per (form_id, responder_id); the unique index backstops the
// transactional duplicate check in the submission service.
type Response struct {
	ID          int64     `json:"id"           gorm:"primaryKey;autoIncrement"`
	FormID      int64     `json:"form_id"      gorm:"not null;uniqueIndex:ux_responses_form_responder,priority:1"`
	CreatedAt   time.Time `json:"created_at"`
	ResponderID string    `json:"responder_id" gorm:"type:varchar(64);not null;index;uniqueIndex:ux_responses_form_responder,priority:2"`

	Form Form `json:"-" gorm:"foreignKey:FormID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Response.
func (Response) TableName() string { return "responses" }

// ResponseField is one answered field within a response. Rows are written
// atomically with their parent response and never mutated afterwards.
// Value may be NULL when an optional field was submitted without a value.
type ResponseField struct {
	ID          int64   `json:"id"           gorm:"primaryKey;autoIncrement"`
	ResponseID  int64   `json:"response_id"  gorm:"not null;index:idx_response_fields_response"`
	FieldID     int64   `json:"field_id"     gorm:"not null"`
	Value       *string `json:"value"        gorm:"type:text"`
	ResponderID string  `json:"responder_id" gorm:"type:varchar(64);not null"`

	// Response is the parent submission. Answer rows are cascade-deleted
	// with it.
	Response Response `json:"-" gorm:"foreignKey:ResponseID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ResponseField.
func (ResponseField) TableName() string { return "response_fields" }
