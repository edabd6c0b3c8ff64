// Form HTTP handlers.
//
// This file exposes the authenticated read endpoints for forms:
//   - GET /forms              (list all forms with the caller's completion status)
//   - GET /forms/{id}         (single form metadata)
//   - GET /forms/{id}/fields  (ordered field definitions)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses. The authenticated
// responder is taken from the Gin context set by the auth gate.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studsovet/go-forms-backend/internal/domain"
	"github.com/studsovet/go-forms-backend/internal/http/middleware"
	"github.com/studsovet/go-forms-backend/internal/repo"
	"github.com/studsovet/go-forms-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// FormService defines the read operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type FormService interface {
	// ListForms returns every form annotated with the responder's status.
	ListForms(ctx context.Context, responderID string) ([]services.FormSummary, error)
	// GetFormMeta returns one form's metadata annotated for the responder.
	GetFormMeta(ctx context.Context, formID int64, responderID string) (*services.FormSummary, error)
	// GetFormFields returns the form's field definitions in display order.
	GetFormFields(ctx context.Context, formID int64) ([]domain.FormField, error)
	// ListUserResponses returns the responder's submissions, newest first.
	ListUserResponses(ctx context.Context, responderID string) ([]repo.UserResponse, error)
	// ResponsesStats returns the count and latest timestamp of the
	// responder's submissions, for conditional responses.
	ResponsesStats(ctx context.Context, responderID string) (int64, *time.Time, error)
}

// SubmitService defines the response submission operation.
type SubmitService interface {
	// Submit validates and atomically records a response, returning its id.
	Submit(ctx context.Context, formID int64, answers []services.Answer, responderID string) (int64, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for authentication, forms, and
// responses. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	verifier  InitDataVerifier
	tokens    TokenIssuer
	formSvc   FormService
	submitSvc SubmitService
}

// New constructs a Handlers instance bound to the given services.
func New(verifier InitDataVerifier, tokens TokenIssuer, formSvc FormService, submitSvc SubmitService) *Handlers {
	return &Handlers{verifier: verifier, tokens: tokens, formSvc: formSvc, submitSvc: submitSvc}
}

// responderID returns the authenticated responder key placed in the context
// by the auth gate. Routes using these handlers sit behind RequireAuth, so
// an empty value only occurs in misconfigured routing.
func responderID(c *gin.Context) string {
	return middleware.ResponderID(c)
}

// formIDParam parses the :id path parameter as a positive integer.
func formIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

//
// DTOs
//

// ListFormsResponse wraps the list of forms for the caller.
type ListFormsResponse struct {
	Forms []services.FormSummary `json:"forms"`
}

// FormFieldsResponse wraps the ordered field definitions of one form.
type FormFieldsResponse struct {
	Fields []domain.FormField `json:"fields"`
}

//
// Handlers
//

// ListForms godoc
// @ID          listForms
// @Summary     List forms
// @Description Returns every form with its global status and the caller's own completion status.
// @Tags        Forms
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object} handlers.ListFormsResponse
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /forms [get]
func (h *Handlers) ListForms(c *gin.Context) {
	forms, err := h.formSvc.ListForms(c.Request.Context(), responderID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if forms == nil {
		forms = []services.FormSummary{}
	}
	ok(c, http.StatusOK, ListFormsResponse{Forms: forms})
}

// GetForm godoc
// @ID          getForm
// @Summary     Get form metadata
// @Description Returns one form's title and status plus the caller's completion status.
// @Tags        Forms
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true  "Form ID"  minimum(1)
//
// @Success     200  {object} services.FormSummary
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Form not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /forms/{id} [get]
func (h *Handlers) GetForm(c *gin.Context) {
	id, okID := formIDParam(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "form id must be a positive integer")
		return
	}

	form, err := h.formSvc.GetFormMeta(c.Request.Context(), id, responderID(c))
	if err != nil {
		if errors.Is(err, services.ErrFormNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "form not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, form)
}

// GetFormFields godoc
// @ID          getFormFields
// @Summary     Get form fields
// @Description Returns the form's field definitions in display order.
// @Tags        Forms
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true  "Form ID"  minimum(1)
//
// @Success     200  {object} handlers.FormFieldsResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Form not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /forms/{id}/fields [get]
func (h *Handlers) GetFormFields(c *gin.Context) {
	id, okID := formIDParam(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "form id must be a positive integer")
		return
	}
	ctx := c.Request.Context()

	// Field listing for a missing form is a 404, not an empty list.
	if _, err := h.formSvc.GetFormMeta(ctx, id, responderID(c)); err != nil {
		if errors.Is(err, services.ErrFormNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "form not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	fields, err := h.formSvc.GetFormFields(ctx, id)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if fields == nil {
		fields = []domain.FormField{}
	}
	ok(c, http.StatusOK, FormFieldsResponse{Fields: fields})
}
