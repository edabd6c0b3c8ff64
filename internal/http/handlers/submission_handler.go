// Submission HTTP handlers.
//
// This file exposes the authenticated write path and the responder's own
// history:
//   - POST /forms/{id}/responses  (submit a response, exactly once per responder)
//   - GET  /me/responses          (submission history, newest first, ETag support)
//
// The submission handler is deliberately a straight translation layer: all
// validation order and atomicity guarantees live in the submission service.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studsovet/go-forms-backend/internal/repo"
	"github.com/studsovet/go-forms-backend/internal/services"
)

//
// DTOs
//

// SubmitAnswer is one answered field in a submission. A null value is kept
// as null; it still satisfies field membership but not a required field.
type SubmitAnswer struct {
	FieldID string  `json:"field_id" binding:"required" example:"3"`
	Value   *string `json:"value" example:"Economics"`
}

// SubmitRequest is the JSON payload for submitting a form response.
type SubmitRequest struct {
	Answers []SubmitAnswer `json:"answers" binding:"required,min=1,max=100,dive"`
}

// SubmitResponse is returned on a successful submission.
type SubmitResponse struct {
	Success    bool  `json:"success"`
	ResponseID int64 `json:"response_id"`
}

// MyResponsesResponse wraps the caller's submission history.
type MyResponsesResponse struct {
	Responses []repo.UserResponse `json:"responses"`
}

//
// Handlers
//

// SubmitResponseHandler godoc
// @ID          submitResponse
// @Summary     Submit a form response
// @Description Validates and atomically records the caller's response. Each responder may answer a form at most once.
// @Tags        Responses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  int                      true  "Form ID"  minimum(1)
// @Param       body  body  handlers.SubmitRequest  true  "Answers payload"
//
// @Success     201  {object} handlers.SubmitResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     404  {object} handlers.ErrorResponse "Form not found"
// @Failure     409  {object} handlers.ErrorResponse "Already responded"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /forms/{id}/responses [post]
func (h *Handlers) SubmitResponseHandler(c *gin.Context) {
	id, okID := formIDParam(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "form id must be a positive integer")
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "answers required: 1..100 entries with field_id")
		return
	}

	answers := make([]services.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, services.Answer{FieldID: a.FieldID, Value: a.Value})
	}

	respID, err := h.submitSvc.Submit(c.Request.Context(), id, answers, responderID(c))
	if err != nil {
		failSubmission(c, err)
		return
	}

	ok(c, http.StatusCreated, SubmitResponse{Success: true, ResponseID: respID})
}

// failSubmission translates submission service errors into HTTP responses.
// Validation failures carry the offending field id in the message.
func failSubmission(c *gin.Context, err error) {
	var unknown *services.UnknownFieldError
	var missing *services.MissingRequiredFieldError
	var choice *services.InvalidChoiceError

	switch {
	case errors.Is(err, services.ErrFormNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "form not found")
	case errors.Is(err, services.ErrAlreadyResponded):
		fail(c, http.StatusConflict, ErrCodeConflict, "already responded to this form")
	case errors.Is(err, services.ErrNoAnswers):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "answers required: 1..100 entries with field_id")
	case errors.As(err, &unknown):
		fail(c, http.StatusBadRequest, ErrCodeUnknownField,
			fmt.Sprintf("field %s does not belong to this form", unknown.FieldID))
	case errors.As(err, &missing):
		fail(c, http.StatusBadRequest, ErrCodeMissingRequired,
			fmt.Sprintf("required field %s is missing or blank", missing.FieldID))
	case errors.As(err, &choice):
		fail(c, http.StatusBadRequest, ErrCodeInvalidChoice,
			fmt.Sprintf("field %s does not allow value %q", choice.FieldID, choice.Value))
	default:
		fail(c, http.StatusInternalServerError, ErrCodeSubmitFailed, err.Error())
	}
}

// ListMyResponses godoc
// @ID          listMyResponses
// @Summary     List own responses
// @Description Returns the caller's submission history, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Responses
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
//
// @Success     200  {object} handlers.MyResponsesResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Unauthorized"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /me/responses [get]
func (h *Handlers) ListMyResponses(c *gin.Context) {
	ctx := c.Request.Context()
	rid := responderID(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.formSvc.ResponsesStats(ctx, rid); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"responses:%s:%d:%d"`, rid, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, err := h.formSvc.ListUserResponses(ctx, rid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []repo.UserResponse{}
	}
	ok(c, http.StatusOK, MyResponsesResponse{Responses: items})
}
