package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/studsovet/go-forms-backend/internal/repo"
	"github.com/studsovet/go-forms-backend/internal/services"
)

func TestSubmitResponse_Success(t *testing.T) {
	var gotForm int64
	var gotAnswers []services.Answer
	var gotRID string
	submit := stubSubmitSvc{
		submit: func(_ context.Context, formID int64, answers []services.Answer, rid string) (int64, error) {
			gotForm, gotAnswers, gotRID = formID, answers, rid
			return 55, nil
		},
	}
	h := New(stubVerifier{}, stubIssuer{}, stubFormSvc{}, submit)
	r := newTestRouter(h, "99281932")

	body := `{"answers":[{"field_id":"1","value":"Andrew"},{"field_id":"2","value":null}]}`
	w := doJSON(t, r, http.MethodPost, "/forms/7/responses", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	var resp SubmitResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.ResponseID != 55 {
		t.Fatalf("unexpected body: %+v", resp)
	}

	if gotForm != 7 || gotRID != "99281932" {
		t.Fatalf("service called with form=%d rid=%q", gotForm, gotRID)
	}
	if len(gotAnswers) != 2 || gotAnswers[0].FieldID != "1" || *gotAnswers[0].Value != "Andrew" {
		t.Fatalf("answers not forwarded: %+v", gotAnswers)
	}
	if gotAnswers[1].Value != nil {
		t.Fatal("null value must stay nil")
	}
}

func TestSubmitResponse_BadFormID(t *testing.T) {
	h := New(stubVerifier{}, stubIssuer{}, stubFormSvc{}, stubSubmitSvc{})
	r := newTestRouter(h, "42")

	w := doJSON(t, r, http.MethodPost, "/forms/zero/responses", `{"answers":[{"field_id":"1"}]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSubmitResponse_BindingRejections(t *testing.T) {
	h := New(stubVerifier{}, stubIssuer{}, stubFormSvc{}, stubSubmitSvc{
		submit: func(context.Context, int64, []services.Answer, string) (int64, error) {
			t.Fatal("service must not be called")
			return 0, nil
		},
	})
	r := newTestRouter(h, "42")

	tooMany := `{"answers":[` + strings.Repeat(`{"field_id":"1","value":"x"},`, 100) + `{"field_id":"1"}]}`
	cases := []string{
		``,
		`{}`,
		`{"answers":[]}`,
		`{"answers":[{"value":"no field id"}]}`,
		tooMany,
	}
	for i, body := range cases {
		w := doJSON(t, r, http.MethodPost, "/forms/7/responses", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("case %d: status = %d, want 400", i, w.Code)
		}
	}
}

func TestSubmitResponse_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msgSub string
	}{
		{"form missing", services.ErrFormNotFound, http.StatusNotFound, ErrCodeNotFound, "form not found"},
		{"duplicate", services.ErrAlreadyResponded, http.StatusConflict, ErrCodeConflict, "already responded"},
		{"no answers", services.ErrNoAnswers, http.StatusBadRequest, ErrCodeBadRequest, "answers required"},
		{"unknown field", &services.UnknownFieldError{FieldID: "77"}, http.StatusBadRequest, ErrCodeUnknownField, "77"},
		{"missing required", &services.MissingRequiredFieldError{FieldID: "3"}, http.StatusBadRequest, ErrCodeMissingRequired, "3"},
		{"invalid choice", &services.InvalidChoiceError{FieldID: "2", Value: "C"}, http.StatusBadRequest, ErrCodeInvalidChoice, `"C"`},
		{"storage failure", errors.New("disk full"), http.StatusInternalServerError, ErrCodeSubmitFailed, "disk full"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := New(stubVerifier{}, stubIssuer{}, stubFormSvc{}, stubSubmitSvc{
				submit: func(context.Context, int64, []services.Answer, string) (int64, error) {
					return 0, tc.err
				},
			})
			r := newTestRouter(h, "42")

			w := doJSON(t, r, http.MethodPost, "/forms/7/responses", `{"answers":[{"field_id":"1","value":"x"}]}`)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (body=%s)", w.Code, tc.status, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tc.code) || !strings.Contains(w.Body.String(), tc.msgSub) {
				t.Fatalf("body = %s, want code %s and %q", w.Body.String(), tc.code, tc.msgSub)
			}
		})
	}
}

func TestListMyResponses_OK(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := stubFormSvc{
		listResp: func(_ context.Context, rid string) ([]repo.UserResponse, error) {
			return []repo.UserResponse{
				{ID: 2, FormID: 5, FormTitle: "Budget vote", CreatedAt: now},
				{ID: 1, FormID: 3, FormTitle: "Dorm survey", CreatedAt: now.Add(-time.Hour)},
			}, nil
		},
	}
	h := New(stubVerifier{}, stubIssuer{}, svc, stubSubmitSvc{})
	r := newTestRouter(h, "42")

	w := doJSON(t, r, http.MethodGet, "/me/responses", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp MyResponsesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Responses) != 2 || resp.Responses[0].FormTitle != "Budget vote" {
		t.Fatalf("unexpected list: %+v", resp.Responses)
	}
}

func TestListMyResponses_ETag304(t *testing.T) {
	ts := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := stubFormSvc{
		stats: func(context.Context, string) (int64, *time.Time, error) {
			return 3, &ts, nil
		},
		listResp: func(context.Context, string) ([]repo.UserResponse, error) {
			return []repo.UserResponse{{ID: 1}}, nil
		},
	}
	h := New(stubVerifier{}, stubIssuer{}, svc, stubSubmitSvc{})
	r := newTestRouter(h, "42")

	// First request collects the ETag.
	w := doJSON(t, r, http.MethodGet, "/me/responses", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	etag := w.Header().Get("ETag")
	want := fmt.Sprintf(`W/"responses:42:3:%d"`, ts.Unix())
	if etag != want {
		t.Fatalf("etag = %q, want %q", etag, want)
	}

	// Replaying it yields 304 with no body.
	req := httptest.NewRequest(http.MethodGet, "/me/responses", nil)
	req.Header.Set("If-None-Match", etag)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", w2.Code)
	}
	if w2.Body.Len() != 0 {
		t.Fatalf("304 must have no body, got %s", w2.Body.String())
	}
}

func TestListMyResponses_StatsFailureStillServes(t *testing.T) {
	svc := stubFormSvc{
		// stats is nil: the stub returns an error, skipping the ETag.
		listResp: func(context.Context, string) ([]repo.UserResponse, error) {
			return nil, nil
		},
	}
	h := New(stubVerifier{}, stubIssuer{}, svc, stubSubmitSvc{})
	r := newTestRouter(h, "42")

	w := doJSON(t, r, http.MethodGet, "/me/responses", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get("ETag") != "" {
		t.Fatalf("unexpected etag: %q", w.Header().Get("ETag"))
	}
	if !strings.Contains(w.Body.String(), `"responses":[]`) {
		t.Fatalf("expected empty array, got %s", w.Body.String())
	}
}

func TestListMyResponses_ListFailure500(t *testing.T) {
	svc := stubFormSvc{
		listResp: func(context.Context, string) ([]repo.UserResponse, error) {
			return nil, errors.New("db gone")
		},
	}
	h := New(stubVerifier{}, stubIssuer{}, svc, stubSubmitSvc{})
	r := newTestRouter(h, "42")

	w := doJSON(t, r, http.MethodGet, "/me/responses", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}
