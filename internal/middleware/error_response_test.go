package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MHammad33/error-tracker/internal/model"
)

func TestWriteErrorResponse_Format(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteErrorResponse(rec, http.StatusNotFound, model.NewIssueNotFoundError("issue-1"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Code != model.ErrCodeIssueNotFound {
		t.Errorf("code = %q, want ISSUE_NOT_FOUND", body.Code)
	}
	if body.Message == "" || body.Category == "" || body.Action == "" {
		t.Errorf("body = %+v, want message/category/action populated", body)
	}
	if len(body.Fields) != 0 {
		t.Errorf("fields = %+v, want omitted for non-validation errors", body.Fields)
	}
}

func TestWriteErrorResponse_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()

	apiErr := model.NewValidationError([]model.FieldError{
		{Field: "title", Message: "Title is required"},
	})
	WriteErrorResponse(rec, http.StatusBadRequest, apiErr)

	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Fields) != 1 || body.Fields[0].Field != "title" {
		t.Errorf("fields = %+v, want title field error", body.Fields)
	}
	if body.Fields[0].Message != "Title is required" {
		t.Errorf("message = %q, want Title is required", body.Fields[0].Message)
	}
}

func TestWriteInternalServerError(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteInternalServerError(rec)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want INTERNAL_ERROR", body.Code)
	}
}
