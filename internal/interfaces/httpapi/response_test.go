package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/league-live/internal/domain/match"
	"github.com/riskibarqy/league-live/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_Taxonomy(t *testing.T) {
	tests := []struct {
		err    error
		code   int
		status string
	}{
		{err: fmt.Errorf("%w: minute", usecase.ErrInvalidInput), code: http.StatusBadRequest, status: "INVALID_ARGUMENT"},
		{err: fmt.Errorf("%w: match=m-1", usecase.ErrNotFound), code: http.StatusNotFound, status: "NOT_FOUND"},
		{err: &match.TransitionError{From: match.StateFinished, Action: match.ActionRecordEvent}, code: http.StatusConflict, status: "FAILED_PRECONDITION"},
		{err: fmt.Errorf("%w: t-1", usecase.ErrAlreadyScheduled), code: http.StatusConflict, status: "FAILED_PRECONDITION"},
		{err: fmt.Errorf("%w: m-1 has events", usecase.ErrConflict), code: http.StatusConflict, status: "ABORTED"},
		{err: usecase.ErrSchedulingExhausted, code: http.StatusUnprocessableEntity, status: "RESOURCE_EXHAUSTED"},
		{err: usecase.ErrDependencyUnavailable, code: http.StatusServiceUnavailable, status: "UNAVAILABLE"},
		{err: errors.New("boom"), code: http.StatusInternalServerError, status: "INTERNAL"},
	}

	for _, tt := range tests {
		got := mapError(context.Background(), tt.err)
		if got.HTTPStatus != tt.code || got.Status != tt.status {
			t.Fatalf("mapError(%v)=%d/%s want=%d/%s", tt.err, got.HTTPStatus, got.Status, tt.code, tt.status)
		}
	}
}
