package resp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOK(t *testing.T) {
	rw := httptest.NewRecorder()
	OK(rw, map[string]int{"total": 3}, "req-1", "")

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	if ct := rw.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("unexpected content type %q", ct)
	}

	var body struct {
		Code      int            `json:"code"`
		Data      map[string]int `json:"data"`
		RequestID string         `json:"request_id"`
	}
	if err := json.Unmarshal(rw.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Code != CodeOK || body.Data["total"] != 3 || body.RequestID != "req-1" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestErrorWithData(t *testing.T) {
	rw := httptest.NewRecorder()
	ErrorWithData(rw, http.StatusBadRequest, CodeInvalidParam, "page must be an integer", map[string]string{"field": "page"}, "req-2", "")

	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
	var body struct {
		Code    int               `json:"code"`
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rw.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Code != CodeInvalidParam || body.Data["field"] != "page" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code int
		want int
	}{
		{CodeOK, http.StatusOK},
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeTooManyRequests, http.StatusTooManyRequests},
		{CodeUpstreamError, http.StatusBadGateway},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternalError, http.StatusInternalServerError},
		{12345, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatusFromCode(tt.code); got != tt.want {
			t.Errorf("HTTPStatusFromCode(%d) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
