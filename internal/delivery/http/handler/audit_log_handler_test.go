package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lakowalski/luxmedhunter/internal/delivery/dto"
	"github.com/lakowalski/luxmedhunter/internal/usecase"

	"github.com/gorilla/mux"
)

type fakeAuditLogUsecase struct {
	gotUser  string
	gotLimit int
	resp     *dto.AuditLogListResponse
	err      error
}

func (f *fakeAuditLogUsecase) GetUserAuditLogs(_ context.Context, userID string, limit int) (*dto.AuditLogListResponse, error) {
	f.gotUser = userID
	f.gotLimit = limit
	return f.resp, f.err
}

func serveAudit(h *AuditLogHandler, target string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/users/{userId}/audit", h.GetUserAuditLogs)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestAuditLogHandler_PassesUserAndLimit(t *testing.T) {
	fake := &fakeAuditLogUsecase{resp: &dto.AuditLogListResponse{Total: 1, Logs: []dto.AuditLogResponse{{ID: 1, UserID: "alice"}}}}

	rec := serveAudit(NewAuditLogHandler(fake), "/users/alice/audit?limit=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if fake.gotUser != "alice" || fake.gotLimit != 10 {
		t.Fatalf("unexpected call: user=%q limit=%d", fake.gotUser, fake.gotLimit)
	}
}

func TestAuditLogHandler_InvalidLimit(t *testing.T) {
	for _, limit := range []string{"abc", "0", "-3"} {
		fake := &fakeAuditLogUsecase{}
		rec := serveAudit(NewAuditLogHandler(fake), "/users/alice/audit?limit="+limit)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("limit %q: expected 400, got %d", limit, rec.Code)
		}
		if fake.gotUser != "" {
			t.Fatalf("limit %q: usecase must not be called", limit)
		}
	}
}

func TestAuditLogHandler_Errors(t *testing.T) {
	rec := serveAudit(NewAuditLogHandler(&fakeAuditLogUsecase{err: usecase.ErrAuditLogNotFound}), "/users/alice/audit")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = serveAudit(NewAuditLogHandler(&fakeAuditLogUsecase{err: errors.New("db down")}), "/users/alice/audit")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
