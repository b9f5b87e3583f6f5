package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/instructorsearch/internal/app/features/health"
	"github.com/dalemusser/instructorsearch/internal/testutil"
	"go.uber.org/zap"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Index    string `json:"index"`
	Backend  string `json:"backend"`
	Error    string `json:"error"`
}

func serve(t *testing.T, h *health.Handler) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec, resp
}

func TestServe(t *testing.T) {
	down := errors.New("connection refused")
	tests := []struct {
		name       string
		db, index  error
		wantCode   int
		wantStatus string
		wantDB     string
		wantIndex  string
	}{
		{"all up", nil, nil, http.StatusOK, "ok", "connected", "connected"},
		{"index down", nil, down, http.StatusServiceUnavailable, "error", "connected", "disconnected"},
		{"database down", down, nil, http.StatusServiceUnavailable, "error", "disconnected", "connected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.NewHandler(pinger{tt.db}, pinger{tt.index}, "sqlite", zap.NewNop())
			rec, resp := serve(t, h)

			if rec.Code != tt.wantCode {
				t.Errorf("code: got %d, want %d", rec.Code, tt.wantCode)
			}
			if resp.Status != tt.wantStatus || resp.Database != tt.wantDB || resp.Index != tt.wantIndex {
				t.Errorf("response = %+v", resp)
			}
			if resp.Backend != "sqlite" {
				t.Errorf("backend: got %q", resp.Backend)
			}
			if tt.wantCode != http.StatusOK && resp.Error == "" {
				t.Error("expected error detail")
			}
		})
	}
}

func TestServe_MongoConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := health.NewHandler(health.Mongo(db.Client()), pinger{}, "mongo", zap.NewNop())

	rec, resp := serve(t, h)
	if rec.Code != http.StatusOK || resp.Database != "connected" {
		t.Errorf("got %d %+v", rec.Code, resp)
	}
}
