package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/instructorsearch/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is anything whose connectivity can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

type mongoPinger struct{ client *mongo.Client }

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

// Mongo adapts a Mongo client to Pinger, pinging the primary.
func Mongo(client *mongo.Client) Pinger {
	return mongoPinger{client: client}
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB      Pinger
	Index   Pinger
	Backend string
	Log     *zap.Logger
}

// NewHandler constructs a health Handler for the store and the search backend.
func NewHandler(db, index Pinger, backend string, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Index:   index,
		Backend: backend,
		Log:     logger,
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Index    string `json:"index"`
	Backend  string `json:"backend"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "index":"connected", "backend":"mongo" }
//
// When either dependency fails: 503 with status "error" and the failing side
// reported as "disconnected".
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
		Index:    "connected",
		Backend:  h.Backend,
	}

	if err := h.DB.Ping(ctx); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
	} else if err := h.Index.Ping(ctx); err != nil {
		h.Log.Error("health-check: search index ping failed",
			zap.String("backend", h.Backend),
			zap.Error(err))
		resp.Status = "error"
		resp.Index = "disconnected"
		resp.Message = "Search index unavailable"
		resp.Error = err.Error()
	}

	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
