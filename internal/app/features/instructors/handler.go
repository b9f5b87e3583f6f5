// internal/app/features/instructors/handler.go
package instructors

// Terminology: Instructor Keys
//   - key / registration_key: the secret key from the join link; it addresses an instructor in URLs
//   - search_key: never leaves the server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dalemusser/instructorsearch/internal/app/search/indexer"
	"github.com/dalemusser/instructorsearch/internal/app/search/searchdoc"
	coursestore "github.com/dalemusser/instructorsearch/internal/app/store/courses"
	instructorstore "github.com/dalemusser/instructorsearch/internal/app/store/instructors"
	"github.com/dalemusser/instructorsearch/internal/app/system/normalize"
	"github.com/dalemusser/instructorsearch/internal/app/system/timeouts"
	"github.com/dalemusser/instructorsearch/internal/domain/models"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// InstructorStore is the part of instructorstore.Store the handlers use.
type InstructorStore interface {
	Create(ctx context.Context, in models.Instructor) (models.Instructor, error)
	GetByRegistrationKey(ctx context.Context, key string) (models.Instructor, error)
	Update(ctx context.Context, key string, upd models.Instructor) (models.Instructor, error)
	Delete(ctx context.Context, key string) (models.Instructor, error)
}

// CourseStore is the part of coursestore.Store the handlers use.
type CourseStore interface {
	Create(ctx context.Context, c models.Course) (models.Course, error)
	GetByID(ctx context.Context, id string) (models.Course, error)
}

// Search is implemented by indexer.Service.
type Search interface {
	Sync(ctx context.Context, in *models.Instructor) error
	Remove(ctx context.Context, in models.Instructor) error
	Search(ctx context.Context, query string, limit int) (searchdoc.Bundle[models.Instructor], error)
	Rebuild(ctx context.Context) (indexer.RebuildStats, error)
}

type Handler struct {
	Instructors InstructorStore
	Courses     CourseStore
	Search      Search
	Log         *zap.Logger
}

func NewHandler(instructors InstructorStore, courses CourseStore, search Search, logger *zap.Logger) *Handler {
	return &Handler{
		Instructors: instructors,
		Courses:     courses,
		Search:      search,
		Log:         logger,
	}
}

// instructorRequest is the JSON body for create and update.
type instructorRequest struct {
	CourseID      string  `json:"course_id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Role          string  `json:"role"`
	DisplayedName string  `json:"displayed_name"`
	GoogleID      *string `json:"google_id"`
}

func (req instructorRequest) model() models.Instructor {
	return models.Instructor{
		CourseID:      req.CourseID,
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		DisplayedName: req.DisplayedName,
		GoogleID:      req.GoogleID,
	}
}

// createdResponse carries the registration key, returned only on create.
type createdResponse struct {
	models.Instructor
	RegistrationKey string `json:"registration_key"`
}

type courseRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	TimeZone string `json:"time_zone"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type reindexResponse struct {
	Indexed int    `json:"indexed"`
	Failed  int    `json:"failed"`
	Took    string `json:"took"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

// storeError maps store sentinels to HTTP responses; anything else is logged
// and reported as a 500.
func (h *Handler) storeError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, instructorstore.ErrNotFound):
		writeError(w, http.StatusNotFound, "instructor not found")
	case errors.Is(err, instructorstore.ErrDuplicateInstructor):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, instructorstore.ErrBadRole),
		errors.Is(err, instructorstore.ErrMissingCourse),
		errors.Is(err, instructorstore.ErrMissingEmail):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.Log.Error(op+" failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// sync pushes in to the search index. The store is the source of truth, so
// an index failure is logged and the request still succeeds; the next
// rebuild repairs the document.
func (h *Handler) sync(ctx context.Context, in *models.Instructor) {
	if err := h.Search.Sync(ctx, in); err != nil {
		h.Log.Warn("search index sync failed",
			zap.String("course_id", in.CourseID),
			zap.Error(err))
	}
}

// ServeSearch handles GET /instructors/search?q=&limit=.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	q := normalize.QueryParam(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit := 0
	if s := normalize.QueryParam(r.URL.Query().Get("limit")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Search(), h.Log, "instructor search")
	defer cancel()

	res, err := h.Search.Search(ctx, q, limit)
	if err != nil {
		h.Log.Error("instructor search failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "search unavailable")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ServeCreate handles POST /instructors.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req instructorRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "create instructor")
	defer cancel()

	if _, err := h.Courses.GetByID(ctx, normalize.CourseID(req.CourseID)); err != nil {
		if errors.Is(err, coursestore.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "unknown course_id")
			return
		}
		h.Log.Error("course lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	created, err := h.Instructors.Create(ctx, req.model())
	if err != nil {
		h.storeError(w, err, "create instructor")
		return
	}
	h.sync(ctx, &created)

	writeJSON(w, http.StatusCreated, createdResponse{
		Instructor:      created,
		RegistrationKey: created.RegistrationKey,
	})
}

// ServeGet handles GET /instructors/{key}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Lookup(), h.Log, "get instructor")
	defer cancel()

	in, err := h.Instructors.GetByRegistrationKey(ctx, keyParam(r))
	if err != nil {
		h.storeError(w, err, "get instructor")
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// ServeUpdate handles PUT /instructors/{key}. Omitted fields are unchanged;
// the course cannot be changed.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	var req instructorRequest
	if !decode(w, r, &req) {
		return
	}
	if req.CourseID != "" {
		writeError(w, http.StatusBadRequest, "course_id cannot be changed")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "update instructor")
	defer cancel()

	updated, err := h.Instructors.Update(ctx, keyParam(r), req.model())
	if err != nil {
		h.storeError(w, err, "update instructor")
		return
	}
	h.sync(ctx, &updated)

	writeJSON(w, http.StatusOK, updated)
}

// ServeDelete handles DELETE /instructors/{key}.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "delete instructor")
	defer cancel()

	deleted, err := h.Instructors.Delete(ctx, keyParam(r))
	if err != nil {
		h.storeError(w, err, "delete instructor")
		return
	}
	if err := h.Search.Remove(ctx, deleted); err != nil {
		// Left behind, the document is dropped by the next search that hits it.
		h.Log.Warn("search index remove failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeCreateCourse handles POST /courses.
func (h *Handler) ServeCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Write(), h.Log, "create course")
	defer cancel()

	created, err := h.Courses.Create(ctx, models.Course{ID: req.ID, Name: req.Name, TimeZone: req.TimeZone})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, created)
	case errors.Is(err, coursestore.ErrMissingID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, coursestore.ErrDuplicateCourse):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.Log.Error("create course failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ServeReindex handles POST /instructors/reindex. It runs the rebuild
// synchronously and reports what it did.
func (h *Handler) ServeReindex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Reindex(), h.Log, "reindex instructors")
	defer cancel()

	stats, err := h.Search.Rebuild(ctx)
	if err != nil {
		h.Log.Error("reindex failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "reindex failed")
		return
	}
	writeJSON(w, http.StatusOK, reindexResponse{
		Indexed: stats.Indexed,
		Failed:  stats.Failed,
		Took:    stats.Took.String(),
	})
}
