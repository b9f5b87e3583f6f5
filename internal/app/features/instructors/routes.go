// internal/app/features/instructors/routes.go
package instructors

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func keyParam(r *http.Request) string {
	return chi.URLParam(r, "key")
}

// Routes returns the instructor and course API, mounted at the root.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Route("/instructors", func(r chi.Router) {
		r.Get("/search", h.ServeSearch)
		r.Post("/", h.ServeCreate)
		r.Post("/reindex", h.ServeReindex)
		r.Get("/{key}", h.ServeGet)
		r.Put("/{key}", h.ServeUpdate)
		r.Delete("/{key}", h.ServeDelete)
	})
	r.Post("/courses", h.ServeCreateCourse)
	return r
}
