package instructordoc

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dalemusser/instructorsearch/internal/app/search/searchdoc"
	instructorstore "github.com/dalemusser/instructorsearch/internal/app/store/instructors"
	"github.com/dalemusser/instructorsearch/internal/app/system/htmlsanitize"
	"github.com/dalemusser/instructorsearch/internal/app/system/searchmetrics"
	"github.com/dalemusser/instructorsearch/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many hits are resolved at once.
const DefaultConcurrency = 8

// InstructorLookup resolves a search document ID to its instructor.
// Implemented by instructorstore.Store.
type InstructorLookup interface {
	GetBySearchKey(ctx context.Context, searchKey string) (models.Instructor, error)
}

// DocumentRemover deletes a document from the index.
// Implemented by every searchdoc.Index backend.
type DocumentRemover interface {
	Delete(ctx context.Context, id string) error
}

// Reconciler turns raw index hits into live, ordered instructors.
type Reconciler struct {
	instructors InstructorLookup
	index       DocumentRemover
	logger      *zap.Logger
	limit       int
}

// NewReconciler builds a Reconciler. A concurrency below 1 uses
// DefaultConcurrency; a nil logger discards output.
func NewReconciler(instructors InstructorLookup, index DocumentRemover, logger *zap.Logger, concurrency int) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Reconciler{
		instructors: instructors,
		index:       index,
		logger:      logger,
		limit:       concurrency,
	}
}

// Reconcile resolves each hit to its instructor. Hits whose instructor is
// gone are dropped and their documents deleted from the index; delete
// failures are logged and otherwise ignored. Any other lookup failure aborts
// the call.
func (r *Reconciler) Reconcile(ctx context.Context, hits []searchdoc.Hit) (searchdoc.Bundle[models.Instructor], error) {
	out := searchdoc.NewBundle[models.Instructor]()
	ids := uniqueIDs(hits)
	if len(ids) == 0 {
		return out, nil
	}

	// One slot per unique hit; slots left nil are drift.
	slots := make([]*models.Instructor, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for i, id := range ids {
		g.Go(func() error {
			in, err := r.instructors.GetBySearchKey(gctx, id)
			if err != nil {
				if errors.Is(err, instructorstore.ErrNotFound) {
					r.repair(gctx, id)
					return nil
				}
				return fmt.Errorf("resolve search hit %q: %w", id, err)
			}
			searchmetrics.HitsResolved.WithLabelValues(KindName).Inc()
			slots[i] = &in
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return searchdoc.NewBundle[models.Instructor](), err
	}

	resolved := make([]models.Instructor, 0, len(slots))
	for _, in := range slots {
		if in != nil {
			resolved = append(resolved, *in)
		}
	}
	sortInstructors(resolved)

	for _, in := range resolved {
		out.Add(in)
	}
	return out, nil
}

// repair deletes the orphaned document for id.
func (r *Reconciler) repair(ctx context.Context, id string) {
	searchmetrics.DriftDetected.WithLabelValues(KindName).Inc()
	if err := r.index.Delete(ctx, id); err != nil {
		searchmetrics.DriftDeleteFailures.WithLabelValues(KindName).Inc()
		r.logger.Warn("failed to delete orphaned search document",
			zap.String("kind", KindName),
			zap.String("search_key", id),
			zap.Error(err))
		return
	}
	r.logger.Info("deleted orphaned search document",
		zap.String("kind", KindName),
		zap.String("search_key", id))
}

// uniqueIDs returns the hit IDs in hit order with duplicates removed.
func uniqueIDs(hits []searchdoc.Hit) []string {
	seen := make(map[string]struct{}, len(hits))
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.ID]; ok {
			continue
		}
		seen[h.ID] = struct{}{}
		ids = append(ids, h.ID)
	}
	return ids
}

// sortInstructors orders by course ID, role, name, then email.
func sortInstructors(list []models.Instructor) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.CourseID != b.CourseID {
			return a.CourseID < b.CourseID
		}
		if ra, rb := legacyRoleKey(a.Role), legacyRoleKey(b.Role); ra != rb {
			return ra < rb
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Email < b.Email
	})
}

// legacyRoleKey undoes the HTML escaping older records carry in their role
// so escaped and plain roles sort together. Remove once stored roles have
// been rewritten unescaped.
func legacyRoleKey(role string) string {
	return htmlsanitize.DesanitizeIfHTMLSanitized(role)
}
