package instructordoc

import (
	"github.com/dalemusser/instructorsearch/internal/app/search/searchdoc"
	"github.com/dalemusser/instructorsearch/internal/domain/models"
)

// Kind bundles the instructor Projector and Reconciler.
type Kind struct {
	*Projector
	*Reconciler
}

var _ searchdoc.Kind[models.Instructor] = Kind{}

func New(p *Projector, r *Reconciler) Kind {
	return Kind{Projector: p, Reconciler: r}
}
