package annotation

import (
	"fmt"

	"github.com/example/inkstamp/internal/coords"
)

// Registry owns every annotation placed on a document. Iteration order
// is insertion order, which keeps export output deterministic.
type Registry struct {
	totalPages int
	annots     []*Annotation
	ids        map[string]bool
}

// NewRegistry creates a registry for a document with the given page count.
func NewRegistry(totalPages int) *Registry {
	return &Registry{
		totalPages: totalPages,
		ids:        make(map[string]bool),
	}
}

// TotalPages reports the page count the registry was created with.
func (r *Registry) TotalPages() int { return r.totalPages }

// Add places a new annotation centered on the page at its kind's default
// size and returns it. The page index must be within the document.
func (r *Registry) Add(kind Kind, pageIndex int, g coords.PageGeometry, img Image) (*Annotation, error) {
	if pageIndex < 0 || pageIndex >= r.totalPages {
		return nil, fmt.Errorf("annotation: page %d out of range [0,%d)", pageIndex, r.totalPages)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	w, h := DefaultSize(kind)
	x, y := CenteredOrigin(g, w, h)
	a := &Annotation{
		ID:        r.newID(kind, pageIndex, x, y),
		Kind:      kind,
		Image:     img,
		PageIndex: pageIndex,
		X:         x,
		Y:         y,
		Width:     w,
		Height:    h,
	}
	r.annots = append(r.annots, a)
	return a, nil
}

// newID derives a stable, human-readable identifier from the placement,
// suffixing a counter when the same spot is used twice.
func (r *Registry) newID(kind Kind, pageIndex int, x, y float64) string {
	id := fmt.Sprintf("%s-p%dx%dy%d", kind, pageIndex+1, int(x), int(y))
	base := id
	for i := 1; r.ids[id]; i++ {
		id = fmt.Sprintf("%s-%d", base, i)
	}
	r.ids[id] = true
	return id
}

// Get returns the annotation with the given id, or nil.
func (r *Registry) Get(id string) *Annotation {
	for _, a := range r.annots {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Remove deletes one annotation. It reports whether the id was present.
func (r *Registry) Remove(id string) bool {
	for i, a := range r.annots {
		if a.ID == id {
			r.annots = append(r.annots[:i], r.annots[i+1:]...)
			delete(r.ids, id)
			return true
		}
	}
	return false
}

// Clear removes every annotation.
func (r *Registry) Clear() {
	r.annots = nil
	r.ids = make(map[string]bool)
}

// Len reports the number of placed annotations.
func (r *Registry) Len() int { return len(r.annots) }

// All returns the annotations in insertion order.
func (r *Registry) All() []*Annotation {
	out := make([]*Annotation, len(r.annots))
	copy(out, r.annots)
	return out
}

// ForPage returns the annotations on one page, in insertion order.
func (r *Registry) ForPage(pageIndex int) []*Annotation {
	var out []*Annotation
	for _, a := range r.annots {
		if a.PageIndex == pageIndex {
			out = append(out, a)
		}
	}
	return out
}

// GroupByPage buckets annotations by page index, preserving insertion
// order within each page.
func (r *Registry) GroupByPage() map[int][]*Annotation {
	out := make(map[int][]*Annotation)
	for _, a := range r.annots {
		out[a.PageIndex] = append(out[a.PageIndex], a)
	}
	return out
}
