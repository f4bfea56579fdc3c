package processor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/starford/pagesmith/internal/apperr"
	"github.com/starford/pagesmith/internal/models"
)

// Registry holds processors ordered by descending priority. Registration
// order breaks ties.
type Registry struct {
	processors []Processor
}

// NewRegistry creates a registry seeded with the fallback processor, which
// must accept every document it is given.
func NewRegistry(fallback Processor) (*Registry, error) {
	if fallback == nil {
		return nil, errors.New("processor: registry requires a fallback processor")
	}
	r := &Registry{}
	r.Register(fallback)
	return r, nil
}

// Register adds p and re-sorts the list. Not safe to call concurrently with Select.
func (r *Registry) Register(p Processor) {
	r.processors = append(r.processors, p)
	sort.SliceStable(r.processors, func(i, j int) bool {
		return r.processors[i].Priority() > r.processors[j].Priority()
	})
}

// Select returns the first processor whose detector accepts doc.
func (r *Registry) Select(doc models.Document) (Processor, error) {
	for _, p := range r.processors {
		if p.Detect(doc) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("processor: select %s: %w", doc.Path, apperr.ErrUnclassifiable)
}

// Lookup returns the registered processor with the given name.
func (r *Registry) Lookup(name string) (Processor, bool) {
	for _, p := range r.processors {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Processors returns the processors in selection order.
func (r *Registry) Processors() []Processor {
	out := make([]Processor, len(r.processors))
	copy(out, r.processors)
	return out
}
