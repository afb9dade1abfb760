package resourcerepo

import (
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-backoffice-core/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

type collection struct {
	order   []string
	records map[string]Record
}

// InMemoryRepo is a thread-safe in-memory Repo. Records are listed in creation order.
type InMemoryRepo struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewInMemoryRepo creates a repo serving the named resources.
func NewInMemoryRepo(resources ...string) *InMemoryRepo {
	r := &InMemoryRepo{collections: make(map[string]*collection, len(resources))}
	for _, name := range resources {
		r.collections[name] = &collection{records: make(map[string]Record)}
	}
	return r
}

func (r *InMemoryRepo) Resources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.collections))
}

func (r *InMemoryRepo) Has(resource string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.collections[resource]
	return ok
}

func (r *InMemoryRepo) List(resource string) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, err := r.collection(resource)
	if err != nil {
		return nil, err
	}
	list := make([]Record, 0, len(c.order))
	for _, id := range c.order {
		list = append(list, maps.Clone(c.records[id]))
	}
	return list, nil
}

func (r *InMemoryRepo) Get(resource, id string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, err := r.collection(resource)
	if err != nil {
		return nil, err
	}
	record, ok := c.records[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "%s/%s", resource, id)
	}
	return maps.Clone(record), nil
}

func (r *InMemoryRepo) Create(resource string, record Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.collection(resource)
	if err != nil {
		return nil, err
	}
	stored := maps.Clone(record)
	if stored == nil {
		stored = Record{}
	}
	id := uuid.NewString()
	stored[FieldID] = id
	c.records[id] = stored
	c.order = append(c.order, id)
	return maps.Clone(stored), nil
}

// Update replaces the record; the id cannot be changed.
func (r *InMemoryRepo) Update(resource, id string, record Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.collection(resource)
	if err != nil {
		return nil, err
	}
	if _, ok := c.records[id]; !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "%s/%s", resource, id)
	}
	stored := maps.Clone(record)
	if stored == nil {
		stored = Record{}
	}
	stored[FieldID] = id
	c.records[id] = stored
	return maps.Clone(stored), nil
}

func (r *InMemoryRepo) Delete(resource, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.collection(resource)
	if err != nil {
		return err
	}
	if _, ok := c.records[id]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s/%s", resource, id)
	}
	delete(c.records, id)
	c.order = slices.DeleteFunc(c.order, func(v string) bool { return v == id })
	return nil
}

func (r *InMemoryRepo) collection(resource string) (*collection, error) {
	c, ok := r.collections[resource]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "resource %s", resource)
	}
	return c, nil
}
