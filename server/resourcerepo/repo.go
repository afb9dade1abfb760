// Package resourcerepo stores the business records served by the reference backend.
package resourcerepo

// Record is a JSON object; "id" is assigned by the repo.
type Record map[string]any

const FieldID = "id"

func (r Record) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

type Repo interface {
	Resources() []string
	Has(resource string) bool
	List(resource string) ([]Record, error)
	Get(resource, id string) (Record, error)
	Create(resource string, record Record) (Record, error)
	Update(resource, id string, record Record) (Record, error)
	Delete(resource, id string) error
}
