// Package overrides loads the ignore and order lists and answers membership
// questions at coarse (name) and fine (name + zip) granularity.
package overrides

import "github.com/joseph-ayodele/formbatch/internal/entity"

// Registry is read-only once built.
type Registry struct {
	ignore     map[entity.IdentityKey]struct{}
	order      []entity.IdentityKey
	orderSet   map[entity.IdentityKey]struct{}
	orderNames map[entity.IdentityKey]struct{} // coarse keys of order entries
}

// NewRegistry indexes the given entries. Ignore keys are reduced to coarse keys;
// order entries keep their declared sequence, duplicates included.
func NewRegistry(ignore, order []entity.IdentityKey) *Registry {
	r := &Registry{
		ignore:     make(map[entity.IdentityKey]struct{}, len(ignore)),
		order:      make([]entity.IdentityKey, 0, len(order)),
		orderSet:   make(map[entity.IdentityKey]struct{}, len(order)),
		orderNames: make(map[entity.IdentityKey]struct{}, len(order)),
	}
	for _, k := range ignore {
		r.ignore[k.Coarse()] = struct{}{}
	}
	for _, k := range order {
		r.order = append(r.order, k)
		r.orderSet[k] = struct{}{}
		r.orderNames[k.Coarse()] = struct{}{}
	}
	return r
}

// Empty is a registry with no overrides.
func Empty() *Registry { return NewRegistry(nil, nil) }

// Ignored reports whether the name (zip disregarded) is on the ignore list.
func (r *Registry) Ignored(k entity.IdentityKey) bool {
	_, ok := r.ignore[k.Coarse()]
	return ok
}

// Ordered reports whether the exact name + zip is on the order list.
// A key without a zip only matches an order row that also lacks one.
func (r *Registry) Ordered(k entity.IdentityKey) bool {
	_, ok := r.orderSet[k]
	return ok
}

// OrderedName reports whether any order entry carries this first and last name.
func (r *Registry) OrderedName(k entity.IdentityKey) bool {
	_, ok := r.orderNames[k.Coarse()]
	return ok
}

// OrderList returns a copy of the order entries in declared order.
func (r *Registry) OrderList() []entity.IdentityKey {
	out := make([]entity.IdentityKey, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) IgnoreCount() int { return len(r.ignore) }
func (r *Registry) OrderCount() int { return len(r.order) }
